// Package services wires module configuration, record sources and the
// pipeline into dashboard loads. DashboardService owns the per-module
// terminal state (idle, loading, success, error) and the diagnostics
// counters; handlers stay thin.
package services
