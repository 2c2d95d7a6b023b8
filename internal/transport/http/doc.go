// Package http exposes the dashboard API: module listing, store-backed
// dashboard loads, workbook uploads, status, health and metrics.
// Handlers translate between the HTTP surface and DashboardService;
// they hold no pipeline logic.
package http
