// Package modules holds the dashboard module registry. Every topical
// dashboard (water, energy, diversity, ...) is a Config value: field
// mapping, numeric field set, header-discovery policy, SQL query and
// series specs. The pipeline itself is module-agnostic; this package is
// the only place per-module knowledge lives.
package modules
