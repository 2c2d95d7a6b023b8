// Package pipeline implements the shared record normalization and
// aggregation pipeline behind every dashboard module: numeric coercion
// of locale-formatted cells, raw-header to canonical-field mapping,
// tabular loading from either API objects or spreadsheet grids
// (including header-row discovery), and single-pass group-and-sum
// aggregation into chart-ready series.
//
// The pipeline is pure and synchronous. All per-module variation lives
// in configuration (Schema, HeaderPolicy, SeriesSpec) supplied by the
// modules registry; the code here is module-agnostic.
package pipeline
