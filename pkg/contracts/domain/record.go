package domain

import (
	"time"
)

// Record is a normalized row produced by the pipeline: canonical field
// key to value, where the value is a float64 for fields in the module's
// numeric set and a trimmed string otherwise. A Record is owned by the
// load that produced it and is never shared across loads.
type Record map[string]any

// Num returns the numeric value for key, or 0 when the field is absent
// or not numeric. Missing numeric fields default to 0 by contract.
func (r Record) Num(key string) float64 {
	if v, ok := r[key].(float64); ok {
		return v
	}
	return 0
}

// Str returns the string value for key, or "" when the field is absent
// or not a string.
func (r Record) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// LoadStatus is the terminal state of a module load.
type LoadStatus string

const (
	StatusIdle    LoadStatus = "idle"
	StatusLoading LoadStatus = "loading"
	StatusSuccess LoadStatus = "success"
	StatusError   LoadStatus = "error"
)

// GroupSummary is one aggregated bucket: a distinct grouping key with
// running totals, the contributing record count, and any derived
// per-group measures (averages, ratios) computed after the fold.
type GroupSummary struct {
	Key      string             `json:"key"`
	Fields   map[string]string  `json:"fields,omitempty"`
	Count    int                `json:"count"`
	Totals   map[string]float64 `json:"totals"`
	Averages map[string]float64 `json:"averages,omitempty"`
	Ratios   map[string]float64 `json:"ratios,omitempty"`
}

// Overview carries the whole-load totals computed in the same pass as
// the grouped aggregation.
type Overview struct {
	Records  int                `json:"records"`
	Totals   map[string]float64 `json:"totals"`
	Averages map[string]float64 `json:"averages,omitempty"`
	Ratios   map[string]float64 `json:"ratios,omitempty"`
}

// Dashboard is the chart-ready payload for one module: overview
// scalars plus named series arrays suitable for direct chart binding.
type Dashboard struct {
	Module       string                    `json:"module"`
	Status       LoadStatus                `json:"status"`
	Error        string                    `json:"error,omitempty"`
	Overview     Overview                  `json:"overview"`
	Series       map[string][]GroupSummary `json:"series"`
	DegradedRows int                       `json:"degraded_rows"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}

// ModuleInfo describes one registered dashboard module.
type ModuleInfo struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Source string `json:"source"`
}
