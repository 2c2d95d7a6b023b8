package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics carries the pipeline diagnostics exposed on /metrics. The
// degraded-rows counter exists so operators can see coercion fallbacks
// accumulating without the pipeline ever surfacing them as errors.
type Metrics struct {
	LoadsTotal   *prometheus.CounterVec
	DegradedRows *prometheus.CounterVec
	LoadSeconds  *prometheus.HistogramVec
}

// NewMetrics builds and registers the service metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esg_module_loads_total",
			Help: "Dashboard loads by module, source and terminal status.",
		}, []string{"module", "source", "status"}),
		DegradedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "esg_degraded_rows_total",
			Help: "Rows where at least one numeric cell fell back to 0 during coercion.",
		}, []string{"module"}),
		LoadSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "esg_module_load_seconds",
			Help:    "Wall time of a full module load (fetch, normalize, aggregate).",
			Buckets: prometheus.DefBuckets,
		}, []string{"module", "source"}),
	}
	reg.MustRegister(m.LoadsTotal, m.DegradedRows, m.LoadSeconds)
	return m
}
