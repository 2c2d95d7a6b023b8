package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apierrors "github.com/yashika-63/ESG-Analytics/internal/errors"
	custommw "github.com/yashika-63/ESG-Analytics/internal/middleware"
	"github.com/yashika-63/ESG-Analytics/internal/services"
)

// RouterConfig tunes the outer middleware chain.
type RouterConfig struct {
	Version        string
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter assembles the full API surface.
func NewRouter(service *services.DashboardService, gatherer prometheus.Gatherer, logger *slog.Logger, cfg RouterConfig) *chi.Mux {
	errorHandler := apierrors.NewErrorHandler(logger)

	r := chi.NewRouter()
	r.Use(custommw.RequestID)
	r.Use(custommw.RequestLogger(logger))
	r.Use(custommw.Recoverer(logger, errorHandler))
	if cfg.RateLimitRPS > 0 {
		r.Use(custommw.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	health := NewHealthHandler(cfg.Version)
	r.Get("/healthz", health.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	moduleHandler := NewModuleHandler(service, logger, errorHandler)
	r.Mount("/api/modules", moduleHandler.Routes())

	return r
}
