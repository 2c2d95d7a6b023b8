package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yashika-63/ESG-Analytics/internal/modules"
	"github.com/yashika-63/ESG-Analytics/internal/pipeline"
	"github.com/yashika-63/ESG-Analytics/internal/workbook"
	"github.com/yashika-63/ESG-Analytics/pkg/contracts/domain"
)

// ErrUnknownModule reports a dashboard key that is not in the registry.
var ErrUnknownModule = errors.New("unknown module")

// RecordSource fetches a module's rows from the reporting store.
// Failures degrade to an empty result by contract; the service turns
// that into the module's error state.
type RecordSource interface {
	Fetch(ctx context.Context, query string, args ...any) []map[string]any
}

// moduleState is the per-module terminal state plus the load fence.
// startedGen hands out generations to new loads; committedGen remembers
// the newest load that has published a result. A slower, older load
// finishing after a newer one is discarded instead of overwriting it.
type moduleState struct {
	status    domain.LoadStatus
	dashboard domain.Dashboard

	startedGen   uint64
	committedGen uint64
}

// DashboardService runs the normalize-and-aggregate pipeline for every
// registered module and owns the resulting dashboards.
type DashboardService struct {
	registry *modules.Registry
	source   RecordSource
	logger   *slog.Logger
	metrics  *Metrics

	mu     sync.Mutex
	states map[string]*moduleState
}

// NewDashboardService builds the service. source may be nil for
// upload-only deployments; store-backed loads then report "no data".
func NewDashboardService(registry *modules.Registry, source RecordSource, logger *slog.Logger, metrics *Metrics) *DashboardService {
	return &DashboardService{
		registry: registry,
		source:   source,
		logger:   logger.With(slog.String("component", "dashboard_service")),
		metrics:  metrics,
		states:   make(map[string]*moduleState),
	}
}

// Modules lists the registered dashboard modules.
func (s *DashboardService) Modules() []domain.ModuleInfo {
	return s.registry.List()
}

// Status returns the module's current terminal state without running a
// load. A module never loaded reports idle.
func (s *DashboardService) Status(key string) (domain.Dashboard, error) {
	if _, ok := s.registry.Get(key); !ok {
		return domain.Dashboard{}, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[key]
	if !ok {
		return domain.Dashboard{Module: key, Status: domain.StatusIdle}, nil
	}
	if st.status == domain.StatusLoading {
		return domain.Dashboard{Module: key, Status: domain.StatusLoading}, nil
	}
	return st.dashboard, nil
}

// Refresh runs a store-backed load: fetch the module's rows, normalize,
// aggregate, publish. yearFilter narrows to one financial year; empty
// matches everything.
func (s *DashboardService) Refresh(ctx context.Context, key, yearFilter string) (domain.Dashboard, error) {
	cfg, ok := s.registry.Get(key)
	if !ok {
		return domain.Dashboard{}, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}

	gen := s.beginLoad(key)
	start := time.Now()
	loadID := uuid.New().String()
	s.logger.InfoContext(ctx, "module refresh started",
		slog.String("module", key),
		slog.String("load_id", loadID),
		slog.String("year_filter", yearFilter))

	var objects []map[string]any
	if s.source != nil && cfg.Query != "" {
		objects = s.source.Fetch(ctx, cfg.Query, yearFilter)
	}

	res, err := pipeline.FromObjects(objects, cfg.Schema)
	dash := s.finishLoad(ctx, cfg, gen, "store", loadID, res, err, start)
	return dash, nil
}

// LoadWorkbook runs a file-sourced load from an uploaded spreadsheet:
// decode the first worksheet, discover the header row per the module's
// policy, normalize, aggregate, publish.
func (s *DashboardService) LoadWorkbook(ctx context.Context, key string, r io.Reader) (domain.Dashboard, error) {
	cfg, ok := s.registry.Get(key)
	if !ok {
		return domain.Dashboard{}, fmt.Errorf("%w: %s", ErrUnknownModule, key)
	}

	gen := s.beginLoad(key)
	start := time.Now()
	loadID := uuid.New().String()
	s.logger.InfoContext(ctx, "module upload started",
		slog.String("module", key),
		slog.String("load_id", loadID))

	grid, err := workbook.ReadGrid(r)
	if err != nil {
		s.logger.WarnContext(ctx, "workbook decode failed",
			slog.String("module", key),
			slog.String("load_id", loadID),
			slog.String("error", err.Error()))
		dash := s.finishLoad(ctx, cfg, gen, "upload", loadID, pipeline.LoadResult{}, pipeline.ErrEmptyInput, start)
		return dash, nil
	}

	res, err := pipeline.FromGrid(grid, cfg.Schema, cfg.Header)
	dash := s.finishLoad(ctx, cfg, gen, "upload", loadID, res, err, start)
	return dash, nil
}

// beginLoad marks the module loading and hands out the load generation.
func (s *DashboardService) beginLoad(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[key]
	if !ok {
		st = &moduleState{status: domain.StatusIdle}
		s.states[key] = st
	}
	st.status = domain.StatusLoading
	st.startedGen++
	return st.startedGen
}

// finishLoad aggregates, builds the dashboard, and publishes it unless
// a newer load has already committed.
func (s *DashboardService) finishLoad(ctx context.Context, cfg modules.Config, gen uint64, source, loadID string, res pipeline.LoadResult, loadErr error, start time.Time) domain.Dashboard {
	dash := domain.Dashboard{
		Module:      cfg.Key,
		GeneratedAt: time.Now().UTC(),
	}

	if loadErr != nil {
		dash.Status = domain.StatusError
		dash.Error = loadMessage(loadErr)
	} else {
		dash.Status = domain.StatusSuccess
		dash.DegradedRows = res.DegradedRows
		dash.Series = make(map[string][]domain.GroupSummary, len(cfg.Series))
		for i, series := range cfg.Series {
			groups, overview := pipeline.AggregateFields(
				res.Records, series.GroupBy.Fields, series.GroupBy.Func(), series.Measures)
			dash.Series[series.Name] = groups
			// The module's first series is its primary chart; its
			// whole-load totals are the dashboard overview.
			if i == 0 {
				dash.Overview = overview
			}
		}
	}

	s.metrics.LoadsTotal.WithLabelValues(cfg.Key, source, string(dash.Status)).Inc()
	s.metrics.LoadSeconds.WithLabelValues(cfg.Key, source).Observe(time.Since(start).Seconds())
	if res.DegradedRows > 0 {
		s.metrics.DegradedRows.WithLabelValues(cfg.Key).Add(float64(res.DegradedRows))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[cfg.Key]
	if gen <= st.committedGen {
		// A newer load already published; this result is stale.
		s.logger.InfoContext(ctx, "discarding stale load result",
			slog.String("module", cfg.Key),
			slog.String("load_id", loadID),
			slog.Uint64("generation", gen),
			slog.Uint64("committed", st.committedGen))
		return dash
	}
	st.committedGen = gen
	st.status = dash.Status
	st.dashboard = dash

	s.logger.InfoContext(ctx, "module load finished",
		slog.String("module", cfg.Key),
		slog.String("load_id", loadID),
		slog.String("source", source),
		slog.String("status", string(dash.Status)),
		slog.Int("records", dash.Overview.Records),
		slog.Int("degraded_rows", dash.DegradedRows),
		slog.Duration("elapsed", time.Since(start)))
	return dash
}

// loadMessage maps pipeline terminal errors onto the static messages
// the dashboard shows.
func loadMessage(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrHeaderRowNotFound):
		return "header row not found"
	case errors.Is(err, pipeline.ErrNoValidData):
		return "no valid data found"
	case errors.Is(err, pipeline.ErrEmptyInput):
		return "no data received"
	default:
		return "load failed"
	}
}
