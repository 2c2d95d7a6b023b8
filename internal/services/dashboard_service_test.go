package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/yashika-63/ESG-Analytics/internal/modules"
	"github.com/yashika-63/ESG-Analytics/internal/pipeline"
	"github.com/yashika-63/ESG-Analytics/pkg/contracts/domain"
)

type fakeSource struct {
	rows    []map[string]any
	queries []string
	args    [][]any
}

func (f *fakeSource) Fetch(_ context.Context, query string, args ...any) []map[string]any {
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return f.rows
}

func testRegistry(t *testing.T) *modules.Registry {
	t.Helper()
	reg, err := modules.NewRegistry(modules.DefaultConfigs())
	require.NoError(t, err)
	return reg
}

func newTestService(t *testing.T, source RecordSource) *DashboardService {
	t.Helper()
	metrics := NewMetrics(prometheus.NewRegistry())
	return NewDashboardService(testRegistry(t), source, slog.Default(), metrics)
}

func TestRefreshSuccess(t *testing.T) {
	source := &fakeSource{rows: []map[string]any{
		{"financialYear": "2024", "month": "January", "attribute": "Water", "plant": "P1", "quantity": 100.0, "convFactor": 1.0},
		{"financialYear": "2024", "month": "January", "attribute": "Water", "plant": "P2", "quantity": 200.0, "convFactor": 1.0},
		{"financialYear": "2024", "month": "February", "attribute": "Effluent", "plant": "P1", "quantity": "1,500", "convFactor": 0.5},
	}}
	svc := newTestService(t, source)

	dash, err := svc.Refresh(context.Background(), "water", "2024")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, dash.Status)
	assert.Equal(t, 3, dash.Overview.Records)
	assert.Equal(t, 1800.0, dash.Overview.Totals["quantity"])

	byAttribute := dash.Series["byAttribute"]
	require.Len(t, byAttribute, 2)
	assert.Equal(t, "Water", byAttribute[0].Key)
	assert.Equal(t, 300.0, byAttribute[0].Totals["quantity"])

	require.NotEmpty(t, source.args)
	assert.Equal(t, []any{"2024"}, source.args[0], "year filter is passed as a bind parameter")

	// Derived value = quantity * convFactor flows into the series.
	assert.Equal(t, 300.0, byAttribute[0].Totals["value"])
	assert.Equal(t, 750.0, byAttribute[1].Totals["value"])
}

func TestRefreshUnknownModule(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	_, err := svc.Refresh(context.Background(), "nope", "")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestRefreshEmptySourceBecomesErrorState(t *testing.T) {
	svc := newTestService(t, &fakeSource{rows: nil})

	dash, err := svc.Refresh(context.Background(), "energy", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, dash.Status)
	assert.Equal(t, "no data received", dash.Error)

	// The error state is the module's published status.
	status, err := svc.Status("energy")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, status.Status)
}

func TestRefreshWithoutSourceDegrades(t *testing.T) {
	svc := newTestService(t, nil)
	dash, err := svc.Refresh(context.Background(), "water", "")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, dash.Status)
}

func TestStatusIdleBeforeFirstLoad(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	dash, err := svc.Status("water")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, dash.Status)

	_, err = svc.Status("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestStaleLoadDoesNotOverwriteNewerResult(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	cfg, ok := testRegistry(t).Get("water")
	require.True(t, ok)

	older := svc.beginLoad("water")
	newer := svc.beginLoad("water")

	fresh := pipeline.LoadResult{Records: []domain.Record{
		{"attribute": "Water", "quantity": 10.0, "value": 10.0},
	}}
	svc.finishLoad(context.Background(), cfg, newer, "store", "newer", fresh, nil, time.Now())

	stale := pipeline.LoadResult{Records: []domain.Record{
		{"attribute": "Stale", "quantity": 99.0, "value": 99.0},
	}}
	svc.finishLoad(context.Background(), cfg, older, "store", "older", stale, nil, time.Now())

	dash, err := svc.Status("water")
	require.NoError(t, err)
	require.Equal(t, domain.StatusSuccess, dash.Status)
	require.Len(t, dash.Series["byAttribute"], 1)
	assert.Equal(t, "Water", dash.Series["byAttribute"][0].Key,
		"the later-started load's result must survive")
}

func TestLoadWorkbook(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"Water Report"},
		{"FY 2024"},
		{},
		{},
		{"Sr.No.", "Financial Year", "Month", "Attribute", "Quantity", "Conv. Factor"},
		{1, "2024", "January", "Water", 100, 1},
		{2, "2024", "January", "Water", "₹200", 1},
	}
	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, cell))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	svc := newTestService(t, nil)
	dash, err := svc.LoadWorkbook(context.Background(), "water", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSuccess, dash.Status)
	assert.Equal(t, 2, dash.Overview.Records)
	assert.Equal(t, 300.0, dash.Overview.Totals["quantity"])
}

func TestLoadWorkbookUndecodable(t *testing.T) {
	svc := newTestService(t, nil)
	dash, err := svc.LoadWorkbook(context.Background(), "water", strings.NewReader("garbage"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusError, dash.Status)
	assert.Equal(t, "no data received", dash.Error)
}

func TestModulesListing(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	infos := svc.Modules()
	assert.Len(t, infos, 12)
}
