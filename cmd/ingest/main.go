// Command ingest runs the dashboard pipeline over workbook files
// offline: one dashboard JSON per input file, no server or database
// required. Useful for validating an export before it is uploaded.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yashika-63/ESG-Analytics/internal/modules"
	"github.com/yashika-63/ESG-Analytics/internal/pipeline"
	"github.com/yashika-63/ESG-Analytics/internal/workbook"
	"github.com/yashika-63/ESG-Analytics/pkg/contracts/domain"
)

func main() {
	moduleKey := flag.String("module", "", "dashboard module key (e.g. water)")
	outDir := flag.String("out", ".", "directory for the dashboard JSON files")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if *moduleKey == "" || flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: ingest -module <key> [-out dir] <workbook.xlsx> ...")
		os.Exit(2)
	}

	if err := run(logger, *moduleKey, *outDir, flag.Args()); err != nil {
		logger.Error("ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, moduleKey, outDir string, files []string) error {
	registry, err := modules.NewRegistry(modules.DefaultConfigs())
	if err != nil {
		return fmt.Errorf("module registry: %w", err)
	}
	cfg, ok := registry.Get(moduleKey)
	if !ok {
		return fmt.Errorf("unknown module %q", moduleKey)
	}

	var g errgroup.Group
	g.SetLimit(4)
	for _, file := range files {
		g.Go(func() error {
			return ingestFile(logger, cfg, file, outDir)
		})
	}
	return g.Wait()
}

func ingestFile(logger *slog.Logger, cfg modules.Config, path, outDir string) error {
	grid, err := workbook.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	res, err := pipeline.FromGrid(grid, cfg.Schema, cfg.Header)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	dash := domain.Dashboard{
		Module:       cfg.Key,
		Status:       domain.StatusSuccess,
		DegradedRows: res.DegradedRows,
		Series:       make(map[string][]domain.GroupSummary, len(cfg.Series)),
		GeneratedAt:  time.Now().UTC(),
	}
	for i, series := range cfg.Series {
		groups, overview := pipeline.AggregateFields(
			res.Records, series.GroupBy.Fields, series.GroupBy.Func(), series.Measures)
		dash.Series[series.Name] = groups
		if i == 0 {
			dash.Overview = overview
		}
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	outPath := filepath.Join(outDir, base+"."+cfg.Key+".json")
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dash); err != nil {
		return fmt.Errorf("encode %s: %w", outPath, err)
	}

	logger.Info("workbook ingested",
		slog.String("module", cfg.Key),
		slog.String("file", path),
		slog.Int("records", dash.Overview.Records),
		slog.Int("degraded_rows", dash.DegradedRows),
		slog.String("output", outPath))
	return nil
}
