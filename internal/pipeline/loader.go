package pipeline

import (
	"errors"
	"fmt"

	"github.com/yashika-63/ESG-Analytics/pkg/contracts/domain"
)

// Terminal load failures. The service layer maps these onto the
// module's error status; nothing below this package ever panics or
// aborts mid-load.
var (
	ErrEmptyInput        = errors.New("no data received")
	ErrHeaderRowNotFound = errors.New("header row not found")
	ErrNoValidData       = errors.New("no valid data found")
)

// LoadResult carries the normalized records plus load diagnostics.
// DegradedRows counts rows where at least one numeric cell fell back to
// 0 during coercion; the rows are still included, the count exists so
// operators can see data-quality drift.
type LoadResult struct {
	Records      []domain.Record
	DegradedRows int
}

// FromObjects normalizes API-sourced rows: loosely-typed objects whose
// field names were already aliased to canonical keys by the backend
// query. Designated numeric fields are coerced, everything else is kept
// as a trimmed string, and derived fields are computed when the source
// did not supply them.
func FromObjects(objects []map[string]any, schema Schema) (LoadResult, error) {
	if len(objects) == 0 {
		return LoadResult{}, ErrEmptyInput
	}

	res := LoadResult{Records: make([]domain.Record, 0, len(objects))}
	for _, obj := range objects {
		rec := make(domain.Record, len(obj))
		degraded := false
		for key, raw := range obj {
			if schema.IsNumeric(key) {
				n, fellBack := Coerce(raw)
				rec[key] = n
				degraded = degraded || fellBack
			} else {
				rec[key] = cellString(raw)
			}
		}
		applyDerived(rec, schema)
		if degraded {
			res.DegradedRows++
		}
		res.Records = append(res.Records, rec)
	}
	return res, nil
}

// FromGrid normalizes a file-sourced rectangular grid: locate the
// header row per policy, align each surviving data row's cells to the
// header labels by column index, and resolve canonical keys through the
// schema mapping. Blank rows are dropped; rows that map zero fields
// still yield a (degenerate) record.
func FromGrid(grid [][]any, schema Schema, policy HeaderPolicy) (LoadResult, error) {
	if len(grid) == 0 {
		return LoadResult{}, ErrEmptyInput
	}

	headerIdx, err := findHeaderRow(grid, policy)
	if err != nil {
		return LoadResult{}, err
	}
	header := grid[headerIdx]

	// Resolve the canonical key per column once, not per row.
	columns := make([]string, len(header))
	for i, cell := range header {
		if key, ok := schema.MapHeader(cellString(cell)); ok {
			columns[i] = key
		}
	}

	var res LoadResult
	for _, row := range grid[headerIdx+1:] {
		if rowBlank(row) {
			continue
		}
		rec := make(domain.Record, len(columns))
		degraded := false
		for i, key := range columns {
			if key == "" || i >= len(row) {
				continue
			}
			if schema.IsNumeric(key) {
				n, fellBack := Coerce(row[i])
				rec[key] = n
				degraded = degraded || fellBack
			} else {
				rec[key] = cellString(row[i])
			}
		}
		applyDerived(rec, schema)
		if degraded {
			res.DegradedRows++
		}
		res.Records = append(res.Records, rec)
	}

	if len(res.Records) == 0 {
		return LoadResult{}, ErrNoValidData
	}
	return res, nil
}

// findHeaderRow locates the header row index per the policy.
func findHeaderRow(grid [][]any, policy HeaderPolicy) (int, error) {
	switch policy.Mode {
	case HeaderFixed:
		if policy.RowIndex < 0 || policy.RowIndex >= len(grid) {
			return 0, fmt.Errorf("%w: fixed header row %d outside grid of %d rows",
				ErrHeaderRowNotFound, policy.RowIndex, len(grid))
		}
		return policy.RowIndex, nil

	case HeaderScan:
		limit := headerScanWindow
		if len(grid) < limit {
			limit = len(grid)
		}
		for i := 0; i < limit; i++ {
			if rowContainsAll(grid[i], policy.Required) {
				return i, nil
			}
		}
		return 0, ErrHeaderRowNotFound

	default:
		return 0, fmt.Errorf("%w: unknown header mode %q", ErrHeaderRowNotFound, policy.Mode)
	}
}

// rowContainsAll reports whether every required label appears as a cell
// value in the row. Order-independent, exact string match.
func rowContainsAll(row []any, required []string) bool {
	if len(required) == 0 {
		return false
	}
	cells := make(map[string]bool, len(row))
	for _, cell := range row {
		cells[cellString(cell)] = true
	}
	for _, label := range required {
		if !cells[label] {
			return false
		}
	}
	return true
}

// rowBlank reports whether every cell in the row is null or empty.
func rowBlank(row []any) bool {
	for _, cell := range row {
		if !cellEmpty(cell) {
			return false
		}
	}
	return true
}

// applyDerived fills computed fields the source left out.
func applyDerived(rec domain.Record, schema Schema) {
	for _, d := range schema.Derived {
		if rec.Num(d.Key) != 0 {
			continue
		}
		rec[d.Key] = rec.Num(d.Left) * rec.Num(d.Right)
	}
}
