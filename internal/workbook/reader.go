// Package workbook decodes uploaded spreadsheet payloads into the raw
// rectangular grid the pipeline consumes. Only the first worksheet is
// read, and cell values pass through without coercion; all typing
// happens downstream in the pipeline.
package workbook

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrNoWorksheet is returned when the workbook decodes but contains no
// readable worksheet.
var ErrNoWorksheet = errors.New("workbook has no worksheet")

// MaxUploadBytes bounds how much of an upload we are willing to decode.
const MaxUploadBytes = 20 << 20

// ReadGrid decodes a workbook from r and returns the first worksheet as
// a grid of raw cells, row 0..N by column 0..M.
func ReadGrid(r io.Reader) ([][]any, error) {
	f, err := excelize.OpenReader(io.LimitReader(r, MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}
	defer f.Close()
	return firstSheetGrid(f)
}

// ReadFile decodes a workbook from disk, for the offline ingest CLI.
func ReadFile(path string) ([][]any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return firstSheetGrid(f)
}

func firstSheetGrid(f *excelize.File) ([][]any, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheets[0], err)
	}

	grid := make([][]any, len(rows))
	for i, row := range rows {
		cells := make([]any, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		grid[i] = cells
	}
	return grid, nil
}
