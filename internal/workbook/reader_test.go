package workbook

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, cell := range row {
			name, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", name, cell))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadGrid(t *testing.T) {
	buf := buildWorkbook(t, [][]any{
		{"Sustainability Report"},
		{"Sr.No.", "Financial Year", "Month", "Attribute", "Quantity"},
		{1, "2024", "January", "Water", 100},
	})

	grid, err := ReadGrid(buf)
	require.NoError(t, err)
	require.Len(t, grid, 3)

	assert.Equal(t, "Sustainability Report", grid[0][0])
	assert.Equal(t, "Financial Year", grid[1][1])
	// Cells arrive as the sheet renders them; coercion is the
	// pipeline's job, not the reader's.
	assert.Equal(t, "100", grid[2][4])
}

func TestReadGridOnlyFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "first"))
	_, err := f.NewSheet("Second")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Second", "A1", "second"))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	grid, err := ReadGrid(buf)
	require.NoError(t, err)
	require.NotEmpty(t, grid)
	assert.Equal(t, "first", grid[0][0])
}

func TestReadGridRejectsGarbage(t *testing.T) {
	_, err := ReadGrid(strings.NewReader("this is not a workbook"))
	assert.Error(t, err)
}
