package spec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
)

// DatasetFromXLSX reads a header row and the records below it from a sheet.
// The table starts at the first non-empty row and ends at the first blank row.
// An empty sheet name selects the first sheet.
func DatasetFromXLSX(path, sheet string) (models.Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, reportfmt.NewValidationError("sheet", "workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, reportfmt.NewValidationError("sheet", "%v", err)
	}
	return datasetFromRows(rows)
}

func datasetFromRows(rows [][]string) (models.Dataset, error) {
	minRow, minCol := findDataStart(rows)
	if minRow < 0 {
		return nil, reportfmt.NewValidationError("dataset", "sheet is empty")
	}

	header := rows[minRow]
	columns := make(map[int]string)
	for colIdx := minCol; colIdx < len(header); colIdx++ {
		if name := strings.TrimSpace(header[colIdx]); name != "" {
			columns[colIdx] = name
		}
	}

	var ds models.Dataset
	for _, row := range rows[minRow+1:] {
		if isBlank(row) {
			break
		}
		rec := make(models.Record, len(columns))
		for colIdx, name := range columns {
			if colIdx < len(row) && row[colIdx] != "" {
				rec[name] = parseValue(row[colIdx])
			}
		}
		ds = append(ds, rec)
	}
	if len(ds) == 0 {
		return nil, reportfmt.NewValidationError("dataset", "no records below the header row")
	}
	return ds, nil
}

// findDataStart returns the first non-empty row and the leftmost non-empty
// column of that row, or -1, -1 for an empty sheet.
func findDataStart(rows [][]string) (int, int) {
	for rowIdx, row := range rows {
		for colIdx, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return rowIdx, colIdx
			}
		}
	}
	return -1, -1
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseValue attempts to parse a cell string as a number.
// Returns int64 for integers, float64 for decimals, or the original string.
func parseValue(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
