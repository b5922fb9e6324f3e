package inspect

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// OpenWorkbook inspects the xlsx file at path.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return WorkbookFromReader(f, st.Size())
}

// WorkbookFromReader inspects an xlsx package of the given size.
func WorkbookFromReader(r io.ReaderAt, size int64) (*Workbook, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open package: %w", err)
	}
	xf, err := excelize.OpenReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer xf.Close()

	parts, err := sheetParts(zr)
	if err != nil {
		return nil, err
	}
	printAreas := ExtractPrintAreas(xf)

	wb := &Workbook{}
	for _, name := range xf.GetSheetList() {
		sheet := Sheet{Name: name, PrintAreas: printAreas[name]}
		rows, err := xf.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", name, err)
		}
		sheet.Rows = rows
		if part, ok := parts[name]; ok {
			charts, err := sheetCharts(zr, part)
			if err != nil {
				return nil, err
			}
			sheet.Charts = charts
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return wb, nil
}
