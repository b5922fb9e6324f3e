// Package chart builds spreadsheet charts: one data sheet holding the dataset
// and one chart over it, with sign coloring, last-point emphasis and an
// optional mean reference line.
package chart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
)

// MeanLineColor is the color of the dashed mean reference series.
const MeanLineColor = "7F7F7F"

// Artifact is a built workbook. The caller owns File and must close it.
type Artifact struct {
	File *excelize.File
	// Sheet is the data sheet name.
	Sheet string
	// ChartPart is the package path of the chart, e.g. xl/charts/chart1.xml.
	ChartPart string
	// Rows is the number of data rows.
	Rows int
	// Series lists series names in chart order.
	Series []string
	// Mean is the mean of the primary series when a mean line was requested.
	Mean *float64
	// Path is where the workbook was saved, if anywhere.
	Path string
}

// Close releases the workbook.
func (a *Artifact) Close() error {
	return a.File.Close()
}

// WriteTo writes the xlsx package to w.
func (a *Artifact) WriteTo(w io.Writer) (int64, error) {
	return a.File.WriteTo(w)
}

// validateDataset checks the dataset shape and returns the numeric values of
// each value column.
func validateDataset(ds models.Dataset, xColumn string, yColumns []string) ([][]float64, error) {
	if len(ds) == 0 {
		return nil, reportfmt.NewValidationError("dataset", "dataset is empty")
	}
	if xColumn == "" {
		return nil, reportfmt.NewValidationError("x", "x column is required")
	}
	if !ds.HasColumn(xColumn) {
		return nil, reportfmt.NewValidationError("x", "column %q not found in dataset", xColumn)
	}
	if len(yColumns) == 0 {
		return nil, reportfmt.NewValidationError("y", "at least one y column is required")
	}
	values := make([][]float64, 0, len(yColumns))
	for i, col := range yColumns {
		if !ds.HasColumn(col) {
			return nil, reportfmt.NewValidationError(fmt.Sprintf("y[%d]", i), "column %q not found in dataset", col)
		}
		v, err := ds.Floats(col)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// Build lays the dataset out on a sheet named 数据 and adds one chart over it.
// Validation happens before the workbook is created. When spec.OutputPath is
// set the workbook is saved there; a failed save returns the artifact along
// with a *reportfmt.PersistenceError.
func Build(ds models.Dataset, spec models.ChartSpec, opts ...Option) (*Artifact, error) {
	cfg := newConfig(opts)
	if !spec.KnownType() {
		cfg.logger.Warn("unknown chart type, falling back to line", zap.String("type", string(spec.Type)))
	}
	spec = spec.WithDefaults()

	values, err := validateDataset(ds, spec.XColumn, spec.YColumns)
	if err != nil {
		return nil, err
	}

	n := len(ds)
	var mean float64
	if spec.MeanLine {
		mean = models.Mean(values[0])
	}

	headers := append([]string{spec.XColumn}, spec.YColumns...)
	if spec.MeanLine {
		headers = append(headers, models.MeanSeriesName)
	}
	rows := make([][]interface{}, n)
	for i, rec := range ds {
		row := []interface{}{cellValue(rec[spec.XColumn])}
		for _, v := range values {
			row = append(row, v[i])
		}
		if spec.MeanLine {
			row = append(row, mean)
		}
		rows[i] = row
	}

	f := excelize.NewFile()
	art := &Artifact{File: f, Sheet: models.DataSheetName, Rows: n, Series: headers[1:]}
	if spec.MeanLine {
		m := mean
		art.Mean = &m
	}
	if err := build(f, art, spec, headers, rows, values); err != nil {
		f.Close()
		return nil, err
	}
	cfg.logger.Info("chart built",
		zap.String("type", string(spec.Type)),
		zap.Int("rows", n),
		zap.Strings("series", art.Series))
	return art, persist(art, spec.OutputPath, cfg.logger)
}

func build(f *excelize.File, art *Artifact, spec models.ChartSpec, headers []string, rows [][]interface{}, values [][]float64) error {
	// Series colors come from the spec, never from the theme palette.
	varyColors := false
	sheet := art.Sheet
	n := art.Rows
	if err := writeTable(f, sheet, headers, rows); err != nil {
		return err
	}

	xAxis := excelize.ChartAxis{
		TickLabelSkip: spec.LabelStride,
		Title:         titleRuns(spec.XAxisTitle, 10, false),
	}
	yAxis := excelize.ChartAxis{
		MajorGridLines: true,
		NumFmt:         excelize.ChartNumFmt{CustomNumFmt: spec.NumberFormat},
		Title:          titleRuns(spec.YAxisTitle, 10, false),
	}
	legend := "bottom"
	if len(spec.YColumns) == 1 && !spec.MeanLine {
		legend = "none"
	}

	chartType := excelize.Line
	if spec.Type == models.ChartBar {
		chartType = excelize.Col
	}
	var series []excelize.ChartSeries
	for i := range spec.YColumns {
		s := excelize.ChartSeries{
			Name:       rangeRef(sheet, i+2, 1, 1),
			Categories: rangeRef(sheet, 1, 2, n+1),
			Values:     rangeRef(sheet, i+2, 2, n+1),
		}
		if chartType == excelize.Line {
			s.Marker = excelize.ChartMarker{Symbol: "none"}
			s.Line = excelize.ChartLine{Width: 1.75}
		}
		series = append(series, s)
	}

	primary := &excelize.Chart{
		Type:       chartType,
		Series:     series,
		VaryColors: &varyColors,
		Title:      titleRuns(spec.Title, 14, true),
		Dimension:  excelize.ChartDimension{Width: spec.Width, Height: spec.Height},
		Legend:     excelize.ChartLegend{Position: legend},
		XAxis:      xAxis,
		YAxis:      yAxis,
		PlotArea: excelize.ChartPlotArea{
			ShowVal: spec.Labels == models.LabelsAll,
			NumFmt:  excelize.ChartNumFmt{CustomNumFmt: spec.NumberFormat},
		},
	}

	var combo []*excelize.Chart
	if spec.MeanLine {
		col := len(spec.YColumns) + 2
		meanSeries := excelize.ChartSeries{
			Name:       rangeRef(sheet, col, 1, 1),
			Categories: rangeRef(sheet, 1, 2, n+1),
			Values:     rangeRef(sheet, col, 2, n+1),
			Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{MeanLineColor}},
			Line:       excelize.ChartLine{Dash: excelize.ChartDashDash, Width: 1.25},
			Marker:     excelize.ChartMarker{Symbol: "none"},
		}
		if chartType == excelize.Line {
			primary.Series = append(primary.Series, meanSeries)
		} else {
			// a constant series over columns is drawn as a line on the same axes
			combo = append(combo, &excelize.Chart{
				Type:       excelize.Line,
				VaryColors: &varyColors,
				Series:     []excelize.ChartSeries{meanSeries},
				XAxis:      xAxis,
				YAxis:      yAxis,
				PlotArea:   primary.PlotArea,
			})
		}
	}

	part, err := addChart(f, sheet, spec.Anchor, primary, combo...)
	if err != nil {
		return err
	}
	art.ChartPart = part

	patches := pointPatches(spec, values[0], n)
	if len(patches) > 0 {
		if err := patchChartPart(f, part, patches); err != nil {
			return err
		}
	}

	if spec.Type == models.ChartBar && len(spec.YColumns) == 1 {
		if err := signFormat(f, sheet, rangeCells(2, 2, n+1), spec.UpColor, spec.DownColor); err != nil {
			return err
		}
	}
	return finishSheet(f, sheet, len(headers), n, spec.DataSource)
}

// pointPatches collects the point-level styling that excelize cannot express:
// per-bar sign colors, the last-point marker and label, and hidden labels on
// the mean series.
func pointPatches(spec models.ChartSpec, primary []float64, n int) map[int]seriesPatch {
	patches := make(map[int]seriesPatch)
	points := make(map[int]pointStyle)

	if spec.Type == models.ChartBar && len(spec.YColumns) == 1 {
		for i, v := range primary {
			color := spec.DownColor
			if v >= 0 {
				color = spec.UpColor
			}
			points[i] = pointStyle{fill: color}
		}
	}

	var labels string
	if spec.Labels == models.LabelsLast {
		last := n - 1
		position := "t"
		if spec.Type == models.ChartBar {
			position = "outEnd"
			if _, ok := points[last]; !ok {
				points[last] = pointStyle{fill: spec.UpColor}
			}
		} else {
			points[last] = pointStyle{marker: spec.UpColor}
		}
		labels = renderLastLabel(last, spec.NumberFormat, spec.UpColor, position)
	}
	if len(points) > 0 || labels != "" {
		patches[0] = seriesPatch{points: points, labels: labels}
	}

	if spec.Labels == models.LabelsAll && spec.MeanLine {
		patches[len(spec.YColumns)] = seriesPatch{labels: deletedLabels}
	}
	return patches
}

// BuildPriceVolume builds the dual-axis chart: price as a line on the
// primary axis and volume as columns on a secondary axis crossing at max.
func BuildPriceVolume(ds models.Dataset, spec models.PriceVolumeSpec, opts ...Option) (*Artifact, error) {
	cfg := newConfig(opts)
	spec = spec.WithDefaults()

	values, err := validateDataset(ds, spec.XColumn, []string{spec.PriceColumn, spec.VolumeColumn})
	if err != nil {
		return nil, err
	}
	n := len(ds)
	varyColors := false
	stride := spec.LabelStride
	if stride <= 0 {
		stride = n / 10
		if stride < 1 {
			stride = 1
		}
	}

	headers := []string{spec.XColumn, spec.PriceColumn, spec.VolumeColumn}
	rows := make([][]interface{}, n)
	for i, rec := range ds {
		rows[i] = []interface{}{cellValue(rec[spec.XColumn]), values[0][i], values[1][i]}
	}

	f := excelize.NewFile()
	art := &Artifact{File: f, Sheet: models.DataSheetName, Rows: n, Series: headers[1:]}
	fail := func(err error) (*Artifact, error) {
		f.Close()
		return nil, err
	}
	if err := writeTable(f, art.Sheet, headers, rows); err != nil {
		return fail(err)
	}

	xAxis := excelize.ChartAxis{TickLabelSkip: stride, Title: titleRuns(spec.XColumn, 10, false)}
	price := &excelize.Chart{
		Type:       excelize.Line,
		VaryColors: &varyColors,
		Series: []excelize.ChartSeries{{
			Name:       rangeRef(art.Sheet, 2, 1, 1),
			Categories: rangeRef(art.Sheet, 1, 2, n+1),
			Values:     rangeRef(art.Sheet, 2, 2, n+1),
			Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{spec.PriceColor}},
			Line:       excelize.ChartLine{Width: 1.75},
			Marker:     excelize.ChartMarker{Symbol: "none"},
		}},
		Title:     titleRuns(spec.Title, 14, true),
		Dimension: excelize.ChartDimension{Width: spec.Width, Height: spec.Height},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		XAxis:     xAxis,
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			NumFmt:         excelize.ChartNumFmt{CustomNumFmt: spec.PriceFormat},
			Title:          titleRuns(spec.PriceAxisTitle, 10, false),
		},
	}
	volume := &excelize.Chart{
		Type:       excelize.Col,
		VaryColors: &varyColors,
		Series: []excelize.ChartSeries{{
			Name:       rangeRef(art.Sheet, 3, 1, 1),
			Categories: rangeRef(art.Sheet, 1, 2, n+1),
			Values:     rangeRef(art.Sheet, 3, 2, n+1),
			Fill:       excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{spec.VolumeColor}},
		}},
		XAxis: xAxis,
		YAxis: excelize.ChartAxis{
			Secondary: true,
			NumFmt:    excelize.ChartNumFmt{CustomNumFmt: spec.VolumeFormat},
			Title:     titleRuns(spec.VolumeAxisTitle, 10, false),
		},
	}
	part, err := addChart(f, art.Sheet, spec.Anchor, price, volume)
	if err != nil {
		return fail(err)
	}
	art.ChartPart = part
	if err := finishSheet(f, art.Sheet, len(headers), n, spec.DataSource); err != nil {
		return fail(err)
	}
	cfg.logger.Info("price volume chart built", zap.Int("rows", n), zap.Int("label_stride", stride))
	return art, persist(art, spec.OutputPath, cfg.logger)
}

// cellValue keeps numbers and strings and renders anything else as text.
func cellValue(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return ""
	case string, float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, bool:
		return t
	}
	if f, ok := models.ToFloat(v); ok {
		return f
	}
	return fmt.Sprint(v)
}

// writeTable replaces the default sheet with one named sheet and writes the
// header row followed by the data rows.
func writeTable(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	head := make([]interface{}, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}
	return nil
}

// finishSheet writes the data-source caption two rows below the table and
// sets the print area over table and caption.
func finishSheet(f *excelize.File, sheet string, cols, n int, source string) error {
	captionRow := n + 3
	cell, err := excelize.CoordinatesToCellName(1, captionRow)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, models.DataSourceCaption(source)); err != nil {
		return fmt.Errorf("failed to write caption: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	return f.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: fmt.Sprintf("%s!$A$1:$%s$%d", quoteSheet(sheet), lastCol, captionRow),
		Scope:    sheet,
	})
}

// signFormat colors the font of a value range by sign.
func signFormat(f *excelize.File, sheet, ref, up, down string) error {
	upStyle, err := f.NewConditionalStyle(&excelize.Style{Font: &excelize.Font{Color: up}})
	if err != nil {
		return err
	}
	downStyle, err := f.NewConditionalStyle(&excelize.Style{Font: &excelize.Font{Color: down}})
	if err != nil {
		return err
	}
	return f.SetConditionalFormat(sheet, ref, []excelize.ConditionalFormatOptions{
		{Type: "cell", Criteria: ">=", Format: &upStyle, Value: "0"},
		{Type: "cell", Criteria: "<", Format: &downStyle, Value: "0"},
	})
}

// addChart adds the chart and returns the path of the new chart part.
func addChart(f *excelize.File, sheet, anchor string, chart *excelize.Chart, combo ...*excelize.Chart) (string, error) {
	before := make(map[string]bool)
	for _, p := range chartParts(f) {
		before[p] = true
	}
	if err := f.AddChart(sheet, anchor, chart, combo...); err != nil {
		return "", fmt.Errorf("failed to add chart: %w", err)
	}
	for _, p := range chartParts(f) {
		if !before[p] {
			return p, nil
		}
	}
	return "", fmt.Errorf("chart part not found after adding chart")
}

func chartParts(f *excelize.File) []string {
	var parts []string
	f.Pkg.Range(func(k, _ interface{}) bool {
		name, ok := k.(string)
		if ok && strings.HasPrefix(name, "xl/charts/chart") && strings.HasSuffix(name, ".xml") {
			parts = append(parts, name)
		}
		return true
	})
	sort.Strings(parts)
	return parts
}

// patchChartPart rewrites the chart part in the package with point-level
// styling.
func patchChartPart(f *excelize.File, part string, patches map[int]seriesPatch) error {
	raw, ok := f.Pkg.Load(part)
	if !ok {
		return fmt.Errorf("chart part %s not found", part)
	}
	data, ok := raw.([]byte)
	if !ok {
		return fmt.Errorf("chart part %s has unexpected content", part)
	}
	patched, err := applySeriesPatches(data, patches)
	if err != nil {
		return err
	}
	f.Pkg.Store(part, patched)
	return nil
}

// persist saves the workbook when a path is given.
func persist(art *Artifact, path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return reportfmt.NewPersistenceError(path, err)
		}
	}
	if err := art.File.SaveAs(path); err != nil {
		return reportfmt.NewPersistenceError(path, err)
	}
	art.Path = path
	logger.Info("workbook saved", zap.String("path", path))
	return nil
}

func titleRuns(text string, size float64, bold bool) []excelize.RichTextRun {
	if text == "" {
		return nil
	}
	return []excelize.RichTextRun{{
		Text: text,
		Font: &excelize.Font{Bold: bold, Size: size, Color: "000000"},
	}}
}

func quoteSheet(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// rangeRef renders an absolute reference to rows r1..r2 of one column.
func rangeRef(sheet string, col, r1, r2 int) string {
	name, _ := excelize.ColumnNumberToName(col)
	if r1 == r2 {
		return fmt.Sprintf("%s!$%s$%d", quoteSheet(sheet), name, r1)
	}
	return fmt.Sprintf("%s!$%s$%d:$%s$%d", quoteSheet(sheet), name, r1, name, r2)
}

// rangeCells renders a relative range of one column without a sheet.
func rangeCells(col, r1, r2 int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return fmt.Sprintf("%s%d:%s%d", name, r1, name, r2)
}
