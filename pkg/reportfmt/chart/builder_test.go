package chart

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/inspect"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
)

func monthly(n int, f func(i int) float64) models.Dataset {
	ds := make(models.Dataset, n)
	for i := range ds {
		ds[i] = models.Record{
			"month": fmt.Sprintf("2024-%02d", i%12+1),
			"ret":   f(i),
		}
	}
	return ds
}

func inspectArtifact(t *testing.T, art *Artifact) (*inspect.Sheet, inspect.Chart) {
	t.Helper()
	buf, err := art.File.WriteToBuffer()
	require.NoError(t, err)
	wb, err := inspect.WorkbookFromReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	sheet, ok := wb.Sheet(models.DataSheetName)
	require.True(t, ok, "data sheet missing")
	require.Len(t, sheet.Charts, 1)
	return sheet, sheet.Charts[0]
}

func buildAndInspect(t *testing.T, ds models.Dataset, spec models.ChartSpec) (*inspect.Sheet, inspect.Chart) {
	t.Helper()
	art, err := Build(ds, spec)
	require.NoError(t, err)
	t.Cleanup(func() { art.Close() })
	return inspectArtifact(t, art)
}

func TestBuildLineChart(t *testing.T) {
	ds := monthly(30, func(i int) float64 { return float64(i) / 100 })
	sheet, c := buildAndInspect(t, ds, models.ChartSpec{
		Type:         models.ChartLine,
		Title:        "月度收益率",
		XColumn:      "month",
		YColumns:     []string{"ret"},
		NumberFormat: "0.00%",
	})

	assert.Equal(t, []string{"Line"}, c.Types)
	assert.Equal(t, "月度收益率", c.Title)
	assert.Empty(t, c.Legend, "single series without mean has no legend")
	assert.Equal(t, "E2", c.From)
	require.Len(t, c.Series, 1)

	s := c.Series[0]
	assert.Equal(t, 30, s.Points)
	assert.Equal(t, "'数据'!$B$1", s.NameRange)
	assert.Equal(t, "'数据'!$A$2:$A$31", s.XRange)
	assert.Equal(t, "'数据'!$B$2:$B$31", s.YRange)
	assert.Equal(t, "none", s.Marker)
	assert.Empty(t, s.DataPoints)
	assert.Empty(t, s.LabelPoints)
	assert.False(t, s.ShowValue)

	vals := c.ValueAxes()
	require.Len(t, vals, 1)
	assert.Equal(t, "0.00%", vals[0].NumberFormat)
	assert.True(t, vals[0].MajorGridlines)
	for _, ax := range c.Axes {
		if ax.Kind == "catAx" {
			assert.Equal(t, models.DefaultLabelStride, ax.TickLabelSkip)
		}
	}

	require.Len(t, sheet.Rows, 33)
	assert.Equal(t, []string{"month", "ret"}, sheet.Rows[0])
	assert.Equal(t, "数据来源：Tushare", sheet.Rows[32][0])
	assert.Equal(t, []inspect.PrintArea{{R1: 1, C1: 1, R2: 33, C2: 2}}, sheet.PrintAreas)
}

func TestBuildBarSignColoring(t *testing.T) {
	values := []float64{1.2, -0.5, 0, -2, 3}
	ds := monthly(len(values), func(i int) float64 { return values[i] })
	_, c := buildAndInspect(t, ds, models.ChartSpec{Type: models.ChartBar, XColumn: "month", YColumns: []string{"ret"}})

	assert.Equal(t, []string{"Bar"}, c.Types)
	require.Len(t, c.Series, 1)
	expected := []inspect.DataPoint{
		{Index: 0, Fill: "FF0000"},
		{Index: 1, Fill: "00B050"},
		{Index: 2, Fill: "FF0000"},
		{Index: 3, Fill: "00B050"},
		{Index: 4, Fill: "FF0000"},
	}
	assert.Equal(t, expected, c.Series[0].DataPoints)
}

func TestBuildBarCustomColors(t *testing.T) {
	ds := monthly(2, func(i int) float64 { return float64(1 - 2*i) })
	_, c := buildAndInspect(t, ds, models.ChartSpec{
		Type: models.ChartBar, XColumn: "month", YColumns: []string{"ret"},
		UpColor: "C00000", DownColor: "70AD47",
	})
	require.Len(t, c.Series, 1)
	assert.Equal(t, []inspect.DataPoint{{Index: 0, Fill: "C00000"}, {Index: 1, Fill: "70AD47"}}, c.Series[0].DataPoints)
}

func TestBuildBarConditionalFormat(t *testing.T) {
	ds := monthly(3, func(i int) float64 { return float64(i - 1) })
	art, err := Build(ds, models.ChartSpec{Type: models.ChartBar, XColumn: "month", YColumns: []string{"ret"}})
	require.NoError(t, err)
	defer art.Close()

	formats, err := art.File.GetConditionalFormats(models.DataSheetName)
	require.NoError(t, err)
	require.Contains(t, formats, "B2:B4")
	assert.Len(t, formats["B2:B4"], 2)
}

func TestBuildLastLabelLine(t *testing.T) {
	ds := monthly(12, func(i int) float64 { return float64(i) })
	_, c := buildAndInspect(t, ds, models.ChartSpec{
		XColumn: "month", YColumns: []string{"ret"}, Labels: models.LabelsLast,
	})

	require.Len(t, c.Series, 1)
	s := c.Series[0]
	assert.Equal(t, []int{11}, s.LabelPoints)
	assert.Equal(t, models.DefaultUpColor, s.LabelColor)
	assert.False(t, s.ShowValue)
	assert.Equal(t, []inspect.DataPoint{{Index: 11, Marker: models.DefaultUpColor}}, s.DataPoints)
}

func TestBuildLastLabelBar(t *testing.T) {
	ds := monthly(4, func(i int) float64 { return float64(i) - 2 })
	_, c := buildAndInspect(t, ds, models.ChartSpec{
		Type: models.ChartBar, XColumn: "month", YColumns: []string{"ret"}, Labels: models.LabelsLast,
	})
	require.Len(t, c.Series, 1)
	assert.Equal(t, []int{3}, c.Series[0].LabelPoints)
	assert.Len(t, c.Series[0].DataPoints, 4)
}

func TestBuildMeanLine(t *testing.T) {
	values := []float64{1, 2, 3, 6}
	ds := monthly(len(values), func(i int) float64 { return values[i] })
	art, err := Build(ds, models.ChartSpec{
		XColumn: "month", YColumns: []string{"ret"}, MeanLine: true, Labels: models.LabelsAll,
	})
	require.NoError(t, err)
	defer art.Close()
	require.NotNil(t, art.Mean)
	assert.InDelta(t, 3.0, *art.Mean, 1e-9)
	assert.Equal(t, []string{"ret", models.MeanSeriesName}, art.Series)

	sheet, c := inspectArtifact(t, art)
	assert.Equal(t, "b", c.Legend)
	require.Len(t, c.Series, 2)
	assert.Equal(t, "'数据'!$C$1", c.Series[1].NameRange)
	assert.Equal(t, "dash", c.Series[1].Dash)
	assert.True(t, c.Series[0].ShowValue)
	assert.True(t, c.Series[1].LabelsDeleted)

	assert.Equal(t, models.MeanSeriesName, sheet.Rows[0][2])
	for r := 1; r <= len(values); r++ {
		assert.Equal(t, "3", sheet.Rows[r][2], "row %d", r)
	}
}

func TestBuildMeanLineMixedSigns(t *testing.T) {
	values := []float64{-2, 0, 1, 3}
	ds := monthly(len(values), func(i int) float64 { return values[i] })
	for _, typ := range []models.ChartType{models.ChartLine, models.ChartBar} {
		art, err := Build(ds, models.ChartSpec{
			Type: typ, XColumn: "month", YColumns: []string{"ret"}, MeanLine: true,
		})
		require.NoError(t, err)
		require.NotNil(t, art.Mean)
		assert.InDelta(t, 0.5, *art.Mean, 1e-12, "%s", typ)

		sheet, c := inspectArtifact(t, art)
		require.Len(t, c.Series, 2, "%s", typ)
		assert.Equal(t, len(values), c.Series[1].Points)
		for r := 1; r <= len(values); r++ {
			assert.Equal(t, "0.5", sheet.Rows[r][2], "%s row %d", typ, r)
		}
		art.Close()
	}
}

func TestBuildBarMeanLineCombo(t *testing.T) {
	ds := monthly(3, func(i int) float64 { return float64(i + 1) })
	_, c := buildAndInspect(t, ds, models.ChartSpec{
		Type: models.ChartBar, XColumn: "month", YColumns: []string{"ret"}, MeanLine: true,
	})
	assert.Equal(t, []string{"Bar", "Line"}, c.Types)
	require.Len(t, c.Series, 2)
	assert.Len(t, c.Series[0].DataPoints, 3)
	assert.Equal(t, "Line", c.Series[1].Type)
	assert.Empty(t, c.Series[1].DataPoints)
	assert.Equal(t, "b", c.Legend)
}

func TestBuildTwoSeriesBar(t *testing.T) {
	ds := models.Dataset{
		{"industry": "银行", "2023": 1.5, "2024": -0.3},
		{"industry": "医药", "2023": -2.1, "2024": 4.2},
		{"industry": "电子", "2023": 3.3, "2024": 2.0},
	}
	sheet, c := buildAndInspect(t, ds, models.ChartSpec{
		Type: models.ChartBar, XColumn: "industry", YColumns: []string{"2023", "2024"},
	})
	assert.Equal(t, "b", c.Legend)
	require.Len(t, c.Series, 2)
	for _, s := range c.Series {
		assert.Equal(t, 3, s.Points)
		assert.Empty(t, s.DataPoints, "sign coloring applies to single-series bars only")
	}
	assert.Equal(t, []string{"industry", "2023", "2024"}, sheet.Rows[0])
}

func TestBuildUnknownTypeFallsBackToLine(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	ds := monthly(3, func(i int) float64 { return float64(i) })
	art, err := Build(ds, models.ChartSpec{Type: "pie", XColumn: "month", YColumns: []string{"ret"}},
		WithLogger(zap.New(core)))
	require.NoError(t, err)
	defer art.Close()

	_, c := inspectArtifact(t, art)
	assert.Equal(t, []string{"Line"}, c.Types)
	assert.Equal(t, 1, logs.FilterMessage("unknown chart type, falling back to line").Len())
}

func TestBuildValidation(t *testing.T) {
	good := monthly(3, func(i int) float64 { return float64(i) })
	text := models.Dataset{{"month": "2024-01", "ret": "n/a"}}
	nan := models.Dataset{{"month": "2024-01", "ret": 1}, {"month": "2024-02", "ret": "NaN"}}
	inf := models.Dataset{{"month": "2024-01", "ret": "Inf"}}
	nanFloat := models.Dataset{{"month": "2024-01", "ret": math.NaN()}}

	tests := []struct {
		name  string
		ds    models.Dataset
		spec  models.ChartSpec
		field string
	}{
		{"empty dataset", nil, models.ChartSpec{XColumn: "month", YColumns: []string{"ret"}}, "dataset"},
		{"no x", good, models.ChartSpec{YColumns: []string{"ret"}}, "x"},
		{"missing x", good, models.ChartSpec{XColumn: "date", YColumns: []string{"ret"}}, "x"},
		{"no y", good, models.ChartSpec{XColumn: "month"}, "y"},
		{"missing y", good, models.ChartSpec{XColumn: "month", YColumns: []string{"ret", "vol"}}, "y[1]"},
		{"non-numeric y", text, models.ChartSpec{XColumn: "month", YColumns: []string{"ret"}}, "ret"},
		{"NaN text with mean line", nan, models.ChartSpec{XColumn: "month", YColumns: []string{"ret"}, MeanLine: true}, "ret"},
		{"Inf text", inf, models.ChartSpec{XColumn: "month", YColumns: []string{"ret"}}, "ret"},
		{"NaN float", nanFloat, models.ChartSpec{XColumn: "month", YColumns: []string{"ret"}}, "ret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := Build(tt.ds, tt.spec)
			require.Error(t, err)
			assert.Nil(t, art)
			assert.True(t, reportfmt.IsValidation(err))
			var ve *reportfmt.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestBuildSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "ret.xlsx")
	ds := monthly(5, func(i int) float64 { return float64(i) })
	art, err := Build(ds, models.ChartSpec{XColumn: "month", YColumns: []string{"ret"}, OutputPath: path})
	require.NoError(t, err)
	defer art.Close()
	assert.Equal(t, path, art.Path)

	wb, err := inspect.OpenWorkbook(path)
	require.NoError(t, err)
	sheet, ok := wb.Sheet(models.DataSheetName)
	require.True(t, ok)
	assert.Len(t, sheet.Charts, 1)
}

func TestBuildPersistenceError(t *testing.T) {
	dir := t.TempDir()
	ds := monthly(2, func(i int) float64 { return float64(i) })
	art, err := Build(ds, models.ChartSpec{XColumn: "month", YColumns: []string{"ret"}, OutputPath: dir})
	require.Error(t, err)
	assert.True(t, reportfmt.IsPersistence(err))
	require.NotNil(t, art, "the in-memory workbook is still returned")
	art.Close()
}

func TestBuildPriceVolume(t *testing.T) {
	ds := make(models.Dataset, 25)
	for i := range ds {
		ds[i] = models.Record{
			"date":   fmt.Sprintf("2024-01-%02d", i+1),
			"close":  10 + float64(i)/10,
			"volume": 1000 + i*10,
		}
	}
	art, err := BuildPriceVolume(ds, models.PriceVolumeSpec{})
	require.NoError(t, err)
	defer art.Close()
	assert.Equal(t, []string{"close", "volume"}, art.Series)

	sheet, c := inspectArtifact(t, art)
	assert.Equal(t, "股价与成交量", c.Title)
	assert.Equal(t, "b", c.Legend)
	assert.ElementsMatch(t, []string{"Bar", "Line"}, c.Types)
	require.Len(t, c.Series, 2)
	for _, s := range c.Series {
		assert.Equal(t, 25, s.Points)
	}

	vals := c.ValueAxes()
	require.Len(t, vals, 2)
	var crossesMax int
	for _, ax := range vals {
		if ax.Crosses == "max" {
			crossesMax++
			assert.Equal(t, "成交量（手）", ax.Title)
		}
	}
	assert.Equal(t, 1, crossesMax)
	for _, ax := range c.Axes {
		if ax.Kind == "catAx" && !ax.Deleted {
			assert.Equal(t, 2, ax.TickLabelSkip)
		}
	}
	assert.Equal(t, []string{"date", "close", "volume"}, sheet.Rows[0])
}

func TestBuildPriceVolumeValidation(t *testing.T) {
	ds := models.Dataset{{"date": "2024-01-02", "close": 10.0}}
	_, err := BuildPriceVolume(ds, models.PriceVolumeSpec{})
	require.Error(t, err)
	assert.True(t, reportfmt.IsValidation(err))
}
