package report

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/formatter"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/inspect"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
)

var fixedNow = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func sampleSpec() models.DocumentSpec {
	return models.DocumentSpec{
		Title:        "三一重工 投资研究报告",
		Organization: "测试证券研究所",
		IncludeCover: true,
		DataSource:   "Wind",
		Sections: []models.Section{
			{Heading: "核心提要", Points: []string{"ROE 15.2%", "估值合理"}},
			{
				Heading: "投资评级",
				Table: &models.Table{
					Headers: []string{"投资建议", "目标价格"},
					Rows:    [][]string{{"增持", "35.00元"}},
				},
			},
			{Heading: "盈利能力", Level: 2, Paragraphs: []string{"毛利率稳定。"}},
			{Heading: "费用率", Level: 3, Bullets: []string{"销售费用下降"}},
			{Heading: "成长性", Level: 2},
		},
	}
}

func texts(doc *inspect.Document) []string {
	out := make([]string, len(doc.Paragraphs))
	for i, p := range doc.Paragraphs {
		out[i] = p.Text
	}
	return out
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"三一重工 投资研究报告", "三一重工投资研究报告_20261016.docx"},
		{"  Macro Weekly  ", "MacroWeekly_20261016.docx"},
		{strings.Repeat("长", 40), strings.Repeat("长", 30) + "_20261016.docx"},
		{"a/b", "ab_20261016.docx"},
		{" ", "report_20261016.docx"},
	}

	for _, tt := range tests {
		if got := DefaultPath(tt.title, fixedNow); got != tt.expected {
			t.Errorf("DefaultPath(%q) = %q, expected %q", tt.title, got, tt.expected)
		}
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	path, err := Generate(sampleSpec(), WithOutputDir(dir), WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "三一重工投资研究报告_20261016.docx"), path)

	doc, err := inspect.OpenDocument(path)
	require.NoError(t, err)

	expected := []string{
		"三一重工 投资研究报告",
		"测试证券研究所",
		"2026年10月16日",
		"",
		"核心提要",
		"1. ROE 15.2%",
		"2. 估值合理",
		"投资评级",
		"（一）盈利能力",
		"毛利率稳定。",
		"1.费用率",
		"销售费用下降",
		"（二）成长性",
		"数据来源：Wind",
	}
	if diff := cmp.Diff(expected, texts(doc)); diff != "" {
		t.Errorf("paragraph texts mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 1, doc.PageBreaks(), "cover adds exactly one page break")
	assert.Equal(t, 1, doc.Paragraphs[3].PageBreaks)
	assert.Equal(t, "三一重工 投资研究报告", doc.Title)

	require.Len(t, doc.Tables, 1)
	assert.Equal(t, 8, doc.Tables[0].After, "table follows the 投资评级 heading")
	assert.Equal(t, "增持", doc.Tables[0].Rows[1].Cells[0].Text)

	footnote := doc.Paragraphs[len(doc.Paragraphs)-1]
	assert.Equal(t, "right", footnote.Align)

	require.Len(t, doc.Footer, 1)
	assert.Equal(t, []string{"PAGE"}, doc.Footer[0].Fields)
	assert.Equal(t, "center", doc.Footer[0].Align)

	assert.Equal(t, "Heading1", doc.Paragraphs[4].Style)
	assert.NotZero(t, doc.Paragraphs[11].NumID, "bullets are list items")
}

func TestGenerateDisclaimer(t *testing.T) {
	spec := models.DocumentSpec{
		Title:             "周报",
		IncludeDisclaimer: true,
		NumberTopLevel:    true,
		Sections:          []models.Section{{Heading: "市场回顾"}},
		OutputPath:        filepath.Join(t.TempDir(), "weekly.docx"),
	}
	path, err := Generate(spec, WithClock(clock))
	require.NoError(t, err)
	assert.Equal(t, spec.OutputPath, path)

	doc, err := inspect.OpenDocument(path)
	require.NoError(t, err)
	got := texts(doc)
	require.Len(t, got, 4)
	assert.Equal(t, formatter.DisclaimerHeading, got[0])
	assert.Equal(t, formatter.DefaultDisclaimer, got[1])
	assert.Equal(t, "一、市场回顾", got[2], "disclaimer heading takes no number")
	assert.Equal(t, "数据来源：Tushare", got[3])
	assert.Zero(t, doc.PageBreaks())
}

func TestGenerateValidationLeavesNoFile(t *testing.T) {
	tests := []struct {
		name string
		spec models.DocumentSpec
	}{
		{"no title", models.DocumentSpec{}},
		{"cover without organization", models.DocumentSpec{Title: "t", IncludeCover: true}},
		{"ragged table", models.DocumentSpec{
			Title: "t",
			Sections: []models.Section{
				{Heading: "ok", Paragraphs: []string{"x"}},
				{Table: &models.Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}}},
			},
		}},
		{"figure without source", models.DocumentSpec{
			Title:    "t",
			Sections: []models.Section{{Figures: []models.Figure{{Caption: "c"}}}},
		}},
		{"missing figure file", models.DocumentSpec{
			Title:    "t",
			Sections: []models.Section{{Heading: "图表", Figures: []models.Figure{{Path: filepath.Join(os.TempDir(), "reportfmt-missing", "nope.png")}}}},
		}},
		{"figure is not an image", models.DocumentSpec{
			Title:    "t",
			Sections: []models.Section{{Figures: []models.Figure{{Data: []byte("not an image")}}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := Generate(tt.spec, WithOutputDir(dir), WithClock(clock))
			require.Error(t, err)
			assert.True(t, reportfmt.IsValidation(err))

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestGeneratePersistenceError(t *testing.T) {
	dir := t.TempDir()
	_, err := Generate(models.DocumentSpec{Title: "t", OutputPath: dir}, WithClock(clock))
	require.Error(t, err)
	assert.True(t, reportfmt.IsPersistence(err))
}

func TestGenerateDeterministicGeometry(t *testing.T) {
	dir := t.TempDir()
	first := sampleSpec()
	first.OutputPath = filepath.Join(dir, "a.docx")
	second := sampleSpec()
	second.OutputPath = filepath.Join(dir, "b.docx")

	_, err := Generate(first, WithClock(clock))
	require.NoError(t, err)
	_, err = Generate(second, WithClock(clock))
	require.NoError(t, err)

	a, err := inspect.OpenDocument(first.OutputPath)
	require.NoError(t, err)
	b, err := inspect.OpenDocument(second.OutputPath)
	require.NoError(t, err)

	if diff := cmp.Diff(a.Section, b.Section); diff != "" {
		t.Errorf("section geometry differs (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Paragraphs, b.Paragraphs); diff != "" {
		t.Errorf("paragraphs differ (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(a.Tables, b.Tables); diff != "" {
		t.Errorf("tables differ (-a +b):\n%s", diff)
	}
	// A4 with 37/35/28/26 mm margins
	assert.Equal(t, 11906, a.Section.PageWidth)
	assert.Equal(t, 16838, a.Section.PageHeight)
	assert.Equal(t, 2098, a.Section.MarginTop)
	assert.Equal(t, 1587, a.Section.MarginLeft)
}

func TestGenerateFigure(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	figPath := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, os.WriteFile(figPath, buf.Bytes(), 0o644))

	spec := models.DocumentSpec{
		Title: "图表",
		Sections: []models.Section{{
			Heading: "走势",
			Figures: []models.Figure{{Path: figPath, Caption: "图1 收盘价"}},
		}},
		OutputPath: filepath.Join(t.TempDir(), "fig.docx"),
	}
	_, err := Generate(spec, WithClock(clock))
	require.NoError(t, err)

	doc, err := inspect.OpenDocument(spec.OutputPath)
	require.NoError(t, err)
	assert.Len(t, doc.Media, 1)
	require.GreaterOrEqual(t, len(doc.Paragraphs), 3)
	assert.Equal(t, 1, doc.Paragraphs[1].Drawings)
	assert.Equal(t, "图1 收盘价", doc.Paragraphs[2].Text)
}
