package formatter

import (
	"bytes"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/docx"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/style"
)

func newFormatter(opts ...Option) *Formatter {
	return New(style.Default(), opts...)
}

func TestNewAppliesPageGeometry(t *testing.T) {
	f := newFormatter()
	m := f.Document().Section.Margins
	assert.Equal(t, 2098, m.Top)
	assert.Equal(t, 1984, m.Bottom)
	assert.Equal(t, 1587, m.Left)
	assert.Equal(t, 1474, m.Right)
	assert.Equal(t, docx.PageSize{W: 11906, H: 16838}, f.Document().Section.PageSize)
}

func TestApplyRunDefaultsToBlack(t *testing.T) {
	f := newFormatter()
	run := &docx.Run{}
	size := 14.0
	f.ApplyRun(run, "仿宋", &size, nil, "")

	require.NotNil(t, run.Props)
	assert.Equal(t, "000000", run.Props.Color.Val)
	assert.Equal(t, &docx.Fonts{ASCII: "仿宋", HAnsi: "仿宋", EastAsia: "仿宋", CS: "仿宋"}, run.Props.Fonts)
	assert.Equal(t, "28", run.Props.Size.Val)
	assert.Nil(t, run.Props.Bold)

	bold := false
	f.ApplyRun(run, "黑体", nil, &bold, "FF0000")
	assert.Equal(t, "FF0000", run.Props.Color.Val)
	assert.Equal(t, "0", run.Props.Bold.Val)
	assert.Equal(t, "28", run.Props.Size.Val)
}

func TestHeadingLevels(t *testing.T) {
	f := newFormatter()
	h1 := f.AddHeading("核心提要", 1)
	h2a := f.AddHeading("盈利能力", 2)
	h3 := f.AddHeading("毛利率", 3)
	h2b := f.AddHeading("估值", 2)
	h3b := f.AddHeading("市盈率", 3)
	f.AddHeading("投资建议", 1)
	h2c := f.AddHeading("评级", 2)

	assert.Equal(t, docx.StyleHeading1, h1.Props.Style.Val)
	assert.Equal(t, "核心提要", h1.Text())
	assert.Equal(t, "both", h1.Props.Justify.Val)
	assert.Equal(t, &docx.Spacing{Before: 240, After: 240, Line: 360, LineRule: "auto"}, h1.Props.Spacing)
	assert.Equal(t, "1", h1.Runs[0].Props.Bold.Val)
	assert.Equal(t, "000000", h1.Runs[0].Props.Color.Val)

	assert.Nil(t, h2a.Props.Style)
	assert.Equal(t, "（一）盈利能力", h2a.Text())
	assert.Equal(t, "1.毛利率", h3.Text())
	assert.Equal(t, "（二）估值", h2b.Text())
	assert.Equal(t, "1.市盈率", h3b.Text(), "level 3 counter resets under a new level 2")
	assert.Equal(t, "（一）评级", h2c.Text(), "level 2 counter resets under a new level 1")
	assert.Equal(t, h1.Props.Spacing, h2a.Props.Spacing)
}

func TestTopLevelNumbering(t *testing.T) {
	f := newFormatter(WithTopLevelNumbering(true))
	assert.Equal(t, "一、概览", f.AddHeading("概览", 1).Text())
	assert.Equal(t, "二、风险", f.AddHeading("风险", 1).Text())
}

func TestChineseNumeral(t *testing.T) {
	tests := []struct {
		n        int
		expected string
	}{
		{1, "一"},
		{9, "九"},
		{10, "十"},
		{11, "十一"},
		{20, "二十"},
		{35, "三十五"},
		{100, "100"},
	}
	for _, tt := range tests {
		if got := chineseNumeral(tt.n); got != tt.expected {
			t.Errorf("chineseNumeral(%d) = %q, expected %q", tt.n, got, tt.expected)
		}
	}
}

func TestAddParagraph(t *testing.T) {
	f := newFormatter()
	p := f.AddParagraph("正文")
	assert.Equal(t, "both", p.Props.Justify.Val)
	assert.Equal(t, 560, p.Props.Indent.FirstLine)
	assert.Equal(t, &docx.Spacing{Before: 0, After: 240, Line: 360, LineRule: "auto"}, p.Props.Spacing)
	assert.Equal(t, "28", p.Runs[0].Props.Size.Val)

	c := f.AddParagraph("居中", Align(style.AlignCenter), NoIndent(), Font("楷体"), Size(12))
	assert.Equal(t, "center", c.Props.Justify.Val)
	assert.Nil(t, c.Props.Indent)
	assert.Equal(t, "楷体", c.Runs[0].Props.Fonts.EastAsia)
	assert.Equal(t, "24", c.Runs[0].Props.Size.Val)
}

func TestNumberedPointsAndBullets(t *testing.T) {
	f := newFormatter()
	pts := f.AddNumberedPoints([]string{"ROE 15.2%", "PE 25 倍"})
	require.Len(t, pts, 2)
	assert.Equal(t, "1. ROE 15.2%", pts[0].Text())
	assert.Equal(t, "2. PE 25 倍", pts[1].Text())
	assert.Equal(t, 560, pts[0].Props.Indent.FirstLine)

	bs := f.AddBulletList([]string{"a", "b"})
	require.Len(t, bs, 2)
	assert.Equal(t, "a", bs[0].Text())
	require.NotNil(t, bs[0].Props.Numbering)
	assert.Equal(t, "1", bs[0].Props.Numbering.ID.Val)
	assert.Equal(t, 360, bs[0].Props.Spacing.Line)
}

func TestThreeLineTable(t *testing.T) {
	f := newFormatter()
	tbl, err := f.AddThreeLineTable(
		[][]string{{"买入", "35.00元"}, {"持有", "30.00元"}},
		[]string{"投资建议", "目标价格"},
	)
	require.NoError(t, err)

	b := tbl.Props.Borders
	assert.Equal(t, docx.Border{Val: "single", Size: 12, Color: "000000"}, *b.Top)
	assert.Equal(t, docx.Border{Val: "single", Size: 12, Color: "000000"}, *b.Bottom)
	assert.Equal(t, docx.Border{Val: "single", Size: 6, Color: "000000"}, *b.InsideH)
	for _, side := range []*docx.Border{b.Left, b.Right, b.InsideV} {
		assert.Equal(t, "none", side.Val)
	}

	require.Len(t, tbl.Rows, 3)
	head := tbl.Rows[0].Cells[0].Paragraphs[0]
	assert.Equal(t, "1", head.Runs[0].Props.Bold.Val)
	assert.Equal(t, "center", head.Props.Justify.Val)
	cell := tbl.Rows[1].Cells[1].Paragraphs[0]
	assert.Equal(t, "35.00元", cell.Text())
	assert.Equal(t, "0", cell.Runs[0].Props.Bold.Val)
	assert.Equal(t, "center", cell.Props.Justify.Val)
}

func TestThreeLineTableRejectsMismatchedRow(t *testing.T) {
	f := newFormatter()
	before := len(f.Document().Blocks())
	tbl, err := f.AddThreeLineTable([][]string{{"a", "b"}, {"c"}}, []string{"x", "y"})
	assert.Nil(t, tbl)
	require.Error(t, err)
	assert.True(t, reportfmt.IsValidation(err))
	assert.Len(t, f.Document().Blocks(), before, "no table appended")
}

func TestPageNumberFooter(t *testing.T) {
	f := newFormatter()
	f.AddPageNumberFooter()
	require.Len(t, f.Document().Footer, 1)
	p := f.Document().Footer[0]
	assert.Equal(t, "center", p.Props.Justify.Val)
	assert.Equal(t, "— 1 —", p.Text())

	var instr string
	for _, r := range p.Runs {
		if r.InstrText != nil {
			instr = strings.TrimSpace(r.InstrText.Value)
		}
		require.NotNil(t, r.Props)
		assert.Equal(t, "000000", r.Props.Color.Val)
	}
	assert.Equal(t, "PAGE", instr)
}

func countPageBreaks(d *docx.Document) int {
	n := 0
	for _, p := range d.Paragraphs() {
		for _, r := range p.Runs {
			if r.Break != nil && r.Break.Type == "page" {
				n++
			}
		}
	}
	return n
}

func TestCoverPage(t *testing.T) {
	f := newFormatter()
	f.AddCoverPage("某某股票投资研究报告", "某某证券研究所", "2026年2月6日")
	ps := f.Document().Paragraphs()
	require.Len(t, ps, 4)
	assert.Equal(t, "某某股票投资研究报告", ps[0].Text())
	assert.Equal(t, "44", ps[0].Runs[0].Props.Size.Val)
	assert.Equal(t, &docx.Spacing{Before: 2000, After: 1000, Line: 240, LineRule: "auto"}, ps[0].Props.Spacing)
	for _, p := range ps[:3] {
		assert.Equal(t, "center", p.Props.Justify.Val)
	}
	assert.Equal(t, 1, countPageBreaks(f.Document()))
}

func TestFootnoteAndDisclaimer(t *testing.T) {
	f := newFormatter(WithTopLevelNumbering(true))
	fn := f.AddDataSourceFootnote("")
	assert.Equal(t, "数据来源：Tushare", fn.Text())
	assert.Equal(t, "right", fn.Props.Justify.Val)

	f.AddDisclaimer("")
	ps := f.Document().Paragraphs()
	require.Len(t, ps, 3)
	assert.Equal(t, DisclaimerHeading, ps[1].Text())
	assert.Equal(t, DefaultDisclaimer, ps[2].Text())
	// the disclaimer heading does not consume a top-level number
	assert.Equal(t, "一、概览", f.AddHeading("概览", 1).Text())
}

func TestAddFigure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 150))))

	f := newFormatter()
	require.NoError(t, f.AddFigure(models.Figure{Data: buf.Bytes(), Caption: "图1 股价走势"}))
	ps := f.Document().Paragraphs()
	require.Len(t, ps, 2)
	d := ps[0].Runs[0].Drawing
	require.NotNil(t, d)
	assert.Equal(t, docx.MMToEMU(156), d.Inline.Extent.CX)
	assert.Equal(t, docx.MMToEMU(156)/2, d.Inline.Extent.CY)
	assert.Equal(t, "图1 股价走势", ps[1].Text())

	err := f.AddFigure(models.Figure{Data: []byte("nope")})
	assert.True(t, reportfmt.IsValidation(err))
	err = f.AddFigure(models.Figure{Path: filepath.Join(t.TempDir(), "missing.png")})
	require.Error(t, err)
	assert.True(t, reportfmt.IsValidation(err))
	assert.Len(t, f.Document().Paragraphs(), 2)
}

func TestSavePersistenceError(t *testing.T) {
	f := newFormatter()
	dir := t.TempDir()
	require.NoError(t, f.Save(filepath.Join(dir, "ok.docx")))

	// a directory cannot be overwritten by a file
	err := f.Save(dir)
	require.Error(t, err)
	assert.True(t, reportfmt.IsPersistence(err))
	var pe *reportfmt.PersistenceError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, dir, pe.Path)
}
