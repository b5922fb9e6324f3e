package inspect

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/docx"
)

func sampleDocument() *docx.Document {
	d := docx.New()
	d.Core.Title = "宏观周报"

	p := d.AddParagraph()
	p.Props = &docx.ParagraphProps{
		Style:   &docx.Val{Val: docx.StyleHeading1},
		Justify: &docx.Val{Val: "both"},
		Spacing: &docx.Spacing{Before: 240, After: 240, Line: 360, LineRule: "auto"},
	}
	r := p.AddRun("一、市场回顾")
	r.Props = &docx.RunProps{
		Fonts: &docx.Fonts{ASCII: "黑体", HAnsi: "黑体", EastAsia: "黑体", CS: "黑体"},
		Bold:  &docx.OnOff{},
		Color: &docx.Val{Val: "000000"},
		Size:  &docx.Val{Val: "32"},
	}

	body := d.AddParagraph()
	body.Props = &docx.ParagraphProps{Indent: &docx.Indent{FirstLine: 560}}
	body.AddRun("正文")
	body.AddPageBreak()

	d.AddTable(&docx.Table{
		Props: docx.TableProps{
			Width:   docx.TableWidth{W: 5000, Type: "pct"},
			Justify: &docx.Val{Val: "center"},
			Borders: &docx.TableBorders{
				Top:     &docx.Border{Val: "single", Size: 12, Color: "000000"},
				Bottom:  &docx.Border{Val: "single", Size: 12, Color: "000000"},
				InsideH: &docx.Border{Val: "single", Size: 6, Color: "000000"},
				Left:    &docx.Border{Val: "none"},
			},
		},
		Rows: []*docx.TableRow{
			{Props: &docx.RowProps{Header: &docx.OnOff{}}, Cells: []*docx.TableCell{
				{Props: &docx.CellProps{VAlign: &docx.Val{Val: "center"}}, Paragraphs: []*docx.Paragraph{textParagraph("指标")}},
			}},
			{Cells: []*docx.TableCell{{Paragraphs: []*docx.Paragraph{textParagraph("1.5%")}}}},
		},
	})

	ftr := &docx.Paragraph{}
	ftr.AddRun("— ")
	ftr.AddField("PAGE", "1", nil)
	ftr.AddRun(" —")
	d.Footer = []*docx.Paragraph{ftr}
	return d
}

func textParagraph(s string) *docx.Paragraph {
	p := &docx.Paragraph{}
	p.AddRun(s)
	return p
}

func TestDocumentFromReader(t *testing.T) {
	buf, err := sampleDocument().WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	data := buf.Bytes()

	doc, err := DocumentFromReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("DocumentFromReader() error = %v", err)
	}

	if doc.Title != "宏观周报" {
		t.Errorf("Title = %q, expected %q", doc.Title, "宏观周报")
	}
	if len(doc.Paragraphs) != 2 {
		t.Fatalf("got %d paragraphs, expected 2", len(doc.Paragraphs))
	}

	h := doc.Paragraphs[0]
	if h.Style != docx.StyleHeading1 || h.Align != "both" || h.Text != "一、市场回顾" {
		t.Errorf("heading = %+v", h)
	}
	if h.SpaceBefore != 240 || h.SpaceAfter != 240 || h.Line != 360 {
		t.Errorf("heading spacing = %d/%d/%d, expected 240/240/360", h.SpaceBefore, h.SpaceAfter, h.Line)
	}
	if len(h.Runs) != 1 {
		t.Fatalf("got %d heading runs, expected 1", len(h.Runs))
	}
	run := h.Runs[0]
	if run.Font != "黑体" || run.ASCIIFont != "黑体" || run.Size != 32 || !run.Bold || run.Color != "000000" {
		t.Errorf("heading run = %+v", run)
	}

	if doc.Paragraphs[1].FirstLine != 560 {
		t.Errorf("FirstLine = %d, expected 560", doc.Paragraphs[1].FirstLine)
	}
	if doc.PageBreaks() != 1 {
		t.Errorf("PageBreaks() = %d, expected 1", doc.PageBreaks())
	}

	if len(doc.Tables) != 1 {
		t.Fatalf("got %d tables, expected 1", len(doc.Tables))
	}
	tbl := doc.Tables[0]
	if tbl.After != 2 || tbl.Align != "center" {
		t.Errorf("table After/Align = %d/%q", tbl.After, tbl.Align)
	}
	borders := []struct {
		edge string
		val  string
		size int
	}{
		{"top", "single", 12},
		{"bottom", "single", 12},
		{"insideH", "single", 6},
		{"left", "none", 0},
	}
	for _, b := range borders {
		got := tbl.Borders[b.edge]
		if got.Val != b.val || got.Size != b.size {
			t.Errorf("border %s = %+v, expected %s/%d", b.edge, got, b.val, b.size)
		}
	}
	if _, ok := tbl.Borders["insideV"]; ok {
		t.Error("insideV border should be absent")
	}
	if len(tbl.Rows) != 2 || !tbl.Rows[0].Header || tbl.Rows[1].Header {
		t.Fatalf("table rows = %+v", tbl.Rows)
	}
	if tbl.Rows[0].Cells[0].Text != "指标" || tbl.Rows[0].Cells[0].VAlign != "center" {
		t.Errorf("header cell = %+v", tbl.Rows[0].Cells[0])
	}

	if doc.Section.PageWidth != 11906 || doc.Section.PageHeight != 16838 {
		t.Errorf("page size = %dx%d, expected 11906x16838", doc.Section.PageWidth, doc.Section.PageHeight)
	}
	if doc.Section.FooterRef == "" {
		t.Error("FooterRef should be set")
	}

	if len(doc.Footer) != 1 {
		t.Fatalf("got %d footer paragraphs, expected 1", len(doc.Footer))
	}
	f := doc.Footer[0]
	if f.Text != "— 1 —" {
		t.Errorf("footer text = %q, expected %q", f.Text, "— 1 —")
	}
	if len(f.Fields) != 1 || f.Fields[0] != "PAGE" {
		t.Errorf("footer fields = %v, expected [PAGE]", f.Fields)
	}
}

func TestDocumentFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "r.docx")
	if err := sampleDocument().Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	doc, err := OpenDocument(path)
	if err != nil {
		t.Fatalf("OpenDocument() error = %v", err)
	}
	if len(doc.Paragraphs) != 2 {
		t.Errorf("got %d paragraphs, expected 2", len(doc.Paragraphs))
	}
}

func TestDocumentMissingPart(t *testing.T) {
	if _, err := OpenDocument(filepath.Join(t.TempDir(), "missing.docx")); err == nil {
		t.Error("expected error for missing file")
	}
}
