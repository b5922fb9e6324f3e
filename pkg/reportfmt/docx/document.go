// Package docx writes WordprocessingML (.docx) packages: paragraphs, tables,
// inline pictures, one section with a footer, styles and bullet numbering.
package docx

import (
	"encoding/xml"
	"strings"
)

// Namespaces declared on the document and footer parts.
const (
	NameSpaceWordprocessingML = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	NameSpaceRelationships    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	NameSpaceDrawingWP        = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	NameSpaceDrawingML        = "http://schemas.openxmlformats.org/drawingml/2006/main"
	NameSpacePicture          = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// Val is an element carrying a single w:val attribute.
type Val struct {
	Val string `xml:"w:val,attr"`
}

// OnOff is a toggle element; an empty value means on.
type OnOff struct {
	Val string `xml:"w:val,attr,omitempty"`
}

// Fonts is w:rFonts. Each script slot is set independently.
type Fonts struct {
	ASCII    string `xml:"w:ascii,attr,omitempty"`
	HAnsi    string `xml:"w:hAnsi,attr,omitempty"`
	EastAsia string `xml:"w:eastAsia,attr,omitempty"`
	CS       string `xml:"w:cs,attr,omitempty"`
}

// RunProps is w:rPr.
type RunProps struct {
	Fonts  *Fonts `xml:"w:rFonts,omitempty"`
	Bold   *OnOff `xml:"w:b,omitempty"`
	BoldCS *OnOff `xml:"w:bCs,omitempty"`
	Color  *Val   `xml:"w:color,omitempty"`
	Size   *Val   `xml:"w:sz,omitempty"`
	SizeCS *Val   `xml:"w:szCs,omitempty"`
}

// Break is w:br.
type Break struct {
	Type string `xml:"w:type,attr,omitempty"`
}

// FieldChar is w:fldChar.
type FieldChar struct {
	Type string `xml:"w:fldCharType,attr"`
}

// Text is w:t or w:instrText.
type Text struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

// NewText returns a text node, preserving edge whitespace when present.
func NewText(s string) *Text {
	t := &Text{Value: s}
	if s != strings.TrimSpace(s) {
		t.Space = "preserve"
	}
	return t
}

// Run is w:r. Only one content field is normally set.
type Run struct {
	XMLName   xml.Name   `xml:"w:r"`
	Props     *RunProps  `xml:"w:rPr,omitempty"`
	Break     *Break     `xml:"w:br,omitempty"`
	FieldChar *FieldChar `xml:"w:fldChar,omitempty"`
	InstrText *Text      `xml:"w:instrText,omitempty"`
	Text      *Text      `xml:"w:t,omitempty"`
	Drawing   *Drawing   `xml:"w:drawing,omitempty"`
}

// NumberingProps is w:numPr.
type NumberingProps struct {
	Level Val `xml:"w:ilvl"`
	ID    Val `xml:"w:numId"`
}

// Spacing is w:spacing in twips. Line is in 240ths of a line when
// LineRule is "auto".
type Spacing struct {
	Before   int    `xml:"w:before,attr"`
	After    int    `xml:"w:after,attr"`
	Line     int    `xml:"w:line,attr,omitempty"`
	LineRule string `xml:"w:lineRule,attr,omitempty"`
}

// Indent is w:ind in twips.
type Indent struct {
	Left      int `xml:"w:left,attr,omitempty"`
	Hanging   int `xml:"w:hanging,attr,omitempty"`
	FirstLine int `xml:"w:firstLine,attr,omitempty"`
}

// ParagraphProps is w:pPr. Field order follows the schema sequence.
type ParagraphProps struct {
	Style        *Val            `xml:"w:pStyle,omitempty"`
	KeepNext     *OnOff          `xml:"w:keepNext,omitempty"`
	Numbering    *NumberingProps `xml:"w:numPr,omitempty"`
	Spacing      *Spacing        `xml:"w:spacing,omitempty"`
	Indent       *Indent         `xml:"w:ind,omitempty"`
	Justify      *Val            `xml:"w:jc,omitempty"`
	OutlineLevel *Val            `xml:"w:outlineLvl,omitempty"`
	RunProps     *RunProps       `xml:"w:rPr,omitempty"`
}

// Paragraph is w:p.
type Paragraph struct {
	XMLName xml.Name        `xml:"w:p"`
	Props   *ParagraphProps `xml:"w:pPr,omitempty"`
	Runs    []*Run          `xml:"w:r"`
}

// AddRun appends a text run.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{Text: NewText(text)}
	p.Runs = append(p.Runs, r)
	return r
}

// AddPageBreak appends a run holding a page break.
func (p *Paragraph) AddPageBreak() *Run {
	r := &Run{Break: &Break{Type: "page"}}
	p.Runs = append(p.Runs, r)
	return r
}

// AddField appends the runs of a complex field: begin, instruction,
// separate, the cached result and end. Each run gets its own copy of props.
func (p *Paragraph) AddField(instr, cached string, props *RunProps) {
	cp := func() *RunProps {
		if props == nil {
			return nil
		}
		c := *props
		return &c
	}
	p.Runs = append(p.Runs,
		&Run{Props: cp(), FieldChar: &FieldChar{Type: "begin"}},
		&Run{Props: cp(), InstrText: &Text{Space: "preserve", Value: " " + instr + " "}},
		&Run{Props: cp(), FieldChar: &FieldChar{Type: "separate"}},
		&Run{Props: cp(), Text: NewText(cached)},
		&Run{Props: cp(), FieldChar: &FieldChar{Type: "end"}},
	)
}

// Text concatenates the text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		if r.Text != nil {
			sb.WriteString(r.Text.Value)
		}
	}
	return sb.String()
}

// TableWidth is w:tblW or w:tcW.
type TableWidth struct {
	W    int    `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

// Border is one edge of w:tblBorders.
type Border struct {
	Val   string `xml:"w:val,attr"`
	Size  int    `xml:"w:sz,attr,omitempty"`
	Space int    `xml:"w:space,attr"`
	Color string `xml:"w:color,attr,omitempty"`
}

// TableBorders is w:tblBorders.
type TableBorders struct {
	Top     *Border `xml:"w:top,omitempty"`
	Left    *Border `xml:"w:left,omitempty"`
	Bottom  *Border `xml:"w:bottom,omitempty"`
	Right   *Border `xml:"w:right,omitempty"`
	InsideH *Border `xml:"w:insideH,omitempty"`
	InsideV *Border `xml:"w:insideV,omitempty"`
}

// TableLayout is w:tblLayout.
type TableLayout struct {
	Type string `xml:"w:type,attr"`
}

// TableProps is w:tblPr.
type TableProps struct {
	Width   TableWidth    `xml:"w:tblW"`
	Justify *Val          `xml:"w:jc,omitempty"`
	Borders *TableBorders `xml:"w:tblBorders,omitempty"`
	Layout  *TableLayout  `xml:"w:tblLayout,omitempty"`
}

// GridCol is w:gridCol.
type GridCol struct {
	W int `xml:"w:w,attr"`
}

// TableGrid is w:tblGrid.
type TableGrid struct {
	Cols []GridCol `xml:"w:gridCol"`
}

// RowProps is w:trPr.
type RowProps struct {
	Header *OnOff `xml:"w:tblHeader,omitempty"`
}

// CellProps is w:tcPr.
type CellProps struct {
	Width  TableWidth `xml:"w:tcW"`
	VAlign *Val       `xml:"w:vAlign,omitempty"`
}

// TableCell is w:tc. A cell must hold at least one paragraph.
type TableCell struct {
	XMLName    xml.Name     `xml:"w:tc"`
	Props      *CellProps   `xml:"w:tcPr,omitempty"`
	Paragraphs []*Paragraph `xml:"w:p"`
}

// TableRow is w:tr.
type TableRow struct {
	XMLName xml.Name     `xml:"w:tr"`
	Props   *RowProps    `xml:"w:trPr,omitempty"`
	Cells   []*TableCell `xml:"w:tc"`
}

// Table is w:tbl.
type Table struct {
	XMLName xml.Name    `xml:"w:tbl"`
	Props   TableProps  `xml:"w:tblPr"`
	Grid    TableGrid   `xml:"w:tblGrid"`
	Rows    []*TableRow `xml:"w:tr"`
}

// HeaderFooterRef is w:headerReference or w:footerReference.
type HeaderFooterRef struct {
	Type string `xml:"w:type,attr"`
	ID   string `xml:"r:id,attr"`
}

// PageSize is w:pgSz in twips.
type PageSize struct {
	W int `xml:"w:w,attr"`
	H int `xml:"w:h,attr"`
}

// PageMargins is w:pgMar in twips.
type PageMargins struct {
	Top    int `xml:"w:top,attr"`
	Right  int `xml:"w:right,attr"`
	Bottom int `xml:"w:bottom,attr"`
	Left   int `xml:"w:left,attr"`
	Header int `xml:"w:header,attr"`
	Footer int `xml:"w:footer,attr"`
	Gutter int `xml:"w:gutter,attr"`
}

// SectionProps is the body-level w:sectPr.
type SectionProps struct {
	FooterRef *HeaderFooterRef `xml:"w:footerReference,omitempty"`
	PageSize  PageSize         `xml:"w:pgSz"`
	Margins   PageMargins      `xml:"w:pgMar"`
}

type xmlBody struct {
	Blocks  []interface{}
	Section *SectionProps `xml:"w:sectPr"`
}

type xmlDocument struct {
	XMLName  xml.Name `xml:"w:document"`
	XMLNSW   string   `xml:"xmlns:w,attr"`
	XMLNSR   string   `xml:"xmlns:r,attr"`
	XMLNSWP  string   `xml:"xmlns:wp,attr"`
	XMLNSA   string   `xml:"xmlns:a,attr"`
	XMLNSPic string   `xml:"xmlns:pic,attr"`
	Body     xmlBody  `xml:"w:body"`
}

type xmlFooter struct {
	XMLName    xml.Name     `xml:"w:ftr"`
	XMLNSW     string       `xml:"xmlns:w,attr"`
	XMLNSR     string       `xml:"xmlns:r,attr"`
	Paragraphs []*Paragraph `xml:"w:p"`
}
