package inspect

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

const documentPart = "word/document.xml"

// node is a parsed element subtree keyed by local names.
type node struct {
	name     string
	attrs    map[string]string
	children []*node
	text     string
}

func readNode(decoder *xml.Decoder, start xml.StartElement) *node {
	n := &node{name: start.Name.Local, attrs: make(map[string]string)}
	for _, a := range start.Attr {
		n.attrs[a.Name.Local] = a.Value
	}
	var text strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			n.children = append(n.children, readNode(decoder, t))
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			n.text = text.String()
			return n
		}
	}
	n.text = text.String()
	return n
}

// parseTree returns the root element of an XML part.
func parseTree(data []byte) (*node, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		if se, ok := token.(xml.StartElement); ok {
			return readNode(decoder, se), nil
		}
	}
}

func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// find follows a path of child names.
func (n *node) find(names ...string) *node {
	cur := n
	for _, name := range names {
		cur = cur.child(name)
	}
	return cur
}

func (n *node) attr(name string) string {
	if n == nil {
		return ""
	}
	return n.attrs[name]
}

func (n *node) attrInt(name string) int {
	v, _ := strconv.Atoi(n.attr(name))
	return v
}

// on reads a boolean property element: present without val means true.
func (n *node) on() bool {
	if n == nil {
		return false
	}
	switch n.attrs["val"] {
	case "", "1", "true", "on":
		return true
	}
	return false
}

// OpenDocument inspects the docx file at path.
func OpenDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return DocumentFromReader(f, st.Size())
}

// DocumentFromReader inspects a docx package of the given size.
func DocumentFromReader(r io.ReaderAt, size int64) (*Document, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to open package: %w", err)
	}
	data, err := readZipFile(zr, documentPart)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%s not found", documentPart)
	}
	root, err := parseTree(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", documentPart, err)
	}

	doc := &Document{}
	body := root.child("body")
	for _, block := range body.children {
		switch block.name {
		case "p":
			doc.Paragraphs = append(doc.Paragraphs, parseParagraph(block))
		case "tbl":
			t := parseTable(block)
			t.After = len(doc.Paragraphs)
			doc.Tables = append(doc.Tables, t)
		case "sectPr":
			doc.Section = parseSection(block)
		}
	}

	if doc.Section.FooterRef != "" {
		rels, err := partRelationships(zr, documentPart, "footer")
		if err != nil {
			return nil, err
		}
		if part, ok := rels[doc.Section.FooterRef]; ok {
			footer, err := readZipFile(zr, part)
			if err != nil {
				return nil, err
			}
			if footer != nil {
				ft, err := parseTree(footer)
				if err != nil {
					return nil, fmt.Errorf("failed to parse %s: %w", part, err)
				}
				for _, p := range ft.children {
					if p.name == "p" {
						doc.Footer = append(doc.Footer, parseParagraph(p))
					}
				}
			}
		}
	}

	if core, err := readZipFile(zr, "docProps/core.xml"); err == nil && core != nil {
		if ct, err := parseTree(core); err == nil {
			doc.Title = strings.TrimSpace(ct.child("title").text)
		}
	}

	for _, f := range zr.File {
		if strings.HasPrefix(f.Name, "word/media/") {
			doc.Media = append(doc.Media, f.Name)
		}
	}
	sort.Strings(doc.Media)
	return doc, nil
}

func parseParagraph(p *node) Paragraph {
	var para Paragraph
	if pPr := p.child("pPr"); pPr != nil {
		para.Style = pPr.child("pStyle").attr("val")
		para.Align = pPr.child("jc").attr("val")
		para.KeepNext = pPr.child("keepNext").on()
		if sp := pPr.child("spacing"); sp != nil {
			para.SpaceBefore = sp.attrInt("before")
			para.SpaceAfter = sp.attrInt("after")
			para.Line = sp.attrInt("line")
		}
		if ind := pPr.child("ind"); ind != nil {
			para.FirstLine = ind.attrInt("firstLine")
			para.Left = ind.attrInt("left")
			para.Hanging = ind.attrInt("hanging")
		}
		para.NumID = pPr.find("numPr", "numId").attrInt("val")
	}

	var text strings.Builder
	var instr strings.Builder
	for _, r := range p.children {
		if r.name != "r" {
			continue
		}
		run := Run{}
		if rPr := r.child("rPr"); rPr != nil {
			fonts := rPr.child("rFonts")
			run.Font = fonts.attr("eastAsia")
			run.ASCIIFont = fonts.attr("ascii")
			run.Size = rPr.child("sz").attrInt("val")
			run.Bold = rPr.child("b").on()
			run.Color = rPr.child("color").attr("val")
		}
		for _, c := range r.children {
			switch c.name {
			case "t":
				run.Text += c.text
			case "br":
				if c.attr("type") == "page" {
					para.PageBreaks++
				}
			case "instrText":
				instr.WriteString(c.text)
			case "fldChar":
				if c.attr("fldCharType") == "end" && instr.Len() > 0 {
					para.Fields = append(para.Fields, strings.TrimSpace(instr.String()))
					instr.Reset()
				}
			case "drawing":
				para.Drawings++
			}
		}
		text.WriteString(run.Text)
		para.Runs = append(para.Runs, run)
	}
	para.Text = text.String()
	return para
}

func parseTable(tbl *node) Table {
	t := Table{Borders: make(map[string]Border)}
	if tblPr := tbl.child("tblPr"); tblPr != nil {
		t.Align = tblPr.child("jc").attr("val")
		if borders := tblPr.child("tblBorders"); borders != nil {
			for _, b := range borders.children {
				t.Borders[b.name] = Border{
					Val:   b.attr("val"),
					Size:  b.attrInt("sz"),
					Color: b.attr("color"),
				}
			}
		}
	}
	for _, tr := range tbl.children {
		if tr.name != "tr" {
			continue
		}
		row := TableRow{Header: tr.find("trPr", "tblHeader").on()}
		for _, tc := range tr.children {
			if tc.name != "tc" {
				continue
			}
			cell := TableCell{VAlign: tc.find("tcPr", "vAlign").attr("val")}
			var texts []string
			for _, p := range tc.children {
				if p.name == "p" {
					para := parseParagraph(p)
					cell.Paragraphs = append(cell.Paragraphs, para)
					texts = append(texts, para.Text)
				}
			}
			cell.Text = strings.Join(texts, "\n")
			row.Cells = append(row.Cells, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func parseSection(sectPr *node) Section {
	pgSz := sectPr.child("pgSz")
	pgMar := sectPr.child("pgMar")
	return Section{
		PageWidth:    pgSz.attrInt("w"),
		PageHeight:   pgSz.attrInt("h"),
		MarginTop:    pgMar.attrInt("top"),
		MarginBottom: pgMar.attrInt("bottom"),
		MarginLeft:   pgMar.attrInt("left"),
		MarginRight:  pgMar.attrInt("right"),
		Header:       pgMar.attrInt("header"),
		Footer:       pgMar.attrInt("footer"),
		FooterRef:    sectPr.child("footerReference").attr("id"),
	}
}
