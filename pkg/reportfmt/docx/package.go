package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Package part names.
const (
	PartContentTypes = "[Content_Types].xml"
	PartRootRels     = "_rels/.rels"
	PartDocument     = "word/document.xml"
	PartDocumentRels = "word/_rels/document.xml.rels"
	PartStyles       = "word/styles.xml"
	PartNumbering    = "word/numbering.xml"
	PartFooter       = "word/footer1.xml"
	PartCore         = "docProps/core.xml"
	PartApp          = "docProps/app.xml"
)

// Relationship and content types.
const (
	relTypeOfficeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeCore           = "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties"
	relTypeApp            = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/extended-properties"
	relTypeStyles         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relTypeNumbering      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relTypeFooter         = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
	relTypeImage          = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"

	ctDocument  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
	ctNumbering = "application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"
	ctFooter    = "application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctApp       = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

// Fixed relationship IDs of document.xml.rels. Images follow imageRelBase.
const (
	relIDStyles    = "rId1"
	relIDNumbering = "rId2"
	relIDFooter    = "rId3"
	imageRelBase   = 10
)

// CoreProperties is the docProps/core.xml metadata.
type CoreProperties struct {
	Title      string
	Creator    string
	Identifier string
	Created    time.Time
}

// Document is an in-memory WordprocessingML document with a single section.
type Document struct {
	Core        CoreProperties
	Section     SectionProps
	DefaultRun  *RunProps
	DefaultPara *ParagraphProps
	Styles      []Style
	// Footer holds the default footer paragraphs; nil writes no footer part.
	Footer []*Paragraph

	blocks       []interface{}
	abstractNums []AbstractNum
	nums         []Num
	media        []media
	pictures     int
}

// New creates an empty A4 document with a fresh identifier.
func New() *Document {
	return &Document{
		Core: CoreProperties{Identifier: "urn:uuid:" + uuid.New().String()},
		Section: SectionProps{
			PageSize: PageSize{W: MMToTwips(210), H: MMToTwips(297)},
			Margins: PageMargins{
				Top: 1440, Right: 1440, Bottom: 1440, Left: 1440,
				Header: 720, Footer: 720,
			},
		},
	}
}

// AddParagraph appends an empty paragraph to the body.
func (d *Document) AddParagraph() *Paragraph {
	p := &Paragraph{}
	d.blocks = append(d.blocks, p)
	return p
}

// AddTable appends a table to the body.
func (d *Document) AddTable(t *Table) {
	d.blocks = append(d.blocks, t)
}

// Blocks returns the body content in order: *Paragraph and *Table values.
func (d *Document) Blocks() []interface{} {
	return d.blocks
}

// Paragraphs returns the top-level body paragraphs.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.blocks {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Save writes the package to path, creating the parent directory.
func (d *Document) Save(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTo implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	buf, err := d.WriteToBuffer()
	if err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

// WriteToBuffer renders the package into memory.
func (d *Document) WriteToBuffer() (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	if err := d.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Write streams the zip package to w.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)

	steps := []func(*zip.Writer) error{
		d.writeContentTypes,
		d.writeRootRels,
		d.writeDocument,
		d.writeDocumentRels,
		d.writeStyles,
		d.writeNumbering,
		d.writeFooter,
		d.writeCore,
		d.writeApp,
		d.writeMedia,
	}
	for _, step := range steps {
		if err := step(zw); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func writeXMLPart(zw *zip.Writer, name string, v interface{}) error {
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if err := xml.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	return nil
}

type xmlDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type xmlTypes struct {
	XMLName   xml.Name      `xml:"http://schemas.openxmlformats.org/package/2006/content-types Types"`
	Defaults  []xmlDefault  `xml:"Default"`
	Overrides []xmlOverride `xml:"Override"`
}

// writeContentTypes writes [Content_Types].xml.
func (d *Document) writeContentTypes(zw *zip.Writer) error {
	types := xmlTypes{
		Defaults: []xmlDefault{
			{Extension: "rels", ContentType: "application/vnd.openxmlformats-package.relationships+xml"},
			{Extension: "xml", ContentType: "application/xml"},
			{Extension: "png", ContentType: "image/png"},
			{Extension: "jpeg", ContentType: "image/jpeg"},
		},
		Overrides: []xmlOverride{
			{PartName: "/" + PartDocument, ContentType: ctDocument},
			{PartName: "/" + PartStyles, ContentType: ctStyles},
			{PartName: "/" + PartNumbering, ContentType: ctNumbering},
			{PartName: "/" + PartCore, ContentType: ctCore},
			{PartName: "/" + PartApp, ContentType: ctApp},
		},
	}
	if d.Footer != nil {
		types.Overrides = append(types.Overrides, xmlOverride{PartName: "/" + PartFooter, ContentType: ctFooter})
	}
	return writeXMLPart(zw, PartContentTypes, types)
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type xmlRelationships struct {
	XMLName xml.Name          `xml:"http://schemas.openxmlformats.org/package/2006/relationships Relationships"`
	Rels    []xmlRelationship `xml:"Relationship"`
}

// writeRootRels writes _rels/.rels.
func (d *Document) writeRootRels(zw *zip.Writer) error {
	return writeXMLPart(zw, PartRootRels, xmlRelationships{Rels: []xmlRelationship{
		{ID: "rId1", Type: relTypeOfficeDocument, Target: PartDocument},
		{ID: "rId2", Type: relTypeCore, Target: PartCore},
		{ID: "rId3", Type: relTypeApp, Target: PartApp},
	}})
}

// writeDocumentRels writes word/_rels/document.xml.rels.
func (d *Document) writeDocumentRels(zw *zip.Writer) error {
	rels := xmlRelationships{Rels: []xmlRelationship{
		{ID: relIDStyles, Type: relTypeStyles, Target: "styles.xml"},
		{ID: relIDNumbering, Type: relTypeNumbering, Target: "numbering.xml"},
	}}
	if d.Footer != nil {
		rels.Rels = append(rels.Rels, xmlRelationship{ID: relIDFooter, Type: relTypeFooter, Target: "footer1.xml"})
	}
	for i, m := range d.media {
		rels.Rels = append(rels.Rels, xmlRelationship{
			ID:     fmt.Sprintf("rId%d", imageRelBase+i+1),
			Type:   relTypeImage,
			Target: "media/" + m.name,
		})
	}
	return writeXMLPart(zw, PartDocumentRels, rels)
}

// writeDocument writes word/document.xml.
func (d *Document) writeDocument(zw *zip.Writer) error {
	sect := d.Section
	if d.Footer != nil {
		sect.FooterRef = &HeaderFooterRef{Type: "default", ID: relIDFooter}
	} else {
		sect.FooterRef = nil
	}
	return writeXMLPart(zw, PartDocument, xmlDocument{
		XMLNSW:   NameSpaceWordprocessingML,
		XMLNSR:   NameSpaceRelationships,
		XMLNSWP:  NameSpaceDrawingWP,
		XMLNSA:   NameSpaceDrawingML,
		XMLNSPic: NameSpacePicture,
		Body:     xmlBody{Blocks: d.blocks, Section: &sect},
	})
}

// writeStyles writes word/styles.xml.
func (d *Document) writeStyles(zw *zip.Writer) error {
	return writeXMLPart(zw, PartStyles, xmlStyles{
		XMLNSW: NameSpaceWordprocessingML,
		Defaults: xmlDocDefaults{
			Run:  xmlRunDefault{Props: d.DefaultRun},
			Para: xmlParaDefault{Props: d.DefaultPara},
		},
		Styles: d.Styles,
	})
}

// writeNumbering writes word/numbering.xml.
func (d *Document) writeNumbering(zw *zip.Writer) error {
	return writeXMLPart(zw, PartNumbering, xmlNumbering{
		XMLNSW:   NameSpaceWordprocessingML,
		Abstract: d.abstractNums,
		Nums:     d.nums,
	})
}

// writeFooter writes word/footer1.xml when a footer is set.
func (d *Document) writeFooter(zw *zip.Writer) error {
	if d.Footer == nil {
		return nil
	}
	return writeXMLPart(zw, PartFooter, xmlFooter{
		XMLNSW:     NameSpaceWordprocessingML,
		XMLNSR:     NameSpaceRelationships,
		Paragraphs: d.Footer,
	})
}

type xmlW3CDTF struct {
	Type  string `xml:"xsi:type,attr"`
	Value string `xml:",chardata"`
}

type xmlCoreProperties struct {
	XMLName      xml.Name   `xml:"cp:coreProperties"`
	XMLNSCP      string     `xml:"xmlns:cp,attr"`
	XMLNSDC      string     `xml:"xmlns:dc,attr"`
	XMLNSDCTerms string     `xml:"xmlns:dcterms,attr"`
	XMLNSXSI     string     `xml:"xmlns:xsi,attr"`
	Title        string     `xml:"dc:title,omitempty"`
	Creator      string     `xml:"dc:creator,omitempty"`
	Identifier   string     `xml:"dc:identifier,omitempty"`
	Created      *xmlW3CDTF `xml:"dcterms:created,omitempty"`
}

// writeCore writes docProps/core.xml.
func (d *Document) writeCore(zw *zip.Writer) error {
	core := xmlCoreProperties{
		XMLNSCP:      "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		XMLNSDC:      "http://purl.org/dc/elements/1.1/",
		XMLNSDCTerms: "http://purl.org/dc/terms/",
		XMLNSXSI:     "http://www.w3.org/2001/XMLSchema-instance",
		Title:        d.Core.Title,
		Creator:      d.Core.Creator,
		Identifier:   d.Core.Identifier,
	}
	if !d.Core.Created.IsZero() {
		core.Created = &xmlW3CDTF{Type: "dcterms:W3CDTF", Value: d.Core.Created.UTC().Format(time.RFC3339)}
	}
	return writeXMLPart(zw, PartCore, core)
}

// writeApp writes docProps/app.xml.
func (d *Document) writeApp(zw *zip.Writer) error {
	w, err := zw.Create(PartApp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", PartApp, err)
	}
	_, err = io.WriteString(w, xml.Header+`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"><Application>reportfmt</Application></Properties>`)
	return err
}

// writeMedia writes word/media/imageN.*.
func (d *Document) writeMedia(zw *zip.Writer) error {
	for _, m := range d.media {
		w, err := zw.Create("word/media/" + m.name)
		if err != nil {
			return fmt.Errorf("failed to create media %s: %w", m.name, err)
		}
		if _, err := w.Write(m.data); err != nil {
			return err
		}
	}
	return nil
}
