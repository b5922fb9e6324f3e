package docx

import (
	"encoding/xml"
	"strconv"
)

// Built-in style IDs.
const (
	StyleNormal   = "Normal"
	StyleHeading1 = "Heading1"
	StyleFooter   = "Footer"
	StyleListPara = "ListParagraph"
)

// Style is w:style.
type Style struct {
	Type       string          `xml:"w:type,attr"`
	ID         string          `xml:"w:styleId,attr"`
	Default    string          `xml:"w:default,attr,omitempty"`
	Name       Val             `xml:"w:name"`
	BasedOn    *Val            `xml:"w:basedOn,omitempty"`
	Next       *Val            `xml:"w:next,omitempty"`
	UIPriority *Val            `xml:"w:uiPriority,omitempty"`
	QFormat    *OnOff          `xml:"w:qFormat,omitempty"`
	Para       *ParagraphProps `xml:"w:pPr,omitempty"`
	Run        *RunProps       `xml:"w:rPr,omitempty"`
}

type xmlRunDefault struct {
	Props *RunProps `xml:"w:rPr"`
}

type xmlParaDefault struct {
	Props *ParagraphProps `xml:"w:pPr"`
}

type xmlDocDefaults struct {
	Run  xmlRunDefault  `xml:"w:rPrDefault"`
	Para xmlParaDefault `xml:"w:pPrDefault"`
}

type xmlStyles struct {
	XMLName  xml.Name       `xml:"w:styles"`
	XMLNSW   string         `xml:"xmlns:w,attr"`
	Defaults xmlDocDefaults `xml:"w:docDefaults"`
	Styles   []Style        `xml:"w:style"`
}

// Level is w:lvl of an abstract numbering definition.
type Level struct {
	Ilvl    int             `xml:"w:ilvl,attr"`
	Start   Val             `xml:"w:start"`
	NumFmt  Val             `xml:"w:numFmt"`
	Text    Val             `xml:"w:lvlText"`
	Justify Val             `xml:"w:lvlJc"`
	Para    *ParagraphProps `xml:"w:pPr,omitempty"`
	Run     *RunProps       `xml:"w:rPr,omitempty"`
}

// AbstractNum is w:abstractNum.
type AbstractNum struct {
	ID         int     `xml:"w:abstractNumId,attr"`
	MultiLevel Val     `xml:"w:multiLevelType"`
	Levels     []Level `xml:"w:lvl"`
}

// Num is w:num.
type Num struct {
	ID         int `xml:"w:numId,attr"`
	AbstractID Val `xml:"w:abstractNumId"`
}

type xmlNumbering struct {
	XMLName  xml.Name      `xml:"w:numbering"`
	XMLNSW   string        `xml:"xmlns:w,attr"`
	Abstract []AbstractNum `xml:"w:abstractNum"`
	Nums     []Num         `xml:"w:num"`
}

// AddBulletNumbering registers a single-level bullet list and returns its
// numbering ID for w:numPr.
func (d *Document) AddBulletNumbering(bullet string, leftTwips, hangingTwips int, font string) int {
	abstractID := len(d.abstractNums)
	numID := len(d.nums) + 1
	lvl := Level{
		Ilvl:    0,
		Start:   Val{Val: "1"},
		NumFmt:  Val{Val: "bullet"},
		Text:    Val{Val: bullet},
		Justify: Val{Val: "left"},
		Para:    &ParagraphProps{Indent: &Indent{Left: leftTwips, Hanging: hangingTwips}},
	}
	if font != "" {
		lvl.Run = &RunProps{Fonts: &Fonts{ASCII: font, HAnsi: font, EastAsia: font, CS: font}}
	}
	d.abstractNums = append(d.abstractNums, AbstractNum{
		ID:         abstractID,
		MultiLevel: Val{Val: "singleLevel"},
		Levels:     []Level{lvl},
	})
	d.nums = append(d.nums, Num{ID: numID, AbstractID: Val{Val: strconv.Itoa(abstractID)}})
	return numID
}
