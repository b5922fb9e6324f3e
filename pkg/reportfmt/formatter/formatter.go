// Package formatter applies a style profile to document primitives: headings,
// body paragraphs, numbered points, bullet lists, three-line tables, figures,
// the cover page, footnote and page-number footer.
package formatter

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/docx"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/style"
)

// DisclaimerHeading is the heading line of the disclaimer block.
const DisclaimerHeading = "免责声明"

// DefaultDisclaimer is the boilerplate disclaimer paragraph.
const DefaultDisclaimer = "本报告所载资料的来源及观点皆为公开信息，但并不能保证其准确性和完整性。" +
	"本报告仅供参考，不构成任何投资建议或承诺，投资者应审慎决策，独立判断，" +
	"自行承担投资风险。"

// Bullet is the list marker of AddBulletList.
const Bullet = "•"

// Formatter owns one document and writes profile-conformant content into it.
type Formatter struct {
	profile        style.Profile
	doc            *docx.Document
	logger         *zap.Logger
	numberTopLevel bool
	counters       []int
	bulletNumID    int
}

// New creates a document and applies the profile page geometry and styles.
func New(profile style.Profile, opts ...Option) *Formatter {
	f := &Formatter{
		profile: profile,
		doc:     docx.New(),
		logger:  zap.NewNop(),
	}
	f.setupPage()
	f.setupStyles()
	bullet := profile.Style(style.RoleBullet)
	indent := docx.PointsToTwips(bullet.LeftIndentPt)
	f.bulletNumID = f.doc.AddBulletNumbering(Bullet, indent, indent, "")
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Document exposes the underlying document.
func (f *Formatter) Document() *docx.Document {
	return f.doc
}

// Profile returns the profile in use.
func (f *Formatter) Profile() style.Profile {
	return f.profile
}

func (f *Formatter) setupPage() {
	pg := f.profile.Page
	f.doc.Section.PageSize = docx.PageSize{W: docx.MMToTwips(pg.WidthMM), H: docx.MMToTwips(pg.HeightMM)}
	f.doc.Section.Margins = docx.PageMargins{
		Top:    docx.MMToTwips(pg.TopMM),
		Bottom: docx.MMToTwips(pg.BottomMM),
		Left:   docx.MMToTwips(pg.LeftMM),
		Right:  docx.MMToTwips(pg.RightMM),
		Header: docx.MMToTwips(pg.HeaderMM),
		Footer: docx.MMToTwips(pg.FooterMM),
	}
}

func (f *Formatter) setupStyles() {
	body := f.profile.Style(style.RoleBody)
	h1 := f.profile.Style(style.RoleHeading1)
	footer := f.profile.Style(style.RoleFooter)
	bold := true

	f.doc.DefaultRun = runProps(body.Font, &body.SizePt, nil, body.Color)
	f.doc.DefaultPara = &docx.ParagraphProps{Spacing: &docx.Spacing{Before: 0, After: 0}}

	h1Para := paragraphProps(h1)
	h1Para.KeepNext = &docx.OnOff{}
	h1Para.OutlineLevel = &docx.Val{Val: "0"}
	f.doc.Styles = []docx.Style{
		{
			Type: "paragraph", ID: docx.StyleNormal, Default: "1",
			Name: docx.Val{Val: "Normal"}, QFormat: &docx.OnOff{},
		},
		{
			Type: "paragraph", ID: docx.StyleHeading1,
			Name:       docx.Val{Val: "heading 1"},
			BasedOn:    &docx.Val{Val: docx.StyleNormal},
			Next:       &docx.Val{Val: docx.StyleNormal},
			UIPriority: &docx.Val{Val: "9"},
			QFormat:    &docx.OnOff{},
			Para:       h1Para,
			Run:        runProps(h1.Font, &h1.SizePt, &bold, h1.Color),
		},
		{
			Type: "paragraph", ID: docx.StyleListPara,
			Name:    docx.Val{Val: "List Paragraph"},
			BasedOn: &docx.Val{Val: docx.StyleNormal},
			QFormat: &docx.OnOff{},
		},
		{
			Type: "paragraph", ID: docx.StyleFooter,
			Name:    docx.Val{Val: "footer"},
			BasedOn: &docx.Val{Val: docx.StyleNormal},
			Para:    &docx.ParagraphProps{Justify: &docx.Val{Val: justification(footer.Align)}},
		},
	}
}

// justification maps an alignment to its w:jc value.
func justification(a style.Alignment) string {
	switch a {
	case style.AlignLeft:
		return "left"
	case style.AlignCenter:
		return "center"
	case style.AlignRight:
		return "right"
	default:
		return "both"
	}
}

func paragraphProps(s style.TextStyle) *docx.ParagraphProps {
	pp := &docx.ParagraphProps{
		Spacing: &docx.Spacing{
			Before:   docx.PointsToTwips(s.SpaceBeforePt),
			After:    docx.PointsToTwips(s.SpaceAfterPt),
			Line:     docx.LineSpacing(s.LineSpacing),
			LineRule: "auto",
		},
		Justify: &docx.Val{Val: justification(s.Align)},
	}
	if s.FirstLineIndentPt > 0 || s.LeftIndentPt > 0 {
		pp.Indent = &docx.Indent{
			FirstLine: docx.PointsToTwips(s.FirstLineIndentPt),
			Left:      docx.PointsToTwips(s.LeftIndentPt),
		}
	}
	return pp
}

func runProps(font string, size *float64, bold *bool, color string) *docx.RunProps {
	rp := &docx.RunProps{}
	setRunProps(rp, font, size, bold, color)
	return rp
}

func setRunProps(rp *docx.RunProps, font string, size *float64, bold *bool, color string) {
	if font != "" {
		rp.Fonts = &docx.Fonts{ASCII: font, HAnsi: font, EastAsia: font, CS: font}
	}
	if size != nil {
		sz := strconv.Itoa(docx.PointsToHalfPoints(*size))
		rp.Size = &docx.Val{Val: sz}
		rp.SizeCS = &docx.Val{Val: sz}
	}
	if bold != nil {
		v := "0"
		if *bold {
			v = "1"
		}
		rp.Bold = &docx.OnOff{Val: v}
		rp.BoldCS = &docx.OnOff{Val: v}
	}
	if color == "" {
		color = style.DefaultColor
	}
	rp.Color = &docx.Val{Val: color}
}

// ApplyRun sets the font on every script slot, and size and bold when given.
// The color always ends up explicit: empty means black, so runs never pick up
// a theme color from a built-in style.
func (f *Formatter) ApplyRun(run *docx.Run, font string, size *float64, bold *bool, color string) {
	if run.Props == nil {
		run.Props = &docx.RunProps{}
	}
	setRunProps(run.Props, font, size, bold, color)
}

func (f *Formatter) applyStyle(run *docx.Run, s style.TextStyle) {
	size, bold := s.SizePt, s.Bold
	f.ApplyRun(run, s.Font, &size, &bold, s.Color)
}

func (f *Formatter) textParagraph(text string, s style.TextStyle) *docx.Paragraph {
	p := f.doc.AddParagraph()
	p.Props = paragraphProps(s)
	f.applyStyle(p.AddRun(text), s)
	return p
}

// nextNumber advances the counter of level and resets all deeper levels.
func (f *Formatter) nextNumber(level int) int {
	for len(f.counters) < level {
		f.counters = append(f.counters, 0)
	}
	f.counters[level-1]++
	for i := level; i < len(f.counters); i++ {
		f.counters[i] = 0
	}
	return f.counters[level-1]
}

// AddHeading adds a heading. Level 1 uses the built-in Heading1 style and is
// numbered only with WithTopLevelNumbering; deeper levels get a prefix by
// depth: （一） for level 2, 1. for level 3 and below.
func (f *Formatter) AddHeading(text string, level int, opts ...TextOption) *docx.Paragraph {
	if level < 1 {
		level = 1
	}
	n := f.nextNumber(level)
	if level > 1 || f.numberTopLevel {
		text = headingPrefix(level, n) + text
	}
	return f.addHeadingParagraph(text, level, opts)
}

func (f *Formatter) addHeadingParagraph(text string, level int, opts []TextOption) *docx.Paragraph {
	role := style.RoleHeading2
	if level == 1 {
		role = style.RoleHeading1
	}
	s, _ := resolve(f.profile.Style(role), opts)
	p := f.textParagraph(text, s)
	if level == 1 {
		p.Props.Style = &docx.Val{Val: docx.StyleHeading1}
	}
	f.logger.Debug("heading added", zap.Int("level", level), zap.String("text", text))
	return p
}

// AddParagraph adds a body paragraph: justified, first-line indent of two
// characters, unless overridden with Align and NoIndent.
func (f *Formatter) AddParagraph(text string, opts ...TextOption) *docx.Paragraph {
	s, _ := resolve(f.profile.Style(style.RoleBody), opts)
	return f.textParagraph(text, s)
}

// AddNumberedPoints adds "1. ", "2. ", ... prefixed paragraphs.
func (f *Formatter) AddNumberedPoints(points []string, opts ...TextOption) []*docx.Paragraph {
	s, _ := resolve(f.profile.Style(style.RolePoint), opts)
	out := make([]*docx.Paragraph, 0, len(points))
	for i, pt := range points {
		out = append(out, f.textParagraph(fmt.Sprintf("%d. %s", i+1, pt), s))
	}
	return out
}

// AddBulletList adds one bulleted paragraph per item.
func (f *Formatter) AddBulletList(items []string, opts ...TextOption) []*docx.Paragraph {
	s, _ := resolve(f.profile.Style(style.RoleBullet), opts)
	indent := docx.PointsToTwips(s.LeftIndentPt)
	out := make([]*docx.Paragraph, 0, len(items))
	for _, item := range items {
		p := f.textParagraph(item, s)
		p.Props.Style = &docx.Val{Val: docx.StyleListPara}
		p.Props.Numbering = &docx.NumberingProps{
			Level: docx.Val{Val: "0"},
			ID:    docx.Val{Val: strconv.Itoa(f.bulletNumID)},
		}
		p.Props.Indent = &docx.Indent{Left: indent, Hanging: indent}
		out = append(out, p)
	}
	return out
}

// AddThreeLineTable adds a three-line table: heavy top and bottom rules,
// light rules between rows, no vertical or side rules. Every row must have
// one cell per header, otherwise nothing is added.
func (f *Formatter) AddThreeLineTable(rows [][]string, headers []string, opts ...TextOption) (*docx.Table, error) {
	if err := (models.Table{Headers: headers, Rows: rows}).Validate(); err != nil {
		return nil, err
	}
	hs, _ := resolve(f.profile.Style(style.RoleTableHeader), opts)
	cs, _ := resolve(f.profile.Style(style.RoleTableCell), opts)
	hs.Bold = true

	outer := docx.PointsToEighths(f.profile.Rules.OuterPt)
	inner := docx.PointsToEighths(f.profile.Rules.InnerPt)
	rule := func(sz int) *docx.Border {
		return &docx.Border{Val: "single", Size: sz, Color: style.DefaultColor}
	}
	none := func() *docx.Border { return &docx.Border{Val: "none"} }

	textWidth := docx.MMToTwips(f.profile.Page.TextWidthMM())
	colWidth := textWidth / len(headers)

	tbl := &docx.Table{
		Props: docx.TableProps{
			Width:   docx.TableWidth{W: 5000, Type: "pct"},
			Justify: &docx.Val{Val: "center"},
			Borders: &docx.TableBorders{
				Top:     rule(outer),
				Left:    none(),
				Bottom:  rule(outer),
				Right:   none(),
				InsideH: rule(inner),
				InsideV: none(),
			},
		},
	}
	for range headers {
		tbl.Grid.Cols = append(tbl.Grid.Cols, docx.GridCol{W: colWidth})
	}

	makeRow := func(cells []string, s style.TextStyle) *docx.TableRow {
		row := &docx.TableRow{}
		for _, text := range cells {
			p := &docx.Paragraph{Props: paragraphProps(s)}
			f.applyStyle(p.AddRun(text), s)
			row.Cells = append(row.Cells, &docx.TableCell{
				Props: &docx.CellProps{
					Width:  docx.TableWidth{W: colWidth, Type: "dxa"},
					VAlign: &docx.Val{Val: "center"},
				},
				Paragraphs: []*docx.Paragraph{p},
			})
		}
		return row
	}

	header := makeRow(headers, hs)
	header.Props = &docx.RowProps{Header: &docx.OnOff{}}
	tbl.Rows = append(tbl.Rows, header)
	for _, r := range rows {
		tbl.Rows = append(tbl.Rows, makeRow(r, cs))
	}
	f.doc.AddTable(tbl)
	f.logger.Debug("table added", zap.Int("columns", len(headers)), zap.Int("rows", len(rows)))
	return tbl, nil
}

// AddPageNumberFooter sets a centered "— PAGE —" footer with a live field.
func (f *Formatter) AddPageNumberFooter(opts ...TextOption) {
	s, _ := resolve(f.profile.Style(style.RoleFooter), opts)
	p := &docx.Paragraph{Props: paragraphProps(s)}
	p.Props.Style = &docx.Val{Val: docx.StyleFooter}
	size, bold := s.SizePt, s.Bold
	rp := runProps(s.Font, &size, &bold, s.Color)

	lead := p.AddRun("— ")
	lead.Props = rp
	p.AddField("PAGE", "1", rp)
	trail := p.AddRun(" —")
	trail.Props = runProps(s.Font, &size, &bold, s.Color)
	f.doc.Footer = []*docx.Paragraph{p}
}

// AddCoverPage adds the centered title, organization and date lines followed
// by exactly one page break.
func (f *Formatter) AddCoverPage(title, organization, date string) {
	f.textParagraph(title, f.profile.Style(style.RoleCoverTitle))
	sub := f.profile.Style(style.RoleCoverSubtitle)
	f.textParagraph(organization, sub)
	f.textParagraph(date, sub)
	f.doc.AddParagraph().AddPageBreak()
	if f.doc.Core.Title == "" {
		f.doc.Core.Title = title
	}
}

// AddDataSourceFootnote adds the right-aligned attribution line. Empty text
// uses the default Tushare attribution.
func (f *Formatter) AddDataSourceFootnote(text string) *docx.Paragraph {
	if text == "" {
		text = models.DataSourceCaption("")
	}
	return f.textParagraph(text, f.profile.Style(style.RoleFootnote))
}

// AddDisclaimer adds the disclaimer heading and paragraph. The heading is a
// level-1 heading that does not take part in numbering.
func (f *Formatter) AddDisclaimer(text string) {
	if text == "" {
		text = DefaultDisclaimer
	}
	f.addHeadingParagraph(DisclaimerHeading, 1, nil)
	f.textParagraph(text, f.profile.Style(style.RoleDisclaimer))
}

// AddFigure adds an inline PNG or JPEG picture, centered and scaled to the
// figure width (the text width by default), followed by its caption.
func (f *Formatter) AddFigure(fig models.Figure) error {
	data := fig.Data
	if len(data) == 0 {
		if fig.Path == "" {
			return reportfmt.NewValidationError("figure", "path or data is required")
		}
		b, err := os.ReadFile(fig.Path)
		if err != nil {
			return reportfmt.NewValidationError("figure", "cannot read %s: %v", fig.Path, err)
		}
		data = b
	}
	textWidth := f.profile.Page.TextWidthMM()
	width := fig.WidthMM
	if width <= 0 || width > textWidth {
		width = textWidth
	}
	run, err := f.doc.AddPicture(data, docx.MMToEMU(width))
	if err != nil {
		return reportfmt.NewValidationError("figure", "%v", err)
	}

	cs := f.profile.Style(style.RoleCaption)
	p := f.doc.AddParagraph()
	p.Props = &docx.ParagraphProps{
		KeepNext: &docx.OnOff{},
		Spacing:  &docx.Spacing{Before: docx.PointsToTwips(cs.SpaceBeforePt), After: 0, Line: docx.LineUnit, LineRule: "auto"},
		Justify:  &docx.Val{Val: "center"},
	}
	p.Runs = append(p.Runs, run)
	if fig.Caption != "" {
		f.textParagraph(fig.Caption, cs)
	}
	return nil
}

// Save writes the document to path.
func (f *Formatter) Save(path string) error {
	if err := f.doc.Save(path); err != nil {
		return reportfmt.NewPersistenceError(path, err)
	}
	f.logger.Info("document saved", zap.String("path", path))
	return nil
}

// WriteTo writes the document package to w.
func (f *Formatter) WriteTo(w io.Writer) (int64, error) {
	n, err := f.doc.WriteTo(w)
	if err != nil {
		return n, reportfmt.NewPersistenceError("", err)
	}
	return n, nil
}
