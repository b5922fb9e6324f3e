// Package style holds the institutional formatting standard as data: one
// entry per semantic text role plus page geometry and table rule weights.
package style

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
)

// Role is a semantic text role in the document.
type Role string

// Roles covered by the profile.
const (
	RoleHeading1      Role = "heading1"
	RoleHeading2      Role = "heading2" // levels 2 and deeper
	RoleBody          Role = "body"
	RolePoint         Role = "point"
	RoleBullet        Role = "bullet"
	RoleTableHeader   Role = "table_header"
	RoleTableCell     Role = "table_cell"
	RoleFooter        Role = "footer"
	RoleFootnote      Role = "footnote"
	RoleCoverTitle    Role = "cover_title"
	RoleCoverSubtitle Role = "cover_subtitle"
	RoleDisclaimer    Role = "disclaimer"
	RoleCaption       Role = "caption"
)

// AllRoles lists every role in a stable order.
var AllRoles = []Role{
	RoleHeading1, RoleHeading2, RoleBody, RolePoint, RoleBullet,
	RoleTableHeader, RoleTableCell, RoleFooter, RoleFootnote,
	RoleCoverTitle, RoleCoverSubtitle, RoleDisclaimer, RoleCaption,
}

// Alignment is a paragraph alignment.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool {
	switch a {
	case AlignLeft, AlignCenter, AlignRight, AlignJustify:
		return true
	}
	return false
}

// TextStyle is the formatting of one role.
type TextStyle struct {
	Font              string    `yaml:"font"`
	SizePt            float64   `yaml:"size_pt"`
	Bold              bool      `yaml:"bold,omitempty"`
	Color             string    `yaml:"color,omitempty"`
	Align             Alignment `yaml:"align"`
	LineSpacing       float64   `yaml:"line_spacing"`
	FirstLineIndentPt float64   `yaml:"first_line_indent_pt,omitempty"`
	LeftIndentPt      float64   `yaml:"left_indent_pt,omitempty"`
	SpaceBeforePt     float64   `yaml:"space_before_pt,omitempty"`
	SpaceAfterPt      float64   `yaml:"space_after_pt,omitempty"`
}

// Page is the page geometry in millimetres.
type Page struct {
	WidthMM  float64 `yaml:"width_mm"`
	HeightMM float64 `yaml:"height_mm"`
	TopMM    float64 `yaml:"top_mm"`
	BottomMM float64 `yaml:"bottom_mm"`
	LeftMM   float64 `yaml:"left_mm"`
	RightMM  float64 `yaml:"right_mm"`
	HeaderMM float64 `yaml:"header_mm"`
	FooterMM float64 `yaml:"footer_mm"`
}

// TextWidthMM is the width between the left and right margins.
func (p Page) TextWidthMM() float64 {
	return p.WidthMM - p.LeftMM - p.RightMM
}

// TableRules holds the three-line table rule weights in points.
type TableRules struct {
	OuterPt float64 `yaml:"outer_pt"`
	InnerPt float64 `yaml:"inner_pt"`
}

// Profile is the complete formatting standard.
type Profile struct {
	Name  string             `yaml:"name"`
	Page  Page               `yaml:"page"`
	Rules TableRules         `yaml:"table_rules"`
	Roles map[Role]TextStyle `yaml:"roles"`
}

// DefaultColor is applied to every run that does not name a color, so text
// never picks up a theme accent.
const DefaultColor = "000000"

// Default returns the built-in institutional profile.
func Default() Profile {
	return Profile{
		Name: "institutional",
		Page: Page{
			WidthMM: 210, HeightMM: 297,
			TopMM: 37, BottomMM: 35, LeftMM: 28, RightMM: 26,
			HeaderMM: 15, FooterMM: 17.5,
		},
		Rules: TableRules{OuterPt: 1.5, InnerPt: 0.75},
		Roles: map[Role]TextStyle{
			RoleHeading1:      {Font: "黑体", SizePt: 16, Bold: true, Align: AlignJustify, LineSpacing: 1.5, SpaceBeforePt: 12, SpaceAfterPt: 12},
			RoleHeading2:      {Font: "黑体", SizePt: 16, Bold: true, Align: AlignJustify, LineSpacing: 1.5, SpaceBeforePt: 12, SpaceAfterPt: 12},
			RoleBody:          {Font: "仿宋", SizePt: 14, Align: AlignJustify, LineSpacing: 1.5, FirstLineIndentPt: 28, SpaceAfterPt: 12},
			RolePoint:         {Font: "仿宋", SizePt: 14, Align: AlignJustify, LineSpacing: 1.5, FirstLineIndentPt: 28, SpaceAfterPt: 12},
			RoleBullet:        {Font: "仿宋", SizePt: 14, Align: AlignLeft, LineSpacing: 1.5, LeftIndentPt: 21, SpaceAfterPt: 12},
			RoleTableHeader:   {Font: "仿宋", SizePt: 12, Bold: true, Align: AlignCenter, LineSpacing: 1},
			RoleTableCell:     {Font: "仿宋", SizePt: 12, Align: AlignCenter, LineSpacing: 1},
			RoleFooter:        {Font: "仿宋", SizePt: 12, Align: AlignCenter, LineSpacing: 1},
			RoleFootnote:      {Font: "仿宋", SizePt: 12, Align: AlignRight, LineSpacing: 1},
			RoleCoverTitle:    {Font: "黑体", SizePt: 22, Bold: true, Align: AlignCenter, LineSpacing: 1, SpaceBeforePt: 100, SpaceAfterPt: 50},
			RoleCoverSubtitle: {Font: "黑体", SizePt: 16, Align: AlignCenter, LineSpacing: 1, SpaceAfterPt: 20},
			RoleDisclaimer:    {Font: "仿宋", SizePt: 14, Align: AlignJustify, LineSpacing: 1.5, FirstLineIndentPt: 28, SpaceAfterPt: 12},
			RoleCaption:       {Font: "仿宋", SizePt: 12, Align: AlignCenter, LineSpacing: 1, SpaceBeforePt: 6, SpaceAfterPt: 12},
		},
	}
}

// Style returns the style of a role, falling back to body. Color is always
// filled in.
func (p Profile) Style(r Role) TextStyle {
	s, ok := p.Roles[r]
	if !ok {
		s = p.Roles[RoleBody]
	}
	if s.Color == "" {
		s.Color = DefaultColor
	}
	return s
}

var hexColor = regexp.MustCompile(`^[0-9A-Fa-f]{6}$`)

// Validate checks that the profile is complete and consistent.
func (p Profile) Validate() error {
	pg := p.Page
	if pg.WidthMM <= 0 || pg.HeightMM <= 0 {
		return reportfmt.NewValidationError("page", "page size must be positive")
	}
	if pg.TopMM < 0 || pg.BottomMM < 0 || pg.LeftMM < 0 || pg.RightMM < 0 {
		return reportfmt.NewValidationError("page", "margins must not be negative")
	}
	if pg.TextWidthMM() <= 0 || pg.HeightMM-pg.TopMM-pg.BottomMM <= 0 {
		return reportfmt.NewValidationError("page", "margins leave no text area")
	}
	if p.Rules.OuterPt <= 0 || p.Rules.InnerPt <= 0 {
		return reportfmt.NewValidationError("table_rules", "rule weights must be positive")
	}
	for _, r := range AllRoles {
		s, ok := p.Roles[r]
		if !ok {
			return reportfmt.NewValidationError("roles."+string(r), "role is missing")
		}
		field := "roles." + string(r)
		switch {
		case s.Font == "":
			return reportfmt.NewValidationError(field, "font is required")
		case s.SizePt <= 0:
			return reportfmt.NewValidationError(field, "size must be positive")
		case s.Color != "" && !hexColor.MatchString(s.Color):
			return reportfmt.NewValidationError(field, "color %q is not RRGGBB", s.Color)
		case !s.Align.Valid():
			return reportfmt.NewValidationError(field, "alignment %q is unknown", s.Align)
		case s.LineSpacing <= 0:
			return reportfmt.NewValidationError(field, "line spacing must be positive")
		}
	}
	return nil
}

// Audit renders the profile as sorted "key = value" lines so two versions of
// the standard can be diffed.
func (p Profile) Audit() []string {
	lines := []string{
		fmt.Sprintf("name = %s", p.Name),
		fmt.Sprintf("page.size = %gx%gmm", p.Page.WidthMM, p.Page.HeightMM),
		fmt.Sprintf("page.margins = top %gmm, bottom %gmm, left %gmm, right %gmm",
			p.Page.TopMM, p.Page.BottomMM, p.Page.LeftMM, p.Page.RightMM),
		fmt.Sprintf("page.header_footer = %gmm/%gmm", p.Page.HeaderMM, p.Page.FooterMM),
		fmt.Sprintf("table_rules = outer %gpt, inner %gpt", p.Rules.OuterPt, p.Rules.InnerPt),
	}
	roles := make([]string, 0, len(p.Roles))
	for r := range p.Roles {
		roles = append(roles, string(r))
	}
	sort.Strings(roles)
	for _, r := range roles {
		s := p.Style(Role(r))
		lines = append(lines, fmt.Sprintf("roles.%s = %s %gpt bold=%t color=%s align=%s line=%g indent=%g/%g space=%g/%g",
			r, s.Font, s.SizePt, s.Bold, s.Color, s.Align, s.LineSpacing,
			s.FirstLineIndentPt, s.LeftIndentPt, s.SpaceBeforePt, s.SpaceAfterPt))
	}
	return lines
}

// Parse decodes a YAML profile on top of Default. Roles present in the YAML
// replace the built-in role entirely.
func Parse(data []byte) (Profile, error) {
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse style profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Load reads a YAML profile file.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read style profile: %w", err)
	}
	return Parse(data)
}

// Marshal encodes the profile as YAML.
func (p Profile) Marshal() ([]byte, error) {
	return yaml.Marshal(p)
}
