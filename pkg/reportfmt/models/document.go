package models

import (
	"fmt"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
)

// DocumentSpec is the full content of one report.
type DocumentSpec struct {
	Title        string    `json:"title" yaml:"title"`
	Organization string    `json:"organization,omitempty" yaml:"organization,omitempty"`
	Date         string    `json:"date,omitempty" yaml:"date,omitempty"`
	Sections     []Section `json:"sections" yaml:"sections"`
	// IncludeCover adds a cover page; Organization and Date are then required.
	IncludeCover bool `json:"include_cover,omitempty" yaml:"include_cover,omitempty"`
	// IncludeDisclaimer adds the fixed disclaimer block after the cover.
	IncludeDisclaimer bool `json:"include_disclaimer,omitempty" yaml:"include_disclaimer,omitempty"`
	// DataSource names the data provider in the footnote; defaults to Tushare.
	DataSource string `json:"data_source,omitempty" yaml:"data_source,omitempty"`
	// OutputPath overrides the derived output path.
	OutputPath string `json:"output,omitempty" yaml:"output,omitempty"`
	// NumberTopLevel prefixes level-1 headings with 一、二、...
	NumberTopLevel bool `json:"number_top_level,omitempty" yaml:"number_top_level,omitempty"`
}

// Section is one heading and its content blocks.
type Section struct {
	Heading    string   `json:"heading,omitempty" yaml:"heading,omitempty"`
	Level      int      `json:"level,omitempty" yaml:"level,omitempty"`
	Points     []string `json:"points,omitempty" yaml:"points,omitempty"`
	Paragraphs []string `json:"paragraphs,omitempty" yaml:"paragraphs,omitempty"`
	Table      *Table   `json:"table,omitempty" yaml:"table,omitempty"`
	Bullets    []string `json:"bullets,omitempty" yaml:"bullets,omitempty"`
	Figures    []Figure `json:"figures,omitempty" yaml:"figures,omitempty"`
}

// HeadingLevel returns the level, treating unset as 1.
func (s Section) HeadingLevel() int {
	if s.Level <= 0 {
		return 1
	}
	return s.Level
}

// Table is a header row plus data rows of cell text.
type Table struct {
	Headers []string   `json:"headers" yaml:"headers"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// Validate checks that every row has exactly one cell per header.
func (t Table) Validate() error {
	if len(t.Headers) == 0 {
		return reportfmt.NewValidationError("table.headers", "at least one header is required")
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Headers) {
			return reportfmt.NewValidationError(fmt.Sprintf("table.rows[%d]", i),
				"has %d cells, expected %d", len(row), len(t.Headers))
		}
	}
	return nil
}

// Figure is an image embedded in the document, usually a rendered chart.
type Figure struct {
	// Path is read when Data is empty.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
	Data []byte `json:"-" yaml:"-"`
	// Caption is centered below the image.
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
	// WidthMM is the rendered width; 0 means the full text width.
	WidthMM float64 `json:"width_mm,omitempty" yaml:"width_mm,omitempty"`
}

// Validate checks the cover and section requirements of the spec.
func (d DocumentSpec) Validate() error {
	if d.Title == "" {
		return reportfmt.NewValidationError("title", "title is required")
	}
	if d.IncludeCover && (d.Organization == "" || d.Date == "") {
		return reportfmt.NewValidationError("cover", "organization and date are required when a cover page is requested")
	}
	for i, sec := range d.Sections {
		if sec.Level < 0 {
			return reportfmt.NewValidationError(fmt.Sprintf("sections[%d].level", i), "level must be positive")
		}
		if sec.Table != nil {
			if err := sec.Table.Validate(); err != nil {
				return fmt.Errorf("sections[%d]: %w", i, err)
			}
		}
		for j, fig := range sec.Figures {
			if fig.Path == "" && len(fig.Data) == 0 {
				return reportfmt.NewValidationError(fmt.Sprintf("sections[%d].figures[%d]", i, j), "path or data is required")
			}
		}
	}
	return nil
}
