// Package report assembles a complete research document from a
// DocumentSpec: cover, disclaimer, sections, data-source footnote and the
// page-number footer.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/docx"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/formatter"
	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/models"
)

const (
	maxNameRunes = 30
	// CoverDateLayout formats the default cover date.
	CoverDateLayout = "2006年01月02日"
)

// DefaultPath derives the output file name from the title: whitespace
// removed, at most 30 runes, then an underscore and the date stamp.
func DefaultPath(title string, now time.Time) string {
	name := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return -1
		}
		return r
	}, title)
	if runes := []rune(name); len(runes) > maxNameRunes {
		name = string(runes[:maxNameRunes])
	}
	if name == "" {
		name = "report"
	}
	return name + "_" + now.Format("20060102") + ".docx"
}

// Generate renders spec and saves it. It returns the path written.
// Validation runs before anything is rendered, so a rejected spec leaves no
// file behind.
func Generate(spec models.DocumentSpec, opts ...Option) (string, error) {
	cfg := newConfig(opts)
	now := cfg.now()

	if spec.Date == "" {
		spec.Date = now.Format(CoverDateLayout)
	}
	if err := spec.Validate(); err != nil {
		return "", err
	}
	if err := cfg.profile.Validate(); err != nil {
		return "", err
	}
	sections, err := loadFigures(spec.Sections)
	if err != nil {
		return "", err
	}
	spec.Sections = sections

	path := spec.OutputPath
	if path == "" {
		path = filepath.Join(cfg.outputDir, DefaultPath(spec.Title, now))
	}

	fopts := []formatter.Option{
		formatter.WithLogger(cfg.logger),
		formatter.WithTopLevelNumbering(spec.NumberTopLevel),
		formatter.WithCreated(now),
	}
	author := cfg.author
	if author == "" {
		author = spec.Organization
	}
	if author != "" {
		fopts = append(fopts, formatter.WithAuthor(author))
	}
	f := formatter.New(cfg.profile, fopts...)
	f.Document().Core.Title = spec.Title

	if spec.IncludeCover {
		f.AddCoverPage(spec.Title, spec.Organization, spec.Date)
	}
	if spec.IncludeDisclaimer {
		f.AddDisclaimer("")
	}
	for i, sec := range spec.Sections {
		if err := renderSection(f, sec); err != nil {
			return "", fmt.Errorf("sections[%d]: %w", i, err)
		}
	}
	f.AddDataSourceFootnote(models.DataSourceCaption(spec.DataSource))
	f.AddPageNumberFooter()

	if err := f.Save(path); err != nil {
		return "", err
	}
	cfg.logger.Info("report generated",
		zap.String("path", path),
		zap.Int("sections", len(spec.Sections)),
		zap.Bool("cover", spec.IncludeCover))
	return path, nil
}

// loadFigures reads and decodes every figure image up front so an unreadable
// or undecodable file is rejected before anything is rendered. The caller's
// sections are not modified.
func loadFigures(sections []models.Section) ([]models.Section, error) {
	out := make([]models.Section, len(sections))
	copy(out, sections)
	for i := range out {
		if len(out[i].Figures) == 0 {
			continue
		}
		figs := make([]models.Figure, len(out[i].Figures))
		copy(figs, out[i].Figures)
		for j := range figs {
			field := fmt.Sprintf("sections[%d].figures[%d]", i, j)
			if len(figs[j].Data) == 0 {
				data, err := os.ReadFile(figs[j].Path)
				if err != nil {
					return nil, reportfmt.NewValidationError(field, "cannot read %s: %v", figs[j].Path, err)
				}
				figs[j].Data = data
			}
			_, _, format, err := docx.ImageSize(figs[j].Data)
			if err != nil {
				return nil, reportfmt.NewValidationError(field, "%v", err)
			}
			if format != "png" && format != "jpeg" {
				return nil, reportfmt.NewValidationError(field, "unsupported image format %q", format)
			}
		}
		out[i].Figures = figs
	}
	return out, nil
}

// renderSection writes one section in fixed order: heading, points,
// paragraphs, table, bullets, figures.
func renderSection(f *formatter.Formatter, sec models.Section) error {
	if sec.Heading != "" {
		f.AddHeading(sec.Heading, sec.HeadingLevel())
	}
	if len(sec.Points) > 0 {
		f.AddNumberedPoints(sec.Points)
	}
	for _, text := range sec.Paragraphs {
		f.AddParagraph(text)
	}
	if sec.Table != nil {
		if _, err := f.AddThreeLineTable(sec.Table.Rows, sec.Table.Headers); err != nil {
			return err
		}
	}
	if len(sec.Bullets) > 0 {
		f.AddBulletList(sec.Bullets)
	}
	for _, fig := range sec.Figures {
		if err := f.AddFigure(fig); err != nil {
			return err
		}
	}
	return nil
}
