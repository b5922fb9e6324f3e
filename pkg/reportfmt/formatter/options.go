package formatter

import (
	"time"

	"go.uber.org/zap"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/style"
)

// Option configures a Formatter.
type Option func(*Formatter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(f *Formatter) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithTopLevelNumbering prefixes level-1 headings with 一、二、...
func WithTopLevelNumbering(on bool) Option {
	return func(f *Formatter) {
		f.numberTopLevel = on
	}
}

// WithCreated stamps the document core properties with t.
func WithCreated(t time.Time) Option {
	return func(f *Formatter) {
		f.doc.Core.Created = t
	}
}

// WithAuthor sets the document creator property.
func WithAuthor(name string) Option {
	return func(f *Formatter) {
		f.doc.Core.Creator = name
	}
}

// TextOption overrides profile values for a single primitive call.
type TextOption func(*textSettings)

type textSettings struct {
	font     string
	sizePt   float64
	align    style.Alignment
	noIndent bool
}

// Font overrides the role font.
func Font(name string) TextOption {
	return func(s *textSettings) { s.font = name }
}

// Size overrides the role size in points.
func Size(pt float64) TextOption {
	return func(s *textSettings) { s.sizePt = pt }
}

// Align overrides the paragraph alignment (AddParagraph only).
func Align(a style.Alignment) TextOption {
	return func(s *textSettings) { s.align = a }
}

// NoIndent drops the first-line indent (AddParagraph only).
func NoIndent() TextOption {
	return func(s *textSettings) { s.noIndent = true }
}

func resolve(base style.TextStyle, opts []TextOption) (style.TextStyle, textSettings) {
	var ts textSettings
	for _, o := range opts {
		o(&ts)
	}
	if ts.font != "" {
		base.Font = ts.font
	}
	if ts.sizePt > 0 {
		base.SizePt = ts.sizePt
	}
	if ts.align.Valid() {
		base.Align = ts.align
	}
	if ts.noIndent {
		base.FirstLineIndentPt = 0
	}
	return base, ts
}
