package report

import (
	"time"

	"go.uber.org/zap"

	"github.com/ukaji3/reportfmt-go/pkg/reportfmt/style"
)

// Option configures Generate.
type Option func(*config)

type config struct {
	logger    *zap.Logger
	outputDir string
	profile   style.Profile
	now       func() time.Time
	author    string
}

func newConfig(opts []Option) *config {
	c := &config{
		logger:  zap.NewNop(),
		profile: style.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOutputDir places derived output paths under dir. Explicit output
// paths in the spec are used as given.
func WithOutputDir(dir string) Option {
	return func(c *config) { c.outputDir = dir }
}

// WithProfile replaces the default style profile.
func WithProfile(p style.Profile) Option {
	return func(c *config) { c.profile = p }
}

// WithClock sets the time source for the default date and file name.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAuthor sets the document creator property.
func WithAuthor(name string) Option {
	return func(c *config) { c.author = name }
}
