package chart

import "go.uber.org/zap"

// Option configures a build.
type Option func(*config)

type config struct {
	logger *zap.Logger
}

func newConfig(opts []Option) *config {
	c := &config{logger: zap.NewNop()}
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
