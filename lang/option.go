package lang

import "github.com/mvz/haparanda/log"

// optionsKey holds the options that change the shape of a parsed template.
// Each field is gob-encoded into the parse cache key.
type optionsKey struct {
	ignoreStandalone bool
	preventIndent    bool
}

// config is the effective configuration of a parse.
type config struct {
	logger log.Logger
	opts   optionsKey
}

// Option configures template parsing.
type Option func(*config)

// WithIgnoreStandalone disables standalone line detection. Tags alone on a
// line keep their surrounding whitespace; "~" markers still apply.
func WithIgnoreStandalone(ignore bool) Option {
	return func(c *config) {
		c.opts.ignoreStandalone = ignore
	}
}

// WithPreventIndent keeps the indentation in front of a standalone partial
// as ordinary content instead of indenting every line the partial renders.
func WithPreventIndent(prevent bool) Option {
	return func(c *config) {
		c.opts.preventIndent = prevent
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// makeConfig applies functional options to a zero configuration.
func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}
