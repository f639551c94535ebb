package script

import "github.com/mvz/haparanda/log"

type config struct {
	logger log.Logger
}

// Option configures helper compilation.
type Option func(*config)

// WithLogger sets the logger for trace-level compile messages.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func makeConfig(opts ...Option) config {
	var c config

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c
}
