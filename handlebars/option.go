package handlebars

import (
	"github.com/mvz/haparanda/eval"
	"github.com/mvz/haparanda/lang"
	"github.com/mvz/haparanda/log"
)

// Option configures a [Compiler].
type Option func(*Compiler)

// WithLogger sets the logger passed to the parser and the evaluator.
func WithLogger(logger log.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithIgnoreStandalone disables standalone line detection for every
// template and partial the compiler parses.
func WithIgnoreStandalone(ignore bool) Option {
	return func(c *Compiler) {
		c.parse = append(c.parse, lang.WithIgnoreStandalone(ignore))
	}
}

// WithPreventIndent stops standalone partials from indenting the lines
// they render.
func WithPreventIndent(prevent bool) Option {
	return func(c *Compiler) {
		c.parse = append(c.parse, lang.WithPreventIndent(prevent))
	}
}

// WithMaxDepth limits the nesting of partial calls in templates the
// compiler produces.
func WithMaxDepth(depth int) Option {
	return func(c *Compiler) {
		c.maxDepth = depth
	}
}

// CallOption configures one call of a [Template].
type CallOption func(*call)

type call struct {
	data *eval.Mapping
}

// WithData sets the initial "@" variables of a call. A "root" entry
// replaces @root.
func WithData(data map[string]any) CallOption {
	return func(c *call) {
		c.data = eval.FromGo(data).Map()
	}
}
