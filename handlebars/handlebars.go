package handlebars

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/mvz/haparanda/eval"
	"github.com/mvz/haparanda/lang"
	"github.com/mvz/haparanda/log"
)

// Predefined errors (sentinel values).
var (
	ErrNilHelper   = lang.NewError("nil helper")
	ErrNilPartial  = lang.NewError("nil partial")
	ErrLoadPartial = lang.NewError("failed to load partial")
)

// Compiler holds the helpers and partials shared by the templates it
// compiles. It is safe for concurrent use.
type Compiler struct {
	helpers  eval.Helpers
	partials eval.Partials
	logger   log.Logger
	parse    []lang.Option
	maxDepth int
	mu       sync.RWMutex
}

// New returns a compiler with empty registries.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		helpers:  make(eval.Helpers),
		partials: make(eval.Partials),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// RegisterHelper adds a helper, replacing any helper or built-in of the
// same name.
func (c *Compiler) RegisterHelper(name string, h *eval.Helper) error {
	if h == nil {
		return ErrNilHelper.With(slog.String("name", name))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.helpers[name] = h

	return nil
}

// RegisterHelpers adds every helper in helpers.
func (c *Compiler) RegisterHelpers(helpers eval.Helpers) error {
	for name, h := range helpers {
		if err := c.RegisterHelper(name, h); err != nil {
			return err
		}
	}

	return nil
}

// UnregisterHelper removes a helper. A built-in of the same name becomes
// visible again.
func (c *Compiler) UnregisterHelper(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.helpers, name)
}

// Helper returns the registered helper with the given name.
func (c *Compiler) Helper(name string) (*eval.Helper, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h, ok := c.helpers[name]

	return h, ok
}

// RegisterPartial parses text and registers it as a partial.
func (c *Compiler) RegisterPartial(ctx context.Context, name, text string) error {
	root, err := lang.ParseReader(ctx, strings.NewReader(text), c.parseOptions()...)
	if err != nil {
		return lang.WrapError(err).With(slog.String("partial", name))
	}

	c.setPartial(name, eval.Partial{Template: root})

	c.logger.TraceContext(ctx, "register partial", slog.String("name", name))

	return nil
}

// RegisterPartialFunc registers a helper whose result is rendered in
// place of the partial. It is called with the partial's context.
func (c *Compiler) RegisterPartialFunc(name string, h *eval.Helper) error {
	if h == nil {
		return ErrNilPartial.With(slog.String("name", name))
	}

	c.setPartial(name, eval.Partial{Func: h})

	return nil
}

func (c *Compiler) setPartial(name string, p eval.Partial) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.partials[name] = p
}

// UnregisterPartial removes a partial.
func (c *Compiler) UnregisterPartial(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.partials, name)
}

// Partial returns the registered partial with the given name.
func (c *Compiler) Partial(name string) (eval.Partial, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.partials[name]

	return p, ok
}

// Helpers returns the names of the registered helpers.
func (c *Compiler) Helpers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return sortedNames(c.helpers)
}

// Partials returns the names of the registered partials.
func (c *Compiler) Partials() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return sortedNames(c.partials)
}

// SetLogger replaces the compiler's logger.
func (c *Compiler) SetLogger(logger log.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger = logger
}

// Logger returns the compiler's logger.
func (c *Compiler) Logger() log.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.logger
}

// Compile parses text into a template bound to this compiler. opts are
// applied after the compiler's own parse options.
func (c *Compiler) Compile(ctx context.Context, text string, opts ...lang.Option) (*Template, error) {
	root, err := lang.ParseReader(ctx, strings.NewReader(text), append(c.parseOptions(), opts...)...)
	if err != nil {
		return nil, err
	}

	return &Template{root: root, compiler: c}, nil
}

func (c *Compiler) parseOptions() []lang.Option {
	c.mu.RLock()
	defer c.mu.RUnlock()

	opts := make([]lang.Option, 0, len(c.parse)+1)
	opts = append(opts, lang.WithLogger(c.logger))

	return append(opts, c.parse...)
}

// snapshot copies the registries so a render never observes a
// registration made while it runs.
func (c *Compiler) snapshot() (eval.Helpers, eval.Partials, []eval.Option) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Clone(c.helpers), maps.Clone(c.partials), []eval.Option{
		eval.WithLogger(c.logger),
		eval.WithMaxDepth(c.maxDepth),
	}
}

// Template is a compiled template. It may be called concurrently.
type Template struct {
	root     *lang.Root
	compiler *Compiler
}

// Root returns the template's syntax tree.
func (t *Template) Root() *lang.Root { return t.root }

// Call renders the template with input as the initial context. input is
// converted with [eval.FromGo].
func (t *Template) Call(ctx context.Context, input any, opts ...CallOption) (string, error) {
	var cfg call

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	helpers, partials, evalOpts := t.compiler.snapshot()

	return eval.Apply(ctx, t.root, eval.FromGo(input), helpers, partials, cfg.data, evalOpts...)
}

func sortedNames[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
