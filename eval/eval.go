package eval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mvz/haparanda/lang"
	"github.com/mvz/haparanda/log"
)

// MaxCallableChain bounds how many times a callable returned by a block
// helper is itself invoked before its result is rendered.
const MaxCallableChain = 16

// DefaultMaxDepth is the default limit on nested partial calls.
const DefaultMaxDepth = 256

// ErrNode is returned for a node that cannot appear where it was found.
var ErrNode = errors.New("unexpected node")

type config struct {
	logger   log.Logger
	maxDepth int
}

// Option configures a render.
type Option func(*config)

// WithLogger sets the logger used for tracing and by the log helper.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMaxDepth limits the nesting of partial calls. Values below one
// restore the default.
func WithMaxDepth(depth int) Option {
	return func(c *config) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth
	}
}

func makeConfig(opts ...Option) config {
	cfg := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// evaluator holds the state of one render. It is never shared between
// renders, so the registries it reads may be.
type evaluator struct {
	ctx      context.Context
	helpers  Helpers
	partials Partials
	logger   log.Logger
	scope    scope
	maxDepth int
	depth    int
}

// Apply renders a parsed template.
//
// input becomes the initial context and @root. helpers and partials are
// consulted before the built-in helpers and are not modified. data holds
// the initial "@" variables; a "root" entry in data replaces @root.
func Apply(
	ctx context.Context,
	root lang.Node,
	input Value,
	helpers Helpers,
	partials Partials,
	data *Mapping,
	opts ...Option,
) (string, error) {
	cfg := makeConfig(opts...)

	frame := NewFrame(data)
	if _, ok := frame.values.Get("root"); !ok {
		frame.Set("root", input)
	}

	e := &evaluator{
		ctx:      ctx,
		helpers:  helpers,
		partials: partials,
		logger:   cfg.logger,
		scope: scope{
			contexts: []Value{input},
			data:     frame,
			params:   NewMapping(),
		},
		maxDepth: cfg.maxDepth,
	}

	e.logger.TraceContext(
		ctx,
		"render",
		slog.String("input", input.Kind().String()),
		slog.Int("helpers", len(helpers)),
		slog.Int("partials", len(partials)),
	)

	var sb strings.Builder
	if err := e.render(&sb, root); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// render writes the output of one node.
func (e *evaluator) render(out *strings.Builder, node lang.Node) error {
	switch n := node.(type) {
	case *lang.Root:
		return e.statements(out, n.Body.Items)
	case *lang.Statements:
		return e.statements(out, n.Items)
	case *lang.Program:
		return e.statements(out, n.Items())
	default:
		return e.statements(out, []lang.Node{node})
	}
}

// statements renders a statement list. Inline partials the list defines
// are visible to the whole list, including statements before the
// definition.
func (e *evaluator) statements(out *strings.Builder, items []lang.Node) error {
	inline, err := e.inlinePartials(items)
	if err != nil {
		return err
	}

	defer e.scope.pushInline(inline)()

	for _, item := range items {
		if err := e.statement(out, item); err != nil {
			return err
		}
	}

	return nil
}

func (e *evaluator) statement(out *strings.Builder, node lang.Node) error {
	switch n := node.(type) {
	case *lang.Content:
		out.WriteString(n.Value)
	case *lang.Comment, *lang.DirectiveBlock:
	case *lang.Mustache:
		return e.mustache(out, n)
	case *lang.Block:
		return e.block(out, n)
	case *lang.Partial:
		return e.partial(out, n)
	case *lang.PartialBlock:
		return e.partialBlock(out, n)
	default:
		return fmt.Errorf("%w: %s at line %d", ErrNode, node.Kind(), node.Pos().Line)
	}

	return nil
}

func (e *evaluator) mustache(out *strings.Builder, n *lang.Mustache) error {
	v, err := e.call(n.Path, n.Params, n.Hash, false)
	if err != nil {
		return err
	}

	s := v.String()
	if n.Escaped && v.Kind() != KindSafeString {
		s = Escape(s)
	}

	out.WriteString(s)

	return nil
}

// call evaluates a mustache or sub-expression. A callable callee is
// invoked with the arguments; a callee that resolves to nothing goes to
// helperMissing when the call has arguments, or when it is a bare name
// that could have named a helper (always, for a sub-expression).
func (e *evaluator) call(
	callee lang.Node,
	params *lang.Exprs,
	hash *lang.Hash,
	sub bool,
) (Value, error) {
	args, err := e.exprs(params)
	if err != nil {
		return Null(), err
	}

	pairs, err := e.hash(hash)
	if err != nil {
		return Null(), err
	}

	path := pathOf(callee)
	value := e.lookup(path)

	if h := value.Helper(); h != nil {
		return e.invoke(h, path.Original, args, pairs, nil, nil)
	}

	if !value.IsNull() {
		return value, nil
	}

	if sub || len(args) > 0 || pairs.Len() > 0 ||
		(path.Simple() && !e.isParam(path)) {
		return e.invoke(e.helper("helperMissing"), path.Original, args, pairs, nil, nil)
	}

	return value, nil
}

func (e *evaluator) block(out *strings.Builder, n *lang.Block) error {
	args, err := e.exprs(n.Params)
	if err != nil {
		return err
	}

	pairs, err := e.hash(n.Hash)
	if err != nil {
		return err
	}

	path := pathOf(n.Path)
	name := path.Original
	value := e.lookup(path)

	var result Value

	switch h := value.Helper(); {
	case h != nil && h.acceptsOptions(len(args)):
		result, err = e.invoke(h, name, args, pairs, n.Program, n.Inverse)
	case h != nil:
		value, err = e.invokeChain(h, name, args)
		if err == nil {
			result, err = e.blockHelperMissing(name, value, pairs, n)
		}
	case value.IsNull() && (len(args) > 0 || pairs.Len() > 0):
		result, err = e.invoke(e.helper("helperMissing"), name, args, pairs, n.Program, n.Inverse)
	default:
		result, err = e.blockHelperMissing(name, value, pairs, n)
	}

	if err != nil {
		return err
	}

	out.WriteString(result.String())

	return nil
}

// invokeChain calls h without options and keeps calling while the result
// is itself callable, at most MaxCallableChain times.
func (e *evaluator) invokeChain(h *Helper, name string, args []Value) (Value, error) {
	value, err := e.invoke(h, name, args, nil, nil, nil)

	for range MaxCallableChain {
		next := value.Helper()
		if err != nil || next == nil {
			break
		}

		value, err = e.invoke(next, name, nil, nil, nil, nil)
	}

	return value, err
}

func (e *evaluator) blockHelperMissing(
	name string,
	value Value,
	pairs *Mapping,
	n *lang.Block,
) (Value, error) {
	return e.invoke(
		e.helper("blockHelperMissing"),
		name,
		[]Value{value},
		pairs,
		n.Program,
		n.Inverse,
	)
}

// invoke calls h with args bound according to its arity.
func (e *evaluator) invoke(
	h *Helper,
	name string,
	args []Value,
	hash *Mapping,
	program *lang.Program,
	inverse *lang.Inverse,
) (Value, error) {
	if h.exact > 0 && len(args) != h.exact {
		return Null(), &ArityError{
			Helper:   name,
			Block:    program != nil || inverse != nil,
			Expected: h.exact,
			Got:      len(args),
		}
	}

	this := e.scope.this()
	opts := e.newOptions(name, hash, program, inverse)

	e.logger.TraceContext(
		e.ctx,
		"invoke helper",
		slog.String("name", name),
		slog.Int("args", len(args)),
		slog.Int("arity", h.arity),
		slog.Bool("block", opts.HasFn()),
	)

	return h.fn(this, h.bind(this, args, optionsValue(opts)))
}

// helper returns the helper registered under name, falling back to the
// built-in helpers.
func (e *evaluator) helper(name string) *Helper {
	if h, ok := e.helpers[name]; ok && h != nil {
		return h
	}

	return builtins[name]
}

// isParam reports whether the path starts with a block parameter name.
func (e *evaluator) isParam(path *lang.Path) bool {
	if path.Data || path.Scoped() {
		return false
	}

	_, ok := e.scope.params.Get(path.Head())

	return ok
}

// lookup resolves a path: data variables, then block parameters, then a
// helper for a bare name, then the context stack.
func (e *evaluator) lookup(path *lang.Path) Value {
	segs := path.Segments

	if path.Data {
		frame := e.scope.data
		for len(segs) > 0 && isParent(segs[0]) {
			frame = frame.Parent()
			segs = segs[1:]
		}

		if len(segs) == 0 {
			return Null()
		}

		return dig(frame.Get(segs[0].Name), segs[1:])
	}

	if e.isParam(path) {
		v, _ := e.scope.params.Get(path.Head())

		return dig(v, segs[1:])
	}

	if path.Simple() {
		if h := e.helper(path.Head()); h != nil {
			return Callable(h)
		}
	}

	depth := 0

	for len(segs) > 0 && !segs[0].Escaped {
		switch segs[0].Name {
		case "..":
			depth++
		case ".", "this":
		default:
			return dig(e.scope.ancestor(depth), segs)
		}

		segs = segs[1:]
	}

	return dig(e.scope.ancestor(depth), segs)
}

func isParent(s lang.Segment) bool {
	return !s.Escaped && s.Name == ".."
}

// dig follows segs from v. A missing field ends the walk with Null.
func dig(v Value, segs []lang.Segment) Value {
	for _, s := range segs {
		if v.IsNull() {
			break
		}

		if !s.Escaped && (s.Name == "." || s.Name == "this") {
			continue
		}

		v = v.Get(s.Name)
	}

	return v
}

// pathOf returns the path a callee names. A literal in callee position
// names the field or helper spelled by its text.
func pathOf(node lang.Node) *lang.Path {
	var name string

	switch n := node.(type) {
	case *lang.Path:
		return n
	case *lang.String:
		name = n.Value
	case *lang.Number:
		name = n.Original
	case *lang.Boolean:
		name = strconv.FormatBool(n.Value)
	case *lang.Undefined:
		name = "undefined"
	case *lang.Null:
		name = "null"
	}

	return &lang.Path{
		Segments: []lang.Segment{{Name: name, Escaped: true}},
		Original: name,
		Loc:      node.Pos(),
	}
}

// expr evaluates an argument. Callables found at non-data paths are
// invoked with no arguments.
func (e *evaluator) expr(node lang.Node) (Value, error) {
	switch n := node.(type) {
	case *lang.Path:
		v := e.lookup(n)
		if h := v.Helper(); h != nil && !n.Data {
			return e.invoke(h, n.Original, nil, nil, nil, nil)
		}

		return v, nil
	case *lang.SubExpression:
		return e.call(n.Path, n.Params, n.Hash, true)
	case *lang.String:
		return String(n.Value), nil
	case *lang.Number:
		return Number(n.Value), nil
	case *lang.Boolean:
		return Bool(n.Value), nil
	case *lang.Undefined, *lang.Null:
		return Null(), nil
	default:
		return Null(), fmt.Errorf("%w: %s at line %d", ErrNode, node.Kind(), node.Pos().Line)
	}
}

// exprs evaluates positional arguments left to right.
func (e *evaluator) exprs(params *lang.Exprs) ([]Value, error) {
	if params.Len() == 0 {
		return nil, nil
	}

	args := make([]Value, len(params.Items))

	for i, item := range params.Items {
		v, err := e.expr(item)
		if err != nil {
			return nil, err
		}

		args[i] = v
	}

	return args, nil
}

// hash evaluates key=value arguments left to right.
func (e *evaluator) hash(hash *lang.Hash) (*Mapping, error) {
	m := NewMapping()

	for _, pair := range pairsOf(hash) {
		v, err := e.expr(pair.Value)
		if err != nil {
			return nil, err
		}

		m.Set(pair.Key, v)
	}

	return m, nil
}

func pairsOf(hash *lang.Hash) []lang.HashPair {
	if hash == nil {
		return nil
	}

	return hash.Pairs
}
