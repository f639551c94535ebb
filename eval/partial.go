package eval

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mvz/haparanda/lang"
)

// Partial is a registered partial: either a parsed template or a helper
// whose result is rendered in its place. A helper partial is called with
// the partial's context as its only argument.
type Partial struct {
	Template *lang.Root
	Func     *Helper
}

// Partials maps names to partials.
type Partials map[string]Partial

// partialBlockKey is the data variable holding the body of the innermost
// partial block.
const partialBlockKey = "partial-block"

// body is a resolved partial ready to render.
type body struct {
	items []lang.Node
	fn    *Helper
}

func (e *evaluator) partial(out *strings.Builder, n *lang.Partial) error {
	b, name, err := e.resolvePartial(n.Name)
	if err != nil {
		return err
	}

	if b == nil {
		return &MissingPartialError{Name: name}
	}

	s, err := e.renderPartial(b, name, n.Context, n.Hash, nil)
	if err != nil {
		return err
	}

	out.WriteString(indent(s, n.Indent))

	return nil
}

func (e *evaluator) partialBlock(out *strings.Builder, n *lang.PartialBlock) error {
	b, name, err := e.resolvePartial(n.Name)
	if err != nil {
		return err
	}

	block := e.partialBlockHelper(n.Program)
	if b == nil {
		b = &body{fn: block}
	}

	inline, err := e.inlinePartials(n.Program.Items())
	if err != nil {
		return err
	}

	defer e.scope.pushInline(inline)()

	frame := e.scope.data.Child().
		Set(partialBlockKey, Callable(block))

	s, err := e.renderPartial(b, name, n.Context, n.Hash, frame)
	if err != nil {
		return err
	}

	out.WriteString(s)

	return nil
}

// partialBlockHelper returns a helper that renders program in the scope of
// the partial block that defines it, with the context it is called with.
// While it renders, @partial-block refers to the enclosing partial block.
func (e *evaluator) partialBlockHelper(program *lang.Program) *Helper {
	params := e.scope.params
	outer := e.scope.data.Get(partialBlockKey)

	return Variadic(func(this Value, _ []Value) (Value, error) {
		defer e.scope.swapParams(params)()
		defer e.scope.pushData(e.scope.data.Child().Set(partialBlockKey, outer))()

		var sb strings.Builder
		if err := e.statements(&sb, program.Items()); err != nil {
			return Null(), err
		}

		return Safe(sb.String()), nil
	})
}

// resolvePartial finds the partial a name expression refers to. It
// returns a nil body if no partial has that name.
func (e *evaluator) resolvePartial(node lang.Node) (*body, string, error) {
	if path, ok := node.(*lang.Path); ok && path.Data {
		if h := e.lookup(path).Helper(); h != nil {
			return &body{fn: h}, path.Original, nil
		}

		return nil, path.Original, nil
	}

	name, err := e.partialName(node)
	if err != nil {
		return nil, "", err
	}

	if program, ok := e.scope.inlinePartial(name); ok {
		return &body{items: program.Items()}, name, nil
	}

	p, ok := e.partials[name]

	switch {
	case !ok:
		return nil, name, nil
	case p.Func != nil:
		return &body{fn: p.Func}, name, nil
	case p.Template != nil:
		return &body{items: p.Template.Body.Items}, name, nil
	default:
		return nil, name, nil
	}
}

// partialName returns the name a partial tag refers to. Paths and literals
// name a partial by their text; a sub-expression computes the name.
func (e *evaluator) partialName(node lang.Node) (string, error) {
	switch n := node.(type) {
	case *lang.SubExpression:
		v, err := e.call(n.Path, n.Params, n.Hash, true)
		if err != nil {
			return "", err
		}

		return v.String(), nil
	case *lang.Path:
		return n.Original, nil
	default:
		return pathOf(node).Original, nil
	}
}

// renderPartial renders a resolved partial. The context argument, if any,
// becomes the current context; hash arguments are bound as block
// parameters and replace any outer ones. frame, if not nil, becomes the
// data frame.
func (e *evaluator) renderPartial(
	b *body,
	name string,
	context lang.Node,
	hash *lang.Hash,
	frame *Frame,
) (string, error) {
	if e.depth >= e.maxDepth {
		return "", fmt.Errorf("%w: %d rendering %q", ErrMaxDepth, e.maxDepth, name)
	}

	e.depth++
	defer func() { e.depth-- }()

	this := e.scope.this()

	if context != nil {
		v, err := e.expr(context)
		if err != nil {
			return "", err
		}

		this = v
	}

	pairs, err := e.hash(hash)
	if err != nil {
		return "", err
	}

	e.logger.TraceContext(
		e.ctx,
		"render partial",
		slog.String("name", name),
		slog.Int("depth", e.depth),
		slog.Bool("func", b.fn != nil),
	)

	defer e.scope.pushData(frame)()
	defer e.scope.pushContext(this)()
	defer e.scope.swapParams(pairs)()

	if b.fn != nil {
		v, err := e.invoke(b.fn, name, []Value{this}, pairs, nil, nil)
		if err != nil {
			return "", err
		}

		return v.String(), nil
	}

	var sb strings.Builder
	if err := e.statements(&sb, b.items); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// inlinePartials collects the {{#*inline "name"}} definitions of a
// statement list.
func (e *evaluator) inlinePartials(items []lang.Node) (map[string]*lang.Program, error) {
	var defs map[string]*lang.Program

	for _, item := range items {
		d, ok := item.(*lang.DirectiveBlock)
		if !ok || d.Params.Len() == 0 {
			continue
		}

		name, err := e.expr(d.Params.Items[0])
		if err != nil {
			return nil, err
		}

		if defs == nil {
			defs = make(map[string]*lang.Program)
		}

		defs[name.String()] = d.Program
	}

	return defs, nil
}

// indent prefixes every line of s with prefix. A final empty line, left by
// a trailing newline, is not indented.
func indent(s, prefix string) string {
	if prefix == "" || s == "" {
		return s
	}

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		if line == "" && i == len(lines)-1 {
			break
		}

		lines[i] = prefix + line
	}

	return strings.Join(lines, "\n")
}
