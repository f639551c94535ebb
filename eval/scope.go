package eval

import "github.com/mvz/haparanda/lang"

// Frame is a data frame: the "@" variables visible to a template body.
// Frames form a chain through their parent, which "@../name" reads.
type Frame struct {
	values *Mapping
	parent *Frame
}

// NewFrame returns a root frame holding a copy of values.
func NewFrame(values *Mapping) *Frame {
	return &Frame{values: values.Clone()}
}

// Child returns a new frame that starts as a copy of f and has f as its
// parent.
func (f *Frame) Child() *Frame {
	if f == nil {
		return &Frame{values: NewMapping()}
	}

	return &Frame{values: f.values.Clone(), parent: f}
}

// Get returns the value of @key, or Null.
func (f *Frame) Get(key string) Value {
	if f == nil {
		return Null()
	}

	v, _ := f.values.Get(key)

	return v
}

// Set assigns @key in f.
func (f *Frame) Set(key string, v Value) *Frame {
	f.values.Set(key, v)

	return f
}

// Parent returns the enclosing frame, or nil.
func (f *Frame) Parent() *Frame {
	if f == nil {
		return nil
	}

	return f.parent
}

// Values returns the variables of f as a mapping.
func (f *Frame) Values() *Mapping {
	if f == nil {
		return NewMapping()
	}

	return f.values.Clone()
}

// scope holds the dynamic state of one render. Each push method returns a
// function that restores the previous state; callers defer it so the
// stacks unwind on every path, including errors.
type scope struct {
	contexts []Value
	data     *Frame
	params   *Mapping
	inline   []map[string]*lang.Program
}

// this returns the top of the context stack.
func (s *scope) this() Value {
	return s.contexts[len(s.contexts)-1]
}

// ancestor returns the context depth levels below the top, or Null past
// the bottom of the stack.
func (s *scope) ancestor(depth int) Value {
	i := len(s.contexts) - 1 - depth
	if i < 0 {
		return Null()
	}

	return s.contexts[i]
}

// pushContext makes v the current context. Re-entering the current
// context does not add a level.
func (s *scope) pushContext(v Value) func() {
	if same(v, s.this()) {
		return func() {}
	}

	n := len(s.contexts)
	s.contexts = append(s.contexts, v)

	return func() { s.contexts = s.contexts[:n] }
}

// swapContexts replaces the whole context stack.
func (s *scope) swapContexts(stack []Value) func() {
	prev := s.contexts
	s.contexts = stack

	return func() { s.contexts = prev }
}

// pushData makes f the current data frame. A nil f keeps the current one.
func (s *scope) pushData(f *Frame) func() {
	if f == nil {
		return func() {}
	}

	prev := s.data
	s.data = f

	return func() { s.data = prev }
}

// pushParams binds names to values on top of the current block
// parameters. Names without a value are bound to Null.
func (s *scope) pushParams(names []string, values []Value) func() {
	if len(names) == 0 {
		return func() {}
	}

	bound := s.params.Clone()

	for i, name := range names {
		v := Null()
		if i < len(values) {
			v = values[i]
		}

		bound.Set(name, v)
	}

	return s.swapParams(bound)
}

// swapParams replaces the block parameter scope.
func (s *scope) swapParams(params *Mapping) func() {
	prev := s.params
	s.params = params

	return func() { s.params = prev }
}

// pushInline makes the given inline partials visible until the returned
// function is called.
func (s *scope) pushInline(partials map[string]*lang.Program) func() {
	if len(partials) == 0 {
		return func() {}
	}

	n := len(s.inline)
	s.inline = append(s.inline, partials)

	return func() { s.inline = s.inline[:n] }
}

// swapInline replaces the inline partial overlays.
func (s *scope) swapInline(inline []map[string]*lang.Program) func() {
	prev := s.inline
	s.inline = inline

	return func() { s.inline = prev }
}

// inlinePartial finds the innermost inline partial named name.
func (s *scope) inlinePartial(name string) (*lang.Program, bool) {
	for i := len(s.inline) - 1; i >= 0; i-- {
		if p, ok := s.inline[i][name]; ok {
			return p, true
		}
	}

	return nil, false
}
