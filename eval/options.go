package eval

import (
	"slices"
	"strings"

	"github.com/mvz/haparanda/lang"
)

// Options is the last argument of a helper call. It carries the call's
// name and hash arguments, the current data frame, and for block calls the
// fn and inverse continuations that render the block's bodies.
type Options struct {
	ev      *evaluator
	hash    *Mapping
	data    *Frame
	program *lang.Program
	inverse *lang.Inverse
	saved   scope
	name    string
}

// newOptions captures the evaluator state at the call site. The bodies
// render against that state no matter when the helper invokes them.
func (e *evaluator) newOptions(
	name string,
	hash *Mapping,
	program *lang.Program,
	inverse *lang.Inverse,
) *Options {
	if hash == nil {
		hash = NewMapping()
	}

	return &Options{
		ev:      e,
		hash:    hash,
		data:    e.scope.data,
		program: program,
		inverse: inverse,
		saved: scope{
			contexts: slices.Clone(e.scope.contexts),
			data:     e.scope.data,
			params:   e.scope.params,
			inline:   slices.Clone(e.scope.inline),
		},
		name: name,
	}
}

// Name returns the name the helper was called by.
func (o *Options) Name() string { return o.name }

// Hash returns the key=value arguments of the call.
func (o *Options) Hash() *Mapping { return o.hash }

// HashValue returns the hash argument key, or Null.
func (o *Options) HashValue(key string) Value {
	v, _ := o.hash.Get(key)

	return v
}

// Data returns the data frame current at the call site.
func (o *Options) Data() *Frame { return o.data }

// BlockParams returns the number of block parameters the block declares.
func (o *Options) BlockParams() int {
	if o.program == nil {
		return 0
	}

	return len(o.program.BlockParams)
}

// HasFn reports whether the call has a main body, which is true for block
// calls only.
func (o *Options) HasFn() bool { return o.program != nil }

// HasInverse reports whether the call has an {{else}} body.
func (o *Options) HasInverse() bool { return o.inverse != nil }

// Fn renders the main body with item as the context.
func (o *Options) Fn(item Value) (string, error) {
	return o.FnWith(item, nil)
}

// FnWith renders the main body with item as the context, frame as the
// data frame (nil keeps the call site's) and blockParams bound to the
// names the block declares.
func (o *Options) FnWith(item Value, frame *Frame, blockParams ...Value) (string, error) {
	if o.program == nil {
		return "", nil
	}

	return o.render(item, frame, o.program.BlockParams, blockParams, o.program.Items())
}

// Inverse renders the {{else}} body with item as the context.
func (o *Options) Inverse(item Value) (string, error) {
	if o.inverse == nil {
		return "", nil
	}

	return o.render(item, nil, nil, nil, o.inverse.Items())
}

// LookupProperty returns field key of item, or Null.
func (o *Options) LookupProperty(item, key Value) Value {
	return item.Get(key.String())
}

func (o *Options) render(
	item Value,
	frame *Frame,
	names []string,
	params []Value,
	body []lang.Node,
) (string, error) {
	e := o.ev
	s := &e.scope

	defer s.swapContexts(slices.Clone(o.saved.contexts))()
	defer s.swapParams(o.saved.params)()
	defer s.swapInline(o.saved.inline)()

	if frame == nil {
		frame = o.saved.data
	}

	defer s.pushData(frame)()
	defer s.pushContext(item)()
	defer s.pushParams(names, params)()

	var sb strings.Builder
	if err := e.statements(&sb, body); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// field exposes the options to template paths, as in {{options.name}}
// inside a partial or a value returned by a helper.
func (o *Options) field(key string) Value {
	switch key {
	case "name":
		return String(o.name)
	case "hash":
		return Map(o.hash)
	case "data":
		return Map(o.data.Values())
	case "blockParams":
		return Number(float64(o.BlockParams()))
	default:
		return Null()
	}
}
