package script

import (
	"github.com/mvz/haparanda/eval"
)

// safeString marks a result that must not be escaped.
type safeString string

// vars is the environment an expression runs in. Fields of interface type
// are left untyped when the expression is checked.
type vars struct {
	This    any                          `expr:"this"`
	Hash    map[string]any               `expr:"hash"`
	Data    map[string]any               `expr:"data"`
	Fn      func(...any) (string, error) `expr:"fn"`
	Inverse func(...any) (string, error) `expr:"inverse"`
	Safe    func(any) safeString         `expr:"safe"`
	Escape  func(any) string             `expr:"escape"`
	Lookup  func(any, any) any           `expr:"lookup"`
	Name    string                       `expr:"name"`
	Args    []any                        `expr:"args"`
}

// names lists the identifiers vars defines.
var names = map[string]bool{
	"this": true, "args": true, "hash": true, "data": true, "name": true,
	"fn": true, "inverse": true, "safe": true, "escape": true, "lookup": true,
}

// env binds one call of a helper. The compile-time env has no options;
// its functions are never called.
type env struct {
	opts *eval.Options
	this eval.Value
	args []eval.Value
}

func newEnv(this eval.Value, opts *eval.Options) *env {
	return &env{this: this, opts: opts}
}

func (e *env) vars() vars {
	args := make([]any, len(e.args))
	for i, arg := range e.args {
		args[i] = arg.Native()
	}

	v := vars{
		This:    e.this.Native(),
		Args:    args,
		Hash:    map[string]any{},
		Data:    map[string]any{},
		Fn:      e.fn,
		Inverse: e.inverse,
		Safe:    safe,
		Escape:  escape,
		Lookup:  e.lookup,
	}

	if e.opts != nil {
		v.Hash = eval.Map(e.opts.Hash()).Native().(map[string]any)
		v.Data = eval.Map(e.opts.Data().Values()).Native().(map[string]any)
		v.Name = e.opts.Name()
	}

	return v
}

// fn renders the main block with item, or with the current context when
// called without arguments.
func (e *env) fn(item ...any) (string, error) {
	if e.opts == nil {
		return "", nil
	}

	return e.opts.Fn(e.item(item))
}

func (e *env) inverse(item ...any) (string, error) {
	if e.opts == nil {
		return "", nil
	}

	return e.opts.Inverse(e.item(item))
}

func (e *env) item(item []any) eval.Value {
	if len(item) == 0 {
		return e.this
	}

	return eval.FromGo(item[0])
}

func (e *env) lookup(obj, key any) any {
	if e.opts == nil {
		return nil
	}

	return e.opts.LookupProperty(eval.FromGo(obj), eval.FromGo(key)).Native()
}

func safe(v any) safeString {
	return safeString(eval.FromGo(v).String())
}

func escape(v any) string {
	return eval.Escape(eval.FromGo(v).String())
}
