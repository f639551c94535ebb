package eval

// HelperFunc is the Go signature of every helper. this is the context the
// helper was called in; args holds the arguments bound according to the
// helper's arity (see [Helper]).
type HelperFunc func(this Value, args []Value) (Value, error)

// Helper is a callable with a declared arity.
//
// A call site supplies k evaluated arguments. For a helper of arity N the
// arguments are bound as follows:
//
//   - arguments beyond N are dropped;
//   - if N > k, the [Options] value is appended;
//   - if N > k+1, the calling context is prepended;
//   - if N > k+2, Null fills the remaining slots before the Options.
//
// So a helper of arity 2 called with one argument receives (value, options)
// and one of arity 1 called with none receives (options). A variadic helper
// receives every argument followed by the Options.
type Helper struct {
	fn    HelperFunc
	arity int
	exact int
}

// Func returns a helper of the given arity.
func Func(arity int, fn HelperFunc) *Helper {
	return &Helper{fn: fn, arity: max(arity, 0)}
}

// Variadic returns a helper that receives all arguments plus the Options.
func Variadic(fn HelperFunc) *Helper {
	return &Helper{fn: fn, arity: -1}
}

// exactly returns a helper of arity exact+2 (context, arguments, options)
// that rejects calls with other than exact arguments.
func exactly(exact int, fn HelperFunc) *Helper {
	return &Helper{fn: fn, arity: exact + 2, exact: exact}
}

// Arity returns the declared arity, or -1 for a variadic helper.
func (h *Helper) Arity() int { return h.arity }

// IsVariadic reports whether h receives all arguments.
func (h *Helper) IsVariadic() bool { return h.arity < 0 }

// Call invokes the helper directly with already bound arguments.
func (h *Helper) Call(this Value, args ...Value) (Value, error) {
	return h.fn(this, args)
}

// acceptsOptions reports whether a call with k arguments passes the
// Options to h.
func (h *Helper) acceptsOptions(k int) bool {
	return h.arity < 0 || h.arity > k
}

// bind arranges args for a call to h per the arity protocol.
func (h *Helper) bind(this Value, args []Value, opts Value) []Value {
	if h.arity < 0 {
		bound := make([]Value, 0, len(args)+1)
		bound = append(bound, args...)

		return append(bound, opts)
	}

	n := h.arity
	k := min(len(args), n)
	bound := make([]Value, 0, n)

	if n > k+1 {
		bound = append(bound, this)
	}

	bound = append(bound, args[:k]...)

	for len(bound) < n-1 {
		bound = append(bound, Null())
	}

	if n > k {
		bound = append(bound, opts)
	}

	return bound
}
