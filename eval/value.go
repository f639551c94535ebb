package eval

import (
	"iter"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

// Kind discriminates the variants of a [Value].
type Kind int

const (
	KindNull       Kind = iota // null
	KindBoolean                // boolean
	KindNumber                 // number
	KindString                 // string
	KindSafeString             // safe_string
	KindSequence               // sequence
	KindMapping                // mapping
	KindCallable               // callable
	KindOptions                // options
)

// Value is a dynamically typed template value. The zero Value is Null.
//
// Values are read-only: the evaluator never modifies a Value it was given,
// and helpers should build new values instead of mutating arguments.
type Value struct {
	seq  []Value
	m    *Mapping
	fn   *Helper
	opts *Options
	s    string
	n    float64
	kind Kind
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

// Number returns a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String returns a string value. Strings are escaped when rendered by an
// escaping mustache.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Safe returns a string value that is never escaped.
func Safe(s string) Value { return Value{kind: KindSafeString, s: s} }

// Seq returns a sequence holding the given items.
func Seq(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{kind: KindSequence, seq: items}
}

// Map returns a mapping value. A nil m is an empty mapping.
func Map(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}

	return Value{kind: KindMapping, m: m}
}

// Callable returns a value that wraps a helper. A nil h is Null.
func Callable(h *Helper) Value {
	if h == nil {
		return Null()
	}

	return Value{kind: KindCallable, fn: h}
}

func optionsValue(o *Options) Value { return Value{kind: KindOptions, opts: o} }

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v and whether v is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBoolean }

// Number returns the number held by v and whether v is a number.
func (v Value) Number() (float64, bool) { return v.n, v.kind == KindNumber }

// Str returns the text of a string or safe string and whether v is one.
func (v Value) Str() (string, bool) {
	return v.s, v.kind == KindString || v.kind == KindSafeString
}

// Seq returns the items of a sequence, or nil.
func (v Value) Seq() []Value { return v.seq }

// Map returns the mapping held by v, or nil.
func (v Value) Map() *Mapping { return v.m }

// Helper returns the helper wrapped by a callable, or nil.
func (v Value) Helper() *Helper { return v.fn }

// Options returns the options passed as the last argument to a helper,
// or nil when v is not an options value.
func (v Value) Options() *Options { return v.opts }

// Truthy reports whether v selects the main body of a conditional block.
// Null, false and the empty sequence are falsy; everything else, including
// zero, the empty string and the empty mapping, is truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBoolean:
		return v.b
	case KindSequence:
		return len(v.seq) > 0
	default:
		return true
	}
}

// String returns the text rendered for v by a mustache.
func (v Value) String() string {
	switch v.kind {
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString, KindSafeString:
		return v.s
	case KindSequence:
		parts := make([]string, len(v.seq))
		for i, item := range v.seq {
			parts[i] = item.String()
		}

		return strings.Join(parts, ",")
	case KindMapping:
		return "[object Object]"
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "Infinity"
	case math.IsInf(n, -1):
		return "-Infinity"
	case n == 0:
		return "0"
	}

	return strconv.FormatFloat(n, 'f', -1, 64)
}

// Get returns the field key of v. Mappings are indexed by key, sequences
// by decimal index, and sequences and strings expose "length". Every other
// lookup yields Null.
func (v Value) Get(key string) Value {
	switch v.kind {
	case KindMapping:
		if item, ok := v.m.Get(key); ok {
			return item
		}
	case KindSequence:
		if key == "length" {
			return Number(float64(len(v.seq)))
		}

		if i, err := strconv.Atoi(key); err == nil && i >= 0 && i < len(v.seq) {
			return v.seq[i]
		}
	case KindString, KindSafeString:
		if key == "length" {
			return Number(float64(utf16Len(v.s)))
		}
	case KindOptions:
		return v.opts.field(key)
	}

	return Null()
}

// Index returns item i of a sequence, or Null.
func (v Value) Index(i int) Value {
	if v.kind != KindSequence || i < 0 || i >= len(v.seq) {
		return Null()
	}

	return v.seq[i]
}

// Len returns the number of items in a sequence or mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return v.m.Len()
	default:
		return 0
	}
}

// same reports whether a and b are the same value: equal scalars, or the
// same underlying sequence, mapping or helper.
func same(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBoolean:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString, KindSafeString:
		return a.s == b.s
	case KindSequence:
		return len(a.seq) == len(b.seq) &&
			(len(a.seq) == 0 || &a.seq[0] == &b.seq[0])
	case KindMapping:
		return a.m == b.m
	case KindCallable:
		return a.fn == b.fn
	case KindOptions:
		return a.opts == b.opts
	}

	return false
}

// Mapping is a string-keyed map that remembers insertion order.
type Mapping struct {
	vals map[string]Value
	keys []string
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{vals: make(map[string]Value)}
}

// Set stores val under key, appending key if it is new, and returns m.
func (m *Mapping) Set(key string, val Value) *Mapping {
	if m.vals == nil {
		m.vals = make(map[string]Value)
	}

	if _, ok := m.vals[key]; !ok {
		m.keys = append(m.keys, key)
	}

	m.vals[key] = val

	return m
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Null(), false
	}

	v, ok := m.vals[key]

	return v, ok
}

// Len returns the number of keys. It is safe on nil.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}

	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}

	return slices.Clone(m.keys)
}

// All iterates over the entries in insertion order.
func (m *Mapping) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}

		for _, k := range m.keys {
			if !yield(k, m.vals[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of m. It is safe on nil.
func (m *Mapping) Clone() *Mapping {
	c := &Mapping{vals: make(map[string]Value, m.Len())}

	if m != nil {
		c.keys = slices.Clone(m.keys)
		for k, v := range m.vals {
			c.vals[k] = v
		}
	}

	return c
}

// utf16Len counts s in UTF-16 code units, as JavaScript string lengths do.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += max(utf16.RuneLen(r), 1)
	}

	return n
}
