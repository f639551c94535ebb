package eval

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/mvz/haparanda/log"
)

// Helpers maps names to helpers.
type Helpers map[string]*Helper

// Builtins returns a new registry holding the built-in helpers: if,
// unless, with, each, lookup, log, helperMissing and blockHelperMissing.
func Builtins() Helpers {
	return Helpers{
		"if":                 exactly(1, helperIf),
		"unless":             exactly(1, helperUnless),
		"with":               exactly(1, helperWith),
		"each":               exactly(1, helperEach),
		"lookup":             Func(3, helperLookup),
		"log":                Variadic(helperLog),
		"helperMissing":      Variadic(helperMissing),
		"blockHelperMissing": Func(3, blockHelperMissing),
	}
}

var builtins Helpers

func init() { builtins = Builtins() }

func helperIf(this Value, args []Value) (Value, error) {
	cond, opts := args[1], args[2].Options()

	if cond.Truthy() {
		return safe(opts.Fn(this))
	}

	return safe(opts.Inverse(this))
}

func helperUnless(this Value, args []Value) (Value, error) {
	cond, opts := args[1], args[2].Options()

	if cond.Truthy() {
		return safe(opts.Inverse(this))
	}

	return safe(opts.Fn(this))
}

func helperWith(this Value, args []Value) (Value, error) {
	item, opts := args[1], args[2].Options()

	if !item.Truthy() {
		return safe(opts.Inverse(this))
	}

	return safe(opts.FnWith(item, nil, item))
}

func helperEach(this Value, args []Value) (Value, error) {
	items, opts := args[1], args[2].Options()

	return safe(iterate(this, items, opts))
}

// iterate renders the main body once per item of a sequence or entry of
// a mapping, setting @index, @key, @first and @last and binding the block
// parameters to the item and its index or key. Anything else, and an
// empty collection, renders the inverse.
func iterate(this, items Value, opts *Options) (string, error) {
	var sb strings.Builder

	step := func(item, key Value, index, last int) error {
		frame := opts.Data().Child().
			Set("key", key).
			Set("index", Number(float64(index))).
			Set("first", Bool(index == 0)).
			Set("last", Bool(index == last))

		s, err := opts.FnWith(item, frame, item, key)
		if err != nil {
			return err
		}

		sb.WriteString(s)

		return nil
	}

	switch items.Kind() {
	case KindSequence:
		seq := items.Seq()
		for i, item := range seq {
			if err := step(item, Number(float64(i)), i, len(seq)-1); err != nil {
				return "", err
			}
		}
	case KindMapping:
		m := items.Map()
		i := 0

		for key, item := range m.All() {
			if err := step(item, String(key), i, m.Len()-1); err != nil {
				return "", err
			}

			i++
		}
	}

	if items.Len() == 0 {
		return opts.Inverse(this)
	}

	return sb.String(), nil
}

func helperLookup(_ Value, args []Value) (Value, error) {
	obj, field, opts := args[0], args[1], args[2].Options()

	if !obj.Truthy() {
		return obj, nil
	}

	return opts.LookupProperty(obj, field), nil
}

func helperLog(_ Value, args []Value) (Value, error) {
	opts := args[len(args)-1].Options()

	level := opts.HashValue("level")
	if level.IsNull() {
		level = opts.Data().Get("level")
	}

	parts := make([]string, 0, len(args)-1)
	for _, arg := range args[:len(args)-1] {
		parts = append(parts, arg.String())
	}

	opts.ev.logger.LogContext(
		opts.ev.ctx,
		logLevel(level),
		strings.Join(parts, " "),
		slog.String("helper", opts.Name()),
	)

	return Null(), nil
}

// logLevel maps a level given by name or by number (0 debug through
// 3 error) to a log level. Anything else is info.
func logLevel(v Value) log.Level {
	if n, ok := v.Number(); ok {
		switch int(n) {
		case 0:
			return log.LevelDebug
		case 2:
			return log.LevelWarn
		case 3:
			return log.LevelError
		default:
			return log.LevelInfo
		}
	}

	if s, ok := v.Str(); ok {
		if n, err := strconv.Atoi(s); err == nil {
			return logLevel(Number(float64(n)))
		}

		return log.ParseLevel(s)
	}

	return log.LevelInfo
}

func helperMissing(_ Value, args []Value) (Value, error) {
	if len(args) == 1 {
		return Null(), nil
	}

	return Null(), &MissingHelperError{Name: args[len(args)-1].Options().Name()}
}

func blockHelperMissing(this Value, args []Value) (Value, error) {
	item, opts := args[1], args[2].Options()

	switch item.Kind() {
	case KindBoolean:
		if b, _ := item.Bool(); b {
			return safe(opts.Fn(this))
		}

		return safe(opts.Inverse(this))
	case KindNull:
		return safe(opts.Inverse(this))
	case KindSequence:
		return safe(iterate(this, item, opts))
	default:
		return safe(opts.FnWith(item, nil, item))
	}
}

func safe(s string, err error) (Value, error) {
	if err != nil {
		return Null(), err
	}

	return Safe(s), nil
}
