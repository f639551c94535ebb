package eval

import (
	"errors"
	"log/slog"
	"strconv"
)

// ErrMaxDepth is returned when partials nest deeper than the limit set
// with [WithMaxDepth].
var ErrMaxDepth = errors.New("maximum partial depth exceeded")

// MissingHelperError is returned by the default helperMissing helper when
// a call with arguments names neither a helper nor a value.
type MissingHelperError struct {
	Name string
}

func (e *MissingHelperError) Error() string {
	return "Missing helper: " + strconv.Quote(e.Name)
}

// LogValue implements slog.LogValuer.
func (e *MissingHelperError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "missing helper"),
		slog.String("helper", e.Name),
	)
}

// MissingPartialError is returned when a partial tag names a partial that
// is not registered.
type MissingPartialError struct {
	Name string
}

func (e *MissingPartialError) Error() string {
	return "The partial " + strconv.Quote(e.Name) + " could not be found"
}

// LogValue implements slog.LogValuer.
func (e *MissingPartialError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "missing partial"),
		slog.String("partial", e.Name),
	)
}

// ArityError is returned when a built-in helper that takes an exact number
// of arguments is called with a different number.
type ArityError struct {
	Helper   string
	Block    bool
	Expected int
	Got      int
}

func (e *ArityError) Error() string {
	name := e.Helper
	if e.Block {
		name = "#" + name
	}

	if e.Expected == 1 {
		return name + " requires exactly one argument"
	}

	return name + " requires exactly " + strconv.Itoa(e.Expected) + " arguments"
}

// LogValue implements slog.LogValuer.
func (e *ArityError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "arity mismatch"),
		slog.String("helper", e.Helper),
		slog.Bool("block", e.Block),
		slog.Int("expected", e.Expected),
		slog.Int("got", e.Got),
	)
}
