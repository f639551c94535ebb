package log

import (
	"io"
	"strings"
	"time"
)

// DefaultTimeLayout is the timestamp layout of a logger made without
// [WithTimeLayout].
const DefaultTimeLayout = time.RFC3339

// settings is the immutable configuration of a [Logger]. Options modify a
// copy, so loggers derived from one another never share mutable state.
type settings struct {
	output io.Writer
	stamp  func(time.Time) string
	level  Level
	format Format
	caller bool
	pretty bool
}

// Option changes one setting of a [Logger].
type Option func(*settings)

func makeSettings(w io.Writer, opts ...Option) settings {
	var s settings

	WithDefaults(w)(&s)

	return s.with(opts...)
}

func (s settings) with(opts ...Option) settings {
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	return s
}

// WithDefaults resets every setting and directs output to w: JSON records
// at [DefaultLevel] with [DefaultTimeLayout] timestamps, pretty printed,
// without caller information.
func WithDefaults(w io.Writer) Option {
	return func(s *settings) {
		*s = settings{
			level:  DefaultLevel,
			format: DefaultFormat,
			pretty: true,
			stamp:  stamper(DefaultTimeLayout),
		}

		WithOutput(w)(s)
	}
}

// WithOutput directs output to w. A nil w discards all output.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w == nil {
			w = io.Discard
		}

		s.output = w
	}
}

// WithLevel discards messages less severe than level.
func WithLevel(level Level) Option {
	return func(s *settings) { s.level = level }
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

// WithTimeLayout sets the timestamp layout. layout is either the name of
// a layout from package time, matched loosely ("rfc3339", "Kitchen",
// "stamp-milli"), or a layout string passed to [time.Time.Format].
// An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(s *settings) { s.stamp = stamper(layout) }
}

// WithCaller adds the source location of each call.
func WithCaller(enable bool) Option {
	return func(s *settings) { s.caller = enable }
}

// WithPretty colorizes output; pretty JSON is also indented.
func WithPretty(enable bool) Option {
	return func(s *settings) { s.pretty = enable }
}

var namedLayouts = map[string]string{
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"rfc1123":     time.RFC1123,
	"rfc1123z":    time.RFC1123Z,
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"datetime":    time.DateTime,
	"none":        "",
}

// stamper returns the timestamp formatter for layout. It returns nil if
// timestamps are disabled.
func stamper(layout string) func(time.Time) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return -1
		}
	}, strings.ToLower(layout))

	if named, ok := namedLayouts[key]; ok {
		layout = named
	}

	if strings.TrimSpace(layout) == "" {
		return nil
	}

	return func(t time.Time) string { return t.Format(layout) }
}
