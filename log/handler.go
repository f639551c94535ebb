package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// handler returns the slog handler for s.
func (s settings) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   s.caller,
		Level:       slog.Level(s.level),
		ReplaceAttr: s.replaceAttr,
	}

	switch {
	case s.pretty:
		return &prettyHandler{
			opts: *opts,
			w:    s.output,
			json: s.format == FormatJSON,
			mu:   new(sync.Mutex),
		}
	case s.format == FormatText:
		return slog.NewTextHandler(s.output, opts)
	default:
		return slog.NewJSONHandler(s.output, opts)
	}
}

// replaceAttr applies the timestamp layout and names levels by
// [Level.String], so trace records read "TRACE" rather than "DEBUG-4".
func (s settings) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		t, ok := a.Value.Any().(time.Time)
		if !ok {
			return a
		}

		if s.stamp == nil {
			return slog.Attr{}
		}

		return slog.String(a.Key, s.stamp(t))
	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			return slog.String(a.Key, strings.ToUpper(Level(l).String()))
		}
	}

	return a
}

var (
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	stringStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	numberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	otherStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	messageBold = lipgloss.NewStyle().Bold(true)

	levelStyles = map[string]lipgloss.Style{
		"TRACE": lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
)

// prettyHandler writes colorized records, either as key=value text on one
// line or as indented JSON. Groups are flattened into dotted keys.
type prettyHandler struct {
	w      io.Writer
	mu     *sync.Mutex
	opts   slog.HandlerOptions
	prefix string
	attrs  []slog.Attr
	json   bool
}

// Enabled implements slog.Handler.
func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

// Handle implements slog.Handler.
func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, r.NumAttrs()+len(h.attrs)+4)

	builtin := []slog.Attr{
		slog.Time(slog.TimeKey, r.Time),
		slog.Any(slog.LevelKey, r.Level),
	}

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			builtin = append(builtin,
				slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	builtin = append(builtin, slog.String(slog.MessageKey, r.Message))

	for _, a := range builtin {
		if r.Time.IsZero() && a.Key == slog.TimeKey {
			continue
		}

		if a = h.opts.ReplaceAttr(nil, a); a.Key != "" {
			fields = append(fields, a)
		}
	}

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = flatten(fields, h.prefix, a)

		return true
	})

	var buf bytes.Buffer
	if h.json {
		writeJSON(&buf, fields)
	} else {
		writeText(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

// WithAttrs implements slog.Handler.
func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = h.attrs[:len(h.attrs):len(h.attrs)]

	for _, a := range attrs {
		c.attrs = flatten(c.attrs, h.prefix, a)
	}

	return &c
}

// WithGroup implements slog.Handler.
func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

// flatten appends a to fields, expanding groups into dotted keys.
func flatten(fields []slog.Attr, prefix string, a slog.Attr) []slog.Attr {
	a.Value = a.Value.Resolve()

	if a.Value.Kind() != slog.KindGroup {
		if a.Key == "" {
			return fields
		}

		return append(fields, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}

	if a.Key != "" {
		prefix += a.Key + "."
	}

	for _, g := range a.Value.Group() {
		fields = flatten(fields, prefix, g)
	}

	return fields
}

func writeText(buf *bytes.Buffer, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		switch a.Key {
		case slog.LevelKey:
			level := a.Value.String()
			buf.WriteString(levelStyles[level].Render(fmt.Sprintf("%-5s", level)))
		case slog.MessageKey:
			buf.WriteString(messageBold.Render(a.Value.String()))
		default:
			buf.WriteString(keyStyle.Render(a.Key + "="))
			buf.WriteString(styleValue(a.Value, textValue(a.Value)))
		}
	}

	buf.WriteByte('\n')
}

func textValue(v slog.Value) string {
	s := v.String()
	if v.Kind() == slog.KindString && strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}

	return s
}

func writeJSON(buf *bytes.Buffer, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		key, _ := json.Marshal(a.Key)

		buf.WriteString("  ")
		buf.WriteString(keyStyle.Render(string(key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			level := a.Value.String()
			buf.WriteString(levelStyles[level].Render(strconv.Quote(level)))
		} else {
			buf.WriteString(styleValue(a.Value, jsonValue(a.Value)))
		}

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")
}

func jsonValue(v slog.Value) string {
	var x any

	switch v.Kind() {
	case slog.KindString:
		x = v.String()
	case slog.KindInt64:
		x = v.Int64()
	case slog.KindUint64:
		x = v.Uint64()
	case slog.KindFloat64:
		x = v.Float64()
	case slog.KindBool:
		x = v.Bool()
	case slog.KindDuration:
		x = v.Duration().String()
	case slog.KindTime:
		x = v.Time().Format(time.RFC3339Nano)
	default:
		if err, ok := v.Any().(error); ok {
			x = err.Error()
		} else {
			x = v.Any()
		}
	}

	b, err := json.Marshal(x)
	if err != nil {
		return strconv.Quote(fmt.Sprint(x))
	}

	return string(b)
}

func styleValue(v slog.Value, s string) string {
	switch v.Kind() {
	case slog.KindString, slog.KindTime, slog.KindDuration:
		return stringStyle.Render(s)
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return numberStyle.Render(s)
	default:
		return otherStyle.Render(s)
	}
}
