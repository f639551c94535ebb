package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" Info ", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"warn+4", LevelError},
		{"bogus", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseLevel(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"TEXT", FormatText},
		{"yaml", DefaultFormat},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFormat(tt.in); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestLevels(t *testing.T) {
	var names []string
	for name := range Levels() {
		names = append(names, name)
	}

	if got := strings.Join(names, ","); got != "trace,debug,info,warn,error" {
		t.Errorf("unexpected levels %q", got)
	}
}

func TestLogger_Zero(t *testing.T) {
	var l Logger

	l.Info("discarded")
	l.TraceContext(context.Background(), "discarded")

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Error("zero logger should report defaults")
	}

	if got := l.With(slog.String("k", "v")); got.Logger != nil {
		t.Error("With on zero logger should stay zero")
	}
}

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", b, err)
	}

	return m
}

func TestLogger_JSON(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false), WithLevel(LevelTrace), WithTimeLayout("none"))

	l.TraceContext(context.Background(), "hello", slog.Int("n", 1))

	m := decode(t, buf.Bytes())

	if m["level"] != "TRACE" || m["msg"] != "hello" || m["n"] != float64(1) {
		t.Errorf("unexpected record %v", m)
	}

	if _, ok := m["time"]; ok {
		t.Error("timestamp should be omitted")
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer

	l := Make(&buf, WithPretty(false), WithLevel(LevelWarn))

	l.Info("quiet")
	l.LogContext(context.Background(), LevelError, "loud")

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestLogger_Wrap(t *testing.T) {
	var first, second bytes.Buffer

	base := Make(&first, WithPretty(false), WithFormat(FormatText))
	wrapped := base.Wrap(WithOutput(&second), WithLevel(LevelDebug))

	wrapped.Debug("wrapped")
	base.Debug("base")

	if first.Len() != 0 {
		t.Errorf("base logger should filter debug, got %q", first.String())
	}

	if !strings.Contains(second.String(), "msg=wrapped") {
		t.Errorf("unexpected wrapped output %q", second.String())
	}

	if wrapped.Format() != FormatText || base.Level() != DefaultLevel {
		t.Error("Wrap changed the wrong settings")
	}
}

func TestLogger_Caller(t *testing.T) {
	var buf bytes.Buffer

	Make(&buf, WithPretty(false), WithCaller(true)).Info("here")

	source, ok := decode(t, buf.Bytes())["source"].(map[string]any)
	if !ok {
		t.Fatalf("missing source in %q", buf.String())
	}

	if file, _ := source["file"].(string); !strings.HasSuffix(file, "log_test.go") {
		t.Errorf("expected caller in log_test.go, got %v", source["file"])
	}
}

func TestTimeLayout(t *testing.T) {
	at := time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		layout string
		want   string
	}{
		{"RFC3339", "2024-03-01T15:04:05Z"},
		{"kitchen", "3:04PM"},
		{"Date-Time", "2024-03-01 15:04:05"},
		{"2006", "2024"},
		{"", ""},
		{"none", ""},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			got := ""
			if stamp := stamper(tt.layout); stamp != nil {
				got = stamp(at)
			}

			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

type failure struct{}

func (failure) Error() string { return "boom" }

func (failure) LogValue() slog.Value {
	return slog.GroupValue(slog.String("error", "boom"), slog.Int("line", 3))
}

func TestPrettyHandler(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   []string
	}{
		{"text", FormatText, []string{"INFO", "request", "component=", "render", "err.error=", "boom", "err.line=", "3"}},
		{"json", FormatJSON, []string{`"level"`, `"INFO"`, `"component": `, `"render"`, `"err.line": `, `3`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			l := Make(&buf, WithFormat(tt.format), WithTimeLayout("")).
				With(slog.String("component", "render"))

			l.Info("request", slog.Any("err", failure{}))

			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in output:\n%s", want, out)
				}
			}
		})
	}
}

func TestPackageFunctions(t *testing.T) {
	original := Default()
	defer SetDefault(original)

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithPretty(false)))
	Config(WithLevel(LevelDebug))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf.Reset()
			tt.fn("message", slog.String("key", "value"))

			m := decode(t, buf.Bytes())
			if m["level"] != tt.level || m["key"] != "value" {
				t.Errorf("unexpected record %v", m)
			}
		})
	}
}
