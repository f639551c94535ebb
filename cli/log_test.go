package cli

import (
	"testing"

	"github.com/mvz/haparanda/log"
)

func TestLogConfigScan(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	tests := []struct {
		name       string
		args       []string
		wantLevel  logLevel
		wantFormat logFormat
		wantCaller bool
		wantPretty bool
	}{
		{
			name:      "assigned level",
			args:      []string{"render", "--log-level=debug", "page.hbs"},
			wantLevel: "debug",
		},
		{
			name:       "separate value",
			args:       []string{"--log-format", "text", "page.hbs"},
			wantFormat: "text",
		},
		{
			name:       "booleans",
			args:       []string{"--log-caller", "--log-pretty=true"},
			wantCaller: true,
			wantPretty: true,
		},
		{
			name:       "negated",
			args:       []string{"--log-pretty", "--no-log-pretty"},
			wantPretty: false,
		},
		{
			name: "after terminator",
			args: []string{"--", "--log-level=error"},
		},
		{
			name:       "value looks like flag",
			args:       []string{"--log-level", "--log-caller"},
			wantCaller: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f logConfig

			f.scan(tt.args)

			if f.Level != tt.wantLevel || f.Format != tt.wantFormat ||
				f.Caller != tt.wantCaller || f.Pretty != tt.wantPretty {
				t.Errorf("scan(%q) = %+v", tt.args, f)
			}
		})
	}
}

func TestLogConfigScanConfiguresDefault(t *testing.T) {
	saved := log.Default()
	t.Cleanup(func() { log.SetDefault(saved) })

	var f logConfig

	f.scan([]string{"--log-level=error", "--log-format=text"})

	if got := log.Default().Level(); got != log.LevelError {
		t.Errorf("expected default level error, got %v", got)
	}

	if got := log.Default().Format(); got != log.FormatText {
		t.Errorf("expected default format text, got %v", got)
	}
}
