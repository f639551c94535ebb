package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

// initTestCLI stands in for the top-level flags init records.
type initTestCLI struct {
	Level    string   `default:"info"`
	Partials []string `type:"path"`
	Caller   bool
	Empty    string
	Secret   string `hidden:""`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initTestCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), kctx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			confPath := filepath.Join(t.TempDir(), "config")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing content"), 0o644); err != nil {
					t.Fatal(err)
				}
			}

			ctx := initContext(t, confPath, "--level=debug", "--caller", "--secret=x")

			err := (&Init{Force: tt.force}).Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			var conf map[string]any
			if err := yaml.Unmarshal(content, &conf); err != nil {
				t.Fatalf("generated config is not valid YAML: %v", err)
			}

			if conf["level"] != "debug" || conf["caller"] != true {
				t.Errorf("unexpected config %v", conf)
			}

			for _, key := range []string{"empty", "partials", "secret", "help"} {
				if _, ok := conf[key]; ok {
					t.Errorf("config should not record %q: %v", key, conf)
				}
			}
		})
	}
}

func TestConfigValue(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"string", "x", true},
		{"empty list", []string{}, false},
		{"list", []string{"a"}, true},
		{"false", false, true},
		{"zero", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, got := configValue(tt.val); got != tt.want {
				t.Errorf("configValue(%v) = %v, want %v", tt.val, got, tt.want)
			}
		})
	}
}
