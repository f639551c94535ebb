package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFile writes content to name under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestFmt(t *testing.T) {
	t.Parallel()

	tmpl := writeFile(t, t.TempDir(), "page.hbs", "Hello {{name}}!{{#if ok}} yes{{/if}}")

	tests := []struct {
		name     string
		run      func(context.Context, *bytes.Buffer) error
		contains []string
	}{
		{
			name: "hbs",
			run: func(ctx context.Context, buf *bytes.Buffer) error {
				return (&Hbs{Source{Template: tmpl, out: buf}}).Run(ctx)
			},
			contains: []string{"Hello {{name}}!", "{{#if ok}}", "{{/if}}"},
		},
		{
			name: "json",
			run: func(ctx context.Context, buf *bytes.Buffer) error {
				return (&JSON{Indent: 2, Source: Source{Template: tmpl, out: buf}}).Run(ctx)
			},
			contains: []string{`"type": "root"`, `"type": "block"`},
		},
		{
			name: "yaml",
			run: func(ctx context.Context, buf *bytes.Buffer) error {
				return (&YAML{Indent: 2, Source: Source{Template: tmpl, out: buf}}).Run(ctx)
			},
			contains: []string{"type: root", "type: mustache"},
		},
		{
			name: "ast",
			run: func(ctx context.Context, buf *bytes.Buffer) error {
				return (&AST{Source{Template: tmpl, out: buf}}).Run(ctx)
			},
			contains: []string{"Root", "Mustache", "Block"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := tt.run(context.Background(), &buf); err != nil {
				t.Fatalf("Run() error = %v", err)
			}

			for _, want := range tt.contains {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q does not contain %q", buf.String(), want)
				}
			}
		})
	}
}

func TestFmtInvalidSyntax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"unclosed block", "{{#if ok}}x"},
		{"mismatched block", "{{#if ok}}x{{/each}}"},
		{"unterminated mustache", "{{name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpl := writeFile(t, t.TempDir(), "bad.hbs", tt.input)

			var buf bytes.Buffer

			err := (&Hbs{Source{Template: tmpl, out: &buf}}).Run(context.Background())
			if err == nil {
				t.Fatalf("expected parse error, got output %q", buf.String())
			}
		})
	}
}

func TestFmtMissingFile(t *testing.T) {
	t.Parallel()

	err := (&AST{Source{Template: filepath.Join(t.TempDir(), "none.hbs")}}).
		Run(context.Background())
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
