package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestRoot_Format(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"content and mustache", "Hello, {{name}}!"},
		{"unescaped", "{{{html}}}"},
		{"strip markers", "{{~foo~}}"},
		{"helper call", `{{link "text" url=page.url class="x"}}`},
		{"block params", "{{#each items as |item i|}}{{item.name}}{{else}}none{{/each}}"},
		{"else chain", "{{#if a}}x{{else if b}}y{{else}}z{{/if}}"},
		{"stripped else chain", "{{#if a}}x{{~else unless b~}}y{{~else~}}z{{/if}}"},
		{"stripped unescaped", "{{~{html}~}}"},
		{"inverted section", "{{^list}}empty{{/list}}"},
		{"data path", "{{@../index}}"},
		{"literal segment", "{{[foo bar]}}"},
		{"comment", "{{! hi }}"},
		{"long comment", "{{!-- a }} b --}}"},
		{"dynamic partial", `{{> (lookup . "name") ctx key="v"}}`},
		{"partial block", "{{#> layout}}body{{/layout}}"},
		{"inline", `{{#*inline "row"}}<tr/>{{/inline}}`},
		{"escaped mustache", `\{{literal}}`},
		{"literals", "{{helper 1 -2.5 true null undefined}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.input)

			var buf bytes.Buffer
			if err := root.Format(context.Background(), &buf); err != nil {
				t.Fatalf("format: %v", err)
			}

			if got := buf.String(); got != tt.input {
				t.Errorf("expected %q, got %q", tt.input, got)
			}
		})
	}
}

func TestFormatJSON(t *testing.T) {
	root := mustParse(t, "a{{#if b}}{{c}}{{/if}}")

	var buf bytes.Buffer
	if err := FormatJSON(context.Background(), &buf, root, 2); err != nil {
		t.Fatalf("format: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}

	if got["type"] != "root" {
		t.Errorf("expected type %q, got %v", "root", got["type"])
	}

	body, ok := got["body"].([]any)
	if !ok || len(body) != 2 {
		t.Fatalf("expected 2 body entries, got %v", got["body"])
	}

	block, ok := body[1].(map[string]any)
	if !ok || block["type"] != "block" {
		t.Errorf("expected block entry, got %v", body[1])
	}

	compact := bytes.Buffer{}
	if err := FormatJSON(context.Background(), &compact, root, 0); err != nil {
		t.Fatalf("format: %v", err)
	}

	if strings.Count(strings.TrimSpace(compact.String()), "\n") != 0 {
		t.Error("expected single-line JSON without indent")
	}
}

func TestFormatYAML(t *testing.T) {
	root := mustParse(t, "{{foo}}")

	var buf bytes.Buffer
	if err := FormatYAML(context.Background(), &buf, root, 2); err != nil {
		t.Fatalf("format: %v", err)
	}

	for _, want := range []string{"type: root", "type: mustache", "original: foo"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("expected output to contain %q:\n%s", want, buf.String())
		}
	}
}

func TestPrint(t *testing.T) {
	root := mustParse(t, "hi {{#each xs as |x|}}{{x}}{{/each}}{{> p}}")

	var buf bytes.Buffer
	Print(context.Background(), &buf, root)

	want := strings.Join([]string{
		"Root",
		`  Content: "hi "`,
		"  Block: each xs",
		"    Program: as |x|",
		"      Mustache: x",
		"  Partial: p",
		"",
	}, "\n")

	if got := buf.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestRoot_MarshalJSON(t *testing.T) {
	root := mustParse(t, "{{@index}}")

	data, err := json.Marshal(root)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if !bytes.Contains(data, []byte(`"data":true`)) {
		t.Errorf("expected data path flag in %s", data)
	}
}
