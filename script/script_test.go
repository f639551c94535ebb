package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mvz/haparanda/eval"
	"github.com/mvz/haparanda/lang"
)

const helpersYAML = `
- name: fullName
  expr: first + " " + last
- name: shout
  expr: upper(string(args[0])) + (hash.mark ?? "!")
- name: bold
  expr: safe("<b>" + fn() + "</b>")
- name: pick
  expr: lookup(args[0], args[1])
- name: join
  arity: -1
  expr: join(map(args, string(#)), "-")
- name: raw
  safe: true
  expr: '"<i>" + string(args[0]) + "</i>"'
- name: counted
  expr: let n = len(args[0]); string(n) + " " + name
- name: otherwise
  expr: fn(args[0]) + inverse()
`

func render(t *testing.T, helpers eval.Helpers, template string, input any) string {
	t.Helper()

	ctx := context.Background()

	root, err := lang.ParseString(ctx, template)
	if err != nil {
		t.Fatalf("parse %q: %v", template, err)
	}

	out, err := eval.Apply(ctx, root, eval.FromGo(input), helpers, nil, nil)
	if err != nil {
		t.Fatalf("render %q: %v", template, err)
	}

	return out
}

func TestLoad(t *testing.T) {
	helpers, err := Load(context.Background(), strings.NewReader(helpersYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	input := map[string]any{
		"first": "Ada",
		"last":  "Lovelace",
		"tags":  []any{"a", "b", "c"},
		"user":  map[string]any{"role": "admin"},
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"context fields", "{{fullName}}", "Ada Lovelace"},
		{"argument", "{{shout first}}", "ADA!"},
		{"hash", `{{shout first mark="?"}}`, "ADA?"},
		{"block", "{{#bold}}{{first}}{{/bold}}", "<b>Ada</b>"},
		{"lookup", `{{pick user "role"}}`, "admin"},
		{"variadic", "{{join 1 2 3}}", "1-2-3"},
		{"safe definition", "{{raw first}}", "<i>Ada</i>"},
		{"escaped result", "{{shout \"<x>\"}}", "&lt;X&gt;!"},
		{"let binding", "{{counted tags}}", "3 counted"},
		{"fn with item", "{{#otherwise user}}{{role}}{{else}}-{{/otherwise}}", "admin-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(t, helpers, tt.template, input); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCompile_Arity(t *testing.T) {
	three := 3

	tests := []struct {
		name string
		def  Definition
		want int
	}{
		{"no arguments", Definition{Name: "a", Expr: "this"}, 1},
		{"first argument", Definition{Name: "b", Expr: "args[0]"}, 2},
		{"highest index", Definition{Name: "c", Expr: "args[2] ?? args[0]"}, 4},
		{"explicit", Definition{Name: "d", Expr: "args[0]", Arity: &three}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := Compile(context.Background(), tt.def)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := h.Arity(); got != tt.want {
				t.Errorf("expected arity %d, got %d", tt.want, got)
			}
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(context.Background(), Definition{Name: "bad", Expr: "1 +"})
	if !errors.Is(err, ErrCompileHelper) {
		t.Errorf("expected ErrCompileHelper, got %v", err)
	}

	h, err := Compile(context.Background(), Definition{Name: "div", Expr: "1 / args[0] > 0 ? fn() : 'x'"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.IsVariadic() {
		t.Error("expected fixed arity")
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"empty", "", 0, false},
		{"list", "- {name: a, expr: '1'}\n- {name: b, expr: '2'}\n", 2, false},
		{"missing name", "- {expr: '1'}\n", 0, true},
		{"missing expr", "- {name: a}\n", 0, true},
		{"not a list", "name: a\n", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := Decode(strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrDecodeHelpers) {
					t.Fatalf("expected ErrDecodeHelpers, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(defs) != tt.want {
				t.Errorf("expected %d definitions, got %d", tt.want, len(defs))
			}
		})
	}
}

func TestRunError(t *testing.T) {
	helpers, err := Load(context.Background(), strings.NewReader(`
- name: boom
  expr: int(args[0])
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root, err := lang.ParseString(context.Background(), `{{boom "x"}}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = eval.Apply(context.Background(), root, eval.Null(), helpers, nil, nil)
	if !errors.Is(err, ErrRunHelper) {
		t.Errorf("expected ErrRunHelper, got %v", err)
	}
}
