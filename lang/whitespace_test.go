package lang

import (
	"strings"
	"testing"
)

// flatten renders statements with tags replaced by short markers, so the
// whitespace left around them is visible.
func flatten(nodes []Node) string {
	var sb strings.Builder

	for _, node := range nodes {
		switch n := node.(type) {
		case *Content:
			sb.WriteString(n.Value)
		case *Comment:
			sb.WriteString("<!>")
		case *Mustache:
			sb.WriteString("<" + formatExpr(n.Path) + ">")
		case *Partial:
			sb.WriteString("<>" + formatExpr(n.Name) + "|" + n.Indent + "|>")
		case *Block:
			sb.WriteString("[#" + formatExpr(n.Path) + "]")
			sb.WriteString(flatten(n.Program.Items()))

			if n.Inverse != nil {
				sb.WriteString("[else]")
				sb.WriteString(flatten(n.Inverse.Items()))
			}

			sb.WriteString("[/]")
		case *PartialBlock:
			sb.WriteString("[#>" + formatExpr(n.Name) + "]")
			sb.WriteString(flatten(n.Program.Items()))
			sb.WriteString("[/]")
		case *DirectiveBlock:
			sb.WriteString("[#*]")
			sb.WriteString(flatten(n.Program.Items()))
			sb.WriteString("[/]")
		}
	}

	return sb.String()
}

func TestWhitespaceControl(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  []Option
		want  string
	}{
		{
			name:  "standalone block",
			input: "  {{#if a}}\n  x\n  {{/if}}\n",
			want:  "[#if]  x\n[/]",
		},
		{
			name:  "standalone block at start",
			input: "{{#a}}\nx\n{{/a}}",
			want:  "[#a]x\n[/]",
		},
		{
			name:  "standalone else",
			input: "{{#a}}\nx\n{{else}}\ny\n{{/a}}\n",
			want:  "[#a]x\n[else]y\n[/]",
		},
		{
			name:  "standalone else chain",
			input: "{{#if a}}\nx\n{{else if b}}\ny\n{{else}}\nz\n{{/if}}\n",
			want:  "[#if]x\n[else][#if]y\n[else]z\n[/][/]",
		},
		{
			name:  "nested standalone blocks",
			input: "{{#a}}\n{{#b}}\nx\n{{/b}}\n{{/a}}\n",
			want:  "[#a][#b]x\n[/][/]",
		},
		{
			name:  "standalone partial records indent",
			input: "a\n  {{> p}}\nb",
			want:  "a\n<>p|  |>b",
		},
		{
			name:  "prevent indent keeps indentation as content",
			input: "a\n  {{> p}}\nb",
			opts:  []Option{WithPreventIndent(true)},
			want:  "a\n  <>p||>b",
		},
		{
			name:  "standalone comment",
			input: "a\n{{! c }}\nb",
			want:  "a\n<!>b",
		},
		{
			name:  "standalone comment with CRLF",
			input: "a\r\n{{! c }}\r\nb",
			want:  "a\r\n<!>b",
		},
		{
			name:  "mustache is never standalone",
			input: "  {{foo}}\n",
			want:  "  <foo>\n",
		},
		{
			name:  "tag with trailing content is not standalone",
			input: "  {{#a}} x\n{{/a}}",
			want:  "  [#a] x\n[/]",
		},
		{
			name:  "ignore standalone",
			input: "  {{#if a}}\n  x\n  {{/if}}\n",
			opts:  []Option{WithIgnoreStandalone(true)},
			want:  "  [#if]\n  x\n  [/]\n",
		},
		{
			name:  "tilde on mustache",
			input: "a  {{~foo~}}  b",
			want:  "a<foo>b",
		},
		{
			name:  "tilde strips line breaks",
			input: "a \n\n {{~foo}}",
			want:  "a<foo>",
		},
		{
			name:  "tilde inside block",
			input: "{{#a~}}  x  {{~/a}}",
			want:  "[#a]x[/]",
		},
		{
			name:  "tilde outside block",
			input: "x {{~#a}} y {{/a~}} z",
			want:  "x[#a] y [/]z",
		},
		{
			name:  "tilde around else",
			input: "{{#a}}x {{~else~}} y{{/a}}",
			want:  "[#a]x[else]y[/]",
		},
		{
			name:  "tilde applies with ignore standalone",
			input: "a {{~foo}}",
			opts:  []Option{WithIgnoreStandalone(true)},
			want:  "a<foo>",
		},
		{
			name:  "standalone partial block",
			input: "{{#> p}}\nx\n{{/p}}\n",
			want:  "[#>p]x\n[/]",
		},
		{
			name:  "standalone inline",
			input: "{{#*inline \"p\"}}\nx\n{{/inline}}\n",
			want:  "[#*]x\n[/]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.input, tt.opts...)

			if got := flatten(root.Body.Items); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCombineContent(t *testing.T) {
	stmts := &Statements{Items: []Node{
		&Content{Value: "a", Original: "a"},
		&Content{Value: "b", Original: "b"},
		&Mustache{Path: &Path{Segments: []Segment{{Name: "x"}}, Original: "x"}},
		&Content{Value: "c", Original: "c"},
		&Content{Value: "d", Original: "d"},
	}}

	combineContent(stmts)

	if len(stmts.Items) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(stmts.Items))
	}

	if got := flatten(stmts.Items); got != "ab<x>cd" {
		t.Errorf("expected %q, got %q", "ab<x>cd", got)
	}
}
