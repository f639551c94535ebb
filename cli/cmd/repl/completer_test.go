package repl

import (
	"slices"
	"testing"

	"github.com/goccy/go-yaml"

	"github.com/mvz/haparanda/eval"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "{{foo", 5, "foo", 2, 5},
		{"dot_separated", "{{bar.baz", 9, "baz", 6, 9},
		{"slash_separated", "{{bar/baz", 9, "baz", 6, 9},
		{"after_hash", "{{#ea", 5, "ea", 3, 5},
		{"after_partial", "{{> he", 6, "he", 4, 6},
		{"in_hash_value", "{{x key=va", 10, "va", 8, 10},
		{"in_subexpression", "{{x (lo", 7, "lo", 5, 7},
		{"data_variable", "{{@ind", 6, "@ind", 2, 6},
		{"hyphenated", "{{@partial-bl", 13, "@partial-bl", 2, 13},
		{"mid_word", "{{foobar}}", 4, "foobar", 2, 8},
		{"empty_after_dot", "{{a.", 4, "", 4, 4},
		{"empty_after_space", "{{#each ", 8, "", 8, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestTagStart(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   int
	}{
		{"content", "hello", 5, -1},
		{"open", "a {{b", 5, 4},
		{"closed", "{{a}} b", 7, -1},
		{"second_tag", "{{a}} {{b", 9, 8},
		{"triple", "{{{b", 4, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tagStart(tt.input, tt.cursor); got != tt.want {
				t.Errorf("tagStart(%q, %d) = %d, want %d", tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestParentPath(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wordStart int
		want      []string
	}{
		{"top_level", "{{fo", 2, nil},
		{"simple_chain", "{{a.b.", 6, []string{"a", "b"}},
		{"slash_chain", "{{a/b/", 6, []string{"a", "b"}},
		{"after_helper", "{{#each people.", 15, []string{"people"}},
		{"this_prefix", "{{this.a.", 9, []string{"a"}},
		{"after_space", "{{a ", 4, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parentPath(tt.input, tt.wordStart); !slices.Equal(got, tt.want) {
				t.Errorf("parentPath(%q, %d) = %q, want %q",
					tt.input, tt.wordStart, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input string
		want  tagKind
	}{
		{"{{na", tagExpr},
		{"{{#ea", tagBlock},
		{"{{~#ea", tagBlock},
		{"{{> he", tagPartial},
		{"{{#> la", tagPartial},
		{"{{/ea", tagClose},
		{"{{x y", tagExpr},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, ws, _ := wordBounds(tt.input, len(tt.input))
			if got := classify(tt.input, tagStart(tt.input, len(tt.input)), ws); got != tt.want {
				t.Errorf("classify(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestChildNames(t *testing.T) {
	v := eval.FromGo(yaml.MapSlice{
		{Key: "title", Value: "x"},
		{Key: "people", Value: []any{
			yaml.MapSlice{{Key: "first", Value: "Alan"}, {Key: "last", Value: "Johnson"}},
		}},
	})

	tests := []struct {
		name string
		path []string
		want []string
	}{
		{"root", nil, []string{"title", "people"}},
		{"sequence", []string{"people"}, []string{"0"}},
		{"nested", []string{"people", "0"}, []string{"first", "last"}},
		{"scalar", []string{"title"}, nil},
		{"missing", []string{"nope"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := childNames(v, tt.path); !slices.Equal(got, tt.want) {
				t.Errorf("childNames(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a", "c", "b"})
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("dedupe() = %q", got)
	}
}
