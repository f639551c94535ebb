package repl

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/goccy/go-yaml"

	"github.com/mvz/haparanda/handlebars"
	"github.com/mvz/haparanda/log"
)

func testModel(t *testing.T) model {
	t.Helper()

	data := yaml.MapSlice{
		{Key: "name", Value: "Alan"},
		{Key: "people", Value: []any{
			yaml.MapSlice{{Key: "first", Value: "Yehuda"}},
		}},
	}

	c := handlebars.New()
	if err := c.RegisterPartial(context.Background(), "header", "<h1>{{name}}</h1>"); err != nil {
		t.Fatal(err)
	}

	history := NewHistory(filepath.Join(t.TempDir(), baseHistory))

	return newModel(context.Background(), c, data, history, log.Logger{})
}

// typed returns m with the input set to s and the cursor at its end.
func typed(m model, s string) model {
	m.input.SetValue(s)
	m.input.SetCursor(len(s))
	refreshMatches(&m, false)

	return m
}

func matchNames(m model) []string {
	names := make([]string, len(m.matches))
	for i, match := range m.matches {
		names[i] = match.Str
	}

	return names
}

func TestModel_Completion(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantNot []string
	}{
		{name: "content", input: "na", want: nil},
		{name: "input key", input: "{{na", want: []string{"name"}},
		{name: "builtin helper", input: "{{#ea", want: []string{"each"}},
		{name: "block excludes keys", input: "{{#na", wantNot: []string{"name"}},
		{name: "partial", input: "{{> ", want: []string{"header"}},
		{name: "member", input: "{{people.0.", want: []string{"first"}},
		{name: "data variable", input: "{{@ind", want: []string{"@index"}},
		{name: "empty word", input: "{{", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matchNames(typed(testModel(t), tt.input))

			if tt.want == nil && tt.wantNot == nil && len(got) != 0 {
				t.Errorf("expected no matches, got %q", got)
			}

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("matches %q do not contain %q", got, w)
				}
			}

			for _, w := range tt.wantNot {
				if slices.Contains(got, w) {
					t.Errorf("matches %q should not contain %q", got, w)
				}
			}
		})
	}
}

func TestModel_TabCompletes(t *testing.T) {
	m := typed(testModel(t), "{{#ea")

	m = m.cycle(1)

	if got := m.input.Value(); got != "{{#each" {
		t.Errorf("expected completion to %q, got %q", "{{#each", got)
	}

	if m.tabActive || len(m.matches) != 0 {
		t.Error("single candidate should be confirmed")
	}
}

func TestModel_TabCycles(t *testing.T) {
	m := typed(testModel(t), "{{@")
	if len(m.matches) < 2 {
		t.Fatalf("expected several matches, got %q", matchNames(m))
	}

	first := m.matches[0].Str
	second := m.matches[1].Str

	m = m.cycle(1)
	if got := m.input.Value(); got != "{{"+first {
		t.Errorf("first tab: got %q, want %q", got, "{{"+first)
	}

	m = m.cycle(1)
	if got := m.input.Value(); got != "{{"+second {
		t.Errorf("second tab: got %q, want %q", got, "{{"+second)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.input.Value(); got != "{{@" {
		t.Errorf("escape should restore %q, got %q", "{{@", got)
	}
}

func TestModel_Render(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"path", "Hi {{name}}", "Hi Alan", false},
		{"partial", "{{> header}}", "<h1>Alan</h1>", false},
		{"each", "{{#each people}}{{first}}{{/each}}", "Yehuda", false},
		{"parse error", "{{#if}}", "", true},
		{"missing helper", "{{nope 1}}", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.render(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("render(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}

			if got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModel_Enter(t *testing.T) {
	m := typed(testModel(t), "Hi {{name}}")

	m, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected output command")
	}

	if m.input.Value() != "" {
		t.Errorf("expected cleared input, got %q", m.input.Value())
	}

	if m.history.Len() != 1 {
		t.Fatalf("expected one history entry, got %d", m.history.Len())
	}

	m = m.historyStep(-1, false)
	if got := m.input.Value(); got != "Hi {{name}}" {
		t.Errorf("history up: got %q", got)
	}

	m = m.historyStep(1, false)
	if got := m.input.Value(); got != "" {
		t.Errorf("history down past end: got %q", got)
	}
}

func TestModel_HistorySwitchesMode(t *testing.T) {
	m := testModel(t)

	for _, e := range []HistoryEntry{{"{{a}}", modeEval}, {"help", modeCtrl}} {
		if err := m.history.Add(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	m.historyIdx = m.history.Len()

	m = m.historyStep(-1, false)
	if m.mode != modeCtrl || m.input.Value() != "help" {
		t.Errorf("expected command mode with %q, got mode %d with %q", "help", m.mode, m.input.Value())
	}

	m = m.historyStep(-1, true)
	if m.mode != modeCtrl || m.input.Value() != "help" {
		t.Errorf("same-mode step should stay on %q, got %q", "help", m.input.Value())
	}

	m = m.historyStep(-1, false)
	if m.mode != modeEval || m.input.Value() != "{{a}}" {
		t.Errorf("expected render mode with %q, got mode %d with %q", "{{a}}", m.mode, m.input.Value())
	}
}

func TestModel_Commands(t *testing.T) {
	m := testModel(t)

	if got := m.registerPartial("greet Hello {{name}}"); !strings.Contains(got, "registered") {
		t.Fatalf("registerPartial: %q", got)
	}

	out, err := m.render("{{> greet}}!")
	if err != nil || out != "Hello Alan!" {
		t.Errorf("render with new partial = %q, %v", out, err)
	}

	if got := m.registerPartial("empty"); !strings.Contains(got, ErrNoTemplate.Error()) {
		t.Errorf("expected empty template error, got %q", got)
	}

	if got := m.registerPartial(""); !strings.Contains(got, "usage") {
		t.Errorf("expected usage, got %q", got)
	}

	m, cmd := m.executeCommand("quit")
	if !m.quitting || cmd == nil {
		t.Error("quit should stop the program")
	}

	if _, cmd := m.executeCommand("bogus"); cmd == nil {
		t.Error("unknown command should print an error")
	}
}

func TestModel_ModeToggle(t *testing.T) {
	m := typed(testModel(t), "{{name}}")

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeCtrl || m.input.Value() != "" {
		t.Fatalf("expected empty command mode, got mode %d with %q", m.mode, m.input.Value())
	}

	m = typed(m, "he")
	if names := matchNames(m); !slices.Contains(names, "help") || !slices.Contains(names, "helpers") {
		t.Errorf("command completion = %q", names)
	}

	m, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeEval || m.input.Value() != "{{name}}" {
		t.Errorf("expected restored render input, got mode %d with %q", m.mode, m.input.Value())
	}
}
