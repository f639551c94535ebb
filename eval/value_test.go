package eval

import (
	"testing"

	"github.com/goccy/go-yaml"
)

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"null", Null(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), true},
		{"empty string", String(""), true},
		{"empty sequence", Seq(), false},
		{"sequence", Seq(Null()), true},
		{"empty mapping", Map(nil), true},
		{"callable", Callable(Variadic(nil)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Truthy(); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestValue_String(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"null", Null(), ""},
		{"integer", Number(42), "42"},
		{"fraction", Number(0.1), "0.1"},
		{"negative zero", Number(-0.0), "0"},
		{"large", Number(1e21), "1000000000000000000000"},
		{"bool", Bool(false), "false"},
		{"nested sequence", Seq(Number(1), Seq(Number(2), Number(3))), "1,2,3"},
		{"mapping", Map(NewMapping().Set("a", Number(1))), "[object Object]"},
		{"safe", Safe("<b>"), "<b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValue_Get(t *testing.T) {
	seq := Seq(String("a"), String("b"))
	m := Map(NewMapping().Set("k", String("v")))

	tests := []struct {
		name  string
		value Value
		key   string
		want  Value
	}{
		{"mapping key", m, "k", String("v")},
		{"mapping missing", m, "x", Null()},
		{"sequence index", seq, "1", String("b")},
		{"sequence out of range", seq, "2", Null()},
		{"sequence negative", seq, "-1", Null()},
		{"sequence length", seq, "length", Number(2)},
		{"string length", String("abc"), "length", Number(3)},
		{"multibyte string length", String("héllo"), "length", Number(5)},
		{"astral string length", Safe("a😀"), "length", Number(3)},
		{"scalar field", Number(1), "x", Null()},
		{"null field", Null(), "x", Null()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.Get(tt.key); !same(got, tt.want) {
				t.Errorf("expected %v (%s), got %v (%s)", tt.want, tt.want.Kind(), got, got.Kind())
			}
		})
	}
}

func TestFromGo(t *testing.T) {
	type address struct {
		City    string `json:"city"`
		Zip     string `json:"-"`
		Country string
		secret  string
	}

	type person struct {
		Name    string   `json:"name,omitempty"`
		Tags    []string `json:"tags"`
		Address *address `json:"address"`
		Spouse  *person  `json:"spouse"`
	}

	v := FromGo(person{
		Name:    "Alan",
		Tags:    []string{"a", "b"},
		Address: &address{City: "Oslo", Zip: "0150", Country: "NO", secret: "x"},
	})

	if v.Kind() != KindMapping {
		t.Fatalf("expected mapping, got %s", v.Kind())
	}

	if got := v.Map().Keys(); len(got) != 4 || got[0] != "name" || got[3] != "spouse" {
		t.Errorf("unexpected keys %v", got)
	}

	if got := v.Get("tags").String(); got != "a,b" {
		t.Errorf("expected tags %q, got %q", "a,b", got)
	}

	addr := v.Get("address").Map()
	if got := addr.Keys(); len(got) != 2 || got[0] != "city" || got[1] != "Country" {
		t.Errorf("unexpected address keys %v", got)
	}

	if !v.Get("spouse").IsNull() {
		t.Error("expected nil pointer to convert to null")
	}

	sorted := FromGo(map[string]int{"b": 2, "a": 1, "c": 3}).Map().Keys()
	if sorted[0] != "a" || sorted[1] != "b" || sorted[2] != "c" {
		t.Errorf("expected sorted keys, got %v", sorted)
	}

	ordered := FromGo(yaml.MapSlice{{Key: "z", Value: 1}, {Key: "a", Value: 2}}).Map().Keys()
	if ordered[0] != "z" || ordered[1] != "a" {
		t.Errorf("expected document order, got %v", ordered)
	}

	if got := FromGo(uint8(7)); got.String() != "7" {
		t.Errorf("expected 7, got %q", got.String())
	}
}

func TestValue_Native(t *testing.T) {
	v := FromGo(map[string]any{
		"n":  1,
		"xs": []any{"a", true, nil},
		"m":  map[string]any{"k": "v"},
	})

	native, ok := v.Native().(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", v.Native())
	}

	if native["n"] != float64(1) {
		t.Errorf("expected float64 1, got %#v", native["n"])
	}

	xs, ok := native["xs"].([]any)
	if !ok || len(xs) != 3 || xs[0] != "a" || xs[1] != true || xs[2] != nil {
		t.Errorf("unexpected sequence %#v", native["xs"])
	}

	ms, ok := v.MapSlice().(yaml.MapSlice)
	if !ok || len(ms) != 3 || ms[0].Key != "m" {
		t.Errorf("unexpected map slice %#v", v.MapSlice())
	}
}

func TestMapping_SetKeepsOrder(t *testing.T) {
	m := NewMapping().Set("b", Number(1)).Set("a", Number(2)).Set("b", Number(3))

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "b" || keys[1] != "a" {
		t.Errorf("unexpected keys %v", keys)
	}

	if v, _ := m.Get("b"); v.String() != "3" {
		t.Errorf("expected overwritten value 3, got %v", v)
	}

	c := m.Clone().Set("c", Null())
	if m.Len() != 2 || c.Len() != 3 {
		t.Errorf("clone shares storage: %d, %d", m.Len(), c.Len())
	}
}

func TestFrame_Chain(t *testing.T) {
	root := NewFrame(NewMapping().Set("root", String("r")))
	child := root.Child().Set("index", Number(1))

	if got := child.Get("root").String(); got != "r" {
		t.Errorf("expected inherited root, got %q", got)
	}

	if !root.Get("index").IsNull() {
		t.Error("child assignment leaked into parent")
	}

	if child.Parent() != root {
		t.Error("expected parent link")
	}
}
