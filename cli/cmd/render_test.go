package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvz/haparanda/eval"
	"github.com/mvz/haparanda/pkg"
)

func TestRenderRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	data := writeFile(t, dir, "data.yaml", `
title: Friends
people:
  - {first: Yehuda, last: Katz}
  - {first: Alan, last: Johnson}
`)
	jsonData := writeFile(t, dir, "data.json", `{"title": "JSON", "people": []}`)
	helpers := writeFile(t, dir, "helpers.yaml", `
- name: fullName
  expr: first + " " + last
`)
	partials := filepath.Join(dir, "partials")
	writeFile(t, partials, "person.hbs", "<li>{{fullName}}</li>")
	writeFile(t, partials, "layout/title.handlebars", "<h1>{{title}}</h1>")

	page := writeFile(t, dir, "page.hbs",
		"{{> layout/title}}<ul>{{#each people}}{{> person}}{{else}}none{{/each}}</ul>")

	tests := []struct {
		name   string
		render Render
		want   string
	}{
		{
			name: "yaml data",
			render: Render{
				RenderFlags: RenderFlags{Data: data, Helpers: []string{helpers}, Partials: []string{partials}},
				Template:    page,
			},
			want: "<h1>Friends</h1><ul><li>Yehuda Katz</li><li>Alan Johnson</li></ul>",
		},
		{
			name: "json data",
			render: Render{
				RenderFlags: RenderFlags{Data: jsonData, Helpers: []string{helpers}, Partials: []string{partials}},
				Template:    page,
			},
			want: "<h1>JSON</h1><ul>none</ul>",
		},
		{
			name: "no data",
			render: Render{
				Template: writeFile(t, dir, "plain.hbs", "{{#if missing}}x{{else}}empty{{/if}}"),
			},
			want: "empty",
		},
		{
			name: "standalone flags",
			render: Render{
				RenderFlags: RenderFlags{ParseFlags: ParseFlags{IgnoreStandalone: true}},
				Template:    writeFile(t, dir, "standalone.hbs", "{{#if true}}\nx\n{{/if}}\n"),
			},
			want: "\nx\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			r := tt.render
			r.out = &buf

			if err := r.Run(context.Background()); err != nil {
				t.Fatalf("Render.Run() error = %v", err)
			}

			if got := buf.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderOutputFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	r := Render{
		Output:   out,
		Template: writeFile(t, dir, "t.hbs", "{{!-- note --}}ok"),
	}

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Render.Run() error = %v", err)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if string(got) != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var missing *eval.MissingHelperError

	r := Render{Template: writeFile(t, dir, "t.hbs", "{{nope 1}}"), out: new(bytes.Buffer)}

	err := r.Run(context.Background())
	if !errors.Is(err, ErrRender) || !errors.As(err, &missing) {
		t.Fatalf("expected missing helper render error, got %v", err)
	}

	if missing.Name != "nope" {
		t.Errorf("expected helper name %q, got %q", "nope", missing.Name)
	}

	r = Render{
		RenderFlags: RenderFlags{Data: writeFile(t, dir, "bad.yaml", "a: [1, 2")},
		Template:    writeFile(t, dir, "ok.hbs", "x"),
		out:         new(bytes.Buffer),
	}

	if err := r.Run(context.Background()); !errors.Is(err, ErrReadInput) {
		t.Errorf("expected read input error, got %v", err)
	}
}

func TestPartialDirs(t *testing.T) {
	dir := t.TempDir()
	flag := filepath.Join(dir, "flag")
	env := filepath.Join(dir, "env")

	for _, d := range []string{flag, env} {
		if err := os.Mkdir(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	t.Setenv(pkg.EnvVar(PartialsEnv), env+string(os.PathListSeparator)+filepath.Join(dir, "absent"))

	got := partialDirs([]string{flag})
	if len(got) != 2 || got[0] != flag || got[1] != env {
		t.Errorf("partialDirs() = %v, want [%s %s]", got, flag, env)
	}
}
