package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mvz/haparanda/lang"
)

// Fmt parses a template and prints it in the chosen format.
type Fmt struct {
	Hbs  Hbs  `cmd:"" default:"withargs" help:"Format as normalized Handlebars source (default)."`
	JSON JSON `cmd:""                    help:"Format the syntax tree as JSON."`
	YAML YAML `cmd:""                    help:"Format the syntax tree as YAML."`
	AST  AST  `cmd:""                    help:"Print the syntax tree."`
}

// Source names the template a fmt subcommand reads.
type Source struct {
	ParseFlags `embed:""`

	Template string `arg:"" default:"-" help:"Template file or '-' for default stdin." name:"template"`

	out io.Writer
}

func (s *Source) writer() io.Writer {
	if s.out == nil {
		return os.Stdout
	}

	return s.out
}

// Hbs formats a template as Handlebars source.
type Hbs struct {
	Source `embed:""`
}

// Run executes the hbs command.
func (h *Hbs) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := h.parse(ctx, h.Template)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "hbs"))
	}

	return root.Format(ctx, h.writer())
}

// JSON formats the syntax tree as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Source `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := j.parse(ctx, j.Template)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "json"))
	}

	if err := lang.FormatJSON(ctx, j.writer(), root, j.Indent); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}

// YAML formats the syntax tree as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Source `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := y.parse(ctx, y.Template)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "yaml"))
	}

	if err := lang.FormatYAML(ctx, y.writer(), root, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// AST prints the syntax tree as an indented outline.
type AST struct {
	Source `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	root, err := a.parse(ctx, a.Template)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", "ast"))
	}

	lang.Print(ctx, a.writer(), root)

	return nil
}
