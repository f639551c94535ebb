package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mvz/haparanda/log"
)

// Render renders a template with the given input and writes the result.
type Render struct {
	Output string `help:"Write the result to a file instead of stdout." short:"o" type:"path"`

	RenderFlags `embed:""`

	Template string `arg:"" default:"-" help:"Template file or '-' for default stdin." name:"template"`

	out io.Writer
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	c, err := r.Compiler(ctx)
	if err != nil {
		return err
	}

	text, err := readInput(r.Template)
	if err != nil {
		return err
	}

	tmpl, err := c.Compile(ctx, string(text))
	if err != nil {
		return ErrRender.Wrap(err).With(slog.String("template", r.Template))
	}

	input, err := r.Input(ctx)
	if err != nil {
		return err
	}

	result, err := tmpl.Call(ctx, input)
	if err != nil {
		return ErrRender.Wrap(err).With(slog.String("template", r.Template))
	}

	w := r.out
	if w == nil {
		w = os.Stdout
	}

	if r.Output != "" {
		f, err := os.Create(r.Output)
		if err != nil {
			return ErrRender.Wrap(err).With(slog.String("file", r.Output))
		}
		defer f.Close()

		w = f
	}

	if _, err := io.WriteString(w, result); err != nil {
		return ErrRender.Wrap(err).With(slog.String("file", r.Output))
	}

	log.DebugContext(ctx, "rendered template",
		slog.String("template", r.Template),
		slog.Int("bytes", len(result)),
	)

	return nil
}
