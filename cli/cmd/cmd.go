package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/ardnew/mung"
	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"

	"github.com/mvz/haparanda/handlebars"
	"github.com/mvz/haparanda/lang"
	"github.com/mvz/haparanda/log"
	"github.com/mvz/haparanda/pkg"
	"github.com/mvz/haparanda/script"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readInput returns the content of the named file, or of standard input if
// name is "-".
func readInput(name string) ([]byte, error) {
	var r io.Reader = os.Stdin

	if name != stdinSource {
		f, err := os.Open(name)
		if err != nil {
			return nil, ErrReadInput.Wrap(err).With(slog.String("file", name))
		}
		defer f.Close()

		r = f
	}

	ra := readahead.NewReader(r)
	defer ra.Close()

	b, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", name))
	}

	return b, nil
}

// ParseFlags are the template parser options shared by every command that
// reads a template.
type ParseFlags struct {
	IgnoreStandalone bool `help:"Keep whitespace around standalone tags."`
	PreventIndent    bool `help:"Do not indent the lines of standalone partials."`
}

func (f ParseFlags) options() []lang.Option {
	return []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithIgnoreStandalone(f.IgnoreStandalone),
		lang.WithPreventIndent(f.PreventIndent),
	}
}

func (f ParseFlags) parse(ctx context.Context, name string) (*lang.Root, error) {
	text, err := readInput(name)
	if err != nil {
		return nil, err
	}

	root, err := lang.ParseString(ctx, string(text), f.options()...)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("file", name))
	}

	return root, nil
}

// RenderFlags select the input, helpers and partials of a render.
type RenderFlags struct {
	Data     string   `help:"YAML or JSON file holding the template input." short:"d" type:"existingfile"`
	Helpers  []string `help:"YAML file of expression helpers."             short:"H" type:"existingfile"`
	Partials []string `help:"Directory of partial templates."              short:"P" type:"path"`

	ParseFlags `embed:""`
}

// Compiler returns a compiler with the flags' helpers and partials
// registered.
func (f RenderFlags) Compiler(ctx context.Context) (*handlebars.Compiler, error) {
	c := handlebars.New(
		handlebars.WithLogger(log.Default()),
		handlebars.WithIgnoreStandalone(f.IgnoreStandalone),
		handlebars.WithPreventIndent(f.PreventIndent),
	)

	for _, name := range f.Helpers {
		text, err := readInput(name)
		if err != nil {
			return nil, err
		}

		helpers, err := script.Load(
			ctx,
			bytes.NewReader(text),
			script.WithLogger(log.Default()),
		)
		if err != nil {
			return nil, lang.WrapError(err).With(slog.String("file", name))
		}

		if err := c.RegisterHelpers(helpers); err != nil {
			return nil, err
		}
	}

	for _, dir := range partialDirs(f.Partials) {
		if err := c.LoadPartials(ctx, os.DirFS(dir)); err != nil {
			return nil, lang.WrapError(err).With(slog.String("dir", dir))
		}
	}

	return c, nil
}

// Input decodes the data file. It returns nil if no file is given or the
// file is empty.
func (f RenderFlags) Input(ctx context.Context) (any, error) {
	if f.Data == "" {
		return nil, nil
	}

	text, err := readInput(f.Data)
	if err != nil {
		return nil, err
	}

	var v any

	dec := yaml.NewDecoder(bytes.NewReader(text), yaml.UseOrderedMap())
	if err := dec.DecodeContext(ctx, &v); err != nil && !errors.Is(err, io.EOF) {
		return nil, ErrReadInput.Wrap(err).With(slog.String("file", f.Data))
	}

	return v, nil
}

// partialDirs returns dirs followed by the directories listed in the
// partials environment variable, keeping only those that exist.
func partialDirs(dirs []string) []string {
	env := filepath.SplitList(os.Getenv(pkg.EnvVar(PartialsEnv)))

	list := mung.Make(
		mung.WithSubjectItems(env...),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(dirs...),
		mung.WithFilter(isDir),
	).String()

	return filepath.SplitList(list)
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}
