package handlebars

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/klauspost/readahead"
)

// PartialExtensions lists the file extensions [Compiler.LoadPartials]
// registers.
var PartialExtensions = []string{".hbs", ".handlebars"}

// LoadPartials registers every partial file in fsys. A file is named by
// its slash-separated path without extension, so "layout/header.hbs"
// becomes the partial "layout/header". Later files replace earlier ones
// of the same name.
func (c *Compiler) LoadPartials(ctx context.Context, fsys fs.FS) error {
	return fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return ErrLoadPartial.Wrap(err).With(slog.String("path", name))
		}

		if d.IsDir() {
			return nil
		}

		partial, ok := partialName(name)
		if !ok {
			return nil
		}

		text, err := readFile(fsys, name)
		if err != nil {
			return ErrLoadPartial.Wrap(err).With(slog.String("path", name))
		}

		c.logger.TraceContext(
			ctx,
			"load partial",
			slog.String("path", name),
			slog.String("name", partial),
		)

		if err := c.RegisterPartial(ctx, partial, text); err != nil {
			return ErrLoadPartial.Wrap(err).With(slog.String("path", name))
		}

		return nil
	})
}

func partialName(name string) (string, bool) {
	ext := path.Ext(name)

	for _, want := range PartialExtensions {
		if ext == want {
			return strings.TrimSuffix(name, ext), true
		}
	}

	return "", false
}

func readFile(fsys fs.FS, name string) (string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	var sb strings.Builder
	if _, err := io.Copy(&sb, ra); err != nil {
		return "", err
	}

	return sb.String(), nil
}
