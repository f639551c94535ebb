package repl

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/mvz/haparanda/log"
)

const defaultEditor = "vi"

// editDataCommand implements [tea.ExecCommand] for the edit-parse-retry
// loop over the template input. It writes the input as YAML to a temp file,
// opens the user's editor, and decodes the result. On a decode error the
// user is asked whether to edit again.
type editDataCommand struct {
	data    any
	ctxFunc func() context.Context
	newData any
	edited  bool
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editDataCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDataCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDataCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit; declining
// to edit again after an error returns [ErrEditDeclined].
func (c *editDataCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := encodeData(ctx, c.data)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(os.TempDir(), "haparanda-data-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		content, err = os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(content)) == 0 {
			return nil
		}

		data, decodeErr := decodeData(ctx, content)
		c.logger.TraceContext(
			ctx,
			"editor decode attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.newData, c.edited = data, true

			return nil
		}

		fmt.Fprintf(c.stderr, "\nDecode error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}
	}
}

// encodeData formats template input as YAML. Nil input is an empty
// mapping so the editor opens on something to fill in.
func encodeData(ctx context.Context, data any) ([]byte, error) {
	if data == nil {
		return []byte("{}\n"), nil
	}

	return yaml.MarshalContext(ctx, data)
}

// decodeData parses YAML or JSON template input, keeping mapping keys in
// document order.
func decodeData(ctx context.Context, content []byte) (any, error) {
	var data any

	dec := yaml.NewDecoder(bytes.NewReader(content), yaml.UseOrderedMap())
	if err := dec.DecodeContext(ctx, &data); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	return data, nil
}

// runEditor runs the user's editor on the file at path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := strings.Fields(editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
