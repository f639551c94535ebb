package lang

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mvz/haparanda/log"
)

func TestParseReader_Cache(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	ctx := context.Background()
	source := "{{#each items}}{{name}}{{/each}}"

	first, err := ParseReader(ctx, strings.NewReader(source))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	second, err := ParseReader(ctx, strings.NewReader(source))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if first != second {
		t.Error("expected cached tree for identical source")
	}

	other, err := ParseReader(ctx, strings.NewReader(source), WithIgnoreStandalone(true))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if other == first {
		t.Error("expected distinct tree for different options")
	}

	ClearCache()

	third, err := ParseReader(ctx, strings.NewReader(source))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	if third == first {
		t.Error("expected fresh tree after ClearCache")
	}
}

func TestParseReader_CachedError(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	for range 2 {
		_, err := ParseReader(context.Background(), strings.NewReader("{{#a}}{{/b}}"))
		if !errors.Is(err, ErrMismatchedBlock) {
			t.Fatalf("expected ErrMismatchedBlock, got %v", err)
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestParseReader_ReadError(t *testing.T) {
	_, err := ParseReader(context.Background(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("expected ErrReadInput, got %v", err)
	}
}

func TestParseReader_Logging(t *testing.T) {
	ClearCache()
	t.Cleanup(ClearCache)

	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithFormat(log.FormatJSON))

	_, err := ParseReader(context.Background(), strings.NewReader("{{x}}"), WithLogger(logger))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	for _, msg := range []string{"read input", "cache lookup", "parse complete"} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("expected log output to contain %q:\n%s", msg, buf.String())
		}
	}
}
