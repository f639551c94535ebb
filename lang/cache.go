package lang

import (
	"bytes"
	"context"
	"encoding/gob"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// globalRegistry stores parsed templates keyed by source and option hash.
// Parsed trees are never mutated after parsing, so one tree may be handed
// to any number of callers.
var globalRegistry sync.Map

// state tracks the parse of one source and option combination.
type state struct {
	once sync.Once
	root *Root
	err  error
}

// hashOptions encodes options using gob and hashes with xxh3.
// Returns a hash that uniquely identifies the options configuration.
func hashOptions(opts optionsKey) uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(opts.ignoreStandalone)
	_ = enc.Encode(opts.preventIndent)

	return xxh3.Hash(buf.Bytes())
}

// ParseReader parses template source from an io.Reader.
// The parsed tree is cached, so reading the same source with the same
// options again returns the same *Root.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Root, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	cfg := makeConfig(opts...)

	cfg.logger.TraceContext(
		ctx,
		"read input",
		slog.Int("source_bytes", len(data)),
		slog.Bool("read_ahead", true),
	)

	return parseCached(ctx, string(data), cfg)
}

// parseCached parses a string at most once per source and options.
func parseCached(ctx context.Context, source string, cfg config) (*Root, error) {
	sourceHash := xxh3.HashString(source)
	optsHash := hashOptions(cfg.opts)
	sourceKey := strconv.FormatUint(sourceHash^optsHash, 36)

	value, cacheHit := globalRegistry.LoadOrStore(sourceKey, new(state))

	entry, ok := value.(*state)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid entry type in cache"))
	}

	cfg.logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", cacheHit),
	)

	entry.once.Do(func() {
		entry.root, entry.err = parse(ctx, source, cfg)
		if entry.err != nil {
			entry.err = WrapError(entry.err).With(
				slog.Int("source_length", len(source)),
			)
		}
	})

	return entry.root, entry.err
}

// ClearCache removes all cached templates.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	globalRegistry.Clear()
}
