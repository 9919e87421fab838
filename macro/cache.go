package macro

import (
	"bytes"
	"context"
	"encoding/gob"
	"log/slog"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// Cache memoizes [ExpandSource] by source content and effective options.
// Concurrent requests for the same key expand the source once.
//
// Results are shared between callers and must be treated as read-only.
// The zero Cache is ready to use.
type Cache struct {
	results sync.Map // key -> *cached
}

// cached holds the outcome of a single expansion.
type cached struct {
	once sync.Once
	res  *Result
	err  error
}

// hash encodes the options that affect expansion output and hashes them
// with xxh3.
func (c config) hash() uint64 {
	var buf bytes.Buffer

	enc := gob.NewEncoder(&buf)

	_ = enc.Encode(c.file)
	_ = enc.Encode(c.family)
	_ = enc.Encode(c.entries)

	return xxh3.Hash(buf.Bytes())
}

// Expand returns the result of ExpandSource(ctx, source, opts...), reusing
// a previous result when both source and options match.
func (c *Cache) Expand(
	ctx context.Context,
	source string,
	opts ...Option,
) (*Result, error) {
	cfg := makeConfig(opts...)

	sourceHash := xxh3.HashString(source)
	optsHash := cfg.hash()
	key := strconv.FormatUint(sourceHash^optsHash, 36)

	value, hit := c.results.LoadOrStore(key, new(cached))

	entry, ok := value.(*cached)
	if !ok {
		return nil, NewError("invalid cache entry").
			With(slog.String("key", key))
	}

	cfg.logger.TraceContext(ctx, "cache lookup",
		slog.String("file", cfg.file),
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.String("opts_hash", strconv.FormatUint(optsHash, 16)),
		slog.Bool("cache_hit", hit))

	entry.once.Do(func() {
		entry.res, entry.err = ExpandSource(ctx, source, opts...)
	})

	return entry.res, entry.err
}

// Clear removes every cached result.
func (c *Cache) Clear() {
	c.results.Clear()
}
