// Package cache implements the read-through cache tier chain for raw
// tick-file bytes and pre-aggregated bar JSON (spec §4.F), grounded on the
// teacher's TTLCache/DataFacade read-through pattern generalized to a
// decorator chain over pluggable tiers (local filesystem, Redis, S3,
// direct network).
package cache

import (
	"context"
	"io"

	"github.com/LimeMojito/trading-data-stream/internal/criteria"
	"github.com/LimeMojito/trading-data-stream/internal/model"
	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

// ByteSource is an opaque, readable byte payload returned by a cache hit
// or a fresh fetch. Lifetime equals the underlying storage.
type ByteSource interface {
	io.ReadCloser
}

// ByteCache serves opaque binary blobs keyed by vendor path.
type ByteCache interface {
	Stream(ctx context.Context, path string) (ByteSource, error)
	Stats() stats.Aggregator
}

// BarCache serves a day's worth of bars for a (BarCriteria, dayOfPaths) pair.
type BarCache interface {
	Day(ctx context.Context, c criteria.Bar, dayOfPaths []string) ([]model.Bar, error)
	Stats() stats.Aggregator
}

// bytesSource is the simplest ByteSource: an in-memory buffer.
type bytesSource struct {
	io.Reader
}

func (bytesSource) Close() error { return nil }

// NewBytesSource wraps a reader as a ByteSource whose Close is a no-op.
func NewBytesSource(r io.Reader) ByteSource {
	return bytesSource{Reader: r}
}
