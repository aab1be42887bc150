package cache

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

// byteStore is the minimal backing-store contract a read-through byte tier
// needs: existence check, read, and write. Local filesystem, Redis, and S3
// each implement this; the read-through algorithm itself lives once, here.
type byteStore interface {
	exists(ctx context.Context, path string) (bool, error)
	get(ctx context.Context, path string) ([]byte, error)
	put(ctx context.Context, path string, data []byte) error
}

// byteTier is the shared read-through decorator for ByteCache: check the
// backing store, on miss stream from fallback, buffer, TOCTOU-recheck, and
// persist (spec §4.F "Read-through algorithm (ByteCache)").
type byteTier struct {
	store      byteStore
	fallback   ByteCache
	stat       *stats.SimpleStats
	persistMu  sync.Mutex
}

func newByteTier(name string, store byteStore, fallback ByteCache) *byteTier {
	return &byteTier{store: store, fallback: fallback, stat: stats.NewSimpleStats(name)}
}

func (t *byteTier) Stats() stats.Aggregator { return t.stat }

func (t *byteTier) Stream(ctx context.Context, path string) (ByteSource, error) {
	exists, err := t.store.exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if exists {
		data, err := t.store.get(ctx, path)
		if err != nil {
			return nil, err
		}
		t.stat.Increment(stats.HitKey)
		return NewBytesSource(bytes.NewReader(data)), nil
	}

	t.stat.Increment(stats.MissKey)
	source, err := t.fallback.Stream(ctx, path)
	if err != nil {
		return nil, err
	}
	defer source.Close()

	payload, err := io.ReadAll(source)
	if err != nil {
		return nil, err
	}

	t.persistMu.Lock()
	alreadyPersisted, existsErr := t.store.exists(ctx, path)
	switch {
	case existsErr != nil:
		log.Warn().Err(existsErr).Str("path", path).Msg("cache tier persist existence recheck failed")
	case alreadyPersisted:
		// Another goroutine won the race and already persisted; skip.
	default:
		if putErr := t.store.put(ctx, path, payload); putErr != nil {
			log.Warn().Err(putErr).Str("path", path).Msg("cache tier failed to persist, serving buffered payload anyway")
		}
	}
	t.persistMu.Unlock()

	return NewBytesSource(bytes.NewReader(payload)), nil
}
