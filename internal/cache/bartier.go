package cache

import (
	"bytes"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/LimeMojito/trading-data-stream/internal/criteria"
	"github.com/LimeMojito/trading-data-stream/internal/jsonarray"
	"github.com/LimeMojito/trading-data-stream/internal/model"
	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

// barTier is the shared read-through decorator for BarCache, keyed on the
// day anchor (the first path in the day's hour-list) via BarPath.
type barTier struct {
	store    byteStore
	fallback BarCache
	stat     *stats.SimpleStats
}

func newBarTier(name string, store byteStore, fallback BarCache) *barTier {
	return &barTier{store: store, fallback: fallback, stat: stats.NewSimpleStats(name)}
}

func (t *barTier) Stats() stats.Aggregator { return t.stat }

func (t *barTier) Day(ctx context.Context, c criteria.Bar, dayOfPaths []string) ([]model.Bar, error) {
	if len(dayOfPaths) == 0 {
		return nil, nil
	}
	key, err := BarPath(c, dayOfPaths[0])
	if err != nil {
		return nil, err
	}

	exists, err := t.store.exists(ctx, key)
	if err != nil {
		return nil, err
	}
	if exists {
		data, err := t.store.get(ctx, key)
		if err != nil {
			return nil, err
		}
		t.stat.Increment(stats.HitKey)
		return jsonarray.Decode[model.Bar](data, nil)
	}

	t.stat.Increment(stats.MissKey)
	bars, err := t.fallback.Day(ctx, c, dayOfPaths)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jsonarray.Encode(&buf, bars); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("bar tier failed to serialize for persist")
		return bars, nil
	}
	if err := t.store.put(ctx, key, buf.Bytes()); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("bar tier failed to persist, serving computed bars anyway")
	}
	return bars, nil
}

// NewLocalBarCache constructs the local-filesystem BarCache tier.
func NewLocalBarCache(root string, fallback BarCache) BarCache {
	return newBarTier("local-bars", localStore{root: root}, fallback)
}

// NewRedisBarCache constructs the Redis BarCache tier.
func NewRedisBarCache(client *redis.Client, ttl time.Duration, fallback BarCache) BarCache {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return newBarTier("redis-bars", redisStore{client: client, ttl: ttl}, fallback)
}

// NewS3BarCache constructs the S3 BarCache tier, content-type application/json.
func NewS3BarCache(client S3API, bucket string, fallback BarCache) BarCache {
	return newBarTier("s3-bars", newS3BarStore(client, bucket), fallback)
}
