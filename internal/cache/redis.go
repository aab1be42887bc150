package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
)

// defaultRedisTTL bounds how long a shared Redis tier holds a tick file or
// bar payload before falling through to the next tier again.
const defaultRedisTTL = 6 * time.Hour

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (s redisStore) exists(ctx context.Context, path string) (bool, error) {
	n, err := s.client.Exists(ctx, path).Result()
	if err != nil {
		return false, errs.Wrap(errs.Io, err, "redis exists %s", path)
	}
	return n > 0, nil
}

func (s redisStore) get(ctx context.Context, path string) ([]byte, error) {
	data, err := s.client.Get(ctx, path).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, errs.New(errs.NotFound, "redis key %s not found", path)
		}
		return nil, errs.Wrap(errs.Io, err, "redis get %s", path)
	}
	return data, nil
}

func (s redisStore) put(ctx context.Context, path string, data []byte) error {
	if err := s.client.Set(ctx, path, data, s.ttl).Err(); err != nil {
		return errs.Wrap(errs.Io, err, "redis set %s", path)
	}
	return nil
}

// NewRedisByteCache constructs a Redis-backed ByteCache tier, intended to
// sit between the local tier and the object-store tier in a multi-instance
// deployment sharing one hot cache (spec_full §2 component R).
func NewRedisByteCache(client *redis.Client, ttl time.Duration, fallback ByteCache) ByteCache {
	if ttl <= 0 {
		ttl = defaultRedisTTL
	}
	return newByteTier("redis", redisStore{client: client, ttl: ttl}, fallback)
}
