// Package tradingdatastream wires the internal components into the
// production-shaped Local → Redis → S3 → direct-fetch cache chain (spec
// §6 external interfaces) and exposes the Search Engine, cache chain,
// Cache Primer, and Tick→Bar Aggregator as the library's public surface.
package tradingdatastream

import (
	"context"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/LimeMojito/trading-data-stream/internal/aggregate"
	"github.com/LimeMojito/trading-data-stream/internal/cache"
	"github.com/LimeMojito/trading-data-stream/internal/config"
	"github.com/LimeMojito/trading-data-stream/internal/decode"
	"github.com/LimeMojito/trading-data-stream/internal/fetch"
	"github.com/LimeMojito/trading-data-stream/internal/market"
	"github.com/LimeMojito/trading-data-stream/internal/model"
	"github.com/LimeMojito/trading-data-stream/internal/pathgen"
	"github.com/LimeMojito/trading-data-stream/internal/primer"
	"github.com/LimeMojito/trading-data-stream/internal/search"
	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

// Aggregator is the tick-to-bar folding engine (spec §4.H), re-exported
// at the library boundary.
type Aggregator = aggregate.Aggregator

// NewAggregator constructs a fresh Tick→Bar Aggregator for period.
func NewAggregator(period model.Period, notifier aggregate.Notifier) *Aggregator {
	return aggregate.New(period, notifier)
}

// Client bundles the Search Engine, the raw byte cache chain, and the
// Cache Primer behind one production-shaped wiring.
type Client struct {
	Search    *search.Engine
	ByteCache cache.ByteCache
	BarCache  cache.BarCache
	Primer    *primer.Primer
}

// Stats reports the combined statistics tree across the byte and bar
// cache chains.
func (c *Client) Stats() stats.Aggregator {
	return stats.Combine(c.ByteCache.Stats(), c.BarCache.Stats())
}

// New wires the full production cache chain from cfg: local filesystem
// first, then (if enabled) Redis, then (if enabled) S3, with the
// rate-limited vendor fetcher as the final leaf for bytes and an
// on-the-fly tick aggregation leaf for bars.
func New(cfg *config.Config) (*Client, error) {
	oracle := market.NewOracle()
	pathGen := pathgen.NewGenerator(oracle)
	decoder := decode.NewDukascopy()

	fetcher := fetch.New(fetch.Config{
		PermitsPerSecond:  cfg.Fetcher.PermitsPerSecond,
		RetrySeconds:      cfg.Fetcher.RetrySeconds,
		RetryCount:        cfg.Fetcher.RetryCount,
		RateLimitedMarker: cfg.Fetcher.RateLimitedMarker,
		BaseURL:           cfg.Fetcher.BaseURL,
	}, http.DefaultClient)

	byteChain := buildByteChain(cfg, fetcher)
	directBars := cache.NewDirectBarNoCache(byteChain, decoder, uuid.Nil, model.Historical)
	barChain := buildBarChain(cfg, directBars)

	engine := search.New(pathGen, byteChain, barChain, decoder, uuid.Nil, model.Historical)
	if cfg.Search.BeginningOfTime != "" {
		if t, err := time.Parse(time.RFC3339, cfg.Search.BeginningOfTime); err == nil {
			engine.SetBeginningOfTime(t)
		}
	}

	cachePrimer := primer.New(byteChain, pathGen)

	return &Client{
		Search:    engine,
		ByteCache: byteChain,
		BarCache:  barChain,
		Primer:    cachePrimer,
	}, nil
}

func buildByteChain(cfg *config.Config, leaf cache.ByteCache) cache.ByteCache {
	chain := leaf

	if cfg.Cache.S3.Enabled {
		if client, err := newS3Client(cfg.Cache.S3.Region); err == nil {
			chain = cache.NewS3ByteCache(client, cfg.Cache.S3.Bucket, chain)
		}
	}
	if cfg.Cache.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Redis.Address, DB: cfg.Cache.Redis.DB})
		ttl := time.Duration(cfg.Cache.Redis.TTLHours) * time.Hour
		chain = cache.NewRedisByteCache(rdb, ttl, chain)
	}

	root := cfg.Cache.LocalCacheRoot
	if root == "" {
		root = cache.DefaultLocalCacheDir()
	}
	return cache.NewLocalByteCache(root, chain)
}

func buildBarChain(cfg *config.Config, leaf cache.BarCache) cache.BarCache {
	chain := leaf

	if cfg.Cache.S3.Enabled {
		if client, err := newS3Client(cfg.Cache.S3.Region); err == nil {
			chain = cache.NewS3BarCache(client, cfg.Cache.S3.Bucket, chain)
		}
	}
	if cfg.Cache.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Cache.Redis.Address, DB: cfg.Cache.Redis.DB})
		ttl := time.Duration(cfg.Cache.Redis.TTLHours) * time.Hour
		chain = cache.NewRedisBarCache(rdb, ttl, chain)
	}

	root := cfg.Cache.LocalCacheRoot
	if root == "" {
		root = cache.DefaultLocalCacheDir()
	}
	return cache.NewLocalBarCache(root, chain)
}

func newS3Client(region string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}
