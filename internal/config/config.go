// Package config loads YAML-driven configuration for the fetcher and
// cache tiers (spec §2 component N), following the teacher's
// config.LoadGuardsConfig idiom: read file, yaml.Unmarshal, wrap errors.
package config

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
)

// FetcherConfig configures the rate-limited fetcher leaf tier.
type FetcherConfig struct {
	PermitsPerSecond  float64 `yaml:"permits_per_second"`
	RetrySeconds      float64 `yaml:"retry_seconds"`
	RetryCount        int     `yaml:"retry_count"`
	RateLimitedMarker string  `yaml:"rate_limited_marker"`
	BaseURL           string  `yaml:"base_url"`
}

// RedisConfig configures the optional distributed cache tier.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLHours int    `yaml:"ttl_hours"`
}

// S3Config configures the optional object-storage tier.
type S3Config struct {
	Enabled bool   `yaml:"enabled"`
	Bucket  string `yaml:"bucket"`
	Region  string `yaml:"region"`
}

// CacheConfig configures the cache tier chain.
type CacheConfig struct {
	LocalCacheRoot string      `yaml:"local_cache_root"`
	Redis          RedisConfig `yaml:"redis"`
	S3             S3Config    `yaml:"s3"`
}

// SearchConfig configures the search engine's guarded entry bound.
type SearchConfig struct {
	BeginningOfTime string `yaml:"beginning_of_time"`
}

// Config is the top-level configuration document.
type Config struct {
	Fetcher FetcherConfig `yaml:"fetcher"`
	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
}

// Load reads and parses a Config from configPath.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "read configuration file %s", configPath)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errs.Wrap(errs.Io, err, "parse configuration YAML %s", configPath)
	}
	return &cfg, nil
}
