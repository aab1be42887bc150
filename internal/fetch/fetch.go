// Package fetch implements the rate-limited, retrying network fetcher that
// serves as the no-cache leaf of the cache tier chain (spec §4.E),
// grounded on the teacher's Kraken HTTP client (rate limiter + circuit
// breaker wrapping a plain HTTP round trip).
package fetch

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/LimeMojito/trading-data-stream/internal/cache"
	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/ratelimit"
	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

const (
	defaultPermitsPerSecond  = 3.0
	defaultRetrySeconds      = 30.0
	defaultRetryCount        = 3
	defaultRateLimitedMarker = "503"
	defaultBaseURL           = "https://datafeed.dukascopy.com/datafeed/"

	retryKey = "retry"
)

// Config holds the fetcher's configuration knobs (spec §4.E table).
type Config struct {
	PermitsPerSecond  float64
	RetrySeconds      float64
	RetryCount        int
	RateLimitedMarker string
	BaseURL           string
}

// WithDefaults fills zero-valued fields with the vendor defaults.
func (c Config) WithDefaults() Config {
	if c.PermitsPerSecond == 0 {
		c.PermitsPerSecond = defaultPermitsPerSecond
	}
	if c.RetrySeconds == 0 {
		c.RetrySeconds = defaultRetrySeconds
	}
	if c.RetryCount == 0 {
		c.RetryCount = defaultRetryCount
	}
	if c.RateLimitedMarker == "" {
		c.RateLimitedMarker = defaultRateLimitedMarker
	}
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	return c
}

// HTTPDoer is the subset of *http.Client the fetcher needs, narrowed for
// testability.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sleeper abstracts the retry wait so tests can run without real delays.
type Sleeper func(ctx context.Context, d time.Duration) error

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fetcher is the ByteCache leaf: every Stream call performs a real network
// round trip, gated by a token-bucket limiter and a circuit breaker, with
// linear-backoff retry on rate-limited responses.
type Fetcher struct {
	cfg     Config
	client  HTTPDoer
	limiter *ratelimit.Limiter
	breaker *gobreaker.CircuitBreaker
	sleep   Sleeper
	stat    *stats.SimpleStats
}

// New constructs a Fetcher against cfg, using client for HTTP round trips.
// A nil client defaults to http.DefaultClient.
func New(cfg Config, client HTTPDoer) *Fetcher {
	cfg = cfg.WithDefaults()
	if client == nil {
		client = http.DefaultClient
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dukascopy-fetcher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("fetcher circuit breaker state change")
		},
	})

	return &Fetcher{
		cfg:     cfg,
		client:  client,
		limiter: ratelimit.New(cfg.PermitsPerSecond),
		breaker: breaker,
		sleep:   contextSleep,
		stat:    stats.NewSimpleStats("fetch"),
	}
}

// SetPermitsPerSecond lowers (or raises) the token bucket fill rate, e.g.
// an operator response to sustained vendor throttling.
func (f *Fetcher) SetPermitsPerSecond(permitsPerSecond float64) {
	f.limiter.SetPermitsPerSecond(permitsPerSecond)
}

func (f *Fetcher) Stats() stats.Aggregator { return f.stat }

// Stream performs the network fetch for path, retrying on rate-limited
// responses per the configured backoff policy.
func (f *Fetcher) Stream(ctx context.Context, path string) (cache.ByteSource, error) {
	url := f.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= f.cfg.RetryCount; attempt++ {
		if attempt > 0 {
			wait := time.Duration(f.cfg.RetrySeconds * float64(attempt) * float64(time.Second))
			if err := f.sleep(ctx, wait); err != nil {
				// An interrupted wait propagates the original fetch error that
				// triggered the retry, not the interruption signal itself.
				if lastErr != nil {
					return nil, lastErr
				}
				return nil, err
			}
			f.stat.Increment(retryKey)
		}

		if err := f.limiter.Acquire(ctx); err != nil {
			return nil, errs.Wrap(errs.Transient, err, "acquire fetch permit for %s", path)
		}

		body, err := f.doFetch(ctx, url)
		if err == nil {
			f.stat.Increment(stats.MissKey)
			return cache.NewBytesSource(strings.NewReader(string(body))), nil
		}

		lastErr = err
		if !strings.Contains(err.Error(), f.cfg.RateLimitedMarker) {
			return nil, err
		}
		log.Warn().Str("path", path).Int("attempt", attempt+1).Msg("fetch rate-limited, will retry")
	}

	return nil, errs.Wrap(errs.Transient, lastErr, "exhausted %d retries fetching %s", f.cfg.RetryCount, path)
}

func (f *Fetcher) doFetch(ctx context.Context, url string) ([]byte, error) {
	result, err := f.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errs.Wrap(errs.InvalidArgument, err, "build fetch request for %s", url)
		}

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, errs.Wrap(errs.Transient, err, "fetch %s", url)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, errs.New(errs.NotFound, "fetch %s: 404 not found", url)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errs.New(errs.Transient, "fetch %s: unexpected status %d", url, resp.StatusCode)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errs.Wrap(errs.Io, err, "read fetch response body for %s", url)
		}
		return data, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, errs.Wrap(errs.Transient, err, "circuit breaker rejected fetch %s", url)
		}
		return nil, err
	}
	return result.([]byte), nil
}
