// Package ratelimit provides the token-bucket permit gate used by the
// rate-limited fetcher (spec §4.E), adapted from the teacher's per-host
// golang.org/x/time/rate wrapper to a single-vendor gate.
package ratelimit

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket with a configurable permits-per-second rate.
type Limiter struct {
	limiter *rate.Limiter
}

// New constructs a limiter with the given permits-per-second. Burst is
// fixed at 1: the fetcher acquires exactly one permit before each attempt.
func New(permitsPerSecond float64) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(rate.Limit(permitsPerSecond), 1)}
}

// Acquire blocks until a permit is available or ctx is cancelled.
func (l *Limiter) Acquire(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// SetPermitsPerSecond updates the bucket's fill rate, e.g. when an operator
// lowers it in response to vendor throttling.
func (l *Limiter) SetPermitsPerSecond(permitsPerSecond float64) {
	l.limiter.SetLimit(rate.Limit(permitsPerSecond))
}
