// Package model holds the Tick and Bar value types shared across the
// cache, aggregation, and search layers.
package model

import "time"

// Period is a bar aggregation period.
type Period int

const (
	M5 Period = iota
	M10
	M15
	M30
	H1
	H4
	D1
)

var periodNames = [...]string{"M5", "M10", "M15", "M30", "H1", "H4", "D1"}

var periodDurations = [...]time.Duration{
	5 * time.Minute,
	10 * time.Minute,
	15 * time.Minute,
	30 * time.Minute,
	time.Hour,
	4 * time.Hour,
	24 * time.Hour,
}

// String returns the vendor-facing name, e.g. "H1".
func (p Period) String() string {
	if p < 0 || int(p) >= len(periodNames) {
		return "UNKNOWN"
	}
	return periodNames[p]
}

// Duration returns the wall-clock length of one bar of this period.
func (p Period) Duration() time.Duration {
	return periodDurations[p]
}

// DurationMillis returns Duration in whole milliseconds.
func (p Period) DurationMillis() int64 {
	return p.Duration().Milliseconds()
}

// PeriodsIn returns how many bars of this period fit in one bar of other,
// e.g. H1.PeriodsIn(D1) == 24. Used to bound the per-day bar count
// invariant in the search engine.
func (p Period) PeriodsIn(other Period) int {
	return int(other.Duration() / p.Duration())
}

// ParsePeriod resolves a vendor period name back to a Period.
func ParsePeriod(name string) (Period, bool) {
	for i, n := range periodNames {
		if n == name {
			return Period(i), true
		}
	}
	return 0, false
}
