package stream

import (
	"sort"
	"time"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
)

// WindowSearch performs one bounded window search, returning the items
// found in [s, e]. It is supplied by the caller (the Search Engine, spec
// §4.J) — the stream package only implements the count-based extension
// loop around it.
type WindowSearch[T any] func(s, e time.Time) ([]T, error)

// StartOf extracts the sort key (a bar's start instant) from an item.
type StartOf[T any] func(T) time.Time

// maxEmptySpan bounds the no-progress safeguard: once consecutive empty
// window searches span at least this much calendar time with nothing
// found, the extension aborts with Exhausted rather than materializing an
// unbounded amount of intermediate data across a sparse region (spec §9
// open question 3). Tracking elapsed span rather than a fixed search
// count means a single weekend or holiday closure — which a fixed-width
// planned window can split into several consecutive empty searches — is
// survived as long as it resolves within maxEmptySpan; only a region
// genuinely barren for longer than that trips the safeguard.
const maxEmptySpan = 7 * 24 * time.Hour

// MaterializeForwards emits the first count items whose start is >=
// start, issuing successive bounded window searches of width
// count*periodDuration until enough items are collected or the
// no-progress safeguard trips.
func MaterializeForwards[T any](beginningOfTime, now, start time.Time, count int, periodDuration time.Duration, search WindowSearch[T], startOf StartOf[T], visit VisitFunc[T]) (Stream[T], error) {
	plannedWindow := time.Duration(count) * periodDuration
	var collected []T
	emptySpan := time.Duration(0)
	searchIndex := 0

	for {
		s := start.Add(time.Duration(searchIndex) * plannedWindow)
		e := start.Add(time.Duration(searchIndex+1)*plannedWindow - time.Nanosecond)

		if !s.Before(beginningOfTime) {
			found, err := search(s, e)
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				emptySpan += plannedWindow
			} else {
				emptySpan = 0
			}
			collected = append(collected, found...)
		}

		searchIndex++
		if len(collected) >= count {
			break
		}
		if emptySpan >= maxEmptySpan {
			return nil, errs.New(errs.Exhausted, "no data found across %s with no progress from %s", emptySpan, start.Format(time.RFC3339Nano))
		}
		if e.After(now) {
			break
		}
	}

	sort.Slice(collected, func(i, j int) bool { return startOf(collected[i]).Before(startOf(collected[j])) })
	if len(collected) > count {
		collected = collected[:count]
	}
	return FromList(collected, visit), nil
}

// MaterializeBackwards emits the last count items whose start is < end,
// mirroring MaterializeForwards by searching backwards in time.
func MaterializeBackwards[T any](beginningOfTime, end time.Time, count int, periodDuration time.Duration, search WindowSearch[T], startOf StartOf[T], visit VisitFunc[T]) (Stream[T], error) {
	plannedWindow := time.Duration(count) * periodDuration
	var collected []T
	emptySpan := time.Duration(0)
	searchIndex := 0

	for {
		e := end.Add(-time.Duration(searchIndex)*plannedWindow - time.Nanosecond)
		s := end.Add(-time.Duration(searchIndex+1) * plannedWindow)

		if !e.Before(beginningOfTime) {
			found, err := search(s, e)
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				emptySpan += plannedWindow
			} else {
				emptySpan = 0
			}
			collected = append(collected, found...)
		}

		searchIndex++
		if len(collected) >= count {
			break
		}
		if emptySpan >= maxEmptySpan {
			return nil, errs.New(errs.Exhausted, "no data found across %s with no progress back from %s", emptySpan, end.Format(time.RFC3339Nano))
		}
		if s.Before(beginningOfTime) {
			break
		}
	}

	sort.Slice(collected, func(i, j int) bool { return startOf(collected[i]).Before(startOf(collected[j])) })
	if len(collected) > count {
		collected = collected[len(collected)-count:]
	}
	return FromList(collected, visit), nil
}
