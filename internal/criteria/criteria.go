// Package criteria normalizes and rounds time windows to bar/second
// boundaries (spec §3 "Criteria", §4.C).
package criteria

import (
	"time"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/model"
)

// Tick is a validated, end-of-second-normalized tick search window.
type Tick struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// NewTick validates and normalizes a tick search window: end is shifted to
// the last nanosecond of its second when it falls exactly on a second
// boundary (inclusive-to-end-of-second semantics).
func NewTick(symbol string, start, end time.Time) (Tick, error) {
	if end.Before(start) {
		return Tick{}, errs.New(errs.InvalidArgument, "Instant %s must be before %s",
			start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))
	}
	return Tick{Symbol: symbol, Start: start, End: normalizeEndOfSecond(end)}, nil
}

// normalizeEndOfSecond gives inclusive-to-end-of-second semantics: an
// instant landing exactly on a whole second (nanoOfSecond == 0) is shifted
// to the last nanosecond of that same second, since the caller meant
// "through this second" rather than "at the start of this second".
func normalizeEndOfSecond(t time.Time) time.Time {
	if t.Nanosecond() == 0 {
		return t.Add(time.Second - time.Nanosecond)
	}
	return t
}

// Bar is a validated, bar-grid-rounded bar search window, with its
// derived UTC-day span.
type Bar struct {
	Symbol   string
	Period   model.Period
	Start    time.Time
	End      time.Time
	DayStart time.Time
	DayEnd   time.Time
	NumDays  int
}

// NewBar validates and normalizes a bar search window: start rounds down to
// the containing bar, end rounds to the inclusive end of the bar
// containing it.
func NewBar(symbol string, period model.Period, start, end time.Time) (Bar, error) {
	if end.Before(start) {
		return Bar{}, errs.New(errs.InvalidArgument, "Instant %s must be before %s",
			start.Format(time.RFC3339Nano), end.Format(time.RFC3339Nano))
	}

	roundedStart := roundDownToBar(start, period)
	roundedEnd := roundToInclusiveBarEnd(end, period)

	dayStart := truncateToUTCMidnight(roundedStart)
	lastDayMidnight := truncateToUTCMidnight(roundedEnd)
	dayEnd := lastDayMidnight.AddDate(0, 0, 1).Add(-time.Nanosecond)
	numDays := int(lastDayMidnight.Sub(dayStart).Hours()/24) + 1

	return Bar{
		Symbol:   symbol,
		Period:   period,
		Start:    roundedStart,
		End:      roundedEnd,
		DayStart: dayStart,
		DayEnd:   dayEnd,
		NumDays:  numDays,
	}, nil
}

// DayStartAt returns the start of day i (0 <= i < NumDays).
func (b Bar) DayStartAt(i int) time.Time {
	return b.DayStart.AddDate(0, 0, i)
}

// DayEndAt returns the inclusive end of day i (0 <= i < NumDays).
func (b Bar) DayEndAt(i int) time.Time {
	return b.DayStartAt(i).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func roundDownToBar(t time.Time, period model.Period) time.Time {
	millis := t.UnixMilli()
	durationMillis := period.DurationMillis()
	floored := (millis / durationMillis) * durationMillis
	return time.UnixMilli(floored).UTC()
}

// roundToInclusiveBarEnd advances by one period, rounds down, subtracts one
// second, then normalizes to the end of that second.
func roundToInclusiveBarEnd(t time.Time, period model.Period) time.Time {
	advanced := t.Add(period.Duration())
	floored := roundDownToBar(advanced, period)
	lastSecond := floored.Add(-time.Second)
	return normalizeEndOfSecond(lastSecond)
}

func truncateToUTCMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
