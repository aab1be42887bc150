// Package search implements the Search Engine (spec §4.J): tick search
// and bar search over a window, plus forward/backward count-based
// extension across no-data spans, all guarded by a mutable
// beginning-of-time bound.
package search

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LimeMojito/trading-data-stream/internal/cache"
	"github.com/LimeMojito/trading-data-stream/internal/criteria"
	"github.com/LimeMojito/trading-data-stream/internal/decode"
	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/model"
	"github.com/LimeMojito/trading-data-stream/internal/pathgen"
	"github.com/LimeMojito/trading-data-stream/internal/stream"
)

// defaultBeginningOfTime is the vendor archive's earliest guaranteed data
// point; requests before it are rejected rather than silently returning
// nothing.
var defaultBeginningOfTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Engine composes the path generator, cache chain, and decoder into the
// tick/bar query surface.
type Engine struct {
	paths    *pathgen.Generator
	bytes    cache.ByteCache
	bars     cache.BarCache
	decoder  decode.Decoder
	streamID uuid.UUID
	source   model.Origin

	mu              sync.RWMutex
	beginningOfTime time.Time
}

// New constructs a Search Engine. streamID/source tag the ticks/bars it
// produces (uuid.Nil/model.Historical for the realtime vendor archive
// stream; a distinct streamID for a backtest replay).
func New(paths *pathgen.Generator, bytes cache.ByteCache, bars cache.BarCache, decoder decode.Decoder, streamID uuid.UUID, source model.Origin) *Engine {
	return &Engine{
		paths:           paths,
		bytes:           bytes,
		bars:            bars,
		decoder:         decoder,
		streamID:        streamID,
		source:          source,
		beginningOfTime: defaultBeginningOfTime,
	}
}

// SetBeginningOfTime overrides the bound guarding every entry point.
func (e *Engine) SetBeginningOfTime(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.beginningOfTime = t
}

func (e *Engine) BeginningOfTime() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.beginningOfTime
}

func (e *Engine) checkBound(field string, instant time.Time) error {
	bound := e.BeginningOfTime()
	if instant.Before(bound) {
		return errs.New(errs.InvalidArgument, "%s %s must be after %s",
			field, instant.Format(time.RFC3339Nano), bound.Format(time.RFC3339Nano))
	}
	return nil
}

// Search performs the tick search: path-generate, open per-hour decoded
// tick streams, and combine with a [start, end] trim filter.
func (e *Engine) Search(ctx context.Context, symbol string, start, end time.Time, visit stream.VisitFunc[model.Tick]) (stream.Stream[model.Tick], error) {
	if err := e.checkBound("Start", start); err != nil {
		return nil, err
	}
	if err := e.checkBound("End", end); err != nil {
		return nil, err
	}
	c, err := criteria.NewTick(symbol, start, end)
	if err != nil {
		return nil, err
	}

	paths := e.paths.HourPaths(c.Symbol, c.Start, c.End)
	startMillis := c.Start.UnixMilli()
	endMillis := c.End.UnixMilli()

	index := 0
	open := func() (stream.Stream[model.Tick], bool, error) {
		if index >= len(paths) {
			return nil, false, nil
		}
		path := paths[index]
		index++
		ticks, err := e.decodeHour(ctx, c.Symbol, path)
		if err != nil {
			return nil, false, err
		}
		return stream.FromList(ticks, nil), true, nil
	}

	filter := func(t model.Tick) bool {
		if t.TimestampMillis < startMillis || t.TimestampMillis > endMillis {
			return false
		}
		if visit != nil {
			visit(t)
		}
		return true
	}

	return stream.Combine(open, filter), nil
}

func (e *Engine) decodeHour(ctx context.Context, symbol, path string) ([]model.Tick, error) {
	hourStart, _, err := pathgen.ParseHour(path)
	if err != nil {
		return nil, err
	}

	src, err := e.bytes.Stream(ctx, path)
	if err != nil {
		if errs.Is(err, errs.NotFound) {
			return nil, nil
		}
		return nil, err
	}
	defer src.Close()

	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "read tick bytes for %s", path)
	}

	return e.decoder.Decode(symbol, hourStart, raw, e.streamID, e.source)
}

// AggregateFromTicks performs the bar search window form: per-day bar
// lists from the bar cache chain, combined and trimmed to [start, end],
// with the per-day bar-count invariant enforced.
func (e *Engine) AggregateFromTicks(ctx context.Context, symbol string, period model.Period, start, end time.Time, visit stream.VisitFunc[model.Bar]) (stream.Stream[model.Bar], error) {
	if err := e.checkBound("Start", start); err != nil {
		return nil, err
	}
	if err := e.checkBound("End", end); err != nil {
		return nil, err
	}
	c, err := criteria.NewBar(symbol, period, start, end)
	if err != nil {
		return nil, err
	}

	maxPerDay := period.PeriodsIn(model.D1)
	startMillis := c.Start.UnixMilli()
	endMillis := c.End.UnixMilli()

	dayIndex := 0
	open := func() (stream.Stream[model.Bar], bool, error) {
		if dayIndex >= c.NumDays {
			return nil, false, nil
		}
		i := dayIndex
		dayIndex++

		dayOfPaths := e.paths.DayPaths(c.Symbol, c.DayStartAt(i), c.DayStartAt(i))[0]
		dayCriteria, err := criteria.NewBar(c.Symbol, c.Period, c.DayStartAt(i), c.DayEndAt(i))
		if err != nil {
			return nil, false, err
		}

		bars, err := e.bars.Day(ctx, dayCriteria, dayOfPaths)
		if err != nil {
			return nil, false, err
		}
		if len(bars) > maxPerDay {
			return nil, false, errs.New(errs.IllegalState, "Unexpected number of bars %d", len(bars))
		}
		return stream.FromList(bars, nil), true, nil
	}

	filter := func(b model.Bar) bool {
		if b.StartMillis < startMillis || b.StartMillis > endMillis {
			return false
		}
		if visit != nil {
			visit(b)
		}
		return true
	}

	return stream.Combine(open, filter), nil
}

// AggregateForwardCount emits the first count bars whose start is >=
// start (spec §4.J count-based extension, forward direction).
func (e *Engine) AggregateForwardCount(ctx context.Context, symbol string, period model.Period, start time.Time, count int, visit stream.VisitFunc[model.Bar]) (stream.Stream[model.Bar], error) {
	if err := e.checkBound("Start", start); err != nil {
		return nil, err
	}

	windowSearch := func(s, e2 time.Time) ([]model.Bar, error) {
		return e.drainWindow(ctx, symbol, period, s, e2)
	}
	startOf := func(b model.Bar) time.Time { return time.UnixMilli(b.StartMillis).UTC() }

	return stream.MaterializeForwards(e.BeginningOfTime(), time.Now().UTC(), start, count, period.Duration(), windowSearch, startOf, visit)
}

// AggregateBackwardCount emits the last count bars whose start is < end
// (spec §4.J count-based extension, backward direction).
func (e *Engine) AggregateBackwardCount(ctx context.Context, symbol string, period model.Period, count int, end time.Time, visit stream.VisitFunc[model.Bar]) (stream.Stream[model.Bar], error) {
	if err := e.checkBound("End", end); err != nil {
		return nil, err
	}

	windowSearch := func(s, e2 time.Time) ([]model.Bar, error) {
		return e.drainWindow(ctx, symbol, period, s, e2)
	}
	startOf := func(b model.Bar) time.Time { return time.UnixMilli(b.StartMillis).UTC() }

	return stream.MaterializeBackwards(e.BeginningOfTime(), end, count, period.Duration(), windowSearch, startOf, visit)
}

// drainWindow performs one bounded window search, clamping to the
// beginning-of-time bound, and fully materializes the resulting bars —
// the building block the count-based extenders issue repeatedly.
func (e *Engine) drainWindow(ctx context.Context, symbol string, period model.Period, s, end time.Time) ([]model.Bar, error) {
	bound := e.BeginningOfTime()
	if s.Before(bound) {
		s = bound
	}
	if end.Before(s) {
		return nil, nil
	}

	bars, err := e.AggregateFromTicks(ctx, symbol, period, s, end, nil)
	if err != nil {
		return nil, err
	}

	var out []model.Bar
	for bars.HasNext() {
		b, err := bars.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
