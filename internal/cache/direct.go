package cache

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/LimeMojito/trading-data-stream/internal/aggregate"
	"github.com/LimeMojito/trading-data-stream/internal/criteria"
	"github.com/LimeMojito/trading-data-stream/internal/decode"
	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/model"
	"github.com/LimeMojito/trading-data-stream/internal/pathgen"
	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

// directBarNoCache is the no-cache leaf BarCache (spec §4.F): it opens a
// combined tick stream across a day's 24 hourly paths through the byte
// tier chain, decodes each hour, and folds the ticks through a fresh
// Tick→Bar Aggregator for the criteria's period.
type directBarNoCache struct {
	bytes    ByteCache
	decoder  decode.Decoder
	streamID uuid.UUID
	source   model.Origin
	stat     *stats.SimpleStats
}

// NewDirectBarNoCache constructs the no-cache bar-computation leaf tier.
// Vendor archive loads are tagged with streamID/source (the realtime
// stream, model.Historical, by default — pass a distinct streamID for a
// backtest replay).
func NewDirectBarNoCache(bytes ByteCache, decoder decode.Decoder, streamID uuid.UUID, source model.Origin) BarCache {
	return &directBarNoCache{
		bytes:    bytes,
		decoder:  decoder,
		streamID: streamID,
		source:   source,
		stat:     stats.NewSimpleStats("direct-bars"),
	}
}

func (d *directBarNoCache) Stats() stats.Aggregator { return d.stat }

func (d *directBarNoCache) Day(ctx context.Context, c criteria.Bar, dayOfPaths []string) ([]model.Bar, error) {
	if len(dayOfPaths) != 24 {
		return nil, errs.New(errs.InvalidArgument, "Paths for Day of 1H Tick files is not 24! %d", len(dayOfPaths))
	}
	d.stat.Increment(stats.MissKey)

	var bars []model.Bar
	agg := aggregate.New(c.Period, aggregate.FuncNotifier{
		OnBarFunc: func(b model.Bar) { bars = append(bars, b) },
	})

	for _, path := range dayOfPaths {
		hourStart, symbol, err := pathgen.ParseHour(path)
		if err != nil {
			return nil, err
		}
		if hourStart.Before(c.DayStart) || hourStart.After(c.DayEnd) {
			continue
		}

		ticks, err := d.decodeHour(ctx, path, symbol, hourStart)
		if err != nil {
			return nil, err
		}

		for _, t := range ticks {
			if t.TimestampMillis < c.Start.UnixMilli() || t.TimestampMillis > c.End.UnixMilli() {
				continue
			}
			agg.OnTick(t)
		}
	}
	agg.LoadEnd()

	return bars, nil
}

func (d *directBarNoCache) decodeHour(ctx context.Context, path, symbol string, hourStart time.Time) ([]model.Tick, error) {
	src, err := d.bytes.Stream(ctx, path)
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

	return d.decoder.Decode(symbol, hourStart, raw, d.streamID, d.source)
}
