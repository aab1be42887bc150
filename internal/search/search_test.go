package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LimeMojito/trading-data-stream/internal/cache"
	"github.com/LimeMojito/trading-data-stream/internal/criteria"
	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/market"
	"github.com/LimeMojito/trading-data-stream/internal/model"
	"github.com/LimeMojito/trading-data-stream/internal/pathgen"
	"github.com/LimeMojito/trading-data-stream/internal/stats"
)

type fakeByteCache struct{}

func (fakeByteCache) Stream(ctx context.Context, path string) (cache.ByteSource, error) {
	return nil, errs.New(errs.NotFound, "no bytes for %s", path)
}
func (fakeByteCache) Stats() stats.Aggregator { return stats.NewSimpleStats("fake-bytes") }

type fakeDecoder struct{}

func (fakeDecoder) Decode(symbol string, hourStart time.Time, raw []byte, streamID uuid.UUID, source model.Origin) ([]model.Tick, error) {
	return nil, nil
}

type fakeBarCache struct {
	byDay map[string][]model.Bar
}

func (f fakeBarCache) Day(ctx context.Context, c criteria.Bar, dayOfPaths []string) ([]model.Bar, error) {
	return f.byDay[c.DayStart.Format(time.RFC3339)], nil
}
func (fakeBarCache) Stats() stats.Aggregator { return stats.NewSimpleStats("fake-bars") }

func newEngine(barCache cache.BarCache) *Engine {
	oracle := market.NewOracle()
	gen := pathgen.NewGenerator(oracle)
	return New(gen, fakeByteCache{}, barCache, fakeDecoder{}, uuid.Nil, model.Historical)
}

func TestEngine_Search_RejectsBeforeBeginningOfTime(t *testing.T) {
	e := newEngine(fakeBarCache{})
	tooEarly := time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := e.Search(context.Background(), "EURUSD", tooEarly, tooEarly.Add(time.Hour), nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestEngine_Search_EmptyWhenNoBytes(t *testing.T) {
	e := newEngine(fakeBarCache{})
	start := time.Date(2020, 6, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	s, err := e.Search(context.Background(), "EURUSD", start, end, nil)
	require.NoError(t, err)
	assert.False(t, s.HasNext())
}

func TestEngine_AggregateFromTicks_InvariantViolation(t *testing.T) {
	dayStart := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	tooMany := make([]model.Bar, 25)
	for i := range tooMany {
		tooMany[i] = model.Bar{StartMillis: dayStart.Add(time.Duration(i) * time.Hour).UnixMilli(), Period: model.H1, Symbol: "EURUSD"}
	}
	barCache := fakeBarCache{byDay: map[string][]model.Bar{dayStart.Format(time.RFC3339): tooMany}}
	e := newEngine(barCache)

	s, err := e.AggregateFromTicks(context.Background(), "EURUSD", model.H1, dayStart, dayStart.Add(23*time.Hour), nil)
	require.NoError(t, err)
	require.True(t, s.HasNext())
	_, err = s.Next()
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.IllegalState))
}

func TestEngine_AggregateForwardCount_ExhaustedOnSparseRegion(t *testing.T) {
	e := newEngine(fakeBarCache{})
	e.SetBeginningOfTime(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	start := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := e.AggregateForwardCount(context.Background(), "EURUSD", model.H1, start, 5, nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Exhausted))
}
