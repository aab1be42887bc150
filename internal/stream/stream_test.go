package stream

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/market"
	"github.com/LimeMojito/trading-data-stream/internal/model"
)

func drain[T any](t *testing.T, s Stream[T]) []T {
	t.Helper()
	var out []T
	for s.HasNext() {
		item, err := s.Next()
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}

func TestFromList_VisitInvokedPerElement(t *testing.T) {
	var visited []int
	s := FromList([]int{1, 2, 3}, func(v int) { visited = append(visited, v) })
	out := drain(t, s)
	assert.Equal(t, []int{1, 2, 3}, out)
	assert.Equal(t, []int{1, 2, 3}, visited)
	assert.NoError(t, s.Close())
}

func TestCombine_LazilyOpensAndFilters(t *testing.T) {
	subs := [][]int{{1, 2}, {3, 4}, {5, 6}}
	index := 0
	opened := 0
	open := func() (Stream[int], bool, error) {
		if index >= len(subs) {
			return nil, false, nil
		}
		opened++
		s := FromList(subs[index], nil)
		index++
		return s, true, nil
	}
	filter := func(v int) bool { return v%2 == 0 }

	combined := Combine(open, filter)
	out := drain(t, combined)
	assert.Equal(t, []int{2, 4, 6}, out)
	assert.Equal(t, 3, opened)
	assert.NoError(t, combined.Close())
}

func TestCombine_ClosesExhaustedSubStreams(t *testing.T) {
	closed := 0
	trackedList := func(items []int) Stream[int] {
		base := FromList(items, nil)
		return &closeTrackingStream[int]{Stream: base, onClose: func() { closed++ }}
	}
	subs := []Stream[int]{trackedList([]int{1}), trackedList([]int{2})}
	index := 0
	open := func() (Stream[int], bool, error) {
		if index >= len(subs) {
			return nil, false, nil
		}
		s := subs[index]
		index++
		return s, true, nil
	}

	out := drain(t, Combine(open, nil))
	assert.Equal(t, []int{1, 2}, out)
	assert.Equal(t, 2, closed)
}

type closeTrackingStream[T any] struct {
	Stream[T]
	onClose func()
}

func (c *closeTrackingStream[T]) Close() error {
	c.onClose()
	return c.Stream.Close()
}

func TestJSONArray_RoundTrip(t *testing.T) {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC).UnixMilli()
	bars := []model.Bar{
		{StartMillis: start, StreamID: uuid.Nil, Period: model.H1, Symbol: "EURUSD", Open: 100, High: 110, Low: 90, Close: 105, Source: model.Historical},
		{StartMillis: start + model.H1.DurationMillis(), StreamID: uuid.Nil, Period: model.H1, Symbol: "EURUSD", Open: 105, High: 112, Low: 100, Close: 108, Source: model.Live},
	}

	var buf bytes.Buffer
	require.NoError(t, ToJSONArray(&buf, FromList(bars, nil)))

	decoded, err := FromJSONArray[model.Bar](&buf, nil)
	require.NoError(t, err)
	out := drain(t, decoded)
	require.Len(t, out, 2)
	assert.True(t, bars[0].Equal(out[0]))
	assert.True(t, bars[1].Equal(out[1]))
}

func TestJSONArray_EmptyArray(t *testing.T) {
	decoded, err := FromJSONArray[model.Bar](bytes.NewReader([]byte("[]")), nil)
	require.NoError(t, err)
	out := drain(t, decoded)
	assert.Empty(t, out)
}

func TestTickToBar_BuffersOnFirstNext(t *testing.T) {
	base := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	ticks := []model.Tick{
		{TimestampMillis: base.UnixMilli(), Symbol: "EURUSD", StreamID: uuid.Nil, BidPoints: 100, AskPoints: 102, Source: model.Historical},
		{TimestampMillis: base.Add(time.Hour).UnixMilli(), Symbol: "EURUSD", StreamID: uuid.Nil, BidPoints: 200, AskPoints: 202, Source: model.Historical},
	}

	var visited []model.Bar
	barStream := TickToBar(nil, model.H1, FromList(ticks, nil), func(b model.Bar) { visited = append(visited, b) })
	out := drain(t, barStream)
	require.Len(t, out, 2)
	assert.Len(t, visited, 2)
	assert.NoError(t, barStream.Close())
}

func TestTickToBar_ValidatorRejectsTick(t *testing.T) {
	ticks := []model.Tick{{TimestampMillis: -1, Symbol: "EURUSD"}}
	failing := func(t model.Tick) error {
		if t.TimestampMillis < 0 {
			return errs.New(errs.InvalidArgument, "bad tick")
		}
		return nil
	}
	barStream := TickToBar(failing, model.H1, FromList(ticks, nil), nil)
	assert.False(t, barStream.HasNext())
}

func TestMaterializeForwards_CollectsAcrossSparseWindows(t *testing.T) {
	beginningOfTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	calls := 0
	search := func(s, e time.Time) ([]model.Bar, error) {
		calls++
		if calls == 1 {
			return nil, nil
		}
		return []model.Bar{
			{StartMillis: s.UnixMilli(), Period: model.H1, Symbol: "EURUSD"},
			{StartMillis: s.Add(time.Hour).UnixMilli(), Period: model.H1, Symbol: "EURUSD"},
		}, nil
	}
	startOf := func(b model.Bar) time.Time { return time.UnixMilli(b.StartMillis).UTC() }

	s, err := MaterializeForwards(beginningOfTime, now, start, 2, model.H1.Duration(), search, startOf, nil)
	require.NoError(t, err)
	out := drain(t, s)
	assert.Len(t, out, 2)
	assert.Equal(t, 2, calls)
}

func TestMaterializeForwards_ExhaustedAfterNoProgressSpan(t *testing.T) {
	beginningOfTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	search := func(s, e time.Time) ([]model.Bar, error) { return nil, nil }
	startOf := func(b model.Bar) time.Time { return time.UnixMilli(b.StartMillis).UTC() }

	_, err := MaterializeForwards(beginningOfTime, now, start, 2, model.H1.Duration(), search, startOf, nil)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.Exhausted))
}

// TestMaterializeForwards_SurvivesWeekendGap reproduces spec.md §8
// scenario 4 literally: a Saturday start with count=10 and a 10h planned
// window splits the Fri-22:00-UTC close -> Sun-22:00-UTC open weekend
// closure across two consecutive empty searches before the third window
// (which contains the Sunday reopen) ever runs. The no-progress
// safeguard must not abort before that third search executes.
func TestMaterializeForwards_SurvivesWeekendGap(t *testing.T) {
	beginningOfTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2020, 1, 4, 18, 0, 0, 0, time.UTC)
	oracle := market.NewOracle()

	search := func(s, e time.Time) ([]model.Bar, error) {
		var bars []model.Bar
		for h := s.Truncate(time.Hour); !h.After(e); h = h.Add(time.Hour) {
			if oracle.IsOpen(h) == market.Open {
				bars = append(bars, model.Bar{StartMillis: h.UnixMilli(), Period: model.H1, Symbol: "EURUSD"})
			}
		}
		return bars, nil
	}
	startOf := func(b model.Bar) time.Time { return time.UnixMilli(b.StartMillis).UTC() }

	s, err := MaterializeForwards(beginningOfTime, now, start, 10, model.H1.Duration(), search, startOf, nil)
	require.NoError(t, err)
	out := drain(t, s)
	require.Len(t, out, 10)
	assert.Equal(t, time.Date(2020, 1, 5, 22, 0, 0, 0, time.UTC), startOf(out[0]))
	assert.Equal(t, time.Date(2020, 1, 6, 7, 0, 0, 0, time.UTC), startOf(out[len(out)-1]))
}

func TestMaterializeBackwards_TrimsToCountFromEnd(t *testing.T) {
	beginningOfTime := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC)

	search := func(s, e time.Time) ([]model.Bar, error) {
		return []model.Bar{
			{StartMillis: s.UnixMilli(), Period: model.H1, Symbol: "EURUSD"},
			{StartMillis: s.Add(time.Hour).UnixMilli(), Period: model.H1, Symbol: "EURUSD"},
			{StartMillis: s.Add(2 * time.Hour).UnixMilli(), Period: model.H1, Symbol: "EURUSD"},
		}, nil
	}
	startOf := func(b model.Bar) time.Time { return time.UnixMilli(b.StartMillis).UTC() }

	s, err := MaterializeBackwards(beginningOfTime, end, 2, model.H1.Duration(), search, startOf, nil)
	require.NoError(t, err)
	out := drain(t, s)
	require.Len(t, out, 2)
	assert.True(t, out[0].StartMillis < out[1].StartMillis)
}
