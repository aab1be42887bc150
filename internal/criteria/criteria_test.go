package criteria

import (
	"testing"
	"time"

	"github.com/LimeMojito/trading-data-stream/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTick_EndOfSecondNormalization(t *testing.T) {
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	whole := time.Date(2020, 1, 2, 0, 59, 59, 0, time.UTC)
	frac := time.Date(2020, 1, 2, 0, 59, 59, 999000000, time.UTC)

	wholeCrit, err := NewTick("EURUSD", start, whole)
	require.NoError(t, err)
	fracCrit, err := NewTick("EURUSD", start, frac)
	require.NoError(t, err)

	assert.True(t, wholeCrit.End.After(frac))
	assert.Equal(t, int64(999999999), int64(wholeCrit.End.Nanosecond()))
	assert.Equal(t, fracCrit.End, frac) // already sub-second, unchanged
}

func TestNewTick_RejectsEndBeforeStart(t *testing.T) {
	start := time.Date(2020, 1, 2, 1, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	_, err := NewTick("EURUSD", start, end)
	require.Error(t, err)
}

func TestNewBar_RoundsToGrid(t *testing.T) {
	start := time.Date(2020, 1, 2, 0, 2, 30, 0, time.UTC)
	end := time.Date(2020, 1, 2, 0, 7, 0, 0, time.UTC)
	c, err := NewBar("EURUSD", model.M5, start, end)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), c.Start)
	assert.True(t, c.End.After(time.Date(2020, 1, 2, 0, 9, 59, 0, time.UTC)))
	assert.True(t, c.End.Before(time.Date(2020, 1, 2, 0, 10, 0, 0, time.UTC)))
}

func TestNewBar_DaySpan(t *testing.T) {
	start := time.Date(2020, 1, 2, 23, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 3, 1, 0, 0, 0, time.UTC)
	c, err := NewBar("EURUSD", model.H1, start, end)
	require.NoError(t, err)

	assert.Equal(t, 2, c.NumDays)
	assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), c.DayStartAt(0))
	assert.Equal(t, time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC), c.DayStartAt(1))
}
