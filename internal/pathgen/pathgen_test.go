package pathgen

import (
	"testing"
	"time"

	"github.com/LimeMojito/trading-data-stream/internal/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPath_Template(t *testing.T) {
	hour := time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "EURUSD/2020/00/02/00h_ticks.bi5", Path("eurusd", hour))

	dec := time.Date(2020, time.December, 31, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "EURUSD/2020/11/31/23h_ticks.bi5", Path("eurusd", dec))
}

func TestHourPaths_FiltersClosedHours(t *testing.T) {
	g := NewGenerator(market.NewOracle())
	start := time.Date(2020, 1, 4, 0, 0, 0, 0, time.UTC)  // Saturday, closed all day
	end := time.Date(2020, 1, 5, 23, 0, 0, 0, time.UTC)   // Sunday, opens late
	paths := g.HourPaths("EURUSD", start, end)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		assert.NotContains(t, p, "2020/00/04") // Saturday entirely closed
	}
}

func TestDayPaths_Always24PerDay(t *testing.T) {
	g := NewGenerator(market.NewOracle())
	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC)
	days := g.DayPaths("EURUSD", start, end)
	require.Len(t, days, 2)
	for _, day := range days {
		assert.Len(t, day, 24)
	}
}
