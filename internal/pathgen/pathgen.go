// Package pathgen maps a (symbol, time window) to the ordered vendor
// archive paths that cover it (spec §4.A).
package pathgen

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/LimeMojito/trading-data-stream/internal/errs"
	"github.com/LimeMojito/trading-data-stream/internal/market"
)

// Generator produces hour-resolution vendor paths.
type Generator struct {
	oracle *market.Oracle
}

// NewGenerator constructs a path generator backed by the given market
// status oracle.
func NewGenerator(oracle *market.Oracle) *Generator {
	return &Generator{oracle: oracle}
}

// Path renders the vendor path template for one UTC hour.
func Path(symbol string, hourStart time.Time) string {
	h := hourStart.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%02dh_ticks.bi5",
		strings.ToUpper(symbol), h.Year(), int(h.Month())-1, h.Day(), h.Hour())
}

// HourPaths returns the market-open hourly paths covering [start, end],
// inclusive of the hours containing start and end.
func (g *Generator) HourPaths(symbol string, start, end time.Time) []string {
	var paths []string
	for hour := floorHour(start); !hour.After(floorHour(end)); hour = hour.Add(time.Hour) {
		if g.oracle.IsOpen(hour) == market.Open {
			paths = append(paths, Path(symbol, hour))
		}
	}
	return paths
}

// DayPaths returns, for each UTC day covered by [start, end], all 24
// hourly paths of that day (before market filtering — callers filter
// downstream if needed).
func (g *Generator) DayPaths(symbol string, start, end time.Time) [][]string {
	var days [][]string
	dayStart := floorDay(start)
	lastDay := floorDay(end)
	for day := dayStart; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		hours := make([]string, 0, 24)
		for h := 0; h < 24; h++ {
			hours = append(hours, Path(symbol, day.Add(time.Duration(h)*time.Hour)))
		}
		days = append(days, hours)
	}
	return days
}

// ParseHour recovers (hourStart, symbol) from a path rendered by Path,
// the inverse mapping used by consumers that only have the path string
// (the cache tiers' direct no-cache leaf, the search engine's per-hour
// decode step).
func ParseHour(path string) (time.Time, string, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 5 {
		return time.Time{}, "", errs.New(errs.InvalidArgument, "malformed vendor path %q", path)
	}
	symbol, yearStr, monthStr, dayStr, filename := parts[0], parts[1], parts[2], parts[3], parts[4]

	year, yerr := strconv.Atoi(yearStr)
	month, merr := strconv.Atoi(monthStr)
	day, derr := strconv.Atoi(dayStr)
	if yerr != nil || merr != nil || derr != nil {
		return time.Time{}, "", errs.New(errs.InvalidArgument, "malformed vendor path date %q", path)
	}

	hourStr, _, found := strings.Cut(filename, "h_ticks.bi5")
	if !found {
		return time.Time{}, "", errs.New(errs.InvalidArgument, "malformed vendor path filename %q", path)
	}
	hour, herr := strconv.Atoi(hourStr)
	if herr != nil {
		return time.Time{}, "", errs.New(errs.InvalidArgument, "malformed vendor path hour %q", path)
	}

	hourStart := time.Date(year, time.Month(month+1), day, hour, 0, 0, 0, time.UTC)
	return hourStart, symbol, nil
}

func floorHour(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), u.Hour(), 0, 0, 0, time.UTC)
}

func floorDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
