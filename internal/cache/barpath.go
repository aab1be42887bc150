package cache

import (
	"fmt"
	"strings"

	"github.com/LimeMojito/trading-data-stream/internal/criteria"
)

// BarPath derives the cache key for a day's worth of bars from the bar
// criteria and the first hourly vendor path of that day (the "day
// anchor"), preserving wire/storage compatibility with the vendor path's
// date components: "bars/<PERIOD>/<SYMBOL>/<YYYY>/<MM0>/<DD>.json".
func BarPath(c criteria.Bar, firstDayPath string) (string, error) {
	parts := strings.Split(firstDayPath, "/")
	if len(parts) != 5 {
		return "", fmt.Errorf("malformed vendor path %q: expected 5 segments", firstDayPath)
	}
	symbol, year, month, day := parts[0], parts[1], parts[2], parts[3]
	return fmt.Sprintf("bars/%s/%s/%s/%s/%s.json", c.Period, symbol, year, month, day), nil
}
