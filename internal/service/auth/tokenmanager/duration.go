package tokenmanager

import (
	"math"
	"regexp"
	"strconv"
	"time"
)

// Lifetime used when duration string can't be parsed
const fallbackDuration = 7 * 24 * time.Hour

var durationRe = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseDuration parses lifetimes like "30s", "15m", "12h" or "7d"
// Anything else (empty string included) falls back to 7 days and never fails
func ParseDuration(value string) time.Duration {
	match := durationRe.FindStringSubmatch(value)
	if match == nil {
		return fallbackDuration
	}

	n, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return fallbackDuration
	}

	var unit time.Duration
	switch match[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}

	if n > int64(math.MaxInt64/unit) {
		return fallbackDuration
	}

	return time.Duration(n) * unit
}
