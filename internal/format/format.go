// Package format provides pure display-formatting helpers for volumes,
// probabilities, and event end dates.
package format

import (
	"fmt"
	"time"

	"polyterm/internal/domain"
)

// Volume formats a traded-volume figure with a dollar sign and B/M/K
// suffixes: $1.2B, $45.3M, $850.
func Volume(v domain.Volume) string {
	n := v.Float64()
	switch {
	case n >= 1e9:
		return fmt.Sprintf("$%.1fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("$%.1fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("$%.1fK", n/1e3)
	default:
		return fmt.Sprintf("$%.0f", n)
	}
}

// Probability formats a 0–1 outcome price as a percentage: "42.0%".
func Probability(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// EndDate formats an RFC 3339 end-date string as "Jan 2, 2006". Unparseable
// or empty values are returned as "-" rather than an error; a missing end
// date is cosmetic, never fatal.
func EndDate(s string) string {
	if s == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return "-"
	}
	return t.Format("Jan 2, 2006")
}

// EndDateMillis formats a Unix-millisecond end timestamp (the trending
// feed's representation) as "Jan 2, 2006".
func EndDateMillis(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return time.UnixMilli(ms).UTC().Format("Jan 2, 2006")
}
