// Package utils holds small formatting helpers shared by the CLI and the web API.
package utils

import (
	"fmt"
	"time"
)

// FormatRoundedUnit renders a duration in its largest whole unit, e.g. "42s",
// "5m", "3h" or "2d". Negative durations are formatted by magnitude.
func FormatRoundedUnit(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int64(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int64(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int64(d/time.Hour))
	}
	return fmt.Sprintf("%dd", int64(d/(24*time.Hour)))
}

// Ago formats the time elapsed since t relative to now, e.g. "5m ago"
func Ago(t, now time.Time) string {
	return FormatRoundedUnit(now.Sub(t)) + " ago"
}
