package output

import (
	"fmt"
	"math"
	"time"

	"github.com/jamesainslie/forcer/pkg/forcer/estimate"
)

// formatDuration formats a time.Duration as a human-friendly string.
func formatDuration(d time.Duration) string {
	sec := d.Seconds()
	if sec < 1 {
		return fmt.Sprintf("%.0fms", sec*1000)
	}
	if sec < 60 {
		return fmt.Sprintf("%.1fs", sec)
	}
	minutes := int(sec) / 60
	seconds := int(sec) % 60
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// formatDurationString formats a duration for structured output.
func formatDurationString(d time.Duration) string {
	if d == 0 {
		return "0s"
	}
	return d.String()
}

// formatProjection renders projected seconds in the largest fitting unit.
func formatProjection(seconds float64) string {
	if math.IsInf(seconds, 1) {
		return "forever"
	}
	value, unit := estimate.HumanizeSeconds(seconds)
	return fmt.Sprintf("%.2f %s", value, unit)
}

// finiteRate returns rate, or zero when unbounded, for encodings without infinity.
func finiteRate(rate float64) (float64, bool) {
	if math.IsInf(rate, 0) || math.IsNaN(rate) {
		return 0, true
	}
	return rate, false
}
