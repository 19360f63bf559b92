package track

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as a human-readable string like
// "1h 40m", "45m" or "30s".
func FormatDuration(d time.Duration) string {
	seconds := int64(d / time.Second)
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// FormatHHMM formats a duration as HH:MM, used in "Time Tracked" lines.
func FormatHHMM(d time.Duration) string {
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatClock formats a point in time as HH:MM in its own location.
func FormatClock(t time.Time) string {
	return t.Format("15:04")
}
