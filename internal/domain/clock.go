package domain

import (
	"fmt"
	"time"
)

// CurrentElapsed returns the live elapsed time for a timer at the given
// instant: now-StartTime while running, the frozen ElapsedMs otherwise.
func CurrentElapsed(t *Timer, now time.Time) int64 {
	if t.IsRunning {
		return now.UnixMilli() - t.StartTime
	}
	return t.ElapsedMs
}

// StatusOf derives the display status from the timer fields.
func StatusOf(t *Timer) Status {
	switch {
	case t.IsRunning:
		return StatusRunning
	case t.ElapsedMs > 0:
		return StatusPaused
	default:
		return StatusStopped
	}
}

// FormatElapsed renders milliseconds as HH:MM:SS.CC once at least an hour
// has accumulated, MM:SS.CC below that. The trailing pair is centiseconds.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	centis := (ms % 1000) / 10
	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%02d", hours, minutes, seconds, centis)
	}
	return fmt.Sprintf("%02d:%02d.%02d", minutes, seconds, centis)
}
