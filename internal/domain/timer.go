// Package domain holds the stopwatch entities. It has no dependencies on
// other packages.
package domain

import "time"

// Status is the lifecycle status of a Timer.
type Status string

const (
	StatusRunning Status = "running"
	StatusPaused  Status = "paused"
	StatusStopped Status = "stopped"
)

// Lap is one recorded split for a running timer. TotalMs is cumulative from
// the start of the run; SplitMs is the delta from the previous lap.
type Lap struct {
	Number    int   `json:"number"`
	SplitMs   int64 `json:"split_ms"`
	TotalMs   int64 `json:"total_ms"`
	Timestamp int64 `json:"timestamp"`
}

// Timer is one named activity stopwatch.
//
// StartTime is adjusted on every start/resume so that now-StartTime equals
// the accumulated elapsed time while the timer runs. ElapsedMs holds the
// frozen elapsed time whenever IsRunning is false. Exactly one of the two
// representations is live at any instant.
type Timer struct {
	Name       string `json:"name"`
	StartTime  int64  `json:"start_time"` // ms since epoch; 0 when no run in progress
	ElapsedMs  int64  `json:"elapsed_ms"`
	IsRunning  bool   `json:"is_running"`
	Laps       []Lap  `json:"laps,omitempty"`
	CreatedAt  int64  `json:"created_at"`
	LastUpdate int64  `json:"last_update"` // ms; bumped on every local mutation, used for last-write-wins
	RemoteID   string `json:"remote_id,omitempty"`
}

// Clone returns a deep copy, so callers can hold a snapshot outside the
// service mutex.
func (t *Timer) Clone() *Timer {
	c := *t
	if t.Laps != nil {
		c.Laps = make([]Lap, len(t.Laps))
		copy(c.Laps, t.Laps)
	}
	return &c
}

// CompletedActivity is the durable record emitted when a timer is completed.
// EndTime-StartTime equals the elapsed time at the moment of completion, so
// paused periods never inflate the recorded duration.
type CompletedActivity struct {
	ID              string    `json:"id"`
	ActivityName    string    `json:"activity_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int64     `json:"duration_minutes"`
}
