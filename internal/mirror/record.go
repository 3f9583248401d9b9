// Package mirror talks to the tickd sync server. Records are the wire shape
// shared by the client and the server.
package mirror

import (
	"time"

	"github.com/hkarvonen/tickd/internal/domain"
)

// Record mirrors one timer row on the sync server.
type Record struct {
	ID        string       `json:"id"`
	TimerName string       `json:"timer_name"`
	StartTime *time.Time   `json:"start_time,omitempty"`
	ElapsedMs int64        `json:"elapsed_time_ms"`
	IsRunning bool         `json:"is_running"`
	Laps      []domain.Lap `json:"laps,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// ActivityRecord mirrors one completed activity row.
type ActivityRecord struct {
	ID              string    `json:"id"`
	ActivityName    string    `json:"activity_name"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int64     `json:"duration_minutes"`
	Color           string    `json:"color,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RecordFromTimer converts a local timer snapshot to its wire shape.
func RecordFromTimer(t *domain.Timer) Record {
	r := Record{
		ID:        t.RemoteID,
		TimerName: t.Name,
		ElapsedMs: t.ElapsedMs,
		IsRunning: t.IsRunning,
		Laps:      t.Laps,
		CreatedAt: time.UnixMilli(t.CreatedAt).UTC(),
		UpdatedAt: time.UnixMilli(t.LastUpdate).UTC(),
	}
	if t.StartTime > 0 {
		st := time.UnixMilli(t.StartTime).UTC()
		r.StartTime = &st
	}
	return r
}

// Timer converts a wire record back into the local entity.
func (r Record) Timer() *domain.Timer {
	t := &domain.Timer{
		Name:       r.TimerName,
		ElapsedMs:  r.ElapsedMs,
		IsRunning:  r.IsRunning,
		Laps:       r.Laps,
		CreatedAt:  r.CreatedAt.UnixMilli(),
		LastUpdate: r.UpdatedAt.UnixMilli(),
		RemoteID:   r.ID,
	}
	if r.StartTime != nil {
		t.StartTime = r.StartTime.UnixMilli()
	}
	return t
}

// ActivityFromCompleted converts a completed activity to its wire shape.
func ActivityFromCompleted(a domain.CompletedActivity, color string, now time.Time) ActivityRecord {
	return ActivityRecord{
		ID:              a.ID,
		ActivityName:    a.ActivityName,
		StartTime:       a.StartTime.UTC(),
		EndTime:         a.EndTime.UTC(),
		DurationMinutes: a.DurationMinutes,
		Color:           color,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
}
