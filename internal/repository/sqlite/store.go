// Package sqlite is the tickd-server persistence layer: mirrored timer rows
// and completed activities keyed by principal.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hkarvonen/tickd/internal/mirror"
)

const schema = `
CREATE TABLE IF NOT EXISTS multi_timers (
	principal_id TEXT NOT NULL,
	timer_name   TEXT NOT NULL,
	id           TEXT NOT NULL,
	start_time   TEXT,
	elapsed_ms   INTEGER NOT NULL DEFAULT 0,
	is_running   INTEGER NOT NULL DEFAULT 0,
	laps         TEXT,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL,
	PRIMARY KEY (principal_id, timer_name)
);

CREATE TABLE IF NOT EXISTS activities (
	id               TEXT PRIMARY KEY,
	principal_id     TEXT NOT NULL,
	activity_name    TEXT NOT NULL,
	start_time       TEXT NOT NULL,
	end_time         TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL,
	color            TEXT,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activities_principal
	ON activities (principal_id, created_at DESC);
`

// Store wraps the server database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema. WAL keeps concurrent reader/writer behavior sane.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ListTimers returns all timer rows for a principal.
func (s *Store) ListTimers(ctx context.Context, principal string) ([]mirror.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timer_name, start_time, elapsed_ms, is_running, laps, created_at, updated_at
		FROM multi_timers WHERE principal_id = ? ORDER BY timer_name`, principal)
	if err != nil {
		return nil, fmt.Errorf("query timers: %w", err)
	}
	defer rows.Close()

	var records []mirror.Record
	for rows.Next() {
		var rec mirror.Record
		var startTime, laps sql.NullString
		var isRunning int
		var createdAt, updatedAt string
		if err := rows.Scan(&rec.ID, &rec.TimerName, &startTime, &rec.ElapsedMs,
			&isRunning, &laps, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan timer row: %w", err)
		}
		rec.IsRunning = isRunning != 0
		if startTime.Valid && startTime.String != "" {
			t, err := time.Parse(time.RFC3339Nano, startTime.String)
			if err != nil {
				return nil, fmt.Errorf("parse start_time: %w", err)
			}
			rec.StartTime = &t
		}
		if laps.Valid && laps.String != "" {
			if err := json.Unmarshal([]byte(laps.String), &rec.Laps); err != nil {
				return nil, fmt.Errorf("decode laps: %w", err)
			}
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpsertTimers writes the given records for a principal in one transaction,
// replacing existing rows by (principal, timer name).
func (s *Store) UpsertTimers(ctx context.Context, principal string, records []mirror.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO multi_timers (principal_id, timer_name, id, start_time, elapsed_ms, is_running, laps, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (principal_id, timer_name) DO UPDATE SET
			id = excluded.id,
			start_time = excluded.start_time,
			elapsed_ms = excluded.elapsed_ms,
			is_running = excluded.is_running,
			laps = excluded.laps,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var startTime any
		if rec.StartTime != nil {
			startTime = rec.StartTime.UTC().Format(time.RFC3339Nano)
		}
		var laps any
		if len(rec.Laps) > 0 {
			encoded, err := json.Marshal(rec.Laps)
			if err != nil {
				return fmt.Errorf("encode laps: %w", err)
			}
			laps = string(encoded)
		}
		running := 0
		if rec.IsRunning {
			running = 1
		}
		if _, err := stmt.ExecContext(ctx, principal, rec.TimerName, rec.ID,
			startTime, rec.ElapsedMs, running, laps,
			rec.CreatedAt.UTC().Format(time.RFC3339Nano),
			rec.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("upsert timer %q: %w", rec.TimerName, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteTimer removes one timer row. Missing rows are not an error.
func (s *Store) DeleteTimer(ctx context.Context, principal, name string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM multi_timers WHERE principal_id = ? AND timer_name = ?`,
		principal, name); err != nil {
		return fmt.Errorf("delete timer %q: %w", name, err)
	}
	return nil
}

// InsertActivity stores one completed activity.
func (s *Store) InsertActivity(ctx context.Context, principal string, rec mirror.ActivityRecord) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, principal_id, activity_name, start_time, end_time, duration_minutes, color, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, principal, rec.ActivityName,
		rec.StartTime.UTC().Format(time.RFC3339Nano),
		rec.EndTime.UTC().Format(time.RFC3339Nano),
		rec.DurationMinutes, rec.Color,
		rec.CreatedAt.UTC().Format(time.RFC3339Nano),
		rec.UpdatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// ListActivities returns a principal's completed activities, newest first.
func (s *Store) ListActivities(ctx context.Context, principal string) ([]mirror.ActivityRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, activity_name, start_time, end_time, duration_minutes, color, created_at, updated_at
		FROM activities WHERE principal_id = ? ORDER BY created_at DESC`, principal)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var records []mirror.ActivityRecord
	for rows.Next() {
		var rec mirror.ActivityRecord
		var startTime, endTime, createdAt, updatedAt string
		var color sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ActivityName, &startTime, &endTime,
			&rec.DurationMinutes, &color, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan activity row: %w", err)
		}
		rec.Color = color.String
		if rec.StartTime, err = time.Parse(time.RFC3339Nano, startTime); err != nil {
			return nil, fmt.Errorf("parse start_time: %w", err)
		}
		if rec.EndTime, err = time.Parse(time.RFC3339Nano, endTime); err != nil {
			return nil, fmt.Errorf("parse end_time: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
