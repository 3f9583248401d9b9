// Package localstore persists timer state and completed activities as JSON
// files, and watches the state file for writes by other processes.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hkarvonen/tickd/internal/domain"
)

const (
	stateFileName      = "state.json"
	activitiesFileName = "activities.json"
)

// stateFile is the on-disk shape of the timer state. SavedAt is a writer
// revision (nanoseconds) used to tell our own writes apart from another
// process's when the watcher fires.
type stateFile struct {
	Timers          map[string]*domain.Timer `json:"timers"`
	CurrentActivity string                   `json:"current_activity,omitempty"`
	SavedAt         int64                    `json:"saved_at"`
}

// Store reads and writes the JSON state under a data directory.
type Store struct {
	dir    string
	logger *log.Logger

	mu          sync.Mutex
	lastSavedAt int64
}

func NewStore(dir string, logger *log.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

func (s *Store) StatePath() string {
	return filepath.Join(s.dir, stateFileName)
}

func (s *Store) activitiesPath() string {
	return filepath.Join(s.dir, activitiesFileName)
}

// LoadTimers reads the state file. A missing or corrupt file yields an empty
// map: persisted state must never prevent startup.
func (s *Store) LoadTimers() (map[string]*domain.Timer, error) {
	data, err := os.ReadFile(s.StatePath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]*domain.Timer{}, nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}
	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		if s.logger != nil {
			s.logger.Printf("LocalStore: state file corrupt, starting empty: %v", err)
		}
		return map[string]*domain.Timer{}, nil
	}
	if state.Timers == nil {
		state.Timers = map[string]*domain.Timer{}
	}
	return state.Timers, nil
}

// SaveTimers writes the full timer set. The write goes to a temp file and is
// renamed into place so watchers never observe a partial file. The running
// timer with the most recent start, if any, is recorded as the current
// activity.
func (s *Store) SaveTimers(timers map[string]*domain.Timer) error {
	state := stateFile{
		Timers:          timers,
		CurrentActivity: currentActivity(timers),
		SavedAt:         time.Now().UnixNano(),
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp := s.StatePath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.StatePath()); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}

	s.mu.Lock()
	s.lastSavedAt = state.SavedAt
	s.mu.Unlock()
	return nil
}

func currentActivity(timers map[string]*domain.Timer) string {
	var name string
	var best int64
	for _, t := range timers {
		if t.IsRunning && t.StartTime >= best {
			best = t.StartTime
			name = t.Name
		}
	}
	return name
}

// Revision returns the SavedAt stamp of the state file on disk, or 0 when it
// cannot be read.
func (s *Store) Revision() int64 {
	data, err := os.ReadFile(s.StatePath())
	if err != nil {
		return 0
	}
	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return 0
	}
	return state.SavedAt
}

// WasWrittenBySelf reports whether the given revision came from this store's
// own most recent save.
func (s *Store) WasWrittenBySelf(rev int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rev != 0 && rev == s.lastSavedAt
}

// AppendActivity prepends a completed activity to the activities file,
// newest first.
func (s *Store) AppendActivity(activity domain.CompletedActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var activities []domain.CompletedActivity
	data, err := os.ReadFile(s.activitiesPath())
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &activities); err != nil {
			if s.logger != nil {
				s.logger.Printf("LocalStore: activities file corrupt, rewriting: %v", err)
			}
			activities = nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("read activities file: %w", err)
	}

	activities = append([]domain.CompletedActivity{activity}, activities...)
	out, err := json.MarshalIndent(activities, "", "  ")
	if err != nil {
		return fmt.Errorf("encode activities: %w", err)
	}
	if err := os.WriteFile(s.activitiesPath(), out, 0o644); err != nil {
		return fmt.Errorf("write activities file: %w", err)
	}
	return nil
}

// LoadActivities returns all completed activities, newest first. Missing or
// corrupt files yield an empty slice.
func (s *Store) LoadActivities() ([]domain.CompletedActivity, error) {
	data, err := os.ReadFile(s.activitiesPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read activities file: %w", err)
	}
	var activities []domain.CompletedActivity
	if err := json.Unmarshal(data, &activities); err != nil {
		if s.logger != nil {
			s.logger.Printf("LocalStore: activities file corrupt: %v", err)
		}
		return nil, nil
	}
	return activities, nil
}
