package app

import (
	"sort"
	"strings"

	"github.com/hkarvonen/tickd/internal/domain"
)

// TimerStore holds the in-memory timers keyed by normalized name. Names are
// unique case-insensitively; the casing of the first occurrence is preserved
// for display. Not safe for concurrent use; the Service serializes access.
type TimerStore struct {
	timers map[string]*domain.Timer
}

func NewTimerStore() *TimerStore {
	return &TimerStore{timers: make(map[string]*domain.Timer)}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetOrCreate returns the timer for name, creating a zeroed one if absent.
// A lookup under any casing of an existing name returns the existing timer.
func (s *TimerStore) GetOrCreate(name string, nowMs int64) *domain.Timer {
	key := normalizeName(name)
	if t, ok := s.timers[key]; ok {
		return t
	}
	t := &domain.Timer{
		Name:       strings.TrimSpace(name),
		CreatedAt:  nowMs,
		LastUpdate: nowMs,
	}
	s.timers[key] = t
	return t
}

// Put inserts or replaces a timer under its normalized name.
func (s *TimerStore) Put(t *domain.Timer) {
	s.timers[normalizeName(t.Name)] = t
}

// Get returns the timer for name, or nil.
func (s *TimerStore) Get(name string) *domain.Timer {
	return s.timers[normalizeName(name)]
}

// Names returns the display names sorted case-insensitively.
func (s *TimerStore) Names() []string {
	names := make([]string, 0, len(s.timers))
	for _, t := range s.timers {
		names = append(names, t.Name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// Remove deletes the timer under any casing of name. It reports whether a
// timer was present.
func (s *TimerStore) Remove(name string) bool {
	key := normalizeName(name)
	if _, ok := s.timers[key]; !ok {
		return false
	}
	delete(s.timers, key)
	return true
}

// Replace swaps the whole timer set, re-normalizing the keys.
func (s *TimerStore) Replace(timers map[string]*domain.Timer) {
	next := make(map[string]*domain.Timer, len(timers))
	for _, t := range timers {
		next[normalizeName(t.Name)] = t
	}
	s.timers = next
}

// Snapshot returns a deep copy of the timer set keyed by normalized name.
func (s *TimerStore) Snapshot() map[string]*domain.Timer {
	out := make(map[string]*domain.Timer, len(s.timers))
	for k, t := range s.timers {
		out[k] = t.Clone()
	}
	return out
}

func (s *TimerStore) Len() int { return len(s.timers) }
