package app

import (
	"log"
	"sort"
	"sync"
	"time"
)

// DefaultTickInterval is how often a running timer's display refreshes.
const DefaultTickInterval = 100 * time.Millisecond

// TickFunc is invoked on every tick for one timer. Returning false tells the
// scheduler the timer is no longer running and its ticker must stop itself.
type TickFunc func(name string) bool

// Scheduler owns at most one ticker goroutine per running timer. Timers are
// keyed by normalized name; Ensure for an already-ticking name replaces the
// old ticker so duplicates can never accumulate.
type Scheduler struct {
	interval time.Duration
	tick     TickFunc
	logger   *log.Logger

	mu      sync.Mutex
	tickers map[string]chan struct{}
	closed  bool
}

func NewScheduler(interval time.Duration, tick TickFunc, logger *log.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scheduler{
		interval: interval,
		tick:     tick,
		logger:   logger,
		tickers:  make(map[string]chan struct{}),
	}
}

// Ensure starts a ticker for name if one is not already active. An existing
// ticker is stopped and replaced rather than doubled.
func (s *Scheduler) Ensure(name string) {
	key := normalizeName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if prev, ok := s.tickers[key]; ok {
		close(prev)
	}
	stop := make(chan struct{})
	s.tickers[key] = stop
	go s.run(key, stop)
}

// Cancel stops the ticker for name, if any.
func (s *Scheduler) Cancel(name string) {
	key := normalizeName(name)
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.tickers[key]; ok {
		close(stop)
		delete(s.tickers, key)
	}
}

// Rebuild reconciles the active ticker set against the given running names:
// missing tickers are started, stale ones cancelled. Idempotent.
func (s *Scheduler) Rebuild(running []string) {
	want := make(map[string]bool, len(running))
	for _, name := range running {
		want[normalizeName(name)] = true
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for key, stop := range s.tickers {
		if !want[key] {
			close(stop)
			delete(s.tickers, key)
		}
	}
	var added []string
	for key := range want {
		if _, ok := s.tickers[key]; !ok {
			stop := make(chan struct{})
			s.tickers[key] = stop
			go s.run(key, stop)
			added = append(added, key)
		}
	}
	s.mu.Unlock()

	if s.logger != nil && len(added) > 0 {
		s.logger.Printf("Scheduler: rebuilt tickers, started %d", len(added))
	}
}

// Active reports whether a ticker is currently registered for name.
func (s *Scheduler) Active(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tickers[normalizeName(name)]
	return ok
}

// ActiveNames returns the normalized names with a registered ticker, sorted.
func (s *Scheduler) ActiveNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for key := range s.tickers {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// Shutdown cancels every ticker and rejects further Ensure calls.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for key, stop := range s.tickers {
		close(stop)
		delete(s.tickers, key)
	}
}

func (s *Scheduler) run(key string, stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if !s.tick(key) {
				// The authoritative state says this timer is not running.
				// Deregister and exit even if nobody cancelled us.
				s.remove(key, stop)
				return
			}
		}
	}
}

// remove drops the registry entry only if it still points at this ticker's
// stop channel; a replacement registered by Ensure is left alone.
func (s *Scheduler) remove(key string, stop chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.tickers[key]; ok && cur == stop {
		delete(s.tickers, key)
	}
}
