// Package app wires the timer store, scheduler, persistence and mirror into
// the lifecycle service. Every state mutation runs under one mutex so that
// stop/complete/delete are atomic with respect to ticker cancellation and
// the local save.
package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hkarvonen/tickd/internal/domain"
	"github.com/hkarvonen/tickd/internal/mirror"
	"github.com/hkarvonen/tickd/internal/stats"
)

// TimerView is one row of the renderer contract: everything a front-end
// needs to draw a timer without touching service internals.
type TimerView struct {
	Name      string
	Status    domain.Status
	ElapsedMs int64
	Formatted string
	Laps      []domain.Lap
}

// Service is the lifecycle controller for all timers.
type Service struct {
	local  LocalStore
	mirror Mirror
	queue  *SyncQueue
	logger *log.Logger
	nowFn  func() time.Time

	mu    sync.Mutex
	store *TimerStore
	sched *Scheduler

	onChange func()
}

// Option configures a Service.
type Option func(*Service)

// WithNow overrides the clock source, for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) { s.nowFn = now }
}

// WithTickInterval overrides the refresh ticker interval.
func WithTickInterval(d time.Duration) Option {
	return func(s *Service) { s.sched = NewScheduler(d, s.tick, s.logger) }
}

// NewService builds a Service. mirror may be nil when syncing is disabled.
func NewService(local LocalStore, m Mirror, logger *log.Logger, opts ...Option) *Service {
	s := &Service{
		local:  local,
		mirror: m,
		logger: logger,
		nowFn:  time.Now,
		store:  NewTimerStore(),
	}
	s.sched = NewScheduler(DefaultTickInterval, s.tick, logger)
	s.queue = NewSyncQueue(m, logger)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers a hook fired after any state change, including ticks of
// running timers. It is always called outside the service mutex.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Queue exposes the background sync dispatcher so the caller can run it.
func (s *Service) Queue() *SyncQueue { return s.queue }

// Scheduler exposes ticker bookkeeping for shutdown.
func (s *Service) Scheduler() *Scheduler { return s.sched }

func (s *Service) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Start starts or resumes the named timer, creating it if needed. Starting a
// running timer is a no-op. On resume the start time is shifted back by the
// accumulated elapsed time so now-StartTime stays equal to the total.
func (s *Service) Start(name string) {
	s.mu.Lock()
	now := s.nowFn()
	t := s.store.GetOrCreate(name, now.UnixMilli())
	if t.IsRunning {
		s.mu.Unlock()
		return
	}
	t.StartTime = now.UnixMilli() - t.ElapsedMs
	t.IsRunning = true
	t.LastUpdate = now.UnixMilli()
	s.sched.Ensure(t.Name)
	s.persistLocked()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Printf("Service: started timer %q", name)
	}
	s.notify()
}

// Stop pauses the named timer, freezing its elapsed time. Stopping a timer
// that is not running (or does not exist) is a no-op. The state flip, ticker
// cancellation and local save happen in one critical section, so a ticker
// can never observe a half-stopped timer.
func (s *Service) Stop(name string) {
	s.mu.Lock()
	t := s.store.Get(name)
	if t == nil || !t.IsRunning {
		s.mu.Unlock()
		return
	}
	now := s.nowFn()
	t.ElapsedMs = now.UnixMilli() - t.StartTime
	t.IsRunning = false
	t.StartTime = 0
	t.LastUpdate = now.UnixMilli()
	s.sched.Cancel(t.Name)
	s.persistLocked()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Printf("Service: stopped timer %q", name)
	}
	s.notify()
}

// AddLap records a lap for a running timer. Non-running or unknown timers
// are a no-op. The lap split is measured from the previous lap's total.
func (s *Service) AddLap(name string) {
	s.mu.Lock()
	t := s.store.Get(name)
	if t == nil || !t.IsRunning {
		s.mu.Unlock()
		return
	}
	now := s.nowFn()
	total := domain.CurrentElapsed(t, now)
	var prev int64
	if n := len(t.Laps); n > 0 {
		prev = t.Laps[n-1].TotalMs
	}
	t.Laps = append(t.Laps, domain.Lap{
		Number:    len(t.Laps) + 1,
		SplitMs:   total - prev,
		TotalMs:   total,
		Timestamp: now.UnixMilli(),
	})
	t.LastUpdate = now.UnixMilli()
	s.persistLocked()
	s.mu.Unlock()

	s.notify()
}

// Reset zeroes the named timer: elapsed time, laps and running state are all
// discarded. The timer itself remains. No completed activity is recorded.
func (s *Service) Reset(name string) {
	s.mu.Lock()
	t := s.store.Get(name)
	if t == nil {
		s.mu.Unlock()
		return
	}
	now := s.nowFn()
	t.IsRunning = false
	t.StartTime = 0
	t.ElapsedMs = 0
	t.Laps = nil
	t.LastUpdate = now.UnixMilli()
	s.sched.Cancel(t.Name)
	s.persistLocked()
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Printf("Service: reset timer %q", name)
	}
	s.notify()
}

// Complete finishes the named timer: the elapsed time is snapshotted first,
// a CompletedActivity whose end-start equals that exact elapsed time is
// saved locally and queued for the mirror, and the timer is reset in place.
// A timer with zero elapsed time is reset without producing a record.
// Returns the recorded activity, or nil when nothing was recorded.
func (s *Service) Complete(name string) *domain.CompletedActivity {
	s.mu.Lock()
	t := s.store.Get(name)
	if t == nil {
		s.mu.Unlock()
		return nil
	}
	now := s.nowFn()
	elapsed := domain.CurrentElapsed(t, now)
	s.sched.Cancel(t.Name)

	var record *domain.CompletedActivity
	if elapsed > 0 {
		startMs := t.StartTime
		if startMs <= 0 {
			startMs = now.UnixMilli() - elapsed
		}
		record = &domain.CompletedActivity{
			ID:              uuid.NewString(),
			ActivityName:    t.Name,
			StartTime:       time.UnixMilli(startMs).UTC(),
			EndTime:         time.UnixMilli(startMs + elapsed).UTC(),
			DurationMinutes: elapsed / 60000,
		}
		if err := s.local.AppendActivity(*record); err != nil && s.logger != nil {
			s.logger.Printf("Service: save activity failed: %v", err)
		}
	}

	t.IsRunning = false
	t.StartTime = 0
	t.ElapsedMs = 0
	t.Laps = nil
	t.LastUpdate = now.UnixMilli()
	displayName := t.Name
	s.persistLocked()
	s.mu.Unlock()

	if record != nil {
		s.queue.EnqueueActivity(mirror.ActivityFromCompleted(*record, stats.ColorFor(record.ActivityName), now))
		// A completed timer must not reappear as still running on another
		// device.
		s.queue.EnqueueDelete(displayName)
	}

	if s.logger != nil {
		s.logger.Printf("Service: completed timer %q (%s)", displayName, domain.FormatElapsed(elapsed))
	}
	s.notify()
	return record
}

// Delete removes the named timer entirely, cancelling its ticker and
// queueing removal of its mirror row. Unknown names are a no-op.
func (s *Service) Delete(name string) {
	s.mu.Lock()
	t := s.store.Get(name)
	if t == nil {
		s.mu.Unlock()
		return
	}
	displayName := t.Name
	s.sched.Cancel(displayName)
	s.store.Remove(displayName)
	s.persistLocked()
	s.mu.Unlock()

	s.queue.EnqueueDelete(displayName)

	if s.logger != nil {
		s.logger.Printf("Service: deleted timer %q", displayName)
	}
	s.notify()
}

// List returns a renderer-ready snapshot of all timers, sorted by name.
func (s *Service) List() []TimerView {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	names := s.store.Names()
	views := make([]TimerView, 0, len(names))
	for _, name := range names {
		t := s.store.Get(name)
		elapsed := domain.CurrentElapsed(t, now)
		laps := make([]domain.Lap, len(t.Laps))
		copy(laps, t.Laps)
		views = append(views, TimerView{
			Name:      t.Name,
			Status:    domain.StatusOf(t),
			ElapsedMs: elapsed,
			Formatted: domain.FormatElapsed(elapsed),
			Laps:      laps,
		})
	}
	return views
}

// tick is the scheduler callback. It re-checks the authoritative state under
// the mutex: returning false makes a stale ticker terminate itself even if
// its cancellation was lost.
func (s *Service) tick(name string) bool {
	s.mu.Lock()
	t := s.store.Get(name)
	running := t != nil && t.IsRunning
	s.mu.Unlock()

	if running {
		s.notify()
	}
	return running
}

// Load reads the persisted state, rebuilds tickers for timers that were
// running, and kicks off remote reconciliation in the background when a
// mirror is configured.
func (s *Service) Load(ctx context.Context) error {
	timers, err := s.local.LoadTimers()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.store.Replace(timers)
	s.sched.Rebuild(s.runningNamesLocked())
	s.mu.Unlock()

	if s.mirror != nil && s.mirror.PrincipalID() != "" {
		go s.reconcile(ctx)
	}
	s.notify()
	return nil
}

// reconcile merges the mirror's rows into local state with per-timer
// last-write-wins: a remote row only replaces a local timer whose
// LastUpdate is older than the row's UpdatedAt.
func (s *Service) reconcile(ctx context.Context) {
	records, err := s.mirror.FetchTimers(ctx)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("Service: reconcile fetch failed: %v", err)
		}
		return
	}

	s.mu.Lock()
	changed := false
	for _, rec := range records {
		local := s.store.Get(rec.TimerName)
		if local == nil || rec.UpdatedAt.UnixMilli() > local.LastUpdate {
			s.store.Put(rec.Timer())
			changed = true
			continue
		}
		if local.RemoteID == "" && rec.ID != "" {
			local.RemoteID = rec.ID
		}
	}
	if changed {
		s.persistLocked()
		s.sched.Rebuild(s.runningNamesLocked())
	}
	s.mu.Unlock()

	if changed {
		if s.logger != nil {
			s.logger.Printf("Service: reconciled %d remote timers", len(records))
		}
		s.notify()
	}
}

// HandleExternalChange re-reads the state file after another process wrote
// it, overlaying newer timers onto the in-memory set. Timers missing from
// the file are kept; deletion only happens through Delete.
func (s *Service) HandleExternalChange() {
	timers, err := s.local.LoadTimers()
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("Service: external reload failed: %v", err)
		}
		return
	}

	s.mu.Lock()
	changed := false
	for _, incoming := range timers {
		local := s.store.Get(incoming.Name)
		if local == nil || incoming.LastUpdate > local.LastUpdate {
			s.store.Put(incoming)
			changed = true
		}
	}
	if changed {
		s.sched.Rebuild(s.runningNamesLocked())
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

func (s *Service) runningNamesLocked() []string {
	var names []string
	for _, name := range s.store.Names() {
		if t := s.store.Get(name); t != nil && t.IsRunning {
			names = append(names, name)
		}
	}
	return names
}

// persistLocked saves the full timer set locally (synchronous, so the write
// is durable before the mutating call returns) and queues a mirror upsert.
// Callers must hold s.mu.
func (s *Service) persistLocked() {
	snapshot := s.store.Snapshot()

	if s.mirror != nil && s.mirror.PrincipalID() != "" {
		for _, t := range snapshot {
			if t.RemoteID == "" {
				t.RemoteID = uuid.NewString()
				if orig := s.store.Get(t.Name); orig != nil {
					orig.RemoteID = t.RemoteID
				}
			}
		}
	}

	if err := s.local.SaveTimers(snapshot); err != nil && s.logger != nil {
		s.logger.Printf("Service: local save failed: %v", err)
	}

	records := make([]mirror.Record, 0, len(snapshot))
	for _, t := range snapshot {
		records = append(records, mirror.RecordFromTimer(t))
	}
	s.queue.EnqueueUpsert(records)
}
