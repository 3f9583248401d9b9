package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestSchedulerEnsureIsSingular(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(5*time.Millisecond, func(string) bool {
		ticks.Add(1)
		return true
	}, nil)
	defer s.Shutdown()

	s.Ensure("work")
	s.Ensure("Work")
	s.Ensure("work")

	if got := len(s.ActiveNames()); got != 1 {
		t.Fatalf("active tickers = %d, want 1", got)
	}
	waitFor(t, time.Second, func() bool { return ticks.Load() > 0 })
}

func TestSchedulerCancel(t *testing.T) {
	var ticks atomic.Int64
	s := NewScheduler(5*time.Millisecond, func(string) bool {
		ticks.Add(1)
		return true
	}, nil)
	defer s.Shutdown()

	s.Ensure("gym")
	waitFor(t, time.Second, func() bool { return ticks.Load() > 0 })
	s.Cancel("gym")

	if s.Active("gym") {
		t.Fatal("ticker still registered after Cancel")
	}
	n := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	if ticks.Load()-n > 1 {
		t.Error("ticker kept firing after Cancel")
	}
}

func TestSchedulerSelfTermination(t *testing.T) {
	// The tick callback reporting not-running must retire the ticker even
	// though nobody called Cancel.
	s := NewScheduler(5*time.Millisecond, func(string) bool { return false }, nil)
	defer s.Shutdown()

	s.Ensure("stale")
	waitFor(t, time.Second, func() bool { return !s.Active("stale") })
}

func TestSchedulerRebuild(t *testing.T) {
	s := NewScheduler(time.Hour, func(string) bool { return true }, nil)
	defer s.Shutdown()

	s.Ensure("a")
	s.Ensure("b")
	s.Rebuild([]string{"b", "c"})

	names := s.ActiveNames()
	want := []string{"b", "c"}
	if len(names) != len(want) {
		t.Fatalf("active = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("active = %v, want %v", names, want)
		}
	}

	// Idempotent.
	s.Rebuild([]string{"b", "c"})
	if got := len(s.ActiveNames()); got != 2 {
		t.Fatalf("active after second rebuild = %d, want 2", got)
	}
}

func TestSchedulerShutdownRejectsEnsure(t *testing.T) {
	s := NewScheduler(time.Hour, func(string) bool { return true }, nil)
	s.Shutdown()
	s.Ensure("late")
	if s.Active("late") {
		t.Fatal("Ensure after Shutdown registered a ticker")
	}
}
