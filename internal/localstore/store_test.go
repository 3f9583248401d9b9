package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hkarvonen/tickd/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoadTimersMissingFile(t *testing.T) {
	s := newTestStore(t)
	timers, err := s.LoadTimers()
	if err != nil {
		t.Fatal(err)
	}
	if len(timers) != 0 {
		t.Errorf("missing file yielded %d timers, want 0", len(timers))
	}
}

func TestLoadTimersCorruptFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.StatePath(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	timers, err := s.LoadTimers()
	if err != nil {
		t.Fatalf("corrupt file must not fail the load: %v", err)
	}
	if len(timers) != 0 {
		t.Errorf("corrupt file yielded %d timers, want 0", len(timers))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	in := map[string]*domain.Timer{
		"work": {
			Name:       "Work",
			IsRunning:  true,
			StartTime:  12_345,
			LastUpdate: 20_000,
			Laps:       []domain.Lap{{Number: 1, SplitMs: 100, TotalMs: 100, Timestamp: 12_445}},
		},
		"gym": {Name: "gym", ElapsedMs: 9_000, LastUpdate: 10_000},
	}
	if err := s.SaveTimers(in); err != nil {
		t.Fatal(err)
	}

	out, err := s.LoadTimers()
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("loaded %d timers, want 2", len(out))
	}
	work := out["work"]
	if work == nil || !work.IsRunning || work.StartTime != 12_345 || len(work.Laps) != 1 {
		t.Errorf("work round-trip: %+v", work)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTimers(map[string]*domain.Timer{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.StatePath() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind after save")
	}
	if _, err := os.Stat(s.StatePath()); err != nil {
		t.Error("state file missing after save")
	}
}

func TestRevisionTracksOwnWrites(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTimers(map[string]*domain.Timer{}); err != nil {
		t.Fatal(err)
	}
	rev := s.Revision()
	if rev == 0 {
		t.Fatal("revision is zero after save")
	}
	if !s.WasWrittenBySelf(rev) {
		t.Error("own write not recognized")
	}

	// Simulate another process rewriting the file.
	other, err := NewStore(filepath.Dir(s.StatePath()), nil)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if err := other.SaveTimers(map[string]*domain.Timer{}); err != nil {
		t.Fatal(err)
	}
	foreign := s.Revision()
	if foreign == rev {
		t.Fatal("revision did not change after foreign write")
	}
	if s.WasWrittenBySelf(foreign) {
		t.Error("foreign write attributed to self")
	}
}

func TestAppendActivityNewestFirst(t *testing.T) {
	s := newTestStore(t)
	first := domain.CompletedActivity{ID: "1", ActivityName: "a", DurationMinutes: 1}
	second := domain.CompletedActivity{ID: "2", ActivityName: "b", DurationMinutes: 2}

	if err := s.AppendActivity(first); err != nil {
		t.Fatal(err)
	}
	if err := s.AppendActivity(second); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadActivities()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("loaded %d activities, want 2", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "1" {
		t.Errorf("order = [%s %s], want newest first", got[0].ID, got[1].ID)
	}
}

func TestLoadActivitiesMissingFile(t *testing.T) {
	s := newTestStore(t)
	got, err := s.LoadActivities()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("missing file yielded %d activities", len(got))
	}
}
