package domain

import (
	"testing"
	"time"
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		ms   int64
		want string
	}{
		{0, "00:00.00"},
		{10, "00:00.01"},
		{999, "00:00.99"},
		{1000, "00:01.00"},
		{61_230, "01:01.23"},
		{3_599_990, "59:59.99"},
		{3_600_000, "01:00:00.00"},
		{3_661_450, "01:01:01.45"},
		{-5, "00:00.00"},
	}
	for _, tc := range cases {
		if got := FormatElapsed(tc.ms); got != tc.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tc.ms, got, tc.want)
		}
	}
}

func TestCurrentElapsed(t *testing.T) {
	now := time.UnixMilli(10_000)

	running := &Timer{IsRunning: true, StartTime: 4_000}
	if got := CurrentElapsed(running, now); got != 6_000 {
		t.Errorf("running elapsed = %d, want 6000", got)
	}

	paused := &Timer{IsRunning: false, ElapsedMs: 2_500, StartTime: 0}
	if got := CurrentElapsed(paused, now); got != 2_500 {
		t.Errorf("paused elapsed = %d, want 2500", got)
	}
}

func TestStatusOf(t *testing.T) {
	if got := StatusOf(&Timer{IsRunning: true, StartTime: 1}); got != StatusRunning {
		t.Errorf("status = %s, want running", got)
	}
	if got := StatusOf(&Timer{ElapsedMs: 100}); got != StatusPaused {
		t.Errorf("status = %s, want paused", got)
	}
	if got := StatusOf(&Timer{}); got != StatusStopped {
		t.Errorf("status = %s, want stopped", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &Timer{Name: "reading", Laps: []Lap{{Number: 1, TotalMs: 100}}}
	c := orig.Clone()
	c.Laps[0].TotalMs = 999
	if orig.Laps[0].TotalMs != 100 {
		t.Error("mutating clone laps changed the original")
	}
}
