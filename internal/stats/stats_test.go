package stats

import (
	"testing"

	"github.com/hkarvonen/tickd/internal/domain"
)

func TestColorForIsStable(t *testing.T) {
	a := ColorFor("Reading")
	b := ColorFor("reading")
	if a != b {
		t.Errorf("case changed the color: %s vs %s", a, b)
	}
	if ColorFor("Reading") != a {
		t.Error("color not deterministic")
	}
}

func TestColorForAlwaysInPalette(t *testing.T) {
	names := []string{"a", "zzz", "深い仕事", "x y z", "", "0123456789"}
	for _, name := range names {
		color := ColorFor(name)
		found := false
		for _, p := range palette {
			if p == color {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("ColorFor(%q) = %q not in palette", name, color)
		}
	}
}

func TestSummarize(t *testing.T) {
	rows := Summarize([]domain.CompletedActivity{
		{ActivityName: "Reading", DurationMinutes: 30},
		{ActivityName: "reading", DurationMinutes: 30},
		{ActivityName: "Gym", DurationMinutes: 40},
	})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2 (case-insensitive grouping)", len(rows))
	}
	if rows[0].Name != "Reading" || rows[0].TotalMinutes != 60 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Name != "Gym" || rows[1].TotalMinutes != 40 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	if got := rows[0].Percentage; got != 60 {
		t.Errorf("percentage = %f, want 60", got)
	}
}

func TestSummarizeEmptyAndZero(t *testing.T) {
	if rows := Summarize(nil); len(rows) != 0 {
		t.Errorf("empty input produced %d rows", len(rows))
	}
	rows := Summarize([]domain.CompletedActivity{{ActivityName: "blip", DurationMinutes: 0}})
	if len(rows) != 1 || rows[0].Percentage != 0 {
		t.Errorf("zero-total rows = %+v", rows)
	}
}
