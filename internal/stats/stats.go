// Package stats folds completed activities into summary rows for chart and
// report consumers.
package stats

import (
	"sort"
	"strings"

	"github.com/hkarvonen/tickd/internal/domain"
)

// Row is one aggregated line of the activity summary.
type Row struct {
	Name         string
	TotalMinutes int64
	Color        string
	Percentage   float64
}

// palette matches the activity card colors; ColorFor picks from it
// deterministically so an activity keeps its color across sessions.
var palette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
}

// ColorFor returns a stable color for an activity name. Names differing only
// in case map to the same color.
func ColorFor(name string) string {
	var hash int32
	for _, ch := range strings.ToLower(name) {
		hash = (hash << 5) - hash + ch
	}
	idx := int(hash) % len(palette)
	if idx < 0 {
		idx += len(palette)
	}
	return palette[idx]
}

// Summarize groups activities by name (case-insensitive) and returns rows
// sorted by total minutes descending, then name. Percentage is each row's
// share of the grand total; zero-total inputs yield zero percentages.
func Summarize(activities []domain.CompletedActivity) []Row {
	type bucket struct {
		name    string
		minutes int64
	}
	buckets := make(map[string]*bucket)
	var grand int64
	for _, a := range activities {
		key := strings.ToLower(strings.TrimSpace(a.ActivityName))
		b, ok := buckets[key]
		if !ok {
			b = &bucket{name: strings.TrimSpace(a.ActivityName)}
			buckets[key] = b
		}
		b.minutes += a.DurationMinutes
		grand += a.DurationMinutes
	}

	rows := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		row := Row{Name: b.name, TotalMinutes: b.minutes, Color: ColorFor(b.name)}
		if grand > 0 {
			row.Percentage = float64(b.minutes) / float64(grand) * 100
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalMinutes != rows[j].TotalMinutes {
			return rows[i].TotalMinutes > rows[j].TotalMinutes
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}
