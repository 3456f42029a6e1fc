package analytics

import (
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

// HeatmapDay is one calendar cell.
type HeatmapDay struct {
	Date  time.Time `json:"date" yaml:"date"`
	Hours float64   `json:"hours" yaml:"hours"`
	Level int       `json:"level" yaml:"level"`
}

// Heatmap returns one entry per day of year in loc, including empty days.
func Heatmap(sessions []model.Session, year int, loc *time.Location) []HeatmapDay {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(1, 0, 0)

	totals := make(map[time.Time]int64)
	for _, s := range sessions {
		t := s.StartTime.In(loc)
		if t.Before(start) || !t.Before(end) {
			continue
		}
		totals[dayKey(t, loc)] += s.Duration
	}

	var out []HeatmapDay
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		h := timefmt.Hours(totals[dayKey(d, loc)])
		out = append(out, HeatmapDay{Date: d, Hours: h, Level: Level(h)})
	}
	return out
}

// Level buckets daily hours into intensities 0..4.
func Level(hours float64) int {
	switch {
	case hours <= 0:
		return 0
	case hours < 2:
		return 1
	case hours < 4:
		return 2
	case hours < 6:
		return 3
	default:
		return 4
	}
}
