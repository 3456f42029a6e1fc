package analytics

import (
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

// DayHours is the worked time of one day.
type DayHours struct {
	Date  time.Time `json:"date" yaml:"date"`
	Hours float64   `json:"hours" yaml:"hours"`
}

// DailySeries returns hours per calendar day across rng, in rng.From's
// location.
func DailySeries(sessions []model.Session, rng model.Range) []DayHours {
	loc := rng.From.Location()
	totals := make(map[time.Time]int64)
	for _, s := range inRange(sessions, rng) {
		totals[dayKey(s.StartTime, loc)] += s.Duration
	}
	var out []DayHours
	for d := startOfDay(rng.From.In(loc)); !d.After(rng.To); d = d.AddDate(0, 0, 1) {
		out = append(out, DayHours{Date: d, Hours: timefmt.Hours(totals[dayKey(d, loc)])})
	}
	return out
}

// Values extracts the hours of a series.
func Values(series []DayHours) []float64 {
	out := make([]float64, len(series))
	for i, d := range series {
		out[i] = d.Hours
	}
	return out
}
