package analytics

import (
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

// Insights are qualitative observations over a range.
type Insights struct {
	Sessions         int          `json:"sessions" yaml:"sessions"`
	BestWeekday      time.Weekday `json:"bestWeekday" yaml:"bestWeekday"`
	BestWeekdayHours float64      `json:"bestWeekdayHours" yaml:"bestWeekdayHours"`
	PeakHour         int          `json:"peakHour" yaml:"peakHour"`
	PeakHourSessions int          `json:"peakHourSessions" yaml:"peakHourSessions"`
	AverageSeconds   int64        `json:"averageSeconds" yaml:"averageSeconds"`
	LongestSeconds   int64        `json:"longestSeconds" yaml:"longestSeconds"`
}

// Empty reports whether there was nothing to observe.
func (i Insights) Empty() bool {
	return i.Sessions == 0
}

// ComputeInsights observes in-range sessions, bucketing by rng.From's
// location. Weekday ties go to the earlier day (Monday first); hour ties to
// the earlier hour.
func ComputeInsights(sessions []model.Session, rng model.Range) Insights {
	in := inRange(sessions, rng)
	if len(in) == 0 {
		return Insights{BestWeekday: time.Monday}
	}
	loc := rng.From.Location()

	var byWeekday [7]int64
	var byHour [24]int
	var total, longest int64
	for _, s := range in {
		t := s.StartTime.In(loc)
		byWeekday[t.Weekday()] += s.Duration
		byHour[t.Hour()]++
		total += s.Duration
		if s.Duration > longest {
			longest = s.Duration
		}
	}

	best := time.Monday
	for i := 1; i < 7; i++ {
		wd := time.Weekday((int(time.Monday) + i) % 7)
		if byWeekday[wd] > byWeekday[best] {
			best = wd
		}
	}
	peak := 0
	for h := 1; h < 24; h++ {
		if byHour[h] > byHour[peak] {
			peak = h
		}
	}
	return Insights{
		Sessions:         len(in),
		BestWeekday:      best,
		BestWeekdayHours: float64(byWeekday[best]) / 3600,
		PeakHour:         peak,
		PeakHourSessions: byHour[peak],
		AverageSeconds:   total / int64(len(in)),
		LongestSeconds:   longest,
	}
}
