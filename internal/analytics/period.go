package analytics

import (
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

const day = 24 * time.Hour

// ResolvePeriod returns the inclusive range of a period around now. For
// PeriodCustom the range is widened to whole local days and swapped when
// reversed; an empty custom range falls back to today.
func ResolvePeriod(p model.Period, now time.Time, custom model.Range) model.Range {
	loc := now.Location()
	y, m, d := now.Date()
	switch p {
	case model.PeriodWeek:
		offset := (int(now.Weekday()) + 6) % 7
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return model.Range{From: start, To: endOf(start.AddDate(0, 0, 7))}
	case model.PeriodMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return model.Range{From: start, To: endOf(start.AddDate(0, 1, 0))}
	case model.PeriodYear:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return model.Range{From: start, To: endOf(start.AddDate(1, 0, 0))}
	case model.PeriodCustom:
		if custom.From.IsZero() || custom.To.IsZero() {
			break
		}
		from, to := custom.From.In(loc), custom.To.In(loc)
		if to.Before(from) {
			from, to = to, from
		}
		return model.Range{From: startOfDay(from), To: endOf(startOfDay(to).AddDate(0, 0, 1))}
	}
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return model.Range{From: start, To: endOf(start.AddDate(0, 0, 1))}
}

// endOf returns the last millisecond before next.
func endOf(next time.Time) time.Time {
	return next.Add(-time.Millisecond)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayKey maps t to its calendar day in loc, expressed as UTC midnight so that
// consecutive days are exactly 24h apart regardless of DST.
func dayKey(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from a to b inclusive.
func daysBetween(a, b time.Time, loc *time.Location) int {
	n := int(dayKey(b, loc).Sub(dayKey(a, loc))/day) + 1
	if n < 1 {
		return 1
	}
	return n
}

func inRange(sessions []model.Session, rng model.Range) []model.Session {
	var out []model.Session
	for _, s := range sessions {
		if rng.Contains(s.StartTime) {
			out = append(out, s)
		}
	}
	return out
}

func totalSeconds(sessions []model.Session) int64 {
	var total int64
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

func activeDays(sessions []model.Session, loc *time.Location) int {
	seen := make(map[time.Time]struct{})
	for _, s := range sessions {
		seen[dayKey(s.StartTime, loc)] = struct{}{}
	}
	return len(seen)
}
