package analytics

import (
	"strconv"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

// Metric is one summary card.
type Metric struct {
	Label   string  `json:"label" yaml:"label"`
	Value   float64 `json:"value" yaml:"value"`
	Display string  `json:"display" yaml:"display"`
}

func hoursMetric(label string, seconds int64) Metric {
	h := timefmt.Hours(seconds)
	return Metric{Label: label, Value: h, Display: timefmt.FormatHours(h)}
}

func averageMetric(label string, seconds int64, divisor int) Metric {
	if divisor < 1 {
		divisor = 1
	}
	h := timefmt.Hours(seconds) / float64(divisor)
	return Metric{Label: label, Value: h, Display: timefmt.FormatHours(h)}
}

func countMetric(label string, n int) Metric {
	return Metric{Label: label, Value: float64(n), Display: strconv.Itoa(n)}
}

// PeriodMetrics returns the four summary cards for a period. Averages divide
// by the days (or months) of the period that have already started.
func PeriodMetrics(sessions []model.Session, p model.Period, now time.Time, custom model.Range) []Metric {
	loc := now.Location()
	rng := ResolvePeriod(p, now, custom)
	in := inRange(sessions, rng)
	total := totalSeconds(in)

	switch p {
	case model.PeriodToday:
		yesterday := ResolvePeriod(model.PeriodToday, now.AddDate(0, 0, -1), model.Range{})
		week := ResolvePeriod(model.PeriodWeek, now, model.Range{})
		weekTotal := totalSeconds(inRange(sessions, week))
		return []Metric{
			hoursMetric("Hoy", total),
			hoursMetric("Ayer", totalSeconds(inRange(sessions, yesterday))),
			hoursMetric("Esta semana", weekTotal),
			averageMetric("Promedio diario", weekTotal, daysBetween(week.From, now, loc)),
		}
	case model.PeriodWeek:
		return []Metric{
			hoursMetric("Total", total),
			hoursMetric("Mejor día", bestBucket(in, func(t time.Time) time.Time { return dayKey(t, loc) })),
			countMetric("Sesiones", len(in)),
			averageMetric("Promedio diario", total, elapsedDays(rng, now)),
		}
	case model.PeriodMonth:
		return []Metric{
			hoursMetric("Total", total),
			countMetric("Días activos", activeDays(in, loc)),
			countMetric("Sesiones", len(in)),
			averageMetric("Promedio diario", total, elapsedDays(rng, now)),
		}
	case model.PeriodYear:
		return []Metric{
			hoursMetric("Total", total),
			hoursMetric("Mejor mes", bestBucket(in, func(t time.Time) time.Time {
				y, m, _ := t.In(loc).Date()
				return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
			})),
			countMetric("Días activos", activeDays(in, loc)),
			averageMetric("Promedio mensual", total, int(now.Month())),
		}
	default:
		return []Metric{
			hoursMetric("Total", total),
			countMetric("Sesiones", len(in)),
			countMetric("Días activos", activeDays(in, loc)),
			averageMetric("Promedio diario", total, daysBetween(rng.From, rng.To, loc)),
		}
	}
}

// elapsedDays counts the days of rng up to and including now.
func elapsedDays(rng model.Range, now time.Time) int {
	end := rng.To
	if now.Before(end) {
		end = now
	}
	return daysBetween(rng.From, end, now.Location())
}

// bestBucket returns the largest per-bucket total of session seconds.
func bestBucket(sessions []model.Session, key func(time.Time) time.Time) int64 {
	totals := make(map[time.Time]int64)
	var best int64
	for _, s := range sessions {
		k := key(s.StartTime)
		totals[k] += s.Duration
		if totals[k] > best {
			best = totals[k]
		}
	}
	return best
}
