package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

const sparkChars = " .:-=+*#%@"

// trendWindow is the moving-average window of the daily curve, in days.
const trendWindow = 7

var weekdayNames = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline scaled from zero.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	top := 0.0
	for _, v := range values {
		top = math.Max(top, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if top > 0 {
			idx = int(math.Round(v / top * float64(len(sparkChars)-1)))
		}
		b.WriteByte(sparkChars[max(0, min(len(sparkChars)-1, idx))])
	}
	return b.String()
}

// RenderReport prints every section of a report.
func RenderReport(w io.Writer, r Report, width int, useColor bool) error {
	steps := []func() error{
		func() error { return RenderHeader(w, r) },
		func() error { return RenderMetrics(w, r.Metrics) },
		func() error { return RenderStreak(w, r.Streak) },
		func() error { return RenderInsights(w, r.Insights) },
		func() error { return RenderCurve(w, r.Daily, width, useColor) },
		func() error { return RenderDistribution(w, r.Distribution) },
		func() error { return RenderRecent(w, r.Recent) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// RenderHeader prints the period line.
func RenderHeader(w io.Writer, r Report) error {
	_, err := fmt.Fprintf(w, "Periodo: %s (%s – %s)\n\n", r.Period, r.From.Format(time.DateOnly), r.To.Format(time.DateOnly))
	return err
}

// RenderMetrics prints the metric cards as a two-column table.
func RenderMetrics(w io.Writer, metrics []analytics.Metric) error {
	rows := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, []string{m.Label, m.Display})
	}
	return writeSection(w, "Resumen", FormatTable(nil, rows, map[int]bool{1: true}))
}

// RenderStreak prints the global streak.
func RenderStreak(w io.Writer, s analytics.Streak) error {
	_, err := fmt.Fprintf(w, "Racha actual: %d días  ·  Mejor racha: %d días\n\n", s.Current, s.Best)
	return err
}

// RenderInsights prints qualitative observations.
func RenderInsights(w io.Writer, in analytics.Insights) error {
	if in.Empty() {
		return writeSection(w, "Observaciones", []string{"Sin sesiones en este periodo."})
	}
	lines := []string{
		fmt.Sprintf("Día más productivo: %s (%s)", weekdayNames[in.BestWeekday], timefmt.FormatHours(in.BestWeekdayHours)),
		fmt.Sprintf("Hora de inicio más frecuente: %02d:00 (%d sesiones)", in.PeakHour, in.PeakHourSessions),
		fmt.Sprintf("Duración media: %s", timefmt.FormatDuration(in.AverageSeconds)),
		fmt.Sprintf("Sesión más larga: %s", timefmt.FormatDuration(in.LongestSeconds)),
	}
	return writeSection(w, "Observaciones", lines)
}

// RenderCurve plots daily hours with a moving average.
func RenderCurve(w io.Writer, daily []analytics.DayHours, width int, useColor bool) error {
	if len(daily) < 2 {
		return nil
	}
	values := analytics.Values(daily)
	err := PlotHours(w, "Horas por día", []Series{
		{Name: "Horas", Values: values},
		{Name: fmt.Sprintf("Media %d días", trendWindow), Values: MovingAverage(values, trendWindow)},
	}, width, 0, useColor)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w)
	return err
}

// RenderDistribution prints the project, client and task breakdowns.
func RenderDistribution(w io.Writer, d analytics.Distribution) error {
	groups := []struct {
		title  string
		shares []analytics.Share
	}{
		{"Por proyecto", d.Projects},
		{"Por cliente", d.Clients},
		{"Por tarea", d.Tasks},
	}
	for _, g := range groups {
		if err := writeSection(w, g.title, shareLines(g.shares)); err != nil {
			return err
		}
	}
	return nil
}

func shareLines(shares []analytics.Share) []string {
	if len(shares) == 0 {
		return []string{"Sin datos."}
	}
	var total int64
	for _, s := range shares {
		total += s.Seconds
	}
	rows := make([][]string, 0, len(shares))
	for _, s := range shares {
		pct := 0.0
		if total > 0 {
			pct = float64(s.Seconds) / float64(total) * 100
		}
		rows = append(rows, []string{clip(s.Name), timefmt.FormatHours(s.Hours), fmt.Sprintf("%.0f%%", pct)})
	}
	return FormatTable(nil, rows, map[int]bool{1: true, 2: true})
}

// RenderRecent prints the recent sessions table.
func RenderRecent(w io.Writer, recent []analytics.RecentSession) error {
	if len(recent) == 0 {
		return writeSection(w, "Sesiones recientes", []string{"No sessions found."})
	}
	headers := []string{"ID", "Inicio", "Duración", "Tarea", "Proyecto", "Cliente", "Notas"}
	rows := make([][]string, 0, len(recent))
	for _, r := range recent {
		rows = append(rows, []string{
			ShortID(r.ID),
			r.StartTime.Local().Format("2006-01-02 15:04"),
			timefmt.FormatDuration(r.Duration),
			clip(r.TaskName),
			clip(r.ProjectName),
			clip(r.ClientName),
			clip(r.Notes),
		})
	}
	return writeSection(w, "Sesiones recientes", FormatTable(headers, rows, map[int]bool{2: true}))
}

// RenderTaskDetail prints the per-task statistics.
func RenderTaskDetail(w io.Writer, name string, d analytics.Detail) error {
	if d.Sessions == 0 {
		return writeSection(w, name, []string{"Sin sesiones registradas."})
	}
	rows := [][]string{
		{"Sesiones", fmt.Sprintf("%d", d.Sessions)},
		{"Total", timefmt.FormatHours(timefmt.Hours(d.TotalSeconds))},
		{"Promedio", timefmt.FormatDuration(d.AverageSeconds)},
		{"Más larga", timefmt.FormatDuration(d.Longest.Duration)},
		{"Más corta", timefmt.FormatDuration(d.Shortest.Duration)},
		{"Última", d.Last.StartTime.Local().Format("2006-01-02 15:04")},
		{"Días trabajados", fmt.Sprintf("%d", d.DistinctDays)},
		{"Racha actual", fmt.Sprintf("%d", d.Streak.Current)},
		{"Mejor racha", fmt.Sprintf("%d", d.Streak.Best)},
	}
	return writeSection(w, name, FormatTable(nil, rows, map[int]bool{1: true}))
}

// ShortID abbreviates a uuid for tables.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func writeSection(w io.Writer, title string, lines []string) error {
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, "  "+line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
