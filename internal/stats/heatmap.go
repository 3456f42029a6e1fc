package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/verte-zerg/tuitrack/internal/analytics"
)

// heatLevels maps a heatmap level to its cell glyph.
var heatLevels = [...]string{"·", "░", "▒", "▓", "█"}

// HeatmapRows lays days out as seven weekday rows (Monday first) with one
// column per week. Cells before the first day of the year are blank.
func HeatmapRows(days []analytics.HeatmapDay) [7][]string {
	var rows [7][]string
	if len(days) == 0 {
		return rows
	}
	lead := weekdayIndex(days[0].Date)
	for i := 0; i < lead; i++ {
		rows[i] = append(rows[i], " ")
	}
	for _, d := range days {
		rows[weekdayIndex(d.Date)] = append(rows[weekdayIndex(d.Date)], heatLevels[d.Level])
	}
	return rows
}

func weekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// RenderHeatmap prints a yearly calendar heatmap with a legend.
func RenderHeatmap(w io.Writer, year int, days []analytics.HeatmapDay) error {
	var total float64
	active := 0
	for _, d := range days {
		total += d.Hours
		if d.Level > 0 {
			active++
		}
	}
	if _, err := fmt.Fprintf(w, "Actividad %d: %.1fh en %d días\n", year, total, active); err != nil {
		return err
	}
	labels := [7]string{"L", "M", "X", "J", "V", "S", "D"}
	for i, row := range HeatmapRows(days) {
		if _, err := fmt.Fprintf(w, "%s %s\n", labels[i], strings.Join(row, "")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "  0h %s 6h+\n\n", strings.Join(heatLevels[:], ""))
	return err
}
