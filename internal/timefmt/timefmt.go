// Package timefmt converts between timestamps, durations and display strings.
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

// maxRenderSeconds bounds what the clock formatters render. Larger values
// only appear when persisted state is corrupted.
const maxRenderSeconds = 24 * 60 * 60

// ElapsedAt returns the worked time between start and now, excluding pauses.
// An open segment is measured up to now, which freezes the result while paused.
func ElapsedAt(start time.Time, segments []model.PauseSegment, now time.Time) time.Duration {
	total := now.Sub(start)
	for _, seg := range segments {
		end := now
		if seg.End != nil {
			end = *seg.End
		}
		if end.After(now) {
			end = now
		}
		if d := end.Sub(seg.Start); d > 0 {
			total -= d
		}
	}
	if total < 0 {
		return 0
	}
	return total
}

// Elapsed returns ElapsedAt in whole seconds, rounded down.
func Elapsed(start time.Time, segments []model.PauseSegment, now time.Time) int64 {
	return int64(ElapsedAt(start, segments, now) / time.Second)
}

// FormatDuration renders seconds as "1h 2m 3s", omitting zero units.
// Values outside [0, 24h) yield an empty string.
func FormatDuration(seconds int64) string {
	if seconds < 0 || seconds >= maxRenderSeconds {
		return ""
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	parts := make([]string, 0, 3)
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

// FormatClock renders seconds as HH:MM:SS with the same bounds as FormatDuration.
func FormatClock(seconds int64) string {
	if seconds < 0 || seconds >= maxRenderSeconds {
		return ""
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}

// ParseDuration reads "2h 15m", "90s" or "01:30:00" back into seconds.
func ParseDuration(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.Contains(input, ":") {
		return parseClock(input)
	}
	var total int64
	for _, field := range strings.Fields(input) {
		if len(field) < 2 {
			return 0, fmt.Errorf("invalid duration component %q", field)
		}
		unit := field[len(field)-1]
		n, err := strconv.ParseInt(field[:len(field)-1], 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration component %q", field)
		}
		switch unit {
		case 'h':
			total += n * 3600
		case 'm':
			total += n * 60
		case 's':
			total += n
		default:
			return 0, fmt.Errorf("unknown duration unit %q", string(unit))
		}
	}
	return total, nil
}

func parseClock(input string) (int64, error) {
	parts := strings.Split(input, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock %q (expected HH:MM:SS)", input)
	}
	var values [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid clock %q (expected HH:MM:SS)", input)
		}
		values[i] = n
	}
	if values[1] >= 60 || values[2] >= 60 {
		return 0, fmt.Errorf("invalid clock %q (minutes and seconds must be < 60)", input)
	}
	return values[0]*3600 + values[1]*60 + values[2], nil
}

// FormatHours renders an hour total for metric cards: "0h", "45m" or "3.5h".
func FormatHours(hours float64) string {
	if hours <= 0 {
		return "0h"
	}
	if hours < 1 {
		return fmt.Sprintf("%dm", int64(math.Round(hours*60)))
	}
	return fmt.Sprintf("%.1fh", hours)
}

// Hours converts a duration in seconds to fractional hours.
func Hours(seconds int64) float64 {
	return float64(seconds) / 3600
}
