package timefmt

import (
	"testing"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

func TestFormatDuration(t *testing.T) {
	cases := map[int64]string{
		0:     "0s",
		45:    "45s",
		60:    "1m",
		3601:  "1h 1s",
		8100:  "2h 15m",
		86399: "23h 59m 59s",
		86400: "",
		-1:    "",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatClock(t *testing.T) {
	if got := FormatClock(3725); got != "01:02:05" {
		t.Fatalf("unexpected clock: %q", got)
	}
	if got := FormatClock(86400); got != "" {
		t.Fatalf("expected boundary rejection, got %q", got)
	}
}

func TestParseDurationRoundTrip(t *testing.T) {
	for _, secs := range []int64{1, 59, 60, 3600, 8100, 86399} {
		got, err := ParseDuration(FormatDuration(secs))
		if err != nil {
			t.Fatalf("parse %d: %v", secs, err)
		}
		if got != secs {
			t.Fatalf("round trip %d -> %d", secs, got)
		}
	}
	got, err := ParseDuration("01:30:00")
	if err != nil || got != 5400 {
		t.Fatalf("expected 5400, got %d (%v)", got, err)
	}
	if _, err := ParseDuration("3x"); err == nil {
		t.Fatalf("expected error for unknown unit")
	}
	if _, err := ParseDuration("00:61:00"); err == nil {
		t.Fatalf("expected error for minutes >= 60")
	}
}

func TestFormatHours(t *testing.T) {
	cases := map[float64]string{
		0:    "0h",
		0.75: "45m",
		1:    "1.0h",
		3.5:  "3.5h",
	}
	for in, want := range cases {
		if got := FormatHours(in); got != want {
			t.Fatalf("FormatHours(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestElapsedExcludesPauses(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	closedEnd := start.Add(20 * time.Minute)
	segments := []model.PauseSegment{
		{Start: start.Add(10 * time.Minute), End: &closedEnd},
	}
	now := start.Add(time.Hour)
	if got := Elapsed(start, segments, now); got != 50*60 {
		t.Fatalf("expected 3000s, got %d", got)
	}

	segments = append(segments, model.PauseSegment{Start: start.Add(40 * time.Minute)})
	frozen := Elapsed(start, segments, start.Add(45*time.Minute))
	later := Elapsed(start, segments, start.Add(2*time.Hour))
	if frozen != later || frozen != 30*60 {
		t.Fatalf("expected elapsed frozen at 1800s while paused, got %d and %d", frozen, later)
	}
}

func TestElapsedBounds(t *testing.T) {
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Second)
	segments := []model.PauseSegment{{Start: start.Add(time.Second), End: &end}}
	for _, offset := range []time.Duration{6 * time.Second, time.Minute, 3 * time.Hour} {
		now := start.Add(offset)
		got := Elapsed(start, segments, now)
		if got < 0 || got >= int64(now.Sub(start)/time.Second) {
			t.Fatalf("elapsed %d out of bounds for window %s", got, offset)
		}
	}
	if got := Elapsed(start, nil, start.Add(-time.Minute)); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
}
