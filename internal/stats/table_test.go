package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Task", "Hours", "Share"}
	rows := [][]string{
		{"Login", "3.5h", "70%"},
		{"Diseño", "1.5h", "30%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := FormatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Task    Hours  Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Login    3.5h    70%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Diseño   1.5h    30%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthCountsWideRunes(t *testing.T) {
	if got := displayWidth("日本"); got != 4 {
		t.Fatalf("expected width 4, got %d", got)
	}
	if got := clip("a very long task name that keeps going and going"); displayWidth(got) > maxCellWidth {
		t.Fatalf("expected clipped value to fit, got %q", got)
	}
}
