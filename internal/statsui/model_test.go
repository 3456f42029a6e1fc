package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuitrack/internal/model"
)

type fakeSource struct {
	sessions []model.Session
	err      error
}

func (f *fakeSource) ListSessions(context.Context) ([]model.Session, error) { return f.sessions, f.err }
func (f *fakeSource) ListTasks(context.Context) ([]model.Task, error) {
	return []model.Task{{ID: "t1", ProjectID: "p1", Name: "Login"}}, nil
}
func (f *fakeSource) ListProjects(context.Context) ([]model.Project, error) {
	return []model.Project{{ID: "p1", ClientID: "c1", Name: "Web"}}, nil
}
func (f *fakeSource) ListClients(context.Context) ([]model.Client, error) {
	return []model.Client{{ID: "c1", Name: "Acme"}}, nil
}

var testNow = time.Date(2024, time.June, 12, 18, 0, 0, 0, time.UTC)

func newTestModel(src *fakeSource) *Model {
	m := NewModel(src, model.StatsConfig{Period: model.PeriodWeek}, func() time.Time { return testNow })
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func TestOverviewShowsMetricCards(t *testing.T) {
	start := testNow.Add(-4 * time.Hour)
	src := &fakeSource{sessions: []model.Session{{
		ID: "s1", TaskID: "t1", StartTime: start, EndTime: start.Add(2 * time.Hour), Duration: 7200, CreatedAt: start,
	}}}
	m := newTestModel(src)
	view := m.View()
	for _, want := range []string{"Resumen", "Total", "2.0h", "Mejor día", "Periodo: week"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view:\n%s", want, view)
		}
	}
}

func TestPeriodCycleAndTabs(t *testing.T) {
	m := newTestModel(&fakeSource{})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	if m.cfg.Period != model.PeriodMonth || m.report.Period != model.PeriodMonth {
		t.Fatalf("expected month after week, got %s", m.cfg.Period)
	}
	if nextPeriod(model.PeriodYear) != model.PeriodToday || nextPeriod(model.PeriodCustom) != model.PeriodToday {
		t.Fatalf("unexpected period cycle")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabRecent {
		t.Fatalf("expected wrap to last tab, got %d", m.activeTab)
	}
	if !strings.Contains(m.View(), "No sessions found.") {
		t.Fatalf("expected empty recent message")
	}

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("[")})
	if m.cfg.Year != 2023 {
		t.Fatalf("expected previous year, got %d", m.cfg.Year)
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	m := newTestModel(&fakeSource{err: errors.New("disk on fire")})
	if !strings.Contains(m.View(), "disk on fire") {
		t.Fatalf("expected error in footer")
	}
}

func TestRenderHeatmapHasSevenRows(t *testing.T) {
	out := renderHeatmap(2024, nil)
	if !strings.Contains(out, "Actividad 2024: 0h") {
		t.Fatalf("unexpected heatmap header: %s", out)
	}
	if strings.Count(out, "\n") < 9 {
		t.Fatalf("expected title, blank line, 7 rows and legend:\n%s", out)
	}
}
