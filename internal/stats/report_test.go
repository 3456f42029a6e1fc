package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/store"
)

var reportNow = time.Date(2024, time.June, 12, 18, 0, 0, 0, time.UTC)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "tuitrack.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	created := reportNow.AddDate(0, -1, 0)
	if err := st.InsertClient(ctx, model.Client{ID: "c1", Name: "Acme", CreatedAt: created}); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	if err := st.InsertProject(ctx, model.Project{ID: "p1", ClientID: "c1", Name: "Web", CreatedAt: created}); err != nil {
		t.Fatalf("insert project: %v", err)
	}
	if err := st.InsertTask(ctx, model.Task{ID: "t1", ProjectID: "p1", Name: "Login", CreatedAt: created}); err != nil {
		t.Fatalf("insert task: %v", err)
	}
	for i, taskID := range []string{"t1", "t1", "deleted"} {
		start := reportNow.Add(-time.Duration(i) * 24 * time.Hour).Add(-8 * time.Hour)
		s := model.Session{
			ID:        "s" + string(rune('1'+i)),
			TaskID:    taskID,
			StartTime: start,
			EndTime:   start.Add(90 * time.Minute),
			Duration:  5400,
			Notes:     "review",
			CreatedAt: start.Add(90 * time.Minute),
		}
		if err := st.InsertSession(ctx, s); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}
	return st
}

func TestBuildReport(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.StatsConfig{Period: model.PeriodWeek}, reportNow)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Metrics) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(report.Metrics))
	}
	if report.Metrics[0].Display != "4.5h" {
		t.Fatalf("expected 4.5h total, got %q", report.Metrics[0].Display)
	}
	if len(report.Recent) != 3 || report.Recent[0].ID != "s1" {
		t.Fatalf("expected newest session first, got %+v", report.Recent)
	}
	if report.Recent[2].TaskName != analytics.MissingTask {
		t.Fatalf("expected fallback label for deleted task, got %q", report.Recent[2].TaskName)
	}
	if len(report.Distribution.Tasks) != 1 || report.Distribution.Tasks[0].Seconds != 10800 {
		t.Fatalf("expected only resolvable task in distribution, got %+v", report.Distribution.Tasks)
	}
	if report.Streak.Current != 3 {
		t.Fatalf("expected a three day streak, got %+v", report.Streak)
	}
	if len(report.Daily) != 7 {
		t.Fatalf("expected 7 daily points, got %d", len(report.Daily))
	}
}

func TestComputeCustomRange(t *testing.T) {
	st := seedStore(t)
	data, err := Load(context.Background(), st)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	from := reportNow.AddDate(0, 0, -1)
	to := reportNow.AddDate(0, 0, -1)
	report := Compute(data, model.StatsConfig{Period: model.PeriodCustom, From: &from, To: &to, RecentLimit: 5}, reportNow)
	if len(report.Recent) != 1 {
		t.Fatalf("expected one session in a single-day range, got %d", len(report.Recent))
	}
	if report.Metrics[1].Label != "Sesiones" || report.Metrics[1].Display != "1" {
		t.Fatalf("unexpected custom metrics: %+v", report.Metrics)
	}
}

func TestRenderReport(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.StatsConfig{Period: model.PeriodWeek}, reportNow)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Resumen", "Mejor día", "Racha actual: 3", "Horas por día", "Por proyecto", "Web", "Sesiones recientes", analytics.MissingTask} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderEmptyReport(t *testing.T) {
	report := Compute(Data{}, model.StatsConfig{Period: model.PeriodToday}, reportNow)
	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 60, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "Sin sesiones en este periodo.") {
		t.Fatalf("expected empty insights message:\n%s", buf.String())
	}
}

func TestExport(t *testing.T) {
	st := seedStore(t)
	report, err := BuildReport(context.Background(), st, model.StatsConfig{Period: model.PeriodWeek}, reportNow)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	var jsonBuf bytes.Buffer
	if err := Export(&jsonBuf, report, FormatJSON); err != nil {
		t.Fatalf("export json: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if decoded["period"] != "week" {
		t.Fatalf("unexpected period: %v", decoded["period"])
	}

	var yamlBuf bytes.Buffer
	if err := Export(&yamlBuf, report, FormatYAML); err != nil {
		t.Fatalf("export yaml: %v", err)
	}
	var doc struct {
		Recent []struct {
			ID       string `yaml:"id"`
			TaskName string `yaml:"taskName"`
		} `yaml:"recent"`
	}
	if err := yaml.Unmarshal(yamlBuf.Bytes(), &doc); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(doc.Recent) != 3 || doc.Recent[0].ID != "s1" || doc.Recent[0].TaskName != "Login" {
		t.Fatalf("unexpected yaml recent sessions: %+v", doc.Recent)
	}

	if err := Export(&yamlBuf, report, FormatText); err == nil {
		t.Fatalf("expected error for text export")
	}
	if _, err := ParseFormat("csv"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestHeatmapRows(t *testing.T) {
	days := analytics.Heatmap([]model.Session{{
		ID: "a", TaskID: "t", StartTime: time.Date(2024, time.January, 3, 9, 0, 0, 0, time.UTC), Duration: 7 * 3600,
	}}, 2024, time.UTC)
	rows := HeatmapRows(days)
	// 2024-01-01 is a Monday, so no leading blanks.
	if rows[0][0] != heatLevels[0] {
		t.Fatalf("unexpected first cell: %q", rows[0][0])
	}
	if rows[2][0] != heatLevels[4] {
		t.Fatalf("expected max level on Wednesday, got %q", rows[2][0])
	}
	total := 0
	for _, row := range rows {
		total += len(row)
	}
	if total != 366 {
		t.Fatalf("expected 366 cells, got %d", total)
	}

	var buf bytes.Buffer
	if err := RenderHeatmap(&buf, 2024, days); err != nil {
		t.Fatalf("render heatmap: %v", err)
	}
	if !strings.Contains(buf.String(), "7.0h en 1 días") {
		t.Fatalf("unexpected heatmap header:\n%s", buf.String())
	}
}

func TestSparklineAndMovingAverage(t *testing.T) {
	if got := Sparkline([]float64{0, 1, 2}); got != " +@" {
		t.Fatalf("unexpected sparkline %q", got)
	}
	avg := MovingAverage([]float64{2, 4, 6, 8}, 2)
	if avg[0] != 2 || avg[1] != 3 || avg[3] != 7 {
		t.Fatalf("unexpected moving average %v", avg)
	}
}
