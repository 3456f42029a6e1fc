package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuitrack/internal/config"
	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/store"
)

func setupEnv(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(root, "state"))
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	rootCmd := newRootCmd()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(config.DefaultDBPath()), 0o755))
	st, err := store.Open(config.DefaultDBPath())
	require.NoError(t, err)
	return st
}

func onlyTask(t *testing.T) model.Task {
	t.Helper()
	st := openStore(t)
	defer func() { _ = st.Close() }()
	tasks, err := st.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	return tasks[0]
}

func TestTaskCommands(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")

	out, err = runCmd(t, "task", "add", "Acme", "Web", "Login")
	require.NoError(t, err)
	assert.Contains(t, out, "Added task Login")

	out, err = runCmd(t, "task", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Cliente")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "Login")

	task := onlyTask(t)
	out, err = runCmd(t, "task", "show", task.ID[:6])
	require.NoError(t, err)
	assert.Contains(t, out, "Acme / Web / Login")
	assert.Contains(t, out, "Sin sesiones registradas.")

	_, err = runCmd(t, "task", "rm", "zzz")
	require.Error(t, err)

	out, err = runCmd(t, "task", "rm", task.ID[:6])
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task Login")
}

func TestStatusWithoutSession(t *testing.T) {
	setupEnv(t)

	out, err := runCmd(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No active session.")

	_, err = runCmd(t, "save")
	require.Error(t, err)

	_, err = runCmd(t, "recover", "full-time")
	require.Error(t, err)
}

func TestRecoverAndSave(t *testing.T) {
	setupEnv(t)
	_, err := runCmd(t, "task", "add", "Acme", "Web", "Login")
	require.NoError(t, err)
	task := onlyTask(t)

	now := time.Now().Truncate(time.Second)
	st := openStore(t)
	require.NoError(t, st.SaveActive(context.Background(), &model.ActiveSession{
		Task:      model.Unassigned(),
		StartTime: now.Add(-2 * time.Hour),
		LastTick:  now.Add(-time.Hour),
	}))
	require.NoError(t, st.Close())

	out, err := runCmd(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Recovery pending")
	assert.Contains(t, out, "until-close  01:00:00")

	_, err = runCmd(t, "save", "--task", task.ID)
	require.Error(t, err, "save must wait for the recovery decision")

	_, err = runCmd(t, "recover", "sometimes")
	require.Error(t, err)

	out, err = runCmd(t, "recover", "until-close")
	require.NoError(t, err)
	assert.Contains(t, out, "Recovered with until-close: 01:00:00, paused.")

	out, err = runCmd(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "State:   paused")
	assert.Contains(t, out, "(unassigned)")

	_, err = runCmd(t, "save")
	require.ErrorContains(t, err, "pass --task")

	out, err = runCmd(t, "save", "--task", task.ID[:8], "--notes", "crash recovery")
	require.NoError(t, err)
	assert.Contains(t, out, "(01:00:00)")

	out, err = runCmd(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No active session.")

	out, err = runCmd(t, "report", "--format", "json",
		"--from", now.AddDate(0, 0, -1).Format(time.DateOnly), "--to", time.Now().Format(time.DateOnly))
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	recent, ok := report["recent"].([]any)
	require.True(t, ok, "report: %s", out)
	require.Len(t, recent, 1)
	assert.Equal(t, "crash recovery", recent[0].(map[string]any)["notes"])

	out, err = runCmd(t, "task", "show", task.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Sesiones")
}

func TestResetDiscardsTimer(t *testing.T) {
	setupEnv(t)
	now := time.Now()
	st := openStore(t)
	end := now.Add(-time.Minute)
	require.NoError(t, st.SaveActive(context.Background(), &model.ActiveSession{
		StartTime:     now.Add(-10 * time.Minute),
		PauseSegments: []model.PauseSegment{{Start: now.Add(-5 * time.Minute), End: &end}, {Start: end}},
		LastTick:      end,
	}))
	require.NoError(t, st.Close())

	out, err := runCmd(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Timer discarded.")

	out, err = runCmd(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "No active session.")
}

func TestSessionCommands(t *testing.T) {
	setupEnv(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	st := openStore(t)
	require.NoError(t, st.InsertSession(ctx, model.Session{
		ID: "abc123", TaskID: "t1", StartTime: now, EndTime: now.Add(time.Hour), Duration: 3600, CreatedAt: now,
	}))
	require.NoError(t, st.Close())

	out, err := runCmd(t, "session", "note", "abc", "pairing")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated session abc123")

	st = openStore(t)
	sessions, err := st.ListSessions(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Close())
	require.Len(t, sessions, 1)
	assert.Equal(t, "pairing", sessions[0].Notes)

	_, err = runCmd(t, "session", "rm", "abc")
	require.NoError(t, err)
	_, err = runCmd(t, "session", "rm", "abc")
	require.Error(t, err)
}

func TestReportFlags(t *testing.T) {
	setupEnv(t)

	_, err := runCmd(t, "report", "--format", "xml")
	require.Error(t, err)

	_, err = runCmd(t, "report", "--from", "2024-01-01")
	require.ErrorContains(t, err, "--from and --to")

	_, err = runCmd(t, "report", "--period", "custom")
	require.Error(t, err)

	out, err := runCmd(t, "report", "--from", "2024-01-01", "--to", "2024-01-07", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "period: custom")

	out, err = runCmd(t, "heatmap", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Actividad 2024")
}

func TestConfigPeriodDefault(t *testing.T) {
	setupEnv(t)
	require.NoError(t, ensureConfigFile(config.DefaultConfigPath()))
	cfgPath := config.DefaultConfigPath()
	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, []byte(strings.Replace(string(data), `period = "week"`, `period = "month"`, 1)), 0o644))

	out, err := runCmd(t, "report", "--format", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "period: month")

	out, err = runCmd(t, "report", "--format", "yaml", "--period", "today")
	require.NoError(t, err)
	assert.Contains(t, out, "period: today")
}

func TestResolvePrefix(t *testing.T) {
	ids := []string{"abc1", "abc2", "def"}
	self := func(s string) string { return s }

	got, err := resolvePrefix("task", "d", ids, self)
	require.NoError(t, err)
	assert.Equal(t, "def", got)

	_, err = resolvePrefix("task", "abc", ids, self)
	require.ErrorContains(t, err, "ambiguous")

	got, err = resolvePrefix("task", "abc1", ids, self)
	require.NoError(t, err)
	assert.Equal(t, "abc1", got)

	_, err = resolvePrefix("task", " ", ids, self)
	require.Error(t, err)
}
