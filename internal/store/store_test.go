package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tuitrack.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestSessionsRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"b", "a"} {
		start := base.Add(time.Duration(1-i) * time.Hour)
		s := model.Session{
			ID:        id,
			TaskID:    "task-1",
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
			Duration:  1800,
			CreatedAt: start.Add(30 * time.Minute),
		}
		if err := st.InsertSession(ctx, s); err != nil {
			t.Fatalf("insert session: %v", err)
		}
	}

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "a" || sessions[1].ID != "b" {
		t.Fatalf("expected sessions ordered by start time, got %s, %s", sessions[0].ID, sessions[1].ID)
	}
	if !sessions[0].StartTime.Equal(base) {
		t.Fatalf("unexpected start time: %v", sessions[0].StartTime)
	}

	if err := st.UpdateSessionNotes(ctx, "a", "reviewed PR"); err != nil {
		t.Fatalf("update notes: %v", err)
	}
	if err := st.UpdateSessionNotes(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.DeleteSession(ctx, "b"); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	sessions, err = st.ListSessions(ctx)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Notes != "reviewed PR" {
		t.Fatalf("unexpected sessions after delete: %+v", sessions)
	}
}

func TestActiveSessionPersistence(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	active, err := st.LoadActive(ctx)
	if err != nil || active != nil {
		t.Fatalf("expected no active session, got %+v (%v)", active, err)
	}

	start := time.UnixMilli(1_700_000_000_123)
	end := start.Add(2 * time.Minute)
	want := &model.ActiveSession{
		Task:      model.Assigned("task-1"),
		StartTime: start,
		PauseSegments: []model.PauseSegment{
			{Start: start.Add(time.Minute), End: &end},
			{Start: start.Add(5 * time.Minute)},
		},
		LastTick: start.Add(5 * time.Minute),
	}
	if err := st.SaveActive(ctx, want); err != nil {
		t.Fatalf("save active: %v", err)
	}
	got, err := st.LoadActive(ctx)
	if err != nil {
		t.Fatalf("load active: %v", err)
	}
	if id, ok := got.Task.ID(); !ok || id != "task-1" {
		t.Fatalf("unexpected task ref: %+v", got.Task)
	}
	if !got.StartTime.Equal(start) || !got.LastTick.Equal(want.LastTick) {
		t.Fatalf("timestamps did not survive round trip: %+v", got)
	}
	if len(got.PauseSegments) != 2 || !got.Paused() {
		t.Fatalf("expected trailing open segment, got %+v", got.PauseSegments)
	}

	if err := st.SaveActive(ctx, nil); err != nil {
		t.Fatalf("clear active: %v", err)
	}
	if active, err := st.LoadActive(ctx); err != nil || active != nil {
		t.Fatalf("expected cleared active session, got %+v (%v)", active, err)
	}
}

func TestDecodeActiveRejectsMalformed(t *testing.T) {
	inputs := []string{
		`{`,
		`{"taskId":null,"startTime":0,"pauseSegments":[],"lastTickTimestamp":5}`,
		`{"taskId":"x","startTime":1,"pauseSegments":[{"start":2,"end":null},{"start":3,"end":4}],"lastTickTimestamp":5}`,
		`{"taskId":"x","startTime":1,"pauseSegments":[{"start":4,"end":3}],"lastTickTimestamp":5}`,
	}
	for _, in := range inputs {
		if _, err := DecodeActive([]byte(in)); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
	active, err := DecodeActive([]byte(`null`))
	if err != nil || active != nil {
		t.Fatalf("expected nil for null, got %+v (%v)", active, err)
	}
	active, err = DecodeActive([]byte(`{"taskId":null,"startTime":1000,"pauseSegments":[],"lastTickTimestamp":2000}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if active.Task.IsAssigned() {
		t.Fatalf("expected unassigned task ref")
	}
}

func TestDeleteClientCascades(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)

	mustNoErr(t, st.InsertClient(ctx, model.Client{ID: "c1", Name: "Acme", CreatedAt: now}))
	mustNoErr(t, st.InsertProject(ctx, model.Project{ID: "p1", ClientID: "c1", Name: "Web", CreatedAt: now}))
	mustNoErr(t, st.InsertProject(ctx, model.Project{ID: "p2", ClientID: "c1", Name: "Empty", CreatedAt: now}))
	mustNoErr(t, st.InsertTask(ctx, model.Task{ID: "t1", ProjectID: "p1", Name: "Login", CreatedAt: now}))
	mustNoErr(t, st.InsertSession(ctx, model.Session{
		ID: "s1", TaskID: "t1", StartTime: now, EndTime: now.Add(time.Minute), Duration: 60, CreatedAt: now,
	}))
	mustNoErr(t, st.InsertSession(ctx, model.Session{
		ID: "s2", TaskID: "orphan", StartTime: now, EndTime: now.Add(time.Minute), Duration: 60, CreatedAt: now,
	}))

	mustNoErr(t, st.DeleteClient(ctx, "c1"))

	tasks, err := st.ListTasks(ctx)
	mustNoErr(t, err)
	projects, err := st.ListProjects(ctx)
	mustNoErr(t, err)
	sessions, err := st.ListSessions(ctx)
	mustNoErr(t, err)
	if len(tasks) != 0 || len(projects) != 0 {
		t.Fatalf("expected cascade to remove projects and tasks, got %d projects %d tasks", len(projects), len(tasks))
	}
	if len(sessions) != 1 || sessions[0].ID != "s2" {
		t.Fatalf("expected only unrelated session to remain, got %+v", sessions)
	}
	if err := st.DeleteClient(ctx, "c1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
