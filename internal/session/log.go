// Package session keeps the log of completed sessions and the flow that
// turns the active timer into one.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/verte-zerg/tuitrack/internal/model"
)

var (
	// ErrInvalidSession wraps every validation failure.
	ErrInvalidSession = errors.New("invalid session")
	// ErrNotFound is returned for unknown session ids.
	ErrNotFound = errors.New("session not found")
)

var validate = validator.New()

// Repository persists completed sessions.
type Repository interface {
	InsertSession(ctx context.Context, s model.Session) error
	ListSessions(ctx context.Context) ([]model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	UpdateSessionNotes(ctx context.Context, id, notes string) error
	DeleteSessionsForTask(ctx context.Context, taskID string) (int64, error)
}

// Log is the in-memory, persisted list of completed sessions. Memory is
// authoritative once a write succeeds.
type Log struct {
	mu       sync.Mutex
	repo     Repository
	log      *slog.Logger
	sessions []model.Session
}

// NewLog constructs an empty log. Call Load to hydrate it.
func NewLog(repo Repository, logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{repo: repo, log: logger}
}

// Load replaces the in-memory list with the persisted sessions.
func (l *Log) Load(ctx context.Context) error {
	sessions, err := l.repo.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = sessions
	return nil
}

// All returns a copy of every session ordered by start time.
func (l *Log) All() []model.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.Session(nil), l.sessions...)
}

// Get returns a session by id.
func (l *Log) Get(id string) (model.Session, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return model.Session{}, false
}

// Append validates and stores a new session.
func (l *Log) Append(ctx context.Context, s model.Session) error {
	if err := Validate(s); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.repo.InsertSession(ctx, s); err != nil {
		l.log.Error("failed to persist session", "id", s.ID, "error", err)
		return fmt.Errorf("failed to persist session: %w", err)
	}
	next := append(append([]model.Session(nil), l.sessions...), s)
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].StartTime.Before(next[j].StartTime)
	})
	l.sessions = next
	return nil
}

// Delete removes one session.
func (l *Log) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	if err := l.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	l.sessions = append(append([]model.Session(nil), l.sessions[:idx]...), l.sessions[idx+1:]...)
	return nil
}

// DeleteForTask removes every session of a task and returns how many were removed.
func (l *Log) DeleteForTask(ctx context.Context, taskID string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.repo.DeleteSessionsForTask(ctx, taskID); err != nil {
		return 0, fmt.Errorf("failed to delete sessions for task: %w", err)
	}
	kept := make([]model.Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		if s.TaskID != taskID {
			kept = append(kept, s)
		}
	}
	removed := len(l.sessions) - len(kept)
	l.sessions = kept
	return removed, nil
}

// UpdateNotes changes the notes of a session after re-checking its invariants.
func (l *Log) UpdateNotes(ctx context.Context, id, notes string) (model.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexOf(id)
	if idx < 0 {
		return model.Session{}, ErrNotFound
	}
	updated := l.sessions[idx]
	updated.Notes = notes
	if err := Validate(updated); err != nil {
		return model.Session{}, err
	}
	if err := l.repo.UpdateSessionNotes(ctx, id, notes); err != nil {
		return model.Session{}, fmt.Errorf("failed to update session notes: %w", err)
	}
	next := append([]model.Session(nil), l.sessions...)
	next[idx] = updated
	l.sessions = next
	return updated, nil
}

func (l *Log) indexOf(id string) int {
	for i, s := range l.sessions {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Validate checks the stored-session invariants.
func Validate(s model.Session) error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	want := int64(math.Round(s.EndTime.Sub(s.StartTime).Seconds()))
	if s.Duration != want {
		return fmt.Errorf("%w: duration %ds does not match interval %ds", ErrInvalidSession, s.Duration, want)
	}
	if s.Duration < model.MinSessionDurationSeconds {
		return fmt.Errorf("%w: duration %ds below minimum", ErrInvalidSession, s.Duration)
	}
	return nil
}
