package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
	"github.com/verte-zerg/tuitrack/internal/timer"
)

var (
	// ErrNoActiveSession is returned when there is nothing to save.
	ErrNoActiveSession = timer.ErrNoActiveSession
	// ErrUnassignedTask is returned when the timer has no task yet.
	ErrUnassignedTask = errors.New("active session has no task assigned")
	// ErrTooShort is returned when the elapsed time is below the minimum.
	ErrTooShort = errors.New("session is shorter than the minimum duration")
)

// Saver converts the active timer into a stored session.
type Saver struct {
	engine *timer.Engine
	log    *Log
	logger *slog.Logger
	newID  func() string
}

// NewSaver wires the save flow.
func NewSaver(engine *timer.Engine, log *Log, logger *slog.Logger) *Saver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Saver{engine: engine, log: log, logger: logger, newID: uuid.NewString}
}

// Save stores the active session and returns the timer to idle. On any
// failure nothing is written and the timer is left as it was.
func (s *Saver) Save(ctx context.Context, notes string) (model.Session, error) {
	var saved model.Session
	err := s.engine.Commit(func(active *model.ActiveSession, now time.Time) error {
		taskID, ok := active.Task.ID()
		if !ok {
			return ErrUnassignedTask
		}
		elapsed := timefmt.Elapsed(active.StartTime, active.PauseSegments, now)
		if elapsed < model.MinSessionDurationSeconds {
			return fmt.Errorf("%w: %ds", ErrTooShort, elapsed)
		}
		session := model.Session{
			ID:        s.newID(),
			TaskID:    taskID,
			StartTime: now.Add(-time.Duration(elapsed) * time.Second),
			EndTime:   now,
			Duration:  elapsed,
			Notes:     notes,
			CreatedAt: now,
		}
		if err := s.log.Append(ctx, session); err != nil {
			return err
		}
		saved = session
		return nil
	})
	if err != nil {
		s.logger.Warn("session not saved", "error", err)
		return model.Session{}, err
	}
	s.logger.Info("session saved", "id", saved.ID, "task", saved.TaskID, "duration", saved.Duration)
	return saved, nil
}
