// Package timer implements the persisted active-session state machine.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

// DefaultTickInterval is the heartbeat cadence while running.
const DefaultTickInterval = time.Second

// ErrNoActiveSession is returned when an operation needs a live session.
var ErrNoActiveSession = errors.New("no active session")

// State is the timer state.
type State int

const (
	Idle State = iota
	Running
	Paused
	NeedsRecoveryDecision
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case NeedsRecoveryDecision:
		return "needs-recovery-decision"
	default:
		return "unknown"
	}
}

// Repository persists the active session. A nil session means idle.
type Repository interface {
	LoadActive(ctx context.Context) (*model.ActiveSession, error)
	SaveActive(ctx context.Context, active *model.ActiveSession) error
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	BackgroundThreshold time.Duration
	TickInterval        time.Duration
	Now                 func() time.Time
	Scheduler           Scheduler
	Logger              *slog.Logger
}

// TaskInfo describes the live session for display.
type TaskInfo struct {
	Task      model.TaskRef
	State     State
	StartTime time.Time
	Elapsed   int64
}

// Engine owns the single active session.
type Engine struct {
	mu sync.Mutex

	repo      Repository
	threshold time.Duration
	interval  time.Duration
	now       func() time.Time
	scheduler Scheduler
	log       *slog.Logger

	state   State
	active  *model.ActiveSession
	pending *Recovery

	cancelTick func()
	tickGen    uint64
	onTick     func()
}

// New constructs an idle engine. Call Boot to restore persisted state.
func New(repo Repository, opts Options) *Engine {
	e := &Engine{
		repo:      repo,
		threshold: opts.BackgroundThreshold,
		interval:  opts.TickInterval,
		now:       opts.Now,
		scheduler: opts.Scheduler,
		log:       opts.Logger,
	}
	if e.threshold <= 0 {
		e.threshold = DefaultBackgroundThreshold
	}
	if e.interval <= 0 {
		e.interval = DefaultTickInterval
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.scheduler == nil {
		e.scheduler = TickerScheduler{}
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// OnTick registers a callback fired after every heartbeat.
func (e *Engine) OnTick(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTick = fn
}

// Boot reads persisted state and classifies it. Unreadable state leaves the
// engine idle.
func (e *Engine) Boot() Recovery {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTicking()
	e.active = nil
	e.pending = nil
	e.state = Idle

	now := e.now()
	persisted, err := e.repo.LoadActive(context.Background())
	if err != nil {
		e.log.Warn("discarding unreadable active session", "error", err)
		return Recovery{Outcome: OutcomeIdle, DetectedAt: now}
	}
	rec := Classify(persisted, now, e.threshold)
	switch rec.Outcome {
	case OutcomePausedDirect:
		e.install(rec.Session, Paused)
	case OutcomePausedSilent:
		e.install(rec.Session, Paused)
		if err := e.persist(); err != nil {
			e.log.Error("failed to persist recovered session", "error", err)
		}
		e.log.Info("absorbed short gap as pause", "gap", rec.Gap.String())
	case OutcomeNeedsDecision:
		pending := rec
		e.pending = &pending
		e.state = NeedsRecoveryDecision
		e.log.Info("recovery decision required",
			"gap", rec.Gap.String(),
			"until_close", rec.TimeUntilClose,
			"total", rec.TimeTotal)
	}
	return rec
}

// ApplyRecoveryDecision resolves a pending recovery into a paused session.
// It is a no-op unless a decision is pending.
func (e *Engine) ApplyRecoveryDecision(d Decision) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != NeedsRecoveryDecision || e.pending == nil {
		e.log.Warn("ignoring recovery decision", "state", e.state.String(), "decision", d.String())
		return nil
	}
	session := e.pending.resolve(d)
	e.pending = nil
	e.install(session, Paused)
	return e.persist()
}

// Start begins a new session. It is a no-op while another session exists.
func (e *Engine) Start(task model.TaskRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		e.log.Warn("ignoring start: session already active", "state", e.state.String())
		return nil
	}
	now := e.now()
	e.install(&model.ActiveSession{
		Task:      task,
		StartTime: now,
		LastTick:  now,
	}, Running)
	return e.persist()
}

// Pause opens a pause segment. No-op unless running.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Running {
		e.log.Warn("ignoring pause", "state", e.state.String())
		return nil
	}
	now := e.now()
	e.active.PauseSegments = append(e.active.PauseSegments, model.PauseSegment{Start: now})
	e.active.LastTick = now
	e.setState(Paused)
	return e.persist()
}

// Resume closes the open pause segment. No-op unless paused.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Paused {
		e.log.Warn("ignoring resume", "state", e.state.String())
		return nil
	}
	now := e.now()
	last := len(e.active.PauseSegments) - 1
	end := now
	e.active.PauseSegments[last].End = &end
	e.active.LastTick = now
	e.setState(Running)
	return e.persist()
}

// Tick refreshes the heartbeat. No-op unless running.
func (e *Engine) Tick() error {
	e.mu.Lock()
	if e.state != Running {
		e.mu.Unlock()
		return nil
	}
	err := e.tickLocked()
	fn := e.onTick
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
	return err
}

func (e *Engine) tickFrom(gen uint64) {
	e.mu.Lock()
	if gen != e.tickGen || e.state != Running {
		e.mu.Unlock()
		return
	}
	if err := e.tickLocked(); err != nil {
		e.log.Error("failed to persist heartbeat", "error", err)
	}
	fn := e.onTick
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (e *Engine) tickLocked() error {
	e.active.LastTick = e.now()
	return e.persist()
}

// Reset discards the active session without saving it.
func (e *Engine) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clear()
	return e.persist()
}

// AssignTask points the active session at a task, keeping its timing intact.
func (e *Engine) AssignTask(taskID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		e.log.Warn("ignoring task assignment", "state", e.state.String())
		return nil
	}
	if taskID == "" {
		return fmt.Errorf("task id must not be empty")
	}
	e.active.Task = model.Assigned(taskID)
	return e.persist()
}

// Commit hands the live session and the current time to fn. When fn
// succeeds the engine returns to idle; otherwise it is left untouched.
func (e *Engine) Commit(fn func(active *model.ActiveSession, now time.Time) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return ErrNoActiveSession
	}
	if err := fn(e.active.Clone(), e.now()); err != nil {
		return err
	}
	e.clear()
	if err := e.persist(); err != nil {
		e.log.Error("failed to clear persisted session after save", "error", err)
	}
	return nil
}

// Close stops the heartbeat. Persisted state is kept for the next boot.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTicking()
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ElapsedSeconds returns worked seconds of the live session, or 0.
func (e *Engine) ElapsedSeconds() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return 0
	}
	return timefmt.Elapsed(e.active.StartTime, e.active.PauseSegments, e.now())
}

// CurrentTask describes the live session. ok is false when idle or while a
// recovery decision is pending.
func (e *Engine) CurrentTask() (info TaskInfo, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return TaskInfo{State: e.state}, false
	}
	return TaskInfo{
		Task:      e.active.Task,
		State:     e.state,
		StartTime: e.active.StartTime,
		Elapsed:   timefmt.Elapsed(e.active.StartTime, e.active.PauseSegments, e.now()),
	}, true
}

// Snapshot returns a copy of the live session, or nil.
func (e *Engine) Snapshot() *model.ActiveSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active.Clone()
}

// PendingRecovery returns the recovery awaiting a decision.
func (e *Engine) PendingRecovery() (Recovery, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return Recovery{}, false
	}
	return *e.pending, true
}

func (e *Engine) install(session *model.ActiveSession, state State) {
	e.active = session
	e.setState(state)
}

func (e *Engine) clear() {
	e.active = nil
	e.pending = nil
	e.setState(Idle)
}

// setState keeps the tick registration in step with the Running state.
func (e *Engine) setState(next State) {
	wasRunning := e.state == Running
	e.state = next
	switch {
	case next == Running && !wasRunning:
		e.startTicking()
	case next != Running && wasRunning:
		e.stopTicking()
	}
}

func (e *Engine) startTicking() {
	e.tickGen++
	gen := e.tickGen
	e.cancelTick = e.scheduler.Every(e.interval, func() { e.tickFrom(gen) })
}

func (e *Engine) stopTicking() {
	if e.cancelTick != nil {
		e.cancelTick()
		e.cancelTick = nil
	}
	e.tickGen++
}

func (e *Engine) persist() error {
	if err := e.repo.SaveActive(context.Background(), e.active); err != nil {
		e.log.Error("failed to persist active session", "error", err)
		return fmt.Errorf("failed to persist active session: %w", err)
	}
	return nil
}
