package timer

import (
	"fmt"
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

// DefaultBackgroundThreshold separates a brief backgrounding of the process
// from a suspension or crash that needs the user to decide.
const DefaultBackgroundThreshold = 3 * time.Minute

// Outcome is the result of classifying persisted timer state at boot.
type Outcome int

const (
	// OutcomeIdle means nothing was persisted.
	OutcomeIdle Outcome = iota
	// OutcomePausedDirect means the user paused before the process ended.
	OutcomePausedDirect
	// OutcomePausedSilent means a short gap was absorbed as pause time.
	OutcomePausedSilent
	// OutcomeNeedsDecision means the gap is too long to guess.
	OutcomeNeedsDecision
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomePausedDirect:
		return "paused"
	case OutcomePausedSilent:
		return "paused-silent"
	case OutcomeNeedsDecision:
		return "needs-decision"
	default:
		return "unknown"
	}
}

// Decision resolves an ambiguous gap.
type Decision int

const (
	// UntilClose counts the gap as pause time.
	UntilClose Decision = iota
	// FullTime counts the gap as work.
	FullTime
)

func (d Decision) String() string {
	if d == FullTime {
		return "full-time"
	}
	return "until-close"
}

// ParseDecision reads "until-close" or "full-time".
func ParseDecision(s string) (Decision, error) {
	switch s {
	case "until-close":
		return UntilClose, nil
	case "full-time":
		return FullTime, nil
	default:
		return 0, fmt.Errorf("unknown recovery decision %q (use until-close or full-time)", s)
	}
}

// Recovery describes how persisted state was classified.
type Recovery struct {
	Outcome Outcome
	// Session is the session to install for paused outcomes, or the untouched
	// persisted session while a decision is pending.
	Session *model.ActiveSession
	// DetectedAt is the "now" the classification was computed for.
	DetectedAt time.Time
	Gap        time.Duration
	// TimeUntilClose and TimeTotal are elapsed seconds excluding and including the gap.
	TimeUntilClose int64
	TimeTotal      int64
}

// Classify decides how to restore a persisted active session. It is pure:
// the same inputs always produce the same Recovery.
func Classify(persisted *model.ActiveSession, now time.Time, threshold time.Duration) Recovery {
	if persisted == nil {
		return Recovery{Outcome: OutcomeIdle, DetectedAt: now}
	}
	session := persisted.Clone()
	if session.Paused() {
		return Recovery{Outcome: OutcomePausedDirect, Session: session, DetectedAt: now}
	}

	gap := now.Sub(session.LastTick)
	if gap < 0 {
		gap = 0
	}
	if gap < threshold {
		session.PauseSegments = append(session.PauseSegments, model.PauseSegment{Start: session.LastTick})
		session.LastTick = now
		return Recovery{Outcome: OutcomePausedSilent, Session: session, DetectedAt: now, Gap: gap}
	}

	return Recovery{
		Outcome:        OutcomeNeedsDecision,
		Session:        session,
		DetectedAt:     now,
		Gap:            gap,
		TimeUntilClose: timefmt.Elapsed(session.StartTime, session.PauseSegments, session.LastTick),
		TimeTotal:      timefmt.Elapsed(session.StartTime, session.PauseSegments, now),
	}
}

// resolve builds the paused session that results from a decision.
func (r Recovery) resolve(d Decision) *model.ActiveSession {
	session := r.Session.Clone()
	at := r.DetectedAt
	if d == UntilClose && at.After(session.LastTick) {
		end := at
		session.PauseSegments = append(session.PauseSegments, model.PauseSegment{Start: session.LastTick, End: &end})
	}
	session.PauseSegments = append(session.PauseSegments, model.PauseSegment{Start: at})
	session.LastTick = at
	return session
}
