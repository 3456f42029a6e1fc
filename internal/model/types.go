// Package model defines shared data structures.
package model

import "time"

// MinSessionDurationSeconds is the shortest session the save flow accepts.
const MinSessionDurationSeconds = 1

// Client is the top level of the work hierarchy.
type Client struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Project belongs to a client.
type Project struct {
	ID        string    `json:"id" yaml:"id"`
	ClientID  string    `json:"clientId" yaml:"clientId"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Task belongs to a project and is what sessions are tracked against.
type Task struct {
	ID        string    `json:"id" yaml:"id"`
	ProjectID string    `json:"projectId" yaml:"projectId"`
	Name      string    `json:"name" yaml:"name"`
	Completed bool      `json:"completed" yaml:"completed"`
	Archived  bool      `json:"archived" yaml:"archived"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// Session is a completed, immutable work interval.
type Session struct {
	ID        string    `json:"id" yaml:"id" validate:"required"`
	TaskID    string    `json:"taskId" yaml:"taskId" validate:"required"`
	StartTime time.Time `json:"startTime" yaml:"startTime" validate:"required"`
	EndTime   time.Time `json:"endTime" yaml:"endTime" validate:"required,gtfield=StartTime"`
	Duration  int64     `json:"duration" yaml:"duration" validate:"min=1"`
	Notes     string    `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
}

// PauseSegment is an interval of an active session that does not count as work.
// A nil End marks the segment as open (the timer is currently paused).
type PauseSegment struct {
	Start time.Time
	End   *time.Time
}

// Open reports whether the segment has not been closed yet.
func (p PauseSegment) Open() bool {
	return p.End == nil
}

// TaskRef identifies the task an active session is tracked against.
// The zero value is unassigned.
type TaskRef struct {
	id string
}

// Assigned returns a reference to an existing task.
func Assigned(taskID string) TaskRef {
	return TaskRef{id: taskID}
}

// Unassigned returns a reference for a timer that has no task yet.
func Unassigned() TaskRef {
	return TaskRef{}
}

// ID returns the task id and whether the reference is assigned.
func (r TaskRef) ID() (string, bool) {
	return r.id, r.id != ""
}

// IsAssigned reports whether the reference points to a task.
func (r TaskRef) IsAssigned() bool {
	return r.id != ""
}

// ActiveSession is the single in-flight timer.
type ActiveSession struct {
	Task          TaskRef
	StartTime     time.Time
	PauseSegments []PauseSegment
	LastTick      time.Time
}

// Paused reports whether the trailing pause segment is open.
func (a *ActiveSession) Paused() bool {
	if a == nil || len(a.PauseSegments) == 0 {
		return false
	}
	return a.PauseSegments[len(a.PauseSegments)-1].Open()
}

// Clone returns a deep copy of the session.
func (a *ActiveSession) Clone() *ActiveSession {
	if a == nil {
		return nil
	}
	out := *a
	out.PauseSegments = make([]PauseSegment, len(a.PauseSegments))
	for i, seg := range a.PauseSegments {
		out.PauseSegments[i] = PauseSegment{Start: seg.Start}
		if seg.End != nil {
			end := *seg.End
			out.PauseSegments[i].End = &end
		}
	}
	return &out
}

// Period names a reporting window.
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodMonth  Period = "month"
	PeriodYear   Period = "year"
	PeriodCustom Period = "custom"
)

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, bool) {
	switch p := Period(s); p {
	case PeriodToday, PeriodWeek, PeriodMonth, PeriodYear, PeriodCustom:
		return p, true
	}
	return "", false
}

// Range is an inclusive time interval.
type Range struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t lies inside the inclusive range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Period      Period
	From        *time.Time
	To          *time.Time
	RecentLimit int
	Year        int
}
