package analytics

import (
	"time"

	"github.com/verte-zerg/tuitrack/internal/model"
)

// Detail summarizes the sessions of a single task.
type Detail struct {
	TaskID         string         `json:"taskId" yaml:"taskId"`
	Sessions       int            `json:"sessions" yaml:"sessions"`
	TotalSeconds   int64          `json:"totalSeconds" yaml:"totalSeconds"`
	AverageSeconds int64          `json:"averageSeconds" yaml:"averageSeconds"`
	Longest        *model.Session `json:"longest,omitempty" yaml:"longest,omitempty"`
	Shortest       *model.Session `json:"shortest,omitempty" yaml:"shortest,omitempty"`
	Last           *model.Session `json:"last,omitempty" yaml:"last,omitempty"`
	DistinctDays   int            `json:"distinctDays" yaml:"distinctDays"`
	Streak         Streak         `json:"streak" yaml:"streak"`
}

// TaskDetail computes per-task statistics. Ties on longest, shortest and last
// go to the first session encountered.
func TaskDetail(sessions []model.Session, taskID string, now time.Time) Detail {
	d := Detail{TaskID: taskID}
	var own []model.Session
	for _, s := range sessions {
		if s.TaskID == taskID {
			own = append(own, s)
		}
	}
	if len(own) == 0 {
		return d
	}
	for i := range own {
		s := &own[i]
		d.TotalSeconds += s.Duration
		if d.Longest == nil || s.Duration > d.Longest.Duration {
			d.Longest = s
		}
		if d.Shortest == nil || s.Duration < d.Shortest.Duration {
			d.Shortest = s
		}
		if d.Last == nil || s.StartTime.After(d.Last.StartTime) {
			d.Last = s
		}
	}
	d.Sessions = len(own)
	d.AverageSeconds = d.TotalSeconds / int64(len(own))
	d.DistinctDays = activeDays(own, now.Location())
	d.Streak = GlobalStreak(own, now)
	return d
}
