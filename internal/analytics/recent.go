package analytics

import (
	"sort"

	"github.com/verte-zerg/tuitrack/internal/model"
)

// DefaultRecentLimit applies when no positive limit is given.
const DefaultRecentLimit = 20

// RecentSession is a session with resolved display names.
type RecentSession struct {
	model.Session `yaml:",inline"`
	TaskName      string `json:"taskName" yaml:"taskName"`
	ProjectName   string `json:"projectName" yaml:"projectName"`
	ClientName    string `json:"clientName" yaml:"clientName"`
}

// RecentSessions returns in-range sessions, newest first, capped at limit.
func RecentSessions(sessions []model.Session, idx *Index, rng model.Range, limit int) []RecentSession {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	in := inRange(sessions, rng)
	sort.SliceStable(in, func(i, j int) bool { return in[i].StartTime.After(in[j].StartTime) })
	if len(in) > limit {
		in = in[:limit]
	}
	out := make([]RecentSession, 0, len(in))
	for _, s := range in {
		task, project, client := idx.Names(s.TaskID)
		out = append(out, RecentSession{Session: s, TaskName: task, ProjectName: project, ClientName: client})
	}
	return out
}
