package analytics

import (
	"sort"

	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

// MaxDistributionEntries caps each distribution group.
const MaxDistributionEntries = 6

// Share is the time spent on one entity.
type Share struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Seconds int64   `json:"seconds" yaml:"seconds"`
	Hours   float64 `json:"hours" yaml:"hours"`
}

// Distribution groups time by project, client and task.
type Distribution struct {
	Projects []Share `json:"projects" yaml:"projects"`
	Clients  []Share `json:"clients" yaml:"clients"`
	Tasks    []Share `json:"tasks" yaml:"tasks"`
}

// Distributions groups in-range sessions. Sessions with a dangling reference
// are left out of the groups they cannot be resolved for.
func Distributions(sessions []model.Session, idx *Index, rng model.Range) Distribution {
	var tasks, projects, clients grouping
	for _, s := range inRange(sessions, rng) {
		task, ok := idx.Task(s.TaskID)
		if !ok {
			continue
		}
		tasks.add(task.ID, task.Name, s.Duration)
		project, ok := idx.Project(task.ProjectID)
		if !ok {
			continue
		}
		projects.add(project.ID, project.Name, s.Duration)
		client, ok := idx.Client(project.ClientID)
		if !ok {
			continue
		}
		clients.add(client.ID, client.Name, s.Duration)
	}
	return Distribution{
		Projects: projects.top(MaxDistributionEntries),
		Clients:  clients.top(MaxDistributionEntries),
		Tasks:    tasks.top(MaxDistributionEntries),
	}
}

// grouping accumulates shares in first-seen order.
type grouping struct {
	order []Share
	pos   map[string]int
}

func (g *grouping) add(id, name string, seconds int64) {
	if g.pos == nil {
		g.pos = make(map[string]int)
	}
	i, ok := g.pos[id]
	if !ok {
		i = len(g.order)
		g.pos[id] = i
		g.order = append(g.order, Share{ID: id, Name: name})
	}
	g.order[i].Seconds += seconds
}

func (g *grouping) top(n int) []Share {
	out := make([]Share, len(g.order))
	copy(out, g.order)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seconds > out[j].Seconds })
	if len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Hours = timefmt.Hours(out[i].Seconds)
	}
	return out
}
