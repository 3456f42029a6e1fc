// Package analytics derives metrics, streaks, distributions and heatmaps from
// the session log. Every function is pure and treats empty input as valid.
package analytics

import "github.com/verte-zerg/tuitrack/internal/model"

// Fallback labels for sessions whose hierarchy entries were deleted.
const (
	MissingTask    = "Tarea eliminada"
	MissingProject = "Proyecto eliminado"
	MissingClient  = "Cliente eliminado"
)

// Index resolves task, project and client references.
type Index struct {
	tasks    map[string]model.Task
	projects map[string]model.Project
	clients  map[string]model.Client
}

// NewIndex builds an Index. A nil Index resolves nothing.
func NewIndex(tasks []model.Task, projects []model.Project, clients []model.Client) *Index {
	idx := &Index{
		tasks:    make(map[string]model.Task, len(tasks)),
		projects: make(map[string]model.Project, len(projects)),
		clients:  make(map[string]model.Client, len(clients)),
	}
	for _, t := range tasks {
		idx.tasks[t.ID] = t
	}
	for _, p := range projects {
		idx.projects[p.ID] = p
	}
	for _, c := range clients {
		idx.clients[c.ID] = c
	}
	return idx
}

func (i *Index) Task(id string) (model.Task, bool) {
	if i == nil {
		return model.Task{}, false
	}
	t, ok := i.tasks[id]
	return t, ok
}

func (i *Index) Project(id string) (model.Project, bool) {
	if i == nil {
		return model.Project{}, false
	}
	p, ok := i.projects[id]
	return p, ok
}

func (i *Index) Client(id string) (model.Client, bool) {
	if i == nil {
		return model.Client{}, false
	}
	c, ok := i.clients[id]
	return c, ok
}

// Path resolves the full hierarchy of a task. ok is false when any level is
// missing.
func (i *Index) Path(taskID string) (task model.Task, project model.Project, client model.Client, ok bool) {
	task, ok = i.Task(taskID)
	if !ok {
		return
	}
	project, ok = i.Project(task.ProjectID)
	if !ok {
		return
	}
	client, ok = i.Client(project.ClientID)
	return
}

// Names returns display names for a task's hierarchy, substituting fallback
// labels for missing entries.
func (i *Index) Names(taskID string) (task, project, client string) {
	task, project, client = MissingTask, MissingProject, MissingClient
	t, ok := i.Task(taskID)
	if !ok {
		return
	}
	task = t.Name
	p, ok := i.Project(t.ProjectID)
	if !ok {
		return
	}
	project = p.Name
	if c, ok := i.Client(p.ClientID); ok {
		client = c.Name
	}
	return
}
