// Package catalog resolves the client/project/task hierarchy and performs
// cascading deletes through narrow interfaces.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/store"
)

// Repository persists the hierarchy.
type Repository interface {
	InsertClient(ctx context.Context, c model.Client) error
	InsertProject(ctx context.Context, p model.Project) error
	InsertTask(ctx context.Context, t model.Task) error
	FindClientByName(ctx context.Context, name string) (model.Client, error)
	FindProjectByName(ctx context.Context, clientID, name string) (model.Project, error)
	ListClients(ctx context.Context) ([]model.Client, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	DeleteTask(ctx context.Context, id string) error
	DeleteProject(ctx context.Context, id string) error
	DeleteClient(ctx context.Context, id string) error
}

// SessionPurger drops sessions that belong to a deleted task.
type SessionPurger interface {
	DeleteForTask(ctx context.Context, taskID string) (int, error)
}

// Service exposes the catalog operations the CLI needs.
type Service struct {
	repo   Repository
	purger SessionPurger
	log    *slog.Logger
	now    func() time.Time
}

// New constructs a catalog service.
func New(repo Repository, purger SessionPurger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, purger: purger, log: logger, now: time.Now}
}

// AddTask creates a task, creating its client and project when missing.
func (s *Service) AddTask(ctx context.Context, clientName, projectName, taskName string) (model.Task, error) {
	clientName = strings.TrimSpace(clientName)
	projectName = strings.TrimSpace(projectName)
	taskName = strings.TrimSpace(taskName)
	if clientName == "" || projectName == "" || taskName == "" {
		return model.Task{}, fmt.Errorf("client, project and task names must not be empty")
	}
	now := s.now()

	client, err := s.repo.FindClientByName(ctx, clientName)
	if errors.Is(err, store.ErrNotFound) {
		client = model.Client{ID: uuid.NewString(), Name: clientName, CreatedAt: now}
		if err := s.repo.InsertClient(ctx, client); err != nil {
			return model.Task{}, fmt.Errorf("failed to create client: %w", err)
		}
	} else if err != nil {
		return model.Task{}, fmt.Errorf("failed to look up client: %w", err)
	}

	project, err := s.repo.FindProjectByName(ctx, client.ID, projectName)
	if errors.Is(err, store.ErrNotFound) {
		project = model.Project{ID: uuid.NewString(), ClientID: client.ID, Name: projectName, CreatedAt: now}
		if err := s.repo.InsertProject(ctx, project); err != nil {
			return model.Task{}, fmt.Errorf("failed to create project: %w", err)
		}
	} else if err != nil {
		return model.Task{}, fmt.Errorf("failed to look up project: %w", err)
	}

	task := model.Task{ID: uuid.NewString(), ProjectID: project.ID, Name: taskName, CreatedAt: now}
	if err := s.repo.InsertTask(ctx, task); err != nil {
		return model.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	s.log.Info("task created", "id", task.ID, "client", client.Name, "project", project.Name)
	return task, nil
}

// Index loads the full hierarchy for analytics lookups.
func (s *Service) Index(ctx context.Context) (*analytics.Index, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return analytics.NewIndex(tasks, projects, clients), nil
}

// DeleteTask removes a task and its sessions.
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	removed, err := s.purger.DeleteForTask(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.log.Info("task deleted", "id", id, "sessions", removed)
	return nil
}

// DeleteProject removes a project with its tasks and their sessions.
func (s *Service) DeleteProject(ctx context.Context, id string) error {
	if err := s.purgeTasks(ctx, func(t model.Task) bool { return t.ProjectID == id }); err != nil {
		return err
	}
	if err := s.repo.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// DeleteClient removes a client and everything below it.
func (s *Service) DeleteClient(ctx context.Context, id string) error {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	owned := map[string]struct{}{}
	for _, p := range projects {
		if p.ClientID == id {
			owned[p.ID] = struct{}{}
		}
	}
	if err := s.purgeTasks(ctx, func(t model.Task) bool {
		_, ok := owned[t.ProjectID]
		return ok
	}); err != nil {
		return err
	}
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}
	return nil
}

func (s *Service) purgeTasks(ctx context.Context, match func(model.Task) bool) error {
	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	for _, t := range tasks {
		if !match(t) {
			continue
		}
		if _, err := s.purger.DeleteForTask(ctx, t.ID); err != nil {
			return err
		}
	}
	return nil
}
