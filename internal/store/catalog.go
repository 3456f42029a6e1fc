package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/verte-zerg/tuitrack/internal/model"
)

// InsertClient stores a client.
func (s *Store) InsertClient(ctx context.Context, c model.Client) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO clients (id, name, created_at) VALUES (?, ?, ?)`,
		c.ID, c.Name, formatTime(c.CreatedAt))
	return err
}

// InsertProject stores a project.
func (s *Store) InsertProject(ctx context.Context, p model.Project) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, client_id, name, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.ClientID, p.Name, formatTime(p.CreatedAt))
	return err
}

// InsertTask stores a task.
func (s *Store) InsertTask(ctx context.Context, t model.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, name, completed, archived, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Name, t.Completed, t.Archived, formatTime(t.CreatedAt))
	return err
}

// FindClientByName returns the client with the given name.
func (s *Store) FindClientByName(ctx context.Context, name string) (model.Client, error) {
	var (
		c         model.Client
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM clients WHERE name = ? ORDER BY created_at LIMIT 1`, name).
		Scan(&c.ID, &c.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Client{}, ErrNotFound
	}
	if err != nil {
		return model.Client{}, err
	}
	c.CreatedAt, err = parseTime(createdAt)
	return c, err
}

// FindProjectByName returns the named project of a client.
func (s *Store) FindProjectByName(ctx context.Context, clientID, name string) (model.Project, error) {
	var (
		p         model.Project
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, client_id, name, created_at FROM projects
		 WHERE client_id = ? AND name = ? ORDER BY created_at LIMIT 1`, clientID, name).
		Scan(&p.ID, &p.ClientID, &p.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, err
	}
	p.CreatedAt, err = parseTime(createdAt)
	return p, err
}

// ListClients returns all clients ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]model.Client, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM clients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var out []model.Client
	for rows.Next() {
		var (
			c         model.Client
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &createdAt); err != nil {
			return nil, err
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, client_id, name, created_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var out []model.Project
	for rows.Next() {
		var (
			p         model.Project
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &createdAt); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListTasks returns all tasks ordered by name.
func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, name, completed, archived, created_at FROM tasks ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	var out []model.Task
	for rows.Next() {
		var (
			t         model.Task
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.Completed, &t.Archived, &createdAt); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// DeleteTask removes a task and its sessions in one transaction.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return deleteTasks(ctx, tx, `id = ?`, id)
	})
}

// DeleteProject removes a project, its tasks and their sessions.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteTasks(ctx, tx, `project_id = ?`, id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
}

// DeleteClient removes a client and everything below it.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := deleteTasks(ctx, tx, `project_id IN (SELECT id FROM projects WHERE client_id = ?)`, id); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE client_id = ?`, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
		if err != nil {
			return err
		}
		return expectAffected(res)
	})
}

func deleteTasks(ctx context.Context, tx *sql.Tx, where string, arg any) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sessions WHERE task_id IN (SELECT id FROM tasks WHERE `+where+`)`, arg); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE `+where, arg)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
