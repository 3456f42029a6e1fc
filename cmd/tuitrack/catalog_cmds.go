package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/stats"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
)

var taskListAll bool

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks with their tracked hours",
		Args:  cobra.NoArgs,
		RunE:  runTaskListCmd,
	}
	list.Flags().BoolVar(&taskListAll, "all", false, "include completed and archived tasks")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <client> <project> <task>",
			Short: "Add a task, creating its client and project when missing",
			Args:  cobra.ExactArgs(3),
			RunE:  runTaskAddCmd,
		},
		list,
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a task and its sessions",
			Args:  cobra.ExactArgs(1),
			RunE:  runTaskRmCmd,
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show per-task statistics",
			Args:  cobra.ExactArgs(1),
			RunE:  runTaskShowCmd,
		},
	)
	return cmd
}

func runTaskAddCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	task, err := a.catalog.AddTask(cmd.Context(), args[0], args[1], args[2])
	if err != nil {
		return err
	}
	writeLine(cmd.OutOrStdout(), "Added task %s (%s).", task.Name, stats.ShortID(task.ID))
	return nil
}

func runTaskListCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	idx, err := a.catalog.Index(ctx)
	if err != nil {
		return err
	}
	totals := map[string]int64{}
	for _, s := range a.log.All() {
		totals[s.TaskID] += s.Duration
	}

	type row struct {
		client, project string
		task            model.Task
	}
	var listed []row
	for _, t := range tasks {
		if !taskListAll && (t.Completed || t.Archived) {
			continue
		}
		_, project, client := idx.Names(t.ID)
		listed = append(listed, row{client: client, project: project, task: t})
	}
	if len(listed) == 0 {
		writeLine(cmd.OutOrStdout(), "No tasks. Add one with: tuitrack task add <client> <project> <task>")
		return nil
	}
	sort.SliceStable(listed, func(i, j int) bool {
		if listed[i].client != listed[j].client {
			return listed[i].client < listed[j].client
		}
		if listed[i].project != listed[j].project {
			return listed[i].project < listed[j].project
		}
		return listed[i].task.Name < listed[j].task.Name
	})

	rows := make([][]string, 0, len(listed))
	for _, r := range listed {
		rows = append(rows, []string{
			stats.ShortID(r.task.ID),
			r.client,
			r.project,
			r.task.Name,
			timefmt.FormatHours(timefmt.Hours(totals[r.task.ID])),
		})
	}
	headers := []string{"ID", "Cliente", "Proyecto", "Tarea", "Horas"}
	for _, line := range stats.FormatTable(headers, rows, map[int]bool{4: true}) {
		writeLine(cmd.OutOrStdout(), "%s", line)
	}
	return nil
}

func runTaskRmCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	task, err := a.resolveTask(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.catalog.DeleteTask(ctx, task.ID); err != nil {
		return err
	}
	writeLine(cmd.OutOrStdout(), "Deleted task %s.", task.Name)
	return nil
}

func runTaskShowCmd(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	task, err := a.resolveTask(ctx, args[0])
	if err != nil {
		return err
	}
	idx, err := a.catalog.Index(ctx)
	if err != nil {
		return err
	}
	name, project, client := idx.Names(task.ID)
	detail := analytics.TaskDetail(a.log.All(), task.ID, time.Now())
	return stats.RenderTaskDetail(cmd.OutOrStdout(), fmt.Sprintf("%s / %s / %s", client, project, name), detail)
}

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project with its tasks and sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			projects, err := a.store.ListProjects(ctx)
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}
			project, err := resolvePrefix("project", args[0], projects, func(p model.Project) string { return p.ID })
			if err != nil {
				return err
			}
			if err := a.catalog.DeleteProject(ctx, project.ID); err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "Deleted project %s.", project.Name)
			return nil
		},
	})
	return cmd
}

func newClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage clients",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a client with everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			clients, err := a.store.ListClients(ctx)
			if err != nil {
				return fmt.Errorf("failed to list clients: %w", err)
			}
			client, err := resolvePrefix("client", args[0], clients, func(c model.Client) string { return c.ID })
			if err != nil {
				return err
			}
			if err := a.catalog.DeleteClient(ctx, client.ID); err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "Deleted client %s.", client.Name)
			return nil
		},
	})
	return cmd
}

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage saved sessions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a session",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, false)
				if err != nil {
					return err
				}
				defer a.Close()

				s, err := resolvePrefix("session", args[0], a.log.All(), func(s model.Session) string { return s.ID })
				if err != nil {
					return err
				}
				if err := a.log.Delete(cmd.Context(), s.ID); err != nil {
					return err
				}
				writeLine(cmd.OutOrStdout(), "Deleted session %s.", stats.ShortID(s.ID))
				return nil
			},
		},
		&cobra.Command{
			Use:   "note <id> <notes>",
			Short: "Replace the notes of a session",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, false)
				if err != nil {
					return err
				}
				defer a.Close()

				s, err := resolvePrefix("session", args[0], a.log.All(), func(s model.Session) string { return s.ID })
				if err != nil {
					return err
				}
				if _, err := a.log.UpdateNotes(cmd.Context(), s.ID, args[1]); err != nil {
					return err
				}
				writeLine(cmd.OutOrStdout(), "Updated session %s.", stats.ShortID(s.ID))
				return nil
			},
		},
	)
	return cmd
}

func (a *app) resolveTask(ctx context.Context, prefix string) (model.Task, error) {
	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to list tasks: %w", err)
	}
	return resolvePrefix("task", prefix, tasks, func(t model.Task) string { return t.ID })
}

// resolvePrefix finds the single item whose id equals or starts with prefix.
func resolvePrefix[T any](kind, prefix string, items []T, id func(T) string) (T, error) {
	var zero T
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return zero, fmt.Errorf("%s id is empty", kind)
	}
	var matches []T
	for _, item := range items {
		itemID := id(item)
		if itemID == prefix {
			return item, nil
		}
		if strings.HasPrefix(itemID, prefix) {
			matches = append(matches, item)
		}
	}
	switch len(matches) {
	case 0:
		return zero, fmt.Errorf("no %s matches %q", kind, prefix)
	case 1:
		return matches[0], nil
	default:
		return zero, fmt.Errorf("%s id %q is ambiguous (%d matches)", kind, prefix, len(matches))
	}
}
