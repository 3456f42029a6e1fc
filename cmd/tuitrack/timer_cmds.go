package main

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuitrack/internal/session"
	"github.com/verte-zerg/tuitrack/internal/stats"
	"github.com/verte-zerg/tuitrack/internal/timefmt"
	"github.com/verte-zerg/tuitrack/internal/timer"
	"github.com/verte-zerg/tuitrack/internal/tui"
)

var (
	saveNotes string
	saveTask  string
)

func runTimerCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	a.engine.Boot()
	tasks, err := a.store.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	idx, err := a.catalog.Index(ctx)
	if err != nil {
		return err
	}

	m := tui.NewModel(tui.Deps{
		Engine: a.engine,
		Saver:  a.saver,
		Log:    a.log,
		Tasks:  tasks,
		Index:  idx,
		Logger: a.logger.With("component", "tui"),
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	a.engine.OnTick(func() { program.Send(tui.TickMsg{}) })
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active timer",
		Args:  cobra.NoArgs,
		RunE:  runStatusCmd,
	}
}

func runStatusCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	a.boot(out)
	if rec, ok := a.engine.PendingRecovery(); ok {
		writeLine(out, "Recovery pending: timer stopped %s ago.", rec.Gap.Round(time.Second))
		writeLine(out, "  until-close  %s", formatElapsed(rec.TimeUntilClose))
		writeLine(out, "  full-time    %s", formatElapsed(rec.TimeTotal))
		writeLine(out, "Run: tuitrack recover until-close|full-time")
		return nil
	}
	info, ok := a.engine.CurrentTask()
	if !ok {
		writeLine(out, "No active session.")
		return nil
	}
	name := "(unassigned)"
	if id, assigned := info.Task.ID(); assigned {
		idx, err := a.catalog.Index(cmd.Context())
		if err != nil {
			return err
		}
		task, project, client := idx.Names(id)
		name = fmt.Sprintf("%s / %s / %s", client, project, task)
	}
	writeLine(out, "State:   %s", info.State)
	writeLine(out, "Task:    %s", name)
	writeLine(out, "Started: %s", info.StartTime.Local().Format("2006-01-02 15:04"))
	writeLine(out, "Elapsed: %s", formatElapsed(info.Elapsed))
	return nil
}

func newRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "recover until-close|full-time",
		Short:     "Resolve an interrupted timer",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"until-close", "full-time"},
		RunE:      runRecoverCmd,
	}
}

func runRecoverCmd(cmd *cobra.Command, args []string) error {
	decision, err := timer.ParseDecision(args[0])
	if err != nil {
		return err
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	a.boot(out)
	if a.engine.State() != timer.NeedsRecoveryDecision {
		return fmt.Errorf("no recovery decision pending (state: %s)", a.engine.State())
	}
	if err := a.engine.ApplyRecoveryDecision(decision); err != nil {
		return err
	}
	writeLine(out, "Recovered with %s: %s, paused.", decision, formatElapsed(a.engine.ElapsedSeconds()))
	return nil
}

func newSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the active timer as a session",
		Args:  cobra.NoArgs,
		RunE:  runSaveCmd,
	}
	cmd.Flags().StringVar(&saveNotes, "notes", "", "session notes")
	cmd.Flags().StringVar(&saveTask, "task", "", "task id (or unique prefix) to assign before saving")
	return cmd
}

func runSaveCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	a.boot(out)
	if a.engine.State() == timer.NeedsRecoveryDecision {
		return errors.New("recovery decision pending: run tuitrack recover until-close|full-time")
	}
	if saveTask != "" {
		task, err := a.resolveTask(ctx, saveTask)
		if err != nil {
			return err
		}
		if err := a.engine.AssignTask(task.ID); err != nil {
			return err
		}
	}
	saved, err := a.saver.Save(ctx, saveNotes)
	switch {
	case errors.Is(err, session.ErrUnassignedTask):
		return fmt.Errorf("%w: pass --task", err)
	case err != nil:
		return err
	}
	writeLine(out, "Saved %s (%s).", stats.ShortID(saved.ID), formatElapsed(saved.Duration))
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Discard the active timer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()
			a.engine.Boot()
			if err := a.engine.Reset(); err != nil {
				return err
			}
			writeLine(cmd.OutOrStdout(), "Timer discarded.")
			return nil
		},
	}
}

// formatElapsed renders a clock, switching to hours past a day.
func formatElapsed(seconds int64) string {
	if clock := timefmt.FormatClock(seconds); clock != "" {
		return clock
	}
	return timefmt.FormatHours(timefmt.Hours(seconds))
}
