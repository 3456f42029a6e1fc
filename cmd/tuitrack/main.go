// Package main provides the CLI entrypoint for tuitrack.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuitrack/internal/catalog"
	"github.com/verte-zerg/tuitrack/internal/config"
	"github.com/verte-zerg/tuitrack/internal/session"
	"github.com/verte-zerg/tuitrack/internal/store"
	"github.com/verte-zerg/tuitrack/internal/timer"
)

var logLevel string

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tuitrack",
		Short:        "Terminal time tracker",
		SilenceUsage: true,
		RunE:         runTimerCmd,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRecoverCmd())
	rootCmd.AddCommand(newSaveCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHeatmapCmd())
	rootCmd.AddCommand(newTaskCmd())
	rootCmd.AddCommand(newProjectCmd())
	rootCmd.AddCommand(newClientCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// app holds the collaborators shared by every command.
type app struct {
	cfg     config.FileConfig
	logger  *slog.Logger
	logFile *os.File

	store   *store.Store
	engine  *timer.Engine
	log     *session.Log
	saver   *session.Saver
	catalog *catalog.Service
}

// openApp loads config, opens the database and hydrates the session log.
// Interactive commands log to a file so the alternate screen stays clean.
func openApp(cmd *cobra.Command, interactive bool) (*app, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	a := &app{cfg: fileCfg}

	levelName := logLevel
	if !cmd.Flags().Changed("log-level") && fileCfg.Log.Level != nil {
		levelName = *fileCfg.Log.Level
	}
	if levelName == "" {
		levelName = "warn"
	}
	level, err := config.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	var sink io.Writer = cmd.ErrOrStderr()
	if interactive {
		f, err := openLogFile(config.DefaultLogPath())
		if err != nil {
			return nil, err
		}
		a.logFile = f
		sink = f
	}
	a.logger = slog.New(slog.NewTextHandler(sink, &slog.HandlerOptions{Level: level}))

	threshold, err := config.ParseDuration("timer.background-threshold", fileCfg.Timer.BackgroundThreshold)
	if err != nil {
		a.Close()
		return nil, err
	}
	tick, err := config.ParseDuration("timer.tick-interval", fileCfg.Timer.TickInterval)
	if err != nil {
		a.Close()
		return nil, err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	a.store = st
	a.engine = timer.New(st, timer.Options{
		BackgroundThreshold: threshold,
		TickInterval:        tick,
		Logger:              a.logger.With("component", "timer"),
	})
	a.log = session.NewLog(st, a.logger.With("component", "sessions"))
	if err := a.log.Load(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	a.saver = session.NewSaver(a.engine, a.log, a.logger.With("component", "save"))
	a.catalog = catalog.New(st, a.log, a.logger.With("component", "catalog"))
	return a, nil
}

// boot restores the persisted timer and reports what happened to it.
func (a *app) boot(w io.Writer) timer.Recovery {
	rec := a.engine.Boot()
	if rec.Outcome == timer.OutcomePausedSilent {
		writeLine(w, "Timer was interrupted for %s; it is now paused.", rec.Gap.Round(time.Second))
	}
	return rec
}

func (a *app) Close() {
	if a.engine != nil {
		a.engine.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close db", "error", err)
		}
	}
	if a.logFile != nil {
		// Best-effort close.
		_ = a.logFile.Close()
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

func writeLine(w io.Writer, format string, args ...any) {
	if _, err := fmt.Fprintf(w, format+"\n", args...); err != nil {
		// Best-effort output.
		_ = err
	}
}
