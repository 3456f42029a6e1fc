package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/config"
	"github.com/verte-zerg/tuitrack/internal/model"
	"github.com/verte-zerg/tuitrack/internal/stats"
	"github.com/verte-zerg/tuitrack/internal/statsui"
)

const defaultRecentLimit = 20

var (
	statsPeriod string

	reportPeriod string
	reportFrom   string
	reportTo     string
	reportFormat string
	reportLimit  int
	reportColor  bool

	heatmapYear int
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Open the stats dashboard",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsPeriod, "period", string(model.PeriodWeek), "today, week, month or year")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := buildStatsConfig(cmd, a.cfg, &statsPeriod, nil, "", "")
	if err != nil {
		return err
	}
	if cfg.Period == model.PeriodCustom {
		return fmt.Errorf("the dashboard does not support custom periods; use tuitrack report --from --to")
	}
	program := tea.NewProgram(statsui.NewModel(a.store, cfg, nil), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a stats report",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportPeriod, "period", string(model.PeriodWeek), "today, week, month, year or custom")
	cmd.Flags().StringVar(&reportFrom, "from", "", "custom range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reportTo, "to", "", "custom range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reportFormat, "format", string(stats.FormatText), "text, json or yaml")
	cmd.Flags().IntVar(&reportLimit, "limit", defaultRecentLimit, "number of recent sessions")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored plot output")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	format, err := stats.ParseFormat(reportFormat)
	if err != nil {
		return err
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg, err := buildStatsConfig(cmd, a.cfg, &reportPeriod, &reportLimit, reportFrom, reportTo)
	if err != nil {
		return err
	}
	report, err := stats.BuildReport(cmd.Context(), a.store, cfg, time.Now())
	if err != nil {
		return err
	}
	if format == stats.FormatText {
		return stats.RenderReport(cmd.OutOrStdout(), report, 0, reportColor)
	}
	return stats.Export(cmd.OutOrStdout(), report, format)
}

func newHeatmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "heatmap",
		Short: "Print the yearly activity heatmap",
		Args:  cobra.NoArgs,
		RunE:  runHeatmapCmd,
	}
	cmd.Flags().IntVar(&heatmapYear, "year", 0, "calendar year (default: current)")
	return cmd
}

func runHeatmapCmd(cmd *cobra.Command, _ []string) error {
	year := heatmapYear
	if year == 0 {
		year = time.Now().Year()
	}
	if year < 1970 || year > 9999 {
		return fmt.Errorf("invalid --year %d", year)
	}
	a, err := openApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	days := analytics.Heatmap(a.log.All(), year, time.Local)
	return stats.RenderHeatmap(cmd.OutOrStdout(), year, days)
}

// buildStatsConfig merges flags with the [stats] config section. Passing a
// from or to date selects the custom period.
func buildStatsConfig(cmd *cobra.Command, fileCfg config.FileConfig, period *string, limit *int, from, to string) (model.StatsConfig, error) {
	applyStringConfig(cmd, "period", period, fileCfg.Stats.Period)
	if limit != nil {
		applyIntConfig(cmd, "limit", limit, fileCfg.Stats.RecentLimit)
	}

	cfg := model.StatsConfig{}
	if limit != nil {
		if *limit < 0 {
			return cfg, fmt.Errorf("--limit must be >= 0")
		}
		cfg.RecentLimit = *limit
	}
	p, ok := model.ParsePeriod(*period)
	if !ok {
		return cfg, fmt.Errorf("invalid period %q", *period)
	}
	cfg.Period = p

	if from == "" && to == "" {
		if p == model.PeriodCustom {
			return cfg, fmt.Errorf("custom period requires --from and --to")
		}
		return cfg, nil
	}
	if from == "" || to == "" {
		return cfg, fmt.Errorf("--from and --to must be given together")
	}
	fromTime, err := time.ParseInLocation(time.DateOnly, from, time.Local)
	if err != nil {
		return cfg, fmt.Errorf("invalid --from value: %w", err)
	}
	toTime, err := time.ParseInLocation(time.DateOnly, to, time.Local)
	if err != nil {
		return cfg, fmt.Errorf("invalid --to value: %w", err)
	}
	cfg.Period = model.PeriodCustom
	cfg.From = &fromTime
	cfg.To = &toTime
	return cfg, nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
