// Package stats assembles analytics reports and renders them as text.
package stats

import (
	"context"
	"time"

	"github.com/verte-zerg/tuitrack/internal/analytics"
	"github.com/verte-zerg/tuitrack/internal/model"
)

// Source supplies the data a report is built from.
type Source interface {
	ListSessions(ctx context.Context) ([]model.Session, error)
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	ListClients(ctx context.Context) ([]model.Client, error)
}

// Report contains precomputed data for stats rendering and export.
type Report struct {
	Period       model.Period              `json:"period" yaml:"period"`
	From         time.Time                 `json:"from" yaml:"from"`
	To           time.Time                 `json:"to" yaml:"to"`
	GeneratedAt  time.Time                 `json:"generatedAt" yaml:"generatedAt"`
	Metrics      []analytics.Metric        `json:"metrics" yaml:"metrics"`
	Insights     analytics.Insights        `json:"insights" yaml:"insights"`
	Streak       analytics.Streak          `json:"streak" yaml:"streak"`
	Distribution analytics.Distribution    `json:"distribution" yaml:"distribution"`
	Recent       []analytics.RecentSession `json:"recent" yaml:"recent"`
	Daily        []analytics.DayHours      `json:"daily" yaml:"daily"`
}

// Range returns the report's inclusive window.
func (r Report) Range() model.Range {
	return model.Range{From: r.From, To: r.To}
}

// Data is a loaded snapshot of sessions and their hierarchy.
type Data struct {
	Sessions []model.Session
	Index    *analytics.Index
}

// Load reads everything a report needs from src.
func Load(ctx context.Context, src Source) (Data, error) {
	sessions, err := src.ListSessions(ctx)
	if err != nil {
		return Data{}, err
	}
	tasks, err := src.ListTasks(ctx)
	if err != nil {
		return Data{}, err
	}
	projects, err := src.ListProjects(ctx)
	if err != nil {
		return Data{}, err
	}
	clients, err := src.ListClients(ctx)
	if err != nil {
		return Data{}, err
	}
	return Data{Sessions: sessions, Index: analytics.NewIndex(tasks, projects, clients)}, nil
}

// BuildReport loads data from src and computes a report for cfg.
func BuildReport(ctx context.Context, src Source, cfg model.StatsConfig, now time.Time) (Report, error) {
	data, err := Load(ctx, src)
	if err != nil {
		return Report{}, err
	}
	return Compute(data, cfg, now), nil
}

// Compute derives a report from already loaded data.
func Compute(data Data, cfg model.StatsConfig, now time.Time) Report {
	period := cfg.Period
	if period == "" {
		period = model.PeriodWeek
	}
	var custom model.Range
	if cfg.From != nil && cfg.To != nil {
		custom = model.Range{From: *cfg.From, To: *cfg.To}
	}
	rng := analytics.ResolvePeriod(period, now, custom)
	return Report{
		Period:       period,
		From:         rng.From,
		To:           rng.To,
		GeneratedAt:  now,
		Metrics:      analytics.PeriodMetrics(data.Sessions, period, now, custom),
		Insights:     analytics.ComputeInsights(data.Sessions, rng),
		Streak:       analytics.GlobalStreak(data.Sessions, now),
		Distribution: analytics.Distributions(data.Sessions, data.Index, rng),
		Recent:       analytics.RecentSessions(data.Sessions, data.Index, rng, cfg.RecentLimit),
		Daily:        analytics.DailySeries(data.Sessions, rng),
	}
}
