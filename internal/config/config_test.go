package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Timer.BackgroundThreshold != nil || cfg.Stats.Period != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(Template), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	threshold, err := ParseDuration("background-threshold", cfg.Timer.BackgroundThreshold)
	if err != nil || threshold != 3*time.Minute {
		t.Fatalf("unexpected threshold %v (%v)", threshold, err)
	}
	if cfg.Stats.Period == nil || *cfg.Stats.Period != "week" {
		t.Fatalf("unexpected period: %v", cfg.Stats.Period)
	}
	if cfg.Stats.RecentLimit == nil || *cfg.Stats.RecentLimit != 20 {
		t.Fatalf("unexpected recent limit: %v", cfg.Stats.RecentLimit)
	}
	level, err := ParseLevel(*cfg.Log.Level)
	if err != nil || level != slog.LevelWarn {
		t.Fatalf("unexpected level %v (%v)", level, err)
	}
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[timer]\nthreshold = \"3m\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "timer.threshold") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestParseDuration(t *testing.T) {
	bad := "-1s"
	if _, err := ParseDuration("tick-interval", &bad); err == nil {
		t.Fatalf("expected error for negative duration")
	}
	junk := "soon"
	if _, err := ParseDuration("tick-interval", &junk); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
	if d, err := ParseDuration("tick-interval", nil); err != nil || d != 0 {
		t.Fatalf("expected zero for nil, got %v (%v)", d, err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_CONFIG_HOME", "/conf")
	if got := DefaultDBPath(); got != filepath.Join("/data", "tuitrack", "tuitrack.db") {
		t.Fatalf("unexpected db path %q", got)
	}
	if got := DefaultConfigPath(); got != filepath.Join("/conf", "tuitrack", "config.toml") {
		t.Fatalf("unexpected config path %q", got)
	}
}
