// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Timer TimerConfig `toml:"timer"`
	Stats StatsConfig `toml:"stats"`
	Log   LogConfig   `toml:"log"`
}

// TimerConfig maps timer engine settings. Durations use Go syntax ("3m").
type TimerConfig struct {
	BackgroundThreshold *string `toml:"background-threshold"`
	TickInterval        *string `toml:"tick-interval"`
}

// StatsConfig maps report defaults.
type StatsConfig struct {
	Period      *string `toml:"period"`
	RecentLimit *int    `toml:"recent-limit"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// ParseDuration decodes an optional duration value. Nil yields zero.
func ParseDuration(key string, value *string) (time.Duration, error) {
	if value == nil {
		return 0, nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, *value, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, *value)
	}
	return d, nil
}

// ParseLevel maps a level name to a slog level. Empty means info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if name == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// Template is written by `tuitrack config` when no file exists.
const Template = `# tuitrack configuration

[timer]
# Gaps shorter than this after an unexpected exit are treated as pause time.
background-threshold = "3m"
tick-interval = "1s"

[stats]
# today, week, month, year
period = "week"
recent-limit = 20

[log]
# debug, info, warn, error
level = "warn"
`
