package collector

import (
	"log/slog"
	"strings"
	"time"

	"sysmon/internal/engine"
	"sysmon/internal/scheduler"
	"sysmon/internal/window"
)

// Counter and enumerator backends.
const (
	SourceProc     = "proc"
	SourceGopsutil = "gopsutil"
	EnumeratorPs   = "ps"
)

// MonitorConfig contains configurable parameters for the monitor.
// Use DefaultMonitorConfig() to get sensible defaults, then override as needed.
type MonitorConfig struct {
	// Cadences
	GraphInterval  time.Duration `yaml:"graph_interval"`  // Memory/CPU sampling (default: 1s)
	CensusInterval time.Duration `yaml:"census_interval"` // Process table refresh (default: 500ms)
	LogInterval    time.Duration `yaml:"log_interval"`    // Usage log rows (default: 2m)
	CensusTimeout  time.Duration `yaml:"census_timeout"`  // Bound on one enumeration (default: 2s)

	// History
	HistoryCapacity int `yaml:"history_capacity"` // Samples kept per graph (default: 100)

	// Backends
	CounterSource string `yaml:"counter_source"` // "proc" or "gopsutil" (default: proc)
	Enumerator    string `yaml:"enumerator"`     // "ps" or "gopsutil" (default: ps)
	ProcRoot      string `yaml:"proc_root"`      // Root for the proc source (default: /proc)

	// Usage log
	LogCSVPath    string `yaml:"log_csv_path"`    // CSV usage log (default: system_usage_log.csv)
	LogDuckDBPath string `yaml:"log_duckdb_path"` // Optional DuckDB usage log, empty = disabled

	// Status levels for console and TUI colouring
	Thresholds engine.Config `yaml:"thresholds"`

	// Diagnostics
	LogFile  string `yaml:"log_file"`  // Diagnostic log destination, empty = stderr/discard
	LogLevel string `yaml:"log_level"` // debug, info, warn, error (default: info)
}

// DefaultMonitorConfig returns a MonitorConfig with sensible defaults.
func DefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		GraphInterval:  scheduler.DefaultGraphInterval,
		CensusInterval: scheduler.DefaultCensusInterval,
		LogInterval:    scheduler.DefaultLogInterval,
		CensusTimeout:  2 * time.Second,

		HistoryCapacity: window.DefaultCapacity,

		CounterSource: SourceProc,
		Enumerator:    EnumeratorPs,
		ProcRoot:      "/proc",

		LogCSVPath: "system_usage_log.csv",

		Thresholds: engine.DefaultConfig(),

		LogLevel: "info",
	}
}

// WithGraphInterval returns a copy of the config with modified graph cadence.
func (c MonitorConfig) WithGraphInterval(d time.Duration) MonitorConfig {
	c.GraphInterval = d
	return c
}

// WithCensusInterval returns a copy of the config with modified census cadence.
func (c MonitorConfig) WithCensusInterval(d time.Duration) MonitorConfig {
	c.CensusInterval = d
	return c
}

// WithLogInterval returns a copy of the config with modified log cadence.
func (c MonitorConfig) WithLogInterval(d time.Duration) MonitorConfig {
	c.LogInterval = d
	return c
}

// WithCounterSource returns a copy of the config using the named counter backend.
func (c MonitorConfig) WithCounterSource(name string) MonitorConfig {
	c.CounterSource = name
	return c
}

// WithEnumerator returns a copy of the config using the named process enumerator.
func (c MonitorConfig) WithEnumerator(name string) MonitorConfig {
	c.Enumerator = name
	return c
}

// WithHistoryCapacity returns a copy of the config with modified window size.
func (c MonitorConfig) WithHistoryCapacity(n int) MonitorConfig {
	c.HistoryCapacity = n
	return c
}

// Validate checks if the configuration is valid and returns an error if not.
func (c MonitorConfig) Validate() error {
	if c.GraphInterval <= 0 {
		return &ConfigError{Field: "GraphInterval", Message: "must be positive"}
	}
	if c.CensusInterval <= 0 {
		return &ConfigError{Field: "CensusInterval", Message: "must be positive"}
	}
	if c.LogInterval <= 0 {
		return &ConfigError{Field: "LogInterval", Message: "must be positive"}
	}
	if c.CensusTimeout < 0 {
		return &ConfigError{Field: "CensusTimeout", Message: "must not be negative"}
	}
	if c.HistoryCapacity <= 0 {
		return &ConfigError{Field: "HistoryCapacity", Message: "must be positive"}
	}
	switch c.CounterSource {
	case SourceProc, SourceGopsutil:
	default:
		return &ConfigError{Field: "CounterSource", Message: "must be proc or gopsutil"}
	}
	switch c.Enumerator {
	case EnumeratorPs, SourceGopsutil:
	default:
		return &ConfigError{Field: "Enumerator", Message: "must be ps or gopsutil"}
	}
	levels := []struct {
		field string
		t     engine.Thresholds
	}{
		{"Thresholds.CPU", c.Thresholds.CPU},
		{"Thresholds.RAM", c.Thresholds.RAM},
		{"Thresholds.Process", c.Thresholds.Process},
	}
	for _, l := range levels {
		if l.t.Warning < 0 || l.t.Critical < l.t.Warning {
			return &ConfigError{Field: l.field, Message: "must satisfy 0 <= warning <= critical"}
		}
	}
	if _, ok := parseLevel(c.LogLevel); !ok {
		return &ConfigError{Field: "LogLevel", Message: "must be debug, info, warn or error"}
	}
	return nil
}

// SchedulerConfig maps the cadences onto a scheduler.Config.
func (c MonitorConfig) SchedulerConfig() scheduler.Config {
	return scheduler.Config{
		GraphInterval:  c.GraphInterval,
		CensusInterval: c.CensusInterval,
		LogInterval:    c.LogInterval,
		CensusTimeout:  c.CensusTimeout,
	}
}

// Level returns the configured slog level, defaulting to info.
func (c MonitorConfig) Level() slog.Level {
	l, _ := parseLevel(c.LogLevel)
	return l
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error: " + e.Field + " " + e.Message
}
