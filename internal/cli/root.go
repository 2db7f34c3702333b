package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sysmon/internal/census"
	"sysmon/internal/collector"
	"sysmon/internal/counters"
)

// Version is stamped at build time with -ldflags "-X sysmon/internal/cli.Version=...".
var Version = "dev"

type rootOptions struct {
	configPath     string
	source         string
	enumerator     string
	logCSV         string
	logDuckDB      string
	logFile        string
	logLevel       string
	graphInterval  time.Duration
	censusInterval time.Duration
	logInterval    time.Duration
}

// app carries parsed flags and test seams shared by every command.
type app struct {
	opts rootOptions

	// Overrides for the host backends; nil means build them from config.
	source     counters.Source
	enumerator census.Enumerator
}

// Execute runs the sysmon command line.
func Execute() error {
	return newRootCmd(&app{}).Execute()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "sysmon",
		Short: "Live host monitor: memory and CPU graphs, process census and usage log",
		Long: `sysmon samples memory usage and CPU load on independent cadences, keeps a
rolling window of each for graphing, takes a sorted and filterable process
census, and can append usage rows to a CSV file or DuckDB database.

Without a subcommand it starts the terminal UI.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.configPath, "config", "", "YAML config file (missing file = defaults)")
	pf.StringVar(&a.opts.source, "source", "", "counter source: proc or gopsutil")
	pf.StringVar(&a.opts.enumerator, "enumerator", "", "process enumerator: ps or gopsutil")
	pf.StringVar(&a.opts.logCSV, "log-csv", "", "CSV usage log path (empty string disables)")
	pf.StringVar(&a.opts.logDuckDB, "log-duckdb", "", "DuckDB usage log path")
	pf.StringVar(&a.opts.logFile, "log-file", "", "write diagnostics to this file")
	pf.StringVar(&a.opts.logLevel, "log-level", "", "diagnostic level: debug, info, warn, error")
	pf.DurationVar(&a.opts.graphInterval, "graph-interval", 0, "memory/CPU sampling cadence")
	pf.DurationVar(&a.opts.censusInterval, "census-interval", 0, "process census cadence")
	pf.DurationVar(&a.opts.logInterval, "log-interval", 0, "usage log cadence")

	root.AddCommand(
		newTUICmd(a),
		newRecordCmd(a),
		newSnapshotCmd(a),
		newMCPCmd(a),
	)
	return root
}

// loadConfig merges the config file with any flags set on cmd.
func (a *app) loadConfig(cmd *cobra.Command) (collector.MonitorConfig, error) {
	cfg, err := collector.LoadConfigFile(a.opts.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.CounterSource = a.opts.source
	}
	if flags.Changed("enumerator") {
		cfg.Enumerator = a.opts.enumerator
	}
	if flags.Changed("log-csv") {
		cfg.LogCSVPath = a.opts.logCSV
	}
	if flags.Changed("log-duckdb") {
		cfg.LogDuckDBPath = a.opts.logDuckDB
	}
	if flags.Changed("log-file") {
		cfg.LogFile = a.opts.logFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.opts.logLevel
	}
	if flags.Changed("graph-interval") {
		cfg.GraphInterval = a.opts.graphInterval
	}
	if flags.Changed("census-interval") {
		cfg.CensusInterval = a.opts.censusInterval
	}
	if flags.Changed("log-interval") {
		cfg.LogInterval = a.opts.logInterval
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the diagnostic logger. LogFile wins over fallback; a nil
// fallback discards.
func newLogger(cfg collector.MonitorConfig, fallback io.Writer) (*slog.Logger, func() error, error) {
	opts := &slog.HandlerOptions{Level: cfg.Level()}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, opts)), f.Close, nil
	}
	if fallback == nil {
		fallback = io.Discard
	}
	return slog.New(slog.NewTextHandler(fallback, opts)), func() error { return nil }, nil
}

// monitorOptions passes the test seams through to the monitor.
func (a *app) monitorOptions(extra ...collector.MonitorOption) []collector.MonitorOption {
	var opts []collector.MonitorOption
	if a.source != nil {
		opts = append(opts, collector.WithSource(a.source))
	}
	if a.enumerator != nil {
		opts = append(opts, collector.WithEnumeratorOverride(a.enumerator))
	}
	return append(opts, extra...)
}
