package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sysmon/internal/collector"
	"sysmon/internal/scheduler"
)

func newRecordCmd(a *app) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Append usage rows to the usage log without a UI",
		Long: `record runs the sampling cadences headless and appends one
(timestamp, CPU usage, RAM usage) row per log interval to the configured
CSV file and/or DuckDB database until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.LogCSVPath == "" && cfg.LogDuckDBPath == "" {
				return fmt.Errorf("record needs --log-csv or --log-duckdb")
			}
			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			mon, err := collector.NewMonitor(cfg, logger, a.monitorOptions(collector.WithRecording(true))...)
			if err != nil {
				return err
			}
			defer mon.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			fmt.Fprintf(cmd.OutOrStdout(), "recording usage to %s every %s\n",
				strings.Join(destinations(cfg), " and "), cfg.LogInterval)

			if err := mon.Start(ctx); err != nil {
				return err
			}
			scheduler.Pump(ctx, mon.Scheduler, mon.History, nil)
			logger.Info("recording stopped")
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 = until interrupted)")
	return cmd
}

func destinations(cfg collector.MonitorConfig) []string {
	var out []string
	if cfg.LogCSVPath != "" {
		out = append(out, cfg.LogCSVPath)
	}
	if cfg.LogDuckDBPath != "" {
		out = append(out, cfg.LogDuckDBPath)
	}
	return out
}
