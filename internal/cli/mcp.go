package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sysmon/internal/collector"
	"sysmon/internal/mcpserver"
	"sysmon/internal/scheduler"
)

func newMCPCmd(a *app) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve metrics, census and usage log as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			// stdout carries the protocol.
			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			mon, err := collector.NewMonitor(cfg, logger, a.monitorOptions(collector.WithRecording(record))...)
			if err != nil {
				return err
			}
			defer mon.Close()

			srv, err := mcpserver.NewServer(mcpserver.Config{
				ServerName:    "sysmon",
				ServerVersion: Version,
			}, mon, logger.With("component", "mcp"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := mon.Start(ctx); err != nil {
				return err
			}
			go scheduler.Pump(ctx, mon.Scheduler, mon.History, nil)

			return srv.Start(ctx)
		},
	}

	cmd.Flags().BoolVar(&record, "record", false, "also append usage rows while serving")
	return cmd
}
