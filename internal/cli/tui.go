package cli

import (
	"github.com/spf13/cobra"

	"sysmon/internal/collector"
	"sysmon/ui/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

func (a *app) runTUI(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	// The alternate screen owns the terminal, so diagnostics only go to a file.
	logger, closeLog, err := newLogger(cfg, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	mon, err := collector.NewMonitor(cfg, logger, a.monitorOptions()...)
	if err != nil {
		return err
	}
	defer mon.Close()

	ctx := cmd.Context()
	if err := mon.Start(ctx); err != nil {
		return err
	}
	return tui.Start(ctx, mon)
}
