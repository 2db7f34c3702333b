package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sysmon/internal/census"
	"sysmon/internal/collector"
	"sysmon/internal/collector/services"
	"sysmon/internal/counters"
	"sysmon/internal/output"
	"sysmon/ui/console"
)

type snapshotOptions struct {
	sort    string
	filter  string
	limit   int
	json    bool
	noColor bool
	settle  time.Duration
}

// snapshotJSON is the --json document.
type snapshotJSON struct {
	Host      string                 `json:"host,omitempty"`
	Sample    counters.MetricSample  `json:"sample"`
	Status    map[string]string      `json:"status"`
	SortKey   string                 `json:"sort_key"`
	Total     int                    `json:"total"`
	Processes []census.ProcessRecord `json:"processes"`
}

func newSnapshotCmd(a *app) *cobra.Command {
	var o snapshotOptions

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print one usage sample and process census, then exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			key, err := census.ParseSortKey(o.sort)
			if err != nil {
				return err
			}
			logger, closeLog, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			src := a.source
			if src == nil {
				if src, err = collector.NewCounterSource(cfg); err != nil {
					return err
				}
			}
			enum := a.enumerator
			if enum == nil {
				if enum, err = collector.NewEnumerator(cfg); err != nil {
					return err
				}
			}

			host := services.NewHostSensor()
			payload, err := output.RunPipeline(cmd.Context(),
				counters.NewReader(src, counters.WithLogger(logger)),
				census.New(enum, logger),
				func(ctx context.Context) string {
					info, err := host.Info(ctx)
					if err != nil {
						return ""
					}
					return info.Banner()
				},
				cfg.Thresholds,
				output.Request{Sort: key, Filter: o.filter, Limit: o.limit, Settle: o.settle},
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if o.json {
				return writeSnapshotJSON(out, payload)
			}
			view := output.BuildDashboard(payload, cfg.Thresholds)
			console.Print(out, view, console.Palette{Enabled: !o.noColor && colorEnabled(out)})
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.sort, "sort", "cpu", "sort key: pid, cpu, mem or name")
	f.StringVar(&o.filter, "filter", "", "only processes whose name contains this (case-sensitive)")
	f.IntVar(&o.limit, "limit", 20, "maximum process rows (0 = all)")
	f.BoolVar(&o.json, "json", false, "print JSON instead of text")
	f.BoolVar(&o.noColor, "no-color", false, "disable ANSI colours")
	f.DurationVar(&o.settle, "settle", 500*time.Millisecond, "gap between the two CPU reads")
	return cmd
}

func writeSnapshotJSON(w io.Writer, p *output.PipelinePayload) error {
	doc := snapshotJSON{
		Host:      p.Host,
		Sample:    p.Sample,
		Status:    make(map[string]string, len(p.Checks)),
		SortKey:   p.Sort.String(),
		Total:     p.Total,
		Processes: p.Processes,
	}
	for _, c := range p.Checks {
		doc.Status[c.Name] = c.Status
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// colorEnabled reports whether w is a terminal and NO_COLOR is unset.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
