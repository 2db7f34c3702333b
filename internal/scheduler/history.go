package scheduler

import (
	"context"

	"sysmon/internal/census"
	"sysmon/internal/counters"
	"sysmon/internal/window"
)

// History holds the graphed series, one rolling window each.
type History struct {
	Memory *window.Synchronized[float64]
	CPU    *window.Synchronized[float64]
}

// NewHistory returns zero-filled windows of the given capacity.
func NewHistory(capacity int) *History {
	return &History{
		Memory: window.NewSynchronized(capacity, 0.0),
		CPU:    window.NewSynchronized(capacity, 0.0),
	}
}

// Record appends one sample to both series.
func (h *History) Record(s counters.MetricSample) {
	h.Memory.Append(s.MemoryUsedPercent)
	h.CPU.Append(s.CPULoadPercent)
}

// Pump consumes both channels of s until ctx is done, recording samples into
// h and passing census snapshots to onCensus when it is non-nil. It is the
// consumer for headless modes where no UI drains the channels.
func Pump(ctx context.Context, s *Scheduler, h *History, onCensus func([]census.ProcessRecord)) {
	for {
		select {
		case <-ctx.Done():
			return
		case sample := <-s.Metrics():
			if h != nil {
				h.Record(sample)
			}
		case records := <-s.Census():
			if onCensus != nil {
				onCensus(records)
			}
		}
	}
}
