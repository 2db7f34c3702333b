// Package counters turns cumulative kernel counters into percentage metrics.
package counters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// ErrMetricsUnavailable is returned when a counter source is missing,
// unreadable, or reports a zero denominator.
var ErrMetricsUnavailable = errors.New("metrics unavailable")

// MetricSample is one reading of host utilization.
type MetricSample struct {
	Timestamp         time.Time `json:"timestamp"`
	MemoryUsedPercent float64   `json:"memory_used_percent"`
	CPULoadPercent    float64   `json:"cpu_load_percent"`
}

// CounterState is the raw CPU counters observed at the previous read.
// The zero value means no baseline has been taken yet.
type CounterState struct {
	PreviousIdleTicks  uint64
	PreviousTotalTicks uint64
	Primed             bool
}

// ComputeLoad derives CPU load from the prior state and the current ticks.
// An unprimed state yields 0. The returned state always holds the current
// raw counters, including when the load is reported as zero.
func ComputeLoad(state CounterState, ticks CPUTicks) (float64, CounterState) {
	total := ticks.Total()
	next := CounterState{PreviousIdleTicks: ticks.Idle, PreviousTotalTicks: total, Primed: true}
	if !state.Primed {
		return 0, next
	}

	// Signed deltas so a counter reset reads as <= 0 rather than wrapping.
	totalDelta := int64(total) - int64(state.PreviousTotalTicks)
	idleDelta := int64(ticks.Idle) - int64(state.PreviousIdleTicks)
	if totalDelta <= 0 {
		return 0, next
	}
	return clampPercent(100 * (1 - float64(idleDelta)/float64(totalDelta))), next
}

// Reader produces MetricSamples from a Source, carrying CounterState between calls.
type Reader struct {
	source Source
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    CounterState
	lastMem  float64
	lastLoad float64
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used to report degraded reads.
func WithLogger(l *slog.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Reader) {
		if now != nil {
			r.now = now
		}
	}
}

// NewReader returns a Reader with zero CounterState.
func NewReader(src Source, opts ...Option) *Reader {
	r := &Reader{
		source: src,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// ReadMemory returns used memory as a percentage of total.
func (r *Reader) ReadMemory(ctx context.Context) (float64, error) {
	mc, err := r.source.MemoryCounters(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMetricsUnavailable, err)
	}
	if mc.Total == 0 {
		return 0, fmt.Errorf("%w: total memory is zero", ErrMetricsUnavailable)
	}
	return clampPercent(100 * (1 - float64(mc.Available)/float64(mc.Total))), nil
}

// ReadCPULoad returns CPU load since the previous call. The first call
// returns 0 and establishes the baseline. A failed read leaves the state as is.
func (r *Reader) ReadCPULoad(ctx context.Context) (float64, error) {
	ticks, err := r.source.CPUTicks(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMetricsUnavailable, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	load, next := ComputeLoad(r.state, ticks)
	r.state = next
	return load, nil
}

// State returns a copy of the carried counters.
func (r *Reader) State() CounterState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Sample reads both metrics. Unavailable readings fall back to the last
// known value, or zero before the first success.
func (r *Reader) Sample(ctx context.Context) MetricSample {
	mem, memErr := r.ReadMemory(ctx)
	load, cpuErr := r.ReadCPULoad(ctx)

	r.mu.Lock()
	if memErr != nil {
		r.logger.Debug("memory reading unavailable", "error", memErr)
		mem = r.lastMem
	} else {
		r.lastMem = mem
	}
	if cpuErr != nil {
		r.logger.Debug("cpu reading unavailable", "error", cpuErr)
		load = r.lastLoad
	} else {
		r.lastLoad = load
	}
	r.mu.Unlock()

	return MetricSample{
		Timestamp:         r.now(),
		MemoryUsedPercent: mem,
		CPULoadPercent:    load,
	}
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
