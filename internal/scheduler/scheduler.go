// Package scheduler runs metric sampling, process census and usage logging
// on independent cadences and hands results to consumers over channels.
package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"sysmon/internal/census"
	"sysmon/internal/counters"
)

const (
	DefaultGraphInterval  = 1 * time.Second
	DefaultCensusInterval = 500 * time.Millisecond
	DefaultLogInterval    = 2 * time.Minute
	defaultBuffer         = 8
)

// MetricSampler produces one MetricSample per call.
type MetricSampler interface {
	Sample(ctx context.Context) counters.MetricSample
}

// CensusTaker produces an ordered process snapshot for the current controls.
type CensusTaker interface {
	SnapshotControls(ctx context.Context, ctrl *census.Controls) []census.ProcessRecord
}

// LogSink receives samples on the log cadence.
type LogSink interface {
	Write(ctx context.Context, sample counters.MetricSample) error
}

// Config sets the cadences. Zero values take the defaults.
type Config struct {
	GraphInterval  time.Duration
	CensusInterval time.Duration
	LogInterval    time.Duration
	CensusTimeout  time.Duration // per snapshot, 0 = none
	Buffer         int           // channel capacity
}

func DefaultConfig() Config {
	return Config{
		GraphInterval:  DefaultGraphInterval,
		CensusInterval: DefaultCensusInterval,
		LogInterval:    DefaultLogInterval,
		Buffer:         defaultBuffer,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.GraphInterval <= 0 {
		c.GraphInterval = d.GraphInterval
	}
	if c.CensusInterval <= 0 {
		c.CensusInterval = d.CensusInterval
	}
	if c.LogInterval <= 0 {
		c.LogInterval = d.LogInterval
	}
	if c.Buffer <= 0 {
		c.Buffer = d.Buffer
	}
	return c
}

// Scheduler owns one goroutine per cadence. Each channel has exactly one
// producer, so values arrive in the order they were produced.
type Scheduler struct {
	sampler  MetricSampler
	census   CensusTaker
	controls *census.Controls
	sink     LogSink
	cfg      Config
	logger   *slog.Logger

	metrics chan counters.MetricSample
	records chan []census.ProcessRecord
	nudge   chan struct{}

	latest  atomic.Pointer[counters.MetricSample]
	logging atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
	wg      sync.WaitGroup
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSink attaches a usage log sink. Logging starts enabled when a sink is set.
func WithSink(sink LogSink) Option {
	return func(s *Scheduler) {
		s.sink = sink
		s.logging.Store(sink != nil)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a scheduler. A nil controls defaults to CPU order with no filter.
func New(sampler MetricSampler, taker CensusTaker, controls *census.Controls, cfg Config, opts ...Option) (*Scheduler, error) {
	if sampler == nil || taker == nil {
		return nil, errors.New("sampler and census are required")
	}
	if controls == nil {
		controls = census.NewControls()
	}
	cfg = cfg.withDefaults()

	s := &Scheduler{
		sampler:  sampler,
		census:   taker,
		controls: controls,
		cfg:      cfg,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:  make(chan counters.MetricSample, cfg.Buffer),
		records:  make(chan []census.ProcessRecord, cfg.Buffer),
		nudge:    make(chan struct{}, 1),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Metrics delivers samples from the graph cadence.
func (s *Scheduler) Metrics() <-chan counters.MetricSample { return s.metrics }

// Census delivers snapshots from the census cadence.
func (s *Scheduler) Census() <-chan []census.ProcessRecord { return s.records }

// Controls returns the sort/filter selection read by the census cadence.
func (s *Scheduler) Controls() *census.Controls { return s.controls }

// Latest returns the most recent sample, if any has been taken.
func (s *Scheduler) Latest() (counters.MetricSample, bool) {
	p := s.latest.Load()
	if p == nil {
		return counters.MetricSample{}, false
	}
	return *p, true
}

// RequestCensus asks for an immediate snapshot. It never blocks; requests
// made while one is pending are merged.
func (s *Scheduler) RequestCensus() {
	select {
	case s.nudge <- struct{}{}:
	default:
	}
}

// SetLogging enables or disables writes to the sink.
func (s *Scheduler) SetLogging(on bool) {
	s.logging.Store(on && s.sink != nil)
}

// Logging reports whether samples are being written to the sink.
func (s *Scheduler) Logging() bool { return s.logging.Load() }

// Start launches the cadence loops.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("scheduler already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(3)
	s.mu.Unlock()

	go s.metricsLoop(ctx)
	go s.censusLoop(ctx)
	go s.logLoop(ctx)
	return nil
}

// Stop cancels the loops and waits for them to exit. In-flight reads are abandoned.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.running = false
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) metricsLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.GraphInterval)
	defer ticker.Stop()

	for {
		sample := s.sampler.Sample(ctx)
		if ctx.Err() != nil {
			return
		}
		s.latest.Store(&sample)
		if !send(ctx, s.metrics, sample) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) censusLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.CensusInterval)
	defer ticker.Stop()

	for {
		records := s.snapshot(ctx)
		if ctx.Err() != nil {
			return
		}
		if !send(ctx, s.records, records) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.nudge:
		}
	}
}

func (s *Scheduler) snapshot(ctx context.Context) []census.ProcessRecord {
	if s.cfg.CensusTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CensusTimeout)
		defer cancel()
	}
	return s.census.SnapshotControls(ctx, s.controls)
}

func (s *Scheduler) logLoop(ctx context.Context) {
	defer s.wg.Done()
	if s.sink == nil {
		return
	}
	ticker := time.NewTicker(s.cfg.LogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.writeLog(ctx)
		}
	}
}

func (s *Scheduler) writeLog(ctx context.Context) {
	if !s.logging.Load() {
		return
	}
	sample, ok := s.Latest()
	if !ok {
		return
	}
	if err := s.sink.Write(ctx, sample); err != nil {
		s.logger.Warn("usage log write failed", "error", err)
		return
	}
	s.logger.Debug("usage log written",
		"cpu", sample.CPULoadPercent,
		"mem", sample.MemoryUsedPercent,
	)
}

// send blocks until v is queued or ctx is done.
func send[T any](ctx context.Context, ch chan<- T, v T) bool {
	select {
	case ch <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
