package collector

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"sysmon/internal/census"
	"sysmon/internal/collector/services"
	"sysmon/internal/counters"
	"sysmon/internal/logsink"
	"sysmon/internal/scheduler"
)

// NewCounterSource returns the counter backend named by cfg.CounterSource.
func NewCounterSource(cfg MonitorConfig) (counters.Source, error) {
	switch cfg.CounterSource {
	case SourceProc, "":
		return counters.NewProcSource(cfg.ProcRoot), nil
	case SourceGopsutil:
		return services.NewGopsutilSource(), nil
	}
	return nil, &ConfigError{Field: "CounterSource", Message: "unknown source " + cfg.CounterSource}
}

// NewEnumerator returns the process enumerator named by cfg.Enumerator.
func NewEnumerator(cfg MonitorConfig) (census.Enumerator, error) {
	switch cfg.Enumerator {
	case EnumeratorPs, "":
		return census.NewPsEnumerator(nil), nil
	case SourceGopsutil:
		return services.NewProcessSensor(), nil
	}
	return nil, &ConfigError{Field: "Enumerator", Message: "unknown enumerator " + cfg.Enumerator}
}

// NewUsageLog builds the configured usage log sinks. Files are opened on the
// first write. It returns nil when neither a CSV nor a DuckDB path is set.
func NewUsageLog(cfg MonitorConfig) logsink.Sink {
	var sinks logsink.Multi
	if cfg.LogCSVPath != "" {
		path := cfg.LogCSVPath
		sinks = append(sinks, logsink.NewLazy(func() (logsink.Sink, error) {
			s, err := logsink.OpenCSV(path)
			if err != nil {
				return nil, err
			}
			return s, nil
		}))
	}
	if cfg.LogDuckDBPath != "" {
		dsn := cfg.LogDuckDBPath
		sinks = append(sinks, logsink.NewLazy(func() (logsink.Sink, error) {
			s, err := logsink.OpenDuckDB(dsn)
			if err != nil {
				return nil, err
			}
			return s, nil
		}))
	}
	if len(sinks) == 0 {
		return nil
	}
	return sinks
}

// Monitor wires a counter reader, a census and a usage log under one scheduler.
type Monitor struct {
	Config    MonitorConfig
	Reader    *counters.Reader
	Census    *census.Census
	Scheduler *scheduler.Scheduler
	History   *scheduler.History
	Host      *services.HostSensor

	sink   logsink.Sink
	logger *slog.Logger
}

// MonitorOption adjusts how NewMonitor builds its parts.
type MonitorOption func(*monitorDeps)

type monitorDeps struct {
	source     counters.Source
	enumerator census.Enumerator
	sink       logsink.Sink
	sinkSet    bool
	recording  bool
}

// WithSource overrides the counter backend.
func WithSource(src counters.Source) MonitorOption {
	return func(d *monitorDeps) { d.source = src }
}

// WithEnumeratorOverride overrides the process enumerator.
func WithEnumeratorOverride(e census.Enumerator) MonitorOption {
	return func(d *monitorDeps) { d.enumerator = e }
}

// WithUsageLog overrides the usage log sink; nil disables it.
func WithUsageLog(s logsink.Sink) MonitorOption {
	return func(d *monitorDeps) { d.sink, d.sinkSet = s, true }
}

// WithRecording starts the monitor with usage logging enabled.
func WithRecording(on bool) MonitorOption {
	return func(d *monitorDeps) { d.recording = on }
}

// NewMonitor validates cfg and assembles the monitor. Nothing runs until Start.
func NewMonitor(cfg MonitorConfig, logger *slog.Logger, opts ...MonitorOption) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var deps monitorDeps
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}

	if deps.source == nil {
		src, err := NewCounterSource(cfg)
		if err != nil {
			return nil, err
		}
		deps.source = src
	}
	if deps.enumerator == nil {
		e, err := NewEnumerator(cfg)
		if err != nil {
			return nil, err
		}
		deps.enumerator = e
	}
	if !deps.sinkSet {
		deps.sink = NewUsageLog(cfg)
	}

	reader := counters.NewReader(deps.source, counters.WithLogger(logger.With("component", "counters")))
	cen := census.New(deps.enumerator, logger.With("component", "census"))

	schedOpts := []scheduler.Option{scheduler.WithLogger(logger.With("component", "scheduler"))}
	if deps.sink != nil {
		schedOpts = append(schedOpts, scheduler.WithSink(deps.sink))
	}
	sched, err := scheduler.New(reader, cen, census.NewControls(), cfg.SchedulerConfig(), schedOpts...)
	if err != nil {
		return nil, err
	}
	sched.SetLogging(deps.recording)

	return &Monitor{
		Config:    cfg,
		Reader:    reader,
		Census:    cen,
		Scheduler: sched,
		History:   scheduler.NewHistory(cfg.HistoryCapacity),
		Host:      services.NewHostSensor(),
		sink:      deps.sink,
		logger:    logger,
	}, nil
}

// Start launches the cadences.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("monitor starting",
		"counter_source", m.Config.CounterSource,
		"enumerator", m.Config.Enumerator,
		"graph_interval", m.Config.GraphInterval,
		"census_interval", m.Config.CensusInterval,
	)
	m.probe(ctx)
	return m.Scheduler.Start(ctx)
}

// probe checks the gopsutil sensors behind the configured backends once, so
// an unsupported platform shows up in the log rather than as flat zero graphs.
func (m *Monitor) probe(ctx context.Context) {
	sensors := []services.Sensor{m.Host}
	if m.Config.CounterSource == SourceGopsutil {
		sensors = append(sensors, services.NewCPUSensor(), services.NewMemSensor())
	}
	for name, err := range services.Probe(ctx, sensors...) {
		m.logger.Warn("sensor unavailable", "sensor", name, "error", err)
	}
}

// Close stops the cadences and closes the usage log.
func (m *Monitor) Close() error {
	m.Scheduler.Stop()
	if m.sink != nil {
		return m.sink.Close()
	}
	return nil
}

// ErrNoUsageLog is returned when usage rows are requested without a sink.
var ErrNoUsageLog = errors.New("no usage log configured")

// RecentUsage reads back persisted usage rows, newest first.
func (m *Monitor) RecentUsage(ctx context.Context, limit int) ([]logsink.Entry, error) {
	r, ok := m.sink.(logsink.Reader)
	if !ok {
		return nil, ErrNoUsageLog
	}
	return r.Recent(ctx, limit)
}

// HasUsageLog reports whether a sink is attached.
func (m *Monitor) HasUsageLog() bool { return m.sink != nil }

// Latest returns the most recent sample taken by the graph cadence.
func (m *Monitor) Latest() (counters.MetricSample, bool) {
	return m.Scheduler.Latest()
}

// HistoryValues returns both graphed series, oldest first.
func (m *Monitor) HistoryValues() (mem, cpu []float64) {
	return m.History.Memory.Values(), m.History.CPU.Values()
}

// Processes takes an on-demand census outside the census cadence.
func (m *Monitor) Processes(ctx context.Context, key census.SortKey, filter string) []census.ProcessRecord {
	return m.Census.Snapshot(ctx, key, filter)
}
