// Package logsink persists usage samples taken on the log cadence.
// Every sink is append-only: rows already written are never rewritten.
package logsink

import (
	"context"
	"errors"
	"time"

	"sysmon/internal/counters"
)

// Entry is one persisted usage row.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	CPU       float64   `json:"cpu_usage_percent"`
	RAM       float64   `json:"ram_usage_percent"`
}

// EntryFrom converts a sample into a log row.
func EntryFrom(s counters.MetricSample) Entry {
	return Entry{Timestamp: s.Timestamp, CPU: s.CPULoadPercent, RAM: s.MemoryUsedPercent}
}

// Sink accepts samples on the log cadence.
type Sink interface {
	Write(ctx context.Context, s counters.MetricSample) error
	Close() error
}

// Reader returns the most recent rows, newest first.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// Multi fans a write out to several sinks. All sinks are attempted; the
// errors are joined.
type Multi []Sink

func (m Multi) Write(ctx context.Context, s counters.MetricSample) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Write(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, sink := range m {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Recent reads from the first sink that supports it.
func (m Multi) Recent(ctx context.Context, limit int) ([]Entry, error) {
	for _, sink := range m {
		if r, ok := sink.(Reader); ok {
			return r.Recent(ctx, limit)
		}
	}
	return nil, errors.New("no readable usage log configured")
}
