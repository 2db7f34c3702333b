package logsink

import (
	"context"
	"errors"
	"sync"

	"sysmon/internal/counters"
)

// ErrNotStarted is returned by Recent before the first write opened the sink.
var ErrNotStarted = errors.New("usage log not started")

// Lazy defers opening a sink until the first write, so no file is created
// for sessions that never record.
type Lazy struct {
	open func() (Sink, error)

	mu   sync.Mutex
	sink Sink
}

func NewLazy(open func() (Sink, error)) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) get() (Sink, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink != nil {
		return l.sink, nil
	}
	s, err := l.open()
	if err != nil {
		return nil, err
	}
	l.sink = s
	return s, nil
}

// Opened reports whether the underlying sink exists yet.
func (l *Lazy) Opened() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sink != nil
}

func (l *Lazy) Write(ctx context.Context, s counters.MetricSample) error {
	sink, err := l.get()
	if err != nil {
		return err
	}
	return sink.Write(ctx, s)
}

func (l *Lazy) Recent(ctx context.Context, limit int) ([]Entry, error) {
	l.mu.Lock()
	sink := l.sink
	l.mu.Unlock()
	if sink == nil {
		return nil, ErrNotStarted
	}
	r, ok := sink.(Reader)
	if !ok {
		return nil, errors.New("usage log is not readable")
	}
	return r.Recent(ctx, limit)
}

func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.sink == nil {
		return nil
	}
	err := l.sink.Close()
	l.sink = nil
	return err
}
