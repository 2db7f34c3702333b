// Package window provides a fixed-capacity rolling buffer for metric series.
package window

import "sync"

// DefaultCapacity is the number of samples kept per graphed series.
const DefaultCapacity = 100

// RollingWindow is a fixed-capacity FIFO buffer. It starts pre-filled with a
// neutral value, so Len always equals Cap and graphs never see a partial window.
// A RollingWindow is not safe for concurrent use; see Synchronized.
type RollingWindow[T any] struct {
	buf  []T
	head int // index of the oldest element
}

// New returns a window of the given capacity filled with neutral.
// A non-positive capacity falls back to DefaultCapacity.
func New[T any](capacity int, neutral T) *RollingWindow[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	buf := make([]T, capacity)
	for i := range buf {
		buf[i] = neutral
	}
	return &RollingWindow[T]{buf: buf}
}

// Append adds v as the newest element and evicts the oldest.
func (w *RollingWindow[T]) Append(v T) {
	w.buf[w.head] = v
	w.head = (w.head + 1) % len(w.buf)
}

// Values returns a copy of the contents, oldest first.
func (w *RollingWindow[T]) Values() []T {
	out := make([]T, 0, len(w.buf))
	out = append(out, w.buf[w.head:]...)
	return append(out, w.buf[:w.head]...)
}

// Last returns the newest element.
func (w *RollingWindow[T]) Last() T {
	i := w.head - 1
	if i < 0 {
		i = len(w.buf) - 1
	}
	return w.buf[i]
}

// Len returns the number of held elements, always equal to the capacity.
func (w *RollingWindow[T]) Len() int { return len(w.buf) }

// Cap returns the fixed capacity.
func (w *RollingWindow[T]) Cap() int { return len(w.buf) }

// Synchronized guards a RollingWindow with a RWMutex for readers on other
// goroutines (the TUI and the MCP server read while the scheduler appends).
type Synchronized[T any] struct {
	mu sync.RWMutex
	w  *RollingWindow[T]
}

// NewSynchronized wraps a new window of the given capacity.
func NewSynchronized[T any](capacity int, neutral T) *Synchronized[T] {
	return &Synchronized[T]{w: New(capacity, neutral)}
}

// Append adds v, evicting the oldest element.
func (s *Synchronized[T]) Append(v T) {
	s.mu.Lock()
	s.w.Append(v)
	s.mu.Unlock()
}

// Values returns a copy, oldest first.
func (s *Synchronized[T]) Values() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Values()
}

// Last returns the newest element.
func (s *Synchronized[T]) Last() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Last()
}

// Cap returns the fixed capacity.
func (s *Synchronized[T]) Cap() int { return s.w.Cap() }
