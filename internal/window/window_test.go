package window

import (
	"slices"
	"sync"
	"testing"
)

func TestNewPrefilled(t *testing.T) {
	w := New(5, 0.0)
	if w.Len() != 5 {
		t.Fatalf("Expected length 5, got %d", w.Len())
	}
	for i, v := range w.Values() {
		if v != 0 {
			t.Errorf("Expected neutral value at %d, got %v", i, v)
		}
	}
}

func TestNewNonPositiveCapacity(t *testing.T) {
	for _, c := range []int{0, -3} {
		if got := New(c, 0).Cap(); got != DefaultCapacity {
			t.Errorf("New(%d).Cap() = %d; want %d", c, got, DefaultCapacity)
		}
	}
}

func TestAppendEvictsOldest(t *testing.T) {
	w := New(3, 0)
	for i, v := range []int{1, 2, 3, 4} {
		w.Append(v)
		if w.Len() > 3 {
			t.Fatalf("Length exceeded capacity after append %d: %d", i, w.Len())
		}
	}

	want := []int{2, 3, 4}
	if got := w.Values(); !slices.Equal(got, want) {
		t.Errorf("Values() = %v; want %v", got, want)
	}
	if w.Last() != 4 {
		t.Errorf("Last() = %d; want 4", w.Last())
	}
}

func TestAppendPartialWarmup(t *testing.T) {
	w := New(4, -1)
	w.Append(7)
	w.Append(8)

	want := []int{-1, -1, 7, 8}
	if got := w.Values(); !slices.Equal(got, want) {
		t.Errorf("Values() = %v; want %v", got, want)
	}
}

func TestValuesIsCopy(t *testing.T) {
	w := New(2, 1)
	vals := w.Values()
	vals[0] = 99
	if w.Values()[0] != 1 {
		t.Error("Mutating Values() result changed the window")
	}
}

func TestLastOnFreshWindow(t *testing.T) {
	if got := New(3, 5.5).Last(); got != 5.5 {
		t.Errorf("Last() = %v; want neutral 5.5", got)
	}
}

func TestSynchronizedConcurrentAppend(t *testing.T) {
	s := NewSynchronized(10, 0)

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Append(i)
				_ = s.Values()
			}
		}()
	}
	wg.Wait()

	if got := len(s.Values()); got != 10 {
		t.Errorf("Expected 10 values, got %d", got)
	}
	if s.Cap() != 10 {
		t.Errorf("Cap() = %d; want 10", s.Cap())
	}
}
