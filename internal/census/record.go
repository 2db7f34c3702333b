// Package census enumerates running processes and orders them for display.
package census

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// ProcessRecord is one row of a census. Records carry no identity across snapshots.
type ProcessRecord struct {
	PID        int     `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float64 `json:"mem_percent"`
}

// SortKey selects the ordering of a snapshot.
type SortKey int32

const (
	SortPID SortKey = iota
	SortCPU
	SortMem
	SortName
)

// SortKeys lists every key in column order.
var SortKeys = []SortKey{SortPID, SortCPU, SortMem, SortName}

func (k SortKey) String() string {
	switch k {
	case SortPID:
		return "pid"
	case SortCPU:
		return "cpu"
	case SortMem:
		return "mem"
	case SortName:
		return "name"
	default:
		return fmt.Sprintf("SortKey(%d)", int32(k))
	}
}

// Header is the column title for the key.
func (k SortKey) Header() string {
	switch k {
	case SortPID:
		return "PID"
	case SortCPU:
		return "CPU%"
	case SortMem:
		return "MEM%"
	case SortName:
		return "NAME"
	default:
		return "?"
	}
}

// ParseSortKey accepts the names returned by String, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pid":
		return SortPID, nil
	case "cpu", "":
		return SortCPU, nil
	case "mem", "memory":
		return SortMem, nil
	case "name":
		return SortName, nil
	}
	return SortCPU, fmt.Errorf("unknown sort key %q (want pid, cpu, mem or name)", s)
}

// Controls holds the sort selection and search filter shared between the
// input handler and the census loop. Reads never observe a torn value.
type Controls struct {
	sort   atomic.Int32
	filter atomic.Pointer[string]
}

// NewControls returns controls sorted by CPU with an empty filter.
func NewControls() *Controls {
	c := &Controls{}
	c.sort.Store(int32(SortCPU))
	empty := ""
	c.filter.Store(&empty)
	return c
}

func (c *Controls) SetSort(k SortKey) { c.sort.Store(int32(k)) }

func (c *Controls) Sort() SortKey { return SortKey(c.sort.Load()) }

func (c *Controls) SetFilter(s string) { c.filter.Store(&s) }

func (c *Controls) Filter() string {
	if p := c.filter.Load(); p != nil {
		return *p
	}
	return ""
}

// AppendFilter adds typed text to the end of the filter.
func (c *Controls) AppendFilter(text string) {
	for {
		old := c.filter.Load()
		cur := ""
		if old != nil {
			cur = *old
		}
		next := cur + text
		if c.filter.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Backspace removes the last rune of the filter, if any.
func (c *Controls) Backspace() {
	for {
		old := c.filter.Load()
		if old == nil || *old == "" {
			return
		}
		r := []rune(*old)
		next := string(r[:len(r)-1])
		if c.filter.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Snapshot returns the current sort key and filter together.
func (c *Controls) Snapshot() (SortKey, string) {
	return c.Sort(), c.Filter()
}
