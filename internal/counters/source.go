package counters

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MemoryCounters is a point-in-time memory reading. Units only need to agree
// with each other.
type MemoryCounters struct {
	Total     uint64
	Available uint64
}

// CPUTicks holds the cumulative aggregate CPU counters since boot.
type CPUTicks struct {
	User   uint64
	Nice   uint64
	System uint64
	Idle   uint64
}

// Total returns user+nice+system+idle.
func (t CPUTicks) Total() uint64 {
	return t.User + t.Nice + t.System + t.Idle
}

// Source supplies raw counters to a Reader.
type Source interface {
	MemoryCounters(ctx context.Context) (MemoryCounters, error)
	CPUTicks(ctx context.Context) (CPUTicks, error)
}

// ProcSource reads /proc/meminfo and /proc/stat.
type ProcSource struct {
	// Overridable file openers for testing.
	openMeminfo func() (io.ReadCloser, error)
	openStat    func() (io.ReadCloser, error)
}

// NewProcSource returns a ProcSource rooted at root (normally "/proc").
func NewProcSource(root string) *ProcSource {
	if root == "" {
		root = "/proc"
	}
	return &ProcSource{
		openMeminfo: func() (io.ReadCloser, error) {
			return os.Open(filepath.Join(root, "meminfo"))
		},
		openStat: func() (io.ReadCloser, error) {
			return os.Open(filepath.Join(root, "stat"))
		},
	}
}

func (s *ProcSource) MemoryCounters(ctx context.Context) (MemoryCounters, error) {
	if err := ctx.Err(); err != nil {
		return MemoryCounters{}, err
	}
	f, err := s.openMeminfo()
	if err != nil {
		return MemoryCounters{}, fmt.Errorf("open meminfo: %w", err)
	}
	defer f.Close()
	return ParseMeminfo(f)
}

func (s *ProcSource) CPUTicks(ctx context.Context) (CPUTicks, error) {
	if err := ctx.Err(); err != nil {
		return CPUTicks{}, err
	}
	f, err := s.openStat()
	if err != nil {
		return CPUTicks{}, fmt.Errorf("open stat: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return CPUTicks{}, fmt.Errorf("read stat: %w", err)
		}
		return CPUTicks{}, errors.New("stat is empty")
	}
	return ParseCPULine(sc.Text())
}

// ParseMeminfo scans "KEY: VALUE [unit]" lines for MemTotal and MemAvailable.
// Both keys must be present.
func ParseMeminfo(r io.Reader) (MemoryCounters, error) {
	var mc MemoryCounters
	var haveTotal, haveAvail bool

	sc := bufio.NewScanner(r)
	for sc.Scan() && !(haveTotal && haveAvail) {
		key, val, ok := parseMeminfoLine(sc.Text())
		if !ok {
			continue
		}
		switch key {
		case "MemTotal":
			mc.Total, haveTotal = val, true
		case "MemAvailable":
			mc.Available, haveAvail = val, true
		}
	}
	if err := sc.Err(); err != nil {
		return MemoryCounters{}, fmt.Errorf("read meminfo: %w", err)
	}
	if !haveTotal || !haveAvail {
		return MemoryCounters{}, errors.New("meminfo missing MemTotal or MemAvailable")
	}
	return mc, nil
}

func parseMeminfoLine(line string) (string, uint64, bool) {
	key, rest, ok := strings.Cut(line, ":")
	if !ok {
		return "", 0, false
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return "", 0, false
	}
	v, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return strings.TrimSpace(key), v, true
}

// ParseCPULine parses "cpu user nice system idle ...", using the first five tokens.
func ParseCPULine(line string) (CPUTicks, error) {
	fields := strings.Fields(line)
	if len(fields) < 5 || !strings.HasPrefix(fields[0], "cpu") {
		return CPUTicks{}, fmt.Errorf("malformed cpu line %q", line)
	}

	var vals [4]uint64
	for i := range vals {
		v, err := strconv.ParseUint(fields[i+1], 10, 64)
		if err != nil {
			return CPUTicks{}, fmt.Errorf("parse cpu field %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return CPUTicks{User: vals[0], Nice: vals[1], System: vals[2], Idle: vals[3]}, nil
}
