package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessSensor enumerates processes through gopsutil and renders them as a
// process table: a header, then "pid cpu mem name" rows.
type ProcessSensor struct{}

func NewProcessSensor() *ProcessSensor {
	return &ProcessSensor{}
}

func (s *ProcessSensor) Name() string {
	return "Process"
}

func (s *ProcessSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *ProcessSensor) Disconnect(ctx context.Context) error {
	return nil
}

// Collect returns the rendered table as []byte.
func (s *ProcessSensor) Collect(ctx context.Context) (any, error) {
	return s.Enumerate(ctx)
}

// Enumerate implements census.Enumerator. Processes that exit while being
// read are left out.
func (s *ProcessSensor) Enumerate(ctx context.Context) ([]byte, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processes: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("PID %CPU %MEM COMMAND\n")
	for _, p := range procs {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cpuPct, _ := p.CPUPercentWithContext(ctx)
		memPct, _ := p.MemoryPercentWithContext(ctx)
		fmt.Fprintf(&buf, "%d %.1f %.1f %s\n", p.Pid, cpuPct, memPct, name)
	}
	return buf.Bytes(), nil
}
