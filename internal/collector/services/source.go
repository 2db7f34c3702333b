package services

import (
	"context"

	"sysmon/internal/counters"
)

// GopsutilSource is a counters.Source backed by the CPU and memory sensors.
// It works wherever gopsutil does, not only on hosts with /proc.
type GopsutilSource struct {
	cpu *CPUSensor
	mem *MemSensor
}

func NewGopsutilSource() *GopsutilSource {
	return &GopsutilSource{cpu: NewCPUSensor(), mem: NewMemSensor()}
}

func (g *GopsutilSource) MemoryCounters(ctx context.Context) (counters.MemoryCounters, error) {
	return g.mem.Counters(ctx)
}

func (g *GopsutilSource) CPUTicks(ctx context.Context) (counters.CPUTicks, error) {
	return g.cpu.Ticks(ctx)
}
