package services

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"

	"sysmon/internal/counters"
)

// MemSensor reads total and available memory.
type MemSensor struct{}

func NewMemSensor() *MemSensor {
	return &MemSensor{}
}

func (s *MemSensor) Name() string {
	return "Memory"
}

func (s *MemSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *MemSensor) Disconnect(ctx context.Context) error {
	return nil
}

// Collect returns counters.MemoryCounters.
func (s *MemSensor) Collect(ctx context.Context) (any, error) {
	return s.Counters(ctx)
}

func (s *MemSensor) Counters(ctx context.Context) (counters.MemoryCounters, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return counters.MemoryCounters{}, fmt.Errorf("failed to get virtual memory: %w", err)
	}
	return counters.MemoryCounters{Total: v.Total, Available: v.Available}, nil
}
