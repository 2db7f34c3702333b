package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shirou/gopsutil/v4/cpu"

	"sysmon/internal/counters"
)

// ticksPerSecond converts gopsutil's cumulative seconds back to USER_HZ ticks.
// Only ratios of deltas matter, so the exact rate is not significant.
const ticksPerSecond = 100

// CPUSensor reads aggregate cumulative CPU times.
type CPUSensor struct{}

func NewCPUSensor() *CPUSensor {
	return &CPUSensor{}
}

func (s *CPUSensor) Name() string {
	return "CPU"
}

func (s *CPUSensor) Connect(ctx context.Context) error {
	return nil
}

func (s *CPUSensor) Disconnect(ctx context.Context) error {
	return nil
}

// Collect returns counters.CPUTicks.
func (s *CPUSensor) Collect(ctx context.Context) (any, error) {
	return s.Ticks(ctx)
}

func (s *CPUSensor) Ticks(ctx context.Context) (counters.CPUTicks, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return counters.CPUTicks{}, fmt.Errorf("failed to get cpu times: %w", err)
	}
	if len(times) == 0 {
		return counters.CPUTicks{}, errors.New("no aggregate cpu times reported")
	}
	return TicksFromTimes(times[0]), nil
}

// TicksFromTimes converts a gopsutil TimesStat to tick counters.
func TicksFromTimes(t cpu.TimesStat) counters.CPUTicks {
	return counters.CPUTicks{
		User:   secondsToTicks(t.User),
		Nice:   secondsToTicks(t.Nice),
		System: secondsToTicks(t.System),
		Idle:   secondsToTicks(t.Idle),
	}
}

func secondsToTicks(s float64) uint64 {
	if s <= 0 {
		return 0
	}
	return uint64(math.Round(s * ticksPerSecond))
}
