package engine

import (
	"sysmon/internal/census"
	"sysmon/internal/counters"
)

const (
	StatusHealthy  = "OK"
	StatusWarning  = "WARN"
	StatusCritical = "CRIT"
)

// Thresholds defines warning and critical levels for a percentage metric.
type Thresholds struct {
	Warning  float64 `yaml:"warning"`
	Critical float64 `yaml:"critical"`
}

// Config holds the levels used to flag samples and processes.
type Config struct {
	CPU     Thresholds `yaml:"cpu"`
	RAM     Thresholds `yaml:"ram"`
	Process Thresholds `yaml:"process"`
}

func DefaultConfig() Config {
	return Config{
		CPU:     Thresholds{Warning: 70.0, Critical: 90.0},
		RAM:     Thresholds{Warning: 70.0, Critical: 90.0},
		Process: Thresholds{Warning: 25.0, Critical: 50.0},
	}
}

type CheckResult struct {
	Name   string
	Value  float64
	Status string
}

// Status maps a value onto OK, WARN or CRIT. Both bounds are exclusive.
func (t Thresholds) Status(value float64) string {
	if value > t.Critical {
		return StatusCritical
	}
	if value > t.Warning {
		return StatusWarning
	}
	return StatusHealthy
}

// Evaluate flags a host sample.
func Evaluate(cfg Config, s counters.MetricSample) []CheckResult {
	return []CheckResult{
		{Name: "CPU Usage", Value: s.CPULoadPercent, Status: cfg.CPU.Status(s.CPULoadPercent)},
		{Name: "RAM Usage", Value: s.MemoryUsedPercent, Status: cfg.RAM.Status(s.MemoryUsedPercent)},
	}
}

// ProcessStatus flags a single census row by its CPU share.
func ProcessStatus(cfg Config, r census.ProcessRecord) string {
	return cfg.Process.Status(r.CPUPercent)
}

// Worst returns the most severe status among results.
func Worst(results []CheckResult) string {
	worst := StatusHealthy
	for _, r := range results {
		switch r.Status {
		case StatusCritical:
			return StatusCritical
		case StatusWarning:
			worst = StatusWarning
		}
	}
	return worst
}
