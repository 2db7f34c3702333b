package engine

import (
	"testing"

	"sysmon/internal/census"
	"sysmon/internal/counters"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		sample   counters.MetricSample
		expected map[string]string // Metric Name -> Expected Status
	}{
		{
			name:   "All Healthy",
			sample: counters.MetricSample{CPULoadPercent: 10, MemoryUsedPercent: 20},
			expected: map[string]string{
				"CPU Usage": StatusHealthy,
				"RAM Usage": StatusHealthy,
			},
		},
		{
			name:   "CPU Critical",
			sample: counters.MetricSample{CPULoadPercent: 95, MemoryUsedPercent: 20},
			expected: map[string]string{
				"CPU Usage": StatusCritical,
				"RAM Usage": StatusHealthy,
			},
		},
		{
			name:   "RAM Warning",
			sample: counters.MetricSample{CPULoadPercent: 10, MemoryUsedPercent: 75},
			expected: map[string]string{
				"RAM Usage": StatusWarning,
			},
		},
		{
			name:   "Exactly at warning is healthy",
			sample: counters.MetricSample{CPULoadPercent: 70, MemoryUsedPercent: 90},
			expected: map[string]string{
				"CPU Usage": StatusHealthy,
				"RAM Usage": StatusWarning,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := Evaluate(DefaultConfig(), tt.sample)
			got := make(map[string]string)
			for _, r := range results {
				got[r.Name] = r.Status
			}
			for name, want := range tt.expected {
				if got[name] != want {
					t.Errorf("%s: got %s, want %s", name, got[name], want)
				}
			}
		})
	}
}

func TestProcessStatus(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		cpu  float64
		want string
	}{
		{0, StatusHealthy},
		{25, StatusHealthy},
		{30, StatusWarning},
		{50.1, StatusCritical},
	}
	for _, tt := range tests {
		if got := ProcessStatus(cfg, census.ProcessRecord{CPUPercent: tt.cpu}); got != tt.want {
			t.Errorf("ProcessStatus(%.1f) = %s; want %s", tt.cpu, got, tt.want)
		}
	}
}

func TestWorst(t *testing.T) {
	if got := Worst(nil); got != StatusHealthy {
		t.Errorf("Worst(nil) = %s", got)
	}
	rs := []CheckResult{{Status: StatusHealthy}, {Status: StatusWarning}}
	if got := Worst(rs); got != StatusWarning {
		t.Errorf("got %s, want WARN", got)
	}
	rs = append(rs, CheckResult{Status: StatusCritical})
	if got := Worst(rs); got != StatusCritical {
		t.Errorf("got %s, want CRIT", got)
	}
}
