package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"

	"sysmon/internal/census"
	"sysmon/internal/counters"
)

type sensorTestCase struct {
	name     string
	factory  func() Sensor
	optional bool
}

var sensorCases = []sensorTestCase{
	{name: "CPU", factory: func() Sensor { return NewCPUSensor() }},
	{name: "Memory", factory: func() Sensor { return NewMemSensor() }},
	{name: "Host", factory: func() Sensor { return NewHostSensor() }},
	{name: "Process", factory: func() Sensor { return NewProcessSensor() }, optional: true},
}

func TestSensorsSuite(t *testing.T) {
	ctx := context.Background()

	for _, tc := range sensorCases {
		t.Run(tc.name, func(t *testing.T) {
			sensor := tc.factory()
			if sensor.Name() != tc.name {
				t.Errorf("Name() = %q; want %q", sensor.Name(), tc.name)
			}

			if err := sensor.Connect(ctx); err != nil {
				t.Fatalf("%s Connect failed: %v", tc.name, err)
			}
			defer sensor.Disconnect(ctx)

			result, err := sensor.Collect(ctx)
			if err != nil {
				if tc.optional {
					t.Logf("%s Collect skipped (optional): %v", tc.name, err)
					return
				}
				t.Skipf("%s Collect unavailable on this host: %v", tc.name, err)
			}
			if result == nil {
				t.Fatalf("%s Collect returned nil result", tc.name)
			}

			logSensorResult(t, tc.name, result)
		})
	}
}

type failingSensor struct {
	connectErr, collectErr error
	disconnected           bool
}

func (f *failingSensor) Name() string {
	return "Failing"
}

func (f *failingSensor) Connect(ctx context.Context) error {
	return f.connectErr
}

func (f *failingSensor) Disconnect(ctx context.Context) error {
	f.disconnected = true
	return nil
}

func (f *failingSensor) Collect(ctx context.Context) (any, error) {
	return nil, f.collectErr
}

func TestProbe(t *testing.T) {
	ctx := context.Background()

	if failed := Probe(ctx, NewHostSensor()); len(failed) != 0 {
		t.Skipf("host sensor unavailable: %v", failed)
	}

	collectFail := &failingSensor{collectErr: errors.New("no data")}
	if failed := Probe(ctx, collectFail); failed["Failing"] == nil {
		t.Error("Expected collect failure to be reported")
	}
	if !collectFail.disconnected {
		t.Error("Expected Disconnect after a connected probe")
	}

	connectFail := &failingSensor{connectErr: errors.New("denied")}
	if failed := Probe(ctx, connectFail); failed["Failing"] == nil {
		t.Error("Expected connect failure to be reported")
	}
	if connectFail.disconnected {
		t.Error("Disconnect must not run when Connect failed")
	}
}

func logSensorResult(t *testing.T, name string, result any) {
	t.Helper()

	if raw, ok := result.([]byte); ok {
		t.Logf("%s result: %d bytes", name, len(raw))
		return
	}
	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		t.Logf("%s result: %+v", name, result)
		return
	}

	t.Logf("%s result:\n%s", name, payload)
}

func TestTicksFromTimes(t *testing.T) {
	got := TicksFromTimes(cpu.TimesStat{User: 1.5, Nice: 0.01, System: 2, Idle: 90.004, Iowait: 7})
	want := counters.CPUTicks{User: 150, Nice: 1, System: 200, Idle: 9000}
	if got != want {
		t.Errorf("TicksFromTimes() = %+v; want %+v", got, want)
	}

	if neg := TicksFromTimes(cpu.TimesStat{User: -1}); neg.User != 0 {
		t.Errorf("Expected negative seconds to clamp to 0, got %d", neg.User)
	}
}

func TestGopsutilSourceFeedsReader(t *testing.T) {
	r := counters.NewReader(NewGopsutilSource())
	ctx := context.Background()

	mem, err := r.ReadMemory(ctx)
	if err != nil {
		t.Skipf("memory counters unavailable: %v", err)
	}
	if mem < 0 || mem > 100 {
		t.Errorf("Memory percent out of range: %v", mem)
	}

	first, err := r.ReadCPULoad(ctx)
	if err != nil {
		t.Skipf("cpu counters unavailable: %v", err)
	}
	if first != 0 {
		t.Errorf("Expected first cpu load 0, got %v", first)
	}
	if r.State().PreviousTotalTicks == 0 {
		t.Error("Expected baseline ticks to be recorded")
	}
}

func TestProcessSensorTableParses(t *testing.T) {
	c := census.New(NewProcessSensor(), nil)
	records := c.Snapshot(context.Background(), census.SortPID, "")
	if len(records) == 0 {
		t.Skip("no processes visible on this host")
	}
	for i := 1; i < len(records); i++ {
		if records[i-1].PID > records[i].PID {
			t.Fatalf("Records not in pid order at %d: %d > %d", i, records[i-1].PID, records[i].PID)
		}
	}
}

func TestHostBanner(t *testing.T) {
	if got := (HostResult{}).Banner(); got != "unknown host" {
		t.Errorf("Banner() = %q", got)
	}
	h := HostResult{Hostname: "box", Platform: "debian", KernelVersion: "6.1"}
	if got := h.Banner(); got != "box (debian 6.1) up 0s" {
		t.Errorf("Banner() = %q", got)
	}
}
