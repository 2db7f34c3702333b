package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"sysmon/internal/census"
	"sysmon/internal/collector"
	"sysmon/internal/counters"
)

// fakeSource advances the CPU counters by a fixed 25% busy step per read.
type fakeSource struct {
	mu    sync.Mutex
	ticks counters.CPUTicks
}

func (f *fakeSource) MemoryCounters(ctx context.Context) (counters.MemoryCounters, error) {
	return counters.MemoryCounters{Total: 1000, Available: 600}, nil
}

func (f *fakeSource) CPUTicks(ctx context.Context) (counters.CPUTicks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ticks.User += 25
	f.ticks.Idle += 75
	return f.ticks, nil
}

func fakeEnumerator() census.Enumerator {
	return census.EnumeratorFunc(func(ctx context.Context) ([]byte, error) {
		return []byte("  PID %CPU %MEM COMMAND\n" +
			"    1  0.0  0.1 systemd\n" +
			"  420 12.5  3.0 postgres\n" +
			"  421  2.0  1.0 postgres\n" +
			"  900 60.0  8.0 cc1plus\n"), nil
	})
}

func testApp() *app {
	return &app{source: &fakeSource{}, enumerator: fakeEnumerator()}
}

func run(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd(a)
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootHelp(t *testing.T) {
	out, err := run(t, testApp(), "--help")
	if err != nil {
		t.Fatalf("Execute help failed: %v", err)
	}
	for _, want := range []string{"Usage:", "record", "snapshot", "mcp", "--graph-interval"} {
		if !strings.Contains(out, want) {
			t.Errorf("Help output missing %q. Got: %s", want, out)
		}
	}
}

func TestSnapshotJSON(t *testing.T) {
	out, err := run(t, testApp(), "snapshot", "--json", "--sort", "mem", "--filter", "postgres", "--limit", "1", "--settle", "0s")
	if err != nil {
		t.Fatalf("snapshot failed: %v\n%s", err, out)
	}

	var doc snapshotJSON
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if doc.SortKey != "mem" || doc.Total != 2 {
		t.Errorf("Unexpected header: %+v", doc)
	}
	if len(doc.Processes) != 1 || doc.Processes[0].PID != 420 {
		t.Errorf("Expected postgres 420 first by memory, got %+v", doc.Processes)
	}
	if math.Abs(doc.Sample.CPULoadPercent-25) > 1e-9 || math.Abs(doc.Sample.MemoryUsedPercent-40) > 1e-9 {
		t.Errorf("Unexpected sample: %+v", doc.Sample)
	}
	if doc.Status["CPU Usage"] != "OK" {
		t.Errorf("Unexpected status: %+v", doc.Status)
	}
}

func TestSnapshotText(t *testing.T) {
	out, err := run(t, testApp(), "snapshot", "--no-color", "--settle", "0s")
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	if strings.Contains(out, "\033[") {
		t.Error("Expected plain output with --no-color")
	}
	for _, want := range []string{"SYSMON SNAPSHOT", "CPU Usage", "900 cc1plus", "4 of 4 processes shown, sorted by cpu"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q:\n%s", want, out)
		}
	}
}

func TestSnapshotBadSortKey(t *testing.T) {
	if _, err := run(t, testApp(), "snapshot", "--sort", "rss"); err == nil {
		t.Error("Expected error for unknown sort key")
	}
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysmon.yaml")
	if err := os.WriteFile(path, []byte("graph_interval: 3s\ncensus_interval: 2s\nlog_csv_path: from-file.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	a := &app{}
	cmd := newRootCmd(a)
	if err := cmd.ParseFlags([]string{"--config", path, "--census-interval", "250ms", "--log-csv", ""}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if cfg.GraphInterval != 3*time.Second {
		t.Errorf("File value lost: %v", cfg.GraphInterval)
	}
	if cfg.CensusInterval != 250*time.Millisecond {
		t.Errorf("Flag did not override file: %v", cfg.CensusInterval)
	}
	if cfg.LogCSVPath != "" {
		t.Errorf("Explicit empty flag should disable the CSV log, got %q", cfg.LogCSVPath)
	}
	if cfg.LogInterval != collector.DefaultMonitorConfig().LogInterval {
		t.Errorf("Unset value should keep the default, got %v", cfg.LogInterval)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	a := &app{}
	cmd := newRootCmd(a)
	cmd.ParseFlags([]string{"--source", "sysfs"})
	if _, err := a.loadConfig(cmd); err == nil {
		t.Error("Expected validation error")
	}
}

func TestRecordRequiresDestination(t *testing.T) {
	_, err := run(t, testApp(), "record", "--log-csv", "")
	if err == nil || !strings.Contains(err.Error(), "--log-csv") {
		t.Errorf("Expected destination error, got %v", err)
	}
}

func TestRecordWritesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.csv")
	out, err := run(t, testApp(), "record",
		"--log-csv", path,
		"--graph-interval", "5ms",
		"--census-interval", "50ms",
		"--log-interval", "20ms",
		"--duration", "300ms",
		"--log-level", "error",
	)
	if err != nil {
		t.Fatalf("record failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "recording usage to "+path) {
		t.Errorf("Missing banner: %s", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("usage log not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if lines[0] != "Timestamp,CPU Usage (%),RAM Usage (%)" {
		t.Errorf("Unexpected header %q", lines[0])
	}
	if len(lines) < 2 {
		t.Fatalf("Expected at least one row, got:\n%s", raw)
	}
	if !strings.HasSuffix(lines[1], ",40.00") {
		t.Errorf("Unexpected row %q", lines[1])
	}
}

func TestLogFileDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysmon.log")
	cfg := collector.DefaultMonitorConfig()
	cfg.LogFile = path
	logger, closeLog, err := newLogger(cfg, nil)
	if err != nil {
		t.Fatalf("newLogger failed: %v", err)
	}
	logger.Info("hello", "k", 1)
	closeLog()

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "msg=hello") {
		t.Errorf("Expected log line in file, got %q", raw)
	}
}
