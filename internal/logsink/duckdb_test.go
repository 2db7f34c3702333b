package logsink

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T, dsn string) *DuckDBSink {
	t.Helper()
	sink, err := OpenDuckDB(dsn, WithThreads(1), WithTimeout(5*time.Second))
	if err != nil {
		t.Skipf("duckdb unavailable: %v", err)
	}
	t.Cleanup(func() { sink.Close() })
	return sink
}

func TestDuckDBSinkWriteAndRecent(t *testing.T) {
	sink := openTestDB(t, "")
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		if err := sink.Write(ctx, sampleAt(t0.Add(time.Duration(i)*2*time.Minute), float64(10*i), 50+float64(i))); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	got, err := sink.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(got))
	}
	if got[0].CPU != 40 || got[2].CPU != 20 {
		t.Errorf("Expected newest first, got %+v", got)
	}
	if !got[0].Timestamp.Equal(t0.Add(8 * time.Minute)) {
		t.Errorf("Unexpected timestamp %v", got[0].Timestamp)
	}

	all, err := sink.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Recent(0) failed: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("Expected all 5 rows, got %d", len(all))
	}
}

func TestDuckDBSinkSummary(t *testing.T) {
	sink := openTestDB(t, "")
	ctx := context.Background()

	empty, err := sink.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if empty.Rows != 0 {
		t.Errorf("Expected no rows, got %d", empty.Rows)
	}

	now := time.Now()
	sink.Write(ctx, sampleAt(now, 10, 20))
	sink.Write(ctx, sampleAt(now.Add(time.Minute), 30, 60))

	sum, err := sink.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.Rows != 2 || sum.AvgCPU != 20 || sum.MaxCPU != 30 || sum.AvgRAM != 40 || sum.MaxRAM != 60 {
		t.Errorf("Unexpected summary: %+v", sum)
	}
}

func TestDuckDBSinkFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "usage.duckdb")
	ctx := context.Background()

	sink, err := OpenDuckDB(path)
	if err != nil {
		t.Skipf("duckdb unavailable: %v", err)
	}
	if err := sink.Write(ctx, sampleAt(time.Now(), 1, 2)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	sink.Close()

	sink = openTestDB(t, path)
	got, err := sink.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected 1 persisted row, got %d", len(got))
	}
}
