package logsink

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"sysmon/internal/counters"
)

// DefaultCSVPath is used when no path is configured.
const DefaultCSVPath = "system_usage_log.csv"

// CSVHeader is written once, when the file is empty.
var CSVHeader = []string{"Timestamp", "CPU Usage (%)", "RAM Usage (%)"}

// CSVSink appends rows to a CSV file.
type CSVSink struct {
	path string

	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// OpenCSV opens path for appending, writing the header if the file is new or empty.
func OpenCSV(path string) (*CSVSink, error) {
	if path == "" {
		path = DefaultCSVPath
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open usage log: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat usage log: %w", err)
	}

	s := &CSVSink{path: path, f: f, w: csv.NewWriter(f)}
	if info.Size() == 0 {
		if err := s.writeRecord(CSVHeader); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	return s, nil
}

func (s *CSVSink) Path() string { return s.path }

func (s *CSVSink) Write(ctx context.Context, sample counters.MetricSample) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return fmt.Errorf("usage log %s is closed", s.path)
	}
	e := EntryFrom(sample)
	return s.writeRecord([]string{
		e.Timestamp.Format(time.RFC3339),
		strconv.FormatFloat(e.CPU, 'f', 2, 64),
		strconv.FormatFloat(e.RAM, 'f', 2, 64),
	})
}

func (s *CSVSink) writeRecord(rec []string) error {
	if err := s.w.Write(rec); err != nil {
		return fmt.Errorf("write usage log: %w", err)
	}
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return fmt.Errorf("flush usage log: %w", err)
	}
	return nil
}

// Recent re-reads the file and returns up to limit rows, newest first.
func (s *CSVSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open usage log: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, limit)
}

func (s *CSVSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.f == nil {
		return nil
	}
	s.w.Flush()
	err := s.f.Close()
	s.f = nil
	return err
}

// ReadCSV parses a usage log, skipping the header and unparseable rows.
// It returns up to limit entries, newest first; limit <= 0 returns all.
func ReadCSV(r io.Reader, limit int) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var entries []Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read usage log: %w", err)
		}
		if e, ok := parseRecord(rec); ok {
			entries = append(entries, e)
		}
	}

	slices.Reverse(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func parseRecord(rec []string) (Entry, bool) {
	if len(rec) != 3 {
		return Entry{}, false
	}
	ts, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return Entry{}, false
	}
	cpu, err := strconv.ParseFloat(rec[1], 64)
	if err != nil {
		return Entry{}, false
	}
	ram, err := strconv.ParseFloat(rec[2], 64)
	if err != nil {
		return Entry{}, false
	}
	return Entry{Timestamp: ts, CPU: cpu, RAM: ram}, true
}
