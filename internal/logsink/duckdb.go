package logsink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb" // Register DuckDB driver

	"sysmon/internal/counters"
)

// DatabaseConfig holds DuckDB tuning options.
type DatabaseConfig struct {
	Threads       int           // Number of threads for DuckDB (0 = default)
	MemoryLimitGB int           // Memory limit in GB (0 = default)
	Timeout       time.Duration // Per-statement timeout (0 = none)
}

// DuckDBOption configures a DuckDBSink.
type DuckDBOption func(*DatabaseConfig)

// WithThreads sets the number of DuckDB threads.
func WithThreads(n int) DuckDBOption {
	return func(c *DatabaseConfig) { c.Threads = n }
}

// WithMemoryLimit sets the DuckDB memory limit in GB.
func WithMemoryLimit(gb int) DuckDBOption {
	return func(c *DatabaseConfig) { c.MemoryLimitGB = gb }
}

// WithTimeout bounds each statement.
func WithTimeout(d time.Duration) DuckDBOption {
	return func(c *DatabaseConfig) { c.Timeout = d }
}

const schema = `
CREATE TABLE IF NOT EXISTS usage_log (
	ts          TIMESTAMP NOT NULL,
	cpu_percent DOUBLE    NOT NULL,
	ram_percent DOUBLE    NOT NULL
)`

// DuckDBSink appends usage rows to a DuckDB table.
type DuckDBSink struct {
	db     *sql.DB
	config DatabaseConfig
}

// OpenDuckDB opens (or creates) the database at dsn and ensures the schema.
// An empty dsn or ":memory:" gives an in-memory database.
func OpenDuckDB(dsn string, opts ...DuckDBOption) (*DuckDBSink, error) {
	s := &DuckDBSink{}
	for _, opt := range opts {
		if opt != nil {
			opt(&s.config)
		}
	}
	if dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	ctx, cancel := s.opContext(context.Background())
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	// Embedded database; a single connection serialises writes.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	s.db = db

	if err := s.configure(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure duckdb: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate usage_log: %w", err)
	}
	return s, nil
}

func (s *DuckDBSink) configure(ctx context.Context) error {
	if s.config.Threads > 0 {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA threads=%d", s.config.Threads)); err != nil {
			return fmt.Errorf("setting threads: %w", err)
		}
	}
	if s.config.MemoryLimitGB > 0 {
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA memory_limit='%dGB'", s.config.MemoryLimitGB)); err != nil {
			return fmt.Errorf("setting memory limit: %w", err)
		}
	}
	return nil
}

func (s *DuckDBSink) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout > 0 {
		return context.WithTimeout(ctx, s.config.Timeout)
	}
	return context.WithCancel(ctx)
}

// DB exposes the underlying handle.
func (s *DuckDBSink) DB() *sql.DB { return s.db }

func (s *DuckDBSink) Write(ctx context.Context, sample counters.MetricSample) error {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	e := EntryFrom(sample)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_log(ts, cpu_percent, ram_percent) VALUES(?,?,?)`,
		e.Timestamp.UTC(), e.CPU, e.RAM,
	)
	if err != nil {
		return fmt.Errorf("insert usage row: %w", err)
	}
	return nil
}

// Recent returns up to limit rows, newest first; limit <= 0 returns all.
func (s *DuckDBSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	query := `SELECT ts, cpu_percent, ram_percent FROM usage_log ORDER BY ts DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage log: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Timestamp, &e.CPU, &e.RAM); err != nil {
			return nil, fmt.Errorf("scan usage row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary aggregates the stored rows.
type Summary struct {
	Rows   int     `json:"rows"`
	AvgCPU float64 `json:"avg_cpu_percent"`
	MaxCPU float64 `json:"max_cpu_percent"`
	AvgRAM float64 `json:"avg_ram_percent"`
	MaxRAM float64 `json:"max_ram_percent"`
}

func (s *DuckDBSink) Summary(ctx context.Context) (Summary, error) {
	ctx, cancel := s.opContext(ctx)
	defer cancel()

	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(AVG(cpu_percent), 0), COALESCE(MAX(cpu_percent), 0),
		       COALESCE(AVG(ram_percent), 0), COALESCE(MAX(ram_percent), 0)
		FROM usage_log`).Scan(&sum.Rows, &sum.AvgCPU, &sum.MaxCPU, &sum.AvgRAM, &sum.MaxRAM)
	if err != nil {
		return Summary{}, fmt.Errorf("summarise usage log: %w", err)
	}
	return sum, nil
}

func (s *DuckDBSink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
