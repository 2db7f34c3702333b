package mcpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"sysmon/internal/census"
	"sysmon/internal/counters"
	"sysmon/internal/logsink"
)

const (
	defaultProcessLimit = 25
	maxProcessLimit     = 500
	defaultUsageLimit   = 10
	maxUsageLimit       = 1000
)

// Provider is the read side of a running monitor.
type Provider interface {
	Latest() (counters.MetricSample, bool)
	HistoryValues() (mem, cpu []float64)
	Processes(ctx context.Context, key census.SortKey, filter string) []census.ProcessRecord
	RecentUsage(ctx context.Context, limit int) ([]logsink.Entry, error)
}

// Server wraps the MCP server with monitor capabilities.
type Server struct {
	mcpServer *mcp.Server
	provider  Provider
	logger    *slog.Logger
}

// Config holds configuration for the MCP server.
type Config struct {
	ServerName    string
	ServerVersion string
}

// NewServer creates a new MCP server instance and registers its tools.
func NewServer(cfg Config, provider Provider, logger *slog.Logger) (*Server, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ServerName == "" {
		cfg.ServerName = "sysmon"
	}

	impl := &mcp.Implementation{
		Name:    cfg.ServerName,
		Version: cfg.ServerVersion,
	}
	s := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		provider:  provider,
		logger:    logger,
	}
	s.registerTools()
	return s, nil
}

// MetricsArgs defines the input for get_current_metrics.
type MetricsArgs struct {
	IncludeHistory bool `json:"include_history,omitempty" jsonschema:"also return the rolling memory and CPU windows"`
}

// MetricsResult is the latest sample and, optionally, the graphed history.
type MetricsResult struct {
	Available         bool      `json:"available" jsonschema:"false until the first sample has been taken"`
	Timestamp         string    `json:"timestamp,omitempty" jsonschema:"RFC 3339 time of the sample"`
	MemoryUsedPercent float64   `json:"memory_used_percent"`
	CPULoadPercent    float64   `json:"cpu_load_percent"`
	MemoryHistory     []float64 `json:"memory_history,omitempty" jsonschema:"memory used percent, oldest first"`
	CPUHistory        []float64 `json:"cpu_history,omitempty" jsonschema:"cpu load percent, oldest first"`
}

// ProcessesArgs defines the input for get_processes.
type ProcessesArgs struct {
	SortKey string `json:"sort_key,omitempty" jsonschema:"pid, cpu, mem or name (default cpu)"`
	Filter  string `json:"filter,omitempty" jsonschema:"case-sensitive substring the process name must contain"`
	Limit   int    `json:"limit,omitempty" jsonschema:"maximum rows to return (default 25)"`
}

// ProcessesResult wraps a census snapshot.
type ProcessesResult struct {
	SortKey   string                 `json:"sort_key"`
	Total     int                    `json:"total" jsonschema:"matching processes before the limit"`
	Processes []census.ProcessRecord `json:"processes"`
}

// UsageLogArgs defines the input for get_usage_log.
type UsageLogArgs struct {
	Limit int `json:"limit,omitempty" jsonschema:"number of rows to return, newest first (default 10)"`
}

// UsageRow is one usage log row with a string timestamp.
type UsageRow struct {
	Timestamp string  `json:"timestamp" jsonschema:"RFC 3339 time of the row"`
	CPU       float64 `json:"cpu_usage_percent"`
	RAM       float64 `json:"ram_usage_percent"`
}

// UsageLogResult wraps persisted usage rows.
type UsageLogResult struct {
	Entries []UsageRow `json:"entries"`
}

// registerTools registers all available MCP tools.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_current_metrics",
		Description: "Get the latest host memory usage and CPU load percentages. Set include_history to also receive the rolling windows backing the live graphs.",
	}, s.handleGetCurrentMetrics)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_processes",
		Description: "Take a process census: every running process with its CPU and memory percentage, sorted by pid, cpu, mem or name and optionally filtered by a name substring.",
	}, s.handleGetProcesses)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_usage_log",
		Description: "Read back rows written by the usage logger (timestamp, CPU usage, RAM usage), newest first.",
	}, s.handleGetUsageLog)
}

func (s *Server) handleGetCurrentMetrics(ctx context.Context, _ *mcp.CallToolRequest, args MetricsArgs) (*mcp.CallToolResult, MetricsResult, error) {
	sample, ok := s.provider.Latest()
	res := MetricsResult{Available: ok}
	if ok {
		res.Timestamp = sample.Timestamp.Format(time.RFC3339)
		res.MemoryUsedPercent = sample.MemoryUsedPercent
		res.CPULoadPercent = sample.CPULoadPercent
	}
	if args.IncludeHistory {
		res.MemoryHistory, res.CPUHistory = s.provider.HistoryValues()
	}
	return nil, res, nil
}

func (s *Server) handleGetProcesses(ctx context.Context, _ *mcp.CallToolRequest, args ProcessesArgs) (*mcp.CallToolResult, ProcessesResult, error) {
	key, err := census.ParseSortKey(args.SortKey)
	if err != nil {
		return nil, ProcessesResult{}, err
	}
	limit := clampLimit(args.Limit, defaultProcessLimit, maxProcessLimit)

	records := s.provider.Processes(ctx, key, args.Filter)
	total := len(records)
	if len(records) > limit {
		records = records[:limit]
	}
	return nil, ProcessesResult{SortKey: key.String(), Total: total, Processes: records}, nil
}

func (s *Server) handleGetUsageLog(ctx context.Context, _ *mcp.CallToolRequest, args UsageLogArgs) (*mcp.CallToolResult, UsageLogResult, error) {
	limit := clampLimit(args.Limit, defaultUsageLimit, maxUsageLimit)
	entries, err := s.provider.RecentUsage(ctx, limit)
	if err != nil {
		return nil, UsageLogResult{}, fmt.Errorf("failed to read usage log: %w", err)
	}
	rows := make([]UsageRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, UsageRow{Timestamp: e.Timestamp.Format(time.RFC3339), CPU: e.CPU, RAM: e.RAM})
	}
	return nil, UsageLogResult{Entries: rows}, nil
}

func clampLimit(n, def, max int) int {
	if n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

// Start runs the MCP server over stdio until ctx is done or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting MCP server on stdio")
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Run serves over an arbitrary transport.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	return s.mcpServer.Run(ctx, t)
}
