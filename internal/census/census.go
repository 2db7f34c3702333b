package census

import (
	"bufio"
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// ParseTable parses enumeration output. The first line is a header. Rows
// that do not carry a numeric pid, cpu and mem plus a name are skipped.
// Names containing spaces are kept whole.
func ParseTable(raw []byte) []ProcessRecord {
	records := []ProcessRecord{}

	sc := bufio.NewScanner(bytes.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		if rec, ok := parseRow(sc.Text()); ok {
			records = append(records, rec)
		}
	}
	return records
}

func parseRow(line string) (ProcessRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return ProcessRecord{}, false
	}
	pid, err := strconv.Atoi(fields[0])
	if err != nil {
		return ProcessRecord{}, false
	}
	cpu, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return ProcessRecord{}, false
	}
	mem, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return ProcessRecord{}, false
	}
	return ProcessRecord{
		PID:        pid,
		Name:       strings.Join(fields[3:], " "),
		CPUPercent: cpu,
		MemPercent: mem,
	}, true
}

// Order sorts records in place by key. Ties keep their existing order.
func Order(records []ProcessRecord, key SortKey) {
	slices.SortStableFunc(records, compareBy(key))
}

func compareBy(key SortKey) func(a, b ProcessRecord) int {
	switch key {
	case SortPID:
		return func(a, b ProcessRecord) int { return cmp.Compare(a.PID, b.PID) }
	case SortMem:
		return func(a, b ProcessRecord) int { return cmp.Compare(b.MemPercent, a.MemPercent) }
	case SortName:
		return func(a, b ProcessRecord) int { return strings.Compare(a.Name, b.Name) }
	default:
		return func(a, b ProcessRecord) int { return cmp.Compare(b.CPUPercent, a.CPUPercent) }
	}
}

// Filter keeps records whose name contains substr (case-sensitive).
// An empty substr keeps everything.
func Filter(records []ProcessRecord, substr string) []ProcessRecord {
	if substr == "" {
		return records
	}
	out := make([]ProcessRecord, 0, len(records))
	for _, r := range records {
		if strings.Contains(r.Name, substr) {
			out = append(out, r)
		}
	}
	return out
}

// Census produces ordered, filtered process snapshots from an Enumerator.
type Census struct {
	enum   Enumerator
	logger *slog.Logger
}

// New returns a Census over enum. A nil logger discards output.
func New(enum Enumerator, logger *slog.Logger) *Census {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Census{enum: enum, logger: logger}
}

// Snapshot enumerates processes and returns them filtered and ordered by key.
// Enumeration failures yield an empty, non-nil slice.
func (c *Census) Snapshot(ctx context.Context, key SortKey, filter string) []ProcessRecord {
	raw, err := c.enumerate(ctx)
	if err != nil {
		c.logger.Debug("census skipped", "error", err)
		return []ProcessRecord{}
	}
	records := Filter(ParseTable(raw), filter)
	Order(records, key)
	return records
}

// SnapshotControls is Snapshot using the current selection in ctrl.
func (c *Census) SnapshotControls(ctx context.Context, ctrl *Controls) []ProcessRecord {
	key, filter := ctrl.Snapshot()
	return c.Snapshot(ctx, key, filter)
}

func (c *Census) enumerate(ctx context.Context) ([]byte, error) {
	if c.enum == nil {
		return nil, ErrEnumerationUnavailable
	}
	raw, err := c.enum.Enumerate(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEnumerationUnavailable, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("%w: empty output", ErrEnumerationUnavailable)
	}
	return raw, nil
}
