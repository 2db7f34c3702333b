package output

import (
	"context"
	"time"

	"sysmon/internal/census"
	"sysmon/internal/counters"
	"sysmon/internal/engine"
)

// PipelinePayload is one point-in-time view of the host, ready for printing.
type PipelinePayload struct {
	Host      string
	Sample    counters.MetricSample
	Checks    []engine.CheckResult
	Sort      census.SortKey
	Processes []census.ProcessRecord
	// Total counts matching processes before Limit was applied.
	Total int
}

// DataSampler takes metric samples.
type DataSampler interface {
	Sample(ctx context.Context) counters.MetricSample
}

// ProcessLister takes a sorted, filtered census.
type ProcessLister interface {
	Snapshot(ctx context.Context, key census.SortKey, filter string) []census.ProcessRecord
}

// HostNamer returns the banner shown above a snapshot.
type HostNamer func(ctx context.Context) string

// Request selects what a one-shot snapshot contains.
type Request struct {
	Sort   census.SortKey
	Filter string
	Limit  int // 0 = no limit
	// Settle is the gap between the priming and the measured CPU read. The
	// first load reading after start is always 0, so a one-shot needs two.
	Settle time.Duration
}

// RunPipeline executes the one-shot pipeline: Prime -> Sample -> Census -> Flag -> Bundle.
func RunPipeline(
	ctx context.Context,
	smp DataSampler,
	procs ProcessLister,
	host HostNamer,
	thresholds engine.Config,
	req Request,
) (*PipelinePayload, error) {
	// 1. Prime the counter state
	smp.Sample(ctx)

	// 2. Wait for a measurable delta
	if req.Settle > 0 {
		t := time.NewTimer(req.Settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	sample := smp.Sample(ctx)

	// 3. Census
	records := procs.Snapshot(ctx, req.Sort, req.Filter)
	total := len(records)
	if req.Limit > 0 && len(records) > req.Limit {
		records = records[:req.Limit]
	}

	// 4. Flag and bundle
	p := &PipelinePayload{
		Sample:    sample,
		Checks:    engine.Evaluate(thresholds, sample),
		Sort:      req.Sort,
		Processes: records,
		Total:     total,
	}
	if host != nil {
		p.Host = host(ctx)
	}
	return p, nil
}
