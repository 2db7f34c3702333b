package state

import (
	"time"

	"sysmon/internal/census"
	"sysmon/internal/counters"
	"sysmon/internal/engine"
)

type Page int

const (
	PageMenu   Page = iota
	PageCensus      // "Process Census"
	PageGraphs      // "Resource Graphs"
)

// AppState holds what the views render. It is only touched from Update.
type AppState struct {
	Host       string
	Latest     counters.MetricSample
	HasSample  bool
	Checks     []engine.CheckResult
	LastUpdate time.Time

	Processes []census.ProcessRecord
	Sort      census.SortKey
	Filter    string
	Filtering bool
	// Hot counts census rows at or above the process warning level.
	Hot int

	Logging      bool
	LogAvailable bool

	CurrentPage Page
}
