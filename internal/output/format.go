package output

import (
	"fmt"

	"sysmon/internal/census"
	"sysmon/internal/counters"
	"sysmon/internal/engine"
)

// Section constants to avoid hardcoded strings
const (
	SectionUsage     = "usage"
	SectionProcesses = "processes"
)

// UI/view-model types (no printing here)
type Item struct {
	Key    string
	Label  string
	Value  float64
	Unit   string
	Status string
	Note   string
}

type Section struct {
	ID    string // usage/processes
	Title string
	Items []Item
}

type DashboardView struct {
	Host      string
	Timestamp string
	Sections  []Section
	// Shown is the number of process rows rendered, Total the number that matched.
	Shown int
	Total int
	Sort  census.SortKey
}

// BuildDashboard converts a payload into UI-ready sections.
func BuildDashboard(p *PipelinePayload, thresholds engine.Config) DashboardView {
	usage := Section{ID: SectionUsage, Title: "Usage"}
	for _, r := range p.Checks {
		usage.Items = append(usage.Items, Item{
			Key:    keyFor(r.Name),
			Label:  r.Name,
			Value:  r.Value,
			Unit:   "%",
			Status: r.Status,
		})
	}

	procs := Section{ID: SectionProcesses, Title: fmt.Sprintf("Processes (%s)", p.Sort.Header())}
	for _, rec := range p.Processes {
		procs.Items = append(procs.Items, Item{
			Key:    fmt.Sprintf("pid_%d", rec.PID),
			Label:  fmt.Sprintf("%d %s", rec.PID, rec.Name),
			Value:  rec.CPUPercent,
			Unit:   "%",
			Status: engine.ProcessStatus(thresholds, rec),
			Note:   fmt.Sprintf("mem %.1f%%", rec.MemPercent),
		})
	}

	return DashboardView{
		Host:      p.Host,
		Timestamp: p.Sample.Timestamp.Format("2006-01-02 15:04:05"),
		Sections:  []Section{usage, procs},
		Shown:     len(p.Processes),
		Total:     p.Total,
		Sort:      p.Sort,
	}
}

// StatusLine renders the one-line usage summary.
func StatusLine(s counters.MetricSample) string {
	return fmt.Sprintf("RAM Usage: %.2f%% | CPU Usage: %.2f%%", s.MemoryUsedPercent, s.CPULoadPercent)
}

func keyFor(name string) string {
	switch name {
	case "CPU Usage":
		return "cpu_usage"
	case "RAM Usage":
		return "ram_usage"
	}
	return name
}

func (v DashboardView) SectionByID(id string) *Section {
	for i := range v.Sections {
		if v.Sections[i].ID == id {
			return &v.Sections[i]
		}
	}
	return nil
}

func (s Section) ItemByKey(key string) *Item {
	for i := range s.Items {
		if s.Items[i].Key == key {
			return &s.Items[i]
		}
	}
	return nil
}
