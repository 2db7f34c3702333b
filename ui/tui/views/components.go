package views

import (
	"fmt"

	"sysmon/internal/output"
	"sysmon/ui/tui/state"
	"sysmon/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func ColorForStatus(status string) lipgloss.Style {
	sStyle := styles.StatusStyle
	if status == "WARN" {
		return sStyle.Foreground(lipgloss.Color("220")) // Gold
	} else if status == "CRIT" {
		return sStyle.Foreground(lipgloss.Color("196")) // Red
	}
	return sStyle.Foreground(lipgloss.Color("46")) // Green
}

// RenderStatusLine is the "RAM Usage | CPU Usage" line, coloured by the worst check.
func RenderStatusLine(s state.AppState, spinnerView string) string {
	if !s.HasSample {
		return fmt.Sprintf("%s waiting for the first sample...", spinnerView)
	}
	worst := "OK"
	for _, c := range s.Checks {
		if c.Status == "CRIT" {
			worst = "CRIT"
			break
		}
		if c.Status == "WARN" {
			worst = "WARN"
		}
	}
	return ColorForStatus(worst).Render(output.StatusLine(s.Latest)) +
		lipgloss.NewStyle().Foreground(lipgloss.Color("#666")).Render(
			fmt.Sprintf("  @ %s", s.LastUpdate.Format("15:04:05")))
}

// LogBadge describes the usage log toggle.
func LogBadge(s state.AppState) string {
	switch {
	case !s.LogAvailable:
		return "Usage Log: unavailable"
	case s.Logging:
		return "Usage Log: ON"
	default:
		return "Usage Log: OFF"
	}
}
