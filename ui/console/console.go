package console

import (
	"fmt"
	"io"
	"strings"

	"sysmon/internal/engine"
	"sysmon/internal/output"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// Palette switches ANSI colouring on or off.
type Palette struct {
	Enabled bool
}

func (p Palette) wrap(color, s string) string {
	if !p.Enabled {
		return s
	}
	return color + s + colorReset
}

// Print renders the snapshot view to the writer in a compact format.
func Print(w io.Writer, view output.DashboardView, pal Palette) {
	title := "SYSMON SNAPSHOT"
	if view.Host != "" {
		title += " " + view.Host
	}
	fmt.Fprintf(w, "%s %s\n", pal.wrap(colorCyan, "■ "+title), view.Timestamp)

	for _, sec := range view.Sections {
		// Section Header
		fmt.Fprintln(w, pal.wrap(colorCyan, "─ "+sec.Title))

		for _, it := range sec.Items {
			// Compact Label (max 20 chars)
			label := it.Label
			if len(label) > 20 {
				label = label[:17] + "..."
			}

			valStr := fmt.Sprintf("%.1f%s", it.Value, it.Unit)
			dots := strings.Repeat("·", 22-len(label))

			// Format: "  Label............... Value Marker Note"
			line := fmt.Sprintf("  %s%s %8s%s", label, pal.wrap(colorCyan, dots), valStr, marker(it.Status, pal))
			if it.Note != "" {
				line += "  " + it.Note
			}
			fmt.Fprintln(w, line)
		}
	}

	// Single-line Summary
	fmt.Fprintf(w, "%s: %d of %d processes shown, sorted by %s\n\n",
		pal.wrap(colorCyan, "─ Summary"), view.Shown, view.Total, view.Sort)
}

func marker(status string, pal Palette) string {
	switch status {
	case "":
		return ""
	case engine.StatusWarning:
		return " " + pal.wrap(colorFor(status), "!")
	case engine.StatusCritical:
		return " " + pal.wrap(colorFor(status), "X")
	default:
		return " " + pal.wrap(colorFor(status), "✓")
	}
}

func colorFor(status string) string {
	switch status {
	case engine.StatusWarning:
		return colorYellow
	case engine.StatusCritical:
		return colorRed
	default:
		return colorGreen
	}
}
