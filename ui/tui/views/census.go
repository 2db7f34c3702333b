package views

import (
	"fmt"

	"sysmon/internal/census"
	"sysmon/ui/tui/state"
	"sysmon/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// SortZoneID names the clickable header for key.
func SortZoneID(key census.SortKey) string {
	return fmt.Sprintf("sort_%d", key)
}

// CensusChrome is the number of lines the census page draws around the table.
const CensusChrome = 13

type CensusView struct{}

func (v CensusView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("Process Census")

	var buttons []string
	for i, key := range census.SortKeys {
		style := styles.SortButtonStyle
		label := fmt.Sprintf("%d %s", i+1, key.Header())
		if key == s.Sort {
			style = styles.ActiveSortButtonStyle
			label += " ▼"
		}
		buttons = append(buttons, zone.Mark(SortZoneID(key), style.Render(label)))
	}
	sortBar := lipgloss.NewStyle().PaddingLeft(2).Render(
		lipgloss.JoinHorizontal(lipgloss.Top, buttons...))

	filterLine := props.FilterView
	if !s.Filtering {
		if s.Filter == "" {
			filterLine = lipgloss.NewStyle().Foreground(lipgloss.Color("#666")).Render("no filter • press / to search")
		} else {
			filterLine = fmt.Sprintf("filter: %q", s.Filter)
		}
	}

	summary := fmt.Sprintf("%d processes", len(s.Processes))
	if s.Hot > 0 {
		summary += " • " + ColorForStatus("WARN").Render(fmt.Sprintf("%d busy", s.Hot))
	}

	hints := "[1-4/p c m n] Sort • [/] Filter • [↑/↓] Scroll • [b] Back • [q] Quit"
	if s.Filtering {
		hints = "Type to filter • [Backspace] Delete • [Enter/Esc] Done"
	}

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left,
		header,
		sortBar,
		lipgloss.NewStyle().PaddingLeft(2).Render(filterLine+"   "+summary),
		lipgloss.NewStyle().Padding(1, 2, 0).Render(props.TableView),
		lipgloss.NewStyle().Padding(1, 2, 0).Render(RenderStatusLine(s, props.SpinnerView)),
		styles.HintStyle.Render(hints),
	))
}
