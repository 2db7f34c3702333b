package views

import (
	"sysmon/ui/tui/state"
	"sysmon/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

type GraphsView struct{}

func (v GraphsView) Render(s state.AppState, props ViewProps) string {
	header := styles.HeaderStyle.Width(props.Width).Render("Resource Graphs")

	charts := lipgloss.JoinHorizontal(lipgloss.Top, props.MemChartView, props.CPUChartView)

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		charts,
		lipgloss.NewStyle().PaddingLeft(2).Render(RenderStatusLine(s, props.SpinnerView)),
		styles.HintStyle.Render(LogBadge(s)+" • [l] Toggle log • [b] Back • [q] Quit"),
	)
}
