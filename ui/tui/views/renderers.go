package views

import (
	"sysmon/ui/tui/state"
)

func RenderMenu(s state.AppState, props ViewProps) string {
	return MenuView{}.Render(s, props)
}

func RenderCensus(s state.AppState, props ViewProps) string {
	return CensusView{}.Render(s, props)
}

func RenderGraphs(s state.AppState, props ViewProps) string {
	return GraphsView{}.Render(s, props)
}
