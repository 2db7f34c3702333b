package components

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Component is the interface that all UI components must implement.
// It is similar to tea.Model but tailored for widgets.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (tea.Model, tea.Cmd)
	View() string
}

// Chart is a component redrawn from a whole series on every update.
type Chart interface {
	Component
	SetValues(values []float64)
	Resize(w, h int)
	Last() float64
}

var _ Chart = (*SeriesWidget)(nil)
