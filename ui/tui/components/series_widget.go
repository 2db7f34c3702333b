package components

import (
	"fmt"

	"sysmon/ui/tui/styles"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SeriesWidget plots one rolling percentage window. X spans the window
// capacity so the line scrolls left as samples arrive.
type SeriesWidget struct {
	Title    string
	Chart    linechart.Model
	Values   []float64
	Capacity int
	Width    int
	Height   int
}

func NewSeriesWidget(title string, capacity, width, height int) *SeriesWidget {
	if capacity < 2 {
		capacity = 2
	}
	// width, height, minX, maxX, minY, maxY
	lc := linechart.New(width, height, 0, float64(capacity-1), 0, 100)
	return &SeriesWidget{
		Title:    title,
		Chart:    lc,
		Capacity: capacity,
		Width:    width,
		Height:   height,
	}
}

func (c *SeriesWidget) Init() tea.Cmd {
	return nil
}

// SetValues replaces the plotted series, oldest first.
func (c *SeriesWidget) SetValues(values []float64) {
	c.Values = values
}

func (c *SeriesWidget) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return c, nil
}

func (c *SeriesWidget) Resize(w, h int) {
	c.Width = w
	c.Height = h
	c.Chart.Resize(w, h)
}

// Last is the newest value, 0 when empty.
func (c *SeriesWidget) Last() float64 {
	if len(c.Values) == 0 {
		return 0
	}
	return c.Values[len(c.Values)-1]
}

func (c *SeriesWidget) View() string {
	c.Chart.Clear()
	for i := 0; i < len(c.Values)-1; i++ {
		c.Chart.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: c.Values[i]},
			canvas.Float64Point{X: float64(i + 1), Y: c.Values[i+1]},
		)
	}
	c.Chart.DrawXYAxisAndLabel()

	return styles.CardStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%s  %.2f%%", c.Title, c.Last())),
			c.Chart.View(),
		),
	)
}
