package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"sysmon/internal/census"
	"sysmon/internal/collector"
	"sysmon/internal/counters"
	"sysmon/internal/engine"
	"sysmon/internal/scheduler"
	"sysmon/ui/tui/components"
	"sysmon/ui/tui/state"
	"sysmon/ui/tui/views"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Backend is the running scheduler as seen by the UI.
type Backend interface {
	Metrics() <-chan counters.MetricSample
	Census() <-chan []census.ProcessRecord
	Controls() *census.Controls
	RequestCensus()
	SetLogging(on bool)
	Logging() bool
}

// Options wires a MainModel to its data.
type Options struct {
	Backend      Backend
	History      *scheduler.History
	Thresholds   engine.Config
	Host         string
	LogAvailable bool
}

// MainModel is the Bubble Tea Model acting as the Controller
type MainModel struct {
	backend    Backend
	history    *scheduler.History
	thresholds engine.Config
	state      state.AppState

	spinner  spinner.Model
	table    table.Model
	filter   textinput.Model
	memChart components.Chart
	cpuChart components.Chart

	menuCursor int
	animCursor float64
	velocity   float64 // Physics velocity
	spring     harmonica.Spring
	mouseX     int
	mouseY     int
	quitting   bool
	width      int
	height     int
}

// tableHeaderLines is the height of the bubbles table header row.
const tableHeaderLines = 1

// Messages
type AnimateMsg time.Time
type MetricsMsg counters.MetricSample
type CensusMsg []census.ProcessRecord

func InitialModel(opts Options) MainModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	if opts.History == nil {
		opts.History = scheduler.NewHistory(0)
	}
	capacity := opts.History.CPU.Cap()

	// Initialize physics spring for smooth cursor animation
	// Increased frequency (12.0) for faster response and damping (0.9) to prevent overshoot
	spring := harmonica.NewSpring(harmonica.FPS(60), 12.0, 0.9)

	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "process name"
	ti.CharLimit = 64

	sortKey, filter := opts.Backend.Controls().Snapshot()

	t := table.New(
		table.WithColumns(columns(sortKey)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	ts := table.DefaultStyles()
	ts.Header = ts.Header.Bold(true)
	ts.Selected = ts.Selected.Foreground(lipgloss.Color("#FFF")).Background(lipgloss.Color("#f27b24"))
	t.SetStyles(ts)

	return MainModel{
		backend:    opts.Backend,
		history:    opts.History,
		thresholds: opts.Thresholds,
		spinner:    s,
		table:      t,
		filter:     ti,
		memChart:   components.NewSeriesWidget("Memory Used", capacity, 30, 10),
		cpuChart:   components.NewSeriesWidget("CPU Load", capacity, 30, 10),
		spring:     spring,
		state: state.AppState{
			Host:         opts.Host,
			Sort:         sortKey,
			Filter:       filter,
			Logging:      opts.Backend.Logging(),
			LogAvailable: opts.LogAvailable,
			CurrentPage:  state.PageMenu,
		},
	}
}

func columns(active census.SortKey) []table.Column {
	widths := map[census.SortKey]int{
		census.SortPID:  8,
		census.SortCPU:  8,
		census.SortMem:  8,
		census.SortName: 32,
	}
	cols := make([]table.Column, 0, len(census.SortKeys))
	for _, k := range census.SortKeys {
		title := k.Header()
		if k == active {
			title += " ▼"
		}
		cols = append(cols, table.Column{Title: title, Width: widths[k]})
	}
	return cols
}

func (m *MainModel) Init() tea.Cmd {
	zone.NewGlobal()
	return tea.Batch(
		m.spinner.Tick,
		animateCmd(),
		waitForMetrics(m.backend.Metrics()),
		waitForCensus(m.backend.Census()),
	)
}

// Commands
func animateCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*16, func(t time.Time) tea.Msg {
		return AnimateMsg(t)
	})
}

func waitForMetrics(ch <-chan counters.MetricSample) tea.Cmd {
	return func() tea.Msg {
		return MetricsMsg(<-ch)
	}
}

func waitForCensus(ch <-chan []census.ProcessRecord) tea.Cmd {
	return func() tea.Msg {
		return CensusMsg(<-ch)
	}
}

func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case AnimateMsg:
		return m.handleAnimateMsg(msg)

	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)

	case MetricsMsg:
		return m.handleMetricsMsg(msg)

	case CensusMsg:
		return m.handleCensusMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	return m, nil
}

func (m *MainModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}
	if m.state.Filtering {
		return m.handleFilterKey(msg)
	}
	if msg.String() == "q" {
		m.quitting = true
		return m, tea.Quit
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		switch msg.String() {
		case "up", "k":
			if m.menuCursor > 0 {
				m.menuCursor--
			}
		case "down", "j":
			if m.menuCursor < views.MenuItemCount-1 {
				m.menuCursor++
			}
		case "enter":
			m.navigateTo(m.menuCursor)
		}
		return m, nil

	case state.PageCensus:
		if key, ok := sortKeyFor(msg.String()); ok {
			m.setSort(key)
			return m, nil
		}
		switch msg.String() {
		case "/":
			m.state.Filtering = true
			return m, m.filter.Focus()
		case "up", "down", "k", "j", "pgup", "pgdown", "home", "end":
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case state.PageGraphs:
		if msg.String() == "l" {
			m.toggleLogging()
			return m, nil
		}
	}

	if msg.String() == "b" || msg.String() == "esc" || msg.String() == "backspace" {
		m.state.CurrentPage = state.PageMenu
		return m, nil
	}

	return m, nil
}

// handleFilterKey edits the census filter. The controls hold the text; the
// input only renders it.
func (m *MainModel) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.backend.Controls()
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.state.Filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyBackspace:
		ctrl.Backspace()
	case tea.KeyRunes, tea.KeySpace:
		ctrl.AppendFilter(string(msg.Runes))
	default:
		return m, nil
	}
	m.state.Filter = ctrl.Filter()
	m.filter.SetValue(m.state.Filter)
	m.filter.CursorEnd()
	m.backend.RequestCensus()
	return m, nil
}

func sortKeyFor(key string) (census.SortKey, bool) {
	switch key {
	case "1", "p":
		return census.SortPID, true
	case "2", "c":
		return census.SortCPU, true
	case "3", "m":
		return census.SortMem, true
	case "4", "n":
		return census.SortName, true
	}
	return 0, false
}

func (m *MainModel) setSort(key census.SortKey) {
	m.backend.Controls().SetSort(key)
	m.state.Sort = key
	m.table.SetColumns(columns(key))
	m.backend.RequestCensus()
}

func (m *MainModel) toggleLogging() {
	if !m.state.LogAvailable {
		return
	}
	m.backend.SetLogging(!m.backend.Logging())
	m.state.Logging = m.backend.Logging()
}

func (m *MainModel) navigateTo(cursor int) {
	switch cursor {
	case views.MenuCensus:
		m.state.CurrentPage = state.PageCensus
		m.backend.RequestCensus()
	case views.MenuGraphs:
		m.state.CurrentPage = state.PageGraphs
	case views.MenuUsageLog:
		m.toggleLogging()
	}
}

func (m *MainModel) handleAnimateMsg(msg AnimateMsg) (tea.Model, tea.Cmd) {
	var v float64 = m.velocity
	m.animCursor, v = m.spring.Update(m.animCursor, float64(m.menuCursor), v)
	m.velocity = v
	return m, animateCmd()
}

func (m *MainModel) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	newW := msg.Width/2 - 8
	if newW > 10 {
		h := msg.Height - 14
		if h < 5 {
			h = 5
		}
		m.memChart.Resize(newW, h)
		m.cpuChart.Resize(newW, h)
	}
	// Rows beyond the visible height scroll instead of being drawn.
	rows := msg.Height - views.CensusChrome
	if rows < 3 {
		rows = 3
	}
	// SetHeight counts the header line; Height reports data rows only.
	m.table.SetHeight(rows + tableHeaderLines)
	return m, nil
}

func (m *MainModel) handleMetricsMsg(msg MetricsMsg) (tea.Model, tea.Cmd) {
	sample := counters.MetricSample(msg)
	m.history.Record(sample)

	m.state.Latest = sample
	m.state.HasSample = true
	m.state.Checks = engine.Evaluate(m.thresholds, sample)
	m.state.LastUpdate = sample.Timestamp
	m.state.Logging = m.backend.Logging()

	m.memChart.SetValues(m.history.Memory.Values())
	m.cpuChart.SetValues(m.history.CPU.Values())

	return m, waitForMetrics(m.backend.Metrics())
}

func (m *MainModel) handleCensusMsg(msg CensusMsg) (tea.Model, tea.Cmd) {
	records := []census.ProcessRecord(msg)
	m.state.Processes = records

	hot := 0
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		if engine.ProcessStatus(m.thresholds, r) != engine.StatusHealthy {
			hot++
		}
		rows = append(rows, table.Row{
			strconv.Itoa(r.PID),
			fmt.Sprintf("%.1f", r.CPUPercent),
			fmt.Sprintf("%.1f", r.MemPercent),
			r.Name,
		})
	}
	m.state.Hot = hot
	m.table.SetRows(rows)
	if n := len(rows); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}

	return m, waitForCensus(m.backend.Census())
}

func (m *MainModel) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.mouseX = msg.X
	m.mouseY = msg.Y

	if msg.Action != tea.MouseActionRelease {
		return m, nil
	}

	switch m.state.CurrentPage {
	case state.PageMenu:
		for i := 0; i < views.MenuItemCount; i++ {
			if zone.Get(views.MenuZoneID(i)).InBounds(msg) {
				m.menuCursor = i
				m.navigateTo(i)
				return m, nil
			}
		}
	case state.PageCensus:
		for _, key := range census.SortKeys {
			if zone.Get(views.SortZoneID(key)).InBounds(msg) {
				m.setSort(key)
				return m, nil
			}
		}
	}
	return m, nil
}

func (m *MainModel) props() views.ViewProps {
	return views.ViewProps{
		Width:        m.width,
		Height:       m.height,
		MouseX:       m.mouseX,
		MouseY:       m.mouseY,
		MenuCursor:   m.menuCursor,
		AnimCursor:   m.animCursor,
		SpinnerView:  m.spinner.View(),
		TableView:    m.table.View(),
		FilterView:   m.filter.View(),
		MemChartView: m.memChart.View(),
		CPUChartView: m.cpuChart.View(),
	}
}

func (m *MainModel) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	switch m.state.CurrentPage {
	case state.PageCensus:
		return views.RenderCensus(m.state, m.props())
	case state.PageGraphs:
		return views.RenderGraphs(m.state, m.props())
	default:
		return views.RenderMenu(m.state, m.props())
	}
}

// Start runs the TUI against a monitor until the user quits.
func Start(ctx context.Context, mon *collector.Monitor) error {
	opts := Options{
		Backend:      mon.Scheduler,
		History:      mon.History,
		Thresholds:   mon.Config.Thresholds,
		LogAvailable: mon.HasUsageLog(),
	}
	if info, err := mon.Host.Info(ctx); err == nil {
		opts.Host = info.Banner()
	}

	m := InitialModel(opts)
	p := tea.NewProgram(
		&m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
