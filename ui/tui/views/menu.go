package views

import (
	"fmt"
	"math"

	"sysmon/ui/tui/state"
	"sysmon/ui/tui/styles"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
)

// Menu entries, in cursor order.
const (
	MenuCensus = iota
	MenuGraphs
	MenuUsageLog
	MenuItemCount
)

// MenuZoneID names the clickable zone of menu entry i.
func MenuZoneID(i int) string {
	return fmt.Sprintf("menu_%d", i)
}

type MenuView struct{}

func (v MenuView) Render(s state.AppState, props ViewProps) string {
	// 1. Header
	title := "SYSMON // LIVE HOST MONITOR"
	if s.Host != "" {
		title += "  " + s.Host
	}
	header := styles.HeaderStyle.Width(props.Width).Render(title)

	// 2. Menu Items
	options := [MenuItemCount]string{
		MenuCensus:   "Process Census",
		MenuGraphs:   "Resource Graphs",
		MenuUsageLog: LogBadge(s),
	}

	details := [MenuItemCount]string{
		MenuCensus:   "sortable, filterable process table",
		MenuGraphs:   "rolling memory and CPU line charts",
		MenuUsageLog: "append timestamped usage rows",
	}

	var menuItems []string
	listStartY := 6

	for i, option := range options {
		// Animation Logic
		dist := math.Abs(float64(i) - props.AnimCursor)
		selectionStrength := 0.0
		if dist < 1.0 {
			selectionStrength = 1.0 - dist
		}

		// Mouse Gradient Logic
		itemCenterY := listStartY + (i * 3) + 1
		mouseDistY := math.Abs(float64(props.MouseY - itemCenterY))

		borderColor := styles.BaseColor
		if mouseDistY < 10 {
			ratio := 1.0 - (mouseDistY / 10.0)
			if ratio > 0.5 {
				borderColor = lipgloss.Color("#aaa")
			}
		}

		if selectionStrength > 0.1 || i == props.MenuCursor {
			borderColor = styles.BrandColor
		}

		// Style & Render
		popOut := int(selectionStrength * 2)

		boxStyle := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1).
			MarginLeft(2 + popOut).
			Width(40)

		if i == props.MenuCursor {
			boxStyle = boxStyle.Bold(true).Foreground(lipgloss.Color("#FFF"))
		} else {
			boxStyle = boxStyle.Foreground(lipgloss.Color("#AAA"))
		}

		text := fmt.Sprintf("%02d. %s", i+1, option)
		if i == props.MenuCursor {
			text += "\n    " + DetailStyle.Render(details[i])
		}
		menuItems = append(menuItems, zone.Mark(MenuZoneID(i), boxStyle.Render(text)))
	}

	// 3. Construct Menu Box
	menuList := lipgloss.JoinVertical(lipgloss.Left, menuItems...)

	menuContent := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().Bold(true).PaddingLeft(2).Foreground(styles.BrandColor).Render("MONITOR VIEWS"),
		CopyStyle.Render("Pick a view. Sampling keeps running in the background."),
		menuList,
	)

	menuBox := MenuBoxStyle.Render(menuContent)

	// 4. Footer
	footer := lipgloss.JoinVertical(lipgloss.Left,
		RenderStatusLine(s, props.SpinnerView),
		lipgloss.NewStyle().Foreground(lipgloss.Color("#333")).Render("\n[↑/↓] Navigate • [Enter] Select • [Q] Quit"),
	)

	body := lipgloss.JoinVertical(lipgloss.Left,
		menuBox,
		lipgloss.NewStyle().PaddingLeft(2).Render(footer),
	)

	return zone.Scan(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

var (
	MenuBoxStyle = lipgloss.NewStyle().
			Padding(1, 0).
			MarginTop(1)

	DetailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true)

	CopyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888")).
			Italic(true).
			MarginBottom(1).
			PaddingLeft(2)
)
