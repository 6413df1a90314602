package components

import (
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab is one entry in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // index of the shortcut letter in Name, -1 if absent
}

// Tabs lists the dashboard tabs in display order.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "History", Key: 'h', KeyPos: 0},
	{Name: "Record", Key: 'e', KeyPos: 1},
	{Name: "Settings", Key: 'x', KeyPos: -1},
}

func renderTab(tab Tab, active bool) string {
	t := theme.Active
	pad := lipgloss.NewStyle().Padding(0, 1)

	if active {
		return pad.
			Foreground(t.TextPrimary).
			Background(t.SurfaceBright).
			Bold(true).
			Render(tab.Name)
	}

	name := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true).Underline(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	edge := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	var body string
	if tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name) {
		body = name.Render(tab.Name[:tab.KeyPos]) +
			key.Render(tab.Name[tab.KeyPos:tab.KeyPos+1]) +
			name.Render(tab.Name[tab.KeyPos+1:])
	} else {
		body = name.Render(tab.Name) + dim.Render("[") + key.Render(string(tab.Key)) + dim.Render("]")
	}
	return edge + body + edge
}

// TabVisualWidth is the rendered column width of a tab.
func TabVisualWidth(tab Tab, active bool) int {
	return lipgloss.Width(renderTab(tab, active))
}

// RenderTabBar renders the tabs on one line, padded to width.
func RenderTabBar(activeIdx, width int) string {
	t := theme.Active
	sep := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface).Render("│")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		parts[i] = renderTab(tab, i == activeIdx)
	}
	bar := strings.Join(parts, sep)

	brand := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render(" ◈ payoff ")
	gap := width - lipgloss.Width(bar) - lipgloss.Width(brand)
	if gap < 0 {
		return lipgloss.NewStyle().Background(t.Surface).Width(width).Render(bar)
	}
	return bar + lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap)) + brand
}

// TabIdxByKey returns the tab index bound to key, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
