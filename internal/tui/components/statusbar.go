package components

import (
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Status is what the bottom bar reports.
type Status struct {
	Mode        string
	Today       string
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	Flash       string
	FlashErr    bool
}

// RenderStatusBar renders the bottom bar at exactly width columns.
func RenderStatusBar(width int, st Status) string {
	t := theme.Active
	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	left := base.Render(" [?]help [r]efresh [q]uit")
	if st.Flash != "" {
		color := t.Income
		if st.FlashErr {
			color = t.Expense
		}
		left += base.Render("  ") + lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(st.Flash)
	}

	right := ""
	if st.Mode != "" {
		right += accent.Render(st.Mode) + base.Render(" · ")
	}
	if st.Today != "" {
		right += base.Render(st.Today + " · ")
	}
	switch {
	case st.Refreshing:
		right += accent.Render("refreshing")
	case st.AutoRefresh:
		right += base.Render("auto " + st.DataAge)
	default:
		right += base.Render(st.DataAge)
	}
	right += base.Render(" ")

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		return lipgloss.NewStyle().Background(t.Surface).MaxWidth(width).Width(width).Render(left)
	}
	return left + base.Render(strings.Repeat(" ", gap)) + right
}

