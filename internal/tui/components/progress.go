package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

func clamp01(pct float64) float64 {
	return max(0, min(pct, 1))
}

// ProgressBar renders a block bar for pct in [0,1] followed by the percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct * float64(width))

	color := ColorForProgress(pct)
	filledStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.1f%%", pct*100))
}

// ColorForProgress moves from accent toward the income color as the goal nears.
func ColorForProgress(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 1:
		return t.Income
	case pct >= 0.5:
		return t.AccentBright
	default:
		return t.Accent
	}
}

// ScheduleColor colors a days-difference: behind is red, ahead green.
func ScheduleColor(daysDiff int) lipgloss.Color {
	t := theme.Active
	switch {
	case daysDiff > 0:
		return t.Expense
	case daysDiff < 0:
		return t.Income
	default:
		return t.TextMuted
	}
}

// GoalBar renders a labeled gradient bar, used for the goal and for the
// elapsed share of the time budget.
func GoalBar(label string, pct float64, labelW, barWidth int) string {
	t := theme.Active
	pct = clamp01(pct)

	bar := progress.New(
		progress.WithGradient(string(t.Accent), string(ColorForProgress(pct))),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(ColorForProgress(pct)).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space + bar.ViewAs(pct) + space +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct*100))
}
