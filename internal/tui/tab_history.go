package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// historyState tracks the grouping and scroll position of the history tab.
type historyState struct {
	period model.Period
	offset int
	// viewH is the number of visible lines from the last render.
	viewH int
}

func (h *historyState) scroll(delta, total int) {
	h.offset += delta
	h.clamp(total)
}

func (h *historyState) clamp(total int) {
	limit := max(0, total-max(h.viewH, 1))
	h.offset = max(0, min(h.offset, limit))
}

func (a App) updateHistoryKey(key string) (tea.Model, tea.Cmd, bool) {
	total := len(a.historyLines())
	page := max(1, a.history.viewH/2)

	switch key {
	case "d":
		a.history = historyState{period: model.PeriodDay, viewH: a.history.viewH}
	case "w":
		a.history = historyState{period: model.PeriodWeek, viewH: a.history.viewH}
	case "m":
		a.history = historyState{period: model.PeriodMonth, viewH: a.history.viewH}
	case "j", "down":
		a.history.scroll(1, total)
	case "k", "up":
		a.history.scroll(-1, total)
	case "ctrl+d", "pgdown":
		a.history.scroll(page, total)
	case "ctrl+u", "pgup":
		a.history.scroll(-page, total)
	case "g", "home":
		a.history.offset = 0
	case "G", "end":
		a.history.offset = total
		a.history.clamp(total)
	default:
		return a, nil, false
	}
	return a, nil, true
}

// historyLines renders the unscrolled body for the current grouping.
func (a App) historyLines() []string {
	if a.snap == nil {
		return nil
	}
	summaries := a.snap.History(a.history.period)
	if a.history.period == model.PeriodDay {
		return dayLines(summaries)
	}
	return rollupLines(summaries, a.history.period)
}

func dayLines(days []model.PeriodSummary) []string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	in := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	out := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)

	var lines []string
	for i, d := range days {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, head.Render(cli.FormatPeriodLabel(d, model.PeriodDay))+
			muted.Render("  net ")+signedStyle(d.Net()).Render(cli.FormatSigned(d.Net())))

		if d.HasDaily {
			lines = append(lines, muted.Render("  Daily income   ")+in.Render(cli.FormatMoney(d.DailyIncome)))
		} else {
			lines = append(lines, muted.Render("  Daily income   not recorded"))
		}
		for _, e := range d.Incomes {
			lines = append(lines, muted.Render("  + ")+in.Render(fmt.Sprintf("%-12s", cli.FormatMoney(e.Amount)))+muted.Render(" "+e.Description))
		}
		for _, e := range d.Expenses {
			lines = append(lines, muted.Render("  - ")+out.Render(fmt.Sprintf("%-12s", cli.FormatMoney(e.Amount)))+muted.Render(" "+e.Description))
		}
	}
	return lines
}

func rollupLines(rows []model.PeriodSummary, period model.Period) []string {
	t := theme.Active
	head := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	labelW := 26
	format := "%-*s %5s %14s %14s %14s %14s"
	lines := []string{
		head.Render(fmt.Sprintf(format, labelW, "Period", "Days", "Income", "Extra in", "Extra out", "Net")),
	}
	for _, r := range rows {
		lines = append(lines,
			cell.Render(fmt.Sprintf("%-*s %5d %14s %14s %14s ",
				labelW, truncStr(cli.FormatPeriodLabel(r, period), labelW), r.Days,
				cli.FormatMoney(r.DailyIncome),
				cli.FormatMoney(r.ExtraIncome),
				cli.FormatMoney(r.ExtraExpense)))+
				signedStyle(r.Net()).Render(fmt.Sprintf("%14s", cli.FormatSigned(r.Net()))))
	}
	return lines
}

func signedStyle(v float64) lipgloss.Style {
	t := theme.Active
	color := t.Income
	if v < 0 {
		color = t.Expense
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface)
}

func (a App) renderHistoryTab(cw, contentH int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	active := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)

	var picker strings.Builder
	for i, p := range []struct {
		key    string
		period model.Period
	}{{"d", model.PeriodDay}, {"w", model.PeriodWeek}, {"m", model.PeriodMonth}} {
		if i > 0 {
			picker.WriteString(muted.Render("  "))
		}
		label := fmt.Sprintf("[%s] %s", p.key, p.period)
		if p.period == a.history.period {
			picker.WriteString(active.Render(label))
		} else {
			picker.WriteString(muted.Render(label))
		}
	}

	lines := a.historyLines()
	// card border, title, picker and footer take six lines
	visible := max(1, contentH-6)
	if len(lines) == 0 {
		lines = []string{muted.Render("Nothing recorded yet. Press [e] to add today's income.")}
	}

	start := min(a.history.offset, max(0, len(lines)-1))
	end := min(len(lines), start+visible)

	var body strings.Builder
	body.WriteString(picker.String())
	body.WriteString("\n\n")
	body.WriteString(strings.Join(lines[start:end], "\n"))
	body.WriteString("\n")
	body.WriteString(muted.Render(fmt.Sprintf("lines %d-%d of %d  [j/k] scroll", start+1, end, len(lines))))

	return components.ContentCard("History", body.String(), cw)
}
