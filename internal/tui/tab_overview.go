package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/tui/components"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const chartDays = 30

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	p := a.progress

	if !p.HasSettings {
		body := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
			Render("No goal yet. Open Settings [x] and choose Run setup.")
		return components.ContentCard("Overview", body, cw)
	}

	var b strings.Builder

	// Row 1: headline numbers
	b.WriteString(components.MetricCardRow(overviewMetrics(p, a.opts.WindowDays, a.opts.DateFormat), cw))
	b.WriteString("\n")

	// Row 2: goal bar
	inner := components.CardInnerWidth(cw)
	labelW := 9
	barW := max(10, inner-labelW-8)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var goal strings.Builder
	goal.WriteString(components.GoalBar(cli.ProgressedLabel(p.Mode), p.Percentage/100, labelW, barW))
	goal.WriteString("\n")
	daysLeft := engine.DaysDifference(p.TargetDate, p.Today)
	goal.WriteString(muted.Render(fmt.Sprintf("%s of %s  ·  target %s (%s)",
		cli.FormatMoney(p.TotalNetIncome), cli.FormatMoney(p.TotalAmount),
		cli.FormatDate(p.TargetDate, a.opts.DateFormat), describeDaysLeft(daysLeft))))
	b.WriteString(components.ContentCard(cli.FormatModeLabel(p.Mode), goal.String(), cw))
	b.WriteString("\n")

	// Row 3: daily net chart, and the running total beside today's summary
	until := model.StartOfDay(p.Today)
	since := until.AddDate(0, 0, -(chartDays - 1))
	net := pipeline.NetSeries(a.snap.Records, a.snap.Settings, since, until)
	dates := make([]time.Time, len(net))
	for i := range dates {
		dates[i] = since.AddDate(0, 0, i)
	}

	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	b.WriteString(components.ContentCard(
		fmt.Sprintf("Daily net, last %d days", chartDays),
		components.NetChart(net, chartDateLabels(dates), t.Income, t.Expense, inner, chartH),
		cw,
	))
	b.WriteString("\n")

	cumulative := pipeline.CumulativeSeries(a.snap.Records, a.snap.Settings, since, until)
	todayCard, trendCard := a.todayBody(p), ""
	if len(cumulative) > 0 {
		trendCard = components.Sparkline(cumulative, t.Chart) + "\n" +
			muted.Render(fmt.Sprintf("%s to date, %s since %s",
				cli.FormatSigned(cumulative[len(cumulative)-1]),
				cli.FormatSigned(cumulative[len(cumulative)-1]-cumulative[0]+net[0]),
				cli.FormatDate(since, a.opts.DateFormat)))
	}

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Today", todayCard, cw))
		if trendCard != "" {
			b.WriteString("\n")
			b.WriteString(components.ContentCard("Running total", trendCard, cw))
		}
		return b.String()
	}

	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Today", todayCard, halves[0]),
		components.ContentCard("Running total", trendCard, halves[1]),
	}))
	return b.String()
}

func overviewMetrics(p model.Progress, windowDays int, layout string) []components.Metric {
	return []components.Metric{
		{
			Label: cli.ProgressedLabel(p.Mode),
			Value: cli.FormatMoney(p.TotalNetIncome),
			Note:  "of " + cli.FormatMoney(p.TotalAmount),
		},
		{
			Label: "Remaining",
			Value: cli.FormatMoney(p.RemainingAmount),
			Note:  cli.FormatPercent(p.Percentage) + " done",
		},
		{
			Label:     "Estimated finish",
			Value:     cli.FormatEstimate(p, layout),
			Note:      cli.FormatSchedule(p),
			NoteColor: components.ScheduleColor(p.DaysDifference),
		},
		{
			Label: fmt.Sprintf("%d-day average", windowDays),
			Value: cli.FormatSigned(p.AvgBasicNetIncome),
			Note:  "per day, after expenses",
		},
	}
}

func describeDaysLeft(n int) string {
	switch {
	case n > 1:
		return fmt.Sprintf("%d days left", n)
	case n == 1:
		return "1 day left"
	case n == 0:
		return "today"
	case n == -1:
		return "1 day ago"
	default:
		return fmt.Sprintf("%d days ago", -n)
	}
}

// todayBody summarizes what has been recorded for the reference date.
func (a App) todayBody(p model.Progress) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)

	rec, ok := a.snap.Records[model.DateKey(p.Today)]
	var b strings.Builder
	if ok && rec.HasDailyIncome() {
		b.WriteString(label.Render("Income       ") + value.Render(cli.FormatMoney(*rec.DailyIncome)))
	} else {
		b.WriteString(warn.Render("Today's income is not recorded yet. [e] to add it."))
	}
	b.WriteString("\n")
	b.WriteString(label.Render("Extra income ") + value.Render(cli.FormatMoney(engine.DailyExtraIncome(rec))))
	b.WriteString("\n")
	b.WriteString(label.Render("Expenses     ") + value.Render(cli.FormatMoney(engine.DailyExtraExpense(rec))))
	b.WriteString("\n")
	b.WriteString(label.Render("Daily cost   ") + value.Render(cli.FormatMoney(engine.DailyExpense(a.snap.Settings.MonthlyExpense, p.Today))))
	return b.String()
}
