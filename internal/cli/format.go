// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/theirongolddev/payoff/internal/model"
)

// Money formats currency amounts with locale-aware digit grouping.
type Money struct {
	Symbol  string
	printer *message.Printer
}

// NewMoney returns a formatter for symbol using locale's grouping rules.
// An unparseable locale falls back to English.
func NewMoney(symbol, locale string) Money {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Money{Symbol: symbol, printer: message.NewPrinter(tag)}
}

// Format renders v with two decimals, e.g. 1234.5 -> "$1,234.50".
func (m Money) Format(v float64) string {
	v = roundCents(v)
	if v < 0 {
		return "-" + m.Symbol + m.printer.Sprintf("%.2f", -v)
	}
	return m.Symbol + m.printer.Sprintf("%.2f", v)
}

// Signed renders v with an explicit sign, e.g. "+$50.00" or "-$12.00".
func (m Money) Signed(v float64) string {
	if roundCents(v) >= 0 {
		return "+" + m.Format(v)
	}
	return m.Format(v)
}

func roundCents(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

var currency = NewMoney("$", "en")

// SetCurrency changes the formatter used by FormatMoney and FormatSigned.
func SetCurrency(symbol, locale string) {
	currency = NewMoney(symbol, locale)
}

// FormatMoney formats an amount with the configured currency.
func FormatMoney(v float64) string {
	return currency.Format(v)
}

// FormatSigned formats an amount with an explicit sign.
func FormatSigned(v float64) string {
	return currency.Signed(v)
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

// FormatDate formats t with layout, or "-" for the zero time.
func FormatDate(t time.Time, layout string) string {
	if t.IsZero() {
		return "-"
	}
	if layout == "" {
		layout = model.DateLayout
	}
	return t.Format(layout)
}

// FormatEstimate renders the projected completion date of p.
func FormatEstimate(p model.Progress, layout string) string {
	if !p.HasSettings {
		return "-"
	}
	if !p.Determinable {
		return "cannot be determined"
	}
	return FormatDate(p.EstimatedDate, layout)
}

// FormatSchedule describes how the estimate compares to the target date.
// e.g., 3 -> "3 days behind", -1 -> "1 day ahead", 0 -> "on schedule"
func FormatSchedule(p model.Progress) string {
	if !p.HasSettings || !p.Determinable {
		return "-"
	}
	d := p.DaysDifference
	switch {
	case d > 0:
		return pluralDays(d) + " behind"
	case d < 0:
		return pluralDays(-d) + " ahead"
	default:
		return "on schedule"
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// FormatModeLabel returns the user-facing name of a mode.
func FormatModeLabel(m model.Mode) string {
	if m == model.ModeSaving {
		return "Savings goal"
	}
	return "Debt payoff"
}

// ProgressedLabel names the "amount so far" figure for m.
func ProgressedLabel(m model.Mode) string {
	if m == model.ModeSaving {
		return "Saved"
	}
	return "Paid off"
}

// FormatDayOfWeek returns a 3-letter day abbreviation.
func FormatDayOfWeek(d time.Weekday) string {
	return d.String()[:3]
}

// FormatPeriodLabel renders the heading for a history row.
func FormatPeriodLabel(ps model.PeriodSummary, period model.Period) string {
	switch period {
	case model.PeriodWeek:
		return ps.Start.Format("Jan 2") + " - " + ps.End.Format("Jan 2, 2006")
	case model.PeriodMonth:
		return ps.Start.Format("January 2006")
	default:
		return ps.Start.Format(model.DateLayout) + " " + FormatDayOfWeek(ps.Start.Weekday())
	}
}
