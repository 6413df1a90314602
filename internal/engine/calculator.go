// Package engine turns settings and a day-indexed ledger into progress metrics.
// Every function is pure; the reference date is always passed in.
package engine

import (
	"math"
	"time"

	"github.com/theirongolddev/payoff/internal/model"
)

// DefaultWindowDays is the trailing window used for the average when none is given.
const DefaultWindowDays = 7

// fallbackMonthDays approximates a month when no daily income has been logged.
// Per-day amortization uses the real month length; this one stays fixed.
const fallbackMonthDays = 30

// Options carries the explicit defaults for one computation pass.
type Options struct {
	WindowDays int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{WindowDays: DefaultWindowDays}
}

func (o Options) windowDays() int {
	if o.WindowDays <= 0 {
		return DefaultWindowDays
	}
	return o.WindowDays
}

// DaysInMonth returns the number of days (28-31) in date's calendar month.
func DaysInMonth(date time.Time) int {
	// Day 0 of the next month normalizes to the last day of this one.
	return time.Date(date.Year(), date.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DailyExpense amortizes monthlyExpense across date's month.
func DailyExpense(monthlyExpense float64, date time.Time) float64 {
	if monthlyExpense <= 0 {
		return 0
	}
	return monthlyExpense / float64(DaysInMonth(date))
}

// DailyBasicNetIncome is income minus amortized expense only. Ad-hoc
// entries are left out so the trailing average tracks the baseline rate.
func DailyBasicNetIncome(dailyIncome, monthlyExpense float64, date time.Time) float64 {
	return dailyIncome - DailyExpense(monthlyExpense, date)
}

// DailyTotalNetIncome includes every cash flow recorded for the day.
func DailyTotalNetIncome(rec model.DayRecord, monthlyExpense float64, date time.Time) float64 {
	net := 0.0
	if rec.DailyIncome != nil {
		net += *rec.DailyIncome
	}
	net += DailyExtraIncome(rec)
	net -= DailyExtraExpense(rec)
	return net - DailyExpense(monthlyExpense, date)
}

// DailyExtraIncome sums the day's ad-hoc income entries.
func DailyExtraIncome(rec model.DayRecord) float64 {
	sum := 0.0
	for _, e := range rec.ExtraIncomes {
		sum += e.Amount
	}
	return sum
}

// DailyExtraExpense sums the day's ad-hoc expense entries.
func DailyExtraExpense(rec model.DayRecord) float64 {
	sum := 0.0
	for _, e := range rec.ExtraExpenses {
		sum += e.Amount
	}
	return sum
}

// AverageBasicNetIncome averages basic net income over the trailing
// windowDays ending today (inclusive). Only days with an explicit daily
// income count toward the divisor. With no such day it falls back to
// DailyIncome - MonthlyExpense/30.
func AverageBasicNetIncome(records model.Records, settings *model.Settings, today time.Time, windowDays int) float64 {
	if settings == nil || records == nil {
		return 0
	}
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	end := model.StartOfDay(today)
	total := 0.0
	counted := 0
	for i := windowDays - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)
		rec, ok := records[model.DateKey(day)]
		if !ok || rec.DailyIncome == nil {
			continue
		}
		total += DailyBasicNetIncome(*rec.DailyIncome, settings.MonthlyExpense, day)
		counted++
	}

	if counted > 0 {
		return total / float64(counted)
	}
	return settings.DailyIncome - settings.MonthlyExpense/fallbackMonthDays
}

// TotalNetIncome accumulates DailyTotalNetIncome over the full history.
// Keys that are not valid dates are ignored.
func TotalNetIncome(records model.Records, settings *model.Settings) float64 {
	if settings == nil || records == nil {
		return 0
	}
	total := 0.0
	for key, rec := range records {
		date, err := model.ParseDateKey(key)
		if err != nil {
			continue
		}
		total += DailyTotalNetIncome(rec, settings.MonthlyExpense, date)
	}
	return total
}

// RemainingAmount is what is left to pay off or save, never negative.
func RemainingAmount(totalAmount, totalNetIncome float64, mode model.Mode) float64 {
	if totalAmount <= 0 {
		return 0
	}
	remaining := totalAmount - totalNetIncome
	// A met savings goal is exactly zero, independent of the general clamp below.
	if mode == model.ModeSaving && remaining < 0 {
		return 0
	}
	return math.Max(remaining, 0)
}

// EstimatedDate projects when the remaining amount reaches zero at the
// average rate. The boolean is false when no finite date exists because
// the average is zero or negative.
func EstimatedDate(remainingAmount, avgBasicNetIncome float64, today time.Time) (time.Time, bool) {
	start := model.StartOfDay(today)
	if remainingAmount <= 0 {
		return start, true
	}
	if avgBasicNetIncome <= 0 {
		return time.Time{}, false
	}
	days := int(math.Ceil(remainingAmount / avgBasicNetIncome))
	return start.AddDate(0, 0, days), true
}

// DaysDifference is estimated minus target in whole days. Positive means
// behind schedule, negative ahead. Zero if either date is unset.
func DaysDifference(estimated, target time.Time) int {
	if estimated.IsZero() || target.IsZero() {
		return 0
	}
	diff := model.StartOfDay(estimated).Sub(model.StartOfDay(target))
	return int(math.Round(diff.Hours() / 24))
}

// ProgressPercentage returns progress in [0, 100].
func ProgressPercentage(totalAmount, totalNetIncome float64, mode model.Mode) float64 {
	if totalAmount <= 0 {
		return 0
	}
	if mode == model.ModeSaving && totalNetIncome >= totalAmount {
		return 100
	}
	pct := totalNetIncome / totalAmount * 100
	return math.Min(math.Max(pct, 0), 100)
}

// WeekStart returns local midnight of the Monday on or before date.
func WeekStart(date time.Time) time.Time {
	d := model.StartOfDay(date)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

// MonthStart returns local midnight on the first of date's month.
func MonthStart(date time.Time) time.Time {
	d := model.StartOfDay(date)
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.Local)
}

// Compute runs one full pass over a consistent snapshot.
func Compute(settings *model.Settings, records model.Records, mode model.Mode, today time.Time, opts Options) model.Progress {
	p := model.Progress{
		Mode:  mode,
		Today: model.StartOfDay(today),
	}
	if settings == nil {
		return p
	}
	p.HasSettings = true
	p.TotalAmount = settings.TotalAmount
	p.TargetDate = settings.TargetDate

	p.TotalNetIncome = TotalNetIncome(records, settings)
	p.AvgBasicNetIncome = AverageBasicNetIncome(records, settings, today, opts.windowDays())
	p.RemainingAmount = RemainingAmount(settings.TotalAmount, p.TotalNetIncome, mode)
	p.Percentage = ProgressPercentage(settings.TotalAmount, p.TotalNetIncome, mode)

	p.EstimatedDate, p.Determinable = EstimatedDate(p.RemainingAmount, p.AvgBasicNetIncome, today)
	if p.Determinable {
		p.DaysDifference = DaysDifference(p.EstimatedDate, settings.TargetDate)
	}
	return p
}
