package model

import "time"

// Progress holds every derived metric for one computation pass.
type Progress struct {
	HasSettings bool
	Mode        Mode
	Today       time.Time

	TotalAmount       float64
	TargetDate        time.Time
	TotalNetIncome    float64
	AvgBasicNetIncome float64
	RemainingAmount   float64
	Percentage        float64

	// EstimatedDate is only meaningful when Determinable is true.
	EstimatedDate  time.Time
	Determinable   bool
	DaysDifference int
}

// Period groups history by calendar unit.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

// ParsePeriod returns the named period, defaulting to PeriodDay.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodWeek:
		return PeriodWeek
	case PeriodMonth:
		return PeriodMonth
	default:
		return PeriodDay
	}
}

// PeriodSummary rolls up one day, week or month of records.
type PeriodSummary struct {
	Start        time.Time
	End          time.Time // inclusive last day
	Days         int       // days in the period that have any record
	DailyIncome  float64
	ExtraIncome  float64
	ExtraExpense float64

	// Entries is only populated for PeriodDay.
	Incomes  []Entry
	Expenses []Entry
	HasDaily bool
}

// Net is income minus ad-hoc expense, excluding amortized expense,
// matching how the history views total a period.
func (p PeriodSummary) Net() float64 {
	return p.DailyIncome + p.ExtraIncome - p.ExtraExpense
}
