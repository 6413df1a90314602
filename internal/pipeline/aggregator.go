package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
)

// Aggregate dispatches to the rollup for period.
func Aggregate(records model.Records, period model.Period) []model.PeriodSummary {
	switch period {
	case model.PeriodWeek:
		return AggregateWeeks(records)
	case model.PeriodMonth:
		return AggregateMonths(records)
	default:
		return AggregateDays(records)
	}
}

// AggregateDays returns one summary per recorded day, most recent first,
// carrying the individual entries.
func AggregateDays(records model.Records) []model.PeriodSummary {
	out := make([]model.PeriodSummary, 0, len(records))
	for key, rec := range records {
		day, err := model.ParseDateKey(key)
		if err != nil {
			continue
		}
		ps := model.PeriodSummary{Start: day, End: day, Days: 1}
		addRecord(&ps, rec)
		ps.Incomes = rec.ExtraIncomes
		ps.Expenses = rec.ExtraExpenses
		out = append(out, ps)
	}
	sortNewestFirst(out)
	return out
}

// AggregateWeeks groups records into Monday-start weeks, most recent first.
func AggregateWeeks(records model.Records) []model.PeriodSummary {
	return groupBy(records, engine.WeekStart, func(start time.Time) time.Time {
		return start.AddDate(0, 0, 6)
	})
}

// AggregateMonths groups records by calendar month, most recent first.
func AggregateMonths(records model.Records) []model.PeriodSummary {
	return groupBy(records, engine.MonthStart, func(start time.Time) time.Time {
		return start.AddDate(0, 1, -1)
	})
}

func groupBy(records model.Records, startOf func(time.Time) time.Time, endOf func(time.Time) time.Time) []model.PeriodSummary {
	groups := make(map[string]*model.PeriodSummary)
	for key, rec := range records {
		day, err := model.ParseDateKey(key)
		if err != nil {
			continue
		}
		start := startOf(day)
		gk := model.DateKey(start)
		ps, ok := groups[gk]
		if !ok {
			ps = &model.PeriodSummary{Start: start, End: endOf(start)}
			groups[gk] = ps
		}
		ps.Days++
		addRecord(ps, rec)
	}

	out := make([]model.PeriodSummary, 0, len(groups))
	for _, ps := range groups {
		out = append(out, *ps)
	}
	sortNewestFirst(out)
	return out
}

func addRecord(ps *model.PeriodSummary, rec model.DayRecord) {
	if rec.DailyIncome != nil {
		ps.DailyIncome += *rec.DailyIncome
		ps.HasDaily = true
	}
	ps.ExtraIncome += engine.DailyExtraIncome(rec)
	ps.ExtraExpense += engine.DailyExtraExpense(rec)
}

func sortNewestFirst(ps []model.PeriodSummary) {
	sort.Slice(ps, func(i, j int) bool {
		return ps[i].Start.After(ps[j].Start)
	})
}

// NetSeries returns the total net income for each day from since to until
// inclusive, oldest first. Days without a record contribute zero, matching
// how the ledger total treats them.
func NetSeries(records model.Records, settings *model.Settings, since, until time.Time) []float64 {
	if settings == nil {
		return nil
	}
	day := model.StartOfDay(since)
	end := model.StartOfDay(until)
	var out []float64
	for !day.After(end) {
		v := 0.0
		if rec, ok := records[model.DateKey(day)]; ok {
			v = engine.DailyTotalNetIncome(rec, settings.MonthlyExpense, day)
		}
		out = append(out, v)
		day = day.AddDate(0, 0, 1)
	}
	return out
}

// CumulativeSeries is the running ledger total at the end of each day from
// since to until, including everything recorded before since.
func CumulativeSeries(records model.Records, settings *model.Settings, since, until time.Time) []float64 {
	if settings == nil {
		return nil
	}
	running := 0.0
	sinceDay := model.StartOfDay(since)
	for key, rec := range records {
		day, err := model.ParseDateKey(key)
		if err != nil || !day.Before(sinceDay) {
			continue
		}
		running += engine.DailyTotalNetIncome(rec, settings.MonthlyExpense, day)
	}

	net := NetSeries(records, settings, since, until)
	out := make([]float64, len(net))
	for i, v := range net {
		running += v
		out[i] = running
	}
	return out
}
