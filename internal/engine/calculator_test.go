package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/model"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDateKey(s)
	require.NoError(t, err)
	return d
}

func income(v float64) *float64 { return &v }

func entries(amounts ...float64) []model.Entry {
	out := make([]model.Entry, len(amounts))
	for i, a := range amounts {
		out[i] = model.Entry{Amount: a, Description: "x"}
	}
	return out
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2025-01-10", 31},
		{"2025-02-10", 28},
		{"2024-02-10", 29},
		{"2025-04-30", 30},
		{"2025-12-31", 31},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DaysInMonth(day(t, tt.date)), tt.date)
	}
}

func TestDailyExpense(t *testing.T) {
	assert.InDelta(t, 100.0, DailyExpense(3000, day(t, "2025-04-15")), 1e-9)
	assert.InDelta(t, 3100.0/31, DailyExpense(3100, day(t, "2025-05-01")), 1e-9)
	assert.InDelta(t, 2800.0/28, DailyExpense(2800, day(t, "2025-02-28")), 1e-9)
	assert.Zero(t, DailyExpense(0, day(t, "2025-04-15")))
	assert.Zero(t, DailyExpense(-50, day(t, "2025-04-15")))

	for m := time.January; m <= time.December; m++ {
		d := time.Date(2025, m, 1, 0, 0, 0, 0, time.Local)
		assert.InDelta(t, 1234.0/float64(DaysInMonth(d)), DailyExpense(1234, d), 1e-9, m.String())
	}
}

func TestDailyBasicNetIncome(t *testing.T) {
	assert.InDelta(t, 50.0, DailyBasicNetIncome(150, 3000, day(t, "2025-04-02")), 1e-9)
	assert.InDelta(t, -100.0, DailyBasicNetIncome(0, 3000, day(t, "2025-04-02")), 1e-9)
}

func TestDailyTotalNetIncome(t *testing.T) {
	rec := model.DayRecord{
		DailyIncome:   income(150),
		ExtraIncomes:  entries(50, 25),
		ExtraExpenses: entries(20),
	}
	assert.InDelta(t, 150+75-20-100.0, DailyTotalNetIncome(rec, 3000, day(t, "2025-04-15")), 1e-9)

	// No daily income logged counts as zero, not as the baseline.
	onlyExpense := model.DayRecord{ExtraExpenses: entries(30)}
	assert.InDelta(t, -130.0, DailyTotalNetIncome(onlyExpense, 3000, day(t, "2025-04-15")), 1e-9)
}

func TestAverageBasicNetIncome(t *testing.T) {
	settings := &model.Settings{TotalAmount: 10000, MonthlyExpense: 3000, DailyIncome: 200}
	today := day(t, "2025-04-15")

	t.Run("fallback when no records", func(t *testing.T) {
		assert.InDelta(t, 100.0, AverageBasicNetIncome(model.Records{}, settings, today, 7), 1e-9)
	})

	t.Run("single recorded day", func(t *testing.T) {
		records := model.Records{"2025-04-15": {DailyIncome: income(150)}}
		assert.InDelta(t, 50.0, AverageBasicNetIncome(records, settings, today, 7), 1e-9)
	})

	t.Run("averages only recorded days", func(t *testing.T) {
		records := model.Records{
			"2025-04-14": {DailyIncome: income(200)},
			"2025-04-15": {DailyIncome: income(150)},
			"2025-04-13": {ExtraIncomes: entries(999)},
		}
		assert.InDelta(t, 75.0, AverageBasicNetIncome(records, settings, today, 7), 1e-9)
	})

	t.Run("ignores days outside window", func(t *testing.T) {
		records := model.Records{
			"2025-04-08": {DailyIncome: income(1000)},
			"2025-04-09": {DailyIncome: income(160)},
		}
		assert.InDelta(t, 60.0, AverageBasicNetIncome(records, settings, today, 7), 1e-9)
		assert.InDelta(t, 100.0, AverageBasicNetIncome(records, settings, today, 3), 1e-9)
	})

	t.Run("each day uses its own month length", func(t *testing.T) {
		records := model.Records{
			"2025-03-31": {DailyIncome: income(200)},
			"2025-04-01": {DailyIncome: income(200)},
		}
		want := ((200 - 3000.0/31) + (200 - 3000.0/30)) / 2
		assert.InDelta(t, want, AverageBasicNetIncome(records, settings, day(t, "2025-04-01"), 7), 1e-9)
	})

	t.Run("fallback keeps fixed 30 day divisor", func(t *testing.T) {
		feb := day(t, "2025-02-10")
		assert.InDelta(t, 100.0, AverageBasicNetIncome(model.Records{}, settings, feb, 7), 1e-9)
	})

	t.Run("zero window uses default", func(t *testing.T) {
		records := model.Records{"2025-04-09": {DailyIncome: income(160)}}
		assert.InDelta(t, 60.0, AverageBasicNetIncome(records, settings, today, 0), 1e-9)
	})

	t.Run("absent inputs", func(t *testing.T) {
		assert.Zero(t, AverageBasicNetIncome(nil, settings, today, 7))
		assert.Zero(t, AverageBasicNetIncome(model.Records{}, nil, today, 7))
	})
}

func TestTotalNetIncome(t *testing.T) {
	settings := &model.Settings{TotalAmount: 10000, MonthlyExpense: 3000, DailyIncome: 200}
	records := model.Records{
		"2025-04-15": {DailyIncome: income(150), ExtraIncomes: entries(50), ExtraExpenses: entries(20)},
		"2024-01-02": {DailyIncome: income(400)},
		"not-a-date": {DailyIncome: income(1_000_000)},
	}
	want := (150 + 50 - 20 - 100.0) + (400 - 3000.0/31)
	assert.InDelta(t, want, TotalNetIncome(records, settings), 1e-9)

	assert.Zero(t, TotalNetIncome(nil, settings))
	assert.Zero(t, TotalNetIncome(records, nil))
	assert.Zero(t, TotalNetIncome(model.Records{}, settings))
}

func TestRemainingAmount(t *testing.T) {
	tests := []struct {
		name  string
		total float64
		net   float64
		mode  model.Mode
		want  float64
	}{
		{"debt partial", 1000, 300, model.ModeDebt, 700},
		{"debt overpaid", 1000, 1500, model.ModeDebt, 0},
		{"saving reached", 1000, 1000, model.ModeSaving, 0},
		{"saving exceeded", 1000, 1200, model.ModeSaving, 0},
		{"negative net", 1000, -200, model.ModeDebt, 1200},
		{"no total", 0, 100, model.ModeSaving, 0},
		{"negative total", -5, 100, model.ModeDebt, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RemainingAmount(tt.total, tt.net, tt.mode), 1e-9)
		})
	}
}

func TestRemainingAmountBounded(t *testing.T) {
	for _, mode := range []model.Mode{model.ModeDebt, model.ModeSaving} {
		for net := -5000.0; net <= 15000; net += 250 {
			got := RemainingAmount(10000, net, mode)
			assert.GreaterOrEqual(t, got, 0.0)
			// Only a negative net can push remaining past the total.
			if net >= 0 {
				assert.LessOrEqual(t, got, 10000.0)
			}
		}
	}
}

func TestEstimatedDate(t *testing.T) {
	today := time.Date(2025, 4, 15, 14, 30, 0, 0, time.Local)

	got, ok := EstimatedDate(500, 100, today)
	require.True(t, ok)
	assert.Equal(t, day(t, "2025-04-20"), got)

	got, ok = EstimatedDate(501, 100, today)
	require.True(t, ok)
	assert.Equal(t, day(t, "2025-04-21"), got)

	got, ok = EstimatedDate(0, 0, today)
	require.True(t, ok)
	assert.Equal(t, day(t, "2025-04-15"), got)

	_, ok = EstimatedDate(100, 0, today)
	assert.False(t, ok)

	_, ok = EstimatedDate(100, -25, today)
	assert.False(t, ok)
}

func TestDaysDifference(t *testing.T) {
	target := day(t, "2025-06-01")

	assert.Equal(t, 3, DaysDifference(day(t, "2025-06-04"), target))
	assert.Equal(t, -10, DaysDifference(day(t, "2025-05-22"), target))
	assert.Equal(t, 0, DaysDifference(target, target))

	late := time.Date(2025, 6, 4, 23, 59, 0, 0, time.Local)
	early := time.Date(2025, 6, 1, 0, 1, 0, 0, time.Local)
	assert.Equal(t, 3, DaysDifference(late, early))

	assert.Equal(t, 0, DaysDifference(time.Time{}, target))
	assert.Equal(t, 0, DaysDifference(target, time.Time{}))
}

func TestProgressPercentage(t *testing.T) {
	assert.InDelta(t, 50.0, ProgressPercentage(1000, 500, model.ModeDebt), 1e-9)
	assert.Zero(t, ProgressPercentage(1000, -100, model.ModeDebt))
	assert.Equal(t, 100.0, ProgressPercentage(1000, 1500, model.ModeDebt))
	assert.Equal(t, 100.0, ProgressPercentage(1000, 1000, model.ModeSaving))
	assert.Equal(t, 100.0, ProgressPercentage(1000, 1000.01, model.ModeSaving))
	assert.Zero(t, ProgressPercentage(0, 500, model.ModeSaving))

	for _, mode := range []model.Mode{model.ModeDebt, model.ModeSaving} {
		for net := -5000.0; net <= 15000; net += 250 {
			got := ProgressPercentage(10000, net, mode)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 100.0)
		}
	}
}

func TestWeekAndMonthStart(t *testing.T) {
	assert.Equal(t, day(t, "2025-04-14"), WeekStart(day(t, "2025-04-16")))
	assert.Equal(t, day(t, "2025-04-14"), WeekStart(day(t, "2025-04-20")))
	assert.Equal(t, day(t, "2025-04-14"), WeekStart(day(t, "2025-04-14")))
	assert.Equal(t, day(t, "2025-04-01"), MonthStart(day(t, "2025-04-30")))
}

func TestDailyExtraSums(t *testing.T) {
	rec := model.DayRecord{ExtraIncomes: entries(10, 15.5), ExtraExpenses: entries(3)}
	assert.InDelta(t, 25.5, DailyExtraIncome(rec), 1e-9)
	assert.InDelta(t, 3.0, DailyExtraExpense(rec), 1e-9)
	assert.Zero(t, DailyExtraIncome(model.DayRecord{}))
}

func TestCompute(t *testing.T) {
	today := day(t, "2025-04-15")

	t.Run("no settings", func(t *testing.T) {
		p := Compute(nil, model.Records{"2025-04-15": {DailyIncome: income(100)}}, model.ModeDebt, today, DefaultOptions())
		assert.False(t, p.HasSettings)
		assert.Zero(t, p.TotalNetIncome)
		assert.Zero(t, p.Percentage)
		assert.False(t, p.Determinable)
	})

	t.Run("behind schedule", func(t *testing.T) {
		settings := &model.Settings{
			TotalAmount:    10000,
			TargetDate:     day(t, "2025-04-20"),
			MonthlyExpense: 3000,
			DailyIncome:    200,
		}
		records := model.Records{
			"2025-04-14": {DailyIncome: income(300)},
			"2025-04-15": {DailyIncome: income(100), ExtraIncomes: entries(9300)},
		}
		p := Compute(settings, records, model.ModeDebt, today, DefaultOptions())

		require.True(t, p.HasSettings)
		assert.InDelta(t, 9500.0, p.TotalNetIncome, 1e-9)
		assert.InDelta(t, 100.0, p.AvgBasicNetIncome, 1e-9)
		assert.InDelta(t, 500.0, p.RemainingAmount, 1e-9)
		assert.InDelta(t, 95.0, p.Percentage, 1e-9)
		require.True(t, p.Determinable)
		assert.Equal(t, day(t, "2025-04-20"), p.EstimatedDate)
		assert.Equal(t, 0, p.DaysDifference)
	})

	t.Run("flat income cannot be projected", func(t *testing.T) {
		settings := &model.Settings{
			TotalAmount:    1000,
			TargetDate:     day(t, "2025-05-01"),
			MonthlyExpense: 3000,
			DailyIncome:    100,
		}
		p := Compute(settings, model.Records{}, model.ModeSaving, today, Options{WindowDays: 14})
		assert.False(t, p.Determinable)
		assert.True(t, p.EstimatedDate.IsZero())
		assert.Equal(t, 0, p.DaysDifference)
		assert.InDelta(t, 1000.0, p.RemainingAmount, 1e-9)
	})

	t.Run("goal met", func(t *testing.T) {
		settings := &model.Settings{
			TotalAmount:    100,
			TargetDate:     day(t, "2025-04-25"),
			MonthlyExpense: 0,
			DailyIncome:    10,
		}
		records := model.Records{"2025-04-10": {DailyIncome: income(150)}}
		p := Compute(settings, records, model.ModeSaving, today, DefaultOptions())
		assert.Equal(t, 100.0, p.Percentage)
		assert.Zero(t, p.RemainingAmount)
		assert.Equal(t, today, p.EstimatedDate)
		assert.Equal(t, -10, p.DaysDifference)
	})
}

func BenchmarkCompute(b *testing.B) {
	settings := &model.Settings{TotalAmount: 500000, MonthlyExpense: 3000, DailyIncome: 200}
	records := make(model.Records, 3650)
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.Local)
	for i := 0; i < 3650; i++ {
		v := float64(150 + i%100)
		records[model.DateKey(start.AddDate(0, 0, i))] = model.DayRecord{
			DailyIncome:   &v,
			ExtraIncomes:  []model.Entry{{Amount: 10}},
			ExtraExpenses: []model.Entry{{Amount: 5}},
		}
	}
	today := start.AddDate(0, 0, 3649)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compute(settings, records, model.ModeDebt, today, DefaultOptions())
	}
}
