package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
)

func fptr(v float64) *float64 { return &v }

func mustDay(t *testing.T, key string) time.Time {
	t.Helper()
	d, err := model.ParseDateKey(key)
	require.NoError(t, err)
	return d
}

func sampleRecords() model.Records {
	return model.Records{
		// Week of Mon 2025-04-07
		"2025-04-07": {DailyIncome: fptr(100)},
		"2025-04-13": {DailyIncome: fptr(120), ExtraExpenses: []model.Entry{{Amount: 20, Description: "gas"}}},
		// Week of Mon 2025-04-14
		"2025-04-14": {DailyIncome: fptr(150), ExtraIncomes: []model.Entry{{Amount: 50, Description: "tip"}}},
		"2025-04-16": {ExtraExpenses: []model.Entry{{Amount: 5, Description: "tea"}, {Amount: 7, Description: "bus"}}},
		// March
		"2025-03-31": {DailyIncome: fptr(90)},
		"junk":       {DailyIncome: fptr(1e6)},
	}
}

func TestAggregateDays(t *testing.T) {
	days := AggregateDays(sampleRecords())
	require.Len(t, days, 5)

	assert.Equal(t, mustDay(t, "2025-04-16"), days[0].Start)
	assert.False(t, days[0].HasDaily)
	assert.InDelta(t, 12.0, days[0].ExtraExpense, 1e-9)
	assert.Len(t, days[0].Expenses, 2)
	assert.InDelta(t, -12.0, days[0].Net(), 1e-9)

	assert.Equal(t, mustDay(t, "2025-03-31"), days[4].Start)
	assert.True(t, days[4].HasDaily)
}

func TestAggregateWeeks(t *testing.T) {
	weeks := AggregateWeeks(sampleRecords())
	require.Len(t, weeks, 3)

	latest := weeks[0]
	assert.Equal(t, mustDay(t, "2025-04-14"), latest.Start)
	assert.Equal(t, mustDay(t, "2025-04-20"), latest.End)
	assert.Equal(t, 2, latest.Days)
	assert.InDelta(t, 150.0, latest.DailyIncome, 1e-9)
	assert.InDelta(t, 50.0, latest.ExtraIncome, 1e-9)
	assert.InDelta(t, 12.0, latest.ExtraExpense, 1e-9)
	assert.InDelta(t, 188.0, latest.Net(), 1e-9)
	assert.Nil(t, latest.Incomes, "week rollups do not carry entries")

	prev := weeks[1]
	assert.Equal(t, mustDay(t, "2025-04-07"), prev.Start)
	assert.InDelta(t, 220.0, prev.DailyIncome, 1e-9)
	assert.InDelta(t, 200.0, prev.Net(), 1e-9)

	// 2025-03-31 is a Monday.
	assert.Equal(t, mustDay(t, "2025-03-31"), weeks[2].Start)
}

func TestAggregateMonths(t *testing.T) {
	months := AggregateMonths(sampleRecords())
	require.Len(t, months, 2)

	apr := months[0]
	assert.Equal(t, mustDay(t, "2025-04-01"), apr.Start)
	assert.Equal(t, mustDay(t, "2025-04-30"), apr.End)
	assert.Equal(t, 4, apr.Days)
	assert.InDelta(t, 370.0, apr.DailyIncome, 1e-9)
	assert.InDelta(t, 50.0, apr.ExtraIncome, 1e-9)
	assert.InDelta(t, 32.0, apr.ExtraExpense, 1e-9)

	mar := months[1]
	assert.Equal(t, mustDay(t, "2025-03-31"), mar.End)
	assert.InDelta(t, 90.0, mar.Net(), 1e-9)
}

func TestAggregateDispatch(t *testing.T) {
	recs := sampleRecords()
	assert.Len(t, Aggregate(recs, model.PeriodDay), 5)
	assert.Len(t, Aggregate(recs, model.PeriodWeek), 3)
	assert.Len(t, Aggregate(recs, model.PeriodMonth), 2)
	assert.Empty(t, Aggregate(model.Records{}, model.PeriodWeek))
}

func TestCumulativeSeriesMatchesTotal(t *testing.T) {
	recs := sampleRecords()
	delete(recs, "junk")
	settings := &model.Settings{TotalAmount: 1000, MonthlyExpense: 300, DailyIncome: 100}

	series := CumulativeSeries(recs, settings, mustDay(t, "2025-04-10"), mustDay(t, "2025-04-16"))
	require.Len(t, series, 7)
	assert.InDelta(t, engine.TotalNetIncome(recs, settings), series[len(series)-1], 1e-9)

	net := NetSeries(recs, settings, mustDay(t, "2025-04-10"), mustDay(t, "2025-04-16"))
	require.Len(t, net, 7)
	assert.Zero(t, net[0], "unrecorded day contributes nothing")
	assert.InDelta(t, 120-20-10.0, net[3], 1e-9)

	assert.Nil(t, NetSeries(recs, nil, mustDay(t, "2025-04-10"), mustDay(t, "2025-04-16")))
}

type fakeSource struct {
	settings *model.Settings
	records  model.Records
	mode     model.Mode
	err      error
}

func (f fakeSource) GetSettings() (*model.Settings, error) { return f.settings, f.err }
func (f fakeSource) GetRecords() (model.Records, error)    { return f.records, nil }
func (f fakeSource) GetMode() (model.Mode, error)          { return f.mode, nil }

func TestLoad(t *testing.T) {
	snap, err := Load(fakeSource{mode: model.Mode("bogus")})
	require.NoError(t, err)
	assert.NotNil(t, snap.Records)
	assert.Equal(t, model.ModeDebt, snap.Mode)
	assert.False(t, snap.Progress(time.Now(), engine.DefaultOptions()).HasSettings)

	boom := errors.New("disk gone")
	_, err = Load(fakeSource{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestSnapshotProgress(t *testing.T) {
	settings := &model.Settings{
		TotalAmount:    1000,
		TargetDate:     mustDay(t, "2025-05-01"),
		MonthlyExpense: 0,
		DailyIncome:    50,
	}
	snap, err := Load(fakeSource{
		settings: settings,
		records:  model.Records{"2025-04-15": {DailyIncome: fptr(100)}},
		mode:     model.ModeSaving,
	})
	require.NoError(t, err)

	p := snap.Progress(mustDay(t, "2025-04-15"), engine.DefaultOptions())
	assert.True(t, p.HasSettings)
	assert.Equal(t, model.ModeSaving, p.Mode)
	assert.InDelta(t, 10.0, p.Percentage, 1e-9)
	assert.Equal(t, mustDay(t, "2025-04-24"), p.EstimatedDate)
	assert.Equal(t, -7, p.DaysDifference)

	assert.Len(t, snap.History(model.PeriodMonth), 1)
}
