package source

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/payoff/internal/model"
)

func TestDecodeLocalStorageStrings(t *testing.T) {
	// localStorage values are themselves JSON-encoded strings.
	settings := `{"totalAmount":50000,"targetDate":"2025-12-31","monthlyExpense":"3000.5","dailyIncome":300}`
	records := `{"2025-04-14":{"dailyIncome":280},"2025-04-15":{"dailyIncome":300,"extraIncomes":[{"amount":120,"description":"freelance","timestamp":1744700000000}],"extraExpenses":[{"amount":45.456,"description":"dinner","timestamp":"2025-04-15T12:00:00.000Z"}]}}`
	doc := map[string]string{
		KeySettings: settings,
		KeyRecords:  records,
		KeyMode:     "saving",
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	exp, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if exp.Mode != model.ModeSaving {
		t.Errorf("Mode = %q, want saving", exp.Mode)
	}
	if exp.Settings == nil {
		t.Fatal("Settings = nil")
	}
	if exp.Settings.MonthlyExpense != 3000.5 {
		t.Errorf("MonthlyExpense = %v, want 3000.5", exp.Settings.MonthlyExpense)
	}
	if got := model.DateKey(exp.Settings.TargetDate); got != "2025-12-31" {
		t.Errorf("TargetDate = %s, want 2025-12-31", got)
	}
	if len(exp.Records) != 2 {
		t.Fatalf("len(Records) = %d, want 2", len(exp.Records))
	}

	day := exp.Records["2025-04-15"]
	if day.DailyIncome == nil || *day.DailyIncome != 300 {
		t.Errorf("DailyIncome = %v, want 300", day.DailyIncome)
	}
	if len(day.ExtraIncomes) != 1 || day.ExtraIncomes[0].Timestamp != 1744700000000 {
		t.Errorf("ExtraIncomes = %+v", day.ExtraIncomes)
	}
	if len(day.ExtraExpenses) != 1 {
		t.Fatalf("ExtraExpenses = %+v", day.ExtraExpenses)
	}
	if day.ExtraExpenses[0].Amount != 45.46 {
		t.Errorf("expense Amount = %v, want 45.46", day.ExtraExpenses[0].Amount)
	}
	want := time.Date(2025, 4, 15, 12, 0, 0, 0, time.UTC).UnixMilli()
	if day.ExtraExpenses[0].Timestamp != want {
		t.Errorf("ISO timestamp = %d, want %d", day.ExtraExpenses[0].Timestamp, want)
	}
}

func TestDecodeSkipsMalformed(t *testing.T) {
	in := `{
		"finance_tracker_records": {
			"not-a-date": {"dailyIncome": 10},
			"2025-04-15": {"extraIncomes": [{"amount": -5, "description": "bad"}, {"amount": 5, "description": ""}]},
			"2025-04-16": "garbage"
		}
	}`
	exp, err := Decode(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if exp.Settings != nil {
		t.Errorf("Settings = %+v, want nil", exp.Settings)
	}
	if exp.Mode != model.ModeDebt {
		t.Errorf("Mode = %q, want debt default", exp.Mode)
	}
	if exp.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", exp.Skipped)
	}
	incomes := exp.Records["2025-04-15"].ExtraIncomes
	if len(incomes) != 1 || incomes[0].Description != "(no description)" {
		t.Errorf("ExtraIncomes = %+v", incomes)
	}
}

func TestDecodeRejectsBadSettings(t *testing.T) {
	for _, in := range []string{
		`{"finance_tracker_settings": {"totalAmount": 0, "targetDate": "2025-12-31", "dailyIncome": 1}}`,
		`{"finance_tracker_settings": {"totalAmount": 10, "targetDate": "31/12/2025", "dailyIncome": 1}}`,
		`not json`,
	} {
		if _, err := Decode(strings.NewReader(in)); err == nil {
			t.Errorf("Decode(%s) succeeded, want error", in)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	income := 210.75
	settings := &model.Settings{
		TotalAmount:    12345.67,
		TargetDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		MonthlyExpense: 999.99,
		DailyIncome:    210.75,
	}
	records := model.Records{
		"2025-04-15": {
			DailyIncome:   &income,
			ExtraIncomes:  []model.Entry{{Amount: 0.1, Description: "interest", Timestamp: 1}},
			ExtraExpenses: []model.Entry{{Amount: 19.99, Description: "book", Timestamp: 2}},
		},
	}

	var buf bytes.Buffer
	if err := Encode(&buf, settings, records, model.ModeSaving); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.Contains(buf.String(), `"totalAmount": 12345.67`) {
		t.Errorf("amounts should encode as bare numbers:\n%s", buf.String())
	}

	exp, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if *exp.Settings != *settings {
		t.Errorf("Settings = %+v, want %+v", *exp.Settings, *settings)
	}
	got := exp.Records["2025-04-15"]
	if *got.DailyIncome != income {
		t.Errorf("DailyIncome = %v, want %v", *got.DailyIncome, income)
	}
	if got.ExtraIncomes[0].Amount != 0.1 || got.ExtraExpenses[0].Amount != 19.99 {
		t.Errorf("entries = %+v / %+v", got.ExtraIncomes, got.ExtraExpenses)
	}
	if got.ExtraExpenses[0].Timestamp != 2 {
		t.Errorf("Timestamp = %d, want 2", got.ExtraExpenses[0].Timestamp)
	}
	if exp.Mode != model.ModeSaving {
		t.Errorf("Mode = %q, want saving", exp.Mode)
	}
}
