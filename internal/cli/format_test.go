package cli

import (
	"testing"
	"time"

	"github.com/theirongolddev/payoff/internal/model"
)

func TestMoneyFormat(t *testing.T) {
	m := NewMoney("$", "en")
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{5, "$5.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
		{-42.1, "-$42.10"},
		{-0.001, "$0.00"},
	}
	for _, tt := range tests {
		if got := m.Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMoneySigned(t *testing.T) {
	m := NewMoney("¥", "zh")
	if got := m.Signed(50); got != "+¥50.00" {
		t.Errorf("Signed(50) = %q, want +¥50.00", got)
	}
	if got := m.Signed(-12); got != "-¥12.00" {
		t.Errorf("Signed(-12) = %q, want -¥12.00", got)
	}
}

func TestNewMoneyBadLocale(t *testing.T) {
	m := NewMoney("$", "!!not-a-locale")
	if got := m.Format(1000); got != "$1,000.00" {
		t.Errorf("Format(1000) = %q, want $1,000.00", got)
	}
}

func TestFormatEstimateAndSchedule(t *testing.T) {
	est := time.Date(2025, 6, 4, 0, 0, 0, 0, time.Local)
	tests := []struct {
		name     string
		p        model.Progress
		estimate string
		schedule string
	}{
		{"no settings", model.Progress{}, "-", "-"},
		{"undeterminable", model.Progress{HasSettings: true}, "cannot be determined", "-"},
		{"behind", model.Progress{HasSettings: true, Determinable: true, EstimatedDate: est, DaysDifference: 3}, "2025-06-04", "3 days behind"},
		{"ahead", model.Progress{HasSettings: true, Determinable: true, EstimatedDate: est, DaysDifference: -1}, "2025-06-04", "1 day ahead"},
		{"on time", model.Progress{HasSettings: true, Determinable: true, EstimatedDate: est}, "2025-06-04", "on schedule"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatEstimate(tt.p, ""); got != tt.estimate {
				t.Errorf("FormatEstimate() = %q, want %q", got, tt.estimate)
			}
			if got := FormatSchedule(tt.p); got != tt.schedule {
				t.Errorf("FormatSchedule() = %q, want %q", got, tt.schedule)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(45.678); got != "45.7%" {
		t.Errorf("FormatPercent(45.678) = %q, want 45.7%%", got)
	}
}

func TestFormatPeriodLabel(t *testing.T) {
	start := time.Date(2025, 4, 14, 0, 0, 0, 0, time.Local)
	week := model.PeriodSummary{Start: start, End: start.AddDate(0, 0, 6)}
	if got := FormatPeriodLabel(week, model.PeriodWeek); got != "Apr 14 - Apr 20, 2025" {
		t.Errorf("week label = %q", got)
	}
	if got := FormatPeriodLabel(week, model.PeriodMonth); got != "April 2025" {
		t.Errorf("month label = %q", got)
	}
	if got := FormatPeriodLabel(week, model.PeriodDay); got != "2025-04-14 Mon" {
		t.Errorf("day label = %q", got)
	}
}
