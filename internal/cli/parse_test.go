package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/theirongolddev/payoff/internal/model"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in        string
		allowZero bool
		want      float64
		wantErr   bool
	}{
		{"100", false, 100, false},
		{" 1,250.50 ", false, 1250.5, false},
		{"$42", false, 42, false},
		{"19.999", false, 20, false},
		{"0", true, 0, false},
		{"0", false, 0, true},
		{"0.001", false, 0, true},
		{"-5", false, 0, true},
		{"abc", false, 0, true},
		{"", true, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in, tt.allowZero)
		if tt.wantErr {
			if !errors.Is(err, model.ErrInvalidAmount) {
				t.Errorf("ParseAmount(%q) err = %v, want ErrInvalidAmount", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseAmount(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	today := time.Date(2025, 3, 1, 15, 30, 0, 0, time.Local)

	got, err := ParseDate("", today)
	if err != nil || model.DateKey(got) != "2025-03-01" {
		t.Errorf("ParseDate(\"\") = %v, %v", got, err)
	}
	got, err = ParseDate("Yesterday", today)
	if err != nil || model.DateKey(got) != "2025-02-28" {
		t.Errorf("ParseDate(yesterday) = %v, %v", got, err)
	}
	got, err = ParseDate("2024-12-25", today)
	if err != nil || model.DateKey(got) != "2024-12-25" {
		t.Errorf("ParseDate(2024-12-25) = %v, %v", got, err)
	}
	if _, err := ParseDate("12/25/2024", today); !errors.Is(err, model.ErrInvalidDate) {
		t.Errorf("ParseDate(12/25/2024) err = %v, want ErrInvalidDate", err)
	}
}
