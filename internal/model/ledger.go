// Package model defines domain types for payoff settings, records and progress.
package model

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the local-time calendar key used for Records.
const DateLayout = "2006-01-02"

// Validation errors returned before data reaches the store.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidDate        = errors.New("invalid date, expected YYYY-MM-DD")
	ErrTargetInPast       = errors.New("target date cannot be in the past")
	ErrMissingDescription = errors.New("description is required")
	ErrSetupRequired      = errors.New("settings not configured, run `payoff setup` first")
)

// Mode selects how remaining amount and progress are interpreted.
type Mode string

const (
	ModeDebt   Mode = "debt"
	ModeSaving Mode = "saving"
)

// ParseMode returns the mode named by s, defaulting to ModeDebt.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeSaving {
		return ModeSaving
	}
	return ModeDebt
}

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	return m == ModeDebt || m == ModeSaving
}

// Settings is the singleton goal configuration for a profile.
type Settings struct {
	TotalAmount    float64
	TargetDate     time.Time
	MonthlyExpense float64
	DailyIncome    float64
}

// Validate checks a freshly entered Settings. The target date must be
// today or later, so this is only applied at creation time.
func (s Settings) Validate(today time.Time) error {
	if err := s.ValidateAmounts(); err != nil {
		return err
	}
	if s.TargetDate.IsZero() {
		return ErrInvalidDate
	}
	if StartOfDay(s.TargetDate).Before(StartOfDay(today)) {
		return ErrTargetInPast
	}
	return nil
}

// ValidateAmounts checks only the three amount fields, as the correction
// flow does not touch the target date.
func (s Settings) ValidateAmounts() error {
	if s.TotalAmount <= 0 || s.DailyIncome <= 0 || s.MonthlyExpense < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Correct returns a copy with the three amounts replaced and TargetDate kept.
func (s Settings) Correct(totalAmount, monthlyExpense, dailyIncome float64) Settings {
	s.TotalAmount = totalAmount
	s.MonthlyExpense = monthlyExpense
	s.DailyIncome = dailyIncome
	return s
}

// Entry is one ad-hoc income or expense. Amount is always positive; the
// sign comes from which list it sits in.
type Entry struct {
	ID          string
	Amount      float64
	Description string
	Timestamp   int64 // unix milliseconds
}

// DayRecord holds everything recorded for one calendar day.
type DayRecord struct {
	DailyIncome   *float64
	ExtraIncomes  []Entry
	ExtraExpenses []Entry
}

// HasDailyIncome reports whether an explicit daily income was logged.
func (r DayRecord) HasDailyIncome() bool {
	return r.DailyIncome != nil
}

// Records maps a local YYYY-MM-DD key to that day's record.
type Records map[string]DayRecord

// DateKey formats t as a Records key in local time.
func DateKey(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// ParseDateKey parses a Records key as local midnight.
func ParseDateKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// StartOfDay truncates t to local midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// ValidateEntry checks an extra income/expense before it is stored.
func ValidateEntry(amount float64, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(description) == "" {
		return ErrMissingDescription
	}
	return nil
}
