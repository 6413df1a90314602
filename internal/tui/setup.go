package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"

	"github.com/charmbracelet/huh"
)

// SetupValues holds the raw text the setup form edits.
type SetupValues struct {
	Mode           string
	TotalAmount    string
	TargetDate     string
	MonthlyExpense string
	DailyIncome    string
}

// NewSetupValues pre-fills the form from existing settings, or from
// defaultMode when there are none.
func NewSetupValues(st *model.Settings, mode model.Mode) *SetupValues {
	v := &SetupValues{Mode: string(mode)}
	if st == nil {
		return v
	}
	v.TotalAmount = fmt.Sprintf("%.2f", st.TotalAmount)
	v.TargetDate = model.DateKey(st.TargetDate)
	v.MonthlyExpense = fmt.Sprintf("%.2f", st.MonthlyExpense)
	v.DailyIncome = fmt.Sprintf("%.2f", st.DailyIncome)
	return v
}

// Parse validates the form contents as a fresh goal starting today.
func (v SetupValues) Parse(today time.Time) (model.Settings, model.Mode, error) {
	var st model.Settings
	var err error

	if st.TotalAmount, err = cli.ParseAmount(v.TotalAmount, false); err != nil {
		return st, "", fmt.Errorf("total amount: %w", err)
	}
	if st.TargetDate, err = model.ParseDateKey(strings.TrimSpace(v.TargetDate)); err != nil {
		return st, "", fmt.Errorf("target date: %w", err)
	}
	if st.MonthlyExpense, err = cli.ParseAmount(v.MonthlyExpense, true); err != nil {
		return st, "", fmt.Errorf("monthly expense: %w", err)
	}
	if st.DailyIncome, err = cli.ParseAmount(v.DailyIncome, false); err != nil {
		return st, "", fmt.Errorf("daily income: %w", err)
	}
	if err := st.Validate(today); err != nil {
		return st, "", err
	}
	return st, model.ParseMode(v.Mode), nil
}

// NewSetupForm builds the goal form bound to vals. It is used by the
// dashboard on first run and by `payoff setup`.
func NewSetupForm(vals *SetupValues, today time.Time) *huh.Form {
	validAmount := func(allowZero bool) func(string) error {
		return func(s string) error {
			_, err := cli.ParseAmount(s, allowZero)
			return err
		}
	}
	validTarget := func(s string) error {
		d, err := model.ParseDateKey(strings.TrimSpace(s))
		if err != nil {
			return err
		}
		if d.Before(model.StartOfDay(today)) {
			return model.ErrTargetInPast
		}
		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to payoff").
				Description("Track how fast you pay off a debt or reach a savings goal.\n"+
					"Your data stays in a local SQLite file."),
			huh.NewSelect[string]().
				Title("What are you tracking?").
				Options(
					huh.NewOption("Paying off a debt", string(model.ModeDebt)),
					huh.NewOption("Saving toward a goal", string(model.ModeSaving)),
				).
				Value(&vals.Mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Total amount").
				Description("The full debt, or the savings target.").
				Placeholder("10000").
				Validate(validAmount(false)).
				Value(&vals.TotalAmount),
			huh.NewInput().
				Title("Target date").
				Description("YYYY-MM-DD, today or later.").
				Placeholder(model.DateKey(today.AddDate(1, 0, 0))).
				Validate(validTarget).
				Value(&vals.TargetDate),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly expenses").
				Description("Spread evenly over the days of each month.").
				Placeholder("0").
				Validate(validAmount(true)).
				Value(&vals.MonthlyExpense),
			huh.NewInput().
				Title("Typical daily income").
				Description("Used for days you have not recorded yet.").
				Placeholder("100").
				Validate(validAmount(false)).
				Value(&vals.DailyIncome),
		),
	).WithTheme(huh.ThemeBase16()).WithShowHelp(true)
}
