package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagRecordDate string
	flagRecordYes  bool
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record daily income, extra income or an extra expense",
}

var recordIncomeCmd = &cobra.Command{
	Use:   "income AMOUNT",
	Short: "Set the daily income for a day (replaces any earlier value)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordIncome,
}

var recordExtraIncomeCmd = &cobra.Command{
	Use:     "extra-income AMOUNT DESCRIPTION...",
	Aliases: []string{"income+"},
	Short:   "Add a one-off income to a day",
	Args:    cobra.MinimumNArgs(2),
	RunE:    runRecordExtra(false),
}

var recordExtraExpenseCmd = &cobra.Command{
	Use:     "extra-expense AMOUNT DESCRIPTION...",
	Aliases: []string{"expense"},
	Short:   "Add a one-off expense to a day",
	Args:    cobra.MinimumNArgs(2),
	RunE:    runRecordExtra(true),
}

func init() {
	recordCmd.PersistentFlags().StringVar(&flagRecordDate, "date", "", "Day to record (YYYY-MM-DD, today or yesterday)")
	recordIncomeCmd.Flags().BoolVarP(&flagRecordYes, "yes", "y", false, "Replace an existing daily income without asking")

	recordCmd.AddCommand(recordIncomeCmd)
	recordCmd.AddCommand(recordExtraIncomeCmd)
	recordCmd.AddCommand(recordExtraExpenseCmd)
	rootCmd.AddCommand(recordCmd)
}

// openConfigured opens the ledger and fails with ErrSetupRequired when no
// goal exists yet.
func openConfigured() (*store.Store, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	st, err := s.GetSettings()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	if st == nil {
		_ = s.Close()
		return nil, model.ErrSetupRequired
	}
	return s, nil
}

func recordDate() (time.Time, error) {
	today, err := referenceDate()
	if err != nil {
		return time.Time{}, err
	}
	d, err := cli.ParseDate(flagRecordDate, today)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date: %w", err)
	}
	return d, nil
}

func runRecordIncome(_ *cobra.Command, args []string) error {
	amount, err := cli.ParseAmount(args[0], false)
	if err != nil {
		return err
	}
	date, err := recordDate()
	if err != nil {
		return err
	}

	s, err := openConfigured()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	exists, err := s.HasDailyIncome(date)
	if err != nil {
		return err
	}
	if exists && !flagRecordYes {
		if !confirm(fmt.Sprintf("Income for %s is already recorded. Replace it with %s?",
			model.DateKey(date), cli.FormatMoney(amount))) {
			status("Kept the existing income.")
			return nil
		}
	}

	if _, err := s.SetDailyIncome(date, amount); err != nil {
		return err
	}
	log.WithField("date", model.DateKey(date)).WithField("replaced", exists).Debug("daily income saved")
	status("Recorded %s income for %s", cli.FormatMoney(amount), model.DateKey(date))
	return nil
}

func runRecordExtra(expense bool) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		amount, err := cli.ParseAmount(args[0], false)
		if err != nil {
			return err
		}
		description := strings.TrimSpace(strings.Join(args[1:], " "))
		if err := model.ValidateEntry(amount, description); err != nil {
			return err
		}
		date, err := recordDate()
		if err != nil {
			return err
		}

		s, err := openConfigured()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		var e model.Entry
		kind := "extra income"
		if expense {
			kind = "extra expense"
			e, err = s.AddExtraExpense(date, amount, description)
		} else {
			e, err = s.AddExtraIncome(date, amount, description)
		}
		if err != nil {
			return err
		}
		log.WithField("id", e.ID).WithField("kind", kind).Debug("entry saved")
		status("Added %s %s (%s) on %s", kind, cli.FormatMoney(amount), description, model.DateKey(date))
		return nil
	}
}
