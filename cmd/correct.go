package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagCorrectTotal   string
	flagCorrectExpense string
	flagCorrectIncome  string
)

var correctCmd = &cobra.Command{
	Use:   "correct",
	Short: "Fix the total, monthly expense or daily income without touching the target date",
	RunE:  runCorrect,
}

func init() {
	correctCmd.Flags().StringVar(&flagCorrectTotal, "total", "", "New total amount")
	correctCmd.Flags().StringVar(&flagCorrectExpense, "monthly-expense", "", "New monthly expense")
	correctCmd.Flags().StringVar(&flagCorrectIncome, "daily-income", "", "New daily income")
	rootCmd.AddCommand(correctCmd)
}

func runCorrect(cmd *cobra.Command, _ []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	cur, err := s.GetSettings()
	if err != nil {
		return err
	}
	if cur == nil {
		return model.ErrSetupRequired
	}

	total, expense, income := cur.TotalAmount, cur.MonthlyExpense, cur.DailyIncome
	changed := false
	for _, f := range []struct {
		name      string
		raw       string
		allowZero bool
		dst       *float64
	}{
		{"total", flagCorrectTotal, false, &total},
		{"monthly-expense", flagCorrectExpense, true, &expense},
		{"daily-income", flagCorrectIncome, false, &income},
	} {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cli.ParseAmount(f.raw, f.allowZero)
		if err != nil {
			return fmt.Errorf("--%s: %w", f.name, err)
		}
		*f.dst = v
		changed = true
	}
	if !changed {
		return errors.New("nothing to correct, pass --total, --monthly-expense or --daily-income")
	}

	next, err := s.CorrectSettings(total, expense, income)
	if err != nil {
		return err
	}
	status("Total %s, monthly expense %s, daily income %s (target date %s kept)",
		cli.FormatMoney(next.TotalAmount), cli.FormatMoney(next.MonthlyExpense),
		cli.FormatMoney(next.DailyIncome), cli.FormatDate(next.TargetDate, dateFormat()))
	return nil
}
