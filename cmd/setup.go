package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagSetupTotal   string
	flagSetupTarget  string
	flagSetupExpense string
	flagSetupIncome  string
	flagSetupMode    string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set the goal: total amount, target date, monthly expense and daily income",
	Long: "Replaces the goal settings. Without flags an interactive form is shown;\n" +
		"with --total, --target and --daily-income the settings are saved directly.",
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&flagSetupTotal, "total", "", "Total debt or savings goal")
	setupCmd.Flags().StringVar(&flagSetupTarget, "target", "", "Target date (YYYY-MM-DD)")
	setupCmd.Flags().StringVar(&flagSetupExpense, "monthly-expense", "0", "Fixed monthly expense")
	setupCmd.Flags().StringVar(&flagSetupIncome, "daily-income", "", "Expected daily income")
	setupCmd.Flags().StringVar(&flagSetupMode, "mode", "", "debt or saving")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	today, err := referenceDate()
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	existing, err := s.GetSettings()
	if err != nil {
		return err
	}
	mode := model.ParseMode(cfg.General.DefaultMode)
	if existing != nil {
		if mode, err = s.GetMode(); err != nil {
			return err
		}
	}

	vals := tui.NewSetupValues(existing, mode)
	if setupFlagsGiven(cmd) {
		if flagSetupTotal == "" || flagSetupTarget == "" || flagSetupIncome == "" {
			return errors.New("--total, --target and --daily-income are required together")
		}
		vals.TotalAmount = flagSetupTotal
		vals.TargetDate = flagSetupTarget
		vals.MonthlyExpense = flagSetupExpense
		vals.DailyIncome = flagSetupIncome
		if flagSetupMode != "" {
			vals.Mode = string(model.ParseMode(flagSetupMode))
		}
	} else {
		form := tui.NewSetupForm(vals, today)
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				status("Setup cancelled, nothing was saved.")
				return nil
			}
			return fmt.Errorf("setup form: %w", err)
		}
	}

	st, newMode, err := vals.Parse(today)
	if err != nil {
		return err
	}
	if err := s.SaveSettings(st); err != nil {
		return err
	}
	if err := s.SaveMode(newMode); err != nil {
		return err
	}

	log.WithField("mode", newMode).Debug("settings saved")
	status("Saved %s goal of %s by %s", cli.FormatModeLabel(newMode),
		cli.FormatMoney(st.TotalAmount), cli.FormatDate(st.TargetDate, dateFormat()))
	return nil
}

func setupFlagsGiven(cmd *cobra.Command) bool {
	for _, name := range []string{"total", "target", "monthly-expense", "daily-income", "mode"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}
