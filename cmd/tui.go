package cmd

import (
	"fmt"

	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	opts := tui.Options{
		DBPath:      dbPath(),
		WindowDays:  flagWindow,
		DateFormat:  dateFormat(),
		DefaultMode: model.ParseMode(cfg.General.DefaultMode),
	}
	if flagToday != "" {
		today, err := referenceDate()
		if err != nil {
			return err
		}
		opts.Today = today
	}

	// The dashboard opens the ledger per read; make sure its directory exists.
	s, err := openStore()
	if err != nil {
		return err
	}
	_ = s.Close()

	// Card backgrounds need ANSI output even when the terminal is not detected.
	lipgloss.SetColorProfile(termenv.TrueColor)

	if _, err := tea.NewProgram(tui.NewApp(opts), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
