package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"

	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:       "mode [debt|saving]",
	Short:     "Show or change whether the goal is a debt payoff or a savings target",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{string(model.ModeDebt), string(model.ModeSaving)},
	RunE:      runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func runMode(_ *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if len(args) == 0 {
		m, err := s.GetMode()
		if err != nil {
			return err
		}
		fmt.Printf("  %s (%s)\n", cli.FormatModeLabel(m), m)
		return nil
	}

	m := model.Mode(strings.ToLower(strings.TrimSpace(args[0])))
	if !m.Valid() {
		return fmt.Errorf("unknown mode %q, use debt or saving", args[0])
	}
	if err := s.SaveMode(m); err != nil {
		return err
	}
	status("Mode set to %s", cli.FormatModeLabel(m))
	return nil
}
