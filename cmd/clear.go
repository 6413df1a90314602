package cmd

import (
	"github.com/spf13/cobra"
)

var flagClearYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all settings, records and mode",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&flagClearYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(_ *cobra.Command, _ []string) error {
	if !flagClearYes && !confirm("Delete every setting and record? This cannot be undone.") {
		status("Nothing was deleted.")
		return nil
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.ClearAll(); err != nil {
		return err
	}
	log.WithField("db", dbPath()).Info("ledger cleared")
	status("All data cleared.")
	return nil
}
