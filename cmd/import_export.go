package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/theirongolddev/payoff/internal/source"

	"github.com/spf13/cobra"
)

var flagImportYes bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Replace the ledger with a browser localStorage export (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export [FILE]",
	Short: "Write the ledger in the browser localStorage layout (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	importCmd.Flags().BoolVarP(&flagImportYes, "yes", "y", false, "Replace existing data without asking")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func runImport(_ *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		//nolint:gosec // import path is supplied by the local user
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening import file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	exp, err := source.Decode(r)
	if err != nil {
		return err
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	existing, err := s.GetRecords()
	if err != nil {
		return err
	}
	current, err := s.GetSettings()
	if err != nil {
		return err
	}
	if (current != nil || len(existing) > 0) && !flagImportYes {
		if !confirm(fmt.Sprintf("Replace %d recorded days with %d from the import?", len(existing), len(exp.Records))) {
			status("Import cancelled.")
			return nil
		}
	}

	if err := s.ReplaceAll(exp.Settings, exp.Records, exp.Mode); err != nil {
		return err
	}

	status("Imported %d days (mode %s)", len(exp.Records), exp.Mode)
	if exp.Settings == nil {
		status("The import has no settings; run `payoff setup` before recording.")
	}
	if exp.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "  %d malformed days or entries were skipped\n", exp.Skipped)
	}
	return nil
}

func runExport(_ *cobra.Command, args []string) error {
	snap, err := loadSnapshot()
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if len(args) == 1 && args[0] != "-" {
		//nolint:gosec // export path is supplied by the local user
		f, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	if err := source.Encode(w, snap.Settings, snap.Records, snap.Mode); err != nil {
		return err
	}
	if w != os.Stdout {
		status("Exported %d days to %s", len(snap.Records), args[0])
	}
	return nil
}
