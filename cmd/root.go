// Package cmd implements the payoff CLI commands.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"
	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/logging"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/store"
	"github.com/theirongolddev/payoff/internal/tui/theme"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDataDir string
	flagToday   string
	flagWindow  int
	flagQuiet   bool
	flagVerbose bool
)

var (
	cfg config.Config
	log = logrus.StandardLogger()
)

var rootCmd = &cobra.Command{
	Use:   "payoff",
	Short: "Debt payoff and savings progress tracker",
	Long: "Track daily income and one-off income or expenses against a debt payoff\n" +
		"or savings goal, and see when you will reach it at your current pace.",
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	RunE:              runProgress,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory holding the ledger database")
	rootCmd.PersistentFlags().StringVar(&flagToday, "today", "", "Reference date (YYYY-MM-DD), default is the current day")
	rootCmd.PersistentFlags().IntVarP(&flagWindow, "window", "w", 0, "Days in the average income window")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadRuntime resolves config, env overrides and logging before any command runs.
func loadRuntime(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Config unreadable, using defaults: %v\n", err)
	}

	cli.SetCurrency(cfg.Display.Currency, cfg.Display.Locale)
	theme.SetActive(cfg.Appearance.Theme)

	level := config.LogLevel()
	if flagVerbose {
		level = "debug"
	}
	if level == "" {
		level = "warn"
	}
	log = logging.Setup(logging.Options{Level: level})

	if flagDataDir == "" {
		flagDataDir = config.DataDir(cfg)
	}
	if flagWindow <= 0 {
		flagWindow = cfg.General.AverageDays
	}
	if flagWindow <= 0 {
		flagWindow = engine.DefaultWindowDays
	}
	return nil
}

// referenceDate returns the --today override or the current day.
func referenceDate() (time.Time, error) {
	if flagToday == "" {
		return model.StartOfDay(time.Now()), nil
	}
	d, err := model.ParseDateKey(flagToday)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today: %w", err)
	}
	return d, nil
}

func dbPath() string {
	return config.DBPath(flagDataDir)
}

// openStore opens the ledger, creating the data directory on first use.
func openStore() (*store.Store, error) {
	if err := os.MkdirAll(flagDataDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	log.WithField("db", dbPath()).Debug("opening ledger")
	s, err := store.Open(dbPath())
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	return s, nil
}

// loadSnapshot reads one consistent snapshot of the ledger.
func loadSnapshot() (*pipeline.Snapshot, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	start := time.Now()
	snap, err := pipeline.Load(s)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"days":    len(snap.Records),
		"elapsed": time.Since(start),
	}).Debug("ledger loaded")
	return snap, nil
}

func engineOptions() engine.Options {
	return engine.Options{WindowDays: flagWindow}
}

func dateFormat() string {
	if cfg.Display.DateFormat == "" {
		return model.DateLayout
	}
	return cfg.Display.DateFormat
}

// confirm asks a yes/no question on stderr; anything but y/yes is no.
func confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "  %s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// status prints a progress line unless --quiet.
func status(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
