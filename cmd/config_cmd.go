package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration and where it comes from",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	source := "defaults (no config file)"
	if config.Exists() {
		source = "loaded"
	}
	origins := "none"
	if len(cfg.Daemon.AllowedOrigins) > 0 {
		origins = strings.Join(cfg.Daemon.AllowedOrigins, ", ")
	}

	sections := []struct {
		name string
		rows [][2]string
	}{
		{"file", [][2]string{
			{"path", config.ConfigPath()},
			{"status", source},
		}},
		{"general", [][2]string{
			{"average_days", strconv.Itoa(cfg.General.AverageDays)},
			{"default_mode", cfg.General.DefaultMode},
			{"data_dir", flagDataDir},
			{"database", dbPath()},
		}},
		{"display", [][2]string{
			{"currency", cfg.Display.Currency},
			{"locale", cfg.Display.Locale},
			{"date_format", dateFormat()},
		}},
		{"appearance", [][2]string{
			{"theme", cfg.Appearance.Theme},
		}},
		{"tui", [][2]string{
			{"auto_refresh", strconv.FormatBool(cfg.TUI.AutoRefresh)},
			{"refresh_interval_sec", strconv.Itoa(cfg.TUI.RefreshIntervalSec)},
		}},
		{"daemon", [][2]string{
			{"addr", cfg.Daemon.Addr},
			{"interval_sec", strconv.Itoa(cfg.Daemon.IntervalSec)},
			{"allowed_origins", origins},
		}},
	}

	for _, sec := range sections {
		fmt.Printf("\n  [%s]\n", sec.name)
		fmt.Print(cli.RenderKV(sec.rows))
	}
	fmt.Println()
	return nil
}
