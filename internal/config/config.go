package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Environment overrides, also read from a .env file.
const (
	EnvDataDir  = "PAYOFF_DATA_DIR"
	EnvLogLevel = "PAYOFF_LOG_LEVEL"
)

// Config holds all payoff configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Display    DisplayConfig    `toml:"display"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	AverageDays int    `toml:"average_days"`
	DefaultMode string `toml:"default_mode"`
	DataDir     string `toml:"data_dir,omitempty"`
}

// DisplayConfig controls how amounts and dates are printed.
type DisplayConfig struct {
	Currency   string `toml:"currency"`
	Locale     string `toml:"locale"`
	DateFormat string `toml:"date_format"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds status service settings.
type DaemonConfig struct {
	Addr           string   `toml:"addr"`
	IntervalSec    int      `toml:"interval_sec"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			AverageDays: 7,
			DefaultMode: "debt",
		},
		Display: DisplayConfig{
			Currency:   "$",
			Locale:     "en",
			DateFormat: "2006-01-02",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 30,
		},
		Daemon: DaemonConfig{
			Addr:        "127.0.0.1:8787",
			IntervalSec: 15,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "payoff")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadEnv reads .env from the working directory and the config directory.
// Variables already set in the environment win; missing files are ignored.
func LoadEnv() error {
	for _, p := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DataDir returns where the ledger lives: env var, then config, then XDG data home.
func DataDir(cfg Config) string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return expandHome(cfg.General.DataDir)
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "payoff")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "payoff")
}

// DBPath returns the ledger database path inside dataDir.
func DBPath(dataDir string) string {
	return filepath.Join(dataDir, "payoff.db")
}

// LogLevel returns the log level from the environment, or "" if unset.
func LogLevel() string {
	return strings.TrimSpace(os.Getenv(EnvLogLevel))
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	return p
}
