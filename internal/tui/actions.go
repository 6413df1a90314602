package tui

import (
	"fmt"
	"time"

	"github.com/theirongolddev/payoff/internal/cli"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
	"github.com/theirongolddev/payoff/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// DataLoadedMsg carries the first snapshot read from the ledger.
type DataLoadedMsg struct {
	Snapshot *pipeline.Snapshot
	LoadTime time.Duration
	Err      error
}

// RefreshDataMsg carries a snapshot re-read in the background.
type RefreshDataMsg struct {
	Snapshot *pipeline.Snapshot
	LoadTime time.Duration
	Err      error
}

// savedMsg reports the outcome of a write to the ledger.
type savedMsg struct {
	flash string
	err   error
}

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func readSnapshot(dbPath string) (*pipeline.Snapshot, time.Duration, error) {
	start := time.Now()
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, time.Since(start), err
	}
	defer func() { _ = s.Close() }()

	snap, err := pipeline.Load(s)
	return snap, time.Since(start), err
}

func loadDataCmd(dbPath string) tea.Cmd {
	return func() tea.Msg {
		snap, d, err := readSnapshot(dbPath)
		return DataLoadedMsg{Snapshot: snap, LoadTime: d, Err: err}
	}
}

func refreshDataCmd(dbPath string) tea.Cmd {
	return func() tea.Msg {
		snap, d, err := readSnapshot(dbPath)
		return RefreshDataMsg{Snapshot: snap, LoadTime: d, Err: err}
	}
}

// withStore runs one write against a freshly opened ledger.
func withStore(dbPath string, fn func(*store.Store) (string, error)) tea.Cmd {
	return func() tea.Msg {
		s, err := store.Open(dbPath)
		if err != nil {
			return savedMsg{err: err}
		}
		defer func() { _ = s.Close() }()

		flash, err := fn(s)
		return savedMsg{flash: flash, err: err}
	}
}

func saveSetupCmd(dbPath string, st model.Settings, mode model.Mode) tea.Cmd {
	return withStore(dbPath, func(s *store.Store) (string, error) {
		if err := s.SaveSettings(st); err != nil {
			return "", err
		}
		if err := s.SaveMode(mode); err != nil {
			return "", err
		}
		return "Goal saved", nil
	})
}

// pendingRecord is a validated entry waiting to be written.
type pendingRecord struct {
	kind        recordKind
	date        time.Time
	amount      float64
	description string
}

func recordCmd(dbPath string, p pendingRecord) tea.Cmd {
	return withStore(dbPath, func(s *store.Store) (string, error) {
		day := model.DateKey(p.date)
		switch p.kind {
		case recordIncome:
			replaced, err := s.SetDailyIncome(p.date, p.amount)
			if err != nil {
				return "", err
			}
			if replaced {
				return fmt.Sprintf("Income for %s updated to %s", day, cli.FormatMoney(p.amount)), nil
			}
			return fmt.Sprintf("Income %s recorded for %s", cli.FormatMoney(p.amount), day), nil
		case recordExtraIncome:
			if _, err := s.AddExtraIncome(p.date, p.amount, p.description); err != nil {
				return "", err
			}
			return fmt.Sprintf("Extra income %s added to %s", cli.FormatMoney(p.amount), day), nil
		default:
			if _, err := s.AddExtraExpense(p.date, p.amount, p.description); err != nil {
				return "", err
			}
			return fmt.Sprintf("Expense %s added to %s", cli.FormatMoney(p.amount), day), nil
		}
	})
}

func correctCmd(dbPath string, next model.Settings) tea.Cmd {
	return withStore(dbPath, func(s *store.Store) (string, error) {
		if _, err := s.CorrectSettings(next.TotalAmount, next.MonthlyExpense, next.DailyIncome); err != nil {
			return "", err
		}
		return "Amounts corrected", nil
	})
}

func saveModeCmd(dbPath string, mode model.Mode) tea.Cmd {
	return withStore(dbPath, func(s *store.Store) (string, error) {
		if err := s.SaveMode(mode); err != nil {
			return "", err
		}
		return "Mode set to " + cli.FormatModeLabel(mode), nil
	})
}

func clearAllCmd(dbPath string) tea.Cmd {
	return withStore(dbPath, func(s *store.Store) (string, error) {
		if err := s.ClearAll(); err != nil {
			return "", err
		}
		return "All data cleared", nil
	})
}
