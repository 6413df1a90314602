// Package pipeline loads a consistent ledger snapshot and rolls it up for display.
package pipeline

import (
	"fmt"
	"time"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
)

// Source provides the three pieces of persisted state the engine reads.
type Source interface {
	GetSettings() (*model.Settings, error)
	GetRecords() (model.Records, error)
	GetMode() (model.Mode, error)
}

// Snapshot is one consistent read of settings, records and mode.
type Snapshot struct {
	Settings *model.Settings
	Records  model.Records
	Mode     model.Mode
}

// Load reads a snapshot from src. Records is never nil on success.
func Load(src Source) (*Snapshot, error) {
	settings, err := src.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	records, err := src.GetRecords()
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	if records == nil {
		records = make(model.Records)
	}
	mode, err := src.GetMode()
	if err != nil {
		return nil, fmt.Errorf("loading mode: %w", err)
	}
	if !mode.Valid() {
		mode = model.ModeDebt
	}
	return &Snapshot{Settings: settings, Records: records, Mode: mode}, nil
}

// Progress runs the engine over the snapshot.
func (s *Snapshot) Progress(today time.Time, opts engine.Options) model.Progress {
	return engine.Compute(s.Settings, s.Records, s.Mode, today, opts)
}

// History rolls the snapshot's records up by period, newest first.
func (s *Snapshot) History(period model.Period) []model.PeriodSummary {
	return Aggregate(s.Records, period)
}
