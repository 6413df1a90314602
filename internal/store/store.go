// Package store persists settings, records and mode in a local SQLite file.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/payoff/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

const (
	kindIncome  = "income"
	kindExpense = "expense"

	metaMode = "mode"
)

// Store is the SQLite-backed ledger.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the ledger database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSettings returns the stored settings, or nil when setup has not run.
func (s *Store) GetSettings() (*model.Settings, error) {
	var total, expense, income int64
	var target string
	err := s.db.QueryRow(`SELECT total_cents, target_date, monthly_expense_cents, daily_income_cents
		FROM settings WHERE id = 1`).Scan(&total, &target, &expense, &income)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	date, err := model.ParseDateKey(target)
	if err != nil {
		return nil, fmt.Errorf("reading settings target date %q: %w", target, err)
	}
	return &model.Settings{
		TotalAmount:    fromCents(total),
		TargetDate:     date,
		MonthlyExpense: fromCents(expense),
		DailyIncome:    fromCents(income),
	}, nil
}

// SaveSettings replaces the settings wholesale. Callers validate the target
// date against today first; only the amounts are checked here.
func (s *Store) SaveSettings(st model.Settings) error {
	if err := st.ValidateAmounts(); err != nil {
		return err
	}
	if st.TargetDate.IsZero() {
		return model.ErrInvalidDate
	}
	if err := saveSettings(s.db, st, s.now()); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func saveSettings(db execer, st model.Settings, now time.Time) error {
	_, err := db.Exec(`INSERT OR REPLACE INTO settings
		(id, total_cents, target_date, monthly_expense_cents, daily_income_cents, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)`,
		toCents(st.TotalAmount), model.DateKey(st.TargetDate),
		toCents(st.MonthlyExpense), toCents(st.DailyIncome),
		now.UTC().Format(time.RFC3339),
	)
	return err
}

// CorrectSettings replaces the three amounts and keeps the target date.
func (s *Store) CorrectSettings(totalAmount, monthlyExpense, dailyIncome float64) (*model.Settings, error) {
	cur, err := s.GetSettings()
	if err != nil {
		return nil, err
	}
	if cur == nil {
		return nil, model.ErrSetupRequired
	}
	next := cur.Correct(totalAmount, monthlyExpense, dailyIncome)
	if err := next.ValidateAmounts(); err != nil {
		return nil, err
	}
	if err := saveSettings(s.db, next, s.now()); err != nil {
		return nil, fmt.Errorf("correcting settings: %w", err)
	}
	return &next, nil
}

// GetRecords loads the full history. The map is never nil.
func (s *Store) GetRecords() (model.Records, error) {
	records := make(model.Records)

	rows, err := s.db.Query("SELECT date, amount_cents FROM daily_income")
	if err != nil {
		return nil, fmt.Errorf("reading daily income: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var date string
		var cents int64
		if err := rows.Scan(&date, &cents); err != nil {
			return nil, fmt.Errorf("scanning daily income: %w", err)
		}
		v := fromCents(cents)
		rec := records[date]
		rec.DailyIncome = &v
		records[date] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading daily income: %w", err)
	}

	entryRows, err := s.db.Query(`SELECT id, date, kind, amount_cents, description, timestamp_ms
		FROM entries ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("reading entries: %w", err)
	}
	defer func() { _ = entryRows.Close() }()

	for entryRows.Next() {
		var e model.Entry
		var date, kind string
		var cents int64
		if err := entryRows.Scan(&e.ID, &date, &kind, &cents, &e.Description, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		e.Amount = fromCents(cents)

		rec := records[date]
		if kind == kindExpense {
			rec.ExtraExpenses = append(rec.ExtraExpenses, e)
		} else {
			rec.ExtraIncomes = append(rec.ExtraIncomes, e)
		}
		records[date] = rec
	}
	return records, entryRows.Err()
}

// HasDailyIncome reports whether a daily income already exists for date.
func (s *Store) HasDailyIncome(date time.Time) (bool, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM daily_income WHERE date = ?", model.DateKey(date)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking daily income: %w", err)
	}
	return n > 0, nil
}

// SetDailyIncome stores the day's income, replacing any earlier value.
// The result reports whether a value was replaced.
func (s *Store) SetDailyIncome(date time.Time, amount float64) (bool, error) {
	if amount <= 0 || toCents(amount) <= 0 {
		return false, model.ErrInvalidAmount
	}
	existed, err := s.HasDailyIncome(date)
	if err != nil {
		return false, err
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO daily_income (date, amount_cents, recorded_at)
		VALUES (?, ?, ?)`,
		model.DateKey(date), toCents(amount), s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("saving daily income: %w", err)
	}
	return existed, nil
}

// AddExtraIncome appends an ad-hoc income entry to date.
func (s *Store) AddExtraIncome(date time.Time, amount float64, description string) (model.Entry, error) {
	return s.addEntry(date, kindIncome, amount, description)
}

// AddExtraExpense appends an ad-hoc expense entry to date.
func (s *Store) AddExtraExpense(date time.Time, amount float64, description string) (model.Entry, error) {
	return s.addEntry(date, kindExpense, amount, description)
}

func (s *Store) addEntry(date time.Time, kind string, amount float64, description string) (model.Entry, error) {
	if err := model.ValidateEntry(amount, description); err != nil {
		return model.Entry{}, err
	}
	if toCents(amount) <= 0 {
		return model.Entry{}, model.ErrInvalidAmount
	}
	e := model.Entry{
		ID:          uuid.NewString(),
		Amount:      fromCents(toCents(amount)),
		Description: strings.TrimSpace(description),
		Timestamp:   s.now().UnixMilli(),
	}
	if err := insertEntry(s.db, model.DateKey(date), kind, e); err != nil {
		return model.Entry{}, fmt.Errorf("saving %s entry: %w", kind, err)
	}
	return e, nil
}

func insertEntry(db execer, date, kind string, e model.Entry) error {
	_, err := db.Exec(`INSERT INTO entries (id, date, kind, amount_cents, description, timestamp_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, date, kind, toCents(e.Amount), e.Description, e.Timestamp)
	return err
}

// GetMode returns the stored mode, defaulting to debt.
func (s *Store) GetMode() (model.Mode, error) {
	var v string
	err := s.db.QueryRow("SELECT value FROM meta WHERE key = ?", metaMode).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ModeDebt, nil
	}
	if err != nil {
		return model.ModeDebt, fmt.Errorf("reading mode: %w", err)
	}
	return model.ParseMode(v), nil
}

// SaveMode stores the mode.
func (s *Store) SaveMode(m model.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("unknown mode %q", m)
	}
	if _, err := s.db.Exec("INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)", metaMode, string(m)); err != nil {
		return fmt.Errorf("saving mode: %w", err)
	}
	return nil
}

// ClearAll deletes settings, records and mode.
func (s *Store) ClearAll() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearTables(tx); err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}
	return tx.Commit()
}

func clearTables(db execer) error {
	for _, table := range []string{"settings", "daily_income", "entries", "meta"} {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceAll swaps the entire ledger for the given snapshot in one
// transaction. Entries without an ID are assigned one.
func (s *Store) ReplaceAll(st *model.Settings, records model.Records, m model.Mode) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := clearTables(tx); err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}

	now := s.now()
	if st != nil {
		if err := saveSettings(tx, *st, now); err != nil {
			return fmt.Errorf("importing settings: %w", err)
		}
	}

	for _, date := range SortedDates(records) {
		rec := records[date]
		if rec.DailyIncome != nil {
			_, err := tx.Exec("INSERT INTO daily_income (date, amount_cents, recorded_at) VALUES (?, ?, ?)",
				date, toCents(*rec.DailyIncome), now.UTC().Format(time.RFC3339))
			if err != nil {
				return fmt.Errorf("importing daily income for %s: %w", date, err)
			}
		}
		for kind, list := range map[string][]model.Entry{kindIncome: rec.ExtraIncomes, kindExpense: rec.ExtraExpenses} {
			for _, e := range list {
				if e.ID == "" {
					e.ID = uuid.NewString()
				}
				if err := insertEntry(tx, date, kind, e); err != nil {
					return fmt.Errorf("importing %s entry for %s: %w", kind, date, err)
				}
			}
		}
	}

	if m.Valid() {
		if _, err := tx.Exec("INSERT INTO meta (key, value) VALUES (?, ?)", metaMode, string(m)); err != nil {
			return fmt.Errorf("importing mode: %w", err)
		}
	}
	return tx.Commit()
}

// SortedDates returns the record keys oldest first.
func SortedDates(records model.Records) []string {
	dates := make([]string, 0, len(records))
	for d := range records {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}
