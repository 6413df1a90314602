package daemon

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/theirongolddev/payoff/internal/logging"
	"github.com/theirongolddev/payoff/internal/model"
)

type fakeLedger struct {
	settings *model.Settings
	records  model.Records
	mode     model.Mode
}

func (f *fakeLedger) GetSettings() (*model.Settings, error) { return f.settings, nil }
func (f *fakeLedger) GetRecords() (model.Records, error)    { return f.records, nil }
func (f *fakeLedger) GetMode() (model.Mode, error)          { return f.mode, nil }
func (f *fakeLedger) Close() error                          { return nil }

func fptr(v float64) *float64 { return &v }

func newTestService(t *testing.T, ledger *fakeLedger) *Service {
	t.Helper()
	today := time.Date(2025, 4, 15, 9, 0, 0, 0, time.Local)
	return New(Config{
		DBPath:       "test.db",
		Open:         func() (Ledger, error) { return ledger, nil },
		Now:          func() time.Time { return today },
		Interval:     10 * time.Second,
		EventsBuffer: 10,
		Logger:       logging.Discard(),
	})
}

func sampleLedger() *fakeLedger {
	return &fakeLedger{
		settings: &model.Settings{
			TotalAmount:    1000,
			TargetDate:     time.Date(2025, 5, 1, 0, 0, 0, 0, time.Local),
			MonthlyExpense: 0,
			DailyIncome:    50,
		},
		records: model.Records{"2025-04-15": {DailyIncome: fptr(100)}},
		mode:    model.ModeDebt,
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		TotalNetIncome:  100,
		RemainingAmount: 900,
		Percentage:      10,
		DaysDifference:  2,
		RecordedDays:    3,
	}
	curr := Snapshot{
		TotalNetIncome:  250.5,
		RemainingAmount: 749.5,
		Percentage:      25.05,
		DaysDifference:  -1,
		RecordedDays:    4,
	}

	delta := diffSnapshots(prev, curr)
	if math.Abs(delta.TotalNetIncome-150.5) > 1e-9 {
		t.Fatalf("TotalNetIncome delta = %.2f, want 150.50", delta.TotalNetIncome)
	}
	if math.Abs(delta.RemainingAmount+150.5) > 1e-9 {
		t.Fatalf("RemainingAmount delta = %.2f, want -150.50", delta.RemainingAmount)
	}
	if delta.DaysDifference != -3 {
		t.Fatalf("DaysDifference delta = %d, want -3", delta.DaysDifference)
	}
	if delta.RecordedDays != 1 {
		t.Fatalf("RecordedDays delta = %d, want 1", delta.RecordedDays)
	}
	if delta.SettingsChanged {
		t.Fatal("SettingsChanged unexpectedly true")
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should diff to zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Interval:     10 * time.Second,
		EventsBuffer: 2,
		Logger:       logging.Discard(),
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollPublishesOnChange(t *testing.T) {
	ledger := sampleLedger()
	s := newTestService(t, ledger)

	s.pollOnce(EventProgress)
	s.pollOnce(EventProgress)

	s.mu.RLock()
	if len(s.events) != 1 || s.events[0].Type != EventSnapshot {
		t.Fatalf("events after unchanged polls = %+v, want one snapshot", s.events)
	}
	snap := s.snapshot
	s.mu.RUnlock()

	if !snap.TodayRecorded || snap.RecordedDays != 1 {
		t.Errorf("snapshot = %+v, want today recorded", snap)
	}
	if snap.EstimatedDate != "2025-04-24" {
		t.Errorf("EstimatedDate = %q, want 2025-04-24", snap.EstimatedDate)
	}
	if snap.DaysDifference != -7 {
		t.Errorf("DaysDifference = %d, want -7", snap.DaysDifference)
	}

	ledger.records["2025-04-14"] = model.DayRecord{ExtraIncomes: []model.Entry{{Amount: 400, Description: "bonus"}}}
	s.pollOnce(EventProgress)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	last := s.events[1]
	if last.Type != EventProgress || last.Delta.RecordedDays != 1 {
		t.Errorf("last event = %+v", last)
	}
	if math.Abs(last.Delta.TotalNetIncome-400) > 1e-9 {
		t.Errorf("net delta = %v, want 400", last.Delta.TotalNetIncome)
	}
}

func TestRolloverAlwaysPublishes(t *testing.T) {
	s := newTestService(t, sampleLedger())
	s.pollOnce(EventProgress)
	s.rollover()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 2 || s.events[1].Type != EventRollover {
		t.Fatalf("events = %+v, want snapshot then rollover", s.events)
	}
	if s.lastRolloverAt.IsZero() {
		t.Error("lastRolloverAt not set")
	}
}

func TestPollErrorRecorded(t *testing.T) {
	s := New(Config{
		Open:   func() (Ledger, error) { return nil, errors.New("db locked") },
		Logger: logging.Discard(),
	})
	s.pollOnce(EventProgress)

	st := s.snapshotStatus()
	if st.LastError != "db locked" {
		t.Errorf("LastError = %q, want db locked", st.LastError)
	}
	if st.PollCount != 1 {
		t.Errorf("PollCount = %d, want 1", st.PollCount)
	}
}

func TestHandlerRoutes(t *testing.T) {
	s := newTestService(t, sampleLedger())
	s.pollOnce(EventProgress)
	h := s.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("/healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.Progress.HasSettings || st.Progress.Percentage != 10 {
		t.Errorf("status progress = %+v", st.Progress)
	}
	if st.DBPath != "test.db" {
		t.Errorf("DBPath = %q", st.DBPath)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history/day", nil))
	var items []HistoryItem
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(items) != 1 || items[0].Start != "2025-04-15" || items[0].Net != 100 {
		t.Errorf("history = %+v", items)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/history/year", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("/v1/history/year = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/status", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /v1/status = %d, want 405", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	var events []Event
	if err := json.NewDecoder(rec.Body).Decode(&events); err != nil {
		t.Fatalf("decode events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("events = %d, want 1", len(events))
	}
}

func TestHandlerCORS(t *testing.T) {
	s := New(Config{
		Open:           func() (Ledger, error) { return sampleLedger(), nil },
		Logger:         logging.Discard(),
		AllowedOrigins: []string{"http://localhost:1234"},
	})
	h := s.Handler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:1234")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:1234" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unlisted origin got header %q", got)
	}
}

func TestHandlerWithoutCORS(t *testing.T) {
	s := newTestService(t, sampleLedger())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:1234")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("CORS header set without allowed origins: %q", got)
	}
}
