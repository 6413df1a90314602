// Package daemon provides the long-running local progress status service.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/theirongolddev/payoff/internal/engine"
	"github.com/theirongolddev/payoff/internal/model"
	"github.com/theirongolddev/payoff/internal/pipeline"
)

// Event types published on /v1/events and /v1/stream.
const (
	EventSnapshot = "snapshot"
	EventProgress = "progress_delta"
	EventRollover = "day_rollover"
)

// midnightSpec fires at local midnight so day-dependent metrics refresh.
const midnightSpec = "0 0 * * *"

// Ledger is the persisted state the daemon polls.
type Ledger interface {
	pipeline.Source
	Close() error
}

// Config controls the daemon runtime behavior.
type Config struct {
	DBPath       string
	Open         func() (Ledger, error)
	Now          func() time.Time
	WindowDays   int
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *logrus.Logger
	// AllowedOrigins lists browser origins allowed to read the API.
	// Empty disables CORS headers.
	AllowedOrigins []string
}

// Snapshot is a compact progress state for status/event payloads.
type Snapshot struct {
	At                time.Time `json:"at"`
	Today             string    `json:"today"`
	HasSettings       bool      `json:"has_settings"`
	Mode              string    `json:"mode"`
	TotalAmount       float64   `json:"total_amount"`
	TotalNetIncome    float64   `json:"total_net_income"`
	AvgBasicNetIncome float64   `json:"avg_basic_net_income"`
	RemainingAmount   float64   `json:"remaining_amount"`
	Percentage        float64   `json:"percentage"`
	TargetDate        string    `json:"target_date,omitempty"`
	EstimatedDate     string    `json:"estimated_date,omitempty"`
	Determinable      bool      `json:"determinable"`
	DaysDifference    int       `json:"days_difference"`
	RecordedDays      int       `json:"recorded_days"`
	TodayRecorded     bool      `json:"today_recorded"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	TotalNetIncome  float64 `json:"total_net_income"`
	RemainingAmount float64 `json:"remaining_amount"`
	Percentage      float64 `json:"percentage"`
	DaysDifference  int     `json:"days_difference"`
	RecordedDays    int     `json:"recorded_days"`
	SettingsChanged bool    `json:"settings_changed,omitempty"`
}

func (d Delta) isZero() bool {
	return nearZero(d.TotalNetIncome) &&
		nearZero(d.RemainingAmount) &&
		nearZero(d.Percentage) &&
		d.DaysDifference == 0 &&
		d.RecordedDays == 0 &&
		!d.SettingsChanged
}

func nearZero(v float64) bool {
	return math.Abs(v) < 0.005
}

// Event is emitted whenever the progress snapshot updates.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	LastRolloverAt  time.Time `json:"last_rollover_at,omitempty"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	DBPath          string    `json:"db_path"`
	WindowDays      int       `json:"window_days"`
	Progress        Snapshot  `json:"progress"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// HistoryItem is one row served at /v1/history/{period}.
type HistoryItem struct {
	Start        string        `json:"start"`
	End          string        `json:"end"`
	Days         int           `json:"days"`
	DailyIncome  float64       `json:"daily_income"`
	ExtraIncome  float64       `json:"extra_income"`
	ExtraExpense float64       `json:"extra_expense"`
	Net          float64       `json:"net"`
	Entries      []HistoryLine `json:"entries,omitempty"`
}

// HistoryLine is one extra income or expense inside a day row.
type HistoryLine struct {
	Kind        string  `json:"kind"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Timestamp   int64   `json:"timestamp"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *logrus.Logger

	mu             sync.RWMutex
	startedAt      time.Time
	lastPollAt     time.Time
	lastRolloverAt time.Time
	pollCount      int64
	lastError      string
	hasSnapshot    bool
	snapshot       Snapshot
	ledger         *pipeline.Snapshot
	nextEventID    int64
	events         []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service with the provided config.
func New(cfg Config) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = engine.DefaultWindowDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP routes.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/history/{period}", s.handleHistory).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/stream", s.handleStream).Methods(http.MethodGet)

	if len(s.cfg.AllowedOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
		MaxAge:         300,
	}).Handler(r)
}

// Run starts HTTP endpoints, polling and the midnight job until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sched := cron.New()
	if _, err := sched.AddFunc(midnightSpec, s.rollover); err != nil {
		return fmt.Errorf("scheduling midnight recompute: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(EventProgress)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(EventProgress)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) rollover() {
	s.mu.Lock()
	s.lastRolloverAt = time.Now()
	s.mu.Unlock()
	s.log.Info("day rollover, recomputing progress")
	s.pollOnce(EventRollover)
}

func (s *Service) pollOnce(changeType string) {
	snap, err := s.load()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = time.Now()
		s.pollCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("daemon poll failed")
		return
	}
	s.apply(snap, changeType)
}

func (s *Service) load() (*pipeline.Snapshot, error) {
	if s.cfg.Open == nil {
		return nil, errors.New("no ledger configured")
	}
	ledger, err := s.cfg.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = ledger.Close() }()
	return pipeline.Load(ledger)
}

// apply recomputes progress for ledger and publishes an event when the
// state changed. A rollover always publishes.
func (s *Service) apply(ledger *pipeline.Snapshot, changeType string) {
	now := s.cfg.Now()
	p := ledger.Progress(now, engine.Options{WindowDays: s.cfg.WindowDays})
	snap := snapshotFromProgress(p, ledger.Records, now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.ledger = ledger
	s.lastPollAt = time.Now()
	s.pollCount++
	s.lastError = ""

	switch {
	case !prevExists:
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	default:
		delta := diffSnapshots(prev, snap)
		if changeType == EventRollover || !delta.isZero() {
			s.nextEventID++
			ev = Event{ID: s.nextEventID, Type: changeType, Timestamp: now, Snapshot: snap, Delta: delta}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.log.WithFields(logrus.Fields{
			"type":       ev.Type,
			"percentage": fmt.Sprintf("%.1f", snap.Percentage),
			"remaining":  fmt.Sprintf("%.2f", snap.RemainingAmount),
		}).Debug("progress event")
		s.publishEvent(ev)
	}
}

func snapshotFromProgress(p model.Progress, records model.Records, at time.Time) Snapshot {
	snap := Snapshot{
		At:                at,
		Today:             model.DateKey(p.Today),
		HasSettings:       p.HasSettings,
		Mode:              string(p.Mode),
		TotalAmount:       p.TotalAmount,
		TotalNetIncome:    p.TotalNetIncome,
		AvgBasicNetIncome: p.AvgBasicNetIncome,
		RemainingAmount:   p.RemainingAmount,
		Percentage:        p.Percentage,
		Determinable:      p.Determinable,
		DaysDifference:    p.DaysDifference,
		RecordedDays:      len(records),
	}
	if !p.TargetDate.IsZero() {
		snap.TargetDate = model.DateKey(p.TargetDate)
	}
	if p.Determinable {
		snap.EstimatedDate = model.DateKey(p.EstimatedDate)
	}
	if rec, ok := records[snap.Today]; ok && rec.HasDailyIncome() {
		snap.TodayRecorded = true
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		TotalNetIncome:  curr.TotalNetIncome - prev.TotalNetIncome,
		RemainingAmount: curr.RemainingAmount - prev.RemainingAmount,
		Percentage:      curr.Percentage - prev.Percentage,
		DaysDifference:  curr.DaysDifference - prev.DaysDifference,
		RecordedDays:    curr.RecordedDays - prev.RecordedDays,
		SettingsChanged: curr.HasSettings != prev.HasSettings ||
			curr.TotalAmount != prev.TotalAmount ||
			curr.TargetDate != prev.TargetDate ||
			curr.Mode != prev.Mode,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		LastRolloverAt:  s.lastRolloverAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		WindowDays:      s.cfg.WindowDays,
		Progress:        s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["period"]
	period := model.ParsePeriod(name)
	if string(period) != name {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("unknown period %q, want day, week or month", name),
		})
		return
	}

	s.mu.RLock()
	ledger := s.ledger
	s.mu.RUnlock()

	items := []HistoryItem{}
	if ledger != nil {
		items = historyItems(ledger.History(period))
	}
	writeJSON(w, http.StatusOK, items)
}

func historyItems(rows []model.PeriodSummary) []HistoryItem {
	out := make([]HistoryItem, 0, len(rows))
	for _, ps := range rows {
		item := HistoryItem{
			Start:        model.DateKey(ps.Start),
			End:          model.DateKey(ps.End),
			Days:         ps.Days,
			DailyIncome:  ps.DailyIncome,
			ExtraIncome:  ps.ExtraIncome,
			ExtraExpense: ps.ExtraExpense,
			Net:          ps.Net(),
		}
		for _, e := range ps.Incomes {
			item.Entries = append(item.Entries, HistoryLine{Kind: "income", Amount: e.Amount, Description: e.Description, Timestamp: e.Timestamp})
		}
		for _, e := range ps.Expenses {
			item.Entries = append(item.Entries, HistoryLine{Kind: "expense", Amount: e.Amount, Description: e.Description, Timestamp: e.Timestamp})
		}
		out = append(out, item)
	}
	return out
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Progress,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
