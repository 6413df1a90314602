// Package source reads and writes the browser tracker's localStorage export.
package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/model"
)

// Export is a decoded localStorage dump.
type Export struct {
	Settings *model.Settings
	Records  model.Records
	Mode     model.Mode

	// Skipped counts malformed days or entries dropped while decoding.
	Skipped int
}

// timestamp accepts epoch milliseconds or an RFC 3339 string.
type timestamp int64

func (t *timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*t = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			*t = timestamp(ms)
			return nil
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
		*t = timestamp(parsed.UnixMilli())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*t = timestamp(int64(f))
	return nil
}

// unwrap handles values that localStorage holds as JSON-encoded strings.
func unwrap(raw json.RawMessage) (json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return json.RawMessage(s), nil
}

// Decode reads a localStorage dump. Values may be objects or the
// JSON-encoded strings localStorage actually holds.
func Decode(r io.Reader) (*Export, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}

	out := &Export{Records: make(model.Records), Mode: model.ModeDebt}

	if raw, ok := doc[KeySettings]; ok {
		st, err := decodeSettings(raw)
		if err != nil {
			return nil, err
		}
		out.Settings = st
	}

	if raw, ok := doc[KeyRecords]; ok {
		if err := decodeRecords(raw, out); err != nil {
			return nil, err
		}
	}

	if raw, ok := doc[KeyMode]; ok {
		var m string
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("decoding mode: %w", err)
		}
		out.Mode = model.ParseMode(m)
	}
	return out, nil
}

func decodeSettings(raw json.RawMessage) (*model.Settings, error) {
	inner, err := unwrap(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	if len(inner) == 0 || string(inner) == "null" {
		return nil, nil
	}
	var rs rawSettings
	if err := json.Unmarshal(inner, &rs); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	target, err := model.ParseDateKey(strings.TrimSpace(rs.TargetDate))
	if err != nil {
		return nil, fmt.Errorf("decoding settings target date %q: %w", rs.TargetDate, err)
	}
	st := &model.Settings{
		TotalAmount:    rs.TotalAmount.Round(2).InexactFloat64(),
		TargetDate:     target,
		MonthlyExpense: rs.MonthlyExpense.Round(2).InexactFloat64(),
		DailyIncome:    rs.DailyIncome.Round(2).InexactFloat64(),
	}
	if err := st.ValidateAmounts(); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return st, nil
}

func decodeRecords(raw json.RawMessage, out *Export) error {
	inner, err := unwrap(raw)
	if err != nil {
		return fmt.Errorf("decoding records: %w", err)
	}
	if len(inner) == 0 || string(inner) == "null" {
		return nil
	}
	var days map[string]json.RawMessage
	if err := json.Unmarshal(inner, &days); err != nil {
		return fmt.Errorf("decoding records: %w", err)
	}

	for key, dayRaw := range days {
		date, err := model.ParseDateKey(key)
		if err != nil {
			out.Skipped++
			continue
		}
		var rr rawRecord
		if err := json.Unmarshal(dayRaw, &rr); err != nil {
			out.Skipped++
			continue
		}

		var rec model.DayRecord
		if rr.DailyIncome != nil && rr.DailyIncome.IsPositive() {
			v := rr.DailyIncome.Round(2).InexactFloat64()
			rec.DailyIncome = &v
		}
		rec.ExtraIncomes = convertEntries(rr.ExtraIncomes, &out.Skipped)
		rec.ExtraExpenses = convertEntries(rr.ExtraExpenses, &out.Skipped)

		if rec.DailyIncome == nil && len(rec.ExtraIncomes) == 0 && len(rec.ExtraExpenses) == 0 {
			continue
		}
		out.Records[model.DateKey(date)] = rec
	}
	return nil
}

func convertEntries(in []rawEntry, skipped *int) []model.Entry {
	var out []model.Entry
	for _, re := range in {
		amount := re.Amount.Round(2)
		if !amount.IsPositive() {
			*skipped++
			continue
		}
		desc := strings.TrimSpace(re.Description)
		if desc == "" {
			// The browser UI always required one; fill rather than drop.
			desc = "(no description)"
		}
		out = append(out, model.Entry{
			Amount:      amount.InexactFloat64(),
			Description: desc,
			Timestamp:   int64(re.Timestamp),
		})
	}
	return out
}

// Encode writes the ledger in the browser's localStorage layout, with each
// value as a plain JSON object.
func Encode(w io.Writer, settings *model.Settings, records model.Records, mode model.Mode) error {
	doc := map[string]any{
		KeyMode:    string(mode),
		KeyVersion: "1.0",
	}

	if settings != nil {
		doc[KeySettings] = rawSettings{
			TotalAmount:    newAmount(settings.TotalAmount),
			TargetDate:     model.DateKey(settings.TargetDate),
			MonthlyExpense: newAmount(settings.MonthlyExpense),
			DailyIncome:    newAmount(settings.DailyIncome),
		}
	} else {
		doc[KeySettings] = nil
	}

	days := make(map[string]rawRecord, len(records))
	for key, rec := range records {
		var rr rawRecord
		if rec.DailyIncome != nil {
			d := newAmount(*rec.DailyIncome)
			rr.DailyIncome = &d
		}
		rr.ExtraIncomes = exportEntries(rec.ExtraIncomes)
		rr.ExtraExpenses = exportEntries(rec.ExtraExpenses)
		days[key] = rr
	}
	doc[KeyRecords] = days

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

func exportEntries(in []model.Entry) []rawEntry {
	if len(in) == 0 {
		return nil
	}
	out := make([]rawEntry, len(in))
	for i, e := range in {
		out[i] = rawEntry{
			Amount:      newAmount(e.Amount),
			Description: e.Description,
			Timestamp:   timestamp(e.Timestamp),
		}
	}
	return out
}
