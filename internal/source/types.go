package source

import (
	"github.com/shopspring/decimal"
)

// Keys used by the browser tracker in localStorage.
const (
	KeySettings = "finance_tracker_settings"
	KeyRecords  = "finance_tracker_records"
	KeyMode     = "finance_tracker_mode"
	KeyVersion  = "finance_tracker_v1.0"
)

// rawSettings is the settings object as the browser stores it.
type rawSettings struct {
	TotalAmount    amount `json:"totalAmount"`
	TargetDate     string          `json:"targetDate"`
	MonthlyExpense amount `json:"monthlyExpense"`
	DailyIncome    amount `json:"dailyIncome"`
}

// rawRecord is one day in the browser's records map. Every field is optional.
type rawRecord struct {
	DailyIncome   *amount `json:"dailyIncome,omitempty"`
	ExtraIncomes  []rawEntry       `json:"extraIncomes,omitempty"`
	ExtraExpenses []rawEntry       `json:"extraExpenses,omitempty"`
}

// rawEntry is an extra income or expense. Older exports carry an ISO
// timestamp string instead of epoch milliseconds.
type rawEntry struct {
	Amount      amount `json:"amount"`
	Description string          `json:"description"`
	Timestamp   timestamp       `json:"timestamp"`
}

// amount decodes numbers or numeric strings and encodes as a bare JSON
// number rounded to cents, which is what the browser reads back.
type amount struct {
	decimal.Decimal
}

func newAmount(v float64) amount {
	return amount{decimal.NewFromFloat(v).Round(2)}
}

func (a amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Round(2).String()), nil
}
