package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/payoff/internal/model"
)

// ParseAmount reads a user-entered amount such as "1,250.50" or "$42".
// The result is rounded to cents; it must be strictly positive unless
// allowZero is set.
func ParseAmount(s string, allowZero bool) (float64, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, currency.Symbol)
	clean = strings.ReplaceAll(clean, ",", "")
	clean = strings.ReplaceAll(clean, "_", "")
	if clean == "" {
		return 0, fmt.Errorf("%w: empty", model.ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidAmount, s)
	}
	d = d.Round(2)
	if d.IsNegative() || (!allowZero && d.IsZero()) {
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidAmount, s)
	}
	return d.InexactFloat64(), nil
}

// ParseDate reads a YYYY-MM-DD date as local midnight. The words "today"
// and "yesterday" are resolved against today.
func ParseDate(s string, today time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return model.StartOfDay(today), nil
	case "yesterday":
		return model.StartOfDay(today).AddDate(0, 0, -1), nil
	}
	return model.ParseDateKey(strings.TrimSpace(s))
}
