package store

import "github.com/shopspring/decimal"

// toCents rounds a currency amount to two decimals and returns it in cents.
func toCents(v float64) int64 {
	return decimal.NewFromFloat(v).Round(2).Shift(2).IntPart()
}

func fromCents(c int64) float64 {
	return decimal.New(c, -2).InexactFloat64()
}
