package utils

import "github.com/shopspring/decimal"

// RoundCents rounds a monetary value to 2 decimal places, half away from
// zero. Every monetary figure in a report passes through here exactly once.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
