// src/models/rates.go
package models

import "github.com/shopspring/decimal"

// ReferenceCurrency is the single currency all amounts are reported in.
const ReferenceCurrency = "EUR"

// ExchangeRateTable maps a 3-letter currency code to the multiplier that
// converts one unit of that currency into the reference currency.
// Invariant: the reference currency maps to exactly 1. The core only ever
// reads the table.
type ExchangeRateTable map[string]decimal.Decimal

// DefaultRates returns the built-in fallback table, used when the caller
// neither supplies nor fetches rates. A fresh map is returned on every call so
// overrides applied by one run never leak into another.
func DefaultRates() ExchangeRateTable {
	return ExchangeRateTable{
		"EUR": decimal.NewFromInt(1),
		"USD": decimal.RequireFromString("0.92"),
		"GBP": decimal.RequireFromString("1.17"),
		"CHF": decimal.RequireFromString("1.05"),
		"JPY": decimal.RequireFromString("0.0061"),
		"CAD": decimal.RequireFromString("0.68"),
		"AUD": decimal.RequireFromString("0.60"),
		"MXN": decimal.RequireFromString("0.054"),
		"BRL": decimal.RequireFromString("0.16"),
		"PLN": decimal.RequireFromString("0.23"),
		"SEK": decimal.RequireFromString("0.087"),
		"DKK": decimal.RequireFromString("0.134"),
		"NOK": decimal.RequireFromString("0.084"),
		"CZK": decimal.RequireFromString("0.040"),
		"HUF": decimal.RequireFromString("0.0025"),
		"RON": decimal.RequireFromString("0.20"),
		"BGN": decimal.RequireFromString("0.51"),
		"HRK": decimal.RequireFromString("0.133"),
	}
}
