// src/models/result.go
package models

import "github.com/shopspring/decimal"

// Period describes the fiscal quarter a report covers.
type Period struct {
	Quarter   int    `json:"quarter"`
	Year      int    `json:"year"`
	Label     string `json:"label"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// BucketSummary holds the count and summed EUR total of one payment bucket.
type BucketSummary struct {
	Count    int             `json:"count"`
	TotalEUR decimal.Decimal `json:"total_eur"`
}

// EUSummary is the EU bucket with its estimated VAT due at the standard rate.
type EUSummary struct {
	Count    int             `json:"count"`
	TotalEUR decimal.Decimal `json:"total_eur"`
	VATDue21 decimal.Decimal `json:"vat_due_21"`
}

// Summary is the per-bucket roll-up of one aggregation run.
type Summary struct {
	TotalPayments int             `json:"total_payments"`
	TotalEUR      decimal.Decimal `json:"total_eur"`
	EU            EUSummary       `json:"eu"`
	NonEU         BucketSummary   `json:"non_eu"`
	NoCountry     BucketSummary   `json:"no_country"`
}

// CurrencyConversion is one entry of the per-foreign-currency ledger.
type CurrencyConversion struct {
	Rate          decimal.Decimal `json:"rate"`
	TotalOriginal decimal.Decimal `json:"total_original"`
	TotalEUR      decimal.Decimal `json:"total_eur"`
	Count         int             `json:"count"`
}

// Modelo303 carries the figures for the quarterly VAT return.
type Modelo303 struct {
	TaxableBaseEU decimal.Decimal `json:"taxable_base_eu"`
	VATChargedEU  decimal.Decimal `json:"vat_charged_eu"`
	ExportsNonEU  decimal.Decimal `json:"exports_non_eu"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// Modelo130 carries the figures for the quarterly income-tax prepayment.
type Modelo130 struct {
	QuarterRevenue decimal.Decimal `json:"quarter_revenue"`
}

// AggregationResult is the immutable snapshot produced by one aggregation
// call. Monetary fields serialize as exact decimal strings, never floats.
// NoCountryPayments is omitted from JSON when empty.
type AggregationResult struct {
	Period            Period                        `json:"period"`
	Summary           Summary                       `json:"summary"`
	Conversions       map[string]CurrencyConversion `json:"currency_conversions"`
	Modelo303         Modelo303                     `json:"modelo_303"`
	Modelo130         Modelo130                     `json:"modelo_130"`
	EUPayments        []CanonicalPayment            `json:"eu_payments"`
	NonEUPayments     []CanonicalPayment            `json:"non_eu_payments"`
	NoCountryPayments []CanonicalPayment            `json:"no_country_payments,omitempty"`
}
