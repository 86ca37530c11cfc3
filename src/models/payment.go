// src/models/payment.go
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordShape identifies which Stripe export dialect a raw record came from.
// The loader decides the shape exactly once; downstream code dispatches on the
// tag instead of probing field names.
type RecordShape int

const (
	// ShapeAPI covers Stripe API / MCP JSON charge objects.
	ShapeAPI RecordShape = iota
	// ShapeExport covers rows from a Stripe dashboard CSV export.
	ShapeExport
)

// APIChargeRecord is the subset of a Stripe charge object the pipeline reads.
// Amount is in minor units (cents). CreatedUnix is preferred over CreatedText
// when non-zero. HasStatus distinguishes an absent status field from a present
// empty one; only the former defaults to succeeded.
type APIChargeRecord struct {
	ID              string
	Amount          int64
	HasAmount       bool
	Currency        string
	CreatedUnix     int64
	CreatedText     string
	Status          string
	HasStatus       bool
	BillingCountry  string
	CardCountry     string
	CustomerCountry string
	ReceiptEmail    string
	Description     string
}

// ExportRowRecord is one row of a Stripe dashboard CSV export. Amount is a
// decimal string that may use a comma as the decimal separator.
type ExportRowRecord struct {
	ID            string
	Amount        string
	HasAmount     bool
	Currency      string
	Created       string
	Status        string
	HasStatus     bool
	CardCountry   string
	Country       string
	CustomerEmail string
	Description   string
}

// RawPaymentRecord is the tagged union of the two input dialects. Exactly one
// of API or Export is set, matching Shape.
type RawPaymentRecord struct {
	Shape  RecordShape
	API    *APIChargeRecord
	Export *ExportRowRecord
}

// Jurisdiction classifies where a payment originated relative to the EU bloc.
type Jurisdiction string

const (
	JurisdictionEU      Jurisdiction = "EU"
	JurisdictionNonEU   Jurisdiction = "NON_EU"
	JurisdictionUnknown Jurisdiction = "UNKNOWN"
)

// CanonicalPayment is the unified representation of one accepted payment.
// The normalizer populates the source fields; the aggregation engine fills in
// the converted amount, exchange rate and jurisdiction.
type CanonicalPayment struct {
	ID             string          `json:"id"`
	Date           time.Time       `json:"-"`
	HasDate        bool            `json:"-"`
	DateText       string          `json:"date"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	Currency       string          `json:"currency"`
	AmountEUR      decimal.Decimal `json:"amount_eur"`
	ExchangeRate   decimal.Decimal `json:"exchange_rate"`
	CountryCode    string          `json:"country,omitempty"`
	CountryName    string          `json:"country_name,omitempty"`
	Jurisdiction   Jurisdiction    `json:"jurisdiction"`
	VATLiable      *bool           `json:"vat_liable"`
	Email          string          `json:"email"`
	Description    string          `json:"description"`
}
