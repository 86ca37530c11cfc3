package processors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/trimestral/src/models"
	"github.com/username/trimestral/src/utils"
)

var (
	// ErrNoAmountField marks a record that carries no recognizable amount.
	ErrNoAmountField = errors.New("record has no amount field")
	// ErrStatusExcluded marks a payment whose status is not countable
	// (refunds, failures, pending charges).
	ErrStatusExcluded = errors.New("payment status excluded")
	// ErrMalformedRecord marks a record whose fields could not be decoded.
	ErrMalformedRecord = errors.New("malformed payment record")
)

// countableStatuses are the payment statuses that enter the totals.
var countableStatuses = map[string]bool{
	"succeeded": true,
	"paid":      true,
	"complete":  true,
}

const maxDescriptionLen = 50

var oneHundred = decimal.NewFromInt(100)

// PaymentNormalizer maps raw records of either input dialect into canonical
// payments. It fills the source-side fields only; currency conversion and
// jurisdiction classification happen in the aggregation engine.
type PaymentNormalizer struct{}

func NewPaymentNormalizer() *PaymentNormalizer { return &PaymentNormalizer{} }

// Normalize converts one raw record. A failure only ever rejects that single
// record; callers are expected to skip and continue.
func (n *PaymentNormalizer) Normalize(raw models.RawPaymentRecord) (models.CanonicalPayment, error) {
	switch raw.Shape {
	case models.ShapeAPI:
		if raw.API == nil {
			return models.CanonicalPayment{}, fmt.Errorf("%w: missing api payload", ErrMalformedRecord)
		}
		return n.normalizeAPI(raw.API)
	case models.ShapeExport:
		if raw.Export == nil {
			return models.CanonicalPayment{}, fmt.Errorf("%w: missing export payload", ErrMalformedRecord)
		}
		return n.normalizeExport(raw.Export)
	default:
		return models.CanonicalPayment{}, fmt.Errorf("%w: unknown record shape %d", ErrMalformedRecord, raw.Shape)
	}
}

func (n *PaymentNormalizer) normalizeAPI(rec *models.APIChargeRecord) (models.CanonicalPayment, error) {
	if !rec.HasAmount {
		return models.CanonicalPayment{}, ErrNoAmountField
	}
	// API amounts are integer minor units.
	amount := decimal.NewFromInt(rec.Amount).Div(oneHundred)

	if err := checkStatus(rec.Status, rec.HasStatus); err != nil {
		return models.CanonicalPayment{}, err
	}

	payment := models.CanonicalPayment{
		ID:             rec.ID,
		OriginalAmount: amount,
		Currency:       currencyOrDefault(rec.Currency),
		CountryCode:    firstCountry(rec.BillingCountry, rec.CardCountry, rec.CustomerCountry),
		Email:          rec.ReceiptEmail,
		Description:    truncateDescription(rec.Description),
	}

	if rec.CreatedUnix != 0 {
		payment.Date = utils.CivilDateFromUnix(rec.CreatedUnix)
		payment.HasDate = true
	} else if d, ok := utils.ParsePaymentDate(rec.CreatedText); ok {
		payment.Date = d
		payment.HasDate = true
	}
	payment.DateText = formatDate(payment)

	return payment, nil
}

func (n *PaymentNormalizer) normalizeExport(rec *models.ExportRowRecord) (models.CanonicalPayment, error) {
	if !rec.HasAmount {
		return models.CanonicalPayment{}, ErrNoAmountField
	}
	// Dashboard exports localize the decimal separator.
	amountStr := strings.ReplaceAll(strings.TrimSpace(rec.Amount), ",", ".")
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return models.CanonicalPayment{}, fmt.Errorf("%w: bad amount %q", ErrMalformedRecord, rec.Amount)
	}

	if err := checkStatus(rec.Status, rec.HasStatus); err != nil {
		return models.CanonicalPayment{}, err
	}

	payment := models.CanonicalPayment{
		ID:             rec.ID,
		OriginalAmount: amount,
		Currency:       currencyOrDefault(rec.Currency),
		CountryCode:    firstCountry(rec.CardCountry, rec.Country),
		Email:          rec.CustomerEmail,
		Description:    truncateDescription(rec.Description),
	}

	if d, ok := utils.ParsePaymentDate(rec.Created); ok {
		payment.Date = d
		payment.HasDate = true
	}
	payment.DateText = formatDate(payment)

	return payment, nil
}

// checkStatus validates a payment status. A record that never carried a
// status field counts as succeeded; a present-but-empty value is a real
// status outside the whitelist and is excluded.
func checkStatus(status string, present bool) error {
	if !present {
		return nil
	}
	s := strings.ToLower(strings.TrimSpace(status))
	if !countableStatuses[s] {
		return fmt.Errorf("%w: %q", ErrStatusExcluded, s)
	}
	return nil
}

func currencyOrDefault(currency string) string {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c == "" {
		return models.ReferenceCurrency
	}
	return c
}

// firstCountry returns the first non-empty candidate, uppercased.
func firstCountry(candidates ...string) string {
	for _, c := range candidates {
		if trimmed := strings.TrimSpace(c); trimmed != "" {
			return strings.ToUpper(trimmed)
		}
	}
	return ""
}

func truncateDescription(desc string) string {
	runes := []rune(desc)
	if len(runes) > maxDescriptionLen {
		return string(runes[:maxDescriptionLen])
	}
	return desc
}

func formatDate(p models.CanonicalPayment) string {
	if !p.HasDate {
		return "N/A"
	}
	return p.Date.Format("2006-01-02")
}
