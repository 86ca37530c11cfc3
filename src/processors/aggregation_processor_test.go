package processors

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/trimestral/src/models"
)

func unixOn(y int, m time.Month, d int) int64 {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Unix()
}

func TestAggregateSingleEUPayment(t *testing.T) {
	p := NewAggregationProcessor()

	records := []models.RawPaymentRecord{
		apiRecord(models.APIChargeRecord{
			ID:             "ch_1",
			Amount:         10000,
			HasAmount:      true,
			Currency:       "eur",
			CreatedUnix:    unixOn(2025, time.February, 10),
			Status:         "succeeded",
			HasStatus:      true,
			BillingCountry: "FR",
		}),
	}

	result, err := p.Aggregate(records, 1, 2025, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.TotalPayments)
	assert.Equal(t, 1, result.Summary.EU.Count)
	assert.Equal(t, "100.00", result.Summary.EU.TotalEUR.StringFixed(2))
	assert.Equal(t, "21.00", result.Summary.EU.VATDue21.StringFixed(2))
	assert.Equal(t, "100.00", result.Modelo303.TaxableBaseEU.StringFixed(2))
	assert.Equal(t, "21.00", result.Modelo303.VATChargedEU.StringFixed(2))
	assert.Equal(t, "100.00", result.Modelo130.QuarterRevenue.StringFixed(2))

	require.Len(t, result.EUPayments, 1)
	payment := result.EUPayments[0]
	assert.Equal(t, models.JurisdictionEU, payment.Jurisdiction)
	assert.Equal(t, "Francia", payment.CountryName)
	require.NotNil(t, payment.VATLiable)
	assert.True(t, *payment.VATLiable)
	assert.Empty(t, result.Conversions, "EUR payments never enter the conversion ledger")
}

func TestAggregateForeignCurrencyPayment(t *testing.T) {
	p := NewAggregationProcessor()

	records := []models.RawPaymentRecord{
		exportRecord(models.ExportRowRecord{
			ID:          "py_1",
			Amount:      "50,00",
			HasAmount:   true,
			Currency:    "USD",
			Created:     "2024-11-05",
			Status:      "Paid",
			HasStatus:   true,
			CardCountry: "US",
		}),
	}
	rates := models.ExchangeRateTable{"USD": decimal.RequireFromString("0.92")}

	result, err := p.Aggregate(records, 4, 2024, rates)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Summary.NonEU.Count)
	assert.Equal(t, "46.00", result.Summary.NonEU.TotalEUR.StringFixed(2))
	require.Len(t, result.NonEUPayments, 1)
	payment := result.NonEUPayments[0]
	assert.Equal(t, "46.00", payment.AmountEUR.StringFixed(2))
	assert.Equal(t, "0.92", payment.ExchangeRate.String())
	require.NotNil(t, payment.VATLiable)
	assert.False(t, *payment.VATLiable)

	conv, ok := result.Conversions["USD"]
	require.True(t, ok)
	assert.Equal(t, 1, conv.Count)
	assert.Equal(t, "50.00", conv.TotalOriginal.StringFixed(2))
	assert.Equal(t, "46.00", conv.TotalEUR.StringFixed(2))
}

func TestAggregateExcludesFailedPayments(t *testing.T) {
	p := NewAggregationProcessor()

	records := []models.RawPaymentRecord{
		exportRecord(models.ExportRowRecord{
			Amount:      "99.00",
			HasAmount:   true,
			Status:      "failed",
			HasStatus:   true,
			CardCountry: "ES",
		}),
		// An empty status cell is a non-countable status, not an absent field.
		exportRecord(models.ExportRowRecord{
			Amount:      "25.00",
			HasAmount:   true,
			Status:      "",
			HasStatus:   true,
			CardCountry: "ES",
		}),
	}

	result, err := p.Aggregate(records, 4, 2024, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Summary.TotalPayments)
	assert.Equal(t, "0.00", result.Summary.TotalEUR.StringFixed(2))
}

func TestAggregateSkipsUnsupportedCurrency(t *testing.T) {
	p := NewAggregationProcessor()

	records := []models.RawPaymentRecord{
		exportRecord(models.ExportRowRecord{
			ID:        "bad",
			Amount:    "10.00",
			HasAmount: true,
			Currency:  "ZZZ",
			Status:    "paid",
			HasStatus: true,
		}),
		exportRecord(models.ExportRowRecord{
			ID:          "good",
			Amount:      "20.00",
			HasAmount:   true,
			Currency:    "EUR",
			Status:      "paid",
			HasStatus:   true,
			CardCountry: "PT",
		}),
	}

	result, err := p.Aggregate(records, 4, 2024, nil)
	require.NoError(t, err, "one unconvertible record never aborts the batch")
	assert.Equal(t, 1, result.Summary.TotalPayments)
	assert.Equal(t, "20.00", result.Summary.EU.TotalEUR.StringFixed(2))
}

func TestAggregateQuarterFiltering(t *testing.T) {
	p := NewAggregationProcessor()

	records := []models.RawPaymentRecord{
		// Inside Q4 2024.
		exportRecord(models.ExportRowRecord{
			ID: "in", Amount: "10.00", HasAmount: true, Created: "2024-12-31",
		}),
		// Outside the quarter.
		exportRecord(models.ExportRowRecord{
			ID: "out", Amount: "10.00", HasAmount: true, Created: "2025-01-02",
		}),
		// Undated records bypass the filter.
		exportRecord(models.ExportRowRecord{
			ID: "undated", Amount: "10.00", HasAmount: true,
		}),
	}

	result, err := p.Aggregate(records, 4, 2024, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Summary.TotalPayments)
	assert.Equal(t, "20.00", result.Summary.TotalEUR.StringFixed(2))
}

func TestAggregateSumInvariant(t *testing.T) {
	p := NewAggregationProcessor()

	records := []models.RawPaymentRecord{
		apiRecord(models.APIChargeRecord{Amount: 1234, HasAmount: true, BillingCountry: "ES"}),
		apiRecord(models.APIChargeRecord{Amount: 5678, HasAmount: true, BillingCountry: "US"}),
		apiRecord(models.APIChargeRecord{Amount: 999, HasAmount: true}),
		exportRecord(models.ExportRowRecord{Amount: "33,33", HasAmount: true, Currency: "GBP", Country: "GB"}),
	}

	result, err := p.Aggregate(records, 2, 2025, nil)
	require.NoError(t, err)

	sum := result.Summary.EU.TotalEUR.
		Add(result.Summary.NonEU.TotalEUR).
		Add(result.Summary.NoCountry.TotalEUR)
	assert.True(t, result.Summary.TotalEUR.Equal(sum),
		"grand total %s != bucket sum %s", result.Summary.TotalEUR, sum)
	assert.True(t, result.Modelo303.TotalRevenue.Equal(sum))
	assert.True(t, result.Modelo130.QuarterRevenue.Equal(sum))

	expectedVAT := result.Summary.EU.TotalEUR.Mul(VATRate).Round(2)
	assert.True(t, result.Summary.EU.VATDue21.Equal(expectedVAT))
}

func TestAggregateIdempotent(t *testing.T) {
	p := NewAggregationProcessor()

	records := []models.RawPaymentRecord{
		apiRecord(models.APIChargeRecord{Amount: 4200, HasAmount: true, Currency: "usd", BillingCountry: "DE"}),
		exportRecord(models.ExportRowRecord{Amount: "17,50", HasAmount: true, Status: "complete", HasStatus: true, CardCountry: "JP"}),
	}
	rates := models.ExchangeRateTable{"USD": decimal.RequireFromString("0.92")}

	first, err := p.Aggregate(records, 3, 2025, rates)
	require.NoError(t, err)
	second, err := p.Aggregate(records, 3, 2025, rates)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAggregateOmitsEmptyNoCountryList(t *testing.T) {
	p := NewAggregationProcessor()

	result, err := p.Aggregate([]models.RawPaymentRecord{
		apiRecord(models.APIChargeRecord{Amount: 100, HasAmount: true, BillingCountry: "ES"}),
	}, 1, 2025, nil)
	require.NoError(t, err)

	assert.Nil(t, result.NoCountryPayments)
	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "no_country_payments")
	assert.Contains(t, string(data), `"eu_payments"`)
}
