package processors

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/trimestral/src/models"
)

func TestConvertToEUR(t *testing.T) {
	rates := models.ExchangeRateTable{
		"EUR": decimal.NewFromInt(1),
		"USD": decimal.RequireFromString("0.92"),
		"XXX": decimal.NewFromInt(1),
	}

	tests := []struct {
		name       string
		amount     string
		currency   string
		wantAmount string
		wantRate   string
	}{
		{
			name:       "EUR passes through untouched",
			amount:     "123.456",
			currency:   "EUR",
			wantAmount: "123.456",
			wantRate:   "1",
		},
		{
			name:       "currency code is case insensitive",
			amount:     "10",
			currency:   "eur",
			wantAmount: "10",
			wantRate:   "1",
		},
		{
			name:       "USD converts and rounds to cents",
			amount:     "50.00",
			currency:   "USD",
			wantAmount: "46",
			wantRate:   "0.92",
		},
		{
			name:       "half rounds away from zero",
			amount:     "0.125",
			currency:   "XXX",
			wantAmount: "0.13",
			wantRate:   "1",
		},
		{
			name:       "negative half rounds away from zero",
			amount:     "-0.125",
			currency:   "XXX",
			wantAmount: "-0.13",
			wantRate:   "1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rate, err := ConvertToEUR(decimal.RequireFromString(tt.amount), tt.currency, rates)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.wantAmount)), "got %s", got)
			assert.True(t, rate.Equal(decimal.RequireFromString(tt.wantRate)), "rate %s", rate)
		})
	}
}

func TestConvertToEURUnsupportedCurrency(t *testing.T) {
	_, _, err := ConvertToEUR(decimal.NewFromInt(10), "XYZ", models.DefaultRates())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedCurrency))
	assert.Contains(t, err.Error(), "XYZ")
}

func TestConvertToEURNoDoubleRounding(t *testing.T) {
	// The converted amount always carries exactly two fractional digits.
	rates := models.ExchangeRateTable{"JPY": decimal.RequireFromString("0.0061")}
	got, _, err := ConvertToEUR(decimal.NewFromInt(10000), "JPY", rates)
	require.NoError(t, err)
	assert.Equal(t, "61.00", got.StringFixed(2))
	assert.True(t, got.Exponent() >= -2)
}
