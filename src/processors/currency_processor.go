package processors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/username/trimestral/src/models"
	"github.com/username/trimestral/src/utils"
)

// ErrUnsupportedCurrency is returned when a payment's currency has no entry
// in the exchange rate table. It is fatal to the single payment being
// converted, never to the batch.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// ConvertToEUR converts an amount in the given currency to EUR using the
// supplied table. Returns the converted amount and the rate that was used.
// EUR amounts pass through untouched with rate 1, so native-currency records
// never lose precision. All other amounts are rounded to cents exactly once.
func ConvertToEUR(amount decimal.Decimal, currency string, rates models.ExchangeRateTable) (decimal.Decimal, decimal.Decimal, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == models.ReferenceCurrency {
		return amount, decimal.NewFromInt(1), nil
	}

	rate, ok := rates[code]
	if !ok {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}

	return utils.RoundCents(amount.Mul(rate)), rate, nil
}
