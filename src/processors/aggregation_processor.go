package processors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/username/trimestral/src/logger"
	"github.com/username/trimestral/src/models"
	"github.com/username/trimestral/src/utils"
)

// VATRate is the standard Spanish VAT rate applied to the EU taxable base.
// It is configuration, not derived.
var VATRate = decimal.RequireFromString("0.21")

// conversionAccumulator keeps unrounded running sums for one foreign
// currency. Rounding happens once, when the ledger entry is built.
type conversionAccumulator struct {
	rate          decimal.Decimal
	totalOriginal decimal.Decimal
	totalEUR      decimal.Decimal
	count         int
}

// AggregationProcessor drives the full pipeline: normalize, quarter-filter,
// convert, classify and accumulate, in a single pass over the input.
type AggregationProcessor struct {
	normalizer *PaymentNormalizer
}

func NewAggregationProcessor() *AggregationProcessor {
	return &AggregationProcessor{normalizer: NewPaymentNormalizer()}
}

// Aggregate processes rawRecords for one fiscal quarter against the supplied
// rate table (the built-in defaults when nil) and returns the report data.
// Every per-record failure is absorbed here as a logged skip; only an invalid
// quarter aborts the call. Running it twice over the same input produces
// identical results.
func (p *AggregationProcessor) Aggregate(rawRecords []models.RawPaymentRecord, quarter, year int, rates models.ExchangeRateTable) (*models.AggregationResult, error) {
	window, err := QuarterWindow(quarter, year)
	if err != nil {
		return nil, err
	}
	if rates == nil {
		rates = models.DefaultRates()
	}

	euPayments := []models.CanonicalPayment{}
	nonEUPayments := []models.CanonicalPayment{}
	var noCountryPayments []models.CanonicalPayment

	var totalEU, totalNonEU, totalNoCountry decimal.Decimal
	conversions := make(map[string]*conversionAccumulator)

	for _, raw := range rawRecords {
		payment, err := p.normalizer.Normalize(raw)
		if err != nil {
			if errors.Is(err, ErrStatusExcluded) || errors.Is(err, ErrNoAmountField) {
				logger.L.Debug("Skipping payment record", "id", recordID(raw), "reason", err.Error())
			} else {
				logger.L.Warn("Skipping malformed payment record", "id", recordID(raw), "error", err)
			}
			continue
		}

		// Undated payments bypass the quarter filter on purpose: filtering is
		// best-effort and dropping them would understate the filed totals.
		if payment.HasDate && !window.Contains(payment.Date) {
			continue
		}

		amountEUR, rate, err := ConvertToEUR(payment.OriginalAmount, payment.Currency, rates)
		if err != nil {
			logger.L.Warn("Skipping payment with unconvertible currency",
				"id", payment.ID, "currency", payment.Currency, "error", err)
			continue
		}
		payment.AmountEUR = amountEUR
		payment.ExchangeRate = rate

		if payment.Currency != models.ReferenceCurrency {
			acc, ok := conversions[payment.Currency]
			if !ok {
				acc = &conversionAccumulator{rate: rate}
				conversions[payment.Currency] = acc
			}
			acc.totalOriginal = acc.totalOriginal.Add(payment.OriginalAmount)
			acc.totalEUR = acc.totalEUR.Add(amountEUR)
			acc.count++
		}

		jurisdiction, countryName := ClassifyCountry(payment.CountryCode)
		payment.Jurisdiction = jurisdiction

		switch jurisdiction {
		case models.JurisdictionEU:
			liable := true
			payment.VATLiable = &liable
			payment.CountryName = countryName
			euPayments = append(euPayments, payment)
			totalEU = totalEU.Add(amountEUR)
		case models.JurisdictionNonEU:
			liable := false
			payment.VATLiable = &liable
			nonEUPayments = append(nonEUPayments, payment)
			totalNonEU = totalNonEU.Add(amountEUR)
		default:
			noCountryPayments = append(noCountryPayments, payment)
			totalNoCountry = totalNoCountry.Add(amountEUR)
		}
	}

	totalAll := totalEU.Add(totalNonEU).Add(totalNoCountry)
	vatDue := utils.RoundCents(totalEU.Mul(VATRate))

	ledger := make(map[string]models.CurrencyConversion, len(conversions))
	for code, acc := range conversions {
		ledger[code] = models.CurrencyConversion{
			Rate:          acc.rate,
			TotalOriginal: utils.RoundCents(acc.totalOriginal),
			TotalEUR:      utils.RoundCents(acc.totalEUR),
			Count:         acc.count,
		}
	}

	result := &models.AggregationResult{
		Period: models.Period{
			Quarter:   quarter,
			Year:      year,
			Label:     fmt.Sprintf("%dT %d", quarter, year),
			StartDate: window.Start.Format("2006-01-02"),
			EndDate:   window.End.Format("2006-01-02"),
		},
		Summary: models.Summary{
			TotalPayments: len(euPayments) + len(nonEUPayments) + len(noCountryPayments),
			TotalEUR:      utils.RoundCents(totalAll),
			EU: models.EUSummary{
				Count:    len(euPayments),
				TotalEUR: utils.RoundCents(totalEU),
				VATDue21: vatDue,
			},
			NonEU: models.BucketSummary{
				Count:    len(nonEUPayments),
				TotalEUR: utils.RoundCents(totalNonEU),
			},
			NoCountry: models.BucketSummary{
				Count:    len(noCountryPayments),
				TotalEUR: utils.RoundCents(totalNoCountry),
			},
		},
		Conversions: ledger,
		Modelo303: models.Modelo303{
			TaxableBaseEU: utils.RoundCents(totalEU),
			VATChargedEU:  vatDue,
			ExportsNonEU:  utils.RoundCents(totalNonEU),
			TotalRevenue:  utils.RoundCents(totalAll),
		},
		Modelo130: models.Modelo130{
			QuarterRevenue: utils.RoundCents(totalAll),
		},
		EUPayments:        euPayments,
		NonEUPayments:     nonEUPayments,
		NoCountryPayments: noCountryPayments,
	}

	logger.L.Info("Aggregation complete",
		"period", result.Period.Label,
		"accepted", result.Summary.TotalPayments,
		"eu", result.Summary.EU.Count,
		"nonEU", result.Summary.NonEU.Count,
		"noCountry", result.Summary.NoCountry.Count)

	return result, nil
}

// recordID extracts whatever identifier the raw record carries, for logging.
func recordID(raw models.RawPaymentRecord) string {
	switch raw.Shape {
	case models.ShapeAPI:
		if raw.API != nil {
			return raw.API.ID
		}
	case models.ShapeExport:
		if raw.Export != nil {
			return raw.Export.ID
		}
	}
	return ""
}
