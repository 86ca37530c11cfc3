package services

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/username/trimestral/src/logger"
	"github.com/username/trimestral/src/models"
	"github.com/username/trimestral/src/processors"
)

// StripeChargeService pulls charges straight from the Stripe API, as an
// alternative to loading a CSV/JSON export.
type StripeChargeService struct {
	api *client.API
}

func NewStripeChargeService(apiKey string) *StripeChargeService {
	return &StripeChargeService{api: client.New(apiKey, nil)}
}

// ListQuarterCharges lists the charges created inside the quarter window and
// maps them into API-dialect raw records. The records still go through the
// normal normalization pipeline, so status filtering and country extraction
// behave exactly as for file input.
func (s *StripeChargeService) ListQuarterCharges(quarter, year int) ([]models.RawPaymentRecord, error) {
	window, err := processors.QuarterWindow(quarter, year)
	if err != nil {
		return nil, err
	}

	end := window.End
	if quarter == 4 {
		// Q4's end date is inclusive; the API filter is not.
		end = end.AddDate(0, 0, 1)
	}

	params := &stripe.ChargeListParams{
		CreatedRange: &stripe.RangeQueryParams{
			GreaterThanOrEqual: window.Start.Unix(),
			LesserThan:         end.Unix(),
		},
	}
	params.Limit = stripe.Int64(100)

	var records []models.RawPaymentRecord
	iter := s.api.Charges.List(params)
	for iter.Next() {
		ch := iter.Charge()
		rec := &models.APIChargeRecord{
			ID:           ch.ID,
			Amount:       ch.Amount,
			HasAmount:    true,
			Currency:     string(ch.Currency),
			CreatedUnix:  ch.Created,
			Status:       string(ch.Status),
			HasStatus:    true,
			ReceiptEmail: ch.ReceiptEmail,
			Description:  ch.Description,
		}
		if ch.BillingDetails != nil && ch.BillingDetails.Address != nil {
			rec.BillingCountry = ch.BillingDetails.Address.Country
		}
		if ch.PaymentMethodDetails != nil && ch.PaymentMethodDetails.Card != nil {
			rec.CardCountry = ch.PaymentMethodDetails.Card.Country
		}
		records = append(records, models.RawPaymentRecord{
			Shape: models.ShapeAPI,
			API:   rec,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list charges from Stripe: %w", err)
	}

	logger.L.Info("Listed charges from Stripe API", "quarter", quarter, "year", year, "count", len(records))
	return records, nil
}
