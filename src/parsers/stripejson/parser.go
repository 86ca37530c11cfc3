// src/parsers/stripejson/parser.go
package stripejson

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/username/trimestral/src/logger"
	"github.com/username/trimestral/src/models"
)

// chargePayload mirrors the subset of a Stripe charge object the pipeline
// reads. Created is kept raw because the API emits a unix timestamp while MCP
// dumps sometimes carry an ISO string. Status is a pointer so an absent key
// can be told apart from an empty value.
type chargePayload struct {
	ID             string          `json:"id"`
	Amount         *int64          `json:"amount"`
	Currency       string          `json:"currency"`
	Created        json.RawMessage `json:"created"`
	Status         *string         `json:"status"`
	BillingDetails struct {
		Address struct {
			Country string `json:"country"`
		} `json:"address"`
	} `json:"billing_details"`
	PaymentMethodDetails struct {
		Card struct {
			Country string `json:"country"`
		} `json:"card"`
	} `json:"payment_method_details"`
	CustomerCountry string `json:"customer_country"`
	ReceiptEmail    string `json:"receipt_email"`
	Description     string `json:"description"`
}

// StripeJSONParser reads Stripe API / MCP JSON dumps. Input may be a bare
// list of charges, a {"data": [...]} envelope, or a single charge object.
type StripeJSONParser struct{}

func NewParser() *StripeJSONParser {
	return &StripeJSONParser{}
}

func (p *StripeJSONParser) Parse(file io.Reader) ([]models.RawPaymentRecord, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON input: %w", err)
	}

	elements, err := splitCharges(raw)
	if err != nil {
		return nil, err
	}

	records := make([]models.RawPaymentRecord, 0, len(elements))
	for i, element := range elements {
		var c chargePayload
		// A broken object rejects itself, never the batch.
		if err := json.Unmarshal(element, &c); err != nil {
			logger.L.Warn("Skipping undecodable charge object", "index", i, "error", err)
			continue
		}

		rec := &models.APIChargeRecord{
			ID:              c.ID,
			Currency:        c.Currency,
			BillingCountry:  c.BillingDetails.Address.Country,
			CardCountry:     c.PaymentMethodDetails.Card.Country,
			CustomerCountry: c.CustomerCountry,
			ReceiptEmail:    c.ReceiptEmail,
			Description:     c.Description,
		}
		if c.Amount != nil {
			rec.Amount = *c.Amount
			rec.HasAmount = true
		}
		if c.Status != nil {
			rec.Status = *c.Status
			rec.HasStatus = true
		}
		if len(c.Created) > 0 {
			var unix int64
			if err := json.Unmarshal(c.Created, &unix); err == nil {
				rec.CreatedUnix = unix
			} else {
				var s string
				if err := json.Unmarshal(c.Created, &s); err == nil {
					rec.CreatedText = s
				}
			}
		}
		records = append(records, models.RawPaymentRecord{
			Shape: models.ShapeAPI,
			API:   rec,
		})
	}
	return records, nil
}

// splitCharges resolves the container form and returns the individual charge
// objects still undecoded, so one mistyped object cannot fail the whole input.
func splitCharges(raw []byte) ([]json.RawMessage, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err == nil {
		return elements, nil
	}

	var envelope struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse JSON input: %w", err)
	}
	if envelope.Data != nil {
		return envelope.Data, nil
	}
	return []json.RawMessage{json.RawMessage(raw)}, nil
}
