package services

import (
	"context"
	"io"

	"github.com/username/trimestral/src/models"
)

// ReportService generates quarterly aggregation reports from payment exports.
type ReportService interface {
	GenerateFromFile(file io.Reader, format string, quarter, year int, rates models.ExchangeRateTable) (*models.AggregationResult, error)
}

// RateSource supplies X→EUR exchange rate tables. Implementations decide how
// the table is obtained; the aggregation core only ever consumes it.
type RateSource interface {
	Latest(ctx context.Context) (models.ExchangeRateTable, error)
}
