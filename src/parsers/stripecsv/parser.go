// src/parsers/stripecsv/parser.go
package stripecsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/username/trimestral/src/models"
)

// StripeCSVParser reads Stripe dashboard CSV exports. Columns are located by
// header name, so exports with extra or reordered columns still load.
type StripeCSVParser struct{}

func NewParser() *StripeCSVParser {
	return &StripeCSVParser{}
}

func (p *StripeCSVParser) Parse(file io.Reader) ([]models.RawPaymentRecord, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []models.RawPaymentRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		rec := &models.ExportRowRecord{
			ID:            firstNonEmpty(field(row, "id"), field(row, "id (metadata)")),
			Currency:      field(row, "Currency"),
			Created:       firstNonEmpty(field(row, "Created (UTC)"), field(row, "Date")),
			CardCountry:   field(row, "Card Country"),
			Country:       field(row, "Country"),
			CustomerEmail: field(row, "Customer Email"),
			Description:   field(row, "Description"),
		}
		// Presence of the column matters, not whether the cell has a value:
		// an empty amount cell is a malformed record and an empty status cell
		// is an excluded status, neither a missing field.
		if i, ok := index["Amount"]; ok && i < len(row) {
			rec.Amount = strings.TrimSpace(row[i])
			rec.HasAmount = true
		}
		if i, ok := index["Status"]; ok && i < len(row) {
			rec.Status = strings.TrimSpace(row[i])
			rec.HasStatus = true
		}

		records = append(records, models.RawPaymentRecord{
			Shape:  models.ShapeExport,
			Export: rec,
		})
	}
	return records, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
