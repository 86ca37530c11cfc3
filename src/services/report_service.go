package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/username/trimestral/src/logger"
	"github.com/username/trimestral/src/models"
	"github.com/username/trimestral/src/parsers"
	"github.com/username/trimestral/src/processors"
)

var (
	ErrParsingFailed    = errors.New("parsing failed")
	ErrProcessingFailed = errors.New("processing failed")
)

type reportServiceImpl struct {
	aggregator *processors.AggregationProcessor
}

func NewReportService(aggregator *processors.AggregationProcessor) ReportService {
	return &reportServiceImpl{aggregator: aggregator}
}

// GenerateFromFile loads an export in the given format and aggregates it for
// the quarter. A file that cannot be parsed at all is fatal; individual bad
// records inside a parseable file are skipped downstream.
func (s *reportServiceImpl) GenerateFromFile(file io.Reader, format string, quarter, year int, rates models.ExchangeRateTable) (*models.AggregationResult, error) {
	parser, err := parsers.GetParser(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}

	records, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	logger.L.Info("Loaded payment records", "format", format, "count", len(records))

	result, err := s.aggregator.Aggregate(records, quarter, year, rates)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
	}
	return result, nil
}
