package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/username/trimestral/src/logger"
	"github.com/username/trimestral/src/models"
)

const ratesCacheKey = "latest_rates"

// HTTPRateService fetches current EUR exchange rates from a public API and
// inverts them into the X→EUR multipliers the converter needs. Fetched tables
// are cached with a TTL and every failure falls back to the built-in default
// table, so a report can always be produced offline.
type HTTPRateService struct {
	client    *http.Client
	url       string
	rateCache *cache.Cache
	limiter   *rate.Limiter
}

func NewHTTPRateService(url string, timeout, cacheTTL time.Duration) *HTTPRateService {
	return &HTTPRateService{
		client:    &http.Client{Timeout: timeout},
		url:       url,
		rateCache: cache.New(cacheTTL, 2*cacheTTL),
		limiter:   rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

// Latest returns the current rate table, from cache when fresh. The returned
// table is always a private copy; callers may apply overrides freely.
func (s *HTTPRateService) Latest(ctx context.Context) (models.ExchangeRateTable, error) {
	if cached, found := s.rateCache.Get(ratesCacheKey); found {
		return cloneTable(cached.(models.ExchangeRateTable)), nil
	}

	table, err := s.fetch(ctx)
	if err != nil {
		logger.L.Warn("Could not fetch exchange rates, using default table", "error", err)
		return models.DefaultRates(), nil
	}

	s.rateCache.Set(ratesCacheKey, table, cache.DefaultExpiration)
	logger.L.Info("Fetched exchange rates", "url", s.url, "currencyCount", len(table))
	return cloneTable(table), nil
}

func (s *HTTPRateService) fetch(ctx context.Context) (models.ExchangeRateTable, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate fetch throttled: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rates request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rates request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates request returned status %d", resp.StatusCode)
	}

	// Quotes are decoded as json.Number so the decimal pipeline never passes
	// through a float64.
	var payload struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates response contained no rates")
	}

	table := make(models.ExchangeRateTable, len(payload.Rates)+1)
	one := decimal.NewFromInt(1)
	for code, quoted := range payload.Rates {
		perEUR, err := decimal.NewFromString(quoted.String())
		if err != nil || perEUR.Sign() <= 0 {
			continue
		}
		// The API quotes EUR→X; the table needs the X→EUR multiplier.
		table[strings.ToUpper(code)] = one.Div(perEUR).Round(6)
	}
	table[models.ReferenceCurrency] = one
	return table, nil
}

// ApplyRateOverrides returns a copy of the table with CODE:VALUE overrides
// applied. Malformed entries are skipped with a warning, never fatal.
func ApplyRateOverrides(table models.ExchangeRateTable, overrides []string) models.ExchangeRateTable {
	out := cloneTable(table)
	for _, override := range overrides {
		parts := strings.SplitN(override, ":", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			logger.L.Warn("Ignoring invalid rate override, expected CODE:VALUE", "override", override)
			continue
		}
		value, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			logger.L.Warn("Ignoring invalid rate override, expected CODE:VALUE", "override", override, "error", err)
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(parts[0]))] = value
	}
	return out
}

func cloneTable(table models.ExchangeRateTable) models.ExchangeRateTable {
	out := make(models.ExchangeRateTable, len(table))
	for code, r := range table {
		out[code] = r
	}
	return out
}
