// Package rates provides cached access to USD exchange-rate series and
// date-based rate lookup for currency conversion.
package rates

import (
	"context"
	"sort"

	"github.com/GGulati/IndexFunds/internal/cache"
	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/interfaces"
	"github.com/GGulati/IndexFunds/internal/models"
)

// Service implements RatesService on top of the FRED observations client.
// Rate series move once per trading day, so entries live far longer than
// price data.
type Service struct {
	client interfaces.RatesClient
	cache  *cache.Cache[string, *models.ExchangeRateSeries]
	ttl    common.CacheConfig
	logger *common.Logger
}

// NewService creates a new rates service.
func NewService(
	client interfaces.RatesClient,
	ratesCache *cache.Cache[string, *models.ExchangeRateSeries],
	ttl common.CacheConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		client: client,
		cache:  ratesCache,
		ttl:    ttl,
		logger: logger,
	}
}

// GetRates retrieves a currency's historical USD rate series, serving from
// cache when fresh. USD returns an empty series without touching the
// provider; lookups against it resolve to the identity rate.
func (s *Service) GetRates(ctx context.Context, currency string) (*models.ExchangeRateSeries, error) {
	if currency == "USD" {
		return &models.ExchangeRateSeries{Currency: "USD"}, nil
	}

	if series, ok := s.cache.Get(currency); ok {
		s.logger.Debug().Str("currency", currency).Msg("Rate series cache hit")
		return series, nil
	}

	observations, err := s.client.GetObservations(ctx, currency)
	if err != nil {
		return nil, err
	}

	series := &models.ExchangeRateSeries{
		Currency:     currency,
		Observations: observations,
	}
	s.cache.SetTTL(currency, series, s.ttl.GetRates())

	s.logger.Debug().
		Str("currency", currency).
		Int("observations", len(observations)).
		Msg("Rate series fetched")

	return series, nil
}

// RateForDate resolves the units-per-USD rate in effect on a date
// ("2006-01-02" form). Exchanges close on weekends and holidays, so a
// missing date resolves to the most recent prior observation. When no
// observation exists at or before the date, the identity rate is returned
// with degraded set; callers surface that instead of failing the chart.
func RateForDate(series *models.ExchangeRateSeries, date string) (rate float64, degraded bool) {
	if series != nil && series.Currency == "USD" {
		return 1.0, false
	}
	if series == nil || len(series.Observations) == 0 {
		return 1.0, true
	}
	obs := series.Observations

	// Observations are ascending by date; ISO dates compare lexically.
	// Find the first observation after the target, then step back one.
	i := sort.Search(len(obs), func(i int) bool {
		return obs[i].Date > date
	})
	if i == 0 {
		return 1.0, true
	}
	return obs[i-1].Rate, false
}

// Ensure Service implements RatesService
var _ interfaces.RatesService = (*Service)(nil)
