// Package quote provides cached access to normalized price data
package quote

import (
	"context"

	"github.com/GGulati/IndexFunds/internal/cache"
	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/interfaces"
	"github.com/GGulati/IndexFunds/internal/models"
)

// SeriesKey identifies a cached price series. Interval is derived from
// the range, so (symbol, range) is sufficient.
type SeriesKey struct {
	Symbol string
	Range  models.Range
}

// Service implements QuoteService on top of the chart provider, with
// TTL caching keyed by symbol and range.
type Service struct {
	client      interfaces.QuoteClient
	seriesCache *cache.Cache[SeriesKey, *models.PriceSeries]
	quoteCache  *cache.Cache[string, *models.Quote]
	ttl         common.CacheConfig
	logger      *common.Logger
}

// NewService creates a new quote service. The caches are injected so the
// application can run a single janitor over all of them.
func NewService(
	client interfaces.QuoteClient,
	seriesCache *cache.Cache[SeriesKey, *models.PriceSeries],
	quoteCache *cache.Cache[string, *models.Quote],
	ttl common.CacheConfig,
	logger *common.Logger,
) *Service {
	return &Service{
		client:      client,
		seriesCache: seriesCache,
		quoteCache:  quoteCache,
		ttl:         ttl,
		logger:      logger,
	}
}

// GetPriceSeries retrieves a symbol's price history for a range, serving
// from cache when fresh. Samples with a null close are dropped; the
// remaining timestamps, closes, and volumes stay in lockstep. A provider
// response with zero usable samples yields an empty series, not an error.
func (s *Service) GetPriceSeries(ctx context.Context, symbol string, rng models.Range) (*models.PriceSeries, error) {
	key := SeriesKey{Symbol: symbol, Range: rng}
	if series, ok := s.seriesCache.Get(key); ok {
		s.logger.Debug().Str("symbol", symbol).Str("range", string(rng)).Msg("Price series cache hit")
		return series, nil
	}

	chart, err := s.client.GetChart(ctx, symbol, rng, rng.Interval())
	if err != nil {
		return nil, err
	}

	series := normalizeSeries(symbol, chart)

	ttl := s.ttl.GetHistorySeries()
	if rng.Intraday() {
		ttl = s.ttl.GetIntradaySeries()
	}
	s.seriesCache.SetTTL(key, series, ttl)

	s.logger.Debug().
		Str("symbol", symbol).
		Str("range", string(rng)).
		Int("samples", len(series.Timestamps)).
		Msg("Price series fetched")

	return series, nil
}

// normalizeSeries converts a raw chart payload into a dense series,
// dropping samples without a close. A null volume on a kept sample
// becomes zero rather than dropping the price.
func normalizeSeries(symbol string, chart *models.ChartResponse) *models.PriceSeries {
	series := &models.PriceSeries{
		Symbol:           chart.Meta.Symbol,
		Timestamps:       make([]int64, 0, len(chart.Timestamps)),
		Closes:           make([]float64, 0, len(chart.Timestamps)),
		Volumes:          make([]int64, 0, len(chart.Timestamps)),
		UTCOffsetSeconds: chart.Meta.GMTOffset,
		Currency:         chart.Meta.Currency,
	}
	if series.Symbol == "" {
		series.Symbol = symbol
	}

	for i, ts := range chart.Timestamps {
		if chart.Closes[i] == nil {
			continue
		}
		var volume int64
		if i < len(chart.Volumes) && chart.Volumes[i] != nil {
			volume = *chart.Volumes[i]
		}
		series.Timestamps = append(series.Timestamps, ts)
		series.Closes = append(series.Closes, *chart.Closes[i])
		series.Volumes = append(series.Volumes, volume)
	}

	return series
}

// GetQuote retrieves a current-price snapshot for a symbol. The snapshot
// is derived from chart metadata on a one-day request, which carries the
// regular-market price even outside trading hours.
func (s *Service) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if quote, ok := s.quoteCache.Get(symbol); ok {
		s.logger.Debug().Str("symbol", symbol).Msg("Quote cache hit")
		return quote, nil
	}

	chart, err := s.client.GetChart(ctx, symbol, models.Range1D, models.Range1D.Interval())
	if err != nil {
		return nil, err
	}

	meta := chart.Meta
	quote := &models.Quote{
		Symbol:           meta.Symbol,
		CurrentPrice:     meta.RegularMarketPrice,
		PreviousClose:    meta.ChartPreviousClose,
		Volume:           meta.RegularMarketVolume,
		FiftyTwoWeekLow:  meta.FiftyTwoWeekLow,
		FiftyTwoWeekHigh: meta.FiftyTwoWeekHigh,
		LastUpdated:      meta.RegularMarketTime,
		Currency:         meta.Currency,
	}
	if quote.Symbol == "" {
		quote.Symbol = symbol
	}
	if quote.PreviousClose != 0 {
		quote.Change = quote.CurrentPrice - quote.PreviousClose
		quote.ChangePercent = quote.Change / quote.PreviousClose * 100
	}

	s.quoteCache.SetTTL(symbol, quote, s.ttl.GetQuote())

	return quote, nil
}

// Ensure Service implements QuoteService
var _ interfaces.QuoteService = (*Service)(nil)
