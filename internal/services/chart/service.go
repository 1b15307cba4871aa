// Package chart aligns independently sampled price series onto a shared
// UTC timeline and applies currency and percentage normalization.
package chart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/interfaces"
	"github.com/GGulati/IndexFunds/internal/models"
)

// ErrNoSymbols marks a chart request with an empty symbol list.
var ErrNoSymbols = errors.New("chart request has no symbols")

// Service implements ChartService on top of the quote and rates services.
type Service struct {
	quotes interfaces.QuoteService
	rates  interfaces.RatesService
	logger *common.Logger
}

// NewService creates a new chart service.
func NewService(quotes interfaces.QuoteService, rates interfaces.RatesService, logger *common.Logger) *Service {
	return &Service{
		quotes: quotes,
		rates:  rates,
		logger: logger,
	}
}

// fetchResult is one symbol's fetch outcome when failures are isolated.
type fetchResult struct {
	series *models.PriceSeries
	err    error
}

// BuildChart fetches every requested symbol concurrently, fetches rates
// for each distinct non-USD currency among the results, and aligns the
// series per the request's normalization flags.
//
// By default one failed fetch fails the whole build. With
// req.IsolateFailures the failed symbol contributes an all-null column
// carrying its error instead.
func (s *Service) BuildChart(ctx context.Context, req models.ChartRequest) (*models.AlignedChart, error) {
	if len(req.Symbols) == 0 {
		return nil, ErrNoSymbols
	}

	results, err := s.fetchSeries(ctx, req)
	if err != nil {
		return nil, err
	}

	rateSeries, err := s.fetchRates(ctx, req, results)
	if err != nil {
		return nil, err
	}

	return s.align(req, results, rateSeries), nil
}

// fetchSeries retrieves all symbols concurrently. In isolation mode every
// fetch runs to completion and errors are collected per symbol; otherwise
// the first error cancels the siblings and fails the batch.
func (s *Service) fetchSeries(ctx context.Context, req models.ChartRequest) ([]fetchResult, error) {
	results := make([]fetchResult, len(req.Symbols))

	g, gctx := errgroup.WithContext(ctx)
	for i, symbol := range req.Symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			series, err := s.quotes.GetPriceSeries(gctx, symbol, req.Range)
			results[i] = fetchResult{series: series, err: err}
			if err != nil && !req.IsolateFailures {
				return fmt.Errorf("fetch %s: %w", symbol, err)
			}
			if err != nil {
				s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Symbol fetch failed, isolating")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// fetchRates retrieves the rate series for each distinct non-USD currency
// among the fetched symbols. Skipped entirely unless the request converts
// to USD. In isolation mode a failed rate fetch degrades the affected
// symbols to the identity rate instead of failing the build.
func (s *Service) fetchRates(ctx context.Context, req models.ChartRequest, results []fetchResult) (map[string]*models.ExchangeRateSeries, error) {
	rateSeries := make(map[string]*models.ExchangeRateSeries)
	if !req.ConvertToUSD {
		return rateSeries, nil
	}

	currencies := make([]string, 0)
	seen := make(map[string]struct{})
	for _, r := range results {
		if r.err != nil || r.series == nil || r.series.Currency == "USD" || r.series.Currency == "" {
			continue
		}
		if _, ok := seen[r.series.Currency]; ok {
			continue
		}
		seen[r.series.Currency] = struct{}{}
		currencies = append(currencies, r.series.Currency)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, currency := range currencies {
		currency := currency
		g.Go(func() error {
			series, err := s.rates.GetRates(gctx, currency)
			if err != nil {
				if !req.IsolateFailures {
					return fmt.Errorf("fetch rates %s: %w", currency, err)
				}
				s.logger.Warn().Err(err).Str("currency", currency).Msg("Rate fetch failed, degrading to identity")
				return nil
			}
			mu.Lock()
			rateSeries[currency] = series
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rateSeries, nil
}

// align runs the single-pass alignment over the fetched data. No I/O
// happens past this point.
func (s *Service) align(req models.ChartRequest, results []fetchResult, rateSeries map[string]*models.ExchangeRateSeries) *models.AlignedChart {
	timestampSets := make([][]int64, len(results))
	for i, r := range results {
		if r.err != nil || r.series.Empty() {
			continue
		}
		timestampSets[i] = utcTimestamps(r.series)
	}

	timeline, index := buildTimeline(timestampSets)

	out := &models.AlignedChart{
		Range:        req.Range,
		Timeline:     timeline,
		Series:       make([]models.AlignedSeries, 0, len(results)),
		ConvertedUSD: req.ConvertToUSD,
		PercentBasis: req.PercentBasis,
	}

	for i, r := range results {
		symbol := req.Symbols[i]
		aligned := models.AlignedSeries{
			Symbol:     symbol,
			WindowLow:  models.Null(),
			WindowHigh: models.Null(),
		}

		if r.err != nil {
			aligned.Empty = true
			aligned.FetchError = r.err.Error()
			aligned.Values = nullColumn(len(timeline))
			out.Series = append(out.Series, aligned)
			continue
		}

		series := r.series
		aligned.Currency = series.Currency
		if series.Empty() {
			aligned.Empty = true
			aligned.Values = nullColumn(len(timeline))
			out.Series = append(out.Series, aligned)
			continue
		}

		values := alignValues(index, len(timeline), timestampSets[i], series.Closes)
		forwardFill(values)

		if req.ConvertToUSD && series.Currency != "USD" {
			aligned.DegradedRate = convertToUSD(values, timeline, rateSeries[series.Currency])
			aligned.Currency = "USD"
		}
		if req.PercentBasis {
			percentBasis(values)
		}

		aligned.Values = values
		aligned.WindowLow, aligned.WindowHigh = windowStats(values)
		aligned.PreviousClose = previousClose(series)
		aligned.Volume = series.Volumes[len(series.Volumes)-1]

		out.Series = append(out.Series, aligned)
	}

	return out
}

// nullColumn is an all-null value array sized to the timeline.
func nullColumn(n int) []models.NullFloat64 {
	values := make([]models.NullFloat64, n)
	for i := range values {
		values[i] = models.Null()
	}
	return values
}

// previousClose is the close before the series' latest sample, in the
// series' native currency. With a single sample it is that sample.
func previousClose(series *models.PriceSeries) float64 {
	n := len(series.Closes)
	if n >= 2 {
		return series.Closes[n-2]
	}
	return series.Closes[n-1]
}

// Ensure Service implements ChartService
var _ interfaces.ChartService = (*Service)(nil)
