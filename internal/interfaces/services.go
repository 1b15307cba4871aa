// Package interfaces defines client and service contracts for IndexFunds
package interfaces

import (
	"context"

	"github.com/GGulati/IndexFunds/internal/models"
)

// QuoteService retrieves and caches normalized price data.
type QuoteService interface {
	// GetPriceSeries retrieves a symbol's price history for a range.
	// A provider response with zero usable samples yields an empty series,
	// not an error.
	GetPriceSeries(ctx context.Context, symbol string, rng models.Range) (*models.PriceSeries, error)

	// GetQuote retrieves a current-price snapshot for a symbol.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// RatesService retrieves and caches USD exchange-rate series.
type RatesService interface {
	// GetRates retrieves a currency's historical USD rate series.
	// USD itself is never fetched; callers short-circuit to the identity rate.
	GetRates(ctx context.Context, currency string) (*models.ExchangeRateSeries, error)
}

// ChartService aligns and normalizes multiple price series onto a shared
// UTC timeline.
type ChartService interface {
	// BuildChart fetches the requested symbols (and any needed exchange
	// rates) and produces the aligned, optionally normalized chart.
	BuildChart(ctx context.Context, req models.ChartRequest) (*models.AlignedChart, error)
}
