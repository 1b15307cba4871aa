// Package interfaces defines client and service contracts for IndexFunds
package interfaces

import (
	"context"

	"github.com/GGulati/IndexFunds/internal/models"
)

// QuoteClient provides access to the upstream chart/quote provider.
type QuoteClient interface {
	// GetChart retrieves raw chart data for a symbol, range, and interval.
	GetChart(ctx context.Context, symbol string, rng models.Range, interval string) (*models.ChartResponse, error)
}

// RatesClient provides access to the upstream exchange-rate provider.
type RatesClient interface {
	// GetObservations retrieves daily rate observations for a currency.
	// Observations are ordered ascending by date; non-numeric values are
	// already filtered out.
	GetObservations(ctx context.Context, currency string) ([]models.RateObservation, error)
}
