package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GGulati/IndexFunds/internal/cache"
	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/models"
)

// mockRatesClient is a hand-rolled RatesClient for service tests.
type mockRatesClient struct {
	getObservations func(ctx context.Context, currency string) ([]models.RateObservation, error)
	calls           int
}

func (m *mockRatesClient) GetObservations(ctx context.Context, currency string) ([]models.RateObservation, error) {
	m.calls++
	return m.getObservations(ctx, currency)
}

func newTestService(client *mockRatesClient) *Service {
	cfg := common.NewDefaultConfig()
	return NewService(
		client,
		cache.New[string, *models.ExchangeRateSeries](24*time.Hour),
		cfg.Cache,
		common.NewSilentLogger(),
	)
}

func TestGetRates_USDShortCircuits(t *testing.T) {
	client := &mockRatesClient{
		getObservations: func(ctx context.Context, currency string) ([]models.RateObservation, error) {
			return nil, errors.New("should not be called")
		},
	}
	svc := newTestService(client)

	series, err := svc.GetRates(context.Background(), "USD")
	require.NoError(t, err)
	assert.Equal(t, "USD", series.Currency)
	assert.Empty(t, series.Observations)
	assert.Zero(t, client.calls)
}

func TestGetRates_FetchesAndCaches(t *testing.T) {
	client := &mockRatesClient{
		getObservations: func(ctx context.Context, currency string) ([]models.RateObservation, error) {
			return []models.RateObservation{
				{Date: "2024-03-25", Rate: 151.41},
				{Date: "2024-03-27", Rate: 151.32},
			}, nil
		},
	}
	svc := newTestService(client)
	ctx := context.Background()

	series, err := svc.GetRates(ctx, "JPY")
	require.NoError(t, err)
	assert.Equal(t, "JPY", series.Currency)
	require.Len(t, series.Observations, 2)

	_, err = svc.GetRates(ctx, "JPY")
	require.NoError(t, err)
	assert.Equal(t, 1, client.calls, "second request should hit the cache")
}

func TestGetRates_PropagatesClientError(t *testing.T) {
	wantErr := errors.New("provider down")
	client := &mockRatesClient{
		getObservations: func(ctx context.Context, currency string) ([]models.RateObservation, error) {
			return nil, wantErr
		},
	}
	svc := newTestService(client)

	_, err := svc.GetRates(context.Background(), "JPY")
	assert.ErrorIs(t, err, wantErr)
}

func TestRateForDate_ExactMatch(t *testing.T) {
	series := &models.ExchangeRateSeries{
		Currency: "JPY",
		Observations: []models.RateObservation{
			{Date: "2024-03-25", Rate: 151.41},
			{Date: "2024-03-26", Rate: 151.56},
			{Date: "2024-03-27", Rate: 151.32},
		},
	}

	rate, degraded := RateForDate(series, "2024-03-26")
	assert.False(t, degraded)
	assert.Equal(t, 151.56, rate)
}

func TestRateForDate_FallsBackToMostRecentPrior(t *testing.T) {
	series := &models.ExchangeRateSeries{
		Currency: "JPY",
		Observations: []models.RateObservation{
			{Date: "2024-03-22", Rate: 151.41}, // Friday
			{Date: "2024-03-25", Rate: 151.56}, // Monday
		},
	}

	// Saturday resolves to Friday's rate.
	rate, degraded := RateForDate(series, "2024-03-23")
	assert.False(t, degraded)
	assert.Equal(t, 151.41, rate)

	// A date past the last observation resolves to the last one.
	rate, degraded = RateForDate(series, "2024-04-01")
	assert.False(t, degraded)
	assert.Equal(t, 151.56, rate)
}

func TestRateForDate_BeforeFirstObservationDegrades(t *testing.T) {
	series := &models.ExchangeRateSeries{
		Currency: "JPY",
		Observations: []models.RateObservation{
			{Date: "2024-03-25", Rate: 151.41},
		},
	}

	rate, degraded := RateForDate(series, "2024-03-20")
	assert.True(t, degraded)
	assert.Equal(t, 1.0, rate)
}

func TestRateForDate_EmptySeriesDegrades(t *testing.T) {
	rate, degraded := RateForDate(&models.ExchangeRateSeries{Currency: "JPY"}, "2024-03-25")
	assert.True(t, degraded)
	assert.Equal(t, 1.0, rate)
}

func TestRateForDate_USDIsIdentity(t *testing.T) {
	rate, degraded := RateForDate(&models.ExchangeRateSeries{Currency: "USD"}, "2024-03-25")
	assert.False(t, degraded)
	assert.Equal(t, 1.0, rate)
}

// The resolved rate never comes from a date after the requested one.
func TestRateForDate_NeverLooksForward(t *testing.T) {
	series := &models.ExchangeRateSeries{
		Currency: "EUR",
		Observations: []models.RateObservation{
			{Date: "2024-01-02", Rate: 0.91},
			{Date: "2024-01-03", Rate: 0.92},
			{Date: "2024-01-05", Rate: 0.93},
			{Date: "2024-01-08", Rate: 0.94},
		},
	}

	for _, tc := range []struct {
		date string
		want float64
	}{
		{"2024-01-02", 0.91},
		{"2024-01-04", 0.92},
		{"2024-01-06", 0.93},
		{"2024-01-07", 0.93},
		{"2024-01-09", 0.94},
	} {
		rate, degraded := RateForDate(series, tc.date)
		assert.False(t, degraded, tc.date)
		assert.Equal(t, tc.want, rate, tc.date)
	}
}
