package chart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/models"
)

// mockQuoteService serves canned series per symbol.
type mockQuoteService struct {
	series map[string]*models.PriceSeries
	errs   map[string]error
}

func (m *mockQuoteService) GetPriceSeries(ctx context.Context, symbol string, rng models.Range) (*models.PriceSeries, error) {
	if err, ok := m.errs[symbol]; ok {
		return nil, err
	}
	if s, ok := m.series[symbol]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("no fixture for %s", symbol)
}

func (m *mockQuoteService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return nil, errors.New("not implemented")
}

// mockRatesService serves canned rate series per currency.
type mockRatesService struct {
	rates map[string]*models.ExchangeRateSeries
	errs  map[string]error
	calls []string
}

func (m *mockRatesService) GetRates(ctx context.Context, currency string) (*models.ExchangeRateSeries, error) {
	m.calls = append(m.calls, currency)
	if err, ok := m.errs[currency]; ok {
		return nil, err
	}
	if s, ok := m.rates[currency]; ok {
		return s, nil
	}
	return &models.ExchangeRateSeries{Currency: currency}, nil
}

func newTestChartService(quotes *mockQuoteService, rates *mockRatesService) *Service {
	if rates == nil {
		rates = &mockRatesService{}
	}
	return NewService(quotes, rates, common.NewSilentLogger())
}

func usdSeries(symbol string, timestamps []int64, closes []float64) *models.PriceSeries {
	volumes := make([]int64, len(timestamps))
	for i := range volumes {
		volumes[i] = int64(1000 + i)
	}
	return &models.PriceSeries{
		Symbol:     symbol,
		Timestamps: timestamps,
		Closes:     closes,
		Volumes:    volumes,
		Currency:   "USD",
	}
}

func values(t *testing.T, chart *models.AlignedChart, symbol string) []models.NullFloat64 {
	t.Helper()
	for _, s := range chart.Series {
		if s.Symbol == symbol {
			return s.Values
		}
	}
	t.Fatalf("symbol %s not in chart", symbol)
	return nil
}

func TestBuildChart_TimelineIsDedupedUnion(t *testing.T) {
	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{
		"A": usdSeries("A", []int64{100, 200}, []float64{1, 2}),
		"B": usdSeries("B", []int64{150, 200}, []float64{3, 4}),
	}}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols: []string{"A", "B"},
		Range:   models.Range1Y,
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 150, 200}, chart.Timeline)
}

func TestBuildChart_NormalizesExchangeLocalTimestamps(t *testing.T) {
	tokyo := usdSeries("^N225", []int64{32400, 32500}, []float64{1, 2})
	tokyo.UTCOffsetSeconds = 32400 // UTC+9
	newYork := usdSeries("^GSPC", []int64{-14400, -14300}, []float64{3, 4})
	newYork.UTCOffsetSeconds = -14400 // UTC-4

	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{
		"^N225": tokyo,
		"^GSPC": newYork,
	}}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols: []string{"^N225", "^GSPC"},
		Range:   models.Range1D,
	})
	require.NoError(t, err)

	// Both series start at UTC instant 0 after removing their offsets.
	assert.Equal(t, []int64{0, 100}, chart.Timeline)
}

func TestBuildChart_ForwardFillsWithoutBackfill(t *testing.T) {
	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{
		"A": usdSeries("A", []int64{100, 200, 300, 400, 500}, []float64{1, 2, 3, 4, 5}),
		"B": usdSeries("B", []int64{200, 500}, []float64{5, 8}),
	}}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols: []string{"A", "B"},
		Range:   models.Range1Y,
	})
	require.NoError(t, err)

	b := values(t, chart, "B")
	require.Len(t, b, 5)
	assert.True(t, b[0].IsNull(), "no back-fill before the first observation")
	assert.Equal(t, models.NullFloat64(5), b[1])
	assert.Equal(t, models.NullFloat64(5), b[2], "gap carries the last value forward")
	assert.Equal(t, models.NullFloat64(5), b[3])
	assert.Equal(t, models.NullFloat64(8), b[4])
}

func TestBuildChart_PercentBasis(t *testing.T) {
	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{
		"A": usdSeries("A", []int64{100, 200, 300}, []float64{50, 100, 75}),
	}}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols:      []string{"A"},
		Range:        models.Range1Y,
		PercentBasis: true,
	})
	require.NoError(t, err)

	a := values(t, chart, "A")
	assert.Equal(t, []models.NullFloat64{100, 200, 150}, a)
}

func TestBuildChart_PercentBasisSkipsLeadingNulls(t *testing.T) {
	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{
		"A": usdSeries("A", []int64{100, 200, 300}, []float64{1, 2, 3}),
		"B": usdSeries("B", []int64{200, 300}, []float64{40, 60}),
	}}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols:      []string{"A", "B"},
		Range:        models.Range1Y,
		PercentBasis: true,
	})
	require.NoError(t, err)

	b := values(t, chart, "B")
	assert.True(t, b[0].IsNull())
	assert.Equal(t, models.NullFloat64(100), b[1], "base is the first non-null value")
	assert.Equal(t, models.NullFloat64(150), b[2])
}

func TestBuildChart_ConvertsToUSDPerPointDate(t *testing.T) {
	const day = int64(86400)
	jpy := usdSeries("^N225", []int64{0, day}, []float64{30000, 30000})
	jpy.Currency = "JPY"

	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{"^N225": jpy}}
	rates := &mockRatesService{rates: map[string]*models.ExchangeRateSeries{
		"JPY": {
			Currency: "JPY",
			Observations: []models.RateObservation{
				{Date: "1970-01-01", Rate: 150},
				{Date: "1970-01-02", Rate: 100},
			},
		},
	}}
	svc := newTestChartService(quotes, rates)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols:      []string{"^N225"},
		Range:        models.Range1Y,
		ConvertToUSD: true,
	})
	require.NoError(t, err)

	// Same native price, different dates, different rates: the USD shape
	// reflects the rate movement.
	v := values(t, chart, "^N225")
	assert.InDelta(t, 200, float64(v[0]), 1e-9)
	assert.InDelta(t, 300, float64(v[1]), 1e-9)

	s := chart.Series[0]
	assert.Equal(t, "USD", s.Currency)
	assert.False(t, s.DegradedRate)
}

func TestBuildChart_USDConversionRoundTrip(t *testing.T) {
	const price = 17321.45
	const rate = 151.41
	jpy := usdSeries("^N225", []int64{0}, []float64{price})
	jpy.Currency = "JPY"

	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{"^N225": jpy}}
	rates := &mockRatesService{rates: map[string]*models.ExchangeRateSeries{
		"JPY": {Currency: "JPY", Observations: []models.RateObservation{{Date: "1970-01-01", Rate: rate}}},
	}}
	svc := newTestChartService(quotes, rates)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols:      []string{"^N225"},
		Range:        models.Range1Y,
		ConvertToUSD: true,
	})
	require.NoError(t, err)

	v := float64(values(t, chart, "^N225")[0])
	assert.InDelta(t, price, v*rate, 1e-9)
}

func TestBuildChart_MissingRateDegradesToIdentity(t *testing.T) {
	jpy := usdSeries("^N225", []int64{0}, []float64{30000})
	jpy.Currency = "JPY"

	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{"^N225": jpy}}
	rates := &mockRatesService{rates: map[string]*models.ExchangeRateSeries{
		"JPY": {Currency: "JPY", Observations: []models.RateObservation{{Date: "1999-01-01", Rate: 100}}},
	}}
	svc := newTestChartService(quotes, rates)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols:      []string{"^N225"},
		Range:        models.RangeMax,
		ConvertToUSD: true,
	})
	require.NoError(t, err)

	// 1970-01-01 precedes every observation: identity rate, flagged.
	s := chart.Series[0]
	assert.Equal(t, models.NullFloat64(30000), s.Values[0])
	assert.True(t, s.DegradedRate)
}

func TestBuildChart_USDSeriesSkipsRateFetch(t *testing.T) {
	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{
		"^GSPC": usdSeries("^GSPC", []int64{100}, []float64{5000}),
	}}
	rates := &mockRatesService{}
	svc := newTestChartService(quotes, rates)

	_, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols:      []string{"^GSPC"},
		Range:        models.Range1Y,
		ConvertToUSD: true,
	})
	require.NoError(t, err)
	assert.Empty(t, rates.calls)
}

func TestBuildChart_EmptySymbolContributesNullColumn(t *testing.T) {
	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{
		"A":     usdSeries("A", []int64{100, 200}, []float64{1, 2}),
		"EMPTY": {Symbol: "EMPTY", Currency: "USD"},
	}}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols: []string{"A", "EMPTY"},
		Range:   models.Range1Y,
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 200}, chart.Timeline, "empty series contributes no timestamps")

	var empty *models.AlignedSeries
	for i := range chart.Series {
		if chart.Series[i].Symbol == "EMPTY" {
			empty = &chart.Series[i]
		}
	}
	require.NotNil(t, empty)
	assert.True(t, empty.Empty)
	require.Len(t, empty.Values, 2)
	assert.True(t, empty.Values[0].IsNull())
	assert.True(t, empty.Values[1].IsNull())
}

func TestBuildChart_DefaultFailsWholeBatch(t *testing.T) {
	wantErr := errors.New("provider down")
	quotes := &mockQuoteService{
		series: map[string]*models.PriceSeries{
			"A": usdSeries("A", []int64{100}, []float64{1}),
		},
		errs: map[string]error{"BAD": wantErr},
	}
	svc := newTestChartService(quotes, nil)

	_, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols: []string{"A", "BAD"},
		Range:   models.Range1Y,
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestBuildChart_IsolateFailuresKeepsSiblings(t *testing.T) {
	quotes := &mockQuoteService{
		series: map[string]*models.PriceSeries{
			"A": usdSeries("A", []int64{100, 200}, []float64{1, 2}),
		},
		errs: map[string]error{"BAD": errors.New("provider down")},
	}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols:         []string{"A", "BAD"},
		Range:           models.Range1Y,
		IsolateFailures: true,
	})
	require.NoError(t, err)

	require.Len(t, chart.Series, 2)
	assert.Equal(t, []int64{100, 200}, chart.Timeline)

	a := values(t, chart, "A")
	assert.Equal(t, models.NullFloat64(1), a[0])

	for _, s := range chart.Series {
		if s.Symbol == "BAD" {
			assert.True(t, s.Empty)
			assert.Contains(t, s.FetchError, "provider down")
			assert.True(t, s.Values[0].IsNull())
		}
	}
}

func TestBuildChart_NoSymbols(t *testing.T) {
	svc := newTestChartService(&mockQuoteService{}, nil)
	_, err := svc.BuildChart(context.Background(), models.ChartRequest{Range: models.Range1Y})
	assert.ErrorIs(t, err, ErrNoSymbols)
}

func TestBuildChart_WindowStatsAndSummary(t *testing.T) {
	series := usdSeries("A", []int64{100, 200, 300}, []float64{10, 30, 20})
	series.Volumes = []int64{1, 2, 3}
	quotes := &mockQuoteService{series: map[string]*models.PriceSeries{"A": series}}
	svc := newTestChartService(quotes, nil)

	chart, err := svc.BuildChart(context.Background(), models.ChartRequest{
		Symbols: []string{"A"},
		Range:   models.Range1Y,
	})
	require.NoError(t, err)

	s := chart.Series[0]
	assert.Equal(t, models.NullFloat64(10), s.WindowLow)
	assert.Equal(t, models.NullFloat64(30), s.WindowHigh)
	assert.Equal(t, 30.0, s.PreviousClose, "close before the latest sample")
	assert.Equal(t, int64(3), s.Volume)
}
