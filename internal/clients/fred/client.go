// Package fred provides a client for the FRED series observations API
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/interfaces"
	"github.com/GGulati/IndexFunds/internal/models"
)

const (
	DefaultBaseURL   = "https://api.stlouisfed.org/fred"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// ErrUnknownCurrency marks a currency code with no FRED exchange-rate series.
var ErrUnknownCurrency = errors.New("no FRED series for currency")

// ErrMalformedResponse marks a payload without the expected observations shape.
var ErrMalformedResponse = errors.New("malformed observations response")

// specialSeriesIDs lists currencies whose FRED series ID does not follow
// the DEX{CUR}US pattern.
var specialSeriesIDs = map[string]string{
	"GBP": "DEXUSUK", // UK instead of GB
	"CHF": "DEXSZUS", // SZ for Switzerland
	"NZD": "DEXUSNZ",
	"ZAR": "DEXSFUS", // SF for South Africa
}

// SeriesID resolves the FRED daily exchange-rate series for a currency.
func SeriesID(currency string) (string, error) {
	if id, ok := specialSeriesIDs[currency]; ok {
		return id, nil
	}
	if len(currency) != 3 {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, currency)
	}
	return fmt.Sprintf("DEX%sUS", currency), nil
}

// APIError represents a non-success provider response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FRED API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Client implements the RatesClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new FRED client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// observationsResponse is the raw provider payload. Values are
// string-encoded decimals; FRED uses "." for days without an observation.
type observationsResponse struct {
	Observations []struct {
		Date  string `json:"date"`
		Value string `json:"value"`
	} `json:"observations"`
}

// GetObservations retrieves the full daily rate history for a currency.
// Non-numeric observations are dropped; the result is ordered ascending
// by date as returned by the provider.
func (c *Client) GetObservations(ctx context.Context, currency string) ([]models.RateObservation, error) {
	seriesID, err := SeriesID(currency)
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")

	path := "/series/observations"
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("currency", currency).Str("series_id", seriesID).Msg("FRED observations request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var payload observationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Observations == nil {
		return nil, fmt.Errorf("%w: missing observations for %s", ErrMalformedResponse, seriesID)
	}

	observations := make([]models.RateObservation, 0, len(payload.Observations))
	for _, obs := range payload.Observations {
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue // "." marks days without an observation
		}
		observations = append(observations, models.RateObservation{
			Date: obs.Date,
			Rate: v,
		})
	}

	return observations, nil
}

// Ensure Client implements RatesClient
var _ interfaces.RatesClient = (*Client)(nil)
