// Package yahoo provides a client for the Yahoo Finance chart API
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/interfaces"
	"github.com/GGulati/IndexFunds/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com/v8/finance"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second
)

// ErrMalformedResponse marks a payload that decoded but did not carry the
// expected chart structure. Distinct from APIError so callers can tell a
// provider outage from a schema drift.
var ErrMalformedResponse = errors.New("malformed chart response")

// APIError represents a non-success provider response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Client implements the QuoteClient interface
type Client struct {
	baseURL    string
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

// NewClient creates a new Yahoo Finance chart client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
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

// chartEnvelope is the raw provider payload.
type chartEnvelope struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol              string  `json:"symbol"`
				Currency            string  `json:"currency"`
				GMTOffset           int64   `json:"gmtoffset"`
				RegularMarketPrice  float64 `json:"regularMarketPrice"`
				RegularMarketTime   int64   `json:"regularMarketTime"`
				RegularMarketVolume int64   `json:"regularMarketVolume"`
				ChartPreviousClose  float64 `json:"chartPreviousClose"`
				FiftyTwoWeekLow     float64 `json:"fiftyTwoWeekLow"`
				FiftyTwoWeekHigh    float64 `json:"fiftyTwoWeekHigh"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetChart retrieves raw chart data for a symbol, range, and interval.
func (c *Client) GetChart(ctx context.Context, symbol string, rng models.Range, interval string) (*models.ChartResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("range", string(rng))
	params.Set("interval", interval)

	path := fmt.Sprintf("/chart/%s", url.PathEscape(symbol))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	c.logger.Debug().Str("symbol", symbol).Str("range", string(rng)).Str("interval", interval).Msg("Yahoo chart request")

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

	var envelope chartEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if envelope.Chart.Error != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    envelope.Chart.Error.Description,
			Endpoint:   path,
		}
	}
	if len(envelope.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: no result for %s", ErrMalformedResponse, symbol)
	}

	result := envelope.Chart.Result[0]
	out := &models.ChartResponse{
		Meta: models.ChartMeta{
			Symbol:              result.Meta.Symbol,
			Currency:            result.Meta.Currency,
			GMTOffset:           result.Meta.GMTOffset,
			RegularMarketPrice:  result.Meta.RegularMarketPrice,
			RegularMarketTime:   result.Meta.RegularMarketTime,
			RegularMarketVolume: result.Meta.RegularMarketVolume,
			ChartPreviousClose:  result.Meta.ChartPreviousClose,
			FiftyTwoWeekLow:     result.Meta.FiftyTwoWeekLow,
			FiftyTwoWeekHigh:    result.Meta.FiftyTwoWeekHigh,
		},
		Timestamps: result.Timestamp,
	}
	if out.Meta.Symbol == "" {
		out.Meta.Symbol = symbol
	}
	if out.Meta.Currency == "" {
		out.Meta.Currency = "USD" // provider omits currency for some indices
	}

	if len(result.Indicators.Quote) > 0 {
		quote := result.Indicators.Quote[0]
		if len(quote.Close) != len(result.Timestamp) {
			return nil, fmt.Errorf("%w: %d timestamps but %d closes", ErrMalformedResponse, len(result.Timestamp), len(quote.Close))
		}
		out.Closes = quote.Close
		out.Volumes = quote.Volume
	} else if len(result.Timestamp) > 0 {
		return nil, fmt.Errorf("%w: timestamps without quote indicators", ErrMalformedResponse)
	}

	return out, nil
}

// Ensure Client implements QuoteClient
var _ interfaces.QuoteClient = (*Client)(nil)
