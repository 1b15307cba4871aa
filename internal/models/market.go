// Package models defines the data structures used across IndexFunds
package models

import (
	"fmt"
	"math"
	"strconv"
)

// Range is a named historical window supported by the chart API.
type Range string

const (
	Range1D  Range = "1d"
	Range5D  Range = "5d"
	Range1Mo Range = "1mo"
	Range6Mo Range = "6mo"
	RangeYTD Range = "ytd"
	Range1Y  Range = "1y"
	Range5Y  Range = "5y"
	Range10Y Range = "10y"
	Range20Y Range = "20y"
	RangeMax Range = "max"
)

// rangeIntervals is the fixed range→sampling-interval policy table.
// It is not configurable at call time.
var rangeIntervals = map[Range]string{
	Range1D:  "5m",
	Range5D:  "15m",
	Range1Mo: "1d",
	Range6Mo: "1d",
	RangeYTD: "1d",
	Range1Y:  "1d",
	Range5Y:  "1wk",
	Range10Y: "1mo",
	Range20Y: "1mo",
	RangeMax: "1mo",
}

// ParseRange validates a range token.
func ParseRange(s string) (Range, error) {
	r := Range(s)
	if _, ok := rangeIntervals[r]; !ok {
		return "", fmt.Errorf("unknown range %q", s)
	}
	return r, nil
}

// Interval returns the sampling interval token for the range.
func (r Range) Interval() string {
	if iv, ok := rangeIntervals[r]; ok {
		return iv
	}
	return "1d"
}

// Intraday reports whether the range samples within a trading day.
// Intraday data goes stale in minutes; historical bars do not.
func (r Range) Intraday() bool {
	return r == Range1D || r == Range5D
}

// PriceSeries is a single symbol's normalized price history.
// Timestamps are exchange-local epoch seconds, strictly ascending.
// The three slices are always the same length: samples with a null or
// NaN close are dropped at fetch time, keeping them in lockstep.
type PriceSeries struct {
	Symbol           string    `json:"symbol"`
	Timestamps       []int64   `json:"timestamp"`
	Closes           []float64 `json:"close"`
	Volumes          []int64   `json:"volume"`
	UTCOffsetSeconds int64     `json:"gmt_offset"`
	Currency         string    `json:"currency"`
}

// Empty reports whether the series has no usable samples.
func (s *PriceSeries) Empty() bool {
	return s == nil || len(s.Timestamps) == 0
}

// Quote is a current-price snapshot for a symbol.
type Quote struct {
	Symbol           string  `json:"symbol"`
	CurrentPrice     float64 `json:"current_price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"change_percent"`
	PreviousClose    float64 `json:"previous_close"`
	Volume           int64   `json:"volume"`
	FiftyTwoWeekLow  float64 `json:"fifty_two_week_low"`
	FiftyTwoWeekHigh float64 `json:"fifty_two_week_high"`
	LastUpdated      int64   `json:"last_updated"` // epoch seconds
	Currency         string  `json:"currency"`
}

// ChartMeta is the provider metadata attached to a chart response.
type ChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	GMTOffset          int64   `json:"gmtoffset"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	RegularMarketTime  int64   `json:"regularMarketTime"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	RegularMarketVolume int64  `json:"regularMarketVolume"`
	FiftyTwoWeekLow    float64 `json:"fiftyTwoWeekLow"`
	FiftyTwoWeekHigh   float64 `json:"fiftyTwoWeekHigh"`
}

// ChartResponse is the typed shape of a provider chart payload after
// boundary validation: parallel arrays with nullable closes and volumes.
type ChartResponse struct {
	Meta       ChartMeta
	Timestamps []int64
	Closes     []*float64
	Volumes    []*int64
}

// NullFloat64 is a float64 that marshals NaN as JSON null. Aligned series
// use NaN internally for "no observation yet"; chart consumers expect null.
type NullFloat64 float64

// IsNull reports whether the value represents a missing observation.
func (f NullFloat64) IsNull() bool {
	return math.IsNaN(float64(f))
}

// Null returns the missing-observation sentinel.
func Null() NullFloat64 {
	return NullFloat64(math.NaN())
}

// MarshalJSON encodes NaN as null.
func (f NullFloat64) MarshalJSON() ([]byte, error) {
	if f.IsNull() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

// UnmarshalJSON decodes null as NaN.
func (f *NullFloat64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Null()
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("cannot unmarshal %s into float64", string(data))
	}
	*f = NullFloat64(v)
	return nil
}
