package models

// ChartRequest selects the symbols, window, and normalizations for an
// aligned chart build.
type ChartRequest struct {
	Symbols      []string `json:"symbols"`
	Range        Range    `json:"range"`
	ConvertToUSD bool     `json:"convert_to_usd"`
	PercentBasis bool     `json:"percent_basis"`

	// IsolateFailures collects a per-symbol result-or-error instead of
	// failing the whole batch on the first upstream error. Off by default
	// for compatibility with the all-or-nothing behavior.
	IsolateFailures bool `json:"isolate_failures"`
}

// AlignedSeries is one symbol's column on the shared timeline. Values has
// the same length as the chart's Timeline; missing observations are null.
type AlignedSeries struct {
	Symbol   string        `json:"symbol"`
	Currency string        `json:"currency"`
	Values   []NullFloat64 `json:"values"`

	// Summary stats over the requested window.
	PreviousClose float64     `json:"previous_close"`
	Volume        int64       `json:"volume"`
	WindowLow     NullFloat64 `json:"window_low"`
	WindowHigh    NullFloat64 `json:"window_high"`

	// Empty marks a symbol that contributed zero usable samples; its
	// Values column is all null and it should be skipped when rendering.
	Empty bool `json:"empty,omitempty"`

	// DegradedRate marks that at least one point fell back to the identity
	// exchange rate because no FX observation was available for its date.
	DegradedRate bool `json:"degraded_rate,omitempty"`

	// FetchError carries the upstream failure for this symbol when the
	// request isolated failures; empty otherwise.
	FetchError string `json:"fetch_error,omitempty"`
}

// AlignedChart is the shared-timeline result of an alignment pass.
// Timeline is strictly ascending UTC epoch seconds, the deduplicated union
// of every input series' UTC-normalized timestamps.
type AlignedChart struct {
	Range        Range           `json:"range"`
	Timeline     []int64         `json:"timeline"`
	Series       []AlignedSeries `json:"series"`
	ConvertedUSD bool            `json:"converted_usd"`
	PercentBasis bool            `json:"percent_basis"`
}
