package models

// RateObservation is a single daily exchange-rate observation.
// Rate is expressed as units of the series currency per 1 USD.
type RateObservation struct {
	Date string  `json:"date"` // "YYYY-MM-DD"
	Rate float64 `json:"rate"`
}

// ExchangeRateSeries is a currency's historical USD exchange-rate series,
// ordered ascending by date.
type ExchangeRateSeries struct {
	Currency     string            `json:"currency"`
	Observations []RateObservation `json:"observations"`
}

// Empty reports whether the series has no observations.
func (s *ExchangeRateSeries) Empty() bool {
	return s == nil || len(s.Observations) == 0
}
