package models

// MarketIndex is a static catalog entry for a world index.
type MarketIndex struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Region   string `json:"region"`
	Color    string `json:"color"`
}

// CurrencyInfo is display metadata for a currency code.
type CurrencyInfo struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	Country string `json:"country"`
	Flag    string `json:"flag"`
}
