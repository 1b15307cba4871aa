package server

import (
	"fmt"

	"github.com/GGulati/IndexFunds/internal/models"
)

// worldIndices is the static catalog of world indices served by the
// market endpoint. Exchange is always "Index"; color is derived from the
// symbol so a symbol keeps its color across requests.
var worldIndices = []models.MarketIndex{
	// Americas
	{Symbol: "^GSPC", Name: "S&P 500", Region: "North America"},
	{Symbol: "^DJI", Name: "Dow Jones", Region: "North America"},
	{Symbol: "^IXIC", Name: "NASDAQ", Region: "North America"},
	{Symbol: "^RUT", Name: "Russell 2000", Region: "North America"},
	{Symbol: "^GSPTSE", Name: "S&P/TSX", Region: "North America"},
	{Symbol: "^BVSP", Name: "IBOVESPA", Region: "Latin America"},
	{Symbol: "^MXX", Name: "IPC Mexico", Region: "Latin America"},
	{Symbol: "^MERV", Name: "MERVAL", Region: "Latin America"},
	{Symbol: "^IPSA", Name: "IPSA Chile", Region: "Latin America"},

	// Europe
	{Symbol: "^FTSE", Name: "FTSE 100", Region: "Europe"},
	{Symbol: "^GDAXI", Name: "DAX 40", Region: "Europe"},
	{Symbol: "^FCHI", Name: "CAC 40", Region: "Europe"},
	{Symbol: "^STOXX50E", Name: "Euro Stoxx 50", Region: "Europe"},
	{Symbol: "^AEX", Name: "AEX", Region: "Europe"},
	{Symbol: "^IBEX", Name: "IBEX 35", Region: "Europe"},
	{Symbol: "^SSMI", Name: "SMI", Region: "Europe"},
	{Symbol: "^PTL", Name: "WIG 20", Region: "Europe"},
	{Symbol: "^BFX", Name: "BEL 20", Region: "Europe"},
	{Symbol: "IMOEX.ME", Name: "MOEX", Region: "Europe"},
	{Symbol: "^OMXC25", Name: "OMX Copenhagen", Region: "Europe"},
	{Symbol: "^OMXS30", Name: "OMX Stockholm", Region: "Europe"},
	{Symbol: "^OMXH25", Name: "OMX Helsinki", Region: "Europe"},

	// Asia Pacific
	{Symbol: "^N225", Name: "Nikkei 225", Region: "Asia Pacific"},
	{Symbol: "^HSI", Name: "Hang Seng", Region: "Asia Pacific"},
	{Symbol: "000001.SS", Name: "Shanghai", Region: "Asia Pacific"},
	{Symbol: "399001.SZ", Name: "Shenzhen", Region: "Asia Pacific"},
	{Symbol: "^STI", Name: "STI", Region: "Asia Pacific"},
	{Symbol: "^AXJO", Name: "ASX 200", Region: "Asia Pacific"},
	{Symbol: "^BSESN", Name: "SENSEX", Region: "Asia Pacific"},
	{Symbol: "^NSEI", Name: "NIFTY 50", Region: "Asia Pacific"},
	{Symbol: "^JKSE", Name: "Jakarta", Region: "Asia Pacific"},
	{Symbol: "^KS11", Name: "KOSPI", Region: "Asia Pacific"},
	{Symbol: "^TWII", Name: "TAIEX", Region: "Asia Pacific"},
	{Symbol: "^NZ50", Name: "NZX 50", Region: "Asia Pacific"},
	{Symbol: "^KLSE", Name: "KLCI", Region: "Asia Pacific"},
	{Symbol: "^SET.BK", Name: "SET", Region: "Asia Pacific"},

	// Middle East & Africa
	{Symbol: "^TA125.TA", Name: "TA-125", Region: "Middle East"},
	{Symbol: "^TASI.SR", Name: "TASI", Region: "Middle East"},
	{Symbol: "^CASE30", Name: "EGX 30", Region: "Africa"},
	{Symbol: "^JN0U.JO", Name: "JSE Top 40", Region: "Africa"},
}

// currencyCatalog maps currency codes to display metadata for currencies
// the indices above trade in.
var currencyCatalog = map[string]models.CurrencyInfo{
	"USD": {Code: "USD", Name: "US Dollar", Symbol: "$", Country: "US"},
	"CAD": {Code: "CAD", Name: "Canadian Dollar", Symbol: "$", Country: "CA"},
	"BRL": {Code: "BRL", Name: "Brazilian Real", Symbol: "R$", Country: "BR"},
	"MXN": {Code: "MXN", Name: "Mexican Peso", Symbol: "$", Country: "MX"},
	"ARS": {Code: "ARS", Name: "Argentine Peso", Symbol: "$", Country: "AR"},
	"CLP": {Code: "CLP", Name: "Chilean Peso", Symbol: "$", Country: "CL"},
	"GBP": {Code: "GBP", Name: "British Pound", Symbol: "£", Country: "GB"},
	"EUR": {Code: "EUR", Name: "Euro", Symbol: "€", Country: "EU"},
	"CHF": {Code: "CHF", Name: "Swiss Franc", Symbol: "Fr", Country: "CH"},
	"PLN": {Code: "PLN", Name: "Polish Zloty", Symbol: "zł", Country: "PL"},
	"RUB": {Code: "RUB", Name: "Russian Ruble", Symbol: "₽", Country: "RU"},
	"DKK": {Code: "DKK", Name: "Danish Krone", Symbol: "kr", Country: "DK"},
	"SEK": {Code: "SEK", Name: "Swedish Krona", Symbol: "kr", Country: "SE"},
	"JPY": {Code: "JPY", Name: "Japanese Yen", Symbol: "¥", Country: "JP"},
	"HKD": {Code: "HKD", Name: "Hong Kong Dollar", Symbol: "$", Country: "HK"},
	"CNY": {Code: "CNY", Name: "Chinese Yuan", Symbol: "¥", Country: "CN"},
	"SGD": {Code: "SGD", Name: "Singapore Dollar", Symbol: "$", Country: "SG"},
	"AUD": {Code: "AUD", Name: "Australian Dollar", Symbol: "$", Country: "AU"},
	"INR": {Code: "INR", Name: "Indian Rupee", Symbol: "₹", Country: "IN"},
	"IDR": {Code: "IDR", Name: "Indonesian Rupiah", Symbol: "Rp", Country: "ID"},
	"KRW": {Code: "KRW", Name: "South Korean Won", Symbol: "₩", Country: "KR"},
	"TWD": {Code: "TWD", Name: "New Taiwan Dollar", Symbol: "NT$", Country: "TW"},
	"NZD": {Code: "NZD", Name: "New Zealand Dollar", Symbol: "$", Country: "NZ"},
	"MYR": {Code: "MYR", Name: "Malaysian Ringgit", Symbol: "RM", Country: "MY"},
	"THB": {Code: "THB", Name: "Thai Baht", Symbol: "฿", Country: "TH"},
	"ILS": {Code: "ILS", Name: "Israeli Shekel", Symbol: "₪", Country: "IL"},
	"SAR": {Code: "SAR", Name: "Saudi Riyal", Symbol: "﷼", Country: "SA"},
	"EGP": {Code: "EGP", Name: "Egyptian Pound", Symbol: "£", Country: "EG"},
	"ZAR": {Code: "ZAR", Name: "South African Rand", Symbol: "R", Country: "ZA"},
}

// colorForSymbol derives a stable HSL color string from a symbol's
// characters, keeping saturation and lightness constant so every index
// gets a distinct but equally readable line color.
func colorForSymbol(symbol string) string {
	var sum int
	for _, r := range symbol {
		sum += int(r)
	}
	return fmt.Sprintf("hsl(%d, 65%%, 45%%)", sum%360)
}

// flagEmoji converts an ISO alpha-2 country code to its regional
// indicator pair. "EU" happens to map to the EU flag by the same rule.
func flagEmoji(countryCode string) string {
	out := make([]rune, 0, 2)
	for _, r := range countryCode {
		if r < 'A' || r > 'Z' {
			return ""
		}
		out = append(out, 127397+r)
	}
	return string(out)
}

// catalogIndices returns the world index catalog with colors filled in.
func catalogIndices() []models.MarketIndex {
	out := make([]models.MarketIndex, len(worldIndices))
	for i, idx := range worldIndices {
		idx.Exchange = "Index"
		idx.Color = colorForSymbol(idx.Symbol)
		out[i] = idx
	}
	return out
}

// lookupCurrency returns display metadata for a currency code, with the
// flag derived from the country code. Unknown codes return a bare entry.
func lookupCurrency(code string) models.CurrencyInfo {
	info, ok := currencyCatalog[code]
	if !ok {
		return models.CurrencyInfo{Code: code, Name: code, Symbol: code}
	}
	info.Flag = flagEmoji(info.Country)
	return info
}
