package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GGulati/IndexFunds/internal/clients/fred"
	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/models"
	"github.com/GGulati/IndexFunds/internal/services/chart"
)

// --- System handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"version": common.GetVersion(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// --- Market handlers ---

// handleMarket serves the static world index catalog.
func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, catalogIndices())
}

// handleMarketQuote serves a current-price snapshot for one symbol.
func (s *Server) handleMarketQuote(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/market/quote/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "Symbol is required")
		return
	}

	quote, err := s.app.QuoteService.GetQuote(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Quote fetch failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"quote":    quote,
		"currency": lookupCurrency(quote.Currency),
	})
}

// --- History handlers ---

// parseChartRequest builds a ChartRequest from history query parameters.
func parseChartRequest(r *http.Request) (models.ChartRequest, error) {
	q := r.URL.Query()

	raw := strings.TrimSpace(q.Get("symbols"))
	if raw == "" {
		return models.ChartRequest{}, errors.New("symbols parameter is required")
	}
	symbols := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		return models.ChartRequest{}, errors.New("symbols parameter is required")
	}

	rangeToken := q.Get("range")
	if rangeToken == "" {
		rangeToken = string(models.Range1Y)
	}
	rng, err := models.ParseRange(rangeToken)
	if err != nil {
		return models.ChartRequest{}, err
	}

	return models.ChartRequest{
		Symbols:         symbols,
		Range:           rng,
		ConvertToUSD:    boolParam(q.Get("convert_to_usd")),
		PercentBasis:    boolParam(q.Get("percent_basis")),
		IsolateFailures: boolParam(q.Get("isolate_failures")),
	}, nil
}

func boolParam(v string) bool {
	return v == "true" || v == "1"
}

// handleHistory serves the aligned multi-symbol chart as JSON.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	req, err := parseChartRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	aligned, err := s.app.ChartService.BuildChart(r.Context(), req)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Chart build failed: %v", err))
		return
	}

	WriteJSON(w, http.StatusOK, aligned)
}

// handleHistoryChart serves the aligned chart rendered as a PNG.
func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	req, err := parseChartRequest(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	aligned, err := s.app.ChartService.BuildChart(r.Context(), req)
	if err != nil {
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Chart build failed: %v", err))
		return
	}

	png, err := chart.RenderPNG(aligned, s.app.Config.Chart.Width, s.app.Config.Chart.Height)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Chart render failed: %v", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- Exchange rate handlers ---

// handleExchangeRates serves a currency's historical USD rate series.
func (s *Server) handleExchangeRates(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	currency := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("currency")))
	if currency == "" {
		WriteError(w, http.StatusBadRequest, "Currency parameter is required")
		return
	}

	series, err := s.app.RatesService.GetRates(r.Context(), currency)
	if err != nil {
		if errors.Is(err, fred.ErrUnknownCurrency) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(w, http.StatusBadGateway, fmt.Sprintf("Rate fetch failed: %v", err))
		return
	}

	observations := filterObservations(series.Observations,
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"currency": lookupCurrency(currency),
		"rates":    observations,
	})
}

// filterObservations narrows a rate series to an optional inclusive date
// window. The full series stays cached; the window is presentation only.
func filterObservations(obs []models.RateObservation, start, end string) []models.RateObservation {
	if start == "" && end == "" {
		return obs
	}
	out := make([]models.RateObservation, 0, len(obs))
	for _, o := range obs {
		if start != "" && o.Date < start {
			continue
		}
		if end != "" && o.Date > end {
			continue
		}
		out = append(out, o)
	}
	return out
}
