// Package app wires configuration, clients, caches, and services into a
// single application container shared by the server binary and tests.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/GGulati/IndexFunds/internal/cache"
	"github.com/GGulati/IndexFunds/internal/clients/fred"
	"github.com/GGulati/IndexFunds/internal/clients/yahoo"
	"github.com/GGulati/IndexFunds/internal/common"
	"github.com/GGulati/IndexFunds/internal/interfaces"
	"github.com/GGulati/IndexFunds/internal/models"
	"github.com/GGulati/IndexFunds/internal/services/chart"
	"github.com/GGulati/IndexFunds/internal/services/quote"
	"github.com/GGulati/IndexFunds/internal/services/rates"
)

// App holds all initialized services, clients, and caches.
type App struct {
	Config *common.Config
	Logger *common.Logger

	YahooClient interfaces.QuoteClient
	FREDClient  interfaces.RatesClient

	QuoteService interfaces.QuoteService
	RatesService interfaces.RatesService
	ChartService interfaces.ChartService

	SeriesCache *cache.Cache[quote.SeriesKey, *models.PriceSeries]
	QuoteCache  *cache.Cache[string, *models.Quote]
	RatesCache  *cache.Cache[string, *models.ExchangeRateSeries]

	StartupTime time.Time

	janitorCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, logging, caches, clients, and
// services. configPath may be empty, in which case INDEXFUNDS_CONFIG and
// then the binary directory are checked.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("INDEXFUNDS_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "indexfunds.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/indexfunds.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := common.NewLogger(config.Logging.Level)

	if config.Clients.FRED.APIKey == "" {
		logger.Warn().Msg("FRED API key not configured - currency conversion will degrade to identity rates")
	}

	a := &App{
		Config:      config,
		Logger:      logger,
		SeriesCache: cache.New[quote.SeriesKey, *models.PriceSeries](config.Cache.GetHistorySeries()),
		QuoteCache:  cache.New[string, *models.Quote](config.Cache.GetQuote()),
		RatesCache:  cache.New[string, *models.ExchangeRateSeries](config.Cache.GetRates()),
		StartupTime: time.Now(),
	}

	a.YahooClient = yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	a.FREDClient = fred.NewClient(config.Clients.FRED.APIKey,
		fred.WithBaseURL(config.Clients.FRED.BaseURL),
		fred.WithLogger(logger),
		fred.WithRateLimit(config.Clients.FRED.RateLimit),
		fred.WithTimeout(config.Clients.FRED.GetTimeout()),
	)

	a.QuoteService = quote.NewService(a.YahooClient, a.SeriesCache, a.QuoteCache, config.Cache, logger)
	a.RatesService = rates.NewService(a.FREDClient, a.RatesCache, config.Cache, logger)
	a.ChartService = chart.NewService(a.QuoteService, a.RatesService, logger)

	a.startJanitors()

	logger.Info().
		Str("environment", config.Environment).
		Str("config", configPath).
		Msg("Application initialized")

	return a, nil
}

// startJanitors runs a periodic cleanup pass over every cache so entries
// for keys that are never re-read do not accumulate.
func (a *App) startJanitors() {
	ctx, cancel := context.WithCancel(context.Background())
	a.janitorCancel = cancel

	interval := a.Config.Cache.GetJanitorSweep()
	a.SeriesCache.StartJanitor(ctx, interval)
	a.QuoteCache.StartJanitor(ctx, interval)
	a.RatesCache.StartJanitor(ctx, interval)
}

// Close stops background maintenance.
func (a *App) Close() {
	if a.janitorCancel != nil {
		a.janitorCancel()
	}
}
