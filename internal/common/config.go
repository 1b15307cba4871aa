// Package common provides shared utilities for IndexFunds
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for IndexFunds
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Clients     ClientsConfig `toml:"clients"`
	Cache       CacheConfig   `toml:"cache"`
	Chart       ChartConfig   `toml:"chart"`
	Logging     LoggingConfig `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
	FRED  FREDConfig  `toml:"fred"`
}

// YahooConfig holds Yahoo Finance chart API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// FREDConfig holds FRED API configuration
type FREDConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FREDConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// CacheConfig holds TTL policy for the in-memory caches.
// Durations are strings ("5m", "1h", "24h") parsed on access.
type CacheConfig struct {
	IntradaySeries string `toml:"intraday_series"` // 1d/5d price series
	HistorySeries  string `toml:"history_series"`  // daily and coarser bars
	Quote          string `toml:"quote"`           // current quote snapshots
	Rates          string `toml:"rates"`           // FX daily series
	JanitorSweep   string `toml:"janitor_sweep"`   // periodic cleanup interval
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetIntradaySeries returns the TTL for intraday price series.
func (c *CacheConfig) GetIntradaySeries() time.Duration {
	return parseDurationOr(c.IntradaySeries, 5*time.Minute)
}

// GetHistorySeries returns the TTL for historical price series.
func (c *CacheConfig) GetHistorySeries() time.Duration {
	return parseDurationOr(c.HistorySeries, 1*time.Hour)
}

// GetQuote returns the TTL for current quote snapshots.
func (c *CacheConfig) GetQuote() time.Duration {
	return parseDurationOr(c.Quote, 5*time.Minute)
}

// GetRates returns the TTL for exchange rate series.
func (c *CacheConfig) GetRates() time.Duration {
	return parseDurationOr(c.Rates, 24*time.Hour)
}

// GetJanitorSweep returns the interval between cache cleanup passes.
func (c *CacheConfig) GetJanitorSweep() time.Duration {
	return parseDurationOr(c.JanitorSweep, 10*time.Minute)
}

// ChartConfig holds rendering defaults for the PNG chart endpoint.
type ChartConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com/v8/finance",
				RateLimit: 5,
				Timeout:   "30s",
			},
			FRED: FREDConfig{
				BaseURL:   "https://api.stlouisfed.org/fred",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Cache: CacheConfig{
			IntradaySeries: "5m",
			HistorySeries:  "1h",
			Quote:          "5m",
			Rates:          "24h",
			JanitorSweep:   "10m",
		},
		Chart: ChartConfig{
			Width:  900,
			Height: 400,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("INDEXFUNDS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("INDEXFUNDS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("INDEXFUNDS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("INDEXFUNDS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	// FRED_API_KEY is the conventional variable name; the prefixed form wins
	// when both are set.
	if key := os.Getenv("FRED_API_KEY"); key != "" {
		config.Clients.FRED.APIKey = key
	}
	if key := os.Getenv("INDEXFUNDS_FRED_API_KEY"); key != "" {
		config.Clients.FRED.APIKey = key
	}

	if url := os.Getenv("INDEXFUNDS_YAHOO_BASE_URL"); url != "" {
		config.Clients.Yahoo.BaseURL = url
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
