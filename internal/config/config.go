// Package config provides configuration management for the Better Bets application.
package config

import (
	"fmt"
	"time"
	// timezone names resolve in minimal containers
	_ "time/tzdata"
)

// Config represents the complete application configuration
type Config struct {
	App     AppConfig     `mapstructure:"app" validate:"required"`
	Server  ServerConfig  `mapstructure:"server" validate:"required"`
	OddsAPI OddsAPIConfig `mapstructure:"odds_api" validate:"required"`
	Scan    ScanConfig    `mapstructure:"scan" validate:"required"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Watch   WatchConfig   `mapstructure:"watch"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
	Timezone    string `mapstructure:"timezone" validate:"omitempty,timezone"`
}

// ServerConfig represents the HTTP API configuration
type ServerConfig struct {
	Port                int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	CORSOrigins         []string `mapstructure:"cors_origins"`
	APIKey              string   `mapstructure:"api_key"`
	StaticDir           string   `mapstructure:"static_dir"`
	ReadTimeoutSeconds  int      `mapstructure:"read_timeout_seconds" validate:"gte=0"`
	WriteTimeoutSeconds int      `mapstructure:"write_timeout_seconds" validate:"gte=0"`
}

// OddsAPIConfig represents the upstream odds provider configuration
type OddsAPIConfig struct {
	BaseURL         string  `mapstructure:"base_url" validate:"required,url"`
	APIKey          string  `mapstructure:"api_key" validate:"required"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
	DefaultMarkets  string  `mapstructure:"default_markets" validate:"required"`
	DefaultRegions  string  `mapstructure:"default_regions" validate:"required"`
}

// ScanConfig represents the scanner heuristics
type ScanConfig struct {
	PointTolerance     float64  `mapstructure:"point_tolerance" validate:"required,gt=0"`
	MinFairProbability float64  `mapstructure:"min_fair_probability" validate:"required,gt=0,lt=1"`
	MaxFairProbability float64  `mapstructure:"max_fair_probability" validate:"required,gt=0,lt=1"`
	MaxAbsEdgePercent  float64  `mapstructure:"max_abs_edge_percent" validate:"required,gt=0"`
	NotionalStake      float64  `mapstructure:"notional_stake" validate:"required,gt=0"`
	AllowedSports      []string `mapstructure:"allowed_sports" validate:"required,min=1,sports"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// WatchConfig represents periodic scan configuration
type WatchConfig struct {
	IntervalSeconds int      `mapstructure:"interval_seconds" validate:"omitempty,gte=5"`
	Sports          []string `mapstructure:"sports" validate:"omitempty,sports"`
	TopN            int      `mapstructure:"top_n" validate:"gte=0"`
	MinEdgePercent  float64  `mapstructure:"min_edge_percent" validate:"gte=-10,lte=100"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ListenAddr returns the HTTP listen address
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Location returns the display timezone for event times, UTC when unset or unknown
func (c *Config) Location() *time.Location {
	if c.App.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsSportAllowed reports whether sport is in the allowed list
func (c *Config) IsSportAllowed(sport string) bool {
	for _, s := range c.Scan.AllowedSports {
		if s == sport {
			return true
		}
	}
	return false
}

// OddsAPITimeout returns the upstream request timeout
func (c *Config) OddsAPITimeout() time.Duration {
	return time.Duration(c.OddsAPI.TimeoutSeconds) * time.Second
}

// CacheTTL returns the provider cache freshness window
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.OddsAPI.CacheTTLSeconds) * time.Second
}

// WatchInterval returns the periodic scan interval
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Watch.IntervalSeconds) * time.Second
}
