// Package config provides configuration management for the Better Bets application.
package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "BETTERBETS"
	defaultConfigPath = "config/config.yaml"
	configPathEnv     = "BETTERBETS_CONFIG_PATH"
)

// DefaultAllowedSports is the sport allow-list used when none is configured
var DefaultAllowedSports = []string{
	"americanfootball_nfl",
	"basketball_nba",
	"baseball_mlb",
	"icehockey_nhl",
	"soccer_epl",
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		_ = godotenv.Load()
		return
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// ResolvePath returns configPath, the BETTERBETS_CONFIG_PATH override, or the default path
func ResolvePath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if envPath := os.Getenv(configPathEnv); envPath != "" {
		return envPath
	}
	return defaultConfigPath
}

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	configPath = ResolvePath(configPath)

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	configPath = ResolvePath(configPath)

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "better-bets")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.timezone", "UTC")

	v.SetDefault("server.port", 4000)
	v.SetDefault("server.cors_origins", []string{"http://localhost:4000"})
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)

	v.SetDefault("odds_api.base_url", "https://api.the-odds-api.com")
	v.SetDefault("odds_api.timeout_seconds", 10)
	v.SetDefault("odds_api.max_retries", 3)
	v.SetDefault("odds_api.rate_limit", 2.0)
	v.SetDefault("odds_api.cache_ttl_seconds", 15)
	v.SetDefault("odds_api.default_markets", "h2h,spreads,totals")
	v.SetDefault("odds_api.default_regions", "us")

	v.SetDefault("scan.point_tolerance", 0.01)
	v.SetDefault("scan.min_fair_probability", 0.05)
	v.SetDefault("scan.max_fair_probability", 0.95)
	v.SetDefault("scan.max_abs_edge_percent", 80.0)
	v.SetDefault("scan.notional_stake", 100.0)
	v.SetDefault("scan.allowed_sports", DefaultAllowedSports)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("watch.interval_seconds", 60)
	v.SetDefault("watch.sports", []string{"basketball_nba"})
	v.SetDefault("watch.top_n", 10)
	v.SetDefault("watch.min_edge_percent", 0.0)

	// AutomaticEnv only resolves keys viper knows about; secrets have no default
	_ = v.BindEnv("odds_api.api_key", envPrefix+"_ODDS_API_API_KEY", "ODDS_API_KEY")
	_ = v.BindEnv("server.api_key", envPrefix+"_SERVER_API_KEY", "BETTERBETS_API_KEY")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

// LoadAndValidate loads .env files, reads the config with defaults, overlays
// AWS secrets when AWS_SECRETS_ENABLED=true, and validates the result
func LoadAndValidate(ctx context.Context, configPath string) (*Config, error) {
	LoadDotEnv()

	cfg, err := LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}

	if SecretsEnabled() {
		if err := LoadSecretsFromAWS(ctx, cfg, "", ""); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
