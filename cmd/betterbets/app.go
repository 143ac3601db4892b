package main

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/better-bets/internal/api"
	"github.com/yourusername/better-bets/internal/config"
	"github.com/yourusername/better-bets/internal/devig"
	"github.com/yourusername/better-bets/internal/health"
	"github.com/yourusername/better-bets/internal/logger"
	"github.com/yourusername/better-bets/internal/metrics"
	"github.com/yourusername/better-bets/internal/provider"
	"github.com/yourusername/better-bets/internal/scanner"
	"github.com/yourusername/better-bets/internal/service"
)

// app holds the wired provider and scan stack
type app struct {
	httpClient *provider.RateLimitedHTTPClient
	fetcher    *provider.CachedClient
	service    *service.ScanService
	health     *health.Handler
	logger     *logrus.Logger
}

func newAppLogger(cfg *config.Config) *logrus.Logger {
	return logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
}

func buildApp(cfg *config.Config, log *logrus.Logger) *app {
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
	}

	httpCfg := provider.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.OddsAPITimeout()
	httpCfg.MaxRetries = cfg.OddsAPI.MaxRetries
	httpCfg.RateLimit = cfg.OddsAPI.RateLimit
	httpClient := provider.NewRateLimitedHTTPClient(httpCfg, log)

	client := provider.NewClient(httpClient, cfg.OddsAPI.BaseURL, cfg.OddsAPI.APIKey, log)
	fetcher := provider.NewCachedClient(client, provider.NewCache(cfg.CacheTTL(), nil), log)
	log.WithFields(logrus.Fields{
		"base_url":  cfg.OddsAPI.BaseURL,
		"cache_ttl": fetcher.Cache().TTL().String(),
	}).Debug("Odds provider configured")

	estimator := devig.NewEstimator(devig.Config{
		PointTolerance: cfg.Scan.PointTolerance,
		MinProbability: cfg.Scan.MinFairProbability,
		MaxProbability: cfg.Scan.MaxFairProbability,
	})
	scanLog := logger.NewScanLogger(log)
	edges := scanner.NewEdgeScanner(estimator, scanner.EdgeConfig{
		MaxAbsEdgePercent: cfg.Scan.MaxAbsEdgePercent,
		Location:          cfg.Location(),
	}, scanLog)
	arbs := scanner.NewArbitrageScanner(scanner.ArbConfig{
		NotionalStake: cfg.Scan.NotionalStake,
		Location:      cfg.Location(),
	}, scanLog)

	hh := health.NewHandler(health.Config{
		ServiceName:  cfg.App.Name,
		Version:      Version,
		Commit:       GitCommit,
		Logger:       log,
		CheckTimeout: 3 * time.Second,
	})
	hh.AddCheck("odds_provider", httpClient)

	return &app{
		httpClient: httpClient,
		fetcher:    fetcher,
		service:    service.NewScanService(fetcher, edges, arbs, scanLog),
		health:     hh,
		logger:     log,
	}
}

func (a *app) newServer(cfg *config.Config) *api.Server {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	return api.NewServer(api.Config{
		Addr:           cfg.ListenAddr(),
		APIKey:         cfg.Server.APIKey,
		Production:     cfg.IsProduction(),
		CORSOrigins:    cfg.Server.CORSOrigins,
		AllowedSports:  cfg.Scan.AllowedSports,
		DefaultMarkets: cfg.OddsAPI.DefaultMarkets,
		DefaultRegions: cfg.OddsAPI.DefaultRegions,
		StaticDir:      cfg.Server.StaticDir,
		MetricsPath:    metricsPath,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}, a.service, a.health, a.logger)
}

func (a *app) close() {
	hits, misses, ratio := a.fetcher.Cache().Stats()
	a.logger.WithFields(logrus.Fields{
		"cache_hits":      hits,
		"cache_misses":    misses,
		"cache_hit_ratio": ratio,
		"cache_entries":   a.fetcher.Cache().ItemCount(),
		"circuit_open":    a.httpClient.IsOpen(),
	}).Debug("Odds provider stats")
	if err := a.httpClient.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close odds provider client")
	}
}
