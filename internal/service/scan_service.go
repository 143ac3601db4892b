// Package service runs provider fetches through the edge and arbitrage scanners.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/better-bets/internal/logger"
	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/provider"
	"github.com/yourusername/better-bets/internal/scanner"
)

// ScanRequest is one combined EV + arbitrage scan
type ScanRequest struct {
	Sport          string
	Markets        string
	Regions        string
	MarketType     scanner.Bucket
	Book           string
	MinEdgePercent float64
	Stake          float64
}

// ScanResult holds both scanners' output for one fetched batch
type ScanResult struct {
	ScanID    uuid.UUID                `json:"scanId"`
	ScannedAt time.Time                `json:"scannedAt"`
	Sport     string                   `json:"sport"`
	Events    int                      `json:"events"`
	Cached    bool                     `json:"cached"`
	EV        []models.EdgeRecord      `json:"ev"`
	Arbs      []models.ArbitrageRecord `json:"arbs"`
}

// ScanService fetches odds once per scan and passes the batch to both scanners
type ScanService struct {
	fetcher   provider.Fetcher
	edges     *scanner.EdgeScanner
	arbitrage *scanner.ArbitrageScanner
	logger    *logger.ScanLogger
	now       func() time.Time
}

// NewScanService creates a new scan service
func NewScanService(fetcher provider.Fetcher, edges *scanner.EdgeScanner, arbs *scanner.ArbitrageScanner, log *logger.ScanLogger) *ScanService {
	if log == nil {
		log = logger.NewScanLogger(nil)
	}
	if edges == nil {
		edges = scanner.NewEdgeScanner(nil, scanner.DefaultEdgeConfig(), log)
	}
	if arbs == nil {
		arbs = scanner.NewArbitrageScanner(scanner.DefaultArbConfig(), log)
	}
	return &ScanService{
		fetcher:   fetcher,
		edges:     edges,
		arbitrage: arbs,
		logger:    log,
		now:       time.Now,
	}
}

// Scan fetches one batch in American odds and runs both scanners over it
func (s *ScanService) Scan(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	fetched, err := s.fetcher.FetchOdds(ctx, provider.Request{
		Sport:      req.Sport,
		Markets:    req.Markets,
		Regions:    req.Regions,
		OddsFormat: provider.OddsFormatAmerican,
	})
	if err != nil {
		return nil, err
	}

	ev, err := s.edges.ScanEdges(fetched.Events, scanner.EdgeParams{
		MarketType:     req.MarketType,
		Book:           req.Book,
		MinEdgePercent: scanner.ClampMinEdge(req.MinEdgePercent),
		Sport:          req.Sport,
	})
	if err != nil {
		return nil, fmt.Errorf("edge scan failed: %w", err)
	}

	arbs, err := s.arbitrage.ScanArbitrage(fetched.Events, scanner.ArbParams{
		Sport: req.Sport,
		Stake: req.Stake,
	})
	if err != nil {
		return nil, fmt.Errorf("arbitrage scan failed: %w", err)
	}

	result := &ScanResult{
		ScanID:    uuid.New(),
		ScannedAt: s.now().UTC(),
		Sport:     req.Sport,
		Events:    len(fetched.Events),
		Cached:    fetched.Cached,
		EV:        ev,
		Arbs:      arbs,
	}
	s.logger.LogScanRun(result.ScanID.String(), req.Sport, result.Events, len(ev), len(arbs), fetched.Cached)

	return result, nil
}

// Odds returns the provider payload untouched
func (s *ScanService) Odds(ctx context.Context, req provider.Request) (json.RawMessage, error) {
	fetched, err := s.fetcher.FetchOdds(ctx, req)
	if err != nil {
		return nil, err
	}
	return fetched.Raw, nil
}
