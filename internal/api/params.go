package api

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/better-bets/internal/config"
	"github.com/yourusername/better-bets/internal/odds"
	"github.com/yourusername/better-bets/internal/provider"
	"github.com/yourusername/better-bets/internal/scanner"
	"github.com/yourusername/better-bets/internal/service"
)

const (
	DefaultMinEdge = 0.0
	DefaultStake   = 100.0
	MinStake       = 1.0
	MaxStake       = 100000.0

	msgInvalidSport = "Invalid or missing sport"
)

// queryParser turns request query strings into service requests
type queryParser struct {
	validate       *validator.Validate
	sportRule      string
	defaultMarkets string
	defaultRegions string
}

func newQueryParser(allowedSports []string, defaultMarkets, defaultRegions string) *queryParser {
	if defaultMarkets == "" {
		defaultMarkets = provider.DefaultMarkets
	}
	if defaultRegions == "" {
		defaultRegions = provider.DefaultRegions
	}
	if len(allowedSports) == 0 {
		allowedSports = config.DefaultAllowedSports
	}
	return &queryParser{
		validate:       validator.New(),
		sportRule:      "required,oneof=" + strings.Join(allowedSports, " "),
		defaultMarkets: defaultMarkets,
		defaultRegions: defaultRegions,
	}
}

// sport returns the trimmed sport key, or a ParamError when it is not allowed
func (p *queryParser) sport(q url.Values) (string, error) {
	sport := strings.TrimSpace(q.Get("sport"))
	if err := p.validate.Var(sport, p.sportRule); err != nil {
		return "", invalidParam("sport", msgInvalidSport)
	}
	return sport, nil
}

func (p *queryParser) oddsRequest(q url.Values) (provider.Request, error) {
	sport, err := p.sport(q)
	if err != nil {
		return provider.Request{}, err
	}
	return provider.Request{
		Sport:      sport,
		Markets:    valueOr(q.Get("markets"), p.defaultMarkets),
		Regions:    valueOr(q.Get("regions"), p.defaultRegions),
		OddsFormat: oddsFormat(q.Get("oddsFormat")),
	}, nil
}

func (p *queryParser) scanRequest(q url.Values) (service.ScanRequest, error) {
	sport, err := p.sport(q)
	if err != nil {
		return service.ScanRequest{}, err
	}
	bucket, err := scanner.ParseBucket(q.Get("marketType"))
	if err != nil {
		return service.ScanRequest{}, invalidParam("marketType", "marketType must be one of all, main, props")
	}
	return service.ScanRequest{
		Sport:          sport,
		Markets:        valueOr(q.Get("markets"), p.defaultMarkets),
		Regions:        valueOr(q.Get("regions"), p.defaultRegions),
		MarketType:     bucket,
		Book:           strings.TrimSpace(q.Get("book")),
		MinEdgePercent: parseNumber(q.Get("minEdge"), scanner.MinEdgeFloor, scanner.MinEdgeCeiling, DefaultMinEdge),
		Stake:          parseNumber(q.Get("stake"), MinStake, MaxStake, DefaultStake),
	}, nil
}

// parseNumber reads raw as a float clamped to [min, max]; empty or
// non-finite input yields def
func parseNumber(raw string, min, max, def float64) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return def
	}
	return odds.Clamp(n, min, max)
}

// oddsFormat accepts american or decimal; anything else is american
func oddsFormat(raw string) string {
	if raw == provider.OddsFormatDecimal {
		return provider.OddsFormatDecimal
	}
	return provider.OddsFormatAmerican
}

func valueOr(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
