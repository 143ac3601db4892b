// Package devig estimates vig-free probabilities from cross-book odds.
package devig

import (
	"math"

	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/odds"
	"github.com/yourusername/better-bets/internal/quotes"
)

const (
	DefaultPointTolerance = 0.01
	DefaultMinProbability = 0.05
	DefaultMaxProbability = 0.95
)

// Config holds the estimator heuristics
type Config struct {
	PointTolerance float64
	MinProbability float64
	MaxProbability float64
}

// DefaultConfig returns the standard tolerance and clamp bounds
func DefaultConfig() Config {
	return Config{
		PointTolerance: DefaultPointTolerance,
		MinProbability: DefaultMinProbability,
		MaxProbability: DefaultMaxProbability,
	}
}

// Estimator computes fair probabilities by normalising the best price per
// outcome across every book quoting the same market and line.
type Estimator struct {
	config Config
}

// NewEstimator creates an estimator; zero-valued config fields take defaults
func NewEstimator(cfg Config) *Estimator {
	def := DefaultConfig()
	if cfg.PointTolerance <= 0 {
		cfg.PointTolerance = def.PointTolerance
	}
	if cfg.MinProbability <= 0 {
		cfg.MinProbability = def.MinProbability
	}
	if cfg.MaxProbability <= 0 || cfg.MaxProbability >= 1 {
		cfg.MaxProbability = def.MaxProbability
	}
	if cfg.MinProbability >= cfg.MaxProbability {
		cfg.MinProbability, cfg.MaxProbability = def.MinProbability, def.MaxProbability
	}
	return &Estimator{config: cfg}
}

// Config returns the effective configuration
func (e *Estimator) Config() Config {
	return e.config
}

// FairProbabilities returns the normalised probability of every outcome in the
// (market, line) group, keyed by outcome name, in first-seen order of names.
// ok is false when the group has no usable data.
func (e *Estimator) FairProbabilities(event *models.Event, marketKey string, point *float64) (names []string, probs map[string]float64, ok bool) {
	if event == nil || len(event.Bookmakers) == 0 {
		return nil, nil, false
	}

	group := quotes.AtPoint(quotes.ForMarket(quotes.Flatten(event), marketKey), point, e.config.PointTolerance)
	best := quotes.BestByOutcome(group)
	if len(best) == 0 {
		return nil, nil, false
	}

	implied := make([]float64, len(best))
	total := 0.0
	for i, b := range best {
		implied[i] = odds.ImpliedProbability(b.Quote.Price)
		total += implied[i]
	}
	if math.IsNaN(total) || math.IsInf(total, 0) || total <= 0 {
		return nil, nil, false
	}

	names = make([]string, len(best))
	probs = make(map[string]float64, len(best))
	for i, b := range best {
		names[i] = b.OutcomeName
		probs[b.OutcomeName] = implied[i] / total
	}
	return names, probs, true
}

// FairProbability returns the clamped vig-free probability of outcomeName.
// fallbackPrice is the quoting book's own price, used when the market offers
// nothing better to normalise against.
func (e *Estimator) FairProbability(event *models.Event, marketKey, outcomeName string, point *float64, fallbackPrice float64) float64 {
	p := math.NaN()
	if _, probs, ok := e.FairProbabilities(event, marketKey, point); ok {
		if v, found := probs[outcomeName]; found {
			p = v
		}
	}
	if p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		p = odds.ImpliedProbability(fallbackPrice)
	}
	return e.clamp(p)
}

// IsClamped reports whether p sits at or beyond either clamp bound
func (e *Estimator) IsClamped(p float64) bool {
	return p <= e.config.MinProbability || p >= e.config.MaxProbability
}

func (e *Estimator) clamp(p float64) float64 {
	if math.IsNaN(p) {
		return e.config.MinProbability
	}
	return odds.Clamp(p, e.config.MinProbability, e.config.MaxProbability)
}
