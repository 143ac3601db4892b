package scanner

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/yourusername/better-bets/internal/devig"
	"github.com/yourusername/better-bets/internal/logger"
	"github.com/yourusername/better-bets/internal/metrics"
	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/odds"
)

const (
	// DefaultMaxAbsEdgePercent is the sanity band beyond which an edge is a data anomaly
	DefaultMaxAbsEdgePercent = 80.0

	MinEdgeFloor   = -10.0
	MinEdgeCeiling = 100.0

	// TimeLabelLayout formats event start times for display
	TimeLabelLayout = "Jan 2, 3:04 PM"

	edgePrecision = 1e9
)

// EdgeConfig holds edge scanner settings
type EdgeConfig struct {
	MaxAbsEdgePercent float64
	Location          *time.Location
}

// DefaultEdgeConfig returns the standard edge scanner settings
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{
		MaxAbsEdgePercent: DefaultMaxAbsEdgePercent,
		Location:          time.UTC,
	}
}

// EdgeParams are the per-scan filters
type EdgeParams struct {
	MarketType     Bucket
	Book           string
	MinEdgePercent float64
	// Sport labels events whose payload carries no sport title
	Sport string
}

// EdgeScanner compares every quoted price against its devigged fair price
type EdgeScanner struct {
	estimator *devig.Estimator
	config    EdgeConfig
	logger    *logger.ScanLogger
}

// NewEdgeScanner creates an edge scanner
func NewEdgeScanner(estimator *devig.Estimator, cfg EdgeConfig, log *logger.ScanLogger) *EdgeScanner {
	if estimator == nil {
		estimator = devig.NewEstimator(devig.DefaultConfig())
	}
	if cfg.MaxAbsEdgePercent <= 0 {
		cfg.MaxAbsEdgePercent = DefaultMaxAbsEdgePercent
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logger.NewScanLogger(nil)
	}
	return &EdgeScanner{
		estimator: estimator,
		config:    cfg,
		logger:    log,
	}
}

// ClampMinEdge bounds a requested minimum edge to [-10, 100]
func ClampMinEdge(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return odds.Clamp(v, MinEdgeFloor, MinEdgeCeiling)
}

// ScanEdges evaluates every priced outcome in the batch and returns the ones
// that pass the clamp, min-edge and sanity filters, best edge first.
// Malformed outcomes are skipped; only a batch containing an event without
// any identity fails.
func (s *EdgeScanner) ScanEdges(events []models.Event, params EdgeParams) ([]models.EdgeRecord, error) {
	if err := ValidateBatch(events); err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]models.EdgeRecord, 0)
	evaluated, filtered := 0, 0

	for i := range events {
		event := &events[i]
		matchLabel := event.MatchLabel()
		timeLabel := s.timeLabel(event.CommenceTime)
		league := event.League(params.Sport)

		for _, bm := range event.Bookmakers {
			if params.Book != "" && bm.Key != params.Book {
				continue
			}

			for _, mkt := range bm.Markets {
				bucket := ClassifyMarket(mkt.Key)
				if !params.MarketType.Matches(bucket) {
					continue
				}
				marketLabel := MarketLabel(mkt.Key)

				for j := range mkt.Outcomes {
					o := &mkt.Outcomes[j]
					price, ok := o.UsablePrice()
					if !ok {
						continue
					}
					userDec, err := odds.AmericanToDecimal(price)
					if err != nil {
						continue
					}
					evaluated++

					fairProb := s.estimator.FairProbability(event, mkt.Key, o.Name, o.Point, price)
					if s.estimator.IsClamped(fairProb) {
						filtered++
						metrics.RecordFilteredOutcome(metrics.ReasonClampedProbability)
						continue
					}

					fairDec, err := odds.ProbabilityToDecimal(fairProb)
					if err != nil {
						continue
					}
					edge := (userDec/fairDec - 1) * 100
					id := EdgeID(event, bm.Key, mkt.Key, o.Name, o.Point)

					if !PassesMinEdge(edge, params.MinEdgePercent) {
						filtered++
						metrics.RecordFilteredOutcome(metrics.ReasonBelowMinEdge)
						continue
					}
					if math.Abs(edge) > s.config.MaxAbsEdgePercent {
						filtered++
						metrics.RecordFilteredOutcome(metrics.ReasonAnomalousEdge)
						s.logger.LogFilteredAnomaly(id, fairProb, edge)
						continue
					}

					results = append(results, models.EdgeRecord{
						ID:          id,
						Match:       matchLabel,
						Time:        timeLabel,
						League:      league,
						BookKey:     bm.Key,
						BookName:    bm.Title,
						MarketKey:   mkt.Key,
						MarketLabel: marketLabel,
						Bucket:      string(bucket),
						OutcomeName: o.Name,
						Point:       copyPoint(o.Point),
						Odds:        price,
						UserDec:     userDec,
						FairProb:    fairProb,
						FairDec:     fairDec,
						FairAm:      odds.DecimalToAmerican(fairDec),
						EVPercent:   edge,
					})
				}
			}
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].EVPercent > results[b].EVPercent
	})

	elapsed := time.Since(start)
	metrics.RecordScan(metrics.ScannerEdge, elapsed.Seconds())
	metrics.RecordEdgesFound(len(results))
	s.logger.LogEdgeScan(len(events), evaluated, len(results), filtered, float64(elapsed.Microseconds())/1000)

	return results, nil
}

func (s *EdgeScanner) timeLabel(t time.Time) string {
	return FormatTimeLabel(t, s.config.Location)
}

// PassesMinEdge reports whether edge meets the inclusive minimum. Both sides
// are compared at nanopercent precision so 5.0 computed as 4.9999999999 passes a 5 floor.
func PassesMinEdge(edge, minEdge float64) bool {
	return roundEdge(edge) >= roundEdge(minEdge)
}

func roundEdge(v float64) float64 {
	return math.Round(v*edgePrecision) / edgePrecision
}

// EdgeID builds the deterministic opportunity id:
// {event id or start time}-{book}-{market}-{outcome}[-{point}]
func EdgeID(event *models.Event, bookKey, marketKey, outcomeName string, point *float64) string {
	id := fmt.Sprintf("%s-%s-%s-%s", event.IdentityKey(), bookKey, marketKey, outcomeName)
	if point != nil {
		id += "-" + strconv.FormatFloat(*point, 'f', -1, 64)
	}
	return id
}

// FormatTimeLabel renders an event start time; zero time renders empty
func FormatTimeLabel(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimeLabelLayout)
}

// ValidateBatch rejects a batch containing an event with neither id nor start time
func ValidateBatch(events []models.Event) error {
	for i := range events {
		if !events[i].HasIdentity() {
			return fmt.Errorf("event at index %d: %w", i, models.ErrInvalidBatch)
		}
	}
	return nil
}

func copyPoint(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
