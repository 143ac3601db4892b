package scanner

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/better-bets/internal/logger"
	"github.com/yourusername/better-bets/internal/metrics"
	"github.com/yourusername/better-bets/internal/models"
	"github.com/yourusername/better-bets/internal/odds"
	"github.com/yourusername/better-bets/internal/quotes"
)

// DefaultNotionalStake is the total split across arbitrage legs
const DefaultNotionalStake = 100.0

// ArbConfig holds arbitrage scanner settings
type ArbConfig struct {
	NotionalStake float64
	Location      *time.Location
}

// DefaultArbConfig returns the standard arbitrage scanner settings
func DefaultArbConfig() ArbConfig {
	return ArbConfig{
		NotionalStake: DefaultNotionalStake,
		Location:      time.UTC,
	}
}

// ArbParams are the per-scan arbitrage options
type ArbParams struct {
	Sport string
	// Stake overrides the configured notional; zero uses the default
	Stake float64
}

// ArbitrageScanner looks for head-to-head markets whose best cross-book
// prices imply less than 100% total probability.
type ArbitrageScanner struct {
	config ArbConfig
	logger *logger.ScanLogger
}

// NewArbitrageScanner creates an arbitrage scanner
func NewArbitrageScanner(cfg ArbConfig, log *logger.ScanLogger) *ArbitrageScanner {
	if cfg.NotionalStake <= 0 {
		cfg.NotionalStake = DefaultNotionalStake
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if log == nil {
		log = logger.NewScanLogger(nil)
	}
	return &ArbitrageScanner{config: cfg, logger: log}
}

// ScanArbitrage returns every event with a profitable h2h combination, highest ROI first
func (s *ArbitrageScanner) ScanArbitrage(events []models.Event, params ArbParams) ([]models.ArbitrageRecord, error) {
	if err := ValidateBatch(events); err != nil {
		return nil, err
	}

	start := time.Now()
	total := params.Stake
	if total <= 0 {
		total = s.config.NotionalStake
	}

	results := make([]models.ArbitrageRecord, 0)
	for i := range events {
		event := &events[i]

		best := quotes.BestByOutcome(quotes.ForMarket(quotes.Flatten(event), MarketH2H))
		if len(best) < 2 {
			continue
		}

		roi, ok := ArbitrageROI(best)
		if !ok || roi <= 0 {
			continue
		}

		legs := make([]models.ArbitrageLeg, len(best))
		for j, b := range best {
			legs[j] = models.ArbitrageLeg{
				Name:     b.OutcomeName,
				Odd:      b.Quote.Price,
				Book:     b.Quote.BookKey,
				BookName: b.Quote.BookTitle,
			}
		}

		rec := models.ArbitrageRecord{
			ID:         event.IdentityKey() + "-arb-" + MarketH2H,
			Match:      event.MatchLabel(),
			Time:       FormatTimeLabel(event.CommenceTime, s.config.Location),
			League:     event.League(params.Sport),
			ROI:        roi,
			Legs:       legs,
			Stakes:     SplitStakes(legs, total),
			TotalStake: total,
		}
		s.logger.LogArbitrageFound(rec.ID, rec.Match, rec.ROI, rec.GetLegBooks())
		results = append(results, rec)
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].ROI > results[b].ROI
	})

	elapsed := time.Since(start)
	metrics.RecordScan(metrics.ScannerArbitrage, elapsed.Seconds())
	metrics.RecordArbitragesFound(len(results))
	s.logger.LogArbitrageScan(len(events), len(results), float64(elapsed.Microseconds())/1000)

	return results, nil
}

// ArbitrageROI returns (1/sum(1/decimal) - 1) * 100 over the best prices.
// ok is false when any price cannot be converted.
func ArbitrageROI(best []quotes.Best) (float64, bool) {
	sum := 0.0
	for _, b := range best {
		dec, err := odds.AmericanToDecimal(b.Quote.Price)
		if err != nil {
			return 0, false
		}
		sum += 1 / dec
	}
	if sum <= 0 {
		return 0, false
	}
	return (1/sum - 1) * 100, true
}

// SplitStakes divides total across the legs in proportion to each leg's
// reciprocal decimal price, so every outcome returns the same payout.
// Stakes are rounded to cents and the last leg absorbs the rounding remainder.
func SplitStakes(legs []models.ArbitrageLeg, total float64) []models.StakeSplit {
	if len(legs) == 0 || total <= 0 {
		return nil
	}

	invs := make([]decimal.Decimal, len(legs))
	sum := decimal.Zero
	for i, leg := range legs {
		dec, err := odds.AmericanToDecimal(leg.Odd)
		if err != nil {
			return nil
		}
		invs[i] = decimal.NewFromInt(1).Div(decimal.NewFromFloat(dec))
		sum = sum.Add(invs[i])
	}
	if !sum.IsPositive() {
		return nil
	}

	totalDec := decimal.NewFromFloat(total).Round(2)
	hundred := decimal.NewFromInt(100)
	allocated := decimal.Zero

	splits := make([]models.StakeSplit, len(legs))
	for i, leg := range legs {
		share := invs[i].Div(sum)
		stake := totalDec.Mul(share).Round(2)
		if i == len(legs)-1 {
			stake = totalDec.Sub(allocated)
		}
		allocated = allocated.Add(stake)

		splits[i] = models.StakeSplit{
			OutcomeName:  leg.Name,
			BestOdds:     leg.Odd,
			BookKey:      leg.Book,
			BookName:     leg.BookName,
			SharePercent: share.Mul(hundred).Round(4).InexactFloat64(),
			Stake:        stake.InexactFloat64(),
		}
	}
	return splits
}
