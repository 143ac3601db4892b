// Package odds converts between American odds, decimal odds and implied probability.
package odds

import (
	"fmt"
	"math"

	"github.com/yourusername/better-bets/internal/models"
)

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.667
func AmericanToDecimal(american float64) (float64, error) {
	if american == 0 {
		return 0, models.ErrZeroPrice
	}
	if math.IsNaN(american) || math.IsInf(american, 0) {
		return 0, fmt.Errorf("%w: %v", models.ErrInvalidPrice, american)
	}

	if american > 0 {
		return 1 + american/100, nil
	}
	return 1 - 100/american, nil
}

// ImpliedProbability converts American odds to the book's implied probability
// American +150 → 0.40
// American -110 → 0.5238
func ImpliedProbability(american float64) float64 {
	if american > 0 {
		return 100 / (american + 100)
	}
	return -american / (-american + 100)
}

// DecimalToAmerican converts decimal odds to American odds.
// Returns 0 when the decimal does not describe a priced outcome (<= 1 or non-finite).
func DecimalToAmerican(decimal float64) int {
	if math.IsNaN(decimal) || math.IsInf(decimal, 0) || decimal <= 1 {
		return 0
	}
	if decimal >= 2 {
		return int(math.Round((decimal - 1) * 100))
	}
	return int(math.Round(-100 / (decimal - 1)))
}

// ProbabilityToDecimal converts a probability to fair decimal odds
func ProbabilityToDecimal(probability float64) (float64, error) {
	if probability <= 0 || probability > 1 || math.IsNaN(probability) {
		return 0, fmt.Errorf("invalid probability %v: must be in (0, 1]", probability)
	}
	return 1 / probability, nil
}

// Clamp bounds p to [lo, hi]
func Clamp(p, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, p))
}
