// Package quotes flattens provider events into priced quotes and provides the
// filter/group stages shared by the devigger and the arbitrage scanner.
package quotes

import (
	"math"

	"github.com/yourusername/better-bets/internal/models"
)

// Flatten returns every priced outcome of the event in provider order
// (bookmaker, then market, then outcome). Outcomes without a usable price are dropped.
func Flatten(event *models.Event) []models.Quote {
	if event == nil {
		return nil
	}

	var out []models.Quote
	for _, bm := range event.Bookmakers {
		for _, mkt := range bm.Markets {
			for _, o := range mkt.Outcomes {
				price, ok := o.UsablePrice()
				if !ok {
					continue
				}
				out = append(out, models.Quote{
					BookKey:     bm.Key,
					BookTitle:   bm.Title,
					MarketKey:   mkt.Key,
					OutcomeName: o.Name,
					Point:       o.Point,
					Price:       price,
				})
			}
		}
	}
	return out
}

// ForMarket keeps quotes for a single market key
func ForMarket(in []models.Quote, marketKey string) []models.Quote {
	out := make([]models.Quote, 0, len(in))
	for _, q := range in {
		if q.MarketKey == marketKey {
			out = append(out, q)
		}
	}
	return out
}

// AtPoint keeps quotes on the same line as target.
// A nil target or a quote without a point always matches.
func AtPoint(in []models.Quote, target *float64, tolerance float64) []models.Quote {
	out := make([]models.Quote, 0, len(in))
	for _, q := range in {
		if SamePoint(q.Point, target, tolerance) {
			out = append(out, q)
		}
	}
	return out
}

// SamePoint reports whether a quote point sits on the target line
func SamePoint(point, target *float64, tolerance float64) bool {
	if target == nil || point == nil {
		return true
	}
	return math.Abs(*point-*target) < tolerance
}

// Best is the highest price observed for an outcome name
type Best struct {
	OutcomeName string
	Quote       models.Quote
}

// BestByOutcome reduces quotes to the highest price per outcome name.
// Outcome names keep first-seen order; on equal prices the first observed quote wins.
func BestByOutcome(in []models.Quote) []Best {
	index := make(map[string]int)
	var out []Best
	for _, q := range in {
		i, seen := index[q.OutcomeName]
		if !seen {
			index[q.OutcomeName] = len(out)
			out = append(out, Best{OutcomeName: q.OutcomeName, Quote: q})
			continue
		}
		if q.Price > out[i].Quote.Price {
			out[i].Quote = q
		}
	}
	return out
}
