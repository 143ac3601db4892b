// Package scanner finds +EV outcomes and head-to-head arbitrage across a batch of events.
package scanner

import (
	"fmt"
	"strings"
)

// Bucket is the main/props classification of a market key
type Bucket string

const (
	BucketAll   Bucket = "all"
	BucketMain  Bucket = "main"
	BucketProps Bucket = "props"
)

// Market keys treated as main markets
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

var mainMarkets = map[string]bool{
	MarketH2H:     true,
	MarketSpreads: true,
	MarketTotals:  true,
}

// ClassifyMarket labels a market key as main or props
func ClassifyMarket(key string) Bucket {
	if mainMarkets[key] {
		return BucketMain
	}
	return BucketProps
}

// Matches reports whether a market in bucket m passes filter b.
// BucketAll and the empty filter accept everything.
func (b Bucket) Matches(m Bucket) bool {
	return b == "" || b == BucketAll || b == m
}

// ParseBucket parses a market-type filter; empty input means all
func ParseBucket(s string) (Bucket, error) {
	switch Bucket(strings.ToLower(strings.TrimSpace(s))) {
	case "", BucketAll:
		return BucketAll, nil
	case BucketMain:
		return BucketMain, nil
	case BucketProps:
		return BucketProps, nil
	default:
		return "", fmt.Errorf("unknown market type %q: must be one of all, main, props", s)
	}
}

// MarketLabel renders a market key for display
func MarketLabel(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
