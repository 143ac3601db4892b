package models

// EdgeRecord represents a single +EV (or -EV) outcome found by the edge scanner
type EdgeRecord struct {
	ID          string   `json:"id"`
	Match       string   `json:"match"`
	Time        string   `json:"time"`
	League      string   `json:"league"`
	BookKey     string   `json:"bookKey"`
	BookName    string   `json:"bookName"`
	MarketKey   string   `json:"marketKey"`
	MarketLabel string   `json:"marketLabel"`
	Bucket      string   `json:"bucket"`
	OutcomeName string   `json:"outcomeName"`
	Point       *float64 `json:"point"`
	Odds        float64  `json:"odds"`
	UserDec     float64  `json:"userDec"`
	FairProb    float64  `json:"fairProb"`
	FairDec     float64  `json:"fairDec"`
	FairAm      int      `json:"fairAm"`
	EVPercent   float64  `json:"evPercent"`
	LineMove    float64  `json:"lineMove"`
}

// ArbitrageLeg is the best cross-book price for one outcome
type ArbitrageLeg struct {
	Name     string  `json:"name"`
	Odd      float64 `json:"odd"`
	Book     string  `json:"book"`
	BookName string  `json:"bookName"`
}

// StakeSplit is one leg's share of a fixed notional stake
type StakeSplit struct {
	OutcomeName  string  `json:"outcomeName"`
	BestOdds     float64 `json:"bestOdds"`
	BookKey      string  `json:"bookKey"`
	BookName     string  `json:"bookName"`
	SharePercent float64 `json:"sharePercent"`
	Stake        float64 `json:"stake"`
}

// ArbitrageRecord represents an event whose best head-to-head prices lock in a profit
type ArbitrageRecord struct {
	ID         string         `json:"id"`
	Match      string         `json:"match"`
	Time       string         `json:"time"`
	League     string         `json:"league"`
	ROI        float64        `json:"roi"`
	Legs       []ArbitrageLeg `json:"legs"`
	Stakes     []StakeSplit   `json:"stakes,omitempty"`
	TotalStake float64        `json:"totalStake,omitempty"`
}

// GetLegBooks returns the distinct books an arbitrage needs accounts at
func (a *ArbitrageRecord) GetLegBooks() []string {
	seen := make(map[string]bool, len(a.Legs))
	books := make([]string, 0, len(a.Legs))
	for _, leg := range a.Legs {
		if seen[leg.Book] {
			continue
		}
		seen[leg.Book] = true
		books = append(books, leg.Book)
	}
	return books
}
