package scanner

import (
	"time"

	"github.com/yourusername/better-bets/internal/models"
)

func ptr(v float64) *float64 { return &v }

func outcome(name string, price float64) models.Outcome {
	return models.Outcome{Name: name, Price: ptr(price)}
}

func pointOutcome(name string, price, point float64) models.Outcome {
	return models.Outcome{Name: name, Price: ptr(price), Point: ptr(point)}
}

func market(key string, outcomes ...models.Outcome) models.Market {
	return models.Market{Key: key, Outcomes: outcomes}
}

func bookmaker(key, title string, markets ...models.Market) models.Bookmaker {
	return models.Bookmaker{Key: key, Title: title, Markets: markets}
}

var kickoff = time.Date(2026, time.October, 18, 17, 30, 0, 0, time.UTC)

func event(id string, books ...models.Bookmaker) models.Event {
	return models.Event{
		ID:           id,
		SportKey:     "basketball_nba",
		SportTitle:   "NBA",
		CommenceTime: kickoff,
		HomeTeam:     "Home",
		AwayTeam:     "Away",
		Bookmakers:   books,
	}
}
