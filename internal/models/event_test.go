package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const providerPayload = `[{
	"id": "evt1",
	"sport_key": "basketball_nba",
	"sport_title": "NBA",
	"commence_time": "2026-10-20T23:30:00Z",
	"home_team": "Boston Celtics",
	"away_team": "New York Knicks",
	"bookmakers": [{
		"key": "draftkings",
		"title": "DraftKings",
		"markets": [{
			"key": "spreads",
			"outcomes": [
				{"name": "Boston Celtics", "price": -110, "point": -4.5},
				{"name": "New York Knicks", "price": "N/A", "point": 4.5},
				{"name": "Boston Celtics", "price": 150, "point": null},
				{"name": "New York Knicks", "price": null},
				{"name": 42, "price": -120, "description": ["x"]}
			]
		}]
	}]
}]`

func TestEventDecodeToleratesBadPrice(t *testing.T) {
	var events []Event
	require.NoError(t, json.Unmarshal([]byte(providerPayload), &events))
	require.Len(t, events, 1)

	outcomes := events[0].Bookmakers[0].Markets[0].Outcomes
	require.Len(t, outcomes, 5)

	price, ok := outcomes[0].UsablePrice()
	assert.True(t, ok)
	assert.Equal(t, -110.0, price)
	require.NotNil(t, outcomes[0].Point)
	assert.Equal(t, -4.5, *outcomes[0].Point)

	_, ok = outcomes[1].UsablePrice()
	assert.False(t, ok)
	require.NotNil(t, outcomes[1].Point)

	// explicit null point means no line, not a zero line
	price, ok = outcomes[2].UsablePrice()
	assert.True(t, ok)
	assert.Equal(t, 150.0, price)
	assert.Nil(t, outcomes[2].Point)

	assert.Nil(t, outcomes[3].Price)
	_, ok = outcomes[3].UsablePrice()
	assert.False(t, ok)

	// mistyped name is kept as an unusable outcome rather than failing the payload
	assert.Empty(t, outcomes[4].Name)
	assert.Empty(t, outcomes[4].Description)
	_, ok = outcomes[4].UsablePrice()
	assert.False(t, ok)
}

func TestUsablePriceRejectsZero(t *testing.T) {
	zero := 0.0
	o := Outcome{Name: "Draw", Price: &zero}
	_, ok := o.UsablePrice()
	assert.False(t, ok)
}

func TestEventIdentity(t *testing.T) {
	start := time.Date(2026, 10, 20, 23, 30, 0, 0, time.UTC)

	withID := Event{ID: "abc"}
	assert.True(t, withID.HasIdentity())
	assert.Equal(t, "abc", withID.IdentityKey())

	withTime := Event{CommenceTime: start}
	assert.True(t, withTime.HasIdentity())
	assert.Equal(t, "2026-10-20T23:30:00Z", withTime.IdentityKey())

	assert.False(t, (&Event{HomeTeam: "A"}).HasIdentity())
}

func TestEventLabels(t *testing.T) {
	e := Event{HomeTeam: "Lakers", AwayTeam: "Suns", SportKey: "basketball_nba"}
	assert.Equal(t, "Lakers vs Suns", e.MatchLabel())
	assert.Equal(t, "basketball_nba", e.League(""))
	assert.Equal(t, "nba", e.League("nba"))

	e.SportTitle = "NBA"
	assert.Equal(t, "NBA", e.League("nba"))
}

func TestArbitrageLegBooks(t *testing.T) {
	arb := ArbitrageRecord{Legs: []ArbitrageLeg{
		{Name: "A", Book: "fanduel"},
		{Name: "B", Book: "draftkings"},
		{Name: "Draw", Book: "fanduel"},
	}}
	assert.Equal(t, []string{"fanduel", "draftkings"}, arb.GetLegBooks())
}
