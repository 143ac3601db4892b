package models

import (
	"bytes"
	"encoding/json"
	"math"
	"time"
)

// Event represents one sporting contest as delivered by the odds provider
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker represents one book's block of markets for an event
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Market represents a single market (h2h, spreads, totals or a prop key)
type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Outcome represents one priced side of a market.
// Price is nil when the provider sent no usable number.
type Outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price"`
	Point       *float64 `json:"point,omitempty"`
}

// Quote is the flattened view of a priced outcome
type Quote struct {
	BookKey     string
	BookTitle   string
	MarketKey   string
	OutcomeName string
	Point       *float64
	Price       float64
}

// HasIdentity reports whether the event carries an id or a start time
func (e *Event) HasIdentity() bool {
	return e.ID != "" || !e.CommenceTime.IsZero()
}

// MatchLabel returns the "home vs away" label used in scan output
func (e *Event) MatchLabel() string {
	return e.HomeTeam + " vs " + e.AwayTeam
}

// League returns the sport title, or fallback when the provider omitted it
func (e *Event) League(fallback string) string {
	if e.SportTitle != "" {
		return e.SportTitle
	}
	if fallback != "" {
		return fallback
	}
	return e.SportKey
}

// IdentityKey returns the event id, falling back to the commence time
func (e *Event) IdentityKey() string {
	if e.ID != "" {
		return e.ID
	}
	return e.CommenceTime.UTC().Format(time.RFC3339)
}

// UsablePrice returns the outcome price when it is a finite, non-zero number.
// Unnamed outcomes are never usable.
func (o *Outcome) UsablePrice() (float64, bool) {
	if o.Price == nil || o.Name == "" {
		return 0, false
	}
	p := *o.Price
	if p == 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, false
	}
	return p, true
}

// UnmarshalJSON tolerates mistyped fields: a non-numeric price or point is
// left nil and a non-string name is left empty, so one malformed outcome
// never fails the whole provider payload.
func (o *Outcome) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        json.RawMessage `json:"name"`
		Description json.RawMessage `json:"description"`
		Price       json.RawMessage `json:"price"`
		Point       json.RawMessage `json:"point"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.Name = stringOrEmpty(raw.Name)
	o.Description = stringOrEmpty(raw.Description)
	o.Price = numberOrNil(raw.Price)
	o.Point = numberOrNil(raw.Point)
	return nil
}

var jsonNull = []byte("null")

func numberOrNil(raw json.RawMessage) *float64 {
	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil
	}
	return &n
}

func stringOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
