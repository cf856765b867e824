package models

import (
	"fmt"
	"time"
)

// DateLayout is the day-first layout used by the result and fixture tables.
const DateLayout = "02/01/2006"

// MatchRecord is one historical result in the ledger
type MatchRecord struct {
	Date      time.Time `db:"match_date" json:"date" validate:"required"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required"`
	HomeGoals int       `db:"home_goals" json:"home_goals" validate:"gte=0"`
	AwayGoals int       `db:"away_goals" json:"away_goals" validate:"gte=0"`
}

// TotalGoals returns the goals scored by both sides
func (m MatchRecord) TotalGoals() int {
	return m.HomeGoals + m.AwayGoals
}

// Result renders the score as "h - a"
func (m MatchRecord) Result() string {
	return fmt.Sprintf("%d - %d", m.HomeGoals, m.AwayGoals)
}

// WeightedMatchRecord is a MatchRecord annotated with its recency weight.
type WeightedMatchRecord struct {
	MatchRecord
	Weight float64 `json:"weight"`
}

// Fixture is an upcoming pairing that needs a prediction
type Fixture struct {
	Date     time.Time `db:"fixture_date" json:"date,omitempty"`
	HomeTeam string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam string    `db:"away_team" json:"away_team" validate:"required"`
}

// String returns "Home vs Away"
func (f Fixture) String() string {
	return f.HomeTeam + " vs " + f.AwayTeam
}
