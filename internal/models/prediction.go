package models

import (
	"time"

	"github.com/google/uuid"
)

// OutcomeProbabilities holds the market percentages for one fixture.
// Values are in [0, 100]; Win+Draw+Loss falls slightly short of 100
// because scorelines beyond the cutoff are not represented.
type OutcomeProbabilities struct {
	Win       float64 `db:"win" json:"win"`
	Draw      float64 `db:"draw" json:"draw"`
	Loss      float64 `db:"loss" json:"loss"`
	BothScore float64 `db:"both_score" json:"both_score"`
	Over15    float64 `db:"over_1_5" json:"over_1_5"`
	Over25    float64 `db:"over_2_5" json:"over_2_5"`
	Over35    float64 `db:"over_3_5" json:"over_3_5"`
}

// FixturePrediction is one row of a batch: either an outcome or a failure.
type FixturePrediction struct {
	HomeTeam string                `json:"home_team"`
	AwayTeam string                `json:"away_team"`
	HomeRate float64               `json:"home_rate,omitempty"`
	AwayRate float64               `json:"away_rate,omitempty"`
	Outcome  *OutcomeProbabilities `json:"outcome,omitempty"`
	Err      error                 `json:"-"`
}

// Failed reports whether the fixture carries a failure marker
func (p FixturePrediction) Failed() bool {
	return p.Err != nil
}

// ErrorMessage returns the failure text, or "" for successful rows
func (p FixturePrediction) ErrorMessage() string {
	if p.Err == nil {
		return ""
	}
	return p.Err.Error()
}

// BatchResult is the ordered output of one prediction run
type BatchResult struct {
	RunID         uuid.UUID           `json:"run_id"`
	ReferenceDate time.Time           `json:"reference_date"`
	CreatedAt     time.Time           `json:"created_at"`
	Predictions   []FixturePrediction `json:"predictions"`
	Succeeded     int                 `json:"succeeded"`
	Failed        int                 `json:"failed"`
}

// Successful returns the rows that produced an outcome, in input order
func (b *BatchResult) Successful() []FixturePrediction {
	out := make([]FixturePrediction, 0, b.Succeeded)
	for _, p := range b.Predictions {
		if !p.Failed() {
			out = append(out, p)
		}
	}
	return out
}

// Failures returns the failure markers, in input order
func (b *BatchResult) Failures() []FixturePrediction {
	out := make([]FixturePrediction, 0, b.Failed)
	for _, p := range b.Predictions {
		if p.Failed() {
			out = append(out, p)
		}
	}
	return out
}
