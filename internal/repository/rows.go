package repository

import (
	"github.com/girguy/concaf/internal/models"
)

var predictionColumns = []string{
	"run_id", "position", "home_team", "away_team", "home_rate", "away_rate",
	"win", "draw", "loss", "both_score", "over_1_5", "over_2_5", "over_3_5",
	"error_kind", "error",
}

// predictionValues flattens one batch row. Outcome and error columns are
// NULL on the side that does not apply.
func predictionValues(runID interface{}, position int, p models.FixturePrediction) []interface{} {
	values := []interface{}{runID, position, p.HomeTeam, p.AwayTeam}
	if p.Failed() {
		values = append(values, nil, nil, nil, nil, nil, nil, nil, nil, nil,
			models.ErrorKind(p.Err), p.ErrorMessage())
		return values
	}
	o := p.Outcome
	return append(values, p.HomeRate, p.AwayRate,
		o.Win, o.Draw, o.Loss, o.BothScore, o.Over15, o.Over25, o.Over35,
		nil, nil)
}

// predictionScan receives one stored row from either dialect
type predictionScan struct {
	HomeTeam  string
	AwayTeam  string
	HomeRate  *float64
	AwayRate  *float64
	Win       *float64
	Draw      *float64
	Loss      *float64
	BothScore *float64
	Over15    *float64
	Over25    *float64
	Over35    *float64
	ErrorKind *string
	Error     *string
}

func (s *predictionScan) dest() []interface{} {
	return []interface{}{
		&s.HomeTeam, &s.AwayTeam, &s.HomeRate, &s.AwayRate,
		&s.Win, &s.Draw, &s.Loss, &s.BothScore, &s.Over15, &s.Over25, &s.Over35,
		&s.ErrorKind, &s.Error,
	}
}

func (s *predictionScan) prediction() models.FixturePrediction {
	p := models.FixturePrediction{HomeTeam: s.HomeTeam, AwayTeam: s.AwayTeam}
	if s.Error != nil {
		kind := ""
		if s.ErrorKind != nil {
			kind = *s.ErrorKind
		}
		p.Err = &models.StoredError{Kind: kind, Message: *s.Error}
		return p
	}
	p.HomeRate = deref(s.HomeRate)
	p.AwayRate = deref(s.AwayRate)
	p.Outcome = &models.OutcomeProbabilities{
		Win:       deref(s.Win),
		Draw:      deref(s.Draw),
		Loss:      deref(s.Loss),
		BothScore: deref(s.BothScore),
		Over15:    deref(s.Over15),
		Over25:    deref(s.Over25),
		Over35:    deref(s.Over35),
	}
	return p
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
