package prediction

import (
	"github.com/girguy/concaf/internal/models"
)

// VenueRole selects which ledger column a team is matched against
type VenueRole int

const (
	Home VenueRole = iota
	Away
)

func (r VenueRole) String() string {
	if r == Home {
		return "home"
	}
	return "away"
}

// Opposite returns the complementary role
func (r VenueRole) Opposite() VenueRole {
	if r == Home {
		return Away
	}
	return Home
}

// GoalDirection selects the team's own goals or the opponent's goals
type GoalDirection int

const (
	Scored GoalDirection = iota
	Conceded
)

func (d GoalDirection) String() string {
	if d == Scored {
		return "scored"
	}
	return "conceded"
}

// EstimateRate returns the weighted mean of goals for team in the given role,
// across every opponent it faced. Goals are the team's own when dir is Scored
// and the opponent's when dir is Conceded.
func EstimateRate(ledger []models.WeightedMatchRecord, team string, role VenueRole, dir GoalDirection) (float64, error) {
	var weightedGoals, totalWeight float64
	matched := 0

	for _, rec := range ledger {
		if !playedAs(rec.MatchRecord, team, role) {
			continue
		}
		matched++
		weightedGoals += rec.Weight * float64(goalsFor(rec.MatchRecord, role, dir))
		totalWeight += rec.Weight
	}

	if matched == 0 {
		return 0, models.NewPredictionError("prediction.EstimateRate", models.ErrInsufficientData,
			"no %s matches for %q", role, team)
	}
	if totalWeight == 0 {
		return 0, models.NewPredictionError("prediction.EstimateRate", models.ErrInsufficientData,
			"zero total weight over %d %s matches for %q", matched, role, team)
	}
	return weightedGoals / totalWeight, nil
}

// ExpectedRates combines the four averages into the two Poisson means:
// home = scored(home, Home) * conceded(away, Away) and
// away = scored(away, Away) * conceded(home, Home).
func ExpectedRates(ledger []models.WeightedMatchRecord, homeTeam, awayTeam string) (float64, float64, error) {
	homeScored, err := EstimateRate(ledger, homeTeam, Home, Scored)
	if err != nil {
		return 0, 0, err
	}
	awayConceded, err := EstimateRate(ledger, awayTeam, Away, Conceded)
	if err != nil {
		return 0, 0, err
	}
	awayScored, err := EstimateRate(ledger, awayTeam, Away, Scored)
	if err != nil {
		return 0, 0, err
	}
	homeConceded, err := EstimateRate(ledger, homeTeam, Home, Conceded)
	if err != nil {
		return 0, 0, err
	}
	return homeScored * awayConceded, awayScored * homeConceded, nil
}

func playedAs(rec models.MatchRecord, team string, role VenueRole) bool {
	if role == Home {
		return rec.HomeTeam == team
	}
	return rec.AwayTeam == team
}

func goalsFor(rec models.MatchRecord, role VenueRole, dir GoalDirection) int {
	own, other := rec.HomeGoals, rec.AwayGoals
	if role == Away {
		own, other = other, own
	}
	if dir == Scored {
		return own
	}
	return other
}
