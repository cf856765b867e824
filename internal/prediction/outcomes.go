package prediction

import "github.com/girguy/concaf/internal/models"

// Aggregate reduces a distribution to market percentages. There is no
// renormalisation: truncated tail mass is simply missing from every market.
func Aggregate(dist ScorelineDistribution) models.OutcomeProbabilities {
	var out models.OutcomeProbabilities

	for _, c := range dist.Cells {
		switch {
		case c.HomeGoals > c.AwayGoals:
			out.Win += c.Mass
		case c.HomeGoals == c.AwayGoals:
			out.Draw += c.Mass
		default:
			out.Loss += c.Mass
		}
		if c.HomeGoals > 0 && c.AwayGoals > 0 {
			out.BothScore += c.Mass
		}
		if c.TotalGoals > 1 {
			out.Over15 += c.Mass
		}
		if c.TotalGoals > 2 {
			out.Over25 += c.Mass
		}
		if c.TotalGoals > 3 {
			out.Over35 += c.Mass
		}
	}

	out.Win *= 100
	out.Draw *= 100
	out.Loss *= 100
	out.BothScore *= 100
	out.Over15 *= 100
	out.Over25 *= 100
	out.Over35 *= 100
	return out
}
