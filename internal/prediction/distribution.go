package prediction

import (
	"math"
	"sort"

	"github.com/girguy/concaf/internal/models"
)

// Scoreline is one cell of the joint distribution
type Scoreline struct {
	HomeGoals  int     `json:"home_goals"`
	AwayGoals  int     `json:"away_goals"`
	TotalGoals int     `json:"total_goals"`
	Mass       float64 `json:"mass"`
}

// ScorelineDistribution is the truncated joint distribution over
// 0..Cutoff goals per side. Cells are ordered by mass descending, then by
// fewer total goals, then by fewer home goals. Mass beyond the cutoff is
// dropped, so the cells sum to less than 1.
type ScorelineDistribution struct {
	HomeRate float64
	AwayRate float64
	Cutoff   int
	Cells    []Scoreline
}

// PoissonPMF returns P(X = k) for X ~ Poisson(lambda). A non-positive mean
// is treated as a point mass at zero.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	lgamma, _ := math.Lgamma(float64(k) + 1)
	return math.Exp(float64(k)*math.Log(lambda) - lambda - lgamma)
}

// BuildDistribution enumerates every (home, away) pair in 0..cutoff with the
// product of the two independent Poisson marginals.
func BuildDistribution(homeRate, awayRate float64, cutoff int) (ScorelineDistribution, error) {
	const op = "prediction.BuildDistribution"
	if cutoff <= 0 {
		return ScorelineDistribution{}, models.NewPredictionError(op, models.ErrInvalidConfiguration,
			"scoreline cutoff must be positive (got %d)", cutoff)
	}
	if !validRate(homeRate) || !validRate(awayRate) {
		return ScorelineDistribution{}, models.NewPredictionError(op, models.ErrInvalidConfiguration,
			"goal rates must be finite and non-negative (got %g, %g)", homeRate, awayRate)
	}

	homePMF := marginal(homeRate, cutoff)
	awayPMF := marginal(awayRate, cutoff)

	cells := make([]Scoreline, 0, (cutoff+1)*(cutoff+1))
	for h := 0; h <= cutoff; h++ {
		for a := 0; a <= cutoff; a++ {
			cells = append(cells, Scoreline{
				HomeGoals:  h,
				AwayGoals:  a,
				TotalGoals: h + a,
				Mass:       homePMF[h] * awayPMF[a],
			})
		}
	}

	sort.SliceStable(cells, func(i, j int) bool {
		if cells[i].Mass != cells[j].Mass {
			return cells[i].Mass > cells[j].Mass
		}
		if cells[i].TotalGoals != cells[j].TotalGoals {
			return cells[i].TotalGoals < cells[j].TotalGoals
		}
		return cells[i].HomeGoals < cells[j].HomeGoals
	})

	return ScorelineDistribution{
		HomeRate: homeRate,
		AwayRate: awayRate,
		Cutoff:   cutoff,
		Cells:    cells,
	}, nil
}

// Matrix returns the distribution as a grid indexed [homeGoals][awayGoals].
func (d ScorelineDistribution) Matrix() [][]float64 {
	size := d.Cutoff + 1
	grid := make([][]float64, size)
	for i := range grid {
		grid[i] = make([]float64, size)
	}
	for _, c := range d.Cells {
		grid[c.HomeGoals][c.AwayGoals] = c.Mass
	}
	return grid
}

// TotalMass is the sum of all enumerated cells
func (d ScorelineDistribution) TotalMass() float64 {
	var total float64
	for _, c := range d.Cells {
		total += c.Mass
	}
	return total
}

func marginal(lambda float64, cutoff int) []float64 {
	pmf := make([]float64, cutoff+1)
	for k := range pmf {
		pmf[k] = PoissonPMF(k, lambda)
	}
	return pmf
}

func validRate(r float64) bool {
	return r >= 0 && !math.IsNaN(r) && !math.IsInf(r, 0)
}
