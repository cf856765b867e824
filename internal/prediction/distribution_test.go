package prediction

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/models"
)

func factorial(n int) float64 {
	f := 1.0
	for i := 2; i <= n; i++ {
		f *= float64(i)
	}
	return f
}

func TestPoissonPMFMatchesClosedForm(t *testing.T) {
	for _, lambda := range []float64{0.3, 1, 2.5, 4} {
		for k := 0; k <= 10; k++ {
			want := math.Pow(lambda, float64(k)) * math.Exp(-lambda) / factorial(k)
			assert.InDelta(t, want, PoissonPMF(k, lambda), 1e-12, "k=%d lambda=%g", k, lambda)
		}
	}
}

func TestPoissonPMFZeroRate(t *testing.T) {
	assert.Equal(t, 1.0, PoissonPMF(0, 0))
	assert.Equal(t, 0.0, PoissonPMF(3, 0))
	assert.Equal(t, 0.0, PoissonPMF(-1, 1.5))
}

func TestBuildDistributionShape(t *testing.T) {
	for _, cutoff := range []int{1, 4, 6, 10} {
		dist, err := BuildDistribution(1.7, 0.9, cutoff)
		require.NoError(t, err)
		require.Len(t, dist.Cells, (cutoff+1)*(cutoff+1))

		grid := dist.Matrix()
		require.Len(t, grid, cutoff+1)
		for _, row := range grid {
			require.Len(t, row, cutoff+1)
			for _, mass := range row {
				assert.GreaterOrEqual(t, mass, 0.0)
				assert.LessOrEqual(t, mass, 1.0)
			}
		}
		assert.Less(t, dist.TotalMass(), 1.0)
	}
}

func TestBuildDistributionCellsAreOuterProduct(t *testing.T) {
	dist, err := BuildDistribution(1.2, 0.8, DefaultScorelineCutoff)
	require.NoError(t, err)

	for _, c := range dist.Cells {
		assert.Equal(t, c.HomeGoals+c.AwayGoals, c.TotalGoals)
		assert.Equal(t, PoissonPMF(c.HomeGoals, 1.2)*PoissonPMF(c.AwayGoals, 0.8), c.Mass)
	}
}

func TestBuildDistributionOrdering(t *testing.T) {
	// Equal rates make (h, a) and (a, h) tie on mass
	dist, err := BuildDistribution(1.0, 1.0, DefaultScorelineCutoff)
	require.NoError(t, err)

	for i := 1; i < len(dist.Cells); i++ {
		prev, cur := dist.Cells[i-1], dist.Cells[i]
		require.GreaterOrEqual(t, prev.Mass, cur.Mass)
		if prev.Mass == cur.Mass {
			require.LessOrEqual(t, prev.TotalGoals, cur.TotalGoals)
		}
	}

	top := dist.Cells[:3]
	// P(0)=P(1) for lambda=1, so 0-0 ties with 1-0, 0-1 and 1-1; fewest goals first
	assert.Equal(t, 0, top[0].TotalGoals)
	assert.Equal(t, Scoreline{HomeGoals: 0, AwayGoals: 1, TotalGoals: 1, Mass: top[1].Mass}, top[1])
	assert.Equal(t, Scoreline{HomeGoals: 1, AwayGoals: 0, TotalGoals: 1, Mass: top[2].Mass}, top[2])
}

func TestBuildDistributionRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		home   float64
		away   float64
		cutoff int
	}{
		{"zero cutoff", 1, 1, 0},
		{"negative cutoff", 1, 1, -3},
		{"negative rate", -0.1, 1, 6},
		{"nan rate", 1, math.NaN(), 6},
		{"infinite rate", math.Inf(1), 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildDistribution(tt.home, tt.away, tt.cutoff)
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
		})
	}
}

func TestBuildDistributionZeroRates(t *testing.T) {
	dist, err := BuildDistribution(0, 0, DefaultScorelineCutoff)
	require.NoError(t, err)
	assert.Equal(t, Scoreline{HomeGoals: 0, AwayGoals: 0, TotalGoals: 0, Mass: 1}, dist.Cells[0])
	assert.Equal(t, 1.0, dist.TotalMass())
}
