package prediction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateDrawWithUnitRates(t *testing.T) {
	dist, err := BuildDistribution(1.0, 1.0, 6)
	require.NoError(t, err)

	var want float64
	for k := 0; k <= 6; k++ {
		p := math.Exp(-1) / factorial(k)
		want += p * p
	}

	out := Aggregate(dist)
	assert.InDelta(t, 100*want, out.Draw, 1e-9)
	assert.InDelta(t, 30.85, out.Draw, 0.01)
	// Symmetric rates give a symmetric market
	assert.InDelta(t, out.Win, out.Loss, 1e-9)
}

func TestAggregateDoesNotRenormalise(t *testing.T) {
	for _, rates := range [][2]float64{{1, 1}, {1.8, 0.7}, {2.4, 1.9}} {
		dist, err := BuildDistribution(rates[0], rates[1], DefaultScorelineCutoff)
		require.NoError(t, err)

		out := Aggregate(dist)
		sum := out.Win + out.Draw + out.Loss
		assert.Less(t, sum, 100.0, "rates %v", rates)
		assert.InDelta(t, 100*dist.TotalMass(), sum, 1e-9, "rates %v", rates)
		// The missing mass is exactly the tail beyond the cutoff
		want := 100 * poissonCDF(rates[0], DefaultScorelineCutoff) * poissonCDF(rates[1], DefaultScorelineCutoff)
		assert.InDelta(t, want, sum, 1e-9, "rates %v", rates)
	}
}

func poissonCDF(lambda float64, n int) float64 {
	var total float64
	for k := 0; k <= n; k++ {
		total += math.Exp(-lambda) * math.Pow(lambda, float64(k)) / factorial(k)
	}
	return total
}

func TestAggregateMarketRelations(t *testing.T) {
	dist, err := BuildDistribution(1.6, 1.1, DefaultScorelineCutoff)
	require.NoError(t, err)

	out := Aggregate(dist)
	assert.GreaterOrEqual(t, out.Over15, out.Over25)
	assert.GreaterOrEqual(t, out.Over25, out.Over35)
	assert.Greater(t, out.Over15, out.BothScore-1e-9)

	// Over 1.5 is everything except 0-0, 1-0 and 0-1
	low := 0.0
	for _, c := range dist.Cells {
		if c.TotalGoals <= 1 {
			low += c.Mass
		}
	}
	assert.InDelta(t, 100*(dist.TotalMass()-low), out.Over15, 1e-9)

	for _, v := range []float64{out.Win, out.Draw, out.Loss, out.BothScore, out.Over15, out.Over25, out.Over35} {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	dist, err := BuildDistribution(2.1, 0.6, DefaultScorelineCutoff)
	require.NoError(t, err)

	first := Aggregate(dist)
	second := Aggregate(dist)
	assert.Equal(t, first, second)
}

func TestAggregateWinMonotoneInHomeRate(t *testing.T) {
	prev := -1.0
	for homeRate := 0.1; homeRate <= 2.5; homeRate += 0.1 {
		dist, err := BuildDistribution(homeRate, 1.0, DefaultScorelineCutoff)
		require.NoError(t, err)

		win := Aggregate(dist).Win
		assert.GreaterOrEqual(t, win, prev, "home rate %g", homeRate)
		prev = win
	}
}

func TestAggregateZeroRates(t *testing.T) {
	dist, err := BuildDistribution(0, 0, DefaultScorelineCutoff)
	require.NoError(t, err)

	out := Aggregate(dist)
	assert.Equal(t, 100.0, out.Draw)
	assert.Zero(t, out.Win)
	assert.Zero(t, out.BothScore)
	assert.Zero(t, out.Over15)
}
