package prediction

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/models"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testConfig() Config {
	return Config{
		DecayRate:       DefaultDecayRate,
		ReferenceDate:   date(2024, time.February, 11),
		ScorelineCutoff: DefaultScorelineCutoff,
		Workers:         4,
	}
}

func TestWeighLedgerOneYearOld(t *testing.T) {
	records := []models.MatchRecord{
		{Date: date(2023, time.June, 1), HomeTeam: "Maroc", AwayTeam: "Zambia", HomeGoals: 1, AwayGoals: 0},
	}

	weighted, err := WeighLedger(records, testConfig())
	require.NoError(t, err)
	require.Len(t, weighted, 1)
	assert.InDelta(t, 0.9048, weighted[0].Weight, 1e-4)
	assert.Equal(t, math.Exp(-0.1), weighted[0].Weight)
	assert.Equal(t, records[0], weighted[0].MatchRecord)
}

func TestRecencyWeightUsesWholeYears(t *testing.T) {
	ref := date(2024, time.January, 1)
	// Same calendar year, eleven months apart
	assert.Equal(t, 1.0, RecencyWeight(date(2024, time.December, 31), ref, 0.1))
	// One day apart, different years
	assert.Equal(t, math.Exp(-0.1), RecencyWeight(date(2023, time.December, 31), ref, 0.1))
}

func TestRecencyWeightFutureMatchExceedsOne(t *testing.T) {
	w := RecencyWeight(date(2026, time.March, 1), date(2024, time.March, 1), 0.1)
	assert.InDelta(t, math.Exp(0.2), w, 1e-12)
	assert.Greater(t, w, 1.0)
}

func TestRecencyWeightDecreasesWithAge(t *testing.T) {
	ref := date(2024, time.July, 1)
	for _, decay := range []float64{0.01, 0.1, 0.5, 2} {
		prev := math.Inf(1)
		for age := 0; age <= 30; age++ {
			w := RecencyWeight(date(2024-age, time.July, 1), ref, decay)
			assert.Greater(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
			assert.Less(t, w, prev, "decay %g age %d", decay, age)
			prev = w
		}
	}
}

func TestRecencyWeightZeroDecay(t *testing.T) {
	assert.Equal(t, 1.0, RecencyWeight(date(1990, time.May, 5), date(2024, time.May, 5), 0))
}

func TestWeighLedgerRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name   string
		record models.MatchRecord
	}{
		{"missing date", models.MatchRecord{HomeTeam: "A", AwayTeam: "B", HomeGoals: 1}},
		{"negative home goals", models.MatchRecord{Date: date(2022, 1, 1), HomeTeam: "A", AwayTeam: "B", HomeGoals: -1}},
		{"negative away goals", models.MatchRecord{Date: date(2022, 1, 1), HomeTeam: "A", AwayTeam: "B", AwayGoals: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := WeighLedger([]models.MatchRecord{tt.record}, testConfig())
			require.Error(t, err)
			assert.True(t, errors.Is(err, models.ErrMalformedRecord))
		})
	}
}

func TestWeighLedgerRejectsInvalidConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.DecayRate = -0.5

	_, err := WeighLedger(nil, cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInvalidConfiguration))
}
