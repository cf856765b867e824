package prediction

import (
	"math"
	"time"

	"github.com/girguy/concaf/internal/models"
)

// RecencyWeight returns exp(-decay * ageYears) where the age is the
// difference in calendar years between the reference and the match.
// Matches dated after the reference get a negative age and a weight above 1.
func RecencyWeight(matchDate, reference time.Time, decay float64) float64 {
	age := reference.Year() - matchDate.Year()
	return math.Exp(-decay * float64(age))
}

// WeighLedger annotates every record with its recency weight. The input is
// not modified. A record without a date or with negative goals is rejected.
func WeighLedger(records []models.MatchRecord, cfg Config) ([]models.WeightedMatchRecord, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	weighted := make([]models.WeightedMatchRecord, len(records))
	for i, rec := range records {
		if err := checkRecord(i, rec); err != nil {
			return nil, err
		}
		weighted[i] = models.WeightedMatchRecord{
			MatchRecord: rec,
			Weight:      RecencyWeight(rec.Date, cfg.ReferenceDate, cfg.DecayRate),
		}
	}
	return weighted, nil
}

func checkRecord(index int, rec models.MatchRecord) error {
	const op = "prediction.WeighLedger"
	if rec.Date.IsZero() {
		return models.NewPredictionError(op, models.ErrMalformedRecord,
			"record %d (%s vs %s) has no date", index, rec.HomeTeam, rec.AwayTeam)
	}
	if rec.HomeGoals < 0 || rec.AwayGoals < 0 {
		return models.NewPredictionError(op, models.ErrMalformedRecord,
			"record %d (%s vs %s) has negative goals %d-%d", index, rec.HomeTeam, rec.AwayTeam, rec.HomeGoals, rec.AwayGoals)
	}
	return nil
}
