package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/girguy/concaf/internal/logger"
	"github.com/girguy/concaf/internal/models"
)

// Engine runs prediction batches with a fixed configuration
type Engine struct {
	config Config
	logger *logger.PredictionLogger
	now    func() time.Time
}

// NewEngine validates cfg and creates an engine. A nil logger discards output.
func NewEngine(cfg Config, log *logrus.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.PanicLevel)
	}
	return &Engine{
		config: cfg,
		logger: logger.NewPredictionLogger(log),
		now:    time.Now,
	}, nil
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// PredictFixture computes the outcome for a single fixture against an
// already weighted ledger. Failures are returned inside the prediction.
func (e *Engine) PredictFixture(ledger []models.WeightedMatchRecord, fixture models.Fixture) models.FixturePrediction {
	pred := models.FixturePrediction{
		HomeTeam: fixture.HomeTeam,
		AwayTeam: fixture.AwayTeam,
	}

	homeRate, awayRate, err := ExpectedRates(ledger, fixture.HomeTeam, fixture.AwayTeam)
	if err != nil {
		pred.Err = fmt.Errorf("%s: %w", fixture, err)
		return pred
	}
	pred.HomeRate = homeRate
	pred.AwayRate = awayRate

	dist, err := BuildDistribution(homeRate, awayRate, e.config.ScorelineCutoff)
	if err != nil {
		pred.Err = fmt.Errorf("%s: %w", fixture, err)
		return pred
	}

	outcome := Aggregate(dist)
	pred.Outcome = &outcome
	return pred
}

// PredictBatch weighs the ledger once and predicts every fixture. Fixtures
// are spread over at most Workers goroutines; each writes only its own slot
// so the output keeps the input order. Only configuration errors, malformed
// ledgers and cancellation fail the whole batch.
func (e *Engine) PredictBatch(ctx context.Context, records []models.MatchRecord, fixtures []models.Fixture) (*models.BatchResult, error) {
	start := time.Now()

	cfg := e.config
	if cfg.FollowClock {
		cfg.ReferenceDate = e.now().UTC()
	}

	ledger, err := WeighLedger(records, cfg)
	if err != nil {
		return nil, err
	}

	result := &models.BatchResult{
		RunID:         uuid.New(),
		ReferenceDate: cfg.ReferenceDate,
		CreatedAt:     time.Now().UTC(),
		Predictions:   make([]models.FixturePrediction, len(fixtures)),
	}
	e.logger.LogRunStarted(result.RunID.String(), len(ledger), len(fixtures), cfg.String())

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, fixture := range fixtures {
		i, fixture := i, fixture
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result.Predictions[i] = e.PredictFixture(ledger, fixture)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("prediction run %s aborted: %w", result.RunID, err)
	}

	for _, p := range result.Predictions {
		if p.Failed() {
			result.Failed++
			e.logger.LogFixtureFailed(result.RunID.String(), p.HomeTeam, p.AwayTeam, models.ErrorKind(p.Err), p.Err)
			continue
		}
		result.Succeeded++
		e.logger.LogFixturePredicted(result.RunID.String(), p.HomeTeam, p.AwayTeam, p.HomeRate, p.AwayRate, p.Outcome.Win, p.Outcome.Draw, p.Outcome.Loss)
	}

	e.logger.LogRunCompleted(result.RunID.String(), result.Succeeded, result.Failed, float64(time.Since(start).Milliseconds()))
	return result, nil
}
