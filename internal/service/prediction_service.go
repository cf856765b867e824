package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/girguy/concaf/internal/datasource"
	"github.com/girguy/concaf/internal/database"
	"github.com/girguy/concaf/internal/export"
	"github.com/girguy/concaf/internal/ledger"
	"github.com/girguy/concaf/internal/logger"
	"github.com/girguy/concaf/internal/metrics"
	"github.com/girguy/concaf/internal/models"
	"github.com/girguy/concaf/internal/prediction"
	"github.com/girguy/concaf/internal/repository"
)

// Publisher receives every completed batch, e.g. the live feed hub
type Publisher interface {
	Publish(batch *models.BatchResult)
}

// Dependencies wires a PredictionService. Repositories, Exporter and
// Publisher are optional.
type Dependencies struct {
	Ledger       []datasource.LedgerSource
	Fixtures     []datasource.FixtureSource
	Parser       *ledger.Parser
	Engine       *prediction.Engine
	Repositories *repository.Repositories
	Exporter     *export.Exporter
	Publisher    Publisher
	Logger       *logrus.Logger
}

// Snapshot is the parsed input of one run
type Snapshot struct {
	Records  []models.MatchRecord
	Fixtures []models.Fixture
	Rejected []*ledger.MalformedError
}

// PredictionService runs the fetch, parse, store, predict, export pipeline
type PredictionService struct {
	deps       Dependencies
	validator  *DataValidator
	pipeline   *logger.PipelineLogger
	prediction *logger.PredictionLogger
	metrics    *RunMetrics
	now        func() time.Time

	runMu  sync.Mutex
	mu     sync.RWMutex
	latest *models.BatchResult
}

// NewPredictionService checks the required dependencies
func NewPredictionService(deps Dependencies) (*PredictionService, error) {
	if len(deps.Ledger) == 0 {
		return nil, fmt.Errorf("at least one ledger source is required")
	}
	if len(deps.Fixtures) == 0 {
		return nil, fmt.Errorf("at least one fixture source is required")
	}
	if deps.Parser == nil {
		return nil, fmt.Errorf("parser is required")
	}
	if deps.Engine == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if deps.Logger == nil {
		deps.Logger = logrus.New()
	}

	return &PredictionService{
		deps:       deps,
		validator:  NewDataValidator(),
		pipeline:   logger.NewPipelineLogger(deps.Logger),
		prediction: logger.NewPredictionLogger(deps.Logger),
		metrics:    NewRunMetrics(),
		now:        time.Now,
	}, nil
}

// Metrics returns the tracker of the latest run
func (s *PredictionService) Metrics() *RunMetrics {
	return s.metrics
}

// Ingest fetches and parses the ledger and fixtures, storing both when a
// repository is configured.
func (s *PredictionService) Ingest(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}

	var rows []datasource.MatchData
	for _, src := range s.deps.Ledger {
		start := time.Now()
		data, err := src.FetchResults(ctx)
		metrics.RecordSourceFetch(src.Name(), err, time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch results from %s: %w", src.Name(), err)
		}
		s.pipeline.LogSourceFetched(src.Name(), "results", len(data), time.Since(start))
		rows = append(rows, data...)
	}

	records, rejected, err := s.deps.Parser.ParseMatches(rows)
	s.reportMalformed(rejected)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results: %w", err)
	}
	snap.Records = records
	snap.Rejected = append(snap.Rejected, rejected...)
	s.metrics.RecordLedger(len(rows), len(records), len(rejected))

	var fixtureRows []datasource.FixtureData
	for _, src := range s.deps.Fixtures {
		start := time.Now()
		data, err := src.FetchFixtures(ctx)
		metrics.RecordSourceFetch(src.Name(), err, time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("failed to fetch fixtures from %s: %w", src.Name(), err)
		}
		s.pipeline.LogSourceFetched(src.Name(), "fixtures", len(data), time.Since(start))
		fixtureRows = append(fixtureRows, data...)
	}

	fixtures, rejected, err := s.deps.Parser.ParseFixtures(fixtureRows, s.now())
	s.reportMalformed(rejected)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	snap.Fixtures = fixtures
	snap.Rejected = append(snap.Rejected, rejected...)
	s.metrics.RecordFixtures(len(fixtureRows), len(fixtures), len(rejected))

	s.checkData(snap)

	if repos := s.deps.Repositories; repos != nil {
		if err := repos.Match.ReplaceAll(ctx, snap.Records); err != nil {
			return nil, fmt.Errorf("failed to store matches: %w", err)
		}
		s.pipeline.LogRecordsStored(database.TableMatches, len(snap.Records))

		if err := repos.Fixture.ReplaceAll(ctx, snap.Fixtures); err != nil {
			return nil, fmt.Errorf("failed to store fixtures: %w", err)
		}
		s.pipeline.LogRecordsStored(database.TableFixtures, len(snap.Fixtures))
	}

	return snap, nil
}

// Run performs one full pipeline pass. Runs are serialized; a fixture
// that cannot be predicted shows up as a failure row, not as an error.
func (s *PredictionService) Run(ctx context.Context) (*models.BatchResult, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.metrics.Reset()
	batch, err := s.run(ctx)
	s.metrics.Finish()

	if err != nil {
		s.metrics.RecordError()
		metrics.RecordRun("failed", float64(s.now().Unix()))
		s.pipeline.LogStepFailed("run", err)
		return nil, err
	}

	metrics.RecordRun("succeeded", float64(s.now().Unix()))
	s.pipeline.WithField("summary", s.metrics.String()).Info("Pipeline run completed")
	return batch, nil
}

func (s *PredictionService) run(ctx context.Context) (*models.BatchResult, error) {
	snap, err := s.Ingest(ctx)
	if err != nil {
		return nil, err
	}
	metrics.UpdateRunInputs(len(snap.Records), len(snap.Fixtures))

	start := time.Now()
	batch, err := s.deps.Engine.PredictBatch(ctx, snap.Records, snap.Fixtures)
	if err != nil {
		return nil, fmt.Errorf("failed to predict fixtures: %w", err)
	}
	metrics.RecordPredictionRun(batch.Succeeded, batch.Failed, time.Since(start).Seconds())
	for _, p := range batch.Failures() {
		metrics.RecordPredictionFailure(models.ErrorKind(p.Err))
	}
	s.metrics.RecordPredictions(batch.Succeeded, batch.Failed)

	if repos := s.deps.Repositories; repos != nil {
		if err := repos.Prediction.SaveBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to store predictions: %w", err)
		}
		s.pipeline.LogRecordsStored(database.TablePredictions, len(batch.Predictions))
	}

	if s.deps.Exporter != nil {
		if err := s.deps.Exporter.Upload(ctx, batch, snap.Records, snap.Fixtures); err != nil {
			return nil, fmt.Errorf("failed to export tables: %w", err)
		}
		s.metrics.RecordUpload()
	}

	s.mu.Lock()
	s.latest = batch
	s.mu.Unlock()

	if s.deps.Publisher != nil {
		s.deps.Publisher.Publish(batch)
	}
	return batch, nil
}

// Latest returns the batch of the last successful run in this process,
// falling back to the store. models.ErrNotFound means nothing has run yet.
func (s *PredictionService) Latest(ctx context.Context) (*models.BatchResult, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}

	if s.deps.Repositories == nil {
		return nil, models.ErrNotFound
	}
	batch, err := s.deps.Repositories.Prediction.LatestRun(ctx)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to load latest run: %w", err)
	}
	return batch, err
}

func (s *PredictionService) reportMalformed(rejected []*ledger.MalformedError) {
	if len(rejected) == 0 {
		return
	}
	policy := s.deps.Parser.Policy()
	for _, r := range rejected {
		s.prediction.LogMalformedRecord(r.Source, r.Row, r.Error(), policy)
	}
	metrics.RecordMalformedRecords(policy, len(rejected))
}

func (s *PredictionService) checkData(snap *Snapshot) {
	issues := 0
	for _, m := range snap.Records {
		for _, problem := range s.validator.ValidateMatch(m) {
			s.pipeline.WithField("match", m.HomeTeam+" vs "+m.AwayTeam).Warn(problem)
			issues++
		}
	}
	for _, problem := range s.validator.ValidateFixtures(snap.Fixtures, snap.Records) {
		s.pipeline.Warn(problem)
		issues++
	}
	s.metrics.RecordValidationIssues(issues)
}
