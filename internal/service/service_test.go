package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/config"
	"github.com/girguy/concaf/internal/database"
	"github.com/girguy/concaf/internal/datasource"
	"github.com/girguy/concaf/internal/export"
	"github.com/girguy/concaf/internal/ledger"
	"github.com/girguy/concaf/internal/models"
	"github.com/girguy/concaf/internal/prediction"
	"github.com/girguy/concaf/internal/repository"
)

type stubSource struct {
	results  []datasource.MatchData
	fixtures []datasource.FixtureData
	err      error
}

func (s *stubSource) FetchResults(ctx context.Context) ([]datasource.MatchData, error) {
	return s.results, s.err
}

func (s *stubSource) FetchFixtures(ctx context.Context) ([]datasource.FixtureData, error) {
	return s.fixtures, s.err
}

func (s *stubSource) Name() string    { return "stub" }
func (s *stubSource) IsEnabled() bool { return true }

type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (m *memoryBlobs) Put(ctx context.Context, name string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[name] = data
	return nil
}

type recordingPublisher struct {
	batches []*models.BatchResult
}

func (p *recordingPublisher) Publish(batch *models.BatchResult) {
	p.batches = append(p.batches, batch)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func stubResults() []datasource.MatchData {
	row := func(n int, date, home, away, hg, ag string) datasource.MatchData {
		return datasource.MatchData{Source: "stub", Row: n, Date: date, HomeTeam: home, AwayTeam: away, HomeGoals: hg, AwayGoals: ag}
	}
	return []datasource.MatchData{
		row(1, "13/01/2024", "Nigeria", "Cameroon", "2", "1"),
		row(2, "14/01/2024", "Cameroon", "Nigeria", "1", "1"),
		row(3, "15/01/2024", "Morocco", "Nigeria", "1", "0"),
		row(4, "16/01/2024", "Nigeria", "Morocco", "0", "2"),
		row(5, "17/01/2024", "Nigeria", "Cameroon", "x", "1"),
	}
}

func stubFixtures() []datasource.FixtureData {
	return []datasource.FixtureData{
		{Source: "stub", Row: 1, Date: "25/01/2024", HomeTeam: "Nigeria", AwayTeam: "Cameroon"},
		{Source: "stub", Row: 2, Date: "26/01/2024", HomeTeam: "Winner Group A", AwayTeam: "Runner-up Group C"},
		{Source: "stub", Row: 3, Date: "27/01/2024", HomeTeam: "Nigeria", AwayTeam: "Angola"},
		{Source: "stub", Row: 4, Date: "02/01/2024", HomeTeam: "Nigeria", AwayTeam: "Morocco"},
	}
}

func newTestService(t *testing.T, policy string, deps Dependencies) *PredictionService {
	t.Helper()

	parser, err := ledger.NewParser(policy, nil)
	require.NoError(t, err)

	cfg := prediction.DefaultConfig()
	cfg.ReferenceDate = day(2024, time.January, 20)
	engine, err := prediction.NewEngine(cfg, quietLogger())
	require.NoError(t, err)

	src := &stubSource{results: stubResults(), fixtures: stubFixtures()}
	if deps.Ledger == nil {
		deps.Ledger = []datasource.LedgerSource{src}
	}
	if deps.Fixtures == nil {
		deps.Fixtures = []datasource.FixtureSource{src}
	}
	deps.Parser = parser
	deps.Engine = engine
	deps.Logger = quietLogger()

	svc, err := NewPredictionService(deps)
	require.NoError(t, err)
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestNewPredictionServiceRequiresDependencies(t *testing.T) {
	_, err := NewPredictionService(Dependencies{})
	assert.Error(t, err)

	_, err = NewPredictionService(Dependencies{
		Ledger:   []datasource.LedgerSource{&stubSource{}},
		Fixtures: []datasource.FixtureSource{&stubSource{}},
	})
	assert.Error(t, err)
}

func TestIngestSkipsMalformedRowsAndPlaceholders(t *testing.T) {
	svc := newTestService(t, config.PolicySkip, Dependencies{})

	snap, err := svc.Ingest(context.Background())
	require.NoError(t, err)

	assert.Len(t, snap.Records, 4)
	assert.Equal(t, "Maroc", snap.Records[2].HomeTeam)
	require.Len(t, snap.Rejected, 1)
	assert.Equal(t, 5, snap.Rejected[0].Row)
	assert.True(t, errors.Is(snap.Rejected[0], models.ErrMalformedRecord))

	require.Len(t, snap.Fixtures, 2)
	assert.Equal(t, "Nigeria vs Cameroon", snap.Fixtures[0].String())
	assert.Equal(t, "Nigeria vs Angola", snap.Fixtures[1].String())

	m := svc.Metrics().Snapshot()
	assert.Equal(t, 5, m.LedgerRows)
	assert.Equal(t, 1, m.MalformedRows)
	assert.Positive(t, m.ValidationIssues)
}

func TestIngestFailPolicyAborts(t *testing.T) {
	svc := newTestService(t, config.PolicyFail, Dependencies{})

	_, err := svc.Ingest(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrMalformedRecord))
}

func TestIngestSourceError(t *testing.T) {
	broken := &stubSource{err: datasource.NewSourceError("stub", datasource.ErrCodeNetworkError, "down", nil)}
	svc := newTestService(t, config.PolicySkip, Dependencies{Ledger: []datasource.LedgerSource{broken}})

	_, err := svc.Ingest(context.Background())
	require.Error(t, err)
	var srcErr datasource.SourceError
	assert.True(t, errors.As(err, &srcErr))
}

func TestRunPersistsExportsAndPublishes(t *testing.T) {
	repos, err := repository.NewSQLiteRepositories(database.SetupTestSQLite(t))
	require.NoError(t, err)
	blobs := &memoryBlobs{}
	pub := &recordingPublisher{}

	svc := newTestService(t, config.PolicySkip, Dependencies{
		Repositories: repos,
		Exporter:     export.NewExporter(blobs, quietLogger()),
		Publisher:    pub,
	})

	_, err = svc.Latest(context.Background())
	assert.ErrorIs(t, err, models.ErrNotFound)

	batch, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, batch.Predictions, 2)
	assert.False(t, batch.Predictions[0].Failed())
	assert.True(t, batch.Predictions[1].Failed())
	assert.True(t, errors.Is(batch.Predictions[1].Err, models.ErrInsufficientData))
	assert.Equal(t, 1, batch.Succeeded)
	assert.Equal(t, 1, batch.Failed)

	stored, err := repos.Match.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, 4)

	saved, err := repos.Prediction.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Equal(t, batch.RunID, saved.RunID)

	assert.Contains(t, blobs.objects, export.OutcomesObject)
	assert.Contains(t, blobs.objects, export.RunObject(batch))
	require.Len(t, pub.batches, 1)
	assert.Same(t, batch, pub.batches[0])

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Same(t, batch, latest)
	assert.True(t, svc.Metrics().Snapshot().Uploaded)
}

func TestRunWithoutStore(t *testing.T) {
	svc := newTestService(t, config.PolicySkip, Dependencies{})

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	second, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, second.Predictions, len(first.Predictions))
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Predictions[0].Outcome, second.Predictions[0].Outcome)
}

func TestLatestFallsBackToStore(t *testing.T) {
	repos, err := repository.NewSQLiteRepositories(database.SetupTestSQLite(t))
	require.NoError(t, err)

	writer := newTestService(t, config.PolicySkip, Dependencies{Repositories: repos})
	batch, err := writer.Run(context.Background())
	require.NoError(t, err)

	reader := newTestService(t, config.PolicySkip, Dependencies{Repositories: repos})
	latest, err := reader.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, batch.RunID, latest.RunID)
}
