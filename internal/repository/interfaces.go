package repository

import (
	"context"

	"github.com/girguy/concaf/internal/models"
	"github.com/google/uuid"
)

// MatchRepository defines the interface for the result ledger
type MatchRepository interface {
	// ReplaceAll swaps the stored ledger for records in one transaction
	ReplaceAll(ctx context.Context, records []models.MatchRecord) error
	List(ctx context.Context) ([]models.MatchRecord, error)
	Count(ctx context.Context) (int, error)
}

// FixtureRepository defines the interface for upcoming fixtures
type FixtureRepository interface {
	ReplaceAll(ctx context.Context, fixtures []models.Fixture) error
	List(ctx context.Context) ([]models.Fixture, error)
}

// PredictionRepository defines the interface for prediction run history
type PredictionRepository interface {
	SaveBatch(ctx context.Context, batch *models.BatchResult) error
	// LatestRun returns the most recent run, or models.ErrNotFound
	LatestRun(ctx context.Context) (*models.BatchResult, error)
	GetRun(ctx context.Context, runID uuid.UUID) (*models.BatchResult, error)
}
