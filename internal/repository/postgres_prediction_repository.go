package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/girguy/concaf/internal/database"
	"github.com/girguy/concaf/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// SaveBatch stores the run header and its rows in input order
func (r *PostgresPredictionRepository) SaveBatch(ctx context.Context, batch *models.BatchResult) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO prediction_runs (run_id, reference_date, succeeded, failed, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, batch.RunID, batch.ReferenceDate, batch.Succeeded, batch.Failed, batch.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create prediction run: %w", err)
		}

		if len(batch.Predictions) == 0 {
			return nil
		}

		copyFromSource := make([][]interface{}, len(batch.Predictions))
		for i, p := range batch.Predictions {
			copyFromSource[i] = predictionValues(batch.RunID, i, p)
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{database.TablePredictions}, predictionColumns, pgx.CopyFromRows(copyFromSource))
		if err != nil {
			return fmt.Errorf("failed to batch insert predictions: %w", err)
		}
		if count != int64(len(batch.Predictions)) {
			return fmt.Errorf("inserted %d rows, expected %d", count, len(batch.Predictions))
		}
		return nil
	})
}

// LatestRun returns the most recently created run
func (r *PostgresPredictionRepository) LatestRun(ctx context.Context) (*models.BatchResult, error) {
	var runID uuid.UUID
	err := r.db.GetPool().QueryRow(ctx,
		"SELECT run_id FROM prediction_runs ORDER BY created_at DESC LIMIT 1",
	).Scan(&runID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return r.GetRun(ctx, runID)
}

// GetRun loads a run and its rows
func (r *PostgresPredictionRepository) GetRun(ctx context.Context, runID uuid.UUID) (*models.BatchResult, error) {
	batch := &models.BatchResult{RunID: runID}
	err := r.db.GetPool().QueryRow(ctx, `
		SELECT reference_date, succeeded, failed, created_at
		FROM prediction_runs WHERE run_id = $1
	`, runID).Scan(&batch.ReferenceDate, &batch.Succeeded, &batch.Failed, &batch.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction run: %w", err)
	}

	rows, err := r.db.GetPool().Query(ctx, `
		SELECT home_team, away_team, home_rate, away_rate, win, draw, loss,
		       both_score, over_1_5, over_2_5, over_3_5, error_kind, error
		FROM predictions
		WHERE run_id = $1
		ORDER BY position ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s predictionScan
		if err := rows.Scan(s.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		batch.Predictions = append(batch.Predictions, s.prediction())
	}

	return batch, rows.Err()
}
