package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/girguy/concaf/internal/database"
	"github.com/girguy/concaf/internal/models"
	"github.com/google/uuid"
)

const (
	sqliteDateLayout = "2006-01-02"
	// fixed width so created_at sorts lexically
	sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"
)

// SQLiteMatchRepository implements MatchRepository for SQLite
type SQLiteMatchRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteMatchRepository creates a new match repository
func NewSQLiteMatchRepository(db *database.SQLiteDB) MatchRepository {
	return &SQLiteMatchRepository{db: db}
}

// ReplaceAll swaps the stored ledger for records in one transaction
func (r *SQLiteMatchRepository) ReplaceAll(ctx context.Context, records []models.MatchRecord) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+database.TableMatches); err != nil {
			return fmt.Errorf("failed to clear matches: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO matches (match_date, home_team, away_team, home_goals, away_goals)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare match insert: %w", err)
		}
		defer stmt.Close()

		for _, m := range records {
			if _, err := stmt.ExecContext(ctx, m.Date.Format(sqliteDateLayout), m.HomeTeam, m.AwayTeam, m.HomeGoals, m.AwayGoals); err != nil {
				return fmt.Errorf("failed to insert match %s vs %s: %w", m.HomeTeam, m.AwayTeam, err)
			}
		}
		return nil
	})
}

// List returns the ledger in insertion order
func (r *SQLiteMatchRepository) List(ctx context.Context) ([]models.MatchRecord, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT match_date, home_team, away_team, home_goals, away_goals
		FROM matches ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var m models.MatchRecord
		var date string
		if err := rows.Scan(&date, &m.HomeTeam, &m.AwayTeam, &m.HomeGoals, &m.AwayGoals); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		if m.Date, err = time.Parse(sqliteDateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse match date %q: %w", date, err)
		}
		records = append(records, m)
	}

	return records, rows.Err()
}

// Count returns the number of stored results
func (r *SQLiteMatchRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.Conn().QueryRowContext(ctx, "SELECT COUNT(*) FROM matches").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}

// SQLiteFixtureRepository implements FixtureRepository for SQLite
type SQLiteFixtureRepository struct {
	db *database.SQLiteDB
}

// NewSQLiteFixtureRepository creates a new fixture repository
func NewSQLiteFixtureRepository(db *database.SQLiteDB) FixtureRepository {
	return &SQLiteFixtureRepository{db: db}
}

// ReplaceAll swaps the stored fixture list
func (r *SQLiteFixtureRepository) ReplaceAll(ctx context.Context, fixtures []models.Fixture) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+database.TableFixtures); err != nil {
			return fmt.Errorf("failed to clear fixtures: %w", err)
		}
		for _, f := range fixtures {
			var date interface{}
			if !f.Date.IsZero() {
				date = f.Date.Format(sqliteDateLayout)
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO fixtures (fixture_date, home_team, away_team) VALUES (?, ?, ?)",
				date, f.HomeTeam, f.AwayTeam,
			)
			if err != nil {
				return fmt.Errorf("failed to insert fixture %s: %w", f, err)
			}
		}
		return nil
	})
}

// List returns fixtures in insertion order
func (r *SQLiteFixtureRepository) List(ctx context.Context) ([]models.Fixture, error) {
	rows, err := r.db.Conn().QueryContext(ctx, "SELECT fixture_date, home_team, away_team FROM fixtures ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []models.Fixture
	for rows.Next() {
		var f models.Fixture
		var date sql.NullString
		if err := rows.Scan(&date, &f.HomeTeam, &f.AwayTeam); err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		if date.Valid {
			if f.Date, err = time.Parse(sqliteDateLayout, date.String); err != nil {
				return nil, fmt.Errorf("failed to parse fixture date %q: %w", date.String, err)
			}
		}
		fixtures = append(fixtures, f)
	}

	return fixtures, rows.Err()
}

// SQLitePredictionRepository implements PredictionRepository for SQLite
type SQLitePredictionRepository struct {
	db *database.SQLiteDB
}

// NewSQLitePredictionRepository creates a new prediction repository
func NewSQLitePredictionRepository(db *database.SQLiteDB) PredictionRepository {
	return &SQLitePredictionRepository{db: db}
}

// SaveBatch stores the run header and its rows in input order
func (r *SQLitePredictionRepository) SaveBatch(ctx context.Context, batch *models.BatchResult) error {
	insert := fmt.Sprintf("INSERT INTO predictions (%s) VALUES (%s)",
		strings.Join(predictionColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(predictionColumns)), ", "),
	)

	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prediction_runs (run_id, reference_date, succeeded, failed, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, batch.RunID.String(), batch.ReferenceDate.Format(sqliteDateLayout),
			batch.Succeeded, batch.Failed, batch.CreatedAt.UTC().Format(sqliteTimeLayout))
		if err != nil {
			return fmt.Errorf("failed to create prediction run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("failed to prepare prediction insert: %w", err)
		}
		defer stmt.Close()

		for i, p := range batch.Predictions {
			if _, err := stmt.ExecContext(ctx, predictionValues(batch.RunID.String(), i, p)...); err != nil {
				return fmt.Errorf("failed to insert prediction %d: %w", i, err)
			}
		}
		return nil
	})
}

// LatestRun returns the most recently created run
func (r *SQLitePredictionRepository) LatestRun(ctx context.Context) (*models.BatchResult, error) {
	var id string
	err := r.db.Conn().QueryRowContext(ctx,
		"SELECT run_id FROM prediction_runs ORDER BY created_at DESC LIMIT 1",
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	runID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run id %q: %w", id, err)
	}
	return r.GetRun(ctx, runID)
}

// GetRun loads a run and its rows
func (r *SQLitePredictionRepository) GetRun(ctx context.Context, runID uuid.UUID) (*models.BatchResult, error) {
	batch := &models.BatchResult{RunID: runID}
	var refDate, createdAt string
	err := r.db.Conn().QueryRowContext(ctx, `
		SELECT reference_date, succeeded, failed, created_at
		FROM prediction_runs WHERE run_id = ?
	`, runID.String()).Scan(&refDate, &batch.Succeeded, &batch.Failed, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction run: %w", err)
	}
	if batch.ReferenceDate, err = time.Parse(sqliteDateLayout, refDate); err != nil {
		return nil, fmt.Errorf("failed to parse reference date %q: %w", refDate, err)
	}
	if batch.CreatedAt, err = time.Parse(sqliteTimeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at %q: %w", createdAt, err)
	}

	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT home_team, away_team, home_rate, away_rate, win, draw, loss,
		       both_score, over_1_5, over_2_5, over_3_5, error_kind, error
		FROM predictions
		WHERE run_id = ?
		ORDER BY position ASC
	`, runID.String())
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
