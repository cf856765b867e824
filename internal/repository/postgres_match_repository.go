package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/girguy/concaf/internal/database"
	"github.com/girguy/concaf/internal/models"
	"github.com/jackc/pgx/v5"
)

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// ReplaceAll truncates the ledger and bulk loads records with COPY
func (r *PostgresMatchRepository) ReplaceAll(ctx context.Context, records []models.MatchRecord) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+database.TableMatches); err != nil {
			return fmt.Errorf("failed to clear matches: %w", err)
		}
		if len(records) == 0 {
			return nil
		}

		columns := []string{"match_date", "home_team", "away_team", "home_goals", "away_goals"}
		copyFromSource := make([][]interface{}, len(records))
		for i, m := range records {
			copyFromSource[i] = []interface{}{m.Date, m.HomeTeam, m.AwayTeam, m.HomeGoals, m.AwayGoals}
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{database.TableMatches}, columns, pgx.CopyFromRows(copyFromSource))
		if err != nil {
			return fmt.Errorf("failed to batch insert matches: %w", err)
		}
		if count != int64(len(records)) {
			return fmt.Errorf("inserted %d rows, expected %d", count, len(records))
		}
		return nil
	})
}

// List returns the ledger in insertion order
func (r *PostgresMatchRepository) List(ctx context.Context) ([]models.MatchRecord, error) {
	query := `
		SELECT match_date, home_team, away_team, home_goals, away_goals
		FROM matches
		ORDER BY id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var records []models.MatchRecord
	for rows.Next() {
		var m models.MatchRecord
		if err := rows.Scan(&m.Date, &m.HomeTeam, &m.AwayTeam, &m.HomeGoals, &m.AwayGoals); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		records = append(records, m)
	}

	return records, rows.Err()
}

// Count returns the number of stored results
func (r *PostgresMatchRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM matches").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return n, nil
}

// PostgresFixtureRepository implements FixtureRepository for PostgreSQL
type PostgresFixtureRepository struct {
	db *database.DB
}

// NewPostgresFixtureRepository creates a new fixture repository
func NewPostgresFixtureRepository(db *database.DB) FixtureRepository {
	return &PostgresFixtureRepository{db: db}
}

// ReplaceAll swaps the stored fixture list
func (r *PostgresFixtureRepository) ReplaceAll(ctx context.Context, fixtures []models.Fixture) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM "+database.TableFixtures); err != nil {
			return fmt.Errorf("failed to clear fixtures: %w", err)
		}

		batch := &pgx.Batch{}
		for _, f := range fixtures {
			batch.Queue(
				"INSERT INTO fixtures (fixture_date, home_team, away_team) VALUES ($1, $2, $3)",
				nullableDate(f.Date), f.HomeTeam, f.AwayTeam,
			)
		}
		if batch.Len() == 0 {
			return nil
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to insert fixtures: %w", err)
		}
		return nil
	})
}

// List returns fixtures in insertion order
func (r *PostgresFixtureRepository) List(ctx context.Context) ([]models.Fixture, error) {
	rows, err := r.db.GetPool().Query(ctx, "SELECT fixture_date, home_team, away_team FROM fixtures ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures: %w", err)
	}
	defer rows.Close()

	var fixtures []models.Fixture
	for rows.Next() {
		var f models.Fixture
		var date *time.Time
		if err := rows.Scan(&date, &f.HomeTeam, &f.AwayTeam); err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		if date != nil {
			f.Date = *date
		}
		fixtures = append(fixtures, f)
	}

	return fixtures, rows.Err()
}

func nullableDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
