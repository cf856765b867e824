package repository

import (
	"context"
	"fmt"

	"github.com/girguy/concaf/internal/config"
	"github.com/girguy/concaf/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Match      MatchRepository
	Fixture    FixtureRepository
	Prediction PredictionRepository

	closer func() error
	ping   func(context.Context) error
}

// NewRepositories creates the Postgres-backed repositories
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:      NewPostgresMatchRepository(db),
		Fixture:    NewPostgresFixtureRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
		closer:     db.Close,
		ping:       db.HealthCheck,
	}, nil
}

// NewSQLiteRepositories creates the SQLite-backed repositories
func NewSQLiteRepositories(db *database.SQLiteDB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:      NewSQLiteMatchRepository(db),
		Fixture:    NewSQLiteFixtureRepository(db),
		Prediction: NewSQLitePredictionRepository(db),
		closer:     db.Close,
		ping:       db.Ping,
	}, nil
}

// Open connects to the configured driver, applies the schema and returns
// the matching repositories.
func Open(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewRepositories(db)
	case "sqlite":
		db, err := database.InitializeSQLite(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewSQLiteRepositories(db)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

// Ping checks the underlying store
func (r *Repositories) Ping(ctx context.Context) error {
	if r.ping == nil {
		return nil
	}
	return r.ping(ctx)
}

// Close releases the underlying store
func (r *Repositories) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
