package database

import (
	"context"
	"fmt"

	"github.com/girguy/concaf/internal/config"
)

// Initialize creates a Postgres connection pool and applies the schema
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDBFromDSN(ctx, cfg.GetDatabaseDSN(), cfg.Database.MaxConnections)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("schema setup failed and close failed: close=%w, schema=%w", closeErr, err)
		}
		return nil, err
	}

	return db, nil
}

// InitializeSQLite opens the configured SQLite file and applies the schema
func InitializeSQLite(ctx context.Context, cfg *config.Config) (*SQLiteDB, error) {
	db, err := OpenSQLite(ctx, cfg.Database.SQLitePath)
	if err != nil {
		return nil, err
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}
