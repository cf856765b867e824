package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteDB is the single-file store used by the CLI and local runs
type SQLiteDB struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (or creates) the database file at path.
// ":memory:" gives a private in-memory database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; in-memory databases are per connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLiteDB{db: db, path: path}, nil
}

// EnsureSchema creates the prediction tables when they are missing
func (s *SQLiteDB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// WithTransaction runs fn inside a transaction, rolling back when it fails
func (s *SQLiteDB) WithTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %w", err, rollbackErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping verifies the file is still reachable
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database handle
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Path returns the file the store was opened from
func (s *SQLiteDB) Path() string {
	return s.path
}

// Conn returns the underlying handle
func (s *SQLiteDB) Conn() *sql.DB {
	return s.db
}
