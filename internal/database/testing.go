package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestDatabaseURLEnv names the Postgres DSN used by integration tests
const TestDatabaseURLEnv = "CONCAF_TEST_DATABASE_URL"

// SetupTestDB connects to the integration database, or skips the test
// when CONCAF_TEST_DATABASE_URL is unset.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv(TestDatabaseURLEnv)
	if dsn == "" {
		t.Skipf("Integration test - set %s to run", TestDatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDBFromDSN(ctx, dsn, 4)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

// SetupTestSQLite opens a private in-memory store with the schema applied
func SetupTestSQLite(t *testing.T) *SQLiteDB {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := OpenSQLite(ctx, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	t.Cleanup(func() { TeardownTestDB(t, db) })
	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db interface{ Close() error }) {
	if err := db.Close(); err != nil {
		t.Logf("warning: failed to close test database: %v", err)
	}
}
