package database

// Table names shared by both dialects
const (
	TableMatches     = "matches"
	TableFixtures    = "fixtures"
	TableRuns        = "prediction_runs"
	TablePredictions = "predictions"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id         BIGSERIAL PRIMARY KEY,
		match_date DATE NOT NULL,
		home_team  TEXT NOT NULL,
		away_team  TEXT NOT NULL,
		home_goals INTEGER NOT NULL CHECK (home_goals >= 0),
		away_goals INTEGER NOT NULL CHECK (away_goals >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_home ON matches (home_team)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_away ON matches (away_team)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		id           BIGSERIAL PRIMARY KEY,
		fixture_date DATE,
		home_team    TEXT NOT NULL,
		away_team    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS prediction_runs (
		run_id         UUID PRIMARY KEY,
		reference_date DATE NOT NULL,
		succeeded      INTEGER NOT NULL,
		failed         INTEGER NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		run_id     UUID NOT NULL REFERENCES prediction_runs (run_id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		home_team  TEXT NOT NULL,
		away_team  TEXT NOT NULL,
		home_rate  DOUBLE PRECISION,
		away_rate  DOUBLE PRECISION,
		win        DOUBLE PRECISION,
		draw       DOUBLE PRECISION,
		loss       DOUBLE PRECISION,
		both_score DOUBLE PRECISION,
		over_1_5   DOUBLE PRECISION,
		over_2_5   DOUBLE PRECISION,
		over_3_5   DOUBLE PRECISION,
		error_kind TEXT,
		error      TEXT,
		PRIMARY KEY (run_id, position)
	)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS matches (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		match_date TEXT NOT NULL,
		home_team  TEXT NOT NULL,
		away_team  TEXT NOT NULL,
		home_goals INTEGER NOT NULL CHECK (home_goals >= 0),
		away_goals INTEGER NOT NULL CHECK (away_goals >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_home ON matches (home_team)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_away ON matches (away_team)`,
	`CREATE TABLE IF NOT EXISTS fixtures (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		fixture_date TEXT,
		home_team    TEXT NOT NULL,
		away_team    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS prediction_runs (
		run_id         TEXT PRIMARY KEY,
		reference_date TEXT NOT NULL,
		succeeded      INTEGER NOT NULL,
		failed         INTEGER NOT NULL,
		created_at     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		run_id     TEXT NOT NULL REFERENCES prediction_runs (run_id) ON DELETE CASCADE,
		position   INTEGER NOT NULL,
		home_team  TEXT NOT NULL,
		away_team  TEXT NOT NULL,
		home_rate  REAL,
		away_rate  REAL,
		win        REAL,
		draw       REAL,
		loss       REAL,
		both_score REAL,
		over_1_5   REAL,
		over_2_5   REAL,
		over_3_5   REAL,
		error_kind TEXT,
		error      TEXT,
		PRIMARY KEY (run_id, position)
	)`,
}
