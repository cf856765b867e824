// Package logger provides prediction-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// PredictionLogger provides dedicated logging for prediction runs.
type PredictionLogger struct {
	*logrus.Entry
}

// NewPredictionLogger creates a new prediction logger.
func NewPredictionLogger(baseLogger *logrus.Logger) *PredictionLogger {
	return &PredictionLogger{
		Entry: baseLogger.WithField("component", "prediction"),
	}
}

// LogRunStarted logs the start of a prediction run.
func (pl *PredictionLogger) LogRunStarted(runID string, ledgerRecords, fixtures int, settings string) {
	pl.WithFields(logrus.Fields{
		"run_id":         runID,
		"ledger_records": ledgerRecords,
		"fixtures":       fixtures,
		"settings":       settings,
	}).Info("Prediction run started")
}

// LogFixturePredicted logs a successful fixture prediction.
func (pl *PredictionLogger) LogFixturePredicted(runID, homeTeam, awayTeam string, homeRate, awayRate, win, draw, loss float64) {
	pl.WithFields(logrus.Fields{
		"run_id":    runID,
		"home_team": homeTeam,
		"away_team": awayTeam,
		"home_rate": homeRate,
		"away_rate": awayRate,
		"win":       win,
		"draw":      draw,
		"loss":      loss,
	}).Debug("Fixture predicted")
}

// LogFixtureFailed logs a fixture that produced a failure marker.
func (pl *PredictionLogger) LogFixtureFailed(runID, homeTeam, awayTeam, kind string, err error) {
	pl.WithFields(logrus.Fields{
		"run_id":     runID,
		"home_team":  homeTeam,
		"away_team":  awayTeam,
		"error_kind": kind,
	}).WithError(err).Warn("Fixture prediction failed")
}

// LogRunCompleted logs the end of a prediction run.
func (pl *PredictionLogger) LogRunCompleted(runID string, succeeded, failed int, durationMs float64) {
	pl.WithFields(logrus.Fields{
		"run_id":      runID,
		"succeeded":   succeeded,
		"failed":      failed,
		"duration_ms": durationMs,
	}).Info("Prediction run completed")
}

// LogMalformedRecord logs a ledger row rejected during ingestion.
func (pl *PredictionLogger) LogMalformedRecord(source string, row int, reason, policy string) {
	pl.WithFields(logrus.Fields{
		"source": source,
		"row":    row,
		"reason": reason,
		"policy": policy,
	}).Warn("Malformed ledger record")
}
