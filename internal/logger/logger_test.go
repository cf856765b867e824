package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() (*logrus.Logger, *bytes.Buffer) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.DebugLevel)
	return log, buf
}

func parseLogOutput(buf *bytes.Buffer) map[string]interface{} {
	var logEntry map[string]interface{}
	err := json.Unmarshal(buf.Bytes(), &logEntry)
	if err != nil {
		return nil
	}
	return logEntry
}

func TestNewLoggerLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	log := newLogger(buf, "debug", "production")
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log = newLogger(buf, "not-a-level", "development")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestPredictionLoggerRunStarted(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogRunStarted("run_001", 120, 8, "decay=0.1")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "run_001", logEntry["run_id"])
	assert.Equal(t, "prediction", logEntry["component"])
	assert.Equal(t, float64(120), logEntry["ledger_records"])
}

func TestPredictionLoggerFixtureFailed(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogFixtureFailed("run_001", "Maroc", "Zambia", "insufficient_data", errors.New("no home matches"))

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "warning", logEntry["level"])
	assert.Equal(t, "insufficient_data", logEntry["error_kind"])
	assert.Equal(t, "no home matches", logEntry["error"])
}

func TestPredictionLoggerMalformedRecord(t *testing.T) {
	log, buf := setupTestLogger()
	predictionLogger := NewPredictionLogger(log)

	predictionLogger.LogMalformedRecord("csv", 4, "bad date", "skip")

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, float64(4), logEntry["row"])
	assert.Equal(t, "skip", logEntry["policy"])
}

func TestPipelineLoggerUpload(t *testing.T) {
	log, buf := setupTestLogger()
	pipelineLogger := NewPipelineLogger(log)

	now := time.Now()
	pipelineLogger.LogTableUploaded("tables/outcome.csv", 2048, now)

	logEntry := parseLogOutput(buf)
	require.NotNil(t, logEntry)
	assert.Equal(t, "pipeline", logEntry["component"])
	assert.Equal(t, "tables/outcome.csv", logEntry["key"])
	assert.Equal(t, float64(now.Unix()), logEntry["timestamp"])
}
