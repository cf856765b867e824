// Package logger provides pipeline logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineLogger records the I/O steps around a prediction run.
type PipelineLogger struct {
	*logrus.Entry
}

// NewPipelineLogger creates a new pipeline logger.
func NewPipelineLogger(baseLogger *logrus.Logger) *PipelineLogger {
	return &PipelineLogger{
		Entry: baseLogger.WithField("component", "pipeline"),
	}
}

// LogSourceFetched logs a completed fetch from a ledger or fixture source.
func (pl *PipelineLogger) LogSourceFetched(source, kind string, rows int, duration time.Duration) {
	pl.WithFields(logrus.Fields{
		"source":      source,
		"kind":        kind,
		"rows":        rows,
		"duration_ms": duration.Milliseconds(),
	}).Info("Source fetched")
}

// LogRecordsStored logs rows written to the store.
func (pl *PipelineLogger) LogRecordsStored(table string, rows int) {
	pl.WithFields(logrus.Fields{
		"table": table,
		"rows":  rows,
	}).Info("Records stored")
}

// LogTableUploaded logs an exported table written to object storage.
func (pl *PipelineLogger) LogTableUploaded(key string, bytes int, timestamp time.Time) {
	pl.WithFields(logrus.Fields{
		"key":       key,
		"bytes":     bytes,
		"timestamp": timestamp.Unix(),
	}).Info("Table uploaded")
}

// LogStepFailed logs a pipeline step that returned an error.
func (pl *PipelineLogger) LogStepFailed(step string, err error) {
	pl.WithFields(logrus.Fields{
		"step": step,
	}).WithError(err).Error("Pipeline step failed")
}
