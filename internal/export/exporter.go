package export

import (
	"context"
	"fmt"
	"time"

	"github.com/girguy/concaf/internal/logger"
	"github.com/girguy/concaf/internal/metrics"
	"github.com/girguy/concaf/internal/models"
	"github.com/sirupsen/logrus"
)

const contentTypeCSV = "text/csv"

// BlobWriter stores named objects. s3blob.Writer satisfies it.
type BlobWriter interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
}

// Exporter uploads the tables of a completed run
type Exporter struct {
	writer BlobWriter
	logger *logger.PipelineLogger
}

// NewExporter creates an exporter writing through w
func NewExporter(w BlobWriter, log *logrus.Logger) *Exporter {
	return &Exporter{writer: w, logger: logger.NewPipelineLogger(log)}
}

// Upload writes the games, fixtures and outcome tables, plus a copy of
// the outcome table keyed by run id so earlier runs stay retrievable.
func (e *Exporter) Upload(ctx context.Context, batch *models.BatchResult, records []models.MatchRecord, fixtures []models.Fixture) error {
	games, err := GamesTable(records)
	if err != nil {
		return fmt.Errorf("failed to render games table: %w", err)
	}
	fixtureTable, err := FixturesTable(fixtures)
	if err != nil {
		return fmt.Errorf("failed to render fixtures table: %w", err)
	}
	outcomes, err := OutcomeTable(batch)
	if err != nil {
		return fmt.Errorf("failed to render outcome table: %w", err)
	}

	objects := []struct {
		name string
		data []byte
	}{
		{GamesObject, games},
		{FixturesObject, fixtureTable},
		{OutcomesObject, outcomes},
		{RunObject(batch), outcomes},
	}

	for _, obj := range objects {
		err := e.writer.Put(ctx, obj.name, obj.data, contentTypeCSV)
		metrics.RecordBlobUpload(err)
		if err != nil {
			e.logger.LogStepFailed("upload "+obj.name, err)
			return fmt.Errorf("failed to upload %s: %w", obj.name, err)
		}
		e.logger.LogTableUploaded(obj.name, len(obj.data), time.Now())
	}
	return nil
}

// RunObject names the per-run copy of the outcome table
func RunObject(batch *models.BatchResult) string {
	return fmt.Sprintf("runs/%s/%s", batch.RunID, OutcomesObject)
}
