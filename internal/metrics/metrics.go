// Package metrics provides the centralized Prometheus registry for the prediction service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "concaf"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_total",
		Help:      "Fixture predictions by status (succeeded, failed)",
	}, []string{"status"})
	PredictionFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_failures_total",
		Help:      "Failed fixture predictions by error kind",
	}, []string{"kind"})
	PredictionRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_runs_total",
		Help:      "Pipeline runs by status",
	}, []string{"status"})
	MalformedRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "malformed_records_total",
		Help:      "Ledger and fixture rows rejected during ingestion",
	}, []string{"policy"})
	SourceFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "source_fetch_total",
		Help:      "Fetches from ledger and fixture sources",
	}, []string{"source", "status"})
	BlobUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blob_uploads_total",
		Help:      "Exported tables written to object storage",
	}, []string{"status"})
)

// Gauge metrics
var (
	LedgerRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ledger_records",
		Help:      "Match records in the ledger used by the last run",
	})
	FixturesPending = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fixtures_pending",
		Help:      "Fixtures submitted to the last run",
	})
	LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time of the last completed run",
	})
	FeedSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_subscribers",
		Help:      "Connected live prediction feed clients",
	})
)

// Histogram metrics
var (
	PredictionRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_run_duration_seconds",
		Help:      "Duration of the prediction step of a run",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	})
	SourceFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "source_fetch_duration_seconds",
		Help:      "Duration of source fetches",
		Buckets:   prometheus.DefBuckets,
	}, []string{"source"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsTotal)
		registry.MustRegister(PredictionFailuresTotal)
		registry.MustRegister(PredictionRunsTotal)
		registry.MustRegister(MalformedRecordsTotal)
		registry.MustRegister(SourceFetchTotal)
		registry.MustRegister(BlobUploadsTotal)

		registry.MustRegister(LedgerRecords)
		registry.MustRegister(FixturesPending)
		registry.MustRegister(LastRunTimestamp)
		registry.MustRegister(FeedSubscribers)

		registry.MustRegister(PredictionRunDuration)
		registry.MustRegister(SourceFetchDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPredictionRun records the outcome counts and duration of one batch.
func RecordPredictionRun(succeeded, failed int, durationSeconds float64) {
	PredictionsTotal.WithLabelValues("succeeded").Add(float64(succeeded))
	PredictionsTotal.WithLabelValues("failed").Add(float64(failed))
	PredictionRunDuration.Observe(durationSeconds)
}

// RecordPredictionFailure records a failure marker by error kind.
func RecordPredictionFailure(kind string) {
	PredictionFailuresTotal.WithLabelValues(kind).Inc()
}

// RecordRun records a completed or failed pipeline run.
func RecordRun(status string, unixSeconds float64) {
	PredictionRunsTotal.WithLabelValues(status).Inc()
	if status == "succeeded" {
		LastRunTimestamp.Set(unixSeconds)
	}
}

// RecordMalformedRecords records rows rejected during ingestion.
func RecordMalformedRecords(policy string, count int) {
	MalformedRecordsTotal.WithLabelValues(policy).Add(float64(count))
}

// RecordSourceFetch records a source fetch and its latency.
func RecordSourceFetch(source string, err error, durationSeconds float64) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	SourceFetchTotal.WithLabelValues(source, status).Inc()
	SourceFetchDuration.WithLabelValues(source).Observe(durationSeconds)
}

// RecordBlobUpload records an object storage write.
func RecordBlobUpload(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	BlobUploadsTotal.WithLabelValues(status).Inc()
}

// UpdateRunInputs sets the ledger and fixture gauges.
func UpdateRunInputs(ledgerRecords, fixtures int) {
	LedgerRecords.Set(float64(ledgerRecords))
	FixturesPending.Set(float64(fixtures))
}

// UpdateFeedSubscribers sets the number of live feed clients.
func UpdateFeedSubscribers(count int) {
	FeedSubscribers.Set(float64(count))
}
