package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordPredictionRun(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("failed"))

	assert.NotPanics(t, func() {
		RecordPredictionRun(5, 2, 0.012)
	})
	assert.Equal(t, before+2, testutil.ToFloat64(PredictionsTotal.WithLabelValues("failed")))
}

func TestRecordSourceFetch(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(SourceFetchTotal.WithLabelValues("csv", "error"))

	RecordSourceFetch("csv", errors.New("boom"), 0.2)
	RecordSourceFetch("csv", nil, 0.1)

	assert.Equal(t, before+1, testutil.ToFloat64(SourceFetchTotal.WithLabelValues("csv", "error")))
}

func TestUpdateRunInputs(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name     string
		records  int
		fixtures int
	}{
		{"empty", 0, 0},
		{"tournament", 52, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			UpdateRunInputs(tt.records, tt.fixtures)
			assert.Equal(t, float64(tt.records), testutil.ToFloat64(LedgerRecords))
			assert.Equal(t, float64(tt.fixtures), testutil.ToFloat64(FixturesPending))
		})
	}
}

func TestHandlerExposesNamespace(t *testing.T) {
	InitRegistry()
	RecordRun("succeeded", 1700000000)
	RecordMalformedRecords("skip", 1)
	RecordBlobUpload(nil)
	RecordPredictionFailure("insufficient_data")
	UpdateFeedSubscribers(0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "concaf_prediction_runs_total"))
	assert.True(t, strings.Contains(body, "concaf_last_run_timestamp_seconds 1.7e+09"))
}
