// Package health serves container health checks, Prometheus metrics, the
// latest prediction batch and the live prediction feed.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/girguy/concaf/internal/export"
	"github.com/girguy/concaf/internal/metrics"
	"github.com/girguy/concaf/internal/models"
)

// DatabasePinger defines the interface for checking database connectivity.
type DatabasePinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// StorageChecker verifies the object store is reachable.
type StorageChecker interface {
	Health(ctx context.Context) error
}

// LatestProvider returns the most recent prediction batch.
type LatestProvider interface {
	Latest(ctx context.Context) (*models.BatchResult, error)
}

// PredictionRow is one fixture of a served batch. Outcome values are
// rounded to two decimals as in the exported table.
type PredictionRow struct {
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	Win       string `json:"win,omitempty"`
	Draw      string `json:"draw,omitempty"`
	Loss      string `json:"loss,omitempty"`
	BothScore string `json:"both_score,omitempty"`
	Over15    string `json:"over_1_5,omitempty"`
	Over25    string `json:"over_2_5,omitempty"`
	Over35    string `json:"over_3_5,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PredictionsResponse is the JSON body of /predictions and feed messages.
type PredictionsResponse struct {
	RunID         uuid.UUID       `json:"run_id"`
	ReferenceDate string          `json:"reference_date"`
	CreatedAt     string          `json:"created_at"`
	Succeeded     int             `json:"succeeded"`
	Failed        int             `json:"failed"`
	Predictions   []PredictionRow `json:"predictions"`
}

// NewPredictionsResponse flattens a batch, keeping fixture order.
func NewPredictionsResponse(batch *models.BatchResult) *PredictionsResponse {
	resp := &PredictionsResponse{
		RunID:         batch.RunID,
		ReferenceDate: batch.ReferenceDate.Format(models.DateLayout),
		CreatedAt:     batch.CreatedAt.UTC().Format(time.RFC3339),
		Succeeded:     batch.Succeeded,
		Failed:        batch.Failed,
		Predictions:   make([]PredictionRow, 0, len(batch.Predictions)),
	}
	for _, p := range batch.Predictions {
		row := PredictionRow{HomeTeam: p.HomeTeam, AwayTeam: p.AwayTeam}
		if p.Failed() {
			row.Error = p.ErrorMessage()
		} else {
			o := p.Outcome
			row.Win = export.Percent(o.Win)
			row.Draw = export.Percent(o.Draw)
			row.Loss = export.Percent(o.Loss)
			row.BothScore = export.Percent(o.BothScore)
			row.Over15 = export.Percent(o.Over15)
			row.Over25 = export.Percent(o.Over25)
			row.Over35 = export.Percent(o.Over35)
		}
		resp.Predictions = append(resp.Predictions, row)
	}
	return resp
}

// Server is a lightweight HTTP server for health check endpoints.
type Server struct {
	serviceName string
	version     string
	commit      string
	port        string
	metricsPath string
	server      *http.Server
	logger      *logrus.Logger
	db          DatabasePinger
	storage     StorageChecker
	latest      LatestProvider
	feed        *Hub
	mu          sync.RWMutex
	ready       bool
}

// Config holds the configuration for the health server.
type Config struct {
	ServiceName string
	Version     string
	Commit      string
	Port        string
	MetricsPath string
	Logger      *logrus.Logger
	DB          DatabasePinger
	Storage     StorageChecker
	Latest      LatestProvider
	Feed        *Hub
}

// NewServer creates a new health check server.
func NewServer(cfg Config) *Server {
	port := cfg.Port
	if port == "" {
		port = os.Getenv("HEALTH_PORT")
	}
	if port == "" {
		port = "8080"
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	return &Server{
		serviceName: cfg.ServiceName,
		version:     cfg.Version,
		commit:      cfg.Commit,
		port:        port,
		metricsPath: metricsPath,
		logger:      cfg.Logger,
		db:          cfg.DB,
		storage:     cfg.Storage,
		latest:      cfg.Latest,
		feed:        cfg.Feed,
		ready:       false,
	}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the router with every endpoint the server exposes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.HandleFunc("/live", s.handleLive)
	mux.Handle(s.metricsPath, metrics.Handler())
	if s.latest != nil {
		mux.HandleFunc("/predictions", s.handlePredictions)
	}
	if s.feed != nil {
		mux.HandleFunc("/ws/predictions", s.feed.HandleWS)
	}
	return mux
}

// Start starts the health check server in the background.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"port":    s.port,
				"service": s.serviceName,
			}).Info("Health check server starting")
		}

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.WithError(err).Error("Health check server error")
			}
		}
	}()

	// Wait for context cancellation
	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the health check server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	if s.logger != nil {
		s.logger.Info("Health check server shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

// handleHealth handles the /health endpoint - basic liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.serviceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Commit:    s.commit,
	})
}

// handleLive handles the /live endpoint - kubernetes liveness check.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Service: s.serviceName})
}

// handleReady handles the /ready endpoint. The service must be marked
// ready and every configured dependency must answer within three seconds.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	healthy := true

	if s.IsReady() {
		checks["service"] = "ok"
	} else {
		healthy = false
		checks["service"] = "not_ready"
	}

	check := func(name string, ping func(ctx context.Context) error) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			healthy = false
			checks[name] = fmt.Sprintf("error: %v", err)
			return
		}
		checks[name] = "ok"
	}
	if s.db != nil {
		check("database", s.db.Ping)
	}
	if s.storage != nil {
		check("storage", s.storage.Health)
	}

	response := ReadyResponse{
		Status:   "ok",
		Service:  s.serviceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}
	status := http.StatusOK
	if !healthy {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

// handlePredictions serves the latest batch, or 404 before the first run.
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	batch, err := s.latest.Latest(r.Context())
	if errors.Is(err, models.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no prediction run yet"})
		return
	}
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Error("Failed to load latest predictions")
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, NewPredictionsResponse(batch))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
