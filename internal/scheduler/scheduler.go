// Package scheduler re-runs the prediction pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/girguy/concaf/internal/models"
)

// Runner is the job the scheduler triggers; service.PredictionService
// satisfies it.
type Runner interface {
	Run(ctx context.Context) (*models.BatchResult, error)
}

// Scheduler manages scheduled pipeline runs
type Scheduler struct {
	cron            *cron.Cron
	runner          Runner
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	runTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler. Overlapping triggers are skipped
// while a run is still in progress.
func NewScheduler(runner Runner, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	entry := logger.WithField("component", "scheduler")
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{entry})),
		),
		runner:          runner,
		logger:          entry,
		jobIDs:          make([]cron.EntryID, 0),
		runTimeout:      30 * time.Minute,
		gracefulTimeout: 30 * time.Second,
	}
}

// SchedulePipeline adds the pipeline job with a standard five-field cron
// expression or a descriptor such as "@every 1h".
func (s *Scheduler) SchedulePipeline(cronExpression string) (cron.EntryID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return 0, fmt.Errorf("cannot schedule job while scheduler is running")
	}

	entryID, err := s.cron.AddFunc(cronExpression, s.runOnce)
	if err != nil {
		return 0, fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("cron", cronExpression).Info("Scheduled pipeline job")

	return entryID, nil
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	start := time.Now()
	batch, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled pipeline run failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":      batch.RunID.String(),
		"succeeded":   batch.Succeeded,
		"failed":      batch.Failed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Scheduled pipeline run completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop waits up to the graceful timeout for a running job to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %v", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// cronLogger adapts logrus to the cron.Logger interface
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).WithError(err).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
