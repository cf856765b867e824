package scheduler

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/girguy/concaf/internal/models"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) Run(ctx context.Context) (*models.BatchResult, error) {
	r.calls.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &models.BatchResult{RunID: uuid.New()}, nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestStartRequiresJobs(t *testing.T) {
	s := NewScheduler(&countingRunner{}, quietLogger())
	assert.Error(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestSchedulePipelineRejectsBadExpression(t *testing.T) {
	s := NewScheduler(&countingRunner{}, quietLogger())
	_, err := s.SchedulePipeline("every now and then")
	assert.Error(t, err)
}

func TestSchedulerLifecycle(t *testing.T) {
	s := NewScheduler(&countingRunner{}, quietLogger())

	_, err := s.SchedulePipeline("0 */6 * * *")
	require.NoError(t, err)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Error(t, s.Start())
	assert.False(t, s.GetNextRun().IsZero())

	_, err = s.SchedulePipeline("@hourly")
	assert.Error(t, err)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.True(t, s.GetNextRun().IsZero())
}

func TestRunOnceTolerantOfFailures(t *testing.T) {
	runner := &countingRunner{err: errors.New("source down")}
	s := NewScheduler(runner, quietLogger())

	assert.NotPanics(t, s.runOnce)
	runner.err = nil
	assert.NotPanics(t, s.runOnce)
	assert.Equal(t, int32(2), runner.calls.Load())
}

func TestScheduledJobFires(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, quietLogger())

	_, err := s.SchedulePipeline("@every 1s")
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)
}
