package service

import (
	"fmt"
	"sync"
	"time"
)

// RunMetrics tracks statistics about the latest pipeline run
type RunMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	LedgerRows       int
	LedgerRecords    int
	FixtureRows      int
	Fixtures         int
	MalformedRows    int
	ValidationIssues int
	Succeeded        int
	Failed           int
	Uploaded         bool
	Errors           int
}

// NewRunMetrics creates a new metrics tracker
func NewRunMetrics() *RunMetrics {
	return &RunMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *RunMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.LedgerRows = 0
	m.LedgerRecords = 0
	m.FixtureRows = 0
	m.Fixtures = 0
	m.MalformedRows = 0
	m.ValidationIssues = 0
	m.Succeeded = 0
	m.Failed = 0
	m.Uploaded = false
	m.Errors = 0
}

// RecordLedger stores raw and parsed ledger sizes
func (m *RunMetrics) RecordLedger(rows, records, malformed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LedgerRows = rows
	m.LedgerRecords = records
	m.MalformedRows += malformed
}

// RecordFixtures stores raw and parsed fixture counts
func (m *RunMetrics) RecordFixtures(rows, fixtures, malformed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FixtureRows = rows
	m.Fixtures = fixtures
	m.MalformedRows += malformed
}

// RecordValidationIssues adds sanity check findings
func (m *RunMetrics) RecordValidationIssues(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationIssues += n
}

// RecordPredictions stores the batch outcome counts
func (m *RunMetrics) RecordPredictions(succeeded, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Succeeded = succeeded
	m.Failed = failed
}

// RecordUpload marks the tables as exported
func (m *RunMetrics) RecordUpload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploaded = true
}

// RecordError increments error count
func (m *RunMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// Finish stamps the run duration
func (m *RunMetrics) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
}

// Snapshot returns a copy safe to read without the lock
func (m *RunMetrics) Snapshot() RunMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return RunMetrics{
		StartTime:        m.StartTime,
		Duration:         m.Duration,
		LedgerRows:       m.LedgerRows,
		LedgerRecords:    m.LedgerRecords,
		FixtureRows:      m.FixtureRows,
		Fixtures:         m.Fixtures,
		MalformedRows:    m.MalformedRows,
		ValidationIssues: m.ValidationIssues,
		Succeeded:        m.Succeeded,
		Failed:           m.Failed,
		Uploaded:         m.Uploaded,
		Errors:           m.Errors,
	}
}

// String returns a formatted string representation of metrics
func (m *RunMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return fmt.Sprintf(
		"ledger=%d/%d fixtures=%d/%d malformed=%d issues=%d predicted=%d failed=%d uploaded=%t errors=%d duration=%v",
		m.LedgerRecords, m.LedgerRows, m.Fixtures, m.FixtureRows, m.MalformedRows,
		m.ValidationIssues, m.Succeeded, m.Failed, m.Uploaded, m.Errors, m.Duration,
	)
}
