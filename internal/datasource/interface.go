package datasource

import (
	"context"
	"errors"
)

// LedgerSource supplies historical results
type LedgerSource interface {
	// FetchResults retrieves every played match the source knows about
	FetchResults(ctx context.Context) ([]MatchData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// FixtureSource supplies upcoming pairings
type FixtureSource interface {
	// FetchFixtures retrieves the scheduled matches
	FetchFixtures(ctx context.Context) ([]FixtureData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// MatchData is a result row exactly as the provider published it. Dates and
// goals stay as text; the ledger parser turns them into typed records.
type MatchData struct {
	Source    string `json:"source"`
	Row       int    `json:"row"`        // Position within the source, 1-based
	Date      string `json:"date"`       // dd/mm/yyyy or yyyy-mm-dd
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeGoals string `json:"home_goals"`
	AwayGoals string `json:"away_goals"`
}

// FixtureData is an upcoming match as published by the provider
type FixtureData struct {
	Source   string `json:"source"`
	Row      int    `json:"row"`
	Date     string `json:"date"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
}

// SourceError represents errors from data source operations
type SourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e SourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e SourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded = "rate_limit_exceeded"
	ErrCodeNotFound          = "not_found"
	ErrCodeInvalidData       = "invalid_data"
	ErrCodeNetworkError      = "network_error"
	ErrCodeServerError       = "server_error"
	ErrCodeCircuitOpen       = "circuit_open"
)

// Sentinel errors
var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrNotFound          = errors.New("data not found")
	ErrInvalidData       = errors.New("invalid data format")
	ErrNetworkError      = errors.New("network error")
	ErrServerError       = errors.New("server error")
	ErrCircuitOpen       = errors.New("circuit breaker open")
)

// NewSourceError creates a new data source error
func NewSourceError(source, code, message string, err error) SourceError {
	return SourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
