package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrMalformedRecord      = errors.New("malformed record")
	ErrInsufficientData     = errors.New("insufficient data")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrNotFound             = errors.New("record not found")
)

// PredictionError annotates one of the sentinel errors above with the
// operation that produced it.
type PredictionError struct {
	Op     string
	Detail string
	Err    error
}

// Error implements the error interface
func (e *PredictionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, e.Err, e.Detail)
}

// Unwrap exposes the sentinel for errors.Is
func (e *PredictionError) Unwrap() error {
	return e.Err
}

// NewPredictionError builds a PredictionError with a formatted detail.
func NewPredictionError(op string, kind error, format string, args ...interface{}) *PredictionError {
	return &PredictionError{
		Op:     op,
		Detail: fmt.Sprintf(format, args...),
		Err:    kind,
	}
}

// ErrorKind reports which sentinel an error chain carries, or "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	case errors.Is(err, ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, ErrInvalidConfiguration):
		return "invalid_configuration"
	default:
		return "internal"
	}
}

// SentinelForKind maps an ErrorKind label back to its sentinel
func SentinelForKind(kind string) error {
	switch kind {
	case "malformed_record":
		return ErrMalformedRecord
	case "insufficient_data":
		return ErrInsufficientData
	case "invalid_configuration":
		return ErrInvalidConfiguration
	default:
		return nil
	}
}

// StoredError is a failure marker read back from persistence. It keeps
// the original message and still matches its sentinel with errors.Is.
type StoredError struct {
	Kind    string
	Message string
}

// Error implements the error interface
func (e *StoredError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel for errors.Is
func (e *StoredError) Unwrap() error {
	return SentinelForKind(e.Kind)
}
