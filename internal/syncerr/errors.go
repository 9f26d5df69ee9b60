// Package syncerr defines the error taxonomy for synchronization runs.
//
// ValidationError is fatal and aborts a run before any stage executes.
// UpstreamError and PersistenceError are accumulated into the run's result
// at the granularity where they occurred. ConcurrencyError rejects a run
// immediately with no side effects.
package syncerr

import (
	"errors"
	"fmt"
)

// ValidationError indicates a missing or inactive owner, or a missing
// credential. Fatal: the sync aborts before any stage runs.
type ValidationError struct {
	OwnerID string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("sync validation failed for owner %s: %s", e.OwnerID, e.Reason)
}

// UpstreamError wraps a brokerage API failure. Retried at chunk granularity,
// then skipped.
type UpstreamError struct {
	Endpoint string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream call %s failed: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError wraps a store write failure for a single record.
// Isolated per record; processing continues with siblings.
type PersistenceError struct {
	Entity string
	Key    string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist %s %s: %v", e.Entity, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConcurrencyError indicates a sync was requested for an owner that already
// has one in flight. Rejected immediately; state is unchanged.
type ConcurrencyError struct {
	OwnerID string
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("sync already in progress for owner %s", e.OwnerID)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConcurrency reports whether err is a ConcurrencyError.
func IsConcurrency(err error) bool {
	var ce *ConcurrencyError
	return errors.As(err, &ce)
}
