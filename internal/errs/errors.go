// Package errs defines the error taxonomy shared by services, repositories
// and clients: validation failures, missing records, store failures and
// client-side transport failures.
package errs

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requisition id or requisition number does
// not reference an existing record. The polling client treats it as "no
// change", not as a failure.
var ErrNotFound = errors.New("not found")

// ValidationError reports a rejected input before any storage is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidation creates a ValidationError for the given field.
func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError wraps a store read/write failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NewPersistence wraps err as a PersistenceError for operation op.
func NewPersistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// NetworkError wraps a client-to-server call that failed to complete.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NewNetwork wraps err as a NetworkError for operation op.
func NewNetwork(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}
