// Package errs defines the error taxonomy shared by the document store, the
// search index and the task engine.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Business outcomes (not found, conflict, duplicate,
// validation) are surfaced to callers unchanged; the two unavailable errors
// describe transport failures of a backing store.
var (
	ErrNotFound         = errors.New("not found")
	ErrRevisionConflict = errors.New("revision conflict")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrStoreUnavailable = errors.New("document store unavailable")
	ErrIndexUnavailable = errors.New("search index unavailable")
	ErrValidation       = errors.New("validation failed")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Wire codes used when an error has to cross a request-reply boundary.
const (
	CodeNotFound         = "not_found"
	CodeRevisionConflict = "revision_conflict"
	CodeDuplicateKey     = "duplicate_key"
	CodeStoreUnavailable = "store_unavailable"
	CodeIndexUnavailable = "index_unavailable"
	CodeValidation       = "validation_error"
	CodeUnauthorized     = "unauthorized"
	CodeInternal         = "internal_error"
)

// ConflictError reports a stale revision on replace or delete.
type ConflictError struct {
	ID       string
	Expected string
	Current  string
}

func (e *ConflictError) Error() string {
	if e.Current == "" {
		return fmt.Sprintf("revision conflict on %s: expected %s", e.ID, e.Expected)
	}
	return fmt.Sprintf("revision conflict on %s: expected %s, current %s", e.ID, e.Expected, e.Current)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrRevisionConflict
}

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is shorthand for a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Code returns the wire code for err, or "" for a nil error.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrRevisionConflict):
		return CodeRevisionConflict
	case errors.Is(err, ErrDuplicateKey):
		return CodeDuplicateKey
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	case errors.Is(err, ErrIndexUnavailable):
		return CodeIndexUnavailable
	default:
		return CodeInternal
	}
}

// FromCode rebuilds an error from its wire code so that errors.Is keeps
// working on the calling side.
func FromCode(code, message string) error {
	var sentinel error
	switch code {
	case "":
		return nil
	case CodeNotFound:
		sentinel = ErrNotFound
	case CodeRevisionConflict:
		sentinel = ErrRevisionConflict
	case CodeDuplicateKey:
		sentinel = ErrDuplicateKey
	case CodeValidation:
		sentinel = ErrValidation
	case CodeUnauthorized:
		sentinel = ErrUnauthorized
	case CodeStoreUnavailable:
		sentinel = ErrStoreUnavailable
	case CodeIndexUnavailable:
		sentinel = ErrIndexUnavailable
	default:
		return errors.New(message)
	}
	if message == "" || message == sentinel.Error() {
		return sentinel
	}
	return &remoteError{sentinel: sentinel, message: message}
}

type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }
func (e *remoteError) Unwrap() error { return e.sentinel }
