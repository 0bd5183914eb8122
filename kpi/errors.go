/*
errors.go - Centralized error types for the query compiler

PURPOSE:
  All compiler-side error types in one place. Everything here is a
  client error: the request was malformed or referenced something the
  registry doesn't know. Nothing in this package reaches the network,
  so nothing here is retryable.

USAGE:
  Callers classify with errors.Is / errors.As:

    if errors.Is(err, kpi.ErrUnknownKPI) {
        // 400, list valid keys
    }

SEE ALSO:
  - registry.go: Resolve returns UnknownKPIError
  - request.go: Parse* helpers return ValidationError
*/
package kpi

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUnknownKPI is returned when a KPI key has no registry entry.
	ErrUnknownKPI = errors.New("unknown kpi")

	// ErrInvalidRequest is returned for any malformed request field
	// (bad enum token, malformed reference month, missing kpi).
	ErrInvalidRequest = errors.New("invalid request")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// UnknownKPIError reports an unregistered KPI key along with the keys
// that would have been accepted.
type UnknownKPIError struct {
	Key string
}

func (e *UnknownKPIError) Error() string {
	return fmt.Sprintf("unknown kpi %q (valid: %s)", e.Key, strings.Join(Keys(), ", "))
}

func (e *UnknownKPIError) Unwrap() error {
	return ErrUnknownKPI
}

// ValidationError reports a malformed request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// IsClientError returns true if the error is due to invalid client input.
// Every error this package produces qualifies; the helper exists so the
// HTTP layer doesn't have to enumerate sentinels.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownKPI) || errors.Is(err, ErrInvalidRequest)
}
