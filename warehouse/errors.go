/*
errors.go - Centralized error types for warehouse execution

PURPOSE:
  The error taxonomy of the submit/poll protocol, one type per
  distinct caller policy:

  1. SubmitError     - the service rejected the statement outright;
                       client-facing, never retried, carries the SQL
                       for diagnosability. No polling happened.
  2. ExecutionError  - the service accepted the job but it ended
                       FAILED or CANCELED, or the local deadline
                       elapsed first (wraps ErrTimedOut in that case).
  3. ContractError   - SUCCEEDED but the payload is missing or
                       malformed; a server-side fault, because the
                       service broke its own contract.

USAGE:
    var submit *warehouse.SubmitError
    if errors.As(err, &submit) {
        // mirror submit.StatusCode
    }
    if errors.Is(err, warehouse.ErrTimedOut) {
        // caller may retry
    }

SEE ALSO:
  - client.go: produces SubmitError / ExecutionError
  - result.go: produces ContractError
*/
package warehouse

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrTimedOut is wrapped by an ExecutionError whose state is
	// TIMED_OUT. Distinguished from FAILED/CANCELED so callers can
	// decide whether a retry is worthwhile.
	ErrTimedOut = errors.New("statement timed out")

	// ErrContractViolation is wrapped by ContractError.
	ErrContractViolation = errors.New("statement api contract violation")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// SubmitError reports a statement rejected at submission time.
type SubmitError struct {
	StatusCode    int    // HTTP status from the statement API
	RemoteMessage string // service's own message, when parseable
	SQL           string // the generated statement, for diagnosability
}

func (e *SubmitError) Error() string {
	if e.RemoteMessage != "" {
		return fmt.Sprintf("statement submission rejected (HTTP %d): %s", e.StatusCode, e.RemoteMessage)
	}
	return fmt.Sprintf("statement submission rejected (HTTP %d)", e.StatusCode)
}

// ExecutionError reports a job that was accepted but did not succeed:
// FAILED or CANCELED remotely, or TIMED_OUT locally.
type ExecutionError struct {
	StatementID string
	State       State
	Message     string
}

func (e *ExecutionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("statement %s ended %s: %s", e.StatementID, e.State, e.Message)
	}
	return fmt.Sprintf("statement %s ended %s", e.StatementID, e.State)
}

func (e *ExecutionError) Unwrap() error {
	if e.State == StateTimedOut {
		return ErrTimedOut
	}
	return nil
}

// ContractError reports a succeeded statement whose payload violated
// the expected shape.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string {
	return "contract violation: " + e.Reason
}

func (e *ContractError) Unwrap() error {
	return ErrContractViolation
}
