/*
Package warehouse drives the submit-then-poll protocol against the
asynchronous SQL statement-execution service and normalizes its
results.

PURPOSE:
  The statement API accepts one SQL statement, returns immediately
  with an opaque handle, and completes the work out of band. This
  package owns the protocol: one submission, a bounded polling loop
  modeled as an explicit state machine, and the reshaping of the raw
  tabular payload into the response contract.

KEY CONCEPTS IN THIS FILE (types.go):
  - State: the statement lifecycle vocabulary. TIMED_OUT is
    synthesized locally when the polling deadline elapses; the remote
    service never reports it.
  - StatementResponse: the wire shape shared by the submit and status
    endpoints.

SEE ALSO:
  - job.go:    per-request lifecycle tracking
  - client.go: HTTP submit/poll loop
  - result.go: payload normalization
*/
package warehouse

// =============================================================================
// STATEMENT LIFECYCLE
// =============================================================================

// State is a statement execution state as reported by the statement
// API, plus the locally synthesized TimedOut.
type State string

const (
	StatePending   State = "PENDING"
	StateRunning   State = "RUNNING"
	StateSucceeded State = "SUCCEEDED"
	StateFailed    State = "FAILED"
	StateCanceled  State = "CANCELED"

	// StateTimedOut is local only: the polling deadline elapsed while
	// the remote state was still non-terminal. The remote job keeps
	// running; this component just stops waiting.
	StateTimedOut State = "TIMED_OUT"
)

// Terminal reports whether the remote service considers the state
// final. TimedOut is deliberately excluded: it describes this
// component's wait, not the remote job.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailed, StateCanceled:
		return true
	}
	return false
}

// =============================================================================
// WIRE TYPES (statement API)
// =============================================================================

// StatementStatus is the status block of a statement response.
type StatementStatus struct {
	State State           `json:"state"`
	Error *StatementError `json:"error,omitempty"`
}

// StatementError carries the remote service's failure message.
type StatementError struct {
	Message string `json:"message"`
}

// ResultData is the raw tabular payload of a succeeded statement: an
// ordered list of rows, each an ordered list of string cells.
type ResultData struct {
	DataArray [][]string `json:"data_array"`
}

// StatementResponse is the body returned by both the submit and the
// status endpoints.
type StatementResponse struct {
	StatementID string          `json:"statement_id"`
	Status      StatementStatus `json:"status"`
	Result      *ResultData     `json:"result,omitempty"`
}

// submitRequest is the submit endpoint's body. wait_timeout of "0s"
// asks the service to return immediately instead of holding the
// connection open.
type submitRequest struct {
	Statement   string `json:"statement"`
	WarehouseID string `json:"warehouse_id"`
	WaitTimeout string `json:"wait_timeout"`
}
