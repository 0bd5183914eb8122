/*
job.go - Per-request statement lifecycle

PURPOSE:
  One Job per submitted statement, owned by the polling loop and
  discarded when the request completes. The terminal check and the
  deadline check are single predicates so the loop's exit conditions
  are individually testable.

LIFECYCLE:
  created at submission -> mutated only by successive poll responses
  -> terminal (SUCCEEDED | FAILED | CANCELED) or expired (TIMED_OUT).
*/
package warehouse

import "time"

// Job tracks one submitted statement through the polling loop.
type Job struct {
	StatementID string
	Status      StatementStatus
	Result      *ResultData
	Deadline    time.Time
}

// newJob captures the submission response and fixes the absolute
// polling deadline.
func newJob(resp StatementResponse, deadline time.Time) *Job {
	j := &Job{Deadline: deadline}
	j.apply(resp)
	return j
}

// apply replaces the last-known status with a fresh response. The
// statement id is kept from the first response that carries one.
func (j *Job) apply(resp StatementResponse) {
	if resp.StatementID != "" {
		j.StatementID = resp.StatementID
	}
	j.Status = resp.Status
	j.Result = resp.Result
}

// Terminal reports whether the remote service has finished the job.
func (j *Job) Terminal() bool {
	return j.Status.State.Terminal()
}

// Expired reports whether the local polling deadline has passed.
func (j *Job) Expired(now time.Time) bool {
	return !now.Before(j.Deadline)
}

// timeOut marks the job locally timed out. Remote state is unknown
// from here on; the remote job runs to its own completion regardless.
func (j *Job) timeOut() {
	j.Status = StatementStatus{State: StateTimedOut}
	j.Result = nil
}
