package warehouse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestState_Terminal(t *testing.T) {
	terminal := []State{StateSucceeded, StateFailed, StateCanceled}
	for _, s := range terminal {
		assert.True(t, s.Terminal(), "state %s", s)
	}

	nonTerminal := []State{StatePending, StateRunning, StateTimedOut}
	for _, s := range nonTerminal {
		assert.False(t, s.Terminal(), "state %s", s)
	}
}

func TestJob_ApplyKeepsFirstStatementID(t *testing.T) {
	j := newJob(StatementResponse{
		StatementID: "stmt-1",
		Status:      StatementStatus{State: StatePending},
	}, time.Now().Add(time.Minute))

	// Status endpoints may omit the id; the handle from submission
	// must survive.
	j.apply(StatementResponse{Status: StatementStatus{State: StateRunning}})
	assert.Equal(t, "stmt-1", j.StatementID)
	assert.Equal(t, StateRunning, j.Status.State)
}

func TestJob_Expired(t *testing.T) {
	now := time.Now()
	j := &Job{Deadline: now.Add(50 * time.Millisecond)}

	assert.False(t, j.Expired(now))
	assert.True(t, j.Expired(now.Add(50*time.Millisecond)))
	assert.True(t, j.Expired(now.Add(time.Second)))
}

func TestJob_TimeOutDropsResult(t *testing.T) {
	j := newJob(StatementResponse{
		StatementID: "stmt-1",
		Status:      StatementStatus{State: StateRunning},
		Result:      &ResultData{DataArray: [][]string{{"x", "1", "2"}}},
	}, time.Now())

	j.timeOut()
	assert.Equal(t, StateTimedOut, j.Status.State)
	assert.Nil(t, j.Result)
	assert.False(t, j.Terminal(), "TIMED_OUT is local, not a remote terminal state")
}
