package warehouse_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-gateway/warehouse"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeStatementAPI scripts the statement API: the submit response,
// then one poll response per subsequent status fetch (the last one
// repeats).
type fakeStatementAPI struct {
	submitStatus int
	submitBody   warehouse.StatementResponse
	pollStatus   int // non-zero: every status fetch fails with this code
	polls        []warehouse.StatementResponse

	submitCount int32
	pollCount   int32
}

func (f *fakeStatementAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Method == http.MethodPost {
			atomic.AddInt32(&f.submitCount, 1)
			if f.submitStatus != 0 && f.submitStatus != http.StatusOK {
				w.WriteHeader(f.submitStatus)
			}
			json.NewEncoder(w).Encode(f.submitBody)
			return
		}
		n := int(atomic.AddInt32(&f.pollCount, 1)) - 1
		if f.pollStatus != 0 && f.pollStatus != http.StatusOK {
			w.WriteHeader(f.pollStatus)
			return
		}
		if n >= len(f.polls) {
			n = len(f.polls) - 1
		}
		json.NewEncoder(w).Encode(f.polls[n])
	})
}

func newTestClient(t *testing.T, f *fakeStatementAPI) *warehouse.Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return warehouse.New(warehouse.Config{
		Host:         srv.URL,
		Token:        "test-token",
		WarehouseID:  "wh-test",
		PollInterval: 5 * time.Millisecond,
		PollDeadline: 250 * time.Millisecond,
	})
}

func pending(id string) warehouse.StatementResponse {
	return warehouse.StatementResponse{
		StatementID: id,
		Status:      warehouse.StatementStatus{State: warehouse.StatePending},
	}
}

func succeeded(id string, rows [][]string) warehouse.StatementResponse {
	return warehouse.StatementResponse{
		StatementID: id,
		Status:      warehouse.StatementStatus{State: warehouse.StateSucceeded},
		Result:      &warehouse.ResultData{DataArray: rows},
	}
}

// =============================================================================
// EXECUTE
// =============================================================================

func TestExecute_SynchronousCompletion_NoPoll(t *testing.T) {
	f := &fakeStatementAPI{
		submitBody: succeeded("stmt-sync", [][]string{{"Total", "10", "8"}}),
	}

	exec, err := newTestClient(t, f).Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)

	assert.Equal(t, "stmt-sync", exec.StatementID)
	require.NotNil(t, exec.Result)
	assert.Equal(t, [][]string{{"Total", "10", "8"}}, exec.Result.DataArray)
	assert.Equal(t, int32(0), f.pollCount, "terminal submit response must not be polled")
}

func TestExecute_PollsUntilSucceeded(t *testing.T) {
	f := &fakeStatementAPI{
		submitBody: pending("stmt-1"),
		polls: []warehouse.StatementResponse{
			{Status: warehouse.StatementStatus{State: warehouse.StateRunning}},
			succeeded("stmt-1", [][]string{{"Alpha", "5", "4"}}),
		},
	}

	exec, err := newTestClient(t, f).Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)

	assert.Equal(t, "stmt-1", exec.StatementID)
	assert.Equal(t, int32(1), f.submitCount, "submit must happen exactly once")
	assert.GreaterOrEqual(t, f.pollCount, int32(2))
}

func TestExecute_SubmitRejected_NoPoll(t *testing.T) {
	f := &fakeStatementAPI{
		submitStatus: http.StatusForbidden,
		submitBody: warehouse.StatementResponse{
			Status: warehouse.StatementStatus{
				State: warehouse.StateFailed,
				Error: &warehouse.StatementError{Message: "permission denied on warehouse"},
			},
		},
	}

	_, err := newTestClient(t, f).Execute(context.Background(), "SELECT secret")
	require.Error(t, err)

	var submit *warehouse.SubmitError
	require.ErrorAs(t, err, &submit)
	assert.Equal(t, http.StatusForbidden, submit.StatusCode)
	assert.Equal(t, "permission denied on warehouse", submit.RemoteMessage)
	assert.Equal(t, "SELECT secret", submit.SQL)
	assert.Equal(t, int32(0), f.pollCount, "no poll after a rejected submission")
}

func TestExecute_RemoteFailure(t *testing.T) {
	f := &fakeStatementAPI{
		submitBody: pending("stmt-f"),
		polls: []warehouse.StatementResponse{{
			StatementID: "stmt-f",
			Status: warehouse.StatementStatus{
				State: warehouse.StateFailed,
				Error: &warehouse.StatementError{Message: "TABLE_OR_VIEW_NOT_FOUND"},
			},
		}},
	}

	_, err := newTestClient(t, f).Execute(context.Background(), "SELECT 1")
	require.Error(t, err)

	var exec *warehouse.ExecutionError
	require.ErrorAs(t, err, &exec)
	assert.Equal(t, warehouse.StateFailed, exec.State)
	assert.Contains(t, exec.Message, "TABLE_OR_VIEW_NOT_FOUND")
	assert.False(t, errors.Is(err, warehouse.ErrTimedOut))
}

func TestExecute_DeadlineYieldsTimedOut(t *testing.T) {
	// The service never leaves PENDING; the loop must stop at the
	// deadline instead of spinning forever.
	f := &fakeStatementAPI{
		submitBody: pending("stmt-slow"),
		polls:      []warehouse.StatementResponse{pending("stmt-slow")},
	}

	start := time.Now()
	_, err := newTestClient(t, f).Execute(context.Background(), "SELECT 1")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, warehouse.ErrTimedOut)

	var exec *warehouse.ExecutionError
	require.ErrorAs(t, err, &exec)
	assert.Equal(t, warehouse.StateTimedOut, exec.State)

	// Deadline is 250ms; allow generous slack for one in-flight poll.
	assert.Less(t, elapsed, 2*time.Second)
}

func TestExecute_StatusFetchFailure_SurfacesAsTransportError(t *testing.T) {
	// An accepted submission whose status fetches then fail is neither
	// a submission rejection nor a terminal execution outcome; it
	// stays an unclassified fault carrying the statement handle.
	f := &fakeStatementAPI{
		submitBody: pending("stmt-p"),
		pollStatus: http.StatusInternalServerError,
	}

	_, err := newTestClient(t, f).Execute(context.Background(), "SELECT 1")
	require.Error(t, err)

	var submit *warehouse.SubmitError
	assert.False(t, errors.As(err, &submit))
	var execErr *warehouse.ExecutionError
	assert.False(t, errors.As(err, &execErr))
	assert.False(t, errors.Is(err, warehouse.ErrTimedOut))

	assert.Contains(t, err.Error(), "stmt-p")
	assert.Contains(t, err.Error(), "HTTP 500")
	assert.Equal(t, int32(1), f.pollCount, "first failed fetch must abort the loop")
}

func TestExecute_ContextCancelStopsWaiting(t *testing.T) {
	f := &fakeStatementAPI{
		submitBody: pending("stmt-ctx"),
		polls:      []warehouse.StatementResponse{pending("stmt-ctx")},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, f).Execute(ctx, "SELECT 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecute_AuthHeaderSent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(succeeded("stmt-a", nil))
	}))
	t.Cleanup(srv.Close)

	c := warehouse.New(warehouse.Config{
		Host: srv.URL, Token: "sekrit", WarehouseID: "wh",
		PollInterval: time.Millisecond, PollDeadline: time.Second,
	})
	_, err := c.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gotAuth, "Bearer "))
	assert.Equal(t, "Bearer sekrit", gotAuth)
}
