/*
client.go - Submit/poll client for the statement API

PURPOSE:
  One Execute call per request: submit the statement once, then poll
  at a fixed interval until the job reaches a terminal state or the
  fixed deadline elapses. No retry, no backoff, no remote cancel; the
  interval and deadline bound everything.

PROTOCOL:
  POST {host}/api/2.0/sql/statements            submit, returns handle+state
  GET  {host}/api/2.0/sql/statements/{id}       status fetch

  Submission is not idempotent and is therefore never retried. A
  non-2xx submit response is a SubmitError and no polling happens.
  The service may finish synchronously, in which case the submit
  response already carries a terminal state and no poll is issued.

SEE ALSO:
  - job.go: the state the loop drives
  - config/: where interval and deadline defaults live
*/
package warehouse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const statementsPath = "/api/2.0/sql/statements"

// Config carries everything the client needs to reach the statement
// API. Host is scheme+authority, e.g. "https://dbc-123.cloud.example.com".
type Config struct {
	Host         string
	Token        string
	WarehouseID  string
	PollInterval time.Duration
	PollDeadline time.Duration
}

// Client submits statements and polls them to completion. Safe for
// concurrent use; all per-request state lives in the Job.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a statement API client. The HTTP client timeout bounds
// individual calls; the polling deadline bounds the whole wait.
func New(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// Execution is the outcome of a successfully completed statement.
type Execution struct {
	StatementID string
	Result      *ResultData
}

// Execute runs one statement to completion: submit once, poll until
// terminal or deadline. The context aborts the wait between polls but
// cannot cancel the remote job.
func (c *Client) Execute(ctx context.Context, sql string) (*Execution, error) {
	resp, status, err := c.submit(ctx, sql)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &SubmitError{
			StatusCode:    status,
			RemoteMessage: remoteMessage(resp),
			SQL:           sql,
		}
	}

	job := newJob(resp, time.Now().Add(c.cfg.PollDeadline))

	for !job.Terminal() {
		if job.Expired(time.Now()) {
			job.timeOut()
			break
		}
		if err := sleep(ctx, c.cfg.PollInterval); err != nil {
			return nil, err
		}
		fresh, err := c.fetch(ctx, job.StatementID)
		if err != nil {
			return nil, err
		}
		job.apply(fresh)
	}

	switch job.Status.State {
	case StateSucceeded:
		return &Execution{StatementID: job.StatementID, Result: job.Result}, nil
	default: // FAILED, CANCELED, TIMED_OUT
		e := &ExecutionError{StatementID: job.StatementID, State: job.Status.State}
		if job.Status.Error != nil {
			e.Message = job.Status.Error.Message
		}
		return nil, e
	}
}

// submit issues the single submission call. A transport-level failure
// is returned as-is; a non-2xx response is reported via the status
// code so the caller can classify it as a SubmitError.
func (c *Client) submit(ctx context.Context, sql string) (StatementResponse, int, error) {
	body, err := json.Marshal(submitRequest{
		Statement:   sql,
		WarehouseID: c.cfg.WarehouseID,
		WaitTimeout: "0s",
	})
	if err != nil {
		return StatementResponse{}, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Host+statementsPath, bytes.NewReader(body))
	if err != nil {
		return StatementResponse{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return StatementResponse{}, 0, fmt.Errorf("submit statement: %w", err)
	}
	defer httpResp.Body.Close()

	var resp StatementResponse
	raw, _ := io.ReadAll(httpResp.Body)
	// Error bodies may not be statement responses; decode best-effort
	// so remoteMessage can still surface what the service said.
	_ = json.Unmarshal(raw, &resp)
	return resp, httpResp.StatusCode, nil
}

// fetch issues one status call for an in-flight statement.
func (c *Client) fetch(ctx context.Context, statementID string) (StatementResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Host+statementsPath+"/"+statementID, nil)
	if err != nil {
		return StatementResponse{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	httpResp, err := c.http.Do(req)
	if err != nil {
		return StatementResponse{}, fmt.Errorf("fetch statement %s: %w", statementID, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return StatementResponse{}, fmt.Errorf("fetch statement %s: HTTP %d", statementID, httpResp.StatusCode)
	}

	var resp StatementResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return StatementResponse{}, fmt.Errorf("fetch statement %s: decode: %w", statementID, err)
	}
	return resp, nil
}

func remoteMessage(resp StatementResponse) string {
	if resp.Status.Error != nil {
		return resp.Status.Error.Message
	}
	return ""
}

// sleep waits one poll interval or until the context is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
