/*
handlers.go - HTTP API handlers for the KPI query gateway

PURPOSE:
  Exposes the query compiler and warehouse execution client over
  HTTP. Handles JSON parsing, validation, error classification, and
  response shaping; all query semantics live in kpi/ and warehouse/.

ENDPOINTS:
  POST /api/kpi/query   compile + execute one dashboard query
  GET  /healthz         process liveness (no warehouse contact)

REQUEST FLOW:
  1. Decode body; answer ping probes immediately
  2. Validate into kpi.Request, resolve KPI, compile SQL
  3. Submit + poll via the warehouse client
  4. Normalize the payload, respond with result + meta.sql

ERROR HANDLING:
  One terminal HTTP response per request, classified by error type:
  - 400: validation (unknown KPI, bad enum, malformed month)
  - 405: non-POST on the query route
  - mirrored status: warehouse rejected the submission (SQL included
    in the body for diagnosability)
  - 502: execution FAILED/CANCELED or local TIMED_OUT (state included)
  - 500: contract violation or anything unclassified

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/warp/kpi-gateway/kpi"
	"github.com/warp/kpi-gateway/warehouse"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Executor runs one statement to completion. Implemented by
// *warehouse.Client; narrowed to an interface so handler tests can
// script outcomes.
type Executor interface {
	Execute(ctx context.Context, sql string) (*warehouse.Execution, error)
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Exec Executor
}

// NewHandler creates a handler backed by the given executor.
func NewHandler(exec Executor) *Handler {
	return &Handler{Exec: exec}
}

// =============================================================================
// QUERY HANDLER
// =============================================================================

// Query handles POST /api/kpi/query.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	if req.Ping {
		writeJSON(w, http.StatusOK, PingResponse{OK: true, Mode: "ping"})
		return
	}

	domainReq, err := req.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	sql, err := kpi.Compile(domainReq)
	if err != nil {
		// Only client errors come out of the compiler.
		writeError(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	exec, err := h.Exec.Execute(r.Context(), sql)
	if err != nil {
		h.writeExecutionError(w, err, sql)
		return
	}

	table, err := warehouse.Normalize(exec.Result)
	if err != nil {
		// The service said SUCCEEDED and then broke its own contract.
		// Log the specifics, report a generic internal fault.
		log.Printf("contract violation on statement %s: %v", exec.StatementID, err)
		writeError(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal error",
			Details: "warehouse returned an unusable result payload",
		})
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		OK:     true,
		Result: table,
		Meta: QueryMeta{
			SQL:         sql,
			StatementID: exec.StatementID,
			ElapsedMS:   time.Since(start).Milliseconds(),
		},
	})
}

// writeExecutionError maps warehouse errors onto the response
// taxonomy. sql is the generated statement, included where the
// taxonomy calls for it.
func (h *Handler) writeExecutionError(w http.ResponseWriter, err error, sql string) {
	var submit *warehouse.SubmitError
	if errors.As(err, &submit) {
		// Mirror the remote status so the dashboard can distinguish
		// auth failures from malformed statements.
		writeError(w, submit.StatusCode, ErrorResponse{
			Error:  "warehouse rejected the statement",
			DbxMsg: submit.RemoteMessage,
			SQL:    sql,
		})
		return
	}

	var execErr *warehouse.ExecutionError
	if errors.As(err, &execErr) {
		writeError(w, http.StatusBadGateway, ErrorResponse{
			Error: execErr.Error(),
			State: string(execErr.State),
		})
		return
	}

	writeError(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal error",
		Details: err.Error(),
	})
}

// Healthz handles GET /healthz. Liveness only; it must not touch the
// warehouse.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// MethodNotAllowed answers any verb other than POST on the query
// route in the contract's envelope rather than chi's plain text.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "method not allowed, use POST"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	resp.OK = false
	writeJSON(w, status, resp)
}
