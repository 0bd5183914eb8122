/*
Package stub is an in-process emulator of the warehouse statement API,
backed by SQLite.

PURPOSE:
  Lets the gateway run end to end without warehouse credentials: the
  same submit/poll REST contract, the same state vocabulary, real SQL
  execution against a seeded demo dataset. Used by the -stub flag of
  cmd/server and by the handler end-to-end tests.

HOW IT WORKS:
 1. POST /api/2.0/sql/statements registers a job as PENDING and kicks
    off a goroutine that (after an optional artificial latency) runs
    the statement against SQLite and flips the job to SUCCEEDED or
    FAILED.
 2. GET /api/2.0/sql/statements/{id} reports the job's current state
    and, once succeeded, its rows as string cells.

DIALECT NOTE:
  The compiler emits fully-qualified dataset names the warehouse
  understands (catalog.schema.table). SQLite has no catalogs, so known
  dataset names are rewritten to local table names before execution.
  That mapping is the only rewriting done; everything else the
  compiler emits is SQLite-compatible.

NOTE:
  jobs live in memory and are never evicted. Fine for a dev tool;
  do not point production traffic at this.

SEE ALSO:
  - seed.go: schema and demo dataset
  - warehouse/client.go: the client that talks to this contract
*/
package stub

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/kpi-gateway/warehouse"
)

// Server emulates the statement API over a SQLite database.
type Server struct {
	db      *sql.DB
	latency time.Duration

	mu     sync.Mutex
	jobs   map[string]*job
	nextID int
}

type job struct {
	status warehouse.StatementStatus
	result *warehouse.ResultData
}

// New opens (and seeds) the backing database. Use ":memory:" for a
// throwaway instance. latency delays each statement's completion so
// the caller's polling path is actually exercised.
func New(dbPath string, latency time.Duration) (*Server, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Statement goroutines and pollers share this handle; a single
	// connection keeps :memory: databases coherent.
	db.SetMaxOpenConns(1)

	s := &Server{db: db, latency: latency, jobs: make(map[string]*job)}
	if err := s.seed(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed database: %w", err)
	}
	return s, nil
}

// Close closes the backing database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Handler returns the REST surface of the emulator.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/2.0/sql/statements", s.submit)
	r.Get("/api/2.0/sql/statements/{id}", s.status)
	return r
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Statement   string `json:"statement"`
		WarehouseID string `json:"warehouse_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Statement == "" {
		writeStatement(w, http.StatusBadRequest, "", warehouse.StatementStatus{
			State: warehouse.StateFailed,
			Error: &warehouse.StatementError{Message: "malformed submit body"},
		}, nil)
		return
	}

	// The submit response always reports PENDING; run may flip the
	// job's state concurrently, so the shared job is not re-read here.
	submitted := warehouse.StatementStatus{State: warehouse.StatePending}

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("stub-%04d", s.nextID)
	s.jobs[id] = &job{status: submitted}
	s.mu.Unlock()

	go s.run(id, req.Statement)

	writeStatement(w, http.StatusOK, id, submitted, nil)
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	j, ok := s.jobs[id]
	var (
		st  warehouse.StatementStatus
		res *warehouse.ResultData
	)
	if ok {
		st = j.status
		res = j.result
	}
	s.mu.Unlock()

	if !ok {
		writeStatement(w, http.StatusNotFound, id, warehouse.StatementStatus{
			State: warehouse.StateFailed,
			Error: &warehouse.StatementError{Message: "unknown statement id"},
		}, nil)
		return
	}
	writeStatement(w, http.StatusOK, id, st, res)
}

// run executes one submitted statement out of band.
func (s *Server) run(id string, statement string) {
	s.setState(id, warehouse.StateRunning, nil, nil)
	if s.latency > 0 {
		time.Sleep(s.latency)
	}

	rows, err := s.query(rewriteDatasets(statement))
	if err != nil {
		s.setState(id, warehouse.StateFailed, &warehouse.StatementError{Message: err.Error()}, nil)
		return
	}
	s.setState(id, warehouse.StateSucceeded, nil, &warehouse.ResultData{DataArray: rows})
}

func (s *Server) setState(id string, state warehouse.State, serr *warehouse.StatementError, res *warehouse.ResultData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.status = warehouse.StatementStatus{State: state, Error: serr}
		j.result = res
	}
}

// query runs the statement and renders every cell as a string, the
// way the real statement API serializes result data. NULL renders as
// the empty string.
func (s *Server) query(statement string) ([][]string, error) {
	rows, err := s.db.Query(statement)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]string
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		cells := make([]string, len(cols))
		for i, v := range raw {
			cells[i] = renderCell(v)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func renderCell(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(c)
	case string:
		return c
	case int64:
		return fmt.Sprintf("%d", c)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", c), "0"), ".")
	default:
		return fmt.Sprintf("%v", c)
	}
}

func writeStatement(w http.ResponseWriter, httpStatus int, id string, st warehouse.StatementStatus, res *warehouse.ResultData) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(warehouse.StatementResponse{
		StatementID: id,
		Status:      st,
		Result:      res,
	})
}
