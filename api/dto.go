/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON contract between the dashboard and the gateway.
  These types decouple the wire shape (snake_case fields, versioned
  contract token) from the compiler's validated kpi.Request.

CONTRACT:
  contract_version "kpi_request.v1" is the only accepted revision.
  Earlier revisions of this contract (different default month, fewer
  filters, REV-style column names) are superseded, not emulated:
  anything else is rejected.

NAMING CONVENTION:
  - *Request: request body types from clients
  - *Response: response wrappers returned to clients

SEE ALSO:
  - handlers.go: uses these types
  - kpi/request.go: the validated domain form
*/
package api

import (
	"github.com/warp/kpi-gateway/kpi"
	"github.com/warp/kpi-gateway/warehouse"
)

// ContractVersion is the accepted inbound contract revision.
const ContractVersion = "kpi_request.v1"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// QueryRequest is the inbound dashboard query body.
type QueryRequest struct {
	ContractVersion string        `json:"contract_version"`
	Ping            bool          `json:"ping"`
	KPI             string        `json:"kpi"`
	GroupBy         string        `json:"groupBy"`
	MaxMonth        string        `json:"max_month"`
	Scope           string        `json:"scope"`
	Filters         *QueryFilters `json:"filters"`
}

// QueryFilters is the inbound filter block. Nil lists mean no
// constraint; include_ao defaults to false (AO excluded).
type QueryFilters struct {
	Megabrand    []string `json:"megabrand"`
	Region       []string `json:"region"`
	State        []string `json:"state"`
	WholesalerID []string `json:"wholesaler_id"`
	Channel      []string `json:"channel"`
	IncludeAO    *bool    `json:"include_ao"`
}

// toDomain validates the wire request into the compiler's form.
func (r QueryRequest) toDomain() (kpi.Request, error) {
	var req kpi.Request

	if r.ContractVersion != "" && r.ContractVersion != ContractVersion {
		return req, &kpi.ValidationError{Field: "contract_version", Message: "unsupported revision " + r.ContractVersion}
	}
	if r.KPI == "" {
		return req, &kpi.ValidationError{Field: "kpi", Message: "required"}
	}

	groupBy, err := kpi.ParseGroupBy(r.GroupBy)
	if err != nil {
		return req, err
	}
	scope, err := kpi.ParseScope(r.Scope)
	if err != nil {
		return req, err
	}
	month, err := kpi.ParseMonth(r.MaxMonth)
	if err != nil {
		return req, err
	}

	req = kpi.Request{
		KPI:      r.KPI,
		GroupBy:  groupBy,
		Scope:    scope,
		MaxMonth: month,
	}
	if f := r.Filters; f != nil {
		req.Filters = kpi.Filters{
			Megabrand:    f.Megabrand,
			Region:       f.Region,
			State:        f.State,
			WholesalerID: f.WholesalerID,
			Channel:      f.Channel,
			IncludeAO:    f.IncludeAO != nil && *f.IncludeAO,
		}
	}
	return req, nil
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// QueryResponse is the success envelope.
type QueryResponse struct {
	OK     bool             `json:"ok"`
	Result *warehouse.Table `json:"result"`
	Meta   QueryMeta        `json:"meta"`
}

// QueryMeta carries diagnostics alongside a successful result.
type QueryMeta struct {
	SQL         string `json:"sql"`
	StatementID string `json:"statement_id,omitempty"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

// PingResponse answers the in-band liveness probe.
type PingResponse struct {
	OK   bool   `json:"ok"`
	Mode string `json:"mode"`
}

// ErrorResponse is the failure envelope. Optional fields are set per
// error class: State for execution failures and timeouts, DbxMsg and
// SQL for submission rejections, Details for internal faults.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	State   string `json:"state,omitempty"`
	DbxMsg  string `json:"dbx_msg,omitempty"`
	SQL     string `json:"sql,omitempty"`
	Details string `json:"details,omitempty"`
}
