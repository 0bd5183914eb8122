/*
request.go - Validated query request types

PURPOSE:
  Typed representation of one dashboard query after validation. The
  HTTP layer parses JSON into these types via the Parse* helpers; by
  the time a Request reaches the filter compiler every enum is a known
  token and the reference month is exactly six digits.

VALIDATION PHILOSOPHY:
  The reference month is the only caller value that ends up in SQL
  unquoted, so it is the only value validated for shape. Filter list
  entries are data values: they are escaped at assembly time, never
  validated.
*/
package kpi

// =============================================================================
// ENUMS
// =============================================================================

// GroupBy selects the grouping dimension of the generated statement.
type GroupBy string

const (
	GroupByTime       GroupBy = "time"
	GroupByMegabrand  GroupBy = "megabrand"
	GroupByRegion     GroupBy = "region"
	GroupByState      GroupBy = "state"
	GroupByWholesaler GroupBy = "wholesaler"
	GroupByChannel    GroupBy = "channel"
	GroupByTotal      GroupBy = "total"
)

// ParseGroupBy validates a groupBy token. Empty means the default.
func ParseGroupBy(s string) (GroupBy, error) {
	switch GroupBy(s) {
	case "":
		return GroupByTime, nil
	case GroupByTime, GroupByMegabrand, GroupByRegion, GroupByState,
		GroupByWholesaler, GroupByChannel, GroupByTotal:
		return GroupBy(s), nil
	}
	return "", &ValidationError{Field: "groupBy", Message: "unknown dimension " + s}
}

// Scope is the time-window policy: month-to-date or year-to-date.
type Scope string

const (
	ScopeMTD Scope = "MTD"
	ScopeYTD Scope = "YTD"
)

// ParseScope validates a scope token. Empty means the default.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeYTD, nil
	case ScopeMTD, ScopeYTD:
		return Scope(s), nil
	}
	return "", &ValidationError{Field: "scope", Message: "unknown scope " + s}
}

// =============================================================================
// REFERENCE MONTH
// =============================================================================

// DefaultMonth is the reference month used when the request omits one.
const DefaultMonth Month = "202512"

// Month is a six-digit YYYYMM token. A validated Month is safe to
// interpolate into SQL as a numeric literal.
type Month string

// ParseMonth validates a max_month token. Empty means DefaultMonth.
func ParseMonth(s string) (Month, error) {
	if s == "" {
		return DefaultMonth, nil
	}
	if len(s) != 6 {
		return "", &ValidationError{Field: "max_month", Message: "want 6 digits (YYYYMM), got " + s}
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", &ValidationError{Field: "max_month", Message: "want 6 digits (YYYYMM), got " + s}
		}
	}
	return Month(s), nil
}

// YearStart returns the first month of the Month's calendar year,
// e.g. "202503" -> "202501". Used as the lower bound of YTD ranges.
func (m Month) YearStart() Month {
	return m[:4] + "01"
}

func (m Month) String() string { return string(m) }

// =============================================================================
// REQUEST
// =============================================================================

// Filters is the validated dimension filter set of one request.
// A nil/empty list means no constraint on that dimension.
type Filters struct {
	Megabrand    []string
	Region       []string
	State        []string
	WholesalerID []string
	Channel      []string

	// IncludeAO opts the reserved "AO" segment back in. Exclusion is
	// the default; only an explicit true lifts it.
	IncludeAO bool
}

// Request is one validated dashboard query, ready for compilation.
type Request struct {
	KPI      string
	GroupBy  GroupBy
	Scope    Scope
	MaxMonth Month
	Filters  Filters
}
