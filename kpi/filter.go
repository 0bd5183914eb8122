/*
filter.go - Predicate compilation

PURPOSE:
  Turns a validated Request into an ordered list of SQL predicate
  fragments, each safe to join with AND. The order is fixed so the
  generated SQL is deterministic and directly assertable in tests:

    1. time-scope predicate (MTD equality or YTD closed range)
    2. segment-exclusion predicate (unless include_ao)
    3. one IN (...) predicate per populated filter list, in the fixed
       order megabrand, region, state, wholesaler_id, channel

INJECTION SAFETY:
  Two disjoint code paths, never unified:
  - identifiers: only from filterColumns / constants below (allowlist)
  - values: always through QuoteLiteral (quote-wrapped, quotes doubled)
  The reference month skips quoting because ParseMonth guarantees it is
  all digits.

CAPABILITY GUARD:
  A channel filter against a KPI without a channel dimension compiles
  to a match-nothing predicate instead of referencing a column the
  dataset doesn't have. Filtering on an inapplicable dimension is a
  valid query with an empty answer, not an error.
*/
package kpi

import (
	"fmt"
	"strings"
)

// Warehouse schema constants. These are identifiers, part of the
// closed allowlist; caller input never reaches them.
const (
	MonthColumn     = "cal_yr_mo_nbr"
	SegmentColumn   = "seg_nm"
	ExcludedSegment = "AO"

	// matchNothing structurally excludes all rows. Emitted by the
	// channel capability guard.
	matchNothing = "1 = 0"
)

// filterColumns fixes both the backing column and the compilation
// order of each dimension filter.
var filterColumns = []struct {
	column string
	values func(Filters) []string
}{
	{"megabrand_nm", func(f Filters) []string { return f.Megabrand }},
	{"rgn_nm", func(f Filters) []string { return f.Region }},
	{"st_cd", func(f Filters) []string { return f.State }},
	{"wslr_id", func(f Filters) []string { return f.WholesalerID }},
	{"trade_chnl_nm", func(f Filters) []string { return f.Channel }},
}

// ChannelColumn is the channel dimension's backing column, shared with
// the statement assembler's grouping logic.
const ChannelColumn = "trade_chnl_nm"

// QuoteLiteral renders a data value as a SQL string literal: wrapped
// in single quotes, embedded single quotes doubled. This is the only
// sanitization applied to filter values.
func QuoteLiteral(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// CompilePredicates builds the WHERE fragments for one request against
// one resolved descriptor. Every returned fragment is safe to join
// with AND; the list is never empty (the time-scope predicate is
// always present).
func CompilePredicates(d Descriptor, req Request) []string {
	preds := make([]string, 0, 2+len(filterColumns))

	// 1. Time scope.
	switch req.Scope {
	case ScopeMTD:
		preds = append(preds, fmt.Sprintf("%s = %s", MonthColumn, req.MaxMonth))
	default: // YTD
		preds = append(preds, fmt.Sprintf("%s BETWEEN %s AND %s", MonthColumn, req.MaxMonth.YearStart(), req.MaxMonth))
	}

	// 2. Segment exclusion. Opt-in allowance: anything but an explicit
	// true keeps the exclusion.
	if !req.Filters.IncludeAO {
		preds = append(preds, fmt.Sprintf("%s <> %s", SegmentColumn, QuoteLiteral(ExcludedSegment)))
	}

	// 3. Dimension filters, fixed order.
	for _, fc := range filterColumns {
		values := fc.values(req.Filters)
		if len(values) == 0 {
			continue
		}
		if fc.column == ChannelColumn && !d.HasChannelDimension {
			preds = append(preds, matchNothing)
			continue
		}
		preds = append(preds, inPredicate(fc.column, values))
	}

	return preds
}

func inPredicate(column string, values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = QuoteLiteral(v)
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(quoted, ", "))
}
