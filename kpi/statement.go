/*
statement.go - SELECT statement assembly

PURPOSE:
  Combines a resolved Descriptor, the compiled predicate list, and the
  requested grouping into exactly one aggregate SELECT. No joins, no
  batching; the warehouse statement API accepts one statement per
  submission and this produces exactly one per request.

STATEMENT SHAPE:
  SELECT <dim> AS dim, AGG(<col>_CY) AS cur_val, AGG(<col>_LY) AS prior_val
  FROM <dataset>
  WHERE <p1> AND <p2> ...
  [GROUP BY <dim>] [ORDER BY ...]
  LIMIT 1000

GROUPING POLICY (exhaustive):
  time                 group by month column, ascending
  megabrand/region/state  group by the dimension column, descending by
                       current-period value
  wholesaler           group by the KPI's geography column, descending
  channel              as above when the KPI supports channel; a KPI
                       without channel support selects a literal
                       'All Channels' label with no grouping at all
  total                literal 'Total' label, no GROUP BY, no ORDER BY

The row cap is unconditional so a pathological grouping can never
stream an unbounded result back to the dashboard.
*/
package kpi

import (
	"fmt"
	"strings"
)

// RowCap bounds every generated statement's result size.
const RowCap = 1000

// groupColumns maps groupable dimensions to their allowlisted columns.
// wholesaler and channel are resolved per descriptor in BuildStatement.
var groupColumns = map[GroupBy]string{
	GroupByMegabrand: "megabrand_nm",
	GroupByRegion:    "rgn_nm",
	GroupByState:     "st_cd",
}

// BuildStatement assembles the complete SQL text for one request. The
// request must already be validated and the descriptor resolved; this
// function cannot fail.
func BuildStatement(d Descriptor, req Request) string {
	var (
		dimExpr string // selected as "dim"
		groupBy string // empty: no GROUP BY
		orderBy string // empty: no ORDER BY
	)

	switch req.GroupBy {
	case GroupByTime:
		dimExpr = fmt.Sprintf("CAST(%s AS STRING)", MonthColumn)
		groupBy = MonthColumn
		orderBy = MonthColumn + " ASC"
	case GroupByMegabrand, GroupByRegion, GroupByState:
		col := groupColumns[req.GroupBy]
		dimExpr = col
		groupBy = col
		orderBy = "cur_val DESC"
	case GroupByWholesaler:
		dimExpr = d.GeographyColumn
		groupBy = d.GeographyColumn
		orderBy = "cur_val DESC"
	case GroupByChannel:
		if d.HasChannelDimension {
			dimExpr = ChannelColumn
			groupBy = ChannelColumn
			orderBy = "cur_val DESC"
		} else {
			// Channel is inapplicable to this KPI: single roll-up row
			// under a placeholder label.
			dimExpr = "'All Channels'"
		}
	case GroupByTotal:
		dimExpr = "'Total'"
	}

	preds := CompilePredicates(d, req)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s AS dim, %s(%s) AS cur_val, %s(%s) AS prior_val",
		dimExpr, d.Aggregation, d.CurrentColumn(), d.Aggregation, d.PriorColumn())
	fmt.Fprintf(&sb, " FROM %s", d.Dataset)
	fmt.Fprintf(&sb, " WHERE %s", strings.Join(preds, " AND "))
	if groupBy != "" {
		fmt.Fprintf(&sb, " GROUP BY %s", groupBy)
	}
	if orderBy != "" {
		fmt.Fprintf(&sb, " ORDER BY %s", orderBy)
	}
	fmt.Fprintf(&sb, " LIMIT %d", RowCap)
	return sb.String()
}

// Compile resolves the KPI and assembles its statement in one step.
// This is the entry point the HTTP layer uses.
func Compile(req Request) (string, error) {
	d, err := Resolve(req.KPI)
	if err != nil {
		return "", err
	}
	return BuildStatement(d, req), nil
}
