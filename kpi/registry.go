/*
Package kpi compiles declarative dashboard queries into analytical SQL.

PURPOSE:
  This package contains the query-compilation core: the static metric
  registry, the filter compiler, and the statement assembler. A caller
  hands it a validated Request and gets back exactly one SELECT
  statement, ready for submission to the warehouse statement API.

KEY CONCEPTS IN THIS FILE (registry.go):
  - Descriptor: everything the compiler needs to know about one KPI
    (backing dataset, value column, aggregation, capability flags)
  - Resolve: exact-match lookup from a KPI key to its Descriptor

DESIGN PRINCIPLES:
  1. Dispatch table over branching: one immutable map replaces
     per-metric conditionals. Populated at init, never mutated.
  2. Identifiers vs values: every identifier in generated SQL comes
     from this registry or the column allowlist in filter.go, never
     from caller input. Caller input is only ever an escaped value.
  3. Fail before the network: an unknown KPI is rejected here, before
     any statement is submitted.

SEE ALSO:
  - filter.go: predicate compilation and the column allowlist
  - statement.go: final SELECT assembly
*/
package kpi

import "sort"

// =============================================================================
// DESCRIPTOR - Static metadata for one KPI
// =============================================================================

// Aggregation is the SQL aggregate applied to a KPI's value columns.
// Additive metrics sum; ratio and rate metrics average.
type Aggregation string

const (
	AggSum Aggregation = "SUM"
	AggAvg Aggregation = "AVG"
)

// Descriptor describes how one KPI maps onto the warehouse schema.
type Descriptor struct {
	Key                 string
	Dataset             string      // fully-qualified source table
	ValueColumn         string      // base column; _CY and _LY variants derive from it
	Aggregation         Aggregation
	HasChannelDimension bool        // false: channel filters/grouping are inapplicable
	GeographyColumn     string      // column used when grouping by wholesaler
}

// CurrentColumn returns the current-period value column.
func (d Descriptor) CurrentColumn() string { return d.ValueColumn + "_CY" }

// PriorColumn returns the prior-period value column.
func (d Descriptor) PriorColumn() string { return d.ValueColumn + "_LY" }

// =============================================================================
// REGISTRY - Immutable KPI dispatch table
// =============================================================================

var registry = map[string]Descriptor{
	"volume": {
		Key:                 "volume",
		Dataset:             "prod_gold.sales.kpi_monthly_agg",
		ValueColumn:         "STRs",
		Aggregation:         AggSum,
		HasChannelDimension: true,
		GeographyColumn:     "wslr_nm",
	},
	"revenue": {
		Key:                 "revenue",
		Dataset:             "prod_gold.sales.kpi_monthly_agg",
		ValueColumn:         "net_rev",
		Aggregation:         AggSum,
		HasChannelDimension: true,
		GeographyColumn:     "wslr_nm",
	},
	"share": {
		Key:                 "share",
		Dataset:             "prod_gold.sales.kpi_share_monthly",
		ValueColumn:         "share_pts",
		Aggregation:         AggAvg,
		HasChannelDimension: false,
		GeographyColumn:     "wslr_nm",
	},
	"velocity": {
		Key:                 "velocity",
		Dataset:             "prod_gold.sales.kpi_velocity_monthly",
		ValueColumn:         "str_per_pod",
		Aggregation:         AggAvg,
		HasChannelDimension: true,
		GeographyColumn:     "wslr_nm",
	},
	"distribution": {
		Key:                 "distribution",
		Dataset:             "prod_gold.sales.kpi_dist_monthly",
		ValueColumn:         "pod_cnt",
		Aggregation:         AggSum,
		HasChannelDimension: false,
		GeographyColumn:     "wslr_nm",
	},
}

// Resolve looks up the descriptor for a KPI key. Lookup is exact-match
// and case-sensitive. An unrecognized key is a client error.
func Resolve(key string) (Descriptor, error) {
	d, ok := registry[key]
	if !ok {
		return Descriptor{}, &UnknownKPIError{Key: key}
	}
	return d, nil
}

// Keys returns all registered KPI keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
