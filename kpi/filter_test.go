package kpi_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-gateway/kpi"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func mustResolve(t *testing.T, key string) kpi.Descriptor {
	t.Helper()
	d, err := kpi.Resolve(key)
	require.NoError(t, err)
	return d
}

func baseRequest(key string) kpi.Request {
	return kpi.Request{
		KPI:      key,
		GroupBy:  kpi.GroupByTime,
		Scope:    kpi.ScopeYTD,
		MaxMonth: "202512",
	}
}

// =============================================================================
// TIME SCOPE
// =============================================================================

func TestCompilePredicates_MTD_Equality(t *testing.T) {
	req := baseRequest("volume")
	req.Scope = kpi.ScopeMTD
	req.MaxMonth = "202503"

	preds := kpi.CompilePredicates(mustResolve(t, "volume"), req)

	require.NotEmpty(t, preds)
	assert.Equal(t, "cal_yr_mo_nbr = 202503", preds[0])
}

func TestCompilePredicates_YTD_ClosedRange(t *testing.T) {
	req := baseRequest("volume")
	req.MaxMonth = "202503"

	preds := kpi.CompilePredicates(mustResolve(t, "volume"), req)

	require.NotEmpty(t, preds)
	assert.Equal(t, "cal_yr_mo_nbr BETWEEN 202501 AND 202503", preds[0])
}

func TestCompilePredicates_YTD_JanuaryIsOneMonthRange(t *testing.T) {
	// January YTD degenerates to a single-month range, not an error.
	req := baseRequest("volume")
	req.MaxMonth = "202501"

	preds := kpi.CompilePredicates(mustResolve(t, "volume"), req)
	assert.Equal(t, "cal_yr_mo_nbr BETWEEN 202501 AND 202501", preds[0])
}

// =============================================================================
// SEGMENT EXCLUSION
// =============================================================================

func TestCompilePredicates_SegmentExcludedByDefault(t *testing.T) {
	preds := kpi.CompilePredicates(mustResolve(t, "volume"), baseRequest("volume"))
	assert.Contains(t, preds, "seg_nm <> 'AO'")
}

func TestCompilePredicates_SegmentIncludedOnlyOnExplicitOptIn(t *testing.T) {
	req := baseRequest("volume")
	req.Filters.IncludeAO = true

	preds := kpi.CompilePredicates(mustResolve(t, "volume"), req)
	assert.NotContains(t, preds, "seg_nm <> 'AO'")
}

// =============================================================================
// DIMENSION FILTERS
// =============================================================================

func TestCompilePredicates_FixedOrder(t *testing.T) {
	req := baseRequest("volume")
	req.Filters = kpi.Filters{
		Channel:      []string{"Grocery"},
		Megabrand:    []string{"Alpha", "Beta"},
		State:        []string{"TX"},
		Region:       []string{"Southwest"},
		WholesalerID: []string{"W100"},
	}

	preds := kpi.CompilePredicates(mustResolve(t, "volume"), req)

	want := []string{
		"cal_yr_mo_nbr BETWEEN 202501 AND 202512",
		"seg_nm <> 'AO'",
		"megabrand_nm IN ('Alpha', 'Beta')",
		"rgn_nm IN ('Southwest')",
		"st_cd IN ('TX')",
		"wslr_id IN ('W100')",
		"trade_chnl_nm IN ('Grocery')",
	}
	assert.Equal(t, want, preds)
}

func TestCompilePredicates_EmptyListsProduceNoPredicate(t *testing.T) {
	req := baseRequest("volume")
	req.Filters.Region = []string{}

	preds := kpi.CompilePredicates(mustResolve(t, "volume"), req)
	for _, p := range preds {
		assert.NotContains(t, p, "rgn_nm")
	}
}

func TestCompilePredicates_ChannelGuard_MatchNothing(t *testing.T) {
	// share has no channel dimension: the filter must structurally
	// exclude all rows, not reference a nonexistent column and not be
	// silently dropped.
	req := baseRequest("share")
	req.Filters.Channel = []string{"Grocery"}

	preds := kpi.CompilePredicates(mustResolve(t, "share"), req)

	assert.Contains(t, preds, "1 = 0")
	for _, p := range preds {
		assert.NotContains(t, p, "trade_chnl_nm")
	}
}

// =============================================================================
// ESCAPING
// =============================================================================

func TestQuoteLiteral_RoundTrip(t *testing.T) {
	cases := []string{
		"plain",
		"O'Fallon",
		"''",
		"a'b'c",
		"",
	}
	for _, in := range cases {
		quoted := kpi.QuoteLiteral(in)
		require.True(t, strings.HasPrefix(quoted, "'") && strings.HasSuffix(quoted, "'"))

		// Parse the literal back the way a SQL lexer would: strip the
		// outer quotes, collapse doubled quotes.
		inner := quoted[1 : len(quoted)-1]
		assert.Equal(t, in, strings.ReplaceAll(inner, "''", "'"), "input %q", in)
	}
}

func TestCompilePredicates_QuoteInFilterValue(t *testing.T) {
	req := baseRequest("volume")
	req.Filters.Megabrand = []string{"O'Fallon Gold"}

	preds := kpi.CompilePredicates(mustResolve(t, "volume"), req)
	assert.Contains(t, preds, "megabrand_nm IN ('O''Fallon Gold')")
}
