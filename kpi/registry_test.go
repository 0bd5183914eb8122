package kpi_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-gateway/kpi"
)

func TestResolve_AllRegisteredKeys(t *testing.T) {
	// Every registered KPI must carry enough metadata to compile a
	// statement without further lookups.
	for _, key := range kpi.Keys() {
		d, err := kpi.Resolve(key)
		require.NoError(t, err, "key %q", key)
		assert.Equal(t, key, d.Key)
		assert.NotEmpty(t, d.Dataset, "key %q", key)
		assert.NotEmpty(t, d.ValueColumn, "key %q", key)
		assert.NotEmpty(t, d.GeographyColumn, "key %q", key)
		assert.Contains(t, []kpi.Aggregation{kpi.AggSum, kpi.AggAvg}, d.Aggregation)
	}
}

func TestResolve_UnknownKey(t *testing.T) {
	_, err := kpi.Resolve("spend")
	require.Error(t, err)
	assert.ErrorIs(t, err, kpi.ErrUnknownKPI)
	assert.True(t, kpi.IsClientError(err))

	var unknown *kpi.UnknownKPIError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "spend", unknown.Key)
}

func TestResolve_CaseSensitive(t *testing.T) {
	_, err := kpi.Resolve("Volume")
	assert.ErrorIs(t, err, kpi.ErrUnknownKPI)
}

func TestDescriptor_PeriodColumns(t *testing.T) {
	d, err := kpi.Resolve("volume")
	require.NoError(t, err)
	assert.Equal(t, "STRs_CY", d.CurrentColumn())
	assert.Equal(t, "STRs_LY", d.PriorColumn())
}
