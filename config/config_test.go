package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/kpi-gateway/config"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg := config.FromEnv()

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 60*time.Second, cfg.PollDeadline)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("WAREHOUSE_HOST", "https://dbc-1.example.com/")
	t.Setenv("POLL_INTERVAL", "250ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://dash.example.com, https://stage.example.com")

	cfg := config.FromEnv()

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "https://dbc-1.example.com", cfg.WarehouseHost, "trailing slash trimmed")
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, []string{"https://dash.example.com", "https://stage.example.com"}, cfg.CORSAllowedOrigins)
}

func TestValidate_RequiresWarehouseCredentials(t *testing.T) {
	cfg := config.FromEnv()
	require.Error(t, cfg.Validate())

	cfg.WarehouseHost = "https://dbc-1.example.com"
	require.Error(t, cfg.Validate(), "token still missing")

	cfg.WarehouseToken = "tok"
	require.Error(t, cfg.Validate(), "warehouse id still missing")

	cfg.WarehouseID = "wh-1"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsSchemelessHost(t *testing.T) {
	cfg := config.FromEnv()
	cfg.WarehouseHost = "dbc-1.example.com"
	cfg.WarehouseToken = "tok"
	cfg.WarehouseID = "wh-1"
	assert.Error(t, cfg.Validate())
}

func TestValidate_StubNeedsNoCredentials(t *testing.T) {
	cfg := config.FromEnv()
	cfg.StubWarehouse = true
	assert.NoError(t, cfg.Validate())
}
