// Package config handles gateway configuration and environment loading.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds everything the gateway needs at startup. Warehouse
// fields are required unless the stub warehouse is enabled.
type Config struct {
	ListenAddr string // HTTP listen address (default ":8080")

	// Warehouse statement API
	WarehouseHost  string // scheme+authority, e.g. https://dbc-123.cloud.example.com
	WarehouseToken string // bearer token; never logged
	WarehouseID    string // target compute warehouse identifier

	// Polling policy. Fixed per process; there is no per-request
	// override and no backoff.
	PollInterval time.Duration // default 1s
	PollDeadline time.Duration // default 60s

	// CORS
	CORSAllowedOrigins []string // default ["*"]

	// StubWarehouse runs the in-process SQLite statement service
	// instead of the remote one. Development only.
	StubWarehouse bool
}

// FromEnv builds a Config from environment variables, applying
// defaults for anything unset. Validation is separate so flags can
// override first.
func FromEnv() *Config {
	cfg := &Config{
		ListenAddr:         envOr("LISTEN_ADDR", ":8080"),
		WarehouseHost:      strings.TrimRight(os.Getenv("WAREHOUSE_HOST"), "/"),
		WarehouseToken:     os.Getenv("WAREHOUSE_TOKEN"),
		WarehouseID:        os.Getenv("WAREHOUSE_ID"),
		PollInterval:       durationOr("POLL_INTERVAL", time.Second),
		PollDeadline:       durationOr("POLL_DEADLINE", 60*time.Second),
		CORSAllowedOrigins: []string{"*"},
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = splitAndTrim(v)
	}
	return cfg
}

// Validate checks that the configuration can actually reach a
// warehouse. The stub needs no credentials.
func (c *Config) Validate() error {
	if c.StubWarehouse {
		return nil
	}
	if c.WarehouseHost == "" {
		return fmt.Errorf("WAREHOUSE_HOST is required (or run with -stub)")
	}
	if !strings.HasPrefix(c.WarehouseHost, "http://") && !strings.HasPrefix(c.WarehouseHost, "https://") {
		return fmt.Errorf("WAREHOUSE_HOST must include a scheme, got %q", c.WarehouseHost)
	}
	if c.WarehouseToken == "" {
		return fmt.Errorf("WAREHOUSE_TOKEN is required (or run with -stub)")
	}
	if c.WarehouseID == "" {
		return fmt.Errorf("WAREHOUSE_ID is required (or run with -stub)")
	}
	if c.PollInterval <= 0 || c.PollDeadline <= 0 {
		return fmt.Errorf("poll interval and deadline must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationOr(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func splitAndTrim(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
