/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the KPI query gateway. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration, apply flag overrides
  2. Start the stub warehouse if requested, else validate credentials
  3. Create the warehouse client and API handler
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -addr    HTTP listen address (default from LISTEN_ADDR or ":8080")
  -stub    run against the in-process SQLite warehouse (no credentials)

ENVIRONMENT:
  WAREHOUSE_HOST, WAREHOUSE_TOKEN, WAREHOUSE_ID  statement API access
  POLL_INTERVAL, POLL_DEADLINE                   polling policy
  LISTEN_ADDR, CORS_ALLOWED_ORIGINS              HTTP surface

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Exit

EXAMPLES:
  # Local development, no warehouse needed
  ./server -stub

  # Production
  WAREHOUSE_HOST=https://dbc-123.cloud.example.com \
  WAREHOUSE_TOKEN=... WAREHOUSE_ID=wh-abc ./server

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment loading
*/
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/kpi-gateway/api"
	"github.com/warp/kpi-gateway/config"
	"github.com/warp/kpi-gateway/warehouse"
	"github.com/warp/kpi-gateway/warehouse/stub"
)

func main() {
	cfg := config.FromEnv()

	// Flags override environment.
	addr := flag.String("addr", cfg.ListenAddr, "HTTP listen address")
	useStub := flag.Bool("stub", false, "run against the in-process SQLite warehouse")
	flag.Parse()
	cfg.ListenAddr = *addr
	cfg.StubWarehouse = *useStub

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.StubWarehouse {
		stubSrv, err := stub.New(":memory:", 200*time.Millisecond)
		if err != nil {
			log.Fatalf("Failed to start stub warehouse: %v", err)
		}
		defer stubSrv.Close()

		ln, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			log.Fatalf("Failed to listen for stub warehouse: %v", err)
		}
		go http.Serve(ln, stubSrv.Handler())

		cfg.WarehouseHost = "http://" + ln.Addr().String()
		cfg.WarehouseToken = "stub"
		cfg.WarehouseID = "stub"
		log.Printf("Stub warehouse listening on %s", cfg.WarehouseHost)
	}

	client := warehouse.New(warehouse.Config{
		Host:         cfg.WarehouseHost,
		Token:        cfg.WarehouseToken,
		WarehouseID:  cfg.WarehouseID,
		PollInterval: cfg.PollInterval,
		PollDeadline: cfg.PollDeadline,
	})

	handler := api.NewHandler(client)
	router := api.NewRouter(handler, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:        cfg.ListenAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Responses block for up to the polling deadline; leave room
		// beyond it so slow queries time out in-band, not mid-write.
		WriteTimeout: cfg.PollDeadline + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("KPI query gateway listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
