package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/warrantscan/internal/api"
	"github.com/wonny/warrantscan/internal/api/handlers"
	"github.com/wonny/warrantscan/internal/scheduler"
	"github.com/wonny/warrantscan/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the HTTP API server.

Endpoints:
  GET  /health                  - Health check
  GET  /metrics                 - Prometheus metrics
  GET  /ws/scan                 - Scan progress stream (websocket)
  POST /api/scan                - Trigger a scan
  GET  /api/scan/status         - Scan state
  GET  /api/results/latest      - Ranked candidates of the latest run
  GET  /api/results/latest.csv  - Same, as CSV
  GET  /api/mapping             - Stored name mapping
  GET  /api/mapping/{ticker}    - Resolve a ticker
  PUT  /api/mapping/{ticker}    - Override names for a ticker

Example:
  go run ./cmd/warrantscan api
  go run ./cmd/warrantscan api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort          string
	apiWithScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default: PORT)")
	apiCmd.Flags().BoolVar(&apiWithScheduler, "with-scheduler", false, "also run the scheduled scan")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== warrantscan API Server ===")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Build the stack
	a, err := newApp(ctx, appOptions{withDatabase: true})
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	// 2. Progress hub
	hub := api.NewHub(a.log)
	go hub.Run(ctx)
	defer hub.Close()

	runner := a.runner().WithEvents(hub.Publish)
	tickers := a.scan.Tickers()

	// 3. Handlers
	scanHandler := handlers.NewScanHandler(ctx, runner, tickers, a.log)
	latest := []handlers.LatestRunFunc{scanHandler.Latest}

	var sched *scheduler.Scheduler
	if apiWithScheduler {
		scanJob := jobs.NewScanJob(runner, tickers, a.cfg.ScheduleCron, a.log)
		if a.repo != nil {
			scanJob.WithStore(a.repo)
		}
		sched = scheduler.New(a.log)
		if err := sched.AddJob(scanJob); err != nil {
			return fmt.Errorf("add scan job: %w", err)
		}
		if err := sched.AddJob(jobs.NewFxRefreshJob(a.fx, a.log)); err != nil {
			return fmt.Errorf("add fx job: %w", err)
		}
		latest = append(latest, scanJob.Latest)
	}

	deps := api.Deps{
		Scan:    scanHandler,
		Mapping: handlers.NewMappingHandler(a.resolver, a.store, a.log),
		Hub:     hub,
	}
	if a.metrics != nil {
		deps.Metrics = a.metrics.Handler()
	}
	if a.repo != nil {
		scanHandler.WithStore(a.repo)
		deps.Results = handlers.NewResultsHandler(a.repo, a.log, latest...)
		deps.Database = a.db
	} else {
		deps.Results = handlers.NewResultsHandler(nil, a.log, latest...)
	}

	// 4. Router and server
	server := api.New(a.cfg, a.log, api.NewRouter(deps, a.log))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	if sched != nil {
		sched.Start()
		defer sched.Stop()
	}

	a.log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	a.log.Info("Shutting down server...")
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	scanHandler.Wait()

	a.log.Info("Server stopped")
	return nil
}
