package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/api"
	"github.com/wonny/radar/internal/api/handlers"
	"github.com/wonny/radar/internal/archive"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/internal/scheduler/jobs"
	"github.com/wonny/radar/internal/trends"
	"github.com/wonny/radar/pkg/database"
	"github.com/wonny/radar/pkg/httputil"
	"github.com/wonny/radar/pkg/logger"
	"github.com/wonny/radar/pkg/redis"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the radar API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health             - Health check
  GET  /api/radar/signals  - Weekly signal rows
  GET  /api/radar/scores   - Scored monthly table
  GET  /api/radar/top      - Top months per keyword
  GET  /api/radar/pivot    - Keyword x month matrix
  POST /api/radar/refresh  - Refetch and recompute

Example:
  go run ./cmd/radar serve
  go run ./cmd/radar serve --port 8090`,
	RunE: runServe,
}

var (
	servePort    string
	serveRefresh bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (default from PORT)")
	serveCmd.Flags().BoolVar(&serveRefresh, "refresh-on-start", false, "run a refresh cycle before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Radar API Server ===")

	// 1. Load config, logger, strategy
	cfg, log, strategy, yamlData, err := setup()
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	// 2. Build the refresh cycle (trends client + pipeline)
	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "radar")

	httpClient := httputil.NewWithTimeout(log, cfg.Trends.Timeout)
	client := trends.NewClient(cfg.Trends, httpClient, cache, log)
	pipeline := radar.NewPipeline(strategy, log)

	store := handlers.NewResultStore()
	job := jobs.NewRefreshJob(strategy, yamlData, client, pipeline, store, log)

	// 3. Archive is optional: serve without it when no database is reachable
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			log.WithError(err).Warn("Database unavailable, serving without archive")
		} else {
			defer db.Close()
			job.WithArchive(
				archive.NewObservationRepository(db.Pool),
				archive.NewRunRepository(db.Pool),
			)
			log.Info("Connected to database")
		}
	}

	// 4. Optional warm-up run
	if serveRefresh {
		result, err := job.Execute(context.Background())
		if err != nil {
			return fmt.Errorf("initial refresh: %w", err)
		}
		store.Set(result)
	}

	// 5. Wire handler and router
	refresh := func(r *http.Request) (*radar.Result, error) {
		return job.Execute(r.Context())
	}
	radarHandler := handlers.NewRadarHandler(store, refresh, log)
	router := api.NewRouter(radarHandler, log)
	server := api.New(cfg, log, router)

	// 6. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\nServer running on http://localhost:%s\n", cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	waitForShutdown(server, log)
	return nil
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains the server.
func waitForShutdown(server *api.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown failed")
		return
	}

	log.Info("Server stopped")
}
