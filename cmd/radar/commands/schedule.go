package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/api/handlers"
	"github.com/wonny/radar/internal/archive"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/internal/report"
	"github.com/wonny/radar/internal/scheduler"
	"github.com/wonny/radar/internal/scheduler/jobs"
	"github.com/wonny/radar/internal/trends"
	"github.com/wonny/radar/pkg/database"
	"github.com/wonny/radar/pkg/httputil"
	"github.com/wonny/radar/pkg/redis"
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the refresh scheduler",
	Long: `Runs the cron scheduler with the weekly refresh job: fetch fresh
observations, archive them, recompute the radar tables and write the
CSV report.

Example:
  go run ./cmd/radar schedule
  go run ./cmd/radar schedule --cron "0 0 6 * * 1" --out ./out
  go run ./cmd/radar schedule --now`,
	RunE: runSchedule,
}

var (
	scheduleCron string
	scheduleOut  string
	scheduleNow  bool
)

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleCron, "cron", jobs.DefaultRefreshSchedule, "cron expression (seconds field included)")
	scheduleCmd.Flags().StringVar(&scheduleOut, "out", "./out", "report output directory")
	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "trigger one refresh immediately on start")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Radar Scheduler ===")

	cfg, log, strategy, yamlData, err := setup()
	if err != nil {
		return err
	}

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

	job := jobs.NewRefreshJob(strategy, yamlData, client, pipeline, store, log).
		WithSchedule(scheduleCron).
		WithReport(report.NewWriter(scheduleOut, log))

	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			log.WithError(err).Warn("Database unavailable, running without archive")
		} else {
			defer db.Close()
			job.WithArchive(
				archive.NewObservationRepository(db.Pool),
				archive.NewRunRepository(db.Pool),
			)
		}
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	if scheduleNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	fmt.Printf("Scheduler running (%s)\n", scheduleCron)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	return nil
}
