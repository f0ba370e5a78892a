package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/radar/internal/api/handlers"
	"github.com/wonny/radar/internal/archive"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/internal/radarconfig"
	"github.com/wonny/radar/internal/report"
	"github.com/wonny/radar/internal/trends"
	"github.com/wonny/radar/pkg/logger"
)

// DefaultRefreshSchedule runs every Monday at 06:00, after the source
// has published the previous week.
const DefaultRefreshSchedule = "0 0 6 * * 1"

// RefreshJob fetches fresh observations, archives them, recomputes the
// radar tables and publishes the result. Archive, run recording and
// report output are each optional; the serving store is not.
type RefreshJob struct {
	cfg      *radarconfig.Config
	cfgYAML  []byte
	client   *trends.Client
	pipeline *radar.Pipeline
	store    *handlers.ResultStore
	obsRepo  *archive.ObservationRepository
	runRepo  *archive.RunRepository
	writer   *report.Writer
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates a new refresh job
func NewRefreshJob(
	cfg *radarconfig.Config,
	cfgYAML []byte,
	client *trends.Client,
	pipeline *radar.Pipeline,
	store *handlers.ResultStore,
	log *logger.Logger,
) *RefreshJob {
	return &RefreshJob{
		cfg:      cfg,
		cfgYAML:  cfgYAML,
		client:   client,
		pipeline: pipeline,
		store:    store,
		schedule: DefaultRefreshSchedule,
		logger:   log.WithField("job", "radar_refresh"),
	}
}

// WithArchive enables raw observation and run snapshot persistence
func (j *RefreshJob) WithArchive(obsRepo *archive.ObservationRepository, runRepo *archive.RunRepository) *RefreshJob {
	j.obsRepo = obsRepo
	j.runRepo = runRepo
	return j
}

// WithReport enables CSV report output after each run
func (j *RefreshJob) WithReport(writer *report.Writer) *RefreshJob {
	j.writer = writer
	return j
}

// WithSchedule overrides the default cron expression
func (j *RefreshJob) WithSchedule(schedule string) *RefreshJob {
	j.schedule = schedule
	return j
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "radar_refresh"
}

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one full refresh cycle
func (j *RefreshJob) Run(ctx context.Context) error {
	result, err := j.Execute(ctx)
	if err != nil {
		return err
	}

	j.store.Set(result)
	return nil
}

// Execute fetches, archives and recomputes without publishing. Exposed
// so the API refresh endpoint and the CLI can share the cycle.
func (j *RefreshJob) Execute(ctx context.Context) (*radar.Result, error) {
	terms := j.cfg.Terms()
	geo := j.cfg.Meta.Geo
	timeframe := j.cfg.Meta.Timeframe

	observations, err := j.client.FetchInterest(ctx, terms, geo, timeframe)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}

	if j.obsRepo != nil {
		if err := j.obsRepo.SaveBatch(ctx, geo, timeframe, observations); err != nil {
			// Archive failure does not block the recompute; the raw data
			// is still held in memory for this cycle.
			j.logger.WithError(err).Warn("Failed to archive observations")
		}
	}

	result, err := j.pipeline.Run(ctx, observations)
	if err != nil {
		return nil, fmt.Errorf("pipeline failed: %w", err)
	}

	if j.runRepo != nil {
		snapshot, err := radarconfig.NewSnapshot(j.cfg, j.cfgYAML, result.RunID)
		if err == nil {
			if err := j.runRepo.SaveSnapshot(ctx, snapshot, len(terms)); err != nil {
				j.logger.WithError(err).Warn("Failed to record run snapshot")
			}
		}
	}

	if j.writer != nil {
		if _, err := j.writer.WriteAll(result); err != nil {
			j.logger.WithError(err).Warn("Failed to write report")
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":       result.RunID,
		"observations": len(observations),
		"months":       len(result.Scored),
	}).Info("Refresh cycle completed")

	return result, nil
}
