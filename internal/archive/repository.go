package archive

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/radar/internal/contracts"
)

// ObservationRepository stores raw interest observations. Only source
// data is archived; derived tables are recomputed from it on demand.
type ObservationRepository struct {
	pool *pgxpool.Pool
}

// NewObservationRepository creates a new observation repository
func NewObservationRepository(pool *pgxpool.Pool) *ObservationRepository {
	return &ObservationRepository{pool: pool}
}

// Save saves a single observation. A NULL trend_value records that the
// source returned no usable value for that week.
func (r *ObservationRepository) Save(ctx context.Context, geo, timeframe string, obs contracts.Observation) error {
	query := `
		INSERT INTO radar.observations (keyword, obs_date, geo, timeframe, trend_value, fetched_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (keyword, obs_date, geo, timeframe) DO UPDATE SET
			trend_value = EXCLUDED.trend_value,
			fetched_at = EXCLUDED.fetched_at
	`

	_, err := r.pool.Exec(ctx, query, obs.Keyword, obs.Date, geo, timeframe, obs.Trend)
	return err
}

// SaveBatch saves multiple observations
func (r *ObservationRepository) SaveBatch(ctx context.Context, geo, timeframe string, observations []contracts.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	for _, obs := range observations {
		if err := r.Save(ctx, geo, timeframe, obs); err != nil {
			return err
		}
	}
	return nil
}

// GetByKeywordsAndDateRange retrieves observations for the given
// keywords within a date range, ordered by keyword then date.
func (r *ObservationRepository) GetByKeywordsAndDateRange(ctx context.Context, keywords []string, geo, timeframe string, from, to time.Time) ([]contracts.Observation, error) {
	query := `
		SELECT keyword, obs_date, trend_value
		FROM radar.observations
		WHERE keyword = ANY($1) AND geo = $2 AND timeframe = $3
			AND obs_date BETWEEN $4 AND $5
		ORDER BY keyword ASC, obs_date ASC
	`

	rows, err := r.pool.Query(ctx, query, keywords, geo, timeframe, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []contracts.Observation
	for rows.Next() {
		var obs contracts.Observation
		if err := rows.Scan(&obs.Keyword, &obs.Date, &obs.Trend); err != nil {
			return nil, err
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}

// GetLatestDate retrieves the most recent observation date for a
// keyword, or the zero time when none exists.
func (r *ObservationRepository) GetLatestDate(ctx context.Context, keyword, geo, timeframe string) (time.Time, error) {
	query := `
		SELECT COALESCE(MAX(obs_date), 'epoch'::date)
		FROM radar.observations
		WHERE keyword = $1 AND geo = $2 AND timeframe = $3
	`

	var latest time.Time
	if err := r.pool.QueryRow(ctx, query, keyword, geo, timeframe).Scan(&latest); err != nil {
		return time.Time{}, err
	}
	if latest.Unix() == 0 {
		return time.Time{}, nil
	}
	return latest, nil
}

// CountByKeyword returns observation counts per keyword, for coverage checks.
func (r *ObservationRepository) CountByKeyword(ctx context.Context, geo, timeframe string) (map[string]int, error) {
	query := `
		SELECT keyword, COUNT(*)
		FROM radar.observations
		WHERE geo = $1 AND timeframe = $2
		GROUP BY keyword
	`

	rows, err := r.pool.Query(ctx, query, geo, timeframe)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var keyword string
		var count int
		if err := rows.Scan(&keyword, &count); err != nil {
			return nil, err
		}
		counts[keyword] = count
	}
	return counts, rows.Err()
}
