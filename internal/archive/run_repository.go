package archive

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/radar/internal/radarconfig"
)

// RunRecord is one recorded pipeline run.
type RunRecord struct {
	RunID      string
	StrategyID string
	ConfigHash string
	Keywords   int
	CreatedAt  time.Time
}

// RunRepository records pipeline runs with the exact strategy snapshot
// that produced them, so any past run can be reproduced.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new run repository
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveSnapshot records a run and its strategy snapshot
func (r *RunRepository) SaveSnapshot(ctx context.Context, snapshot *radarconfig.Snapshot, keywords int) error {
	query := `
		INSERT INTO radar.runs (run_id, strategy_id, config_hash, config_yaml, keywords, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (run_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		snapshot.RunID, snapshot.StrategyID, snapshot.ConfigHash, snapshot.ConfigYAML, keywords,
	)
	return err
}

// GetRecent retrieves the most recent runs, newest first.
func (r *RunRepository) GetRecent(ctx context.Context, limit int) ([]RunRecord, error) {
	query := `
		SELECT run_id, strategy_id, config_hash, keywords, created_at
		FROM radar.runs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.StrategyID, &rec.ConfigHash, &rec.Keywords, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
