package radar

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radarconfig"
	"github.com/wonny/radar/pkg/logger"
)

// ErrNoObservations is returned when a run is started with an empty
// observation set. An empty input is a fatal condition, never an
// empty-but-valid result.
var ErrNoObservations = errors.New("no observations supplied")

// Pipeline orchestrates the full radar computation:
// observations -> signal rows -> monthly aggregates -> scored table ->
// {top months, pivot matrix}. Deterministic for identical input and
// configuration.
type Pipeline struct {
	cfg    *radarconfig.Config
	engine *Engine
	agg    *Aggregator
	scorer *Scorer
	top    *TopSelector
	pivot  *PivotBuilder
	logger *logger.Logger
}

// NewPipeline wires all pipeline stages from a strategy config.
func NewPipeline(cfg *radarconfig.Config, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		engine: NewEngine(cfg.Signals, log),
		agg:    NewAggregator(cfg.Signals, log),
		scorer: NewScorer(cfg.Scoring, log),
		top:    NewTopSelector(cfg.Selection.TopN, log),
		pivot:  NewPivotBuilder(),
		logger: log.WithField("module", "pipeline"),
	}
}

// Result holds every output table of a radar run.
type Result struct {
	RunID       string    `json:"run_id"`
	StrategyID  string    `json:"strategy_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Signals   []contracts.SignalRow       `json:"signals"`
	Scored    []contracts.ScoredAggregate `json:"scored"`
	TopMonths []contracts.TopMonthEntry   `json:"top_months"`
	Pivot     *contracts.PivotTable       `json:"pivot"`
}

// Run executes the pipeline over the observation set.
func (p *Pipeline) Run(ctx context.Context, observations []contracts.Observation) (*Result, error) {
	if len(observations) == 0 {
		return nil, ErrNoObservations
	}

	runID := uuid.NewString()
	log := p.logger.WithFields(map[string]interface{}{
		"run_id":   runID,
		"strategy": p.cfg.Meta.StrategyID,
	})

	start := time.Now()
	log.WithField("observations", len(observations)).Info("Radar run started")

	signals := p.engine.Transform(observations)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	aggregates := p.agg.Aggregate(signals)

	// Global normalization needs the complete aggregate table; the
	// scorer must not start until aggregation has finished.
	scored := p.scorer.Score(aggregates)

	topMonths := p.top.Select(scored)
	pivot := p.pivot.Build(scored)

	log.WithFields(map[string]interface{}{
		"signal_rows": len(signals),
		"months":      len(scored),
		"top_entries": len(topMonths),
		"duration":    time.Since(start),
	}).Info("Radar run completed")

	return &Result{
		RunID:       runID,
		StrategyID:  p.cfg.Meta.StrategyID,
		GeneratedAt: time.Now().UTC(),
		Signals:     signals,
		Scored:      scored,
		TopMonths:   topMonths,
		Pivot:       pivot,
	}, nil
}
