package radar

import (
	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radarconfig"
	"github.com/wonny/radar/pkg/logger"
)

// Scorer normalizes monthly statistics across the whole dataset and
// computes the composite activation score.
//
// Scoring is a two-phase barrier: the global min/max reduction must see
// the complete aggregate table before any row is scaled, so no streaming
// or partial scoring is valid.
type Scorer struct {
	cfg    radarconfig.Scoring
	logger *logger.Logger
}

// NewScorer creates a new scorer.
func NewScorer(cfg radarconfig.Scoring, log *logger.Logger) *Scorer {
	return &Scorer{
		cfg:    cfg,
		logger: log.WithField("module", "scorer"),
	}
}

// columnRange tracks the observed min/max of a clamped column.
type columnRange struct {
	min, max float64
	seen     bool
}

func (r *columnRange) observe(v float64) {
	if !r.seen {
		r.min, r.max = v, v
		r.seen = true
		return
	}
	if v < r.min {
		r.min = v
	}
	if v > r.max {
		r.max = v
	}
}

// scale min-max normalizes v into [0,1]. A degenerate column
// (max == min) scales to 0 for every row, by policy, to avoid a zero
// division.
func (r *columnRange) scale(v float64) float64 {
	if r.max > r.min {
		return (v - r.min) / (r.max - r.min)
	}
	return 0
}

// Score computes scaled columns and activation scores for the whole
// aggregate table. Missing AvgZ or AvgYoY propagates to a missing
// ActScore; it is never silently zeroed.
func (s *Scorer) Score(aggs []contracts.MonthlyAggregate) []contracts.ScoredAggregate {
	cl := s.cfg.Clamp

	// Phase 1: global reduction over clamped columns.
	var zRange, yoyRange columnRange
	for _, agg := range aggs {
		if agg.AvgZ != nil {
			zRange.observe(clamp(*agg.AvgZ, cl.ZMin, cl.ZMax))
		}
		if agg.AvgYoY != nil {
			yoyRange.observe(clamp(*agg.AvgYoY, cl.YoYMin, cl.YoYMax))
		}
	}

	// Phase 2: per-row scaling and composition.
	w := s.cfg.Weights
	out := make([]contracts.ScoredAggregate, len(aggs))
	for i, agg := range aggs {
		scored := contracts.ScoredAggregate{MonthlyAggregate: agg}

		if agg.AvgZ != nil {
			scored.ZScaled = contracts.Float(zRange.scale(clamp(*agg.AvgZ, cl.ZMin, cl.ZMax)))
		}
		if agg.AvgYoY != nil {
			scored.YoYScaled = contracts.Float(yoyRange.scale(clamp(*agg.AvgYoY, cl.YoYMin, cl.YoYMax)))
		}

		if scored.ZScaled != nil && scored.YoYScaled != nil {
			act := w.Z*(*scored.ZScaled) + w.YoY*(*scored.YoYScaled) + w.Hot*agg.HotShare
			scored.ActScore = contracts.Float(act)
		}

		out[i] = scored
	}

	s.logger.WithFields(map[string]interface{}{
		"rows": len(out),
	}).Debug("Activation scoring completed")

	return out
}
