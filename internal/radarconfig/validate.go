package radarconfig

import (
	"fmt"
	"math"
)

// Validate checks hard constraints. A config that fails here must not run.
func Validate(cfg *Config) error {
	if cfg.Meta.StrategyID == "" {
		return fmt.Errorf("meta.strategy_id is required")
	}

	if cfg.Signals.MAWindow < 1 {
		return fmt.Errorf("signals.ma_window must be >= 1, got %d", cfg.Signals.MAWindow)
	}
	if cfg.Signals.ZWindow < 1 {
		return fmt.Errorf("signals.z_window must be >= 1, got %d", cfg.Signals.ZWindow)
	}
	if cfg.Signals.YoYLag < 1 {
		return fmt.Errorf("signals.yoy_lag must be >= 1, got %d", cfg.Signals.YoYLag)
	}

	switch cfg.Signals.MissingPolicy {
	case MissingZero, MissingDrop:
	default:
		return fmt.Errorf("signals.missing_policy must be %q or %q, got %q",
			MissingZero, MissingDrop, cfg.Signals.MissingPolicy)
	}

	if err := validateWeightsSum(cfg.Scoring.Weights, 1.0, 1e-6); err != nil {
		return err
	}

	if cfg.Scoring.Clamp.ZMin >= cfg.Scoring.Clamp.ZMax {
		return fmt.Errorf("scoring.clamp: z_min (%.2f) must be < z_max (%.2f)",
			cfg.Scoring.Clamp.ZMin, cfg.Scoring.Clamp.ZMax)
	}
	if cfg.Scoring.Clamp.YoYMin >= cfg.Scoring.Clamp.YoYMax {
		return fmt.Errorf("scoring.clamp: yoy_min (%.2f) must be < yoy_max (%.2f)",
			cfg.Scoring.Clamp.YoYMin, cfg.Scoring.Clamp.YoYMax)
	}

	if cfg.Selection.TopN < 1 {
		return fmt.Errorf("selection.top_n must be >= 1, got %d", cfg.Selection.TopN)
	}

	for _, g := range cfg.Keywords.Groups {
		if g.Name == "" {
			return fmt.Errorf("keywords: every group needs a name")
		}
	}

	return nil
}

// validateWeightsSum checks the convex-combination constraint.
func validateWeightsSum(w Weights, target, eps float64) error {
	if math.Abs(w.Sum()-target) > eps {
		return fmt.Errorf("scoring.weights must sum to %.1f, got %.4f", target, w.Sum())
	}
	if w.Z < 0 || w.YoY < 0 || w.Hot < 0 {
		return fmt.Errorf("scoring.weights must be non-negative")
	}
	return nil
}

// Warn returns soft warnings for values that are legal but suspicious.
func Warn(cfg *Config) []string {
	var warnings []string

	if cfg.Signals.ZWindow <= cfg.Signals.MAWindow {
		warnings = append(warnings, fmt.Sprintf(
			"z_window (%d) <= ma_window (%d): z-scores will react to smoothing noise",
			cfg.Signals.ZWindow, cfg.Signals.MAWindow))
	}

	if cfg.Signals.HotZ < 0.5 {
		warnings = append(warnings, fmt.Sprintf(
			"hot_z %.2f is low: most days will count as hot", cfg.Signals.HotZ))
	}

	if len(cfg.Terms()) == 0 {
		warnings = append(warnings, "no keywords configured: pipeline will reject the empty input")
	}

	if len(cfg.Terms()) > 50 {
		warnings = append(warnings, fmt.Sprintf(
			"%d keywords configured: expect slow acquisition under source rate limits", len(cfg.Terms())))
	}

	return warnings
}
