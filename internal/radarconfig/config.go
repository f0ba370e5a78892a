package radarconfig

import "time"

// Config is the full radar strategy definition: which keywords to watch
// and how to turn their interest history into activation scores.
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Keywords  Keywords  `yaml:"keywords" json:"keywords"`
	Signals   Signals   `yaml:"signals" json:"signals"`
	Scoring   Scoring   `yaml:"scoring" json:"scoring"`
	Selection Selection `yaml:"selection" json:"selection"`
}

// Meta identifies the strategy.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Geo        string `yaml:"geo" json:"geo"`             // country/region code, e.g. "US"
	Timeframe  string `yaml:"timeframe" json:"timeframe"` // source timeframe, e.g. "today 5-y"
}

// Keywords holds the keyword universe, organized in named groups.
type Keywords struct {
	Groups []Group `yaml:"groups" json:"groups"`
}

type Group struct {
	Name  string   `yaml:"name" json:"name"`
	Terms []string `yaml:"terms" json:"terms"`
}

// Signals configures the per-keyword feature engineering.
type Signals struct {
	MAWindow int `yaml:"ma_window" json:"ma_window"` // smoothing window (default 4)
	ZWindow  int `yaml:"z_window" json:"z_window"`   // rolling z-score window (default 12)
	YoYLag   int `yaml:"yoy_lag" json:"yoy_lag"`     // observations per year (default 52, weekly)

	HotZ float64 `yaml:"hot_z" json:"hot_z"` // z threshold for a "hot" day (default 1.2)

	// MissingPolicy decides what happens to missing trend values before
	// feature engineering: "zero" coerces them to 0 (default, matches
	// prior runs), "drop" excludes the observation. Zero conflates "not
	// measured" with "no interest", which can distort z/yoy for
	// partially-missing series.
	MissingPolicy string `yaml:"missing_policy" json:"missing_policy"`
}

// Scoring configures the activation score composition.
type Scoring struct {
	Weights Weights `yaml:"weights" json:"weights"`
	Clamp   Clamp   `yaml:"clamp" json:"clamp"`
}

// Weights for the convex combination. Must sum to 1.
type Weights struct {
	Z   float64 `yaml:"z" json:"z"`     // momentum (default 0.6)
	YoY float64 `yaml:"yoy" json:"yoy"` // year-over-year growth (default 0.3)
	Hot float64 `yaml:"hot" json:"hot"` // hot-day share (default 0.1)
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Z + w.YoY + w.Hot
}

// Clamp bounds outlier influence before min-max scaling.
type Clamp struct {
	ZMin   float64 `yaml:"z_min" json:"z_min"`     // default -3
	ZMax   float64 `yaml:"z_max" json:"z_max"`     // default 5
	YoYMin float64 `yaml:"yoy_min" json:"yoy_min"` // default 80
	YoYMax float64 `yaml:"yoy_max" json:"yoy_max"` // default 200
}

// Selection configures the top-months extraction.
type Selection struct {
	TopN int `yaml:"top_n" json:"top_n"` // default 3
}

// Missing-trend policies.
const (
	MissingZero = "zero"
	MissingDrop = "drop"
)

// Default returns a Config with the documented default parameters and no
// keywords.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "retail_radar_default",
			Version:    "1.0.0",
			Geo:        "US",
			Timeframe:  "today 5-y",
		},
		Signals: Signals{
			MAWindow:      4,
			ZWindow:       12,
			YoYLag:        52,
			HotZ:          1.2,
			MissingPolicy: MissingZero,
		},
		Scoring: Scoring{
			Weights: Weights{Z: 0.6, YoY: 0.3, Hot: 0.1},
			Clamp:   Clamp{ZMin: -3, ZMax: 5, YoYMin: 80, YoYMax: 200},
		},
		Selection: Selection{TopN: 3},
	}
}

// Terms returns the deduplicated keyword list across all groups,
// preserving first-seen order.
func (c *Config) Terms() []string {
	seen := make(map[string]bool)
	var terms []string
	for _, g := range c.Keywords.Groups {
		for _, t := range g.Terms {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			terms = append(terms, t)
		}
	}
	return terms
}

// Snapshot captures the exact configuration a radar run used, for
// reproducibility.
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	RunID      string    `json:"run_id"`
	CreatedAt  time.Time `json:"created_at"`
}
