package contracts

import "time"

// Observation is a single raw interest measurement delivered by the
// acquisition layer. Trend is nil when the source returned a missing or
// malformed value; the signal engine owns the coercion policy.
type Observation struct {
	Date    time.Time `json:"date"`
	Keyword string    `json:"keyword"`
	Trend   *float64  `json:"trend"`
}

// SignalRow is one Observation enriched with derived signals.
// Derived fields are nil when the keyword's history is too short to
// compute them.
type SignalRow struct {
	Date    time.Time `json:"date"`
	Keyword string    `json:"keyword"`
	Trend   float64   `json:"trend"`
	TrendMA *float64  `json:"trend_ma"`
	YoYIdx  *float64  `json:"yoy_idx"`
	ZScore  *float64  `json:"z_score"`
	Month   string    `json:"month"` // calendar month label, e.g. "2024-06"
}

// MonthlyAggregate summarizes one (keyword, month) bucket of signal rows.
// Days counts every row in the bucket, including rows whose derived
// fields are missing; it measures coverage, not quality.
type MonthlyAggregate struct {
	Keyword  string   `json:"keyword"`
	Month    string   `json:"month"`
	AvgTrend *float64 `json:"avg_trend"`
	AvgYoY   *float64 `json:"avg_yoy"`
	AvgZ     *float64 `json:"avg_z"`
	Days     int      `json:"days"`
	HotDays  int      `json:"hot_days"`
	HotShare float64  `json:"hot_share"` // always in [0,1]
}

// ScoredAggregate is a MonthlyAggregate extended with dataset-normalized
// columns and the composite activation score, each in [0,1] when defined.
// A missing AvgZ or AvgYoY propagates to a missing ActScore.
type ScoredAggregate struct {
	MonthlyAggregate

	ZScaled   *float64 `json:"z_scaled"`
	YoYScaled *float64 `json:"yoy_scaled"`
	ActScore  *float64 `json:"act_score"`
}

// TopMonthEntry is one row of the top-months table: at most N per
// keyword, ranked by ActScore descending.
type TopMonthEntry struct {
	Keyword  string   `json:"keyword"`
	Month    string   `json:"month"`
	ActScore *float64 `json:"act_score"`
	AvgYoY   *float64 `json:"avg_yoy"`
	AvgZ     *float64 `json:"avg_z"`
	HotShare float64  `json:"hot_share"`
}

// PivotTable is the dense keyword x month activation matrix for
// reporting. Combinations absent from the scored table hold exactly 0.0,
// which is intentionally indistinguishable from "measured, no
// activation" (known reporting limitation).
type PivotTable struct {
	Keywords []string    `json:"keywords"` // sorted ascending
	Months   []string    `json:"months"`   // sorted ascending
	Scores   [][]float64 `json:"scores"`   // Scores[i][j] = score for Keywords[i], Months[j]
}

// Score returns the activation score for a (keyword, month) cell and
// whether the pair exists in the matrix.
func (p *PivotTable) Score(keyword, month string) (float64, bool) {
	ki := -1
	for i, k := range p.Keywords {
		if k == keyword {
			ki = i
			break
		}
	}
	if ki < 0 {
		return 0, false
	}

	for j, m := range p.Months {
		if m == month {
			return p.Scores[ki][j], true
		}
	}
	return 0, false
}

// MonthLabel derives the calendar-month label used across all tables.
func MonthLabel(date time.Time) string {
	return date.Format("2006-01")
}

// Float returns a pointer to v. Convenience for building optional values.
func Float(v float64) *float64 {
	return &v
}
