package radar

import (
	"sort"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radarconfig"
	"github.com/wonny/radar/pkg/logger"
)

// Aggregator rolls daily signal rows up to per-(keyword, month)
// statistics. Pure aggregation: the result does not depend on row order
// within a bucket.
type Aggregator struct {
	hotZ   float64
	logger *logger.Logger
}

// NewAggregator creates a new monthly aggregator.
func NewAggregator(cfg radarconfig.Signals, log *logger.Logger) *Aggregator {
	return &Aggregator{
		hotZ:   cfg.HotZ,
		logger: log.WithField("module", "aggregator"),
	}
}

// Aggregate groups signal rows by (keyword, month). Averages ignore
// missing entries; a bucket with zero defined values for a field yields
// a missing average. Days counts every row regardless of missing derived
// fields. Output is sorted by keyword, then month.
func (a *Aggregator) Aggregate(rows []contracts.SignalRow) []contracts.MonthlyAggregate {
	type bucket struct {
		keyword string
		month   string
		trendMA []*float64
		yoy     []*float64
		z       []*float64
		days    int
		hotDays int
	}

	type key struct {
		keyword string
		month   string
	}

	buckets := make(map[key]*bucket)
	for _, row := range rows {
		k := key{row.Keyword, row.Month}
		b, ok := buckets[k]
		if !ok {
			b = &bucket{keyword: row.Keyword, month: row.Month}
			buckets[k] = b
		}

		b.trendMA = append(b.trendMA, row.TrendMA)
		b.yoy = append(b.yoy, row.YoYIdx)
		b.z = append(b.z, row.ZScore)
		b.days++
		if row.ZScore != nil && *row.ZScore >= a.hotZ {
			b.hotDays++
		}
	}

	out := make([]contracts.MonthlyAggregate, 0, len(buckets))
	for _, b := range buckets {
		agg := contracts.MonthlyAggregate{
			Keyword:  b.keyword,
			Month:    b.month,
			AvgTrend: meanDefined(b.trendMA),
			AvgYoY:   meanDefined(b.yoy),
			AvgZ:     meanDefined(b.z),
			Days:     b.days,
			HotDays:  b.hotDays,
			HotShare: float64(b.hotDays) / float64(b.days),
		}
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Keyword != out[j].Keyword {
			return out[i].Keyword < out[j].Keyword
		}
		return out[i].Month < out[j].Month
	})

	a.logger.WithFields(map[string]interface{}{
		"rows":    len(rows),
		"buckets": len(out),
	}).Debug("Monthly aggregation completed")

	return out
}
