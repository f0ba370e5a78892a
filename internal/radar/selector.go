package radar

import (
	"sort"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/pkg/logger"
)

// TopSelector surfaces the most activated months per keyword.
type TopSelector struct {
	topN   int
	logger *logger.Logger
}

// NewTopSelector creates a new top-month selector.
func NewTopSelector(topN int, log *logger.Logger) *TopSelector {
	return &TopSelector{
		topN:   topN,
		logger: log.WithField("module", "top_selector"),
	}
}

// Select ranks months within each keyword by activation score descending
// and keeps the top N (fewer when the keyword has fewer months). Rows
// with a missing score rank below every defined score. Ties break toward
// the earlier month so output is reproducible.
func (s *TopSelector) Select(scored []contracts.ScoredAggregate) []contracts.TopMonthEntry {
	byKeyword := make(map[string][]contracts.ScoredAggregate)
	var keywords []string
	for _, row := range scored {
		if _, ok := byKeyword[row.Keyword]; !ok {
			keywords = append(keywords, row.Keyword)
		}
		byKeyword[row.Keyword] = append(byKeyword[row.Keyword], row)
	}
	sort.Strings(keywords)

	var out []contracts.TopMonthEntry
	for _, kw := range keywords {
		months := byKeyword[kw]
		sort.SliceStable(months, func(i, j int) bool {
			return rankBefore(months[i], months[j])
		})

		n := s.topN
		if n > len(months) {
			n = len(months)
		}

		for _, row := range months[:n] {
			out = append(out, contracts.TopMonthEntry{
				Keyword:  row.Keyword,
				Month:    row.Month,
				ActScore: row.ActScore,
				AvgYoY:   row.AvgYoY,
				AvgZ:     row.AvgZ,
				HotShare: row.HotShare,
			})
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"keywords": len(keywords),
		"entries":  len(out),
	}).Debug("Top month selection completed")

	return out
}

// rankBefore orders a before b: higher activation score first, missing
// scores last, ties resolved by earlier month.
func rankBefore(a, b contracts.ScoredAggregate) bool {
	switch {
	case a.ActScore != nil && b.ActScore == nil:
		return true
	case a.ActScore == nil && b.ActScore != nil:
		return false
	case a.ActScore != nil && b.ActScore != nil && *a.ActScore != *b.ActScore:
		return *a.ActScore > *b.ActScore
	default:
		return a.Month < b.Month
	}
}
