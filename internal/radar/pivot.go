package radar

import (
	"sort"

	"github.com/wonny/radar/internal/contracts"
)

// PivotBuilder reshapes the scored table into a dense keyword x month
// matrix of activation scores for reporting.
type PivotBuilder struct{}

// NewPivotBuilder creates a new pivot builder.
func NewPivotBuilder() *PivotBuilder {
	return &PivotBuilder{}
}

// Build materializes every (keyword, month) pair observed anywhere in
// the scored table; combinations with no row, and rows with a missing
// activation score, hold 0.0. A consumer cannot tell "no data" apart
// from "measured, no activation" in this matrix.
func (b *PivotBuilder) Build(scored []contracts.ScoredAggregate) *contracts.PivotTable {
	keywordSet := make(map[string]bool)
	monthSet := make(map[string]bool)
	for _, row := range scored {
		keywordSet[row.Keyword] = true
		monthSet[row.Month] = true
	}

	keywords := make([]string, 0, len(keywordSet))
	for k := range keywordSet {
		keywords = append(keywords, k)
	}
	sort.Strings(keywords)

	months := make([]string, 0, len(monthSet))
	for m := range monthSet {
		months = append(months, m)
	}
	sort.Strings(months)

	keywordIdx := make(map[string]int, len(keywords))
	for i, k := range keywords {
		keywordIdx[k] = i
	}
	monthIdx := make(map[string]int, len(months))
	for j, m := range months {
		monthIdx[m] = j
	}

	scores := make([][]float64, len(keywords))
	for i := range scores {
		scores[i] = make([]float64, len(months))
	}

	for _, row := range scored {
		if row.ActScore == nil {
			continue
		}
		scores[keywordIdx[row.Keyword]][monthIdx[row.Month]] = *row.ActScore
	}

	return &contracts.PivotTable{
		Keywords: keywords,
		Months:   months,
		Scores:   scores,
	}
}
