package radar

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/internal/contracts"
)

func signalRow(keyword, month string, day int, z *float64) contracts.SignalRow {
	return contracts.SignalRow{
		Date:    time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC),
		Keyword: keyword,
		Month:   month,
		ZScore:  z,
	}
}

func TestAggregator_HotDaysAndShare(t *testing.T) {
	rows := []contracts.SignalRow{
		signalRow("sneakers", "2024-06", 2, contracts.Float(1.5)),  // hot
		signalRow("sneakers", "2024-06", 9, contracts.Float(1.2)),  // hot (>= threshold)
		signalRow("sneakers", "2024-06", 16, contracts.Float(0.4)), // not hot
		signalRow("sneakers", "2024-06", 23, nil),                  // missing z, still counted in days
	}

	aggs := NewAggregator(defaultSignals(), testLogger()).Aggregate(rows)
	require.Len(t, aggs, 1)

	agg := aggs[0]
	assert.Equal(t, 4, agg.Days)
	assert.Equal(t, 2, agg.HotDays)
	assert.InDelta(t, 0.5, agg.HotShare, 1e-9)
	assert.GreaterOrEqual(t, agg.HotShare, 0.0)
	assert.LessOrEqual(t, agg.HotShare, 1.0)

	require.NotNil(t, agg.AvgZ)
	assert.InDelta(t, (1.5+1.2+0.4)/3.0, *agg.AvgZ, 1e-9)
}

func TestAggregator_AllMissingFieldYieldsMissingAverage(t *testing.T) {
	rows := []contracts.SignalRow{
		signalRow("laptops", "2024-06", 2, nil),
		signalRow("laptops", "2024-06", 9, nil),
	}

	aggs := NewAggregator(defaultSignals(), testLogger()).Aggregate(rows)
	require.Len(t, aggs, 1)

	assert.Nil(t, aggs[0].AvgZ)
	assert.Nil(t, aggs[0].AvgYoY)
	assert.Nil(t, aggs[0].AvgTrend)
	assert.Equal(t, 2, aggs[0].Days)
	assert.Equal(t, 0, aggs[0].HotDays)
}

func TestAggregator_OrderIndependence(t *testing.T) {
	rows := []contracts.SignalRow{
		signalRow("a", "2024-05", 2, contracts.Float(2.0)),
		signalRow("a", "2024-06", 9, contracts.Float(0.1)),
		signalRow("b", "2024-05", 2, contracts.Float(-1.0)),
		signalRow("a", "2024-05", 16, nil),
		signalRow("b", "2024-06", 9, contracts.Float(1.3)),
	}

	agg := NewAggregator(defaultSignals(), testLogger())
	expected := agg.Aggregate(rows)

	shuffled := make([]contracts.SignalRow, len(rows))
	copy(shuffled, rows)
	rng := rand.New(rand.NewSource(7))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assert.Equal(t, expected, agg.Aggregate(shuffled))
}

func TestAggregator_SortedOutput(t *testing.T) {
	rows := []contracts.SignalRow{
		signalRow("b", "2024-06", 2, nil),
		signalRow("a", "2024-07", 2, nil),
		signalRow("a", "2024-06", 2, nil),
	}

	aggs := NewAggregator(defaultSignals(), testLogger()).Aggregate(rows)
	require.Len(t, aggs, 3)
	assert.Equal(t, "a", aggs[0].Keyword)
	assert.Equal(t, "2024-06", aggs[0].Month)
	assert.Equal(t, "a", aggs[1].Keyword)
	assert.Equal(t, "2024-07", aggs[1].Month)
	assert.Equal(t, "b", aggs[2].Keyword)
}
