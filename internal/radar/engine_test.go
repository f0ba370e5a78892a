package radar

import (
	"io"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radarconfig"
	"github.com/wonny/radar/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWriter(io.Discard, "error")
}

// weeklyObservations builds one observation per week starting at start.
func weeklyObservations(keyword string, start time.Time, values []float64) []contracts.Observation {
	obs := make([]contracts.Observation, len(values))
	for i, v := range values {
		obs[i] = contracts.Observation{
			Date:    start.AddDate(0, 0, 7*i),
			Keyword: keyword,
			Trend:   contracts.Float(v),
		}
	}
	return obs
}

func constantSeries(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func defaultSignals() radarconfig.Signals {
	return radarconfig.Default().Signals
}

func TestEngine_ShortSeriesHasNoZScores(t *testing.T) {
	// 10 observations, fewer than the z window: every z_score missing.
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	obs := weeklyObservations("sneakers", start, values)

	engine := NewEngine(defaultSignals(), testLogger())
	rows := engine.Transform(obs)
	require.Len(t, rows, 10)

	for i, row := range rows {
		assert.Nil(t, row.ZScore, "row %d should have no z_score", i)
		assert.Nil(t, row.YoYIdx, "row %d should have no yoy_idx (lag 52)", i)
	}

	// Moving average needs max(1, w_ma/2) = 2 observations.
	assert.Nil(t, rows[0].TrendMA)
	require.NotNil(t, rows[1].TrendMA)
	assert.InDelta(t, 15.0, *rows[1].TrendMA, 1e-9)

	// Window of 4 from index 3 on.
	require.NotNil(t, rows[3].TrendMA)
	assert.InDelta(t, 25.0, *rows[3].TrendMA, 1e-9)
}

func TestEngine_MonthLabels(t *testing.T) {
	start := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	obs := weeklyObservations("laptops", start, []float64{1, 2})

	rows := NewEngine(defaultSignals(), testLogger()).Transform(obs)
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-06", rows[0].Month)
	assert.Equal(t, "2024-07", rows[1].Month)
}

func TestEngine_FlatSeriesHasNoZScores(t *testing.T) {
	// Zero rolling deviation must yield missing, never infinite.
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	obs := weeklyObservations("groceries", start, constantSeries(30, 50))

	rows := NewEngine(defaultSignals(), testLogger()).Transform(obs)
	for i, row := range rows {
		assert.Nil(t, row.ZScore, "row %d: constant series must not produce z", i)
	}
}

func TestEngine_YoYIndex(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	values := constantSeries(56, 40)
	for i := 52; i < 56; i++ {
		values[i] = 60 // 150% of last year's 40
	}
	obs := weeklyObservations("cosmetics", start, values)

	rows := NewEngine(defaultSignals(), testLogger()).Transform(obs)

	for i := 0; i < 52; i++ {
		assert.Nil(t, rows[i].YoYIdx, "first yoy_lag rows have no yoy")
	}
	for i := 52; i < 56; i++ {
		require.NotNil(t, rows[i].YoYIdx)
		assert.InDelta(t, 150.0, *rows[i].YoYIdx, 1e-9)
	}
}

func TestEngine_YoYZeroDenominatorIsMissing(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	values := constantSeries(54, 25)
	values[0] = 0
	values[1] = 0
	obs := weeklyObservations("furniture", start, values)

	rows := NewEngine(defaultSignals(), testLogger()).Transform(obs)

	assert.Nil(t, rows[52].YoYIdx, "division by zero must degrade to missing")
	assert.Nil(t, rows[53].YoYIdx)
}

func TestEngine_MissingTrendCoercedToZero(t *testing.T) {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	obs := weeklyObservations("sneakers", start, []float64{10, 20, 30})
	obs[1].Trend = nil

	rows := NewEngine(defaultSignals(), testLogger()).Transform(obs)
	require.Len(t, rows, 3)
	assert.Equal(t, 0.0, rows[1].Trend)
}

func TestEngine_MissingPolicyDrop(t *testing.T) {
	cfg := defaultSignals()
	cfg.MissingPolicy = radarconfig.MissingDrop

	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	obs := weeklyObservations("sneakers", start, []float64{10, 20, 30})
	obs[1].Trend = nil

	rows := NewEngine(cfg, testLogger()).Transform(obs)
	require.Len(t, rows, 2)
	assert.Equal(t, 10.0, rows[0].Trend)
	assert.Equal(t, 30.0, rows[1].Trend)
}

func TestEngine_PerKeywordIsolation(t *testing.T) {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	valuesA := []float64{10, 12, 14, 16, 18, 20, 22, 24, 26, 28, 30, 32, 34, 36}
	valuesB := []float64{90, 80, 70, 60, 50, 40, 30, 20, 10, 5, 3, 2, 1, 1}

	engine := NewEngine(defaultSignals(), testLogger())

	baseline := engine.Transform(weeklyObservations("alpha", start, valuesA))

	mixed := append(
		weeklyObservations("alpha", start, valuesA),
		weeklyObservations("beta", start, valuesB)...,
	)
	combined := engine.Transform(mixed)

	var alphaRows []contracts.SignalRow
	for _, row := range combined {
		if row.Keyword == "alpha" {
			alphaRows = append(alphaRows, row)
		}
	}

	assert.Equal(t, baseline, alphaRows, "beta's history must not leak into alpha")
}

func TestEngine_OrderingInvariance(t *testing.T) {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	obs := append(
		weeklyObservations("alpha", start, []float64{5, 10, 15, 20, 25, 30, 35, 40}),
		weeklyObservations("beta", start, []float64{40, 35, 30, 25, 20, 15, 10, 5})...,
	)

	engine := NewEngine(defaultSignals(), testLogger())
	expected := engine.Transform(obs)

	shuffled := make([]contracts.Observation, len(obs))
	copy(shuffled, obs)
	rng := rand.New(rand.NewSource(42))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	assert.Equal(t, expected, engine.Transform(shuffled),
		"shuffling input must not change the output")
}

func TestEngine_Determinism(t *testing.T) {
	start := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	obs := append(
		weeklyObservations("alpha", start, constantSeries(20, 30)),
		weeklyObservations("beta", start, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20})...,
	)

	engine := NewEngine(defaultSignals(), testLogger()).WithWorkers(8)
	first := engine.Transform(obs)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, engine.Transform(obs), "run %d differs", i)
	}
}

func TestRollingMean(t *testing.T) {
	vals := []*float64{
		contracts.Float(1), contracts.Float(2), contracts.Float(3), contracts.Float(4),
	}

	out := rollingMean(vals, 2, 1)
	require.Len(t, out, 4)
	assert.InDelta(t, 1.0, *out[0], 1e-9)
	assert.InDelta(t, 1.5, *out[1], 1e-9)
	assert.InDelta(t, 2.5, *out[2], 1e-9)
	assert.InDelta(t, 3.5, *out[3], 1e-9)
}

func TestRollingMean_MinPeriodsWithMissing(t *testing.T) {
	vals := []*float64{nil, nil, contracts.Float(6), contracts.Float(2)}

	out := rollingMean(vals, 3, 2)
	assert.Nil(t, out[0])
	assert.Nil(t, out[1])
	assert.Nil(t, out[2], "only one defined value in window")
	require.NotNil(t, out[3])
	assert.InDelta(t, 4.0, *out[3], 1e-9)
}

func TestRollingStd_Population(t *testing.T) {
	vals := []*float64{
		contracts.Float(2), contracts.Float(4), contracts.Float(4),
		contracts.Float(4), contracts.Float(5), contracts.Float(5),
		contracts.Float(7), contracts.Float(9),
	}

	out := rollingStd(vals, 8, 8)
	for i := 0; i < 7; i++ {
		assert.Nil(t, out[i])
	}
	require.NotNil(t, out[7])
	// Classic population std example: mean 5, variance 4.
	assert.InDelta(t, 2.0, *out[7], 1e-9)
}
