package report

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.NewWriter(io.Discard, "error")
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteSignals_MissingBecomesEmptyCell(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "signals.csv")

	rows := []contracts.SignalRow{
		{
			Date:    time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
			Keyword: "sneakers",
			Trend:   57,
			TrendMA: contracts.Float(54.25),
			Month:   "2024-06",
		},
	}

	require.NoError(t, NewWriter(dir, testLogger()).WriteSignals(path, rows))

	records := readCSV(t, path)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"date", "keyword", "trend", "trend_ma", "yoy_idx", "z_score", "month"}, records[0])
	assert.Equal(t, []string{"2024-06-02", "sneakers", "57", "54.25", "", "", "2024-06"}, records[1])
}

func TestWriteScored(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scores.csv")

	rows := []contracts.ScoredAggregate{
		{
			MonthlyAggregate: contracts.MonthlyAggregate{
				Keyword:  "sneakers",
				Month:    "2024-06",
				AvgTrend: contracts.Float(60),
				Days:     4,
				HotDays:  1,
				HotShare: 0.25,
			},
			ZScaled:  contracts.Float(0.5),
			ActScore: nil,
		},
	}

	require.NoError(t, NewWriter(dir, testLogger()).WriteScored(path, rows))

	records := readCSV(t, path)
	require.Len(t, records, 2)

	row := records[1]
	assert.Equal(t, "sneakers", row[0])
	assert.Equal(t, "4", row[5])
	assert.Equal(t, "0.25", row[7])
	assert.Equal(t, "", row[10], "missing act_score must be empty, not 0")
}

func TestWritePivot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pivot.csv")

	pivot := &contracts.PivotTable{
		Keywords: []string{"laptops", "sneakers"},
		Months:   []string{"2024-05", "2024-06"},
		Scores: [][]float64{
			{0, 0.75},
			{0.3, 0},
		},
	}

	require.NoError(t, NewWriter(dir, testLogger()).WritePivot(path, pivot))

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"keyword", "2024-05", "2024-06"}, records[0])
	assert.Equal(t, []string{"laptops", "0", "0.75"}, records[1])
	assert.Equal(t, []string{"sneakers", "0.3", "0"}, records[2])
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	result := &radar.Result{
		RunID: "run-1",
		Signals: []contracts.SignalRow{
			{Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), Keyword: "sneakers", Trend: 10, Month: "2024-06"},
		},
		Scored: []contracts.ScoredAggregate{
			{MonthlyAggregate: contracts.MonthlyAggregate{Keyword: "sneakers", Month: "2024-06", Days: 1}},
		},
		TopMonths: []contracts.TopMonthEntry{
			{Keyword: "sneakers", Month: "2024-06"},
		},
		Pivot: &contracts.PivotTable{
			Keywords: []string{"sneakers"},
			Months:   []string{"2024-06"},
			Scores:   [][]float64{{0}},
		},
	}

	paths, err := NewWriter(dir, testLogger()).WriteAll(result)
	require.NoError(t, err)
	require.Len(t, paths, 4)

	for _, path := range paths {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}
