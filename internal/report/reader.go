package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/wonny/radar/internal/contracts"
)

// ReadObservations reads raw observations from a CSV file with a
// date,keyword,trend header (any column order). An empty or
// unparseable trend cell becomes a missing value, not a zero.
func ReadObservations(path string) ([]contracts.Observation, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("input has no header row")
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[name] = i
	}
	for _, required := range []string{"date", "keyword", "trend"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("input missing required column %q", required)
		}
	}

	observations := make([]contracts.Observation, 0, len(records)-1)
	for line, record := range records[1:] {
		date, err := time.Parse("2006-01-02", record[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: bad date %q: %w", line+2, record[cols["date"]], err)
		}

		obs := contracts.Observation{
			Date:    date,
			Keyword: record[cols["keyword"]],
		}

		if cell := record[cols["trend"]]; cell != "" {
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				obs.Trend = &v
			}
		}

		observations = append(observations, obs)
	}

	return observations, nil
}
