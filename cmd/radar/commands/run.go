package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/archive"
	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/radar"
	"github.com/wonny/radar/internal/report"
	"github.com/wonny/radar/pkg/database"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the radar pipeline offline",
	Long: `Runs the full radar pipeline over an existing observation set and
writes the result tables as CSV.

Observations come either from a CSV file (--input) or from the archive
database (--from-db). The pipeline itself never touches the network.

Example:
  go run ./cmd/radar run --input observations.csv --out ./out
  go run ./cmd/radar run --from-db --from 2021-01-01 --to 2026-01-01`,
	RunE: runPipeline,
}

var (
	runInput  string
	runFromDB bool
	runFrom   string
	runTo     string
	runOut    string
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runInput, "input", "", "observation CSV file (date,keyword,trend)")
	runCmd.Flags().BoolVar(&runFromDB, "from-db", false, "read observations from the archive database")
	runCmd.Flags().StringVar(&runFrom, "from", "", "archive range start (YYYY-MM-DD, with --from-db)")
	runCmd.Flags().StringVar(&runTo, "to", "", "archive range end (YYYY-MM-DD, with --from-db)")
	runCmd.Flags().StringVar(&runOut, "out", "./out", "output directory for CSV tables")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, log, strategy, _, err := setup()
	if err != nil {
		return err
	}

	ctx := context.Background()

	var observations []contracts.Observation
	switch {
	case runInput != "":
		observations, err = report.ReadObservations(runInput)
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

	case runFromDB:
		from, to, err := parseRange(runFrom, runTo)
		if err != nil {
			return err
		}

		db, err := database.New(cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()

		repo := archive.NewObservationRepository(db.Pool)
		observations, err = repo.GetByKeywordsAndDateRange(ctx, strategy.Terms(),
			strategy.Meta.Geo, strategy.Meta.Timeframe, from, to)
		if err != nil {
			return fmt.Errorf("load archive: %w", err)
		}

	default:
		return fmt.Errorf("either --input or --from-db is required")
	}

	pipeline := radar.NewPipeline(strategy, log)
	result, err := pipeline.Run(ctx, observations)
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	writer := report.NewWriter(runOut, log)
	paths, err := writer.WriteAll(result)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	fmt.Printf("Run %s completed: %d keywords, %d months scored\n",
		result.RunID, len(result.Pivot.Keywords), len(result.Scored))
	for _, path := range paths {
		fmt.Printf("  %s\n", path)
	}

	return nil
}

// parseRange parses --from/--to, defaulting to the last five years.
func parseRange(fromStr, toStr string) (time.Time, time.Time, error) {
	to := time.Now().UTC()
	from := to.AddDate(-5, 0, 0)

	var err error
	if fromStr != "" {
		if from, err = time.Parse("2006-01-02", fromStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad --from: %w", err)
		}
	}
	if toStr != "" {
		if to, err = time.Parse("2006-01-02", toStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad --to: %w", err)
		}
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--from must be before --to")
	}

	return from, to, nil
}
