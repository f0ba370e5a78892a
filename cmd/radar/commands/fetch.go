package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/archive"
	"github.com/wonny/radar/internal/trends"
	"github.com/wonny/radar/pkg/database"
	"github.com/wonny/radar/pkg/httputil"
	"github.com/wonny/radar/pkg/redis"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch observations from the trends source",
	Long: `Fetches interest-over-time observations for every keyword in the
strategy file and archives them in the database.

Example:
  go run ./cmd/radar fetch
  go run ./cmd/radar fetch --no-archive`,
	RunE: runFetch,
}

var fetchNoArchive bool

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchNoArchive, "no-archive", false, "skip database archiving, print a summary only")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, log, strategy, _, err := setup()
	if err != nil {
		return err
	}

	ctx := context.Background()

	redisClient, err := redis.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	cache := redis.NewCache(redisClient, "radar")

	httpClient := httputil.NewWithTimeout(log, cfg.Trends.Timeout)
	client := trends.NewClient(cfg.Trends, httpClient, cache, log)

	terms := strategy.Terms()
	observations, err := client.FetchInterest(ctx, terms, strategy.Meta.Geo, strategy.Meta.Timeframe)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	fmt.Printf("Fetched %d observations for %d keywords\n", len(observations), len(terms))

	if fetchNoArchive {
		return nil
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := archive.NewObservationRepository(db.Pool)
	if err := repo.SaveBatch(ctx, strategy.Meta.Geo, strategy.Meta.Timeframe, observations); err != nil {
		return fmt.Errorf("archive: %w", err)
	}

	counts, err := repo.CountByKeyword(ctx, strategy.Meta.Geo, strategy.Meta.Timeframe)
	if err != nil {
		return fmt.Errorf("coverage check: %w", err)
	}

	fmt.Println("Archive coverage:")
	for _, term := range terms {
		fmt.Printf("  %-20s %d weeks\n", term, counts[term])
	}

	return nil
}
