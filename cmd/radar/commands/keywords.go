package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/trends"
	"github.com/wonny/radar/pkg/httputil"
)

// keywordsCmd represents the keywords command
var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Discover candidate keywords",
	Long: `Scrapes candidate keywords from a trending-searches page.

Discovered terms are printed for review; add the useful ones to the
strategy file by hand.

Example:
  go run ./cmd/radar keywords --url https://example.com/trending
  go run ./cmd/radar keywords --url https://example.com/trending --selector "#terms li"`,
	RunE: runKeywords,
}

var (
	keywordsURL      string
	keywordsSelector string
)

func init() {
	rootCmd.AddCommand(keywordsCmd)

	keywordsCmd.Flags().StringVar(&keywordsURL, "url", "", "trending-searches page URL (required)")
	keywordsCmd.Flags().StringVar(&keywordsSelector, "selector", "", "CSS selector for keyword elements")
	keywordsCmd.MarkFlagRequired("url")
}

func runKeywords(cmd *cobra.Command, args []string) error {
	cfg, log, strategy, _, err := setup()
	if err != nil {
		return err
	}

	httpClient := httputil.NewWithTimeout(log, cfg.Trends.Timeout)
	client := trends.NewClient(cfg.Trends, httpClient, nil, log)

	keywords, err := client.Discover(context.Background(), keywordsURL, keywordsSelector)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}

	existing := make(map[string]bool)
	for _, term := range strategy.Terms() {
		existing[term] = true
	}

	fmt.Printf("Discovered %d keywords:\n", len(keywords))
	for _, keyword := range keywords {
		marker := ""
		if existing[keyword] {
			marker = " (already in strategy)"
		}
		fmt.Printf("  %s%s\n", keyword, marker)
	}

	return nil
}
