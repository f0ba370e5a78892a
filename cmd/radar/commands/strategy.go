package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/radarconfig"
)

// strategyCmd represents the strategy command
var strategyCmd = &cobra.Command{
	Use:   "strategy",
	Short: "Validate and inspect the strategy file",
	Long: `Loads the strategy file, validates it and prints its effective
parameters and config hash.

Example:
  go run ./cmd/radar strategy --strategy config/retail_us.yaml`,
	RunE: runStrategy,
}

func init() {
	rootCmd.AddCommand(strategyCmd)
}

func runStrategy(cmd *cobra.Command, args []string) error {
	_, _, strategy, _, err := setup()
	if err != nil {
		return err
	}

	hash, err := radarconfig.Hash(strategy)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	fmt.Printf("Strategy:    %s (v%s)\n", strategy.Meta.StrategyID, strategy.Meta.Version)
	fmt.Printf("Geo:         %s\n", strategy.Meta.Geo)
	fmt.Printf("Timeframe:   %s\n", strategy.Meta.Timeframe)
	fmt.Printf("Config hash: %s\n", hash)

	fmt.Printf("\nSignals: ma_window=%d z_window=%d yoy_lag=%d hot_z=%.2f missing=%s\n",
		strategy.Signals.MAWindow, strategy.Signals.ZWindow, strategy.Signals.YoYLag,
		strategy.Signals.HotZ, strategy.Signals.MissingPolicy)
	fmt.Printf("Scoring: weights z=%.2f yoy=%.2f hot=%.2f, clamp z=[%.1f,%.1f] yoy=[%.1f,%.1f]\n",
		strategy.Scoring.Weights.Z, strategy.Scoring.Weights.YoY, strategy.Scoring.Weights.Hot,
		strategy.Scoring.Clamp.ZMin, strategy.Scoring.Clamp.ZMax,
		strategy.Scoring.Clamp.YoYMin, strategy.Scoring.Clamp.YoYMax)
	fmt.Printf("Selection: top_n=%d\n", strategy.Selection.TopN)

	terms := strategy.Terms()
	fmt.Printf("\nKeywords (%d):\n", len(terms))
	for _, group := range strategy.Keywords.Groups {
		fmt.Printf("  [%s]\n", group.Name)
		for _, term := range group.Terms {
			fmt.Printf("    %s\n", term)
		}
	}

	for _, warning := range radarconfig.Warn(strategy) {
		fmt.Printf("\nWarning: %s\n", warning)
	}

	return nil
}
