package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/radar/internal/radarconfig"
	"github.com/wonny/radar/pkg/config"
	"github.com/wonny/radar/pkg/logger"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "radar",
	Short: "Retail trend activation radar",
	Long: `Radar CLI

Turns weekly search-interest series into monthly activation scores:
which keyword deserves marketing spend in which calendar month.

Usage:
  go run ./cmd/radar [command]

Examples:
  go run ./cmd/radar run --input observations.csv --out ./out
  go run ./cmd/radar fetch
  go run ./cmd/radar serve
  go run ./cmd/radar schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML file (default from RADAR_STRATEGY_FILE, else built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setup loads app config, the logger and the strategy file. Shared by
// every subcommand.
func setup() (*config.Config, *logger.Logger, *radarconfig.Config, []byte, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}

	if path == "" {
		strategy := radarconfig.Default()
		return cfg, log, strategy, nil, nil
	}

	strategy, yamlData, err := radarconfig.Load(path)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load strategy: %w", err)
	}

	for _, warning := range radarconfig.Warn(strategy) {
		log.WithField("warning", warning).Warn("Strategy warning")
	}

	return cfg, log, strategy, yamlData, nil
}
