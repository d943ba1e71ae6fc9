package cmd

import (
	"github.com/huangsam/burndown/core"
	"github.com/huangsam/burndown/internal/contract"
	"github.com/spf13/cobra"
)

// seriesCmd prints the normalized point set of every environment.
var seriesCmd = &cobra.Command{
	Use:   "series [source]",
	Short: "Show the normalized burndown points per environment.",
	Long: `Normalize a burndown document into one sorted point set per environment.

Each point carries the actual and planned remaining counts of both tracks,
their totals and the combined values. Duplicate dates are merged and totals
are backfilled from the inferred scope.

Examples:
  # Print the normalized series
  burndown series burndown.json

  # Read from stdin and emit JSON
  cat burndown.json | burndown series - --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBurndownSeries(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run series analysis", err)
		}
	},
}
