package cmd

import (
	"github.com/huangsam/burndown/core"
	"github.com/huangsam/burndown/internal/contract"
	"github.com/spf13/cobra"
)

// progressCmd computes the delivery progress of every environment.
var progressCmd = &cobra.Command{
	Use:   "progress [source]",
	Short: "Show progress, burn rate and projected completion per environment.",
	Long: `Fetch a burndown document, normalize its series and derive per-environment progress.

For every environment, burndown reports:
- Remaining and total items for SPA and microservice tracks
- Overall progress percentage
- Burn rate (items resolved per day) from a trailing linear regression
- Confidence of the projection and the projected completion date
- Delivery status against the target date and days left

Environments are listed in canonical order (dev, sit, uat, nft) followed by
any others in the order the document declares them.

Examples:
  # Analyze a local document
  burndown progress burndown.json

  # Evaluate as of a past date with a longer regression window
  burndown progress burndown.json --now 2024-05-01 --window-days 21

  # Only SIT and UAT, with per-track projection columns
  burndown progress https://example.com/burndown.json --env sit,uat --detail

  # Export for spreadsheets
  burndown progress burndown.json --output csv --output-file progress.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBurndownProgress(rootCtx, cfg, cacheManager); err != nil {
			contract.LogFatal("Cannot run progress analysis", err)
		}
	},
}
