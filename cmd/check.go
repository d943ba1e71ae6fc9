package cmd

import (
	"github.com/huangsam/burndown/core"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD gating.
var checkCmd = &cobra.Command{
	Use:   "check [source]",
	Short: "Fail when any environment is in a failing delivery status",
	Long: `Evaluate every selected environment and fail when its combined status
is one of the --fail-on statuses.

Designed for CI/CD integration: exits with status 2 when the gate fails and
status 1 on any other error.

Default failing status: missed

Examples:
  # Block a release when any environment missed its target
  burndown check burndown.json

  # Stricter gate for production readiness
  burndown check burndown.json --env uat,prod --fail-on missed,at_risk

  # Machine-readable verdict
  burndown check burndown.json --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		// core.ErrCheckFailed is mapped to exit status 2 by main
		return core.ExecuteBurndownCheck(rootCtx, cfg, cacheManager)
	},
}
