package cmd

import (
	"github.com/huangsam/burndown/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [source]",
	Short: "Start the Burndown MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents compute burndown progress,
series and target checks via standard tools. The optional source becomes the
default for tools that do not pass one.`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed per tool call so stdio stays reserved for the protocol.
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
