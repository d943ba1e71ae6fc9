// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// serverVersion is reported to MCP clients during initialization.
const serverVersion = "1.0.0"

// NewMCPServer initializes and configures the Burndown MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newMCPServer(baseCfg, mgr, time.Now)
}

func newMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, clock func() time.Time) *server.MCPServer {
	s := server.NewMCPServer(
		"Burndown Analytics Server",
		serverVersion,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		clock:   clock,
	}

	// --- 1. Tool: get_progress ---
	s.AddTool(mcp.NewTool("get_progress",
		mcp.WithDescription("Compute burndown progress, projections and delivery status per environment."),
		mcp.WithString("source", mcp.Description("Burndown document: file path or http(s) URL. Defaults to the configured source.")),
		mcp.WithString("env", mcp.Description("Comma separated environments to include (e.g. 'dev,sit'). Defaults to all.")),
		mcp.WithString("now", mcp.Description("Evaluation instant: YYYY-MM-DD, RFC3339, 'today' or relative like '3 days ago'.")),
		mcp.WithNumber("window_days", mcp.Description("Trailing regression window in days (1-365). Defaults to 14.")),
	), h.handleGetProgress)

	// --- 2. Tool: get_series ---
	s.AddTool(mcp.NewTool("get_series",
		mcp.WithDescription("Return the normalized burndown points of each environment."),
		mcp.WithString("source", mcp.Description("Burndown document: file path or http(s) URL.")),
		mcp.WithString("env", mcp.Description("Comma separated environments to include.")),
	), h.handleGetSeries)

	// --- 3. Tool: check_targets ---
	s.AddTool(mcp.NewTool("check_targets",
		mcp.WithDescription("Gate environments against delivery statuses that must not occur."),
		mcp.WithString("source", mcp.Description("Burndown document: file path or http(s) URL.")),
		mcp.WithString("fail_on", mcp.Description("Comma separated failing statuses (completed, completed_late, on_track, at_risk, missed). Defaults to 'missed'.")),
		mcp.WithString("now", mcp.Description("Evaluation instant.")),
		mcp.WithString("env", mcp.Description("Comma separated environments to include.")),
	), h.handleCheckTargets)

	return s
}

// StartMCPServer starts the Burndown MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
