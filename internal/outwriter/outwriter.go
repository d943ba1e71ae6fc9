// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
	"golang.org/x/term"
)

// LogAnalysisHeader prints a concise, 2-line header before a text report.
func LogAnalysisHeader(cfg *contract.Config) {
	source := cfg.Source
	if source == "-" {
		source = "stdin"
	}

	// Line 1: The source and the environment filter
	envs := "all"
	if len(cfg.Envs) > 0 {
		envs = strings.Join(cfg.Envs, ",")
	}
	fmt.Printf("🔎 Source: %s (Envs: %s)\n", source, envs)

	// Line 2: The evaluation instant and regression window
	fmt.Printf("📅 As of: %s (window: %d days)\n", cfg.Now.Format(contract.DateTimeFormat), cfg.WindowDays)
}

// getProgressBarWidth calculates the width of the progress bar column
// based on terminal width and table configuration.
func getProgressBarWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Rank + Env + Status + SPA + MS + Burn + Confidence + Projected + Target + Days
	baseWidth := 110
	if cfg.Detail {
		baseWidth += 60 // Per-track status, projection and trend columns
	}

	available := termWidth - baseWidth
	if available < 10 {
		return 10
	}
	if available > 30 {
		return 30
	}
	return available
}

// statusColor returns the console color of a status.
func statusColor(s schema.Status) *color.Color {
	switch s {
	case schema.MissedStatus:
		return contract.MissedColor
	case schema.OnTrackStatus:
		return contract.OnTrackColor
	case schema.CompletedStatus:
		return contract.CompletedColor
	case schema.CompletedLateStatus:
		return contract.LateColor
	default:
		return contract.AtRiskColor
	}
}

// statusLabel returns the colored label when colors are enabled.
func statusLabel(s schema.Status, useColors bool) string {
	if useColors {
		return contract.GetColorLabel(s)
	}
	return schema.GetPlainLabel(s)
}

// renderProgressBar draws pct as a fixed width bar followed by the percentage.
func renderProgressBar(pct, width int, s schema.Status, useColors bool) string {
	pct = max(0, min(100, pct))
	filled := (pct*width + 50) / 100
	done := strings.Repeat("█", filled)
	rest := strings.Repeat("░", width-filled)
	if useColors {
		done = statusColor(s).Sprint(done)
	}
	return fmt.Sprintf("%s%s %3d%%", done, rest, pct)
}

// formatTargets collapses equal per-track targets into one date.
func formatTargets(spa, ms string) string {
	switch {
	case spa == "" && ms == "":
		return "-"
	case spa == ms:
		return spa
	case spa == "":
		return "ms " + ms
	case ms == "":
		return "spa " + spa
	default:
		return fmt.Sprintf("spa %s / ms %s", spa, ms)
	}
}

// formatDays renders an optional day count.
func formatDays(days *int) string {
	if days == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *days)
}

// formatOptionalCount renders an optional count from a normalized point.
func formatOptionalCount(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// orDash replaces an empty string with a dash.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
