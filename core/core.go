// Package core has core logic for normalizing, projecting and classifying burndown data.
package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/internal/outwriter"
	"github.com/huangsam/burndown/schema"
)

// ErrCheckFailed is returned by the check command when an environment is in a failing status.
var ErrCheckFailed = errors.New("burndown check failed")

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteBurndownProgress runs the analysis and prints one progress record per environment.
// It serves as the main entry point for the 'progress' command.
func ExecuteBurndownProgress(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	progress, duration, err := GetProgressResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteProgressResults(progress, cfg, duration)
}

// ExecuteBurndownSeries prints the normalized series of every environment.
func ExecuteBurndownSeries(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	series, duration, err := GetSeriesResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteSeriesResults(series, cfg, duration)
}

// ExecuteBurndownCheck runs the check command for CI/CD gating.
// It returns ErrCheckFailed when any environment's status is in the fail set.
func ExecuteBurndownCheck(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	result, duration, err := GetCheckResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.WriteCheckResult(result, cfg, duration); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %s", ErrCheckFailed, strings.Join(result.Failed, ", "))
	}
	return nil
}

// GetProgressResults returns the ordered progress records without printing them.
func GetProgressResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.EnvironmentProgress, time.Duration, error) {
	start := time.Now()
	output, err := runBurndownAnalysis(ctx, cfg, newSourceClient(cfg), mgr)
	if err != nil {
		return nil, 0, err
	}
	return output.Progress, time.Since(start), nil
}

// GetSeriesResults returns the ordered normalized series without printing them.
func GetSeriesResults(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) ([]schema.EnvironmentSeries, time.Duration, error) {
	start := time.Now()
	output, err := runBurndownAnalysis(ctx, cfg, newSourceClient(cfg), mgr)
	if err != nil {
		return nil, 0, err
	}
	return output.Series, time.Since(start), nil
}

// GetCheckResult gates the analyzed environments against cfg.FailOn.
func GetCheckResult(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (*schema.CheckResult, time.Duration, error) {
	start := time.Now()
	output, err := runBurndownAnalysis(ctx, cfg, newSourceClient(cfg), mgr)
	if err != nil {
		return nil, 0, err
	}
	return BuildCheckResult(output.Progress, cfg.FailOn, cfg.Now), time.Since(start), nil
}
