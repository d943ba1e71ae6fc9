package core

import (
	"time"

	"github.com/huangsam/burndown/core/algo"
	"github.com/huangsam/burndown/schema"
)

// Aggregate derives the progress of every environment as of now and returns
// the records in presentation order. It performs no I/O and never fails.
func Aggregate(series []schema.EnvironmentSeries, now time.Time, windowDays int) []schema.EnvironmentProgress {
	records := make([]schema.EnvironmentProgress, 0, len(series))
	for _, s := range series {
		records = append(records, BuildProgress(s, now, windowDays))
	}
	return algo.RankProgress(records)
}

// BuildProgress runs the full builder chain for one environment.
func BuildProgress(series schema.EnvironmentSeries, now time.Time, windowDays int) schema.EnvironmentProgress {
	return NewProgressBuilder(series, now, windowDays).
		SelectObserved().
		ComputeCurrent().
		ComputeProjections().
		ClassifyStatuses().
		ComputeDaysToTarget().
		Build()
}

// Analyze runs normalization and aggregation over a decoded document.
func Analyze(doc schema.RawDocument, envs []string, now time.Time, windowDays int) ([]schema.EnvironmentSeries, []schema.EnvironmentProgress) {
	series := algo.RankSeries(SelectEnvironments(Normalize(doc), envs))
	return series, Aggregate(series, now, windowDays)
}

// BuildCheckResult gates the environments against the statuses that must not occur.
func BuildCheckResult(progress []schema.EnvironmentProgress, failOn []schema.Status, now time.Time) *schema.CheckResult {
	fail := make(map[schema.Status]struct{}, len(failOn))
	for _, s := range failOn {
		fail[s] = struct{}{}
	}
	result := &schema.CheckResult{
		Passed:       true,
		Now:          now,
		FailOn:       failOn,
		Environments: make([]schema.CheckEnvironment, 0, len(progress)),
		Failed:       []string{},
	}
	for _, p := range progress {
		_, failed := fail[p.Status]
		result.Environments = append(result.Environments, schema.CheckEnvironment{
			Env:             p.Env,
			Status:          p.Status,
			SpaStatus:       p.SpaStatus,
			MsStatus:        p.MsStatus,
			OverallProgress: p.OverallProgress,
			DaysToTarget:    p.DaysToTarget,
			Failed:          failed,
		})
		if failed {
			result.Passed = false
			result.Failed = append(result.Failed, p.Env)
		}
	}
	return result
}
