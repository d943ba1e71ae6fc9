package algo

import (
	"slices"

	"github.com/huangsam/burndown/schema"
)

// canonicalRank returns the position of env in the canonical order,
// or -1 when env is not a well-known environment.
func canonicalRank(env string) int {
	return slices.Index(schema.CanonicalEnvironments, env)
}

// OrderEnvironments returns the environment names in presentation order:
// canonical environments first (dev, sit, uat, nft), then any others in
// the order they were encountered. Duplicates keep their first position.
func OrderEnvironments(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	var known, others []string
	for _, n := range names {
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if canonicalRank(n) >= 0 {
			known = append(known, n)
		} else {
			others = append(others, n)
		}
	}
	slices.SortStableFunc(known, func(a, b string) int {
		return canonicalRank(a) - canonicalRank(b)
	})
	return append(known, others...)
}

// RankProgress sorts environment progress records into presentation order in place.
func RankProgress(records []schema.EnvironmentProgress) []schema.EnvironmentProgress {
	names := make([]string, len(records))
	for i, r := range records {
		names[i] = r.Env
	}
	pos := make(map[string]int, len(names))
	for i, n := range OrderEnvironments(names) {
		pos[n] = i
	}
	slices.SortStableFunc(records, func(a, b schema.EnvironmentProgress) int {
		return pos[a.Env] - pos[b.Env]
	})
	return records
}

// RankSeries sorts normalized environment series into presentation order in place.
func RankSeries(series []schema.EnvironmentSeries) []schema.EnvironmentSeries {
	names := make([]string, len(series))
	for i, s := range series {
		names[i] = s.Env
	}
	pos := make(map[string]int, len(names))
	for i, n := range OrderEnvironments(names) {
		pos[n] = i
	}
	slices.SortStableFunc(series, func(a, b schema.EnvironmentSeries) int {
		return pos[a.Env] - pos[b.Env]
	})
	return series
}
