package core

import (
	"math"
	"time"

	"github.com/huangsam/burndown/core/algo"
	"github.com/huangsam/burndown/schema"
)

// observation is one (timestamp, remaining) pair of a backlog.
type observation struct {
	ts        int64
	remaining int
}

// actualObservations extracts the observed remaining counts of one track.
func actualObservations(points []schema.BurndownPoint, st schema.ServiceType) []observation {
	obs := make([]observation, 0, len(points))
	for _, p := range points {
		if v := p.Actual(st); v != nil {
			obs = append(obs, observation{ts: p.Timestamp, remaining: *v})
		}
	}
	return obs
}

// combinedObservations extracts the summed backlog over points where both tracks
// were observed. When only one track has any observations, that track alone is used.
func combinedObservations(points []schema.BurndownPoint) []observation {
	spa := actualObservations(points, schema.SpaType)
	ms := actualObservations(points, schema.MsType)
	switch {
	case len(spa) == 0:
		return ms
	case len(ms) == 0:
		return spa
	}
	obs := make([]observation, 0, len(points))
	for _, p := range points {
		if p.SpaActual != nil && p.MsActual != nil {
			obs = append(obs, observation{ts: p.Timestamp, remaining: *p.SpaActual + *p.MsActual})
		}
	}
	return obs
}

// Project computes burn rate, confidence and projected completion for one track.
func Project(points []schema.BurndownPoint, st schema.ServiceType, windowDays int) schema.Projection {
	return projectObservations(actualObservations(points, st), windowDays)
}

// ProjectCombined computes the projection of the summed SPA and microservice backlog.
func ProjectCombined(points []schema.BurndownPoint, windowDays int) schema.Projection {
	return projectObservations(combinedObservations(points), windowDays)
}

// trailingWindow returns the observations no older than windowDays before the last one.
func trailingWindow(obs []observation, windowDays int) []observation {
	if len(obs) == 0 {
		return nil
	}
	if windowDays <= 0 {
		windowDays = schema.DefaultWindowDays
	}
	cutoff := obs[len(obs)-1].ts - int64(windowDays)*schema.DayMs
	start := len(obs) - 1
	for start > 0 && obs[start-1].ts >= cutoff {
		start--
	}
	return obs[start:]
}

func projectObservations(obs []observation, windowDays int) schema.Projection {
	remaining := make([]int, len(obs))
	for i, o := range obs {
		remaining[i] = o.remaining
	}
	proj := schema.Projection{
		Band:  schema.ConfidenceLow,
		Trend: SimpleTrend(remaining),
	}

	window := trailingWindow(obs, windowDays)
	proj.Samples = len(window)
	if len(window) < 2 {
		return proj
	}

	// x is measured in days relative to the last observation, so the slope is items per day.
	last := window[len(window)-1].ts
	xs := make([]float64, len(window))
	ys := make([]float64, len(window))
	for i, o := range window {
		xs[i] = float64(o.ts-last) / float64(schema.DayMs)
		ys[i] = float64(o.remaining)
	}
	fit, ok := algo.LinearRegression(xs, ys)
	if !ok {
		return proj
	}

	proj.BurnRate = 0 - fit.Slope // avoids negative zero
	proj.Confidence = confidenceScore(fit.R2, len(window))
	proj.Band = schema.GetConfidenceBand(proj.Confidence)

	if proj.BurnRate > 0 {
		daysAhead := math.Max(0, fit.At(0)/proj.BurnRate)
		ts := last + int64(math.Round(daysAhead*float64(schema.DayMs)))
		proj.ProjectedTimestamp = ts
		proj.ProjectedCompletion = schema.FormatDate(time.UnixMilli(ts))
	}
	return proj
}

// confidenceScore weighs fit quality by sample density. Sparse windows are capped low.
func confidenceScore(r2 float64, samples int) float64 {
	density := math.Min(1, float64(samples)/schema.FullDensitySamples)
	score := algo.Clamp01(r2) * (0.5 + 0.5*density)
	if samples < schema.LowSampleThreshold {
		score = math.Min(score, schema.LowSampleConfidenceCap)
	}
	return algo.Clamp01(score)
}

// SimpleTrend compares the first and last of the most recent observations.
func SimpleTrend(remaining []int) schema.TrendDirection {
	if len(remaining) > schema.TrendLookback {
		remaining = remaining[len(remaining)-schema.TrendLookback:]
	}
	if len(remaining) < 2 {
		return schema.TrendStable
	}
	first, last := remaining[0], remaining[len(remaining)-1]
	switch {
	case last < first:
		return schema.TrendImproving
	case last > first:
		return schema.TrendDeclining
	default:
		return schema.TrendStable
	}
}
