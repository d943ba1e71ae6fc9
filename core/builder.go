package core

import (
	"math"
	"time"

	"github.com/huangsam/burndown/schema"
)

// trackState holds the intermediate values of one track while building progress.
type trackState struct {
	current   int
	total     int
	observed  bool
	trend     schema.TrendDirection
	status    schema.Status
	projected schema.Projection
}

// ProgressBuilder derives the EnvironmentProgress of one environment as of a given instant.
type ProgressBuilder struct {
	series     schema.EnvironmentSeries
	now        time.Time
	windowDays int
	result     *schema.EnvironmentProgress

	// Internal data collected during the build process
	observed []schema.BurndownPoint
	tracks   map[schema.ServiceType]*trackState
}

// NewProgressBuilder is the starting point for building environment progress.
func NewProgressBuilder(series schema.EnvironmentSeries, now time.Time, windowDays int) *ProgressBuilder {
	b := &ProgressBuilder{
		series:     series,
		now:        now,
		windowDays: windowDays,
		result:     &schema.EnvironmentProgress{Env: series.Env},
		tracks:     make(map[schema.ServiceType]*trackState, len(schema.AllServiceTypes)),
	}
	for _, st := range schema.AllServiceTypes {
		b.tracks[st] = &trackState{}
	}
	return b
}

// SelectObserved keeps the points dated at or before now. Later points are plan only.
func (b *ProgressBuilder) SelectObserved() *ProgressBuilder {
	cutoff := b.now.UnixMilli()
	b.observed = b.observed[:0]
	for _, p := range b.series.Points {
		if p.Timestamp <= cutoff {
			b.observed = append(b.observed, p)
		}
	}
	if n := len(b.observed); n > 0 {
		b.result.LastObserved = b.observed[n-1].Date
	}
	return b
}

// ComputeCurrent resolves the latest remaining count and scope of each track.
// A track without observations falls back to its total.
func (b *ProgressBuilder) ComputeCurrent() *ProgressBuilder {
	for st, ts := range b.tracks {
		ts.total = b.series.TotalFor(st)
		if n := len(b.observed); n > 0 {
			if total := b.observed[n-1].Total(st); total != nil {
				ts.total = *total
			}
		}
		ts.current = ts.total
		ts.observed = false
		for i := len(b.observed) - 1; i >= 0; i-- {
			if v := b.observed[i].Actual(st); v != nil {
				ts.current = *v
				ts.observed = true
				break
			}
		}
	}

	spa, ms := b.tracks[schema.SpaType], b.tracks[schema.MsType]
	b.result.CurrentSpa, b.result.TotalSpa = spa.current, spa.total
	b.result.CurrentMs, b.result.TotalMs = ms.current, ms.total
	b.result.SpaProgress = progressPercent(spa.total, spa.current)
	b.result.MsProgress = progressPercent(ms.total, ms.current)
	b.result.OverallProgress = progressPercent(spa.total+ms.total, spa.current+ms.current)
	return b
}

// ComputeProjections runs the regression per track and over the combined backlog.
func (b *ProgressBuilder) ComputeProjections() *ProgressBuilder {
	for st, ts := range b.tracks {
		ts.projected = Project(b.observed, st, b.windowDays)
		ts.trend = ts.projected.Trend
	}
	spa, ms := b.tracks[schema.SpaType].projected, b.tracks[schema.MsType].projected
	combined := ProjectCombined(b.observed, b.windowDays)

	b.result.SpaProjection = &spa
	b.result.MsProjection = &ms
	b.result.Combined = &combined
	b.result.BurnRate = combined.BurnRate
	b.result.Confidence = combined.Confidence
	b.result.ProjectedCompletion = combined.ProjectedCompletion
	return b
}

// ClassifyStatuses assigns per-track statuses and the combined environment status.
// A track with scope but no observations is unknown; a track without scope has nothing left.
func (b *ProgressBuilder) ClassifyStatuses() *ProgressBuilder {
	for st, ts := range b.tracks {
		remaining := UnknownRemaining
		if ts.observed || ts.total == 0 {
			remaining = ts.current
		}
		ts.status = ClassifyStatus(remaining, b.series.Targets.For(st), ts.trend, b.now)
	}
	b.result.SpaStatus = b.tracks[schema.SpaType].status
	b.result.MsStatus = b.tracks[schema.MsType].status
	b.result.Status = CombineStatus(b.result.SpaStatus, b.result.MsStatus)
	return b
}

// ComputeDaysToTarget counts whole days until the nearer valid target, floored at zero.
func (b *ProgressBuilder) ComputeDaysToTarget() *ProgressBuilder {
	b.result.TargetSpa = schema.FormatDate(b.series.Targets.Spa)
	b.result.TargetMs = schema.FormatDate(b.series.Targets.Microservice)
	b.result.DaysToTarget = DaysToTarget(b.series.Targets, b.now)
	return b
}

// Build returns the assembled progress record.
func (b *ProgressBuilder) Build() schema.EnvironmentProgress {
	return *b.result
}

// DaysToTarget returns ceil((earliest target - now) / day) floored at zero,
// or nil when the environment has no valid target.
func DaysToTarget(targets schema.Targets, now time.Time) *int {
	earliest, ok := targets.Earliest()
	if !ok {
		return nil
	}
	diff := earliest.UnixMilli() - now.UnixMilli()
	if diff <= 0 {
		return schema.IntPtr(0)
	}
	return schema.IntPtr(int((diff + schema.DayMs - 1) / schema.DayMs))
}

// progressPercent is round(100 * (total - current) / total) limited to [0, 100], 0 when total is 0.
func progressPercent(total, current int) int {
	if total <= 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(total-current) / float64(total)))
	return max(0, min(100, pct))
}
