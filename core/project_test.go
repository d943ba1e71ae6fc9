package core

import (
	"testing"
	"time"

	"github.com/huangsam/burndown/schema"
	"github.com/stretchr/testify/assert"
)

// dailySeries builds SPA actual points on consecutive days starting at start.
func dailySeries(start time.Time, values ...int) []schema.BurndownPoint {
	points := make([]schema.BurndownPoint, len(values))
	for i, v := range values {
		day := start.AddDate(0, 0, i)
		points[i] = schema.BurndownPoint{
			Date:      schema.FormatDate(day),
			Timestamp: day.UnixMilli(),
			SpaActual: schema.IntPtr(v),
		}
	}
	return points
}

func pointOn(date string, spa, ms *int) schema.BurndownPoint {
	day, _ := schema.ParseDate(date)
	return schema.BurndownPoint{Date: date, Timestamp: day.UnixMilli(), SpaActual: spa, MsActual: ms}
}

var projStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestProjectSteadyBurn(t *testing.T) {
	points := dailySeries(projStart, 100, 95, 90, 85, 80, 75, 70, 65)

	got := Project(points, schema.SpaType, schema.DefaultWindowDays)
	assert.InDelta(t, 5.0, got.BurnRate, 1e-9)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9)
	assert.Equal(t, schema.ConfidenceHigh, got.Band)
	assert.Equal(t, 8, got.Samples)
	assert.Equal(t, "2024-03-21", got.ProjectedCompletion)
	assert.True(t, got.HasCompletion())
	assert.Equal(t, schema.TrendImproving, got.Trend)
}

func TestProjectTrailingWindow(t *testing.T) {
	points := []schema.BurndownPoint{
		pointOn("2024-01-01", schema.IntPtr(500), nil),
		pointOn("2024-01-21", schema.IntPtr(30), nil),
		pointOn("2024-01-22", schema.IntPtr(20), nil),
		pointOn("2024-01-23", schema.IntPtr(10), nil),
	}

	got := Project(points, schema.SpaType, schema.DefaultWindowDays)
	assert.Equal(t, 3, got.Samples, "the January 1st observation is outside the window")
	assert.InDelta(t, 10.0, got.BurnRate, 1e-9)
	assert.InDelta(t, schema.LowSampleConfidenceCap, got.Confidence, 1e-9, "sparse window is capped")
	assert.Equal(t, schema.ConfidenceLow, got.Band)
	assert.Equal(t, "2024-01-24", got.ProjectedCompletion)

	wide := Project(points, schema.SpaType, 30)
	assert.Equal(t, 4, wide.Samples)
}

func TestProjectWindowBoundaryIsInclusive(t *testing.T) {
	points := []schema.BurndownPoint{
		pointOn("2024-01-01", schema.IntPtr(20), nil),
		pointOn("2024-01-15", schema.IntPtr(10), nil),
	}
	got := Project(points, schema.SpaType, 14)
	assert.Equal(t, 2, got.Samples)
}

func TestProjectNoProjection(t *testing.T) {
	tests := []struct {
		name   string
		points []schema.BurndownPoint
		trend  schema.TrendDirection
	}{
		{"no points", nil, schema.TrendStable},
		{"single observation", dailySeries(projStart, 10), schema.TrendStable},
		{"flat backlog", dailySeries(projStart, 10, 10, 10, 10), schema.TrendStable},
		{"growing backlog", dailySeries(projStart, 10, 12, 14, 16), schema.TrendDeclining},
		{"planned only", []schema.BurndownPoint{{Date: "2024-03-01", SpaPlanned: schema.IntPtr(5)}}, schema.TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Project(tt.points, schema.SpaType, schema.DefaultWindowDays)
			assert.False(t, got.HasCompletion())
			assert.LessOrEqual(t, got.BurnRate, 0.0)
			assert.Equal(t, tt.trend, got.Trend)
			if len(tt.points) < 2 {
				assert.Equal(t, 0.0, got.Confidence)
			}
		})
	}
}

func TestProjectFlatBacklogHasZeroConfidence(t *testing.T) {
	got := Project(dailySeries(projStart, 7, 7, 7, 7, 7), schema.SpaType, schema.DefaultWindowDays)
	assert.Equal(t, 0.0, got.BurnRate)
	assert.Equal(t, 0.0, got.Confidence)
	assert.Equal(t, schema.ConfidenceLow, got.Band)
}

func TestProjectAlreadyAtZero(t *testing.T) {
	got := Project(dailySeries(projStart, 4, 2, 0), schema.SpaType, schema.DefaultWindowDays)
	assert.Equal(t, "2024-03-03", got.ProjectedCompletion, "never earlier than the last observation")
}

func TestProjectCombined(t *testing.T) {
	points := []schema.BurndownPoint{
		pointOn("2024-03-01", schema.IntPtr(20), schema.IntPtr(10)),
		pointOn("2024-03-02", schema.IntPtr(18), nil),
		pointOn("2024-03-03", schema.IntPtr(16), schema.IntPtr(8)),
		pointOn("2024-03-04", schema.IntPtr(14), schema.IntPtr(7)),
	}
	got := ProjectCombined(points, schema.DefaultWindowDays)
	assert.Equal(t, 3, got.Samples, "only points with both tracks observed")
	assert.Greater(t, got.BurnRate, 0.0)

	spaOnly := dailySeries(projStart, 30, 20, 10)
	assert.Equal(t, Project(spaOnly, schema.SpaType, 14), ProjectCombined(spaOnly, 14))
}

func TestConfidenceScore(t *testing.T) {
	tests := []struct {
		name    string
		r2      float64
		samples int
		want    float64
	}{
		{"perfect dense", 1, 7, 1},
		{"perfect denser", 1, 20, 1},
		{"perfect medium density", 1, 5, 0.5 + 0.5*5.0/7.0},
		{"sparse capped", 1, 3, 0.4},
		{"sparse below cap", 0.5, 2, 0.5 * (0.5 + 0.5*2.0/7.0)},
		{"negative r2", -0.2, 10, 0},
		{"half fit dense", 0.5, 7, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, confidenceScore(tt.r2, tt.samples), 1e-9)
		})
	}
}

func TestSimpleTrend(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   schema.TrendDirection
	}{
		{"empty", nil, schema.TrendStable},
		{"single", []int{4}, schema.TrendStable},
		{"decreasing", []int{10, 8}, schema.TrendImproving},
		{"increasing", []int{8, 10}, schema.TrendDeclining},
		{"equal ends", []int{5, 3, 7, 5}, schema.TrendStable},
		{"only last four count", []int{100, 1, 2, 3, 4}, schema.TrendDeclining},
		{"old spike ignored", []int{1, 50, 40, 30, 20}, schema.TrendImproving},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SimpleTrend(tt.values))
		})
	}
}
