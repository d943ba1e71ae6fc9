package core

import (
	"testing"
	"time"

	"github.com/huangsam/burndown/schema"
	"github.com/stretchr/testify/assert"
)

var (
	target   = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	noTarget = time.Time{}
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		remaining int
		target    time.Time
		trend     schema.TrendDirection
		now       time.Time
		want      schema.Status
	}{
		{"done exactly at target", 0, target, schema.TrendStable, target, schema.CompletedStatus},
		{"done one millisecond late", 0, target, schema.TrendStable, target.Add(time.Millisecond), schema.CompletedLateStatus},
		{"done early", 0, target, schema.TrendDeclining, target.AddDate(0, 0, -10), schema.CompletedStatus},
		{"done without target", 0, noTarget, schema.TrendStable, target, schema.CompletedStatus},
		{"missed", 3, target, schema.TrendImproving, target.AddDate(0, 0, 1), schema.MissedStatus},
		{"not missed at target instant", 3, target, schema.TrendImproving, target, schema.OnTrackStatus},
		{"sub millisecond is not late", 3, target, schema.TrendStable, target.Add(500 * time.Microsecond), schema.AtRiskStatus},
		{"improving before target", 10, target, schema.TrendImproving, target.AddDate(0, -1, 0), schema.OnTrackStatus},
		{"stable before target", 10, target, schema.TrendStable, target.AddDate(0, -1, 0), schema.AtRiskStatus},
		{"declining before target", 10, target, schema.TrendDeclining, target.AddDate(0, -1, 0), schema.AtRiskStatus},
		{"no target never missed", 10, noTarget, schema.TrendStable, target.AddDate(5, 0, 0), schema.AtRiskStatus},
		{"no target improving", 10, noTarget, schema.TrendImproving, target, schema.OnTrackStatus},
		{"unknown remaining", UnknownRemaining, target, schema.TrendImproving, target.AddDate(0, 0, -5), schema.AtRiskStatus},
		{"unknown remaining past target", UnknownRemaining, target, schema.TrendStable, target.AddDate(0, 0, 5), schema.AtRiskStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyStatus(tt.remaining, tt.target, tt.trend, tt.now))
		})
	}
}

func TestCombineStatus(t *testing.T) {
	tests := []struct {
		spa, ms schema.Status
		want    schema.Status
	}{
		{schema.CompletedStatus, schema.CompletedStatus, schema.CompletedStatus},
		{schema.CompletedLateStatus, schema.CompletedStatus, schema.CompletedLateStatus},
		{schema.CompletedStatus, schema.CompletedLateStatus, schema.CompletedLateStatus},
		{schema.CompletedLateStatus, schema.CompletedLateStatus, schema.CompletedLateStatus},
		{schema.MissedStatus, schema.OnTrackStatus, schema.MissedStatus},
		{schema.CompletedStatus, schema.MissedStatus, schema.MissedStatus},
		{schema.AtRiskStatus, schema.MissedStatus, schema.MissedStatus},
		{schema.OnTrackStatus, schema.OnTrackStatus, schema.OnTrackStatus},
		{schema.OnTrackStatus, schema.CompletedStatus, schema.AtRiskStatus},
		{schema.OnTrackStatus, schema.AtRiskStatus, schema.AtRiskStatus},
		{schema.CompletedLateStatus, schema.AtRiskStatus, schema.AtRiskStatus},
		{schema.AtRiskStatus, schema.AtRiskStatus, schema.AtRiskStatus},
	}
	for _, tt := range tests {
		t.Run(string(tt.spa)+"+"+string(tt.ms), func(t *testing.T) {
			assert.Equal(t, tt.want, CombineStatus(tt.spa, tt.ms))
		})
	}
}

func TestCombineStatusIsSymmetric(t *testing.T) {
	for _, a := range schema.AllStatuses {
		for _, b := range schema.AllStatuses {
			assert.Equal(t, CombineStatus(a, b), CombineStatus(b, a), "%s/%s", a, b)
		}
	}
}
