package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/huangsam/burndown/schema"
)

// FuzzAnalyze fuzzes decoding and aggregation with arbitrary documents.
func FuzzAnalyze(f *testing.F) {
	f.Add([]byte(scenarioDoc))
	f.Add([]byte(`{"environments": {}}`))
	f.Add([]byte(`{"environments": {"uat": {"target": {"spa": "2024-02-01", "microservice": "bad"},
		"series": [{"key": "microservice.planned", "points": [{"x": "2024-01-01", "y": -3}]}]}}}`))
	f.Add([]byte(`{"environments": {"x": {"inScope": {"spa": 1e9}, "series": [{"key": "spa.actual", "points": [{"x": "2024-01-01"}]}]}}}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		var doc schema.RawDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return
		}
		series, progress := Analyze(doc, nil, fixedNow, schema.DefaultWindowDays)
		if len(series) != len(progress) {
			t.Fatalf("series and progress differ in length: %d != %d", len(series), len(progress))
		}
		for _, p := range progress {
			for _, pct := range []int{p.SpaProgress, p.MsProgress, p.OverallProgress} {
				if pct < 0 || pct > 100 {
					t.Fatalf("progress out of range for %s: %d", p.Env, pct)
				}
			}
			if p.Confidence < 0 || p.Confidence > 1 {
				t.Fatalf("confidence out of range for %s: %f", p.Env, p.Confidence)
			}
			if p.DaysToTarget != nil && *p.DaysToTarget < 0 {
				t.Fatalf("negative days to target for %s", p.Env)
			}
		}
	})
}

// syntheticDocument builds a document with envs environments of points daily observations each.
func syntheticDocument(envs, points int) string {
	var sb strings.Builder
	sb.WriteString(`{"environments": {`)
	for e := range envs {
		if e > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `"env-%d": {"target": "2024-12-31", "series": [{"key": "spa.actual", "points": [`, e)
		for p := range points {
			if p > 0 {
				sb.WriteString(",")
			}
			day := fixedNow.AddDate(0, 0, p-points).Format(schema.DateLayout)
			fmt.Fprintf(&sb, `{"x": "%s", "y": %d, "total": %d}`, day, points-p, points)
		}
		sb.WriteString(`]}]}`)
	}
	sb.WriteString(`}}`)
	return sb.String()
}

// BenchmarkAnalyze benchmarks normalization and aggregation of a mid-sized document.
func BenchmarkAnalyze(b *testing.B) {
	var doc schema.RawDocument
	if err := json.Unmarshal([]byte(syntheticDocument(20, 365)), &doc); err != nil {
		b.Fatal(err)
	}

	for b.Loop() {
		Analyze(doc, nil, fixedNow, schema.DefaultWindowDays)
	}
}

// BenchmarkProject benchmarks the trend projection of a single track.
func BenchmarkProject(b *testing.B) {
	var doc schema.RawDocument
	if err := json.Unmarshal([]byte(syntheticDocument(1, 365)), &doc); err != nil {
		b.Fatal(err)
	}
	points := Normalize(doc)[0].Points

	for b.Loop() {
		Project(points, schema.SpaType, schema.DefaultWindowDays)
	}
}
