package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

func testConfig(t *testing.T, output schema.OutputMode, file string) *contract.Config {
	t.Helper()
	cfg := &contract.Config{
		Source:       "burndown.json",
		Now:          testNow,
		WindowDays:   schema.DefaultWindowDays,
		Precision:    1,
		Output:       output,
		Width:        160,
		CacheBackend: schema.SQLiteBackend,
	}
	if file != "" {
		cfg.OutputFile = filepath.Join(t.TempDir(), file)
	}
	return cfg
}

func sampleProgress() []schema.EnvironmentProgress {
	days := 31
	return []schema.EnvironmentProgress{
		{
			Env:                 "dev",
			TargetSpa:           "2024-06-01",
			TargetMs:            "2024-06-01",
			CurrentSpa:          10,
			TotalSpa:            40,
			CurrentMs:           5,
			TotalMs:             10,
			SpaProgress:         75,
			MsProgress:          50,
			OverallProgress:     70,
			DaysToTarget:        &days,
			SpaStatus:           schema.OnTrackStatus,
			MsStatus:            schema.OnTrackStatus,
			Status:              schema.OnTrackStatus,
			BurnRate:            1.25,
			Confidence:          0.85,
			ProjectedCompletion: "2024-05-13",
			SpaProjection:       &schema.Projection{ProjectedCompletion: "2024-05-10", Trend: schema.TrendImproving},
			MsProjection:        &schema.Projection{Trend: schema.TrendStable},
		},
		{
			Env:       "perf",
			SpaStatus: schema.AtRiskStatus,
			MsStatus:  schema.AtRiskStatus,
			Status:    schema.AtRiskStatus,
		},
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		pct      int
		expected string
	}{
		{0, "░░░░░░░░░░   0%"},
		{50, "█████░░░░░  50%"},
		{100, "██████████ 100%"},
		{150, "██████████ 100%"},
		{-5, "░░░░░░░░░░   0%"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, renderProgressBar(tt.pct, 10, schema.OnTrackStatus, false))
	}
}

func TestFormatTargets(t *testing.T) {
	assert.Equal(t, "-", formatTargets("", ""))
	assert.Equal(t, "2024-06-01", formatTargets("2024-06-01", "2024-06-01"))
	assert.Equal(t, "spa 2024-06-01", formatTargets("2024-06-01", ""))
	assert.Equal(t, "ms 2024-07-01", formatTargets("", "2024-07-01"))
	assert.Equal(t, "spa 2024-06-01 / ms 2024-07-01", formatTargets("2024-06-01", "2024-07-01"))
}

func TestGetProgressBarWidth(t *testing.T) {
	tests := []struct {
		width    int
		detail   bool
		expected int
	}{
		{80, false, 10},
		{130, false, 20},
		{400, false, 30},
		{190, true, 20},
	}
	for _, tt := range tests {
		cfg := &contract.Config{Width: tt.width, Detail: tt.detail}
		assert.Equal(t, tt.expected, getProgressBarWidth(cfg))
	}
}

func TestWriteProgressJSON(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut, "progress.json")
	require.NoError(t, WriteProgressResults(sampleProgress(), cfg, time.Second))

	var out []map[string]any
	require.NoError(t, json.Unmarshal([]byte(readFile(t, cfg.OutputFile)), &out))
	require.Len(t, out, 2)
	assert.Equal(t, float64(1), out[0]["rank"])
	assert.Equal(t, "On track", out[0]["label"])
	assert.Equal(t, "dev", out[0]["env"])
	assert.Equal(t, float64(31), out[0]["daysToTarget"])

	// Absent target days stay explicit
	days, ok := out[1]["daysToTarget"]
	assert.True(t, ok)
	assert.Nil(t, days)
}

func TestWriteProgressCSV(t *testing.T) {
	cfg := testConfig(t, schema.CSVOut, "progress.csv")
	require.NoError(t, WriteProgressResults(sampleProgress(), cfg, time.Second))

	records, err := csv.NewReader(strings.NewReader(readFile(t, cfg.OutputFile))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "rank", records[0][0])
	assert.Equal(t, []string{"1", "dev", "on_track"}, records[1][:3])
	assert.Equal(t, "1.2", records[1][12], "burn rate honors precision")
	assert.Equal(t, "high", records[1][14])
	assert.Equal(t, "", records[2][18], "no target leaves days empty")
}

func TestWriteProgressTable(t *testing.T) {
	cfg := testConfig(t, schema.TextOut, "")
	cfg.Detail = true

	var buf bytes.Buffer
	require.NoError(t, writeProgressTable(sampleProgress(), cfg, func(v float64) string { return "x" }, time.Second, &buf))

	out := buf.String()
	assert.Contains(t, out, "dev")
	assert.Contains(t, out, "perf")
	assert.Contains(t, out, "2024-05-10")
	assert.Contains(t, out, "improving/stable")
	assert.Contains(t, out, "Showing 2 environments (1 at risk or missed)")
}

func TestWriteProgressParquet(t *testing.T) {
	cfg := testConfig(t, schema.ParquetOut, "progress.parquet")
	require.NoError(t, WriteProgressResults(sampleProgress(), cfg, time.Second))
	assert.True(t, strings.HasPrefix(readFile(t, cfg.OutputFile), "PAR1"))
}

func sampleSeries() []schema.EnvironmentSeries {
	spa, total := 8, 10
	return []schema.EnvironmentSeries{
		{Env: "dev", SpaTotal: 10, Points: []schema.BurndownPoint{
			{Date: "2024-01-01", Timestamp: 1704067200000, SpaActual: &spa, SpaTotal: &total, MsTotal: new(int), CombinedActual: 8},
		}},
		{Env: "sit", Points: []schema.BurndownPoint{}},
	}
}

func TestWriteSeriesJSON(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut, "series.json")
	require.NoError(t, WriteSeriesResults(sampleSeries(), cfg, time.Second))

	var out schema.SeriesOutput
	require.NoError(t, json.Unmarshal([]byte(readFile(t, cfg.OutputFile)), &out))
	require.Len(t, out.Environments, 2)
	assert.Equal(t, "dev", out.Environments[0].Env)
	require.Len(t, out.Environments[0].Points, 1)
	assert.Equal(t, 8, *out.Environments[0].Points[0].SpaActual)
}

func TestWriteSeriesCSV(t *testing.T) {
	cfg := testConfig(t, schema.CSVOut, "series.csv")
	require.NoError(t, WriteSeriesResults(sampleSeries(), cfg, time.Second))

	records, err := csv.NewReader(strings.NewReader(readFile(t, cfg.OutputFile))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, seriesColumns, records[0])
	assert.Equal(t, []string{"dev", "2024-01-01", "8", "", "", "", "10", "0", "8", "0"}, records[1])
}

func TestWriteSeriesTable(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(t, schema.TextOut, "")
	require.NoError(t, writeSeriesTable(sampleSeries(), cfg, time.Second, &buf))
	assert.Contains(t, buf.String(), "Showing 1 points across 2 environments")
}

func sampleCheck(passed bool) *schema.CheckResult {
	days := 4
	result := &schema.CheckResult{
		Passed: passed,
		Now:    testNow,
		FailOn: []schema.Status{schema.MissedStatus},
		Environments: []schema.CheckEnvironment{
			{Env: "dev", Status: schema.OnTrackStatus, OverallProgress: 70, DaysToTarget: &days},
		},
		Failed: []string{},
	}
	if !passed {
		result.Environments = append(result.Environments, schema.CheckEnvironment{Env: "uat", Status: schema.MissedStatus, Failed: true})
		result.Failed = []string{"uat"}
	}
	return result
}

func TestWriteCheckText(t *testing.T) {
	cfg := testConfig(t, schema.TextOut, "")

	var buf bytes.Buffer
	require.NoError(t, writeCheckText(sampleCheck(true), cfg, time.Second, &buf))
	assert.Contains(t, buf.String(), "✅ All 1 environments passed")
	assert.Contains(t, buf.String(), "days left: 4")

	buf.Reset()
	require.NoError(t, writeCheckText(sampleCheck(false), cfg, time.Second, &buf))
	assert.Contains(t, buf.String(), "❌ Check failed: 1 environment(s) in a failing status: uat")
	assert.Contains(t, buf.String(), "days left: -")
}

func TestWriteCheckFormats(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut, "check.json")
		require.NoError(t, WriteCheckResult(sampleCheck(false), cfg, time.Second))

		var out schema.CheckResult
		require.NoError(t, json.Unmarshal([]byte(readFile(t, cfg.OutputFile)), &out))
		assert.False(t, out.Passed)
		assert.Equal(t, []string{"uat"}, out.Failed)
	})

	t.Run("csv", func(t *testing.T) {
		cfg := testConfig(t, schema.CSVOut, "check.csv")
		require.NoError(t, WriteCheckResult(sampleCheck(false), cfg, time.Second))
		records, err := csv.NewReader(strings.NewReader(readFile(t, cfg.OutputFile))).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, []string{"uat", "missed", "", "", "0", "", "true"}, records[2])
	})

	t.Run("parquet unsupported", func(t *testing.T) {
		cfg := testConfig(t, schema.ParquetOut, "check.parquet")
		assert.Error(t, WriteCheckResult(sampleCheck(true), cfg, time.Second))
	})
}
