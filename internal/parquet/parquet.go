// Package parquet provides data structures and functions for exporting burndown
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/burndown/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents a single recorded analysis run.
// This struct maps to the burndown_runs database table.
type Run struct {
	// RunID is the UUID of the run
	RunID string `parquet:"run_id,snappy"`

	// Source is the location the document was fetched from
	Source string `parquet:"source,snappy"`

	// NowTime is the evaluation instant the run was computed as of
	NowTime time.Time `parquet:"now_time,snappy"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// EnvCount is the number of environments analyzed
	EnvCount int32 `parquet:"env_count,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Snapshot represents the progress of one environment within a run.
// This struct maps to the burndown_snapshots database table.
type Snapshot struct {
	RunID               string  `parquet:"run_id,snappy"`
	Env                 string  `parquet:"env,snappy"`
	Status              string  `parquet:"status,snappy"`
	SpaStatus           string  `parquet:"spa_status,snappy"`
	MsStatus            string  `parquet:"ms_status,snappy"`
	CurrentSpa          int32   `parquet:"current_spa,snappy"`
	CurrentMs           int32   `parquet:"current_ms,snappy"`
	TotalSpa            int32   `parquet:"total_spa,snappy"`
	TotalMs             int32   `parquet:"total_ms,snappy"`
	OverallProgress     int32   `parquet:"overall_progress,snappy"`
	BurnRate            float64 `parquet:"burn_rate,snappy"`
	Confidence          float64 `parquet:"confidence,snappy"`
	ProjectedCompletion *string `parquet:"projected_completion,optional,snappy"`
	DaysToTarget        *int32  `parquet:"days_to_target,optional,snappy"`
}

// Progress is one row of the progress command output.
type Progress struct {
	Rank                int32     `parquet:"rank,snappy"`
	Env                 string    `parquet:"env,snappy"`
	Now                 time.Time `parquet:"now,snappy"`
	Status              string    `parquet:"status,snappy"`
	SpaStatus           string    `parquet:"spa_status,snappy"`
	MsStatus            string    `parquet:"ms_status,snappy"`
	CurrentSpa          int32     `parquet:"current_spa,snappy"`
	TotalSpa            int32     `parquet:"total_spa,snappy"`
	CurrentMs           int32     `parquet:"current_ms,snappy"`
	TotalMs             int32     `parquet:"total_ms,snappy"`
	SpaProgress         int32     `parquet:"spa_progress,snappy"`
	MsProgress          int32     `parquet:"ms_progress,snappy"`
	OverallProgress     int32     `parquet:"overall_progress,snappy"`
	BurnRate            float64   `parquet:"burn_rate,snappy"`
	Confidence          float64   `parquet:"confidence,snappy"`
	ProjectedCompletion *string   `parquet:"projected_completion,optional,snappy"`
	TargetSpa           *string   `parquet:"target_spa,optional,snappy"`
	TargetMs            *string   `parquet:"target_ms,optional,snappy"`
	DaysToTarget        *int32    `parquet:"days_to_target,optional,snappy"`
}

// Point is one normalized date of one environment.
type Point struct {
	Env             string `parquet:"env,snappy"`
	Date            string `parquet:"date,snappy"`
	Timestamp       int64  `parquet:"timestamp_ms,snappy"`
	SpaActual       *int32 `parquet:"spa_actual,optional,snappy"`
	SpaPlanned      *int32 `parquet:"spa_planned,optional,snappy"`
	MsActual        *int32 `parquet:"ms_actual,optional,snappy"`
	MsPlanned       *int32 `parquet:"ms_planned,optional,snappy"`
	SpaTotal        *int32 `parquet:"spa_total,optional,snappy"`
	MsTotal         *int32 `parquet:"ms_total,optional,snappy"`
	CombinedActual  int32  `parquet:"combined_actual,snappy"`
	CombinedPlanned int32  `parquet:"combined_planned,snappy"`
}

// Write encodes rows of any struct type with a schema inferred from its parquet tags.
func Write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet data: %w", err)
	}
	return nil
}

// WriteFile writes rows to a new Parquet file at outputPath.
func WriteFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:        record.RunID,
			Source:       record.Source,
			NowTime:      record.NowTime,
			StartTime:    record.StartTime,
			EndTime:      record.EndTime,
			EnvCount:     record.EnvCount,
			ConfigParams: record.ConfigParams,
		}
	}
	return result
}

// ConvertSnapshotRecords converts schema.SnapshotRecord to Snapshot for Parquet export.
func ConvertSnapshotRecords(records []schema.SnapshotRecord) []Snapshot {
	result := make([]Snapshot, len(records))
	for i, r := range records {
		result[i] = Snapshot{
			RunID:               r.RunID,
			Env:                 r.Env,
			Status:              r.Status,
			SpaStatus:           r.SpaStatus,
			MsStatus:            r.MsStatus,
			CurrentSpa:          r.CurrentSpa,
			CurrentMs:           r.CurrentMs,
			TotalSpa:            r.TotalSpa,
			TotalMs:             r.TotalMs,
			OverallProgress:     r.OverallProgress,
			BurnRate:            r.BurnRate,
			Confidence:          r.Confidence,
			ProjectedCompletion: r.ProjectedCompletion,
			DaysToTarget:        r.DaysToTarget,
		}
	}
	return result
}

// ConvertProgress flattens ranked progress records evaluated at now.
func ConvertProgress(progress []schema.EnvironmentProgress, now time.Time) []Progress {
	result := make([]Progress, len(progress))
	for i, p := range progress {
		result[i] = Progress{
			Rank:                int32(i + 1),
			Env:                 p.Env,
			Now:                 now,
			Status:              string(p.Status),
			SpaStatus:           string(p.SpaStatus),
			MsStatus:            string(p.MsStatus),
			CurrentSpa:          int32(p.CurrentSpa),
			TotalSpa:            int32(p.TotalSpa),
			CurrentMs:           int32(p.CurrentMs),
			TotalMs:             int32(p.TotalMs),
			SpaProgress:         int32(p.SpaProgress),
			MsProgress:          int32(p.MsProgress),
			OverallProgress:     int32(p.OverallProgress),
			BurnRate:            p.BurnRate,
			Confidence:          p.Confidence,
			ProjectedCompletion: optionalString(p.ProjectedCompletion),
			TargetSpa:           optionalString(p.TargetSpa),
			TargetMs:            optionalString(p.TargetMs),
			DaysToTarget:        optionalInt32(p.DaysToTarget),
		}
	}
	return result
}

// ConvertSeries flattens every environment's points into rows.
func ConvertSeries(series []schema.EnvironmentSeries) []Point {
	var result []Point
	for _, s := range series {
		for _, p := range s.Points {
			result = append(result, Point{
				Env:             s.Env,
				Date:            p.Date,
				Timestamp:       p.Timestamp,
				SpaActual:       optionalInt32(p.SpaActual),
				SpaPlanned:      optionalInt32(p.SpaPlanned),
				MsActual:        optionalInt32(p.MsActual),
				MsPlanned:       optionalInt32(p.MsPlanned),
				SpaTotal:        optionalInt32(p.SpaTotal),
				MsTotal:         optionalInt32(p.MsTotal),
				CombinedActual:  int32(p.CombinedActual),
				CombinedPlanned: int32(p.CombinedPlanned),
			})
		}
	}
	return result
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt32(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
