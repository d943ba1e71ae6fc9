package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus represents the status of the analysis store.
type AnalysisStatus struct {
	Backend        string           `json:"backend"`
	Connected      bool             `json:"connected"`
	TotalRuns      int              `json:"total_runs"`
	LastRunID      string           `json:"last_run_id"`
	LastRunTime    time.Time        `json:"last_run_time"`
	OldestRunTime  time.Time        `json:"oldest_run_time"`
	TotalSnapshots int              `json:"total_snapshots"`
	TableSizes     map[string]int64 `json:"table_sizes"`
}

// RunRecord represents a row from the burndown_runs table.
type RunRecord struct {
	RunID        string
	Source       string
	NowTime      time.Time
	StartTime    time.Time
	EndTime      *time.Time
	EnvCount     int32
	ConfigParams *string
}

// SnapshotRecord represents a row from the burndown_snapshots table.
type SnapshotRecord struct {
	RunID               string
	Env                 string
	Status              string
	SpaStatus           string
	MsStatus            string
	CurrentSpa          int32
	CurrentMs           int32
	TotalSpa            int32
	TotalMs             int32
	OverallProgress     int32
	BurnRate            float64
	Confidence          float64
	ProjectedCompletion *string
	DaysToTarget        *int32
}

// SnapshotFromProgress flattens an EnvironmentProgress into a storable row.
func SnapshotFromProgress(runID string, p EnvironmentProgress) SnapshotRecord {
	rec := SnapshotRecord{
		RunID:           runID,
		Env:             p.Env,
		Status:          string(p.Status),
		SpaStatus:       string(p.SpaStatus),
		MsStatus:        string(p.MsStatus),
		CurrentSpa:      int32(p.CurrentSpa),
		CurrentMs:       int32(p.CurrentMs),
		TotalSpa:        int32(p.TotalSpa),
		TotalMs:         int32(p.TotalMs),
		OverallProgress: int32(p.OverallProgress),
		BurnRate:        p.BurnRate,
		Confidence:      p.Confidence,
	}
	if p.ProjectedCompletion != "" {
		pc := p.ProjectedCompletion
		rec.ProjectedCompletion = &pc
	}
	if p.DaysToTarget != nil {
		d := int32(*p.DaysToTarget)
		rec.DaysToTarget = &d
	}
	return rec
}
