package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
)

// Table names for analysis tracking.
const (
	runsTable      = "burndown_runs"
	snapshotsTable = "burndown_snapshots"
)

// snapshotColumns lists the columns of snapshotsTable in insert and select order.
const snapshotColumns = `run_id, env, status, spa_status, ms_status, current_spa, current_ms,
	total_spa, total_ms, overall_progress, burn_rate, confidence, projected_completion, days_to_target`

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend,
// migrating its schema to the latest version first.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	switch backend {
	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &AnalysisStoreImpl{backend: backend}, nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
	default:
		return nil, fmt.Errorf("%w: %s. Must be sqlite, mysql, postgresql, or none", contract.ErrUnsupportedBackend, backend)
	}

	if err := ensureAnalysisSchema(backend, connStr); err != nil {
		return nil, fmt.Errorf("failed to migrate analysis tables: %w", err)
	}

	db, err := openSQL(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}
	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// disabled reports whether the store is a no-op.
func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// BeginRun creates a new run and returns its unique ID.
// The none backend returns an empty ID, which callers treat as "not tracked".
func (as *AnalysisStoreImpl) BeginRun(startTime time.Time, source string, now time.Time, configParams map[string]any) (string, error) {
	if as.disabled() {
		return "", nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config params: %w", err)
	}

	runID := uuid.NewString()
	query := fmt.Sprintf(`INSERT INTO %s (run_id, source, now_time, start_time, config_params) VALUES (%s)`,
		quoteTableName(runsTable, as.backend), bindParams(as.backend, 5))
	_, err = as.db.Exec(query, runID, source, formatTime(now, as.backend), formatTime(startTime, as.backend), string(configJSON))
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return runID, nil
}

// EndRun updates the run with completion data.
func (as *AnalysisStoreImpl) EndRun(runID string, endTime time.Time, envCount int) error {
	if as.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, as.backend)

	// First, get the start_time to calculate duration
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, bindParam(as.backend, 1))
	start := timeScanner{backend: as.backend}
	if err := as.db.QueryRow(query, runID).Scan(start.target()); err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, env_count = %s WHERE run_id = %s`,
		quotedTableName,
		bindParam(as.backend, 1), bindParam(as.backend, 2), bindParam(as.backend, 3), bindParam(as.backend, 4))
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, envCount, runID); err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordSnapshot stores the progress of one environment for a run.
func (as *AnalysisStoreImpl) RecordSnapshot(runID string, progress schema.EnvironmentProgress) error {
	if as.disabled() {
		return nil
	}

	rec := schema.SnapshotFromProgress(runID, progress)
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(snapshotsTable, as.backend), snapshotColumns, bindParams(as.backend, 14))
	_, err := as.db.Exec(query,
		rec.RunID, rec.Env, rec.Status, rec.SpaStatus, rec.MsStatus,
		rec.CurrentSpa, rec.CurrentMs, rec.TotalSpa, rec.TotalMs, rec.OverallProgress,
		rec.BurnRate, rec.Confidence, rec.ProjectedCompletion, rec.DaysToTarget,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot for %s: %w", progress.Env, err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, as.backend)

	// Get table sizes
	for _, table := range []string{runsTable, snapshotsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalRuns = int(status.TableSizes[runsTable])
	status.TotalSnapshots = int(status.TableSizes[snapshotsTable])

	if status.TotalRuns == 0 {
		return status, nil
	}

	// Get last run info
	lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY start_time DESC LIMIT 1", quotedRuns)
	last := timeScanner{backend: as.backend}
	if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, last.target()); err != nil {
		return status, fmt.Errorf("failed to get last run info: %w", err)
	}
	lastTime, err := last.value()
	if err != nil {
		return status, err
	}
	if lastTime != nil {
		status.LastRunTime = *lastTime
	}

	// Get oldest run time
	oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quotedRuns)
	oldest := timeScanner{backend: as.backend}
	if err := as.db.QueryRow(oldestRunQuery).Scan(oldest.target()); err != nil {
		return status, fmt.Errorf("failed to get oldest run time: %w", err)
	}
	oldestTime, err := oldest.value()
	if err != nil {
		return status, err
	}
	if oldestTime != nil {
		status.OldestRunTime = *oldestTime
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store ordered by start time.
func (as *AnalysisStoreImpl) GetAllRuns() ([]schema.RunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, source, now_time, start_time, end_time, env_count, config_params FROM %s ORDER BY start_time, run_id",
		quoteTableName(runsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RunRecord
	for rows.Next() {
		var record schema.RunRecord
		nowCol := timeScanner{backend: as.backend}
		startCol := timeScanner{backend: as.backend}
		endCol := timeScanner{backend: as.backend}
		var envCount sql.NullInt32
		var params sql.NullString
		if err := rows.Scan(&record.RunID, &record.Source, nowCol.target(), startCol.target(), endCol.target(), &envCount, &params); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		for _, col := range []struct {
			scanner *timeScanner
			dest    *time.Time
		}{{&nowCol, &record.NowTime}, {&startCol, &record.StartTime}} {
			t, err := col.scanner.value()
			if err != nil {
				return nil, err
			}
			if t != nil {
				*col.dest = *t
			}
		}
		if record.EndTime, err = endCol.value(); err != nil {
			return nil, err
		}
		record.EnvCount = envCount.Int32
		if params.Valid {
			record.ConfigParams = &params.String
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return results, nil
}

// GetAllSnapshots retrieves all environment snapshots from the store.
func (as *AnalysisStoreImpl) GetAllSnapshots() ([]schema.SnapshotRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id, env", snapshotColumns, quoteTableName(snapshotsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.SnapshotRecord
	for rows.Next() {
		var rec schema.SnapshotRecord
		var projected sql.NullString
		var days sql.NullInt32
		if err := rows.Scan(&rec.RunID, &rec.Env, &rec.Status, &rec.SpaStatus, &rec.MsStatus,
			&rec.CurrentSpa, &rec.CurrentMs, &rec.TotalSpa, &rec.TotalMs, &rec.OverallProgress,
			&rec.BurnRate, &rec.Confidence, &projected, &days); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if projected.Valid {
			rec.ProjectedCompletion = &projected.String
		}
		if days.Valid {
			rec.DaysToTarget = &days.Int32
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}
	return results, nil
}
