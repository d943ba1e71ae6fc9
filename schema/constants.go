package schema

import "math"

// Custom string types for type safety.
type (
	// ServiceType represents one of the two independent migration tracks.
	ServiceType string

	// SeriesKind distinguishes observed remaining counts from the plan.
	SeriesKind string

	// Status represents the delivery status of a track or an environment.
	Status string

	// TrendDirection represents the short-term direction of a backlog.
	TrendDirection string

	// ConfidenceBand buckets a projection confidence score.
	ConfidenceBand string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and analysis.
	DatabaseBackend string
)

// Service types tracked per environment.
const (
	SpaType ServiceType = "spa"
	MsType  ServiceType = "ms"
)

// Series kinds.
const (
	ActualKind  SeriesKind = "actual"
	PlannedKind SeriesKind = "planned"
)

// All statuses supported, shared by tracks and environments.
const (
	CompletedStatus     Status = "completed"
	CompletedLateStatus Status = "completed_late"
	OnTrackStatus       Status = "on_track"
	AtRiskStatus        Status = "at_risk"
	MissedStatus        Status = "missed"
)

// Trend directions.
const (
	TrendImproving TrendDirection = "improving"
	TrendDeclining TrendDirection = "declining"
	TrendStable    TrendDirection = "stable"
)

// Confidence bands.
const (
	ConfidenceLow    ConfidenceBand = "low"
	ConfidenceMedium ConfidenceBand = "medium"
	ConfidenceHigh   ConfidenceBand = "high"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// Engine defaults.
const (
	// DefaultWindowDays is the trailing window used by the regression.
	DefaultWindowDays = 14

	// TrendLookback is how many recent actual observations feed the simplified trend.
	TrendLookback = 4

	// LowSampleThreshold is the window size below which confidence is capped.
	LowSampleThreshold = 4

	// FullDensitySamples is the window size at which sample density stops penalizing confidence.
	FullDensitySamples = 7

	// LowSampleConfidenceCap is the ceiling applied when the window is sparse.
	LowSampleConfidenceCap = 0.4

	// DayMs is one calendar day in epoch milliseconds.
	DayMs int64 = 24 * 60 * 60 * 1000

	// MaxCount bounds decoded counts so sums and stored int32 columns cannot overflow.
	MaxCount = math.MaxInt32

	// DateLayout is the ISO 8601 calendar date layout used on the wire.
	DateLayout = "2006-01-02"
)

// CanonicalEnvironments is the presentation order of well-known environments.
// Any other environment follows in encounter order.
var CanonicalEnvironments = []string{"dev", "sit", "uat", "nft"}

// AllServiceTypes lists the tracks in display order.
var AllServiceTypes = []ServiceType{SpaType, MsType}

// AllStatuses lists every status in severity-neutral display order.
var AllStatuses = []Status{CompletedStatus, CompletedLateStatus, OnTrackStatus, AtRiskStatus, MissedStatus}

// ValidStatuses lists all valid statuses.
var ValidStatuses = map[Status]struct{}{
	CompletedStatus:     {},
	CompletedLateStatus: {},
	OnTrackStatus:       {},
	AtRiskStatus:        {},
	MissedStatus:        {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidAnalysisBackends lists all valid analysis backends.
var ValidAnalysisBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// IsCompleted reports whether the status belongs to the completed family.
func (s Status) IsCompleted() bool {
	return s == CompletedStatus || s == CompletedLateStatus
}
