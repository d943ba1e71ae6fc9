// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/burndown/schema"
)

// Sentinel errors shared across packages.
var (
	// ErrUnsupportedBackend is returned for an unknown or unsupported storage backend.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrEmptySource is returned when no data source was given.
	ErrEmptySource = errors.New("no data source given")
)

// SourceClient fetches the raw burndown document from a data source.
// This allows the core logic to be tested without files or network access.
type SourceClient interface {
	// Fetch returns the raw bytes at location: a file path, "-" for stdin, or an http(s) URL.
	Fetch(ctx context.Context, location string) ([]byte, error)

	// IsRemote reports whether location is fetched over the network.
	IsRemote(location string) bool
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetSourceStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and environment snapshots.
type AnalysisStore interface {
	// BeginRun creates a new run and returns its unique ID
	BeginRun(startTime time.Time, source string, now time.Time, configParams map[string]any) (string, error)

	// EndRun updates the run with completion data
	EndRun(runID string, endTime time.Time, envCount int) error

	// RecordSnapshot stores the progress of one environment for a run
	RecordSnapshot(runID string, progress schema.EnvironmentProgress) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllRuns returns every recorded run
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllSnapshots returns every recorded snapshot
	GetAllSnapshots() ([]schema.SnapshotRecord, error)

	// Close closes the underlying connection
	Close() error
}
