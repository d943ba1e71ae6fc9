package iocache

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
)

// sourceTable is the name of the table (or Redis namespace) for source caching.
const sourceTable = "source_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// StoreOptions selects the backends of the global manager.
// An empty backend leaves that store uninitialized.
type StoreOptions struct {
	CacheBackend    schema.DatabaseBackend
	CacheConnStr    string
	CacheTTL        time.Duration
	AnalysisBackend schema.DatabaseBackend
	AnalysisConnStr string
}

// GetDBFilePath returns the path to the SQLite DB file for cache storage.
func GetDBFilePath() string {
	return contract.GetCacheDBFilePath()
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	return contract.GetAnalysisDBFilePath()
}

// NewSourceStore builds the CacheStore for fetched source documents.
func NewSourceStore(backend schema.DatabaseBackend, connStr string, ttl time.Duration) (contract.CacheStore, error) {
	if backend == schema.RedisBackend {
		return NewRedisCacheStore(sourceTable, connStr, ttl)
	}
	return NewCacheStore(sourceTable, backend, connStr)
}

// InitStores initializes the global manager with separate cache and analysis stores.
func InitStores(opts StoreOptions) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		var err error

		var sourceStore contract.CacheStore
		if opts.CacheBackend != "" {
			sourceStore, err = NewSourceStore(opts.CacheBackend, opts.CacheConnStr, opts.CacheTTL)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize source caching: %w", err)
				return
			}
		}

		var analysisStore contract.AnalysisStore
		if opts.AnalysisBackend != "" {
			analysisStore, err = NewAnalysisStore(opts.AnalysisBackend, opts.AnalysisConnStr)
			if err != nil {
				if sourceStore != nil {
					_ = sourceStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize analysis store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.source = sourceStore
		Manager.analysis = analysisStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.source != nil {
			_ = Manager.source.Close()
		}
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
	})
}

// ClearCache clears the cache for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
// For Redis, it deletes the keys of the cache namespace.
// For NoneBackend, it does nothing.
func ClearCache(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, sourceTable)
	case schema.RedisBackend:
		return clearRedisNamespace(connStr, sourceTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("%w for clearing: %s", contract.ErrUnsupportedBackend, backend)
	}
}

// ClearAnalysis clears the analysis data for the specified backend.
// SQL backends also drop the migration bookkeeping so the next run starts from scratch.
func ClearAnalysis(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return clearSQLTables(backend, connStr, snapshotsTable, runsTable, "schema_migrations")
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("%w for clearing: %s", contract.ErrUnsupportedBackend, backend)
	}
}

// removeSQLiteFile deletes a SQLite database file; a missing file is not an error.
func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// clearSQLTables connects to the SQL database and drops the tables if they exist.
func clearSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	db, err := openSQL(backend, connStr, "")
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
