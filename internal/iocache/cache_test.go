package iocache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite backends", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		err := InitStores(StoreOptions{
			CacheBackend:    schema.SQLiteBackend,
			CacheConnStr:    cachePath,
			AnalysisBackend: schema.SQLiteBackend,
			AnalysisConnStr: analysisPath,
		})
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetSourceStore())
		assert.NotNil(t, Manager.GetAnalysisStore())

		CloseStores()
		CloseStores() // idempotent

		assert.FileExists(t, cachePath)
		assert.FileExists(t, analysisPath)
	})

	t.Run("none backends", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(StoreOptions{CacheBackend: schema.NoneBackend, AnalysisBackend: schema.NoneBackend})
		require.NoError(t, err)

		store := Manager.GetSourceStore()
		require.NotNil(t, store)
		_, _, _, err = store.Get("anything")
		assert.ErrorIs(t, err, ErrCacheMiss)
		CloseStores()
	})

	t.Run("empty backends leave stores unset", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(StoreOptions{}))
		assert.Nil(t, Manager.GetSourceStore())
		assert.Nil(t, Manager.GetAnalysisStore())
		CloseStores()
	})

	t.Run("runs only once", func(t *testing.T) {
		resetGlobals(t)
		require.NoError(t, InitStores(StoreOptions{CacheBackend: schema.NoneBackend}))
		// The second call is ignored even though its backend is invalid.
		require.NoError(t, InitStores(StoreOptions{CacheBackend: "bogus"}))
		CloseStores()
	})

	t.Run("unsupported backend", func(t *testing.T) {
		resetGlobals(t)
		err := InitStores(StoreOptions{CacheBackend: "bogus"})
		assert.ErrorIs(t, err, contract.ErrUnsupportedBackend)
	})
}

func TestSQLiteCacheStore(t *testing.T) {
	store, err := NewCacheStore(sourceTable, schema.SQLiteBackend, filepath.Join(t.TempDir(), "nested", "cache.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	now := time.Now().Unix()
	require.NoError(t, store.Set("k1", []byte(`{"a":1}`), 1, now-60))
	require.NoError(t, store.Set("k2", []byte(`{"b":2}`), 1, now))
	require.NoError(t, store.Set("k1", []byte(`{"a":3}`), 2, now-30)) // replace

	value, version, ts, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":3}`), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, now-30, ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(now, 0), status.LastEntryTime)
	assert.Equal(t, time.Unix(now-30, 0), status.OldestEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestNoneCacheStore(t *testing.T) {
	store, err := NewCacheStore(sourceTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("{}"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, ErrCacheMiss)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, schema.CacheStatus{Backend: "none"}, status)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreRejectsBadTableName(t *testing.T) {
	_, err := NewCacheStore("drop table;", schema.SQLiteBackend, filepath.Join(t.TempDir(), "c.db"))
	assert.Error(t, err)
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(sourceTable, schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing again is a no-op.
	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.ErrorIs(t, ClearCache("bogus", "", ""), contract.ErrUnsupportedBackend)
}

func TestClearAnalysis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearAnalysis(schema.SQLiteBackend, path, ""))
	assert.NoFileExists(t, path)
	assert.NoError(t, ClearAnalysis(schema.NoneBackend, "", ""))
	assert.ErrorIs(t, ClearAnalysis(schema.RedisBackend, "", ""), contract.ErrUnsupportedBackend)
}

func TestSQLHelpers(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "source_cache", false},
		{"leading underscore", "_t1", false},
		{"empty", "", true},
		{"leading digit", "1table", true},
		{"injection", "t; DROP TABLE x", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))

	assert.Equal(t, "?, ?, ?", bindParams(schema.SQLiteBackend, 3))
	assert.Equal(t, "?, ?", bindParams(schema.MySQLBackend, 2))
	assert.Equal(t, "$1, $2, $3", bindParams(schema.PostgreSQLBackend, 3))

	_, err := driverName(schema.RedisBackend)
	assert.Error(t, err)
}

func TestWithParseTime(t *testing.T) {
	dsn, err := withParseTime("user:pass@tcp(localhost:3306)/burndown")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = withParseTime("not a dsn")
	assert.Error(t, err)
}

func TestRedisKeyPrefix(t *testing.T) {
	assert.Equal(t, "burndown:source_cache:", redisKeyPrefix(sourceTable))
}

func TestNewRedisCacheStoreRejectsBadURL(t *testing.T) {
	_, err := NewRedisCacheStore(sourceTable, "http://localhost:6379", time.Minute)
	assert.Error(t, err)
}
