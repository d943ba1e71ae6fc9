package iocache

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsMatchAcrossBackends(t *testing.T) {
	var reference []string
	for backend, dir := range migrationDirs {
		entries, err := fs.ReadDir(migrationsFS, dir)
		require.NoError(t, err, backend)
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		if reference == nil {
			reference = names
			continue
		}
		assert.Equal(t, reference, names, "backend %s", backend)
	}
	assert.Len(t, reference, 4)
}

func openSQLiteMigrator(t *testing.T, path string) *migrate.Migrate {
	t.Helper()
	db, err := openSQL(schema.SQLiteBackend, path, "")
	require.NoError(t, err)
	m, err := newMigrator(db, schema.SQLiteBackend)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = m.Close() })
	return m
}

func TestRunMigrations(t *testing.T) {
	m := openSQLiteMigrator(t, filepath.Join(t.TempDir(), "analysis.db"))

	res, err := runMigrations(m, 1)
	require.NoError(t, err)
	assert.Equal(t, migrateResult{from: 0, to: 1, changed: true}, res)

	res, err = runMigrations(m, -1)
	require.NoError(t, err)
	assert.Equal(t, migrateResult{from: 1, to: 2, changed: true}, res)

	res, err = runMigrations(m, -1)
	require.NoError(t, err)
	assert.False(t, res.changed)
	assert.Equal(t, uint(2), res.to)

	res, err = runMigrations(m, 0)
	require.NoError(t, err)
	assert.True(t, res.changed)

	_, _, err = m.Version()
	assert.ErrorIs(t, err, migrate.ErrNilVersion)
}

func TestMigrateAnalysis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.db")
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, -1))
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, -1))

	// The store opens cleanly on top of an already migrated database.
	store, err := NewAnalysisStore(schema.SQLiteBackend, path)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, path, 0))
	assert.Error(t, MigrateAnalysis(schema.NoneBackend, "", -1))
	assert.Error(t, MigrateAnalysis(schema.SQLiteBackend, path, 99))
}

func TestNewMigratorUnsupportedBackend(t *testing.T) {
	_, err := newMigrator(nil, schema.RedisBackend)
	assert.ErrorIs(t, err, contract.ErrUnsupportedBackend)
}
