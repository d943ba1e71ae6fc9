//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startContainer starts a generic container and returns its host and mapped port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) (string, string) {
	t.Helper()
	ctx := context.Background()

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(ctx) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	mapped, err := c.MappedPort(ctx, port)
	require.NoError(t, err)
	return host, mapped.Port()
}

// setBackendEnv points both stores at the given backend through BURNDOWN_ variables.
func setBackendEnv(t *testing.T, cacheBackend, cacheConn, analysisBackend, analysisConn string) {
	t.Helper()
	t.Setenv("BURNDOWN_CACHE_BACKEND", cacheBackend)
	t.Setenv("BURNDOWN_CACHE_DB_CONNECT", cacheConn)
	t.Setenv("BURNDOWN_ANALYSIS_BACKEND", analysisBackend)
	t.Setenv("BURNDOWN_ANALYSIS_DB_CONNECT", analysisConn)
}

// exerciseBackends runs the full store lifecycle against the configured backends.
func exerciseBackends(t *testing.T, withAnalysis bool) {
	t.Helper()

	_, err := runBurndown(t, "cache", "clear")
	require.NoError(t, err)

	if withAnalysis {
		_, err = runBurndown(t, "analysis", "clear")
		require.NoError(t, err)
		_, err = runBurndown(t, "analysis", "migrate")
		require.NoError(t, err)
	}

	_, err = runBurndown(t, "progress", fixturePath(t), "--now", fixtureNow)
	require.NoError(t, err)

	_, err = runBurndown(t, "cache", "status")
	require.NoError(t, err)

	if withAnalysis {
		out, err := runBurndown(t, "analysis", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "burndown_snapshots")

		_, err = runBurndown(t, "analysis", "migrate", "--to-version", "0")
		require.NoError(t, err)
	}
}

// TestBurndownWithMySQL tests the burndown CLI with a MySQL backend.
func TestBurndownWithMySQL(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "burndown",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}, "3306")

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/burndown?parseTime=true", host, port)
	setBackendEnv(t, "mysql", connStr, "mysql", connStr)
	exerciseBackends(t, true)
}

// TestBurndownWithPostgres tests the burndown CLI with a PostgreSQL backend.
func TestBurndownWithPostgres(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432")

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port)
	setBackendEnv(t, "postgresql", connStr, "postgresql", connStr)
	exerciseBackends(t, true)
}

// TestBurndownWithRedis tests the source cache on Redis with SQLite run tracking.
func TestBurndownWithRedis(t *testing.T) {
	host, port := startContainer(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}, "6379")

	analysisDB := t.TempDir() + string(os.PathSeparator) + "analysis.db"
	setBackendEnv(t, "redis", fmt.Sprintf("redis://%s:%s/0", host, port), "sqlite", analysisDB)
	exerciseBackends(t, true)
}
