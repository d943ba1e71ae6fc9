package contract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceClientIsRemote(t *testing.T) {
	c := NewSourceClient(0, 0)
	assert.True(t, c.IsRemote("https://dash.example.com/api/burndown"))
	assert.True(t, c.IsRemote("HTTP://dash"))
	assert.False(t, c.IsRemote("./burndown.json"))
	assert.False(t, c.IsRemote("-"))
}

func TestSourceClientFetchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "burndown.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"environments":{}}`), 0o600))

	c := NewSourceClient(0, 0)
	data, err := c.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"environments":{}}`, string(data))

	_, err = c.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSourceClientFetchStdin(t *testing.T) {
	c := NewSourceClient(0, 0)
	c.stdin = strings.NewReader(`{}`)
	data, err := c.Fetch(context.Background(), "-")
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestSourceClientFetchEmpty(t *testing.T) {
	_, err := NewSourceClient(0, 0).Fetch(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestSourceClientFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "Bearer t0k", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"environments":{"dev":{}}}`))
		default:
			http.Error(w, "nope", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewSourceClient(100, time.Second).WithHeader("Authorization", "Bearer t0k")
	data, err := c.Fetch(context.Background(), srv.URL+"/ok")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"dev"`)

	_, err = c.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestSourceClientFetchHTTPCancelled(t *testing.T) {
	c := NewSourceClient(0.001, time.Second)
	// Drain the single burst token so the next Wait must block.
	require.True(t, c.limiter.Allow())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Fetch(ctx, "http://127.0.0.1:1/never")
	assert.Error(t, err)
}

func TestSourceClientFetchHTTPRateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewSourceClient(4, time.Second)
	start := time.Now()
	for range 3 {
		_, err := c.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}

	assert.Equal(t, int32(3), hits.Load())
	assert.GreaterOrEqual(t, time.Since(start), 450*time.Millisecond)
}
