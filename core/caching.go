package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/sirupsen/logrus"
)

// currentCacheVersion defines the version of the cached source payload
const currentCacheVersion = 1

// cachedFetchSource fetches the raw document, serving remote sources from the cache while fresh.
// Local files and stdin are always read directly.
func cachedFetchSource(ctx context.Context, cfg *contract.Config, client contract.SourceClient, mgr contract.CacheManager) ([]byte, error) {
	if !client.IsRemote(cfg.Source) || mgr == nil || cfg.CacheTTL <= 0 {
		return client.Fetch(ctx, cfg.Source)
	}
	store := mgr.GetSourceStore()
	if store == nil {
		return client.Fetch(ctx, cfg.Source)
	}

	key := generateCacheKey(cfg.Source)

	// Check for cache hit
	if data := checkCacheHit(store, key, cfg.CacheTTL, time.Now()); data != nil {
		contract.LogDebug("source cache hit", logrus.Fields{"source": cfg.Source})
		return data, nil
	}

	// Cache miss: fetch and store
	return fetchAndStore(ctx, cfg, client, store, key)
}

// checkCacheHit attempts to retrieve and validate a cached payload
func checkCacheHit(store contract.CacheStore, key string, ttl time.Duration, now time.Time) []byte {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || now.Sub(time.Unix(ts, 0)) > ttl {
		return nil
	}
	return data
}

// fetchAndStore fetches the source and stores well-formed documents in the cache
func fetchAndStore(ctx context.Context, cfg *contract.Config, client contract.SourceClient, store contract.CacheStore, key string) ([]byte, error) {
	data, err := client.Fetch(ctx, cfg.Source)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return data, nil
	}
	if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
		contract.LogWarn("Failed to cache source document", err)
	}
	return data, nil
}

// generateCacheKey creates a unique key for a source location
func generateCacheKey(location string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte("source:"+location)))
}
