// Package iocache is for caching source fetches and persisting analysis runs.
package iocache

import (
	"errors"
	"sync"

	"github.com/huangsam/burndown/internal/contract"
)

// ErrCacheMiss is returned by a CacheStore when the key has no entry.
var ErrCacheMiss = errors.New("cache miss")

// CacheStoreManager manages multiple store instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	source       contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetSourceStore returns the CacheStore for fetched source documents.
func (mgr *CacheStoreManager) GetSourceStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.source
}

// GetAnalysisStore returns the analysis AnalysisStore.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
