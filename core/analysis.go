package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/burndown/internal/contract"
	"github.com/huangsam/burndown/internal/outwriter"
	"github.com/huangsam/burndown/schema"
	"github.com/sirupsen/logrus"
)

// analysisOutput holds the normalized series and derived progress of one run.
type analysisOutput struct {
	Series   []schema.EnvironmentSeries
	Progress []schema.EnvironmentProgress
}

// sourceUserAgent identifies burndown to HTTP sources.
const sourceUserAgent = "burndown-cli"

// sourceClientKey identifies the fetch settings a shared client was built with.
type sourceClientKey struct {
	rateLimit float64
	timeout   time.Duration
}

var (
	sourceClientsMu sync.Mutex
	sourceClients   = map[sourceClientKey]contract.SourceClient{}
)

// newSourceClient returns the client used to fetch documents. Tests replace it.
var newSourceClient = sharedSourceClient

// sharedSourceClient returns the process-wide client for the fetch settings of cfg,
// so repeated analyses draw from one token bucket.
func sharedSourceClient(cfg *contract.Config) contract.SourceClient {
	key := sourceClientKey{rateLimit: cfg.RateLimit, timeout: cfg.HTTPTimeout}

	sourceClientsMu.Lock()
	defer sourceClientsMu.Unlock()
	if client, ok := sourceClients[key]; ok {
		return client
	}
	client := contract.NewSourceClient(cfg.RateLimit, cfg.HTTPTimeout).WithHeader("User-Agent", sourceUserAgent)
	sourceClients[key] = client
	return client
}

// runBurndownAnalysis fetches, decodes, normalizes and aggregates the configured source.
// When an analysis store is configured the run and its snapshots are recorded.
func runBurndownAnalysis(ctx context.Context, cfg *contract.Config, client contract.SourceClient, mgr contract.CacheManager) (*analysisOutput, error) {
	if !shouldSuppressHeader(ctx) && cfg.Output == schema.TextOut {
		outwriter.LogAnalysisHeader(cfg)
	}

	// --- 0. Begin Run Tracking (if configured) ---
	var store contract.AnalysisStore
	if mgr != nil {
		store = mgr.GetAnalysisStore()
	}
	if store != nil {
		runID, err := store.BeginRun(time.Now(), cfg.Source, cfg.Now, runConfigParams(cfg))
		if err != nil {
			contract.LogWarn("Analysis tracking initialization failed", err)
		} else if runID != "" {
			ctx = withRunID(ctx, runID)
		}
	}

	// --- 1. Fetch Phase (with caching) ---
	data, err := cachedFetchSource(ctx, cfg, client, mgr)
	if err != nil {
		endRun(ctx, store, 0)
		return nil, err
	}

	// --- 2. Decode ---
	doc, err := decodeDocument(data)
	if err != nil {
		endRun(ctx, store, 0)
		return nil, err
	}

	// --- 3. Normalize and Aggregate ---
	series, progress := Analyze(doc, cfg.Envs, cfg.Now, cfg.WindowDays)
	contract.LogDebug("burndown analyzed", logrus.Fields{
		"source":       cfg.Source,
		"environments": len(progress),
		"now":          cfg.Now.Format(contract.DateTimeFormat),
	})

	// --- 4. Record Snapshots and End Run Tracking ---
	if runID, ok := runIDFromContext(ctx); ok && store != nil {
		recordSnapshots(store, runID, progress)
	}
	endRun(ctx, store, len(progress))

	return &analysisOutput{Series: series, Progress: progress}, nil
}

// endRun closes the tracked run of ctx, if any. Failed runs are closed with no environments.
func endRun(ctx context.Context, store contract.AnalysisStore, envCount int) {
	runID, ok := runIDFromContext(ctx)
	if !ok || store == nil {
		return
	}
	if err := store.EndRun(runID, time.Now(), envCount); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}

// decodeDocument parses the raw burndown document.
func decodeDocument(data []byte) (schema.RawDocument, error) {
	var doc schema.RawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return schema.RawDocument{}, fmt.Errorf("failed to decode burndown document: %w", err)
	}
	return doc, nil
}

// recordSnapshots stores every environment of a run. Failures are logged, not fatal.
func recordSnapshots(store contract.AnalysisStore, runID string, progress []schema.EnvironmentProgress) {
	for _, p := range progress {
		if err := store.RecordSnapshot(runID, p); err != nil {
			contract.Logger.WithFields(logrus.Fields{
				"run_id": runID,
				"env":    p.Env,
			}).WithError(err).Warn("Failed to record snapshot")
		}
	}
}

// runConfigParams captures the knobs that influence a run's results.
func runConfigParams(cfg *contract.Config) map[string]any {
	return map[string]any{
		"envs":        cfg.Envs,
		"window_days": cfg.WindowDays,
		"now":         cfg.Now.Format(contract.DateTimeFormat),
		"output":      string(cfg.Output),
	}
}
