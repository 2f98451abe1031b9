// Package handler exposes the ranking engine over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rsrini-dev/vectorrank/internal/analytics"
	"github.com/rsrini-dev/vectorrank/internal/search/cache"
	"github.com/rsrini-dev/vectorrank/internal/search/executor"
	"github.com/rsrini-dev/vectorrank/pkg/logger"
	"github.com/rsrini-dev/vectorrank/pkg/metrics"
	"github.com/rsrini-dev/vectorrank/pkg/middleware"
	"github.com/rsrini-dev/vectorrank/pkg/tracing"
)

// QueryExecutor runs one query to completion.
type QueryExecutor interface {
	Execute(ctx context.Context, rawQuery string, limit int) (*executor.Result, error)
}

// Handler serves the search API. Cache, collector, and metrics are optional;
// nil disables the corresponding concern.
type Handler struct {
	executor     QueryExecutor
	cache        *cache.QueryCache
	collector    *analytics.Collector
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler.
func New(exec QueryExecutor, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, defaultLimit, maxResults int) *Handler {
	return &Handler{
		executor:     exec,
		cache:        queryCache,
		collector:    collector,
		metrics:      m,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Search handles GET /api/v1/search?q=<query>&limit=<n>. Empty-result
// outcomes (no query terms, no matching documents) are 200 responses with an
// explicit outcome field; only execution failures are 5xx.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > h.maxResults {
			parsed = h.maxResults
		}
		limit = parsed
	}

	ctx, span := tracing.StartSpan(ctx, "search.query", middleware.GetRequestID(ctx))

	var result *executor.Result
	var err error
	cacheHit := false

	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, limit, func() (*executor.Result, error) {
			return h.executor.Execute(ctx, query, limit)
		})
	} else {
		result, err = h.executor.Execute(ctx, query, limit)
	}

	span.End()
	span.Log()

	latency := time.Since(start)
	if err != nil {
		log.Error("query execution failed", "query", query, "error", err)
		h.recordMetrics("error", cacheHit, latency, nil)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	log.Info("query completed",
		"query", query,
		"outcome", result.Outcome,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.recordMetrics(string(result.Outcome), cacheHit, latency, result)

	if h.collector != nil {
		var topScore float64
		if len(result.Results) > 0 {
			topScore = result.Results[0].Score
		}
		h.collector.Track(analytics.QueryEvent{
			Query:        query,
			Outcome:      result.Outcome,
			UnknownTerms: result.UnknownTerms,
			TotalHits:    result.TotalHits,
			Returned:     len(result.Results),
			TopScore:     topScore,
			LatencyMs:    latency.Milliseconds(),
			CacheHit:     cacheHit,
			Timestamp:    time.Now().UTC(),
			RequestID:    middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, result)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) recordMetrics(outcome string, cacheHit bool, latency time.Duration, result *executor.Result) {
	if h.metrics == nil {
		return
	}
	h.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.QueryLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
	if result != nil {
		h.metrics.QueryResultsCount.Observe(float64(len(result.Results)))
		h.metrics.UnknownTermsTotal.Add(float64(len(result.UnknownTerms)))
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
