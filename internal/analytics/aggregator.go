package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rsrini-dev/vectorrank/internal/search/executor"
	"github.com/rsrini-dev/vectorrank/pkg/kafka"
)

// AggregatedStats is the rolled-up view of query traffic.
type AggregatedStats struct {
	TotalQueries     int64        `json:"total_queries"`
	RankedQueries    int64        `json:"ranked_queries"`
	NoTermQueries    int64        `json:"no_term_queries"`
	NoMatchQueries   int64        `json:"no_match_queries"`
	CacheHits        int64        `json:"cache_hits"`
	CacheMisses      int64        `json:"cache_misses"`
	AvgLatencyMs     float64      `json:"avg_latency_ms"`
	P50LatencyMs     int64        `json:"p50_latency_ms"`
	P95LatencyMs     int64        `json:"p95_latency_ms"`
	P99LatencyMs     int64        `json:"p99_latency_ms"`
	TopQueries       []QueryCount `json:"top_queries"`
	NoMatchTop       []QueryCount `json:"no_match_queries_top"`
	QueriesPerMinute float64      `json:"queries_per_minute"`
}

// QueryCount pairs a query string with its occurrence count.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator consumes query events and maintains in-memory statistics.
type Aggregator struct {
	mu            sync.RWMutex
	totalQueries  atomic.Int64
	ranked        atomic.Int64
	noTerms       atomic.Int64
	noMatch       atomic.Int64
	cacheHits     atomic.Int64
	cacheMisses   atomic.Int64
	latencies     []int64
	queryCounts   map[string]int64
	noMatchCounts map[string]int64
	startTime     time.Time

	logger *slog.Logger
}

// NewAggregator creates an empty Aggregator. Feed it through HandleEvent or
// by calling Record directly.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:     make([]int64, 0, 10000),
		queryCounts:   make(map[string]int64),
		noMatchCounts: make(map[string]int64),
		startTime:     time.Now(),
		logger:        slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns the kafka handler that feeds the aggregator.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[QueryEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode query event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Seed restores counters from a persisted snapshot so totals survive a
// restart. Raw latency samples are not persisted, so percentile statistics
// start empty.
func (a *Aggregator) Seed(stats AggregatedStats) {
	a.totalQueries.Store(stats.TotalQueries)
	a.ranked.Store(stats.RankedQueries)
	a.noTerms.Store(stats.NoTermQueries)
	a.noMatch.Store(stats.NoMatchQueries)
	a.cacheHits.Store(stats.CacheHits)
	a.cacheMisses.Store(stats.CacheMisses)
	a.mu.Lock()
	for _, qc := range stats.TopQueries {
		a.queryCounts[qc.Query] = qc.Count
	}
	for _, qc := range stats.NoMatchTop {
		a.noMatchCounts[qc.Query] = qc.Count
	}
	a.mu.Unlock()
}

// Record folds one event into the running statistics.
func (a *Aggregator) Record(event QueryEvent) {
	a.totalQueries.Add(1)
	switch event.Outcome {
	case executor.OutcomeRanked:
		a.ranked.Add(1)
	case executor.OutcomeNoQueryTerms:
		a.noTerms.Add(1)
	case executor.OutcomeNoMatch:
		a.noMatch.Add(1)
	}
	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.queryCounts[event.Query]++
	if event.Outcome == executor.OutcomeNoMatch {
		a.noMatchCounts[event.Query]++
	}
	a.mu.Unlock()
}

// Stats returns a snapshot of the aggregated statistics.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalQueries:   a.totalQueries.Load(),
		RankedQueries:  a.ranked.Load(),
		NoTermQueries:  a.noTerms.Load(),
		NoMatchQueries: a.noMatch.Load(),
		CacheHits:      a.cacheHits.Load(),
		CacheMisses:    a.cacheMisses.Load(),
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, 10)
	stats.NoMatchTop = topN(a.noMatchCounts, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.QueriesPerMinute = float64(stats.TotalQueries) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
