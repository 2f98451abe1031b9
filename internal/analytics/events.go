// Package analytics tracks query behavior: events flow from the search
// handler through Kafka into an in-memory aggregator, which is periodically
// snapshotted to PostgreSQL.
package analytics

import (
	"time"

	"github.com/rsrini-dev/vectorrank/internal/search/executor"
)

// QueryEvent describes one executed query.
type QueryEvent struct {
	Query        string           `json:"query"`
	Outcome      executor.Outcome `json:"outcome"`
	UnknownTerms []string         `json:"unknown_terms,omitempty"`
	TotalHits    int              `json:"total_hits"`
	Returned     int              `json:"returned"`
	TopScore     float64          `json:"top_score"`
	LatencyMs    int64            `json:"latency_ms"`
	CacheHit     bool             `json:"cache_hit"`
	Timestamp    time.Time        `json:"timestamp"`
	RequestID    string           `json:"request_id"`
}
