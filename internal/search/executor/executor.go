// Package executor implements the per-query ranking pipeline: term
// resolution, AND-intersection of candidate documents, cosine-similarity
// scoring, and deterministic ordering. An Executor is stateless between
// queries and only reads the shared index and weighting tables.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rsrini-dev/vectorrank/internal/index"
	"github.com/rsrini-dev/vectorrank/internal/search/tokenizer"
	"github.com/rsrini-dev/vectorrank/internal/weighting"
	apperrors "github.com/rsrini-dev/vectorrank/pkg/errors"
	"github.com/rsrini-dev/vectorrank/pkg/tracing"
)

// Outcome classifies how a query terminated. The empty outcomes are result
// signals, not errors: the caller reports them and moves on.
type Outcome string

const (
	OutcomeRanked       Outcome = "ranked"
	OutcomeNoQueryTerms Outcome = "no_query_terms"
	OutcomeNoMatch      Outcome = "no_matching_documents"
)

// ScoredDoc is one ranked result.
type ScoredDoc struct {
	Document string  `json:"document"`
	Score    float64 `json:"score"`
}

// Result is the full response for a single query.
type Result struct {
	Query        string      `json:"query"`
	Outcome      Outcome     `json:"outcome"`
	UnknownTerms []string    `json:"unknown_terms,omitempty"`
	TotalHits    int         `json:"total_hits"`
	Results      []ScoredDoc `json:"results"`
}

// Executor runs queries against one immutable index snapshot.
type Executor struct {
	store  *index.Store
	stats  *weighting.Stats
	logger *slog.Logger
}

// New creates an Executor over the given store and weighting tables.
func New(store *index.Store, stats *weighting.Stats) *Executor {
	return &Executor{
		store:  store,
		stats:  stats,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute tokenizes and ranks one query. Every returned document contains
// every resolved query term (AND semantics). Duplicated query terms are kept:
// each occurrence contributes its IDF to the score numerator, matching the
// scoring formula exactly.
func (e *Executor) Execute(ctx context.Context, rawQuery string, limit int) (*Result, error) {
	result := &Result{
		Query:   rawQuery,
		Results: []ScoredDoc{},
	}

	_, span := tracing.StartChildSpan(ctx, "query.resolve")
	terms, unknown := e.resolve(tokenizer.Tokenize(rawQuery))
	span.SetAttr("resolved", len(terms))
	span.SetAttr("unknown", len(unknown))
	span.End()

	result.UnknownTerms = unknown
	for _, term := range unknown {
		e.logger.Debug("ignoring term not in vocabulary", "term", term)
	}
	if len(terms) == 0 {
		result.Outcome = OutcomeNoQueryTerms
		return result, nil
	}

	_, span = tracing.StartChildSpan(ctx, "query.intersect")
	candidates := e.intersect(terms)
	span.SetAttr("candidates", len(candidates))
	span.End()

	if len(candidates) == 0 {
		result.Outcome = OutcomeNoMatch
		return result, nil
	}

	_, span = tracing.StartChildSpan(ctx, "query.score")
	ranked, err := e.rank(terms, candidates, limit)
	span.End()
	if err != nil {
		return nil, err
	}

	result.Outcome = OutcomeRanked
	result.TotalHits = len(candidates)
	result.Results = ranked
	return result, nil
}

// resolve maps tokens to TermIDs, preserving duplicates and query order.
// Tokens absent from the vocabulary are collected separately.
func (e *Executor) resolve(tokens []string) ([]index.TermID, []string) {
	terms := make([]index.TermID, 0, len(tokens))
	var unknown []string
	for _, token := range tokens {
		id, ok := e.store.LookupTerm(token)
		if !ok {
			unknown = append(unknown, token)
			continue
		}
		terms = append(terms, id)
	}
	return terms, unknown
}

// intersect computes the set of DocIDs containing every query term, starting
// from the term with the fewest postings so the working set only shrinks.
func (e *Executor) intersect(terms []index.TermID) map[index.DocID]struct{} {
	distinct := make(map[index.TermID]struct{}, len(terms))
	for _, term := range terms {
		distinct[term] = struct{}{}
	}

	var smallest index.TermID
	smallestLen := int(^uint(0) >> 1)
	for term := range distinct {
		if n := len(e.store.Postings(term)); n < smallestLen {
			smallestLen = n
			smallest = term
		}
	}

	candidates := make(map[index.DocID]struct{}, smallestLen)
	for docID := range e.store.Postings(smallest) {
		candidates[docID] = struct{}{}
	}
	for term := range distinct {
		if term == smallest {
			continue
		}
		postings := e.store.Postings(term)
		for docID := range candidates {
			if _, ok := postings[docID]; !ok {
				delete(candidates, docID)
			}
		}
	}
	return candidates
}

// rank scores every candidate by cosine similarity and sorts descending,
// ascending DocID on ties. The query side is weighted by raw IDF, not by
// query term frequency.
func (e *Executor) rank(terms []index.TermID, candidates map[index.DocID]struct{}, limit int) ([]ScoredDoc, error) {
	type scored struct {
		docID index.DocID
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for docID := range candidates {
		var sum float64
		for _, term := range terms {
			sum += e.stats.IDF(term) * e.stats.Importance(term, docID)
		}
		score := 0.0
		// A zero norm means every weight in the document vector is zero;
		// the document carries no signal, so it scores zero.
		if norm := e.stats.Norm(docID); norm > 0 {
			score = sum / norm
		}
		ranked = append(ranked, scored{docID: docID, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].docID < ranked[j].docID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	results := make([]ScoredDoc, 0, len(ranked))
	for _, r := range ranked {
		name, ok := e.store.DocumentName(r.docID)
		if !ok {
			return nil, fmt.Errorf("%w: posting references document %d absent from mapping",
				apperrors.ErrDocumentUnknown, r.docID)
		}
		results = append(results, ScoredDoc{Document: name, Score: r.score})
	}
	return results, nil
}
