package executor

import (
	"context"
	"math"
	"testing"

	"github.com/rsrini-dev/vectorrank/internal/index"
	"github.com/rsrini-dev/vectorrank/internal/weighting"
)

const epsilon = 1e-9

// catDogStore is the three-document corpus: doc1 has "cat"×2, doc2 has
// "dog"×1, doc3 has "cat"×1 and "dog"×1.
func catDogStore() *index.Store {
	return index.NewStore(
		map[string]index.TermID{"cat": 1, "dog": 2, "ghost": 3},
		map[string]index.DocID{"doc1": 1, "doc2": 2, "doc3": 3},
		map[index.TermID]map[index.DocID]int{
			1: {1: 2, 3: 1},
			2: {2: 1, 3: 1},
			3: {},
		},
	)
}

func newExecutor(store *index.Store) *Executor {
	return New(store, weighting.New(store))
}

func TestExecuteBothTermsReturnsOnlyIntersection(t *testing.T) {
	exec := newExecutor(catDogStore())

	result, err := exec.Execute(context.Background(), "cat dog", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != OutcomeRanked {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeRanked)
	}
	if len(result.Results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(result.Results), result.Results)
	}
	got := result.Results[0]
	if got.Document != "doc3" {
		t.Errorf("top document = %q, want doc3", got.Document)
	}
	if got.Score <= 0 {
		t.Errorf("score = %v, want > 0", got.Score)
	}
	// score = (idf·(1·idf) + idf·(1·idf)) / (√2·idf) = √2·idf
	want := math.Sqrt(2) * math.Log2(3.0/2.0)
	if math.Abs(got.Score-want) > epsilon {
		t.Errorf("score = %v, want %v", got.Score, want)
	}
}

func TestExecuteUnknownTermsDroppedAndReported(t *testing.T) {
	exec := newExecutor(catDogStore())

	result, err := exec.Execute(context.Background(), "cat unicorn dragon", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != OutcomeRanked {
		t.Fatalf("outcome = %s, want %s", result.Outcome, OutcomeRanked)
	}
	if len(result.UnknownTerms) != 2 {
		t.Fatalf("unknown terms = %v, want [unicorn dragon]", result.UnknownTerms)
	}
	// Query proceeds with "cat" alone: doc1 and doc3 match.
	if len(result.Results) != 2 {
		t.Errorf("got %d results, want 2", len(result.Results))
	}
}

func TestExecuteNoQueryTerms(t *testing.T) {
	exec := newExecutor(catDogStore())

	for _, query := range []string{"unicorn dragon", "", "?!.,"} {
		result, err := exec.Execute(context.Background(), query, 0)
		if err != nil {
			t.Fatalf("Execute(%q): %v", query, err)
		}
		if result.Outcome != OutcomeNoQueryTerms {
			t.Errorf("Execute(%q) outcome = %s, want %s", query, result.Outcome, OutcomeNoQueryTerms)
		}
		if len(result.Results) != 0 {
			t.Errorf("Execute(%q) returned results: %v", query, result.Results)
		}
	}
}

func TestExecuteNoMatchingDocuments(t *testing.T) {
	// "cat" and "dog" both exist but only doc3 holds both; add "fish"
	// which lives in no document doc3 shares.
	store := index.NewStore(
		map[string]index.TermID{"cat": 1, "dog": 2, "fish": 3},
		map[string]index.DocID{"doc1": 1, "doc2": 2, "doc3": 3},
		map[index.TermID]map[index.DocID]int{
			1: {1: 2, 3: 1},
			2: {2: 1, 3: 1},
			3: {1: 1},
		},
	)
	exec := newExecutor(store)

	result, err := exec.Execute(context.Background(), "cat dog fish", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != OutcomeNoMatch {
		t.Errorf("outcome = %s, want %s", result.Outcome, OutcomeNoMatch)
	}
	if len(result.Results) != 0 {
		t.Errorf("results = %v, want none", result.Results)
	}
}

func TestExecuteDegenerateTermYieldsNoMatch(t *testing.T) {
	// "ghost" is a vocabulary term with an empty postings block, so its
	// candidate set is empty and the intersection is too.
	exec := newExecutor(catDogStore())

	result, err := exec.Execute(context.Background(), "ghost", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != OutcomeNoMatch {
		t.Errorf("outcome = %s, want %s", result.Outcome, OutcomeNoMatch)
	}
}

func TestExecuteScoreInvariantUnderTermReorder(t *testing.T) {
	exec := newExecutor(catDogStore())

	a, err := exec.Execute(context.Background(), "cat dog", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	b, err := exec.Execute(context.Background(), "dog cat", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(a.Results) != len(b.Results) {
		t.Fatalf("result counts differ: %d vs %d", len(a.Results), len(b.Results))
	}
	for i := range a.Results {
		if a.Results[i].Document != b.Results[i].Document {
			t.Errorf("document order differs at %d: %q vs %q", i, a.Results[i].Document, b.Results[i].Document)
		}
		if math.Abs(a.Results[i].Score-b.Results[i].Score) > epsilon {
			t.Errorf("scores differ at %d: %v vs %v", i, a.Results[i].Score, b.Results[i].Score)
		}
	}
}

func TestExecuteDuplicateTermsIncreaseScore(t *testing.T) {
	exec := newExecutor(catDogStore())

	single, err := exec.Execute(context.Background(), "cat", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	double, err := exec.Execute(context.Background(), "cat cat", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(single.Results) != len(double.Results) {
		t.Fatalf("candidate sets differ: %d vs %d", len(single.Results), len(double.Results))
	}
	// Duplicates add to the IDF-weighted numerator while the document
	// norm is unchanged, so every score strictly increases.
	for i := range single.Results {
		if double.Results[i].Score <= single.Results[i].Score {
			t.Errorf("duplicate query did not increase score for %q: %v vs %v",
				single.Results[i].Document, double.Results[i].Score, single.Results[i].Score)
		}
	}
}

func TestExecuteTieBreakByDocumentID(t *testing.T) {
	// doc1 and doc2 contain "fox" identically; doc3 exists so the term
	// is not in every document and IDF is positive.
	store := index.NewStore(
		map[string]index.TermID{"fox": 1, "owl": 2},
		map[string]index.DocID{"doc1": 1, "doc2": 2, "doc3": 3},
		map[index.TermID]map[index.DocID]int{
			1: {1: 1, 2: 1},
			2: {3: 1},
		},
	)
	exec := newExecutor(store)

	result, err := exec.Execute(context.Background(), "fox", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Results) != 2 {
		t.Fatalf("got %d results, want 2", len(result.Results))
	}
	if math.Abs(result.Results[0].Score-result.Results[1].Score) > epsilon {
		t.Fatalf("expected a tie, got %v and %v", result.Results[0].Score, result.Results[1].Score)
	}
	if result.Results[0].Document != "doc1" || result.Results[1].Document != "doc2" {
		t.Errorf("tie not broken by ascending document id: %v", result.Results)
	}
}

func TestExecuteRanksByDescendingScore(t *testing.T) {
	// doc1 mentions "cat" twice, doc3 once; doc1 also has nothing else,
	// giving it a larger norm, so verify actual ordering rather than
	// assuming frequency wins.
	exec := newExecutor(catDogStore())

	result, err := exec.Execute(context.Background(), "cat", 0)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Outcome != OutcomeRanked || len(result.Results) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	for i := 1; i < len(result.Results); i++ {
		if result.Results[i].Score > result.Results[i-1].Score {
			t.Errorf("results not sorted descending: %v", result.Results)
		}
	}
	if result.TotalHits != 2 {
		t.Errorf("TotalHits = %d, want 2", result.TotalHits)
	}
}

func TestExecuteLimit(t *testing.T) {
	exec := newExecutor(catDogStore())

	result, err := exec.Execute(context.Background(), "cat", 1)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Results) != 1 {
		t.Errorf("got %d results with limit 1", len(result.Results))
	}
	if result.TotalHits != 2 {
		t.Errorf("TotalHits = %d, want 2 despite limit", result.TotalHits)
	}
}
