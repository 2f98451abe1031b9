package weighting

import (
	"math"
	"testing"

	"github.com/rsrini-dev/vectorrank/internal/index"
)

const epsilon = 1e-9

// threeDocStore builds a small corpus: doc 1 has "cat" twice, doc 2 has
// "dog" once, doc 3 has one of each. Term "rare" is in the vocabulary but
// occurs nowhere.
func threeDocStore() *index.Store {
	return index.NewStore(
		map[string]index.TermID{"cat": 1, "dog": 2, "rare": 3},
		map[string]index.DocID{"doc1": 1, "doc2": 2, "doc3": 3},
		map[index.TermID]map[index.DocID]int{
			1: {1: 2, 3: 1},
			2: {2: 1, 3: 1},
			3: {},
		},
	)
}

func TestDocFreqMatchesPostings(t *testing.T) {
	store := threeDocStore()
	stats := New(store)

	for _, termID := range store.TermIDs() {
		want := len(store.Postings(termID))
		if got := stats.DocFreq(termID); got != want {
			t.Errorf("DocFreq(%d) = %d, want %d", termID, got, want)
		}
	}
}

func TestIDF(t *testing.T) {
	store := threeDocStore()
	stats := New(store)

	wantIDF := math.Log2(3.0 / 2.0)
	if got := stats.IDF(1); math.Abs(got-wantIDF) > epsilon {
		t.Errorf("IDF(cat) = %v, want %v", got, wantIDF)
	}
	if got := stats.IDF(2); math.Abs(got-wantIDF) > epsilon {
		t.Errorf("IDF(dog) = %v, want %v", got, wantIDF)
	}
}

func TestIDFUnknownTermIsZero(t *testing.T) {
	stats := New(threeDocStore())
	if got := stats.IDF(99); got != 0.0 {
		t.Errorf("IDF(99) = %v, want 0 for term outside vocabulary", got)
	}
}

func TestIDFZeroFrequencyTermIsZero(t *testing.T) {
	stats := New(threeDocStore())
	// "rare" has an empty postings block; by convention its IDF is 0
	// rather than a division by zero.
	if got := stats.IDF(3); got != 0.0 {
		t.Errorf("IDF(rare) = %v, want 0", got)
	}
}

func TestIDFTermInEveryDocumentIsZero(t *testing.T) {
	store := index.NewStore(
		map[string]index.TermID{"the": 1},
		map[string]index.DocID{"doc1": 1, "doc2": 2},
		map[index.TermID]map[index.DocID]int{
			1: {1: 5, 2: 7},
		},
	)
	stats := New(store)
	if got := stats.IDF(1); got != 0.0 {
		t.Errorf("IDF of term in all documents = %v, want 0", got)
	}
}

func TestImportance(t *testing.T) {
	store := threeDocStore()
	stats := New(store)

	idf := math.Log2(3.0 / 2.0)
	if got := stats.Importance(1, 1); math.Abs(got-2*idf) > epsilon {
		t.Errorf("Importance(cat, doc1) = %v, want %v", got, 2*idf)
	}
	if got := stats.Importance(1, 2); got != 0.0 {
		t.Errorf("Importance(cat, doc2) = %v, want 0 for absent posting", got)
	}
	if got := stats.Importance(99, 1); got != 0.0 {
		t.Errorf("Importance(unknown, doc1) = %v, want 0", got)
	}
}

func TestNorms(t *testing.T) {
	store := threeDocStore()
	stats := New(store)

	idf := math.Log2(3.0 / 2.0)
	tests := []struct {
		doc  index.DocID
		want float64
	}{
		{1, 2 * idf},            // cat×2 only
		{2, idf},                // dog×1 only
		{3, math.Sqrt(2) * idf}, // cat×1, dog×1
	}
	for _, tt := range tests {
		if got := stats.Norm(tt.doc); math.Abs(got-tt.want) > epsilon {
			t.Errorf("Norm(%d) = %v, want %v", tt.doc, got, tt.want)
		}
	}
}

func TestNormsNonNegativeAndZeroOnlyWhenEmpty(t *testing.T) {
	// doc 2 contains only a term that occurs in every document, so every
	// weight in its vector is zero and its norm must be exactly zero.
	store := index.NewStore(
		map[string]index.TermID{"common": 1, "special": 2},
		map[string]index.DocID{"doc1": 1, "doc2": 2},
		map[index.TermID]map[index.DocID]int{
			1: {1: 1, 2: 1},
			2: {1: 3},
		},
	)
	stats := New(store)

	if got := stats.Norm(2); got != 0.0 {
		t.Errorf("Norm(doc2) = %v, want 0 when all weights are 0", got)
	}
	if got := stats.Norm(1); got <= 0.0 {
		t.Errorf("Norm(doc1) = %v, want > 0", got)
	}
	for _, docID := range store.DocumentIDs() {
		if stats.Norm(docID) < 0 {
			t.Errorf("Norm(%d) is negative", docID)
		}
	}
}
