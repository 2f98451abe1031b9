// Package weighting derives TF-IDF statistics from a loaded index: per-term
// document frequencies, inverse document frequencies, and the Euclidean norm
// of every document's weight vector. Everything is computed once after index
// load and cached; the tables must be rebuilt in full if the index is ever
// reloaded.
package weighting

import (
	"math"

	"github.com/rsrini-dev/vectorrank/internal/index"
)

// Stats holds the derived weighting tables for one loaded index.
type Stats struct {
	store    *index.Store
	docFreq  map[index.TermID]int
	norms    map[index.DocID]float64
	docCount int
}

// New computes document frequencies and document norms for the given store.
func New(store *index.Store) *Stats {
	s := &Stats{
		store:    store,
		docFreq:  make(map[index.TermID]int, store.TermCount()),
		docCount: store.DocumentCount(),
	}
	for _, termID := range store.TermIDs() {
		s.docFreq[termID] = len(store.Postings(termID))
	}
	s.norms = s.computeNorms()
	return s
}

// DocFreq returns the number of documents containing the term, or 0 for terms
// outside the vocabulary.
func (s *Stats) DocFreq(term index.TermID) int {
	return s.docFreq[term]
}

// IDF returns log2(N / documentFrequency) for a vocabulary term. Terms
// unknown to the vocabulary and terms that occur in no document both yield
// 0: "no information", not an error. The zero-frequency convention closes
// the division-by-zero hole left open by an empty postings block, which the
// file format treats as valid input.
func (s *Stats) IDF(term index.TermID) float64 {
	df, ok := s.docFreq[term]
	if !ok || df == 0 {
		return 0.0
	}
	return math.Log2(float64(s.docCount) / float64(df))
}

// Importance returns the TF-IDF weight of a term in a document: raw frequency
// times IDF, or 0 when the posting does not exist.
func (s *Stats) Importance(term index.TermID, doc index.DocID) float64 {
	freq := s.store.Frequency(term, doc)
	if freq == 0 {
		return 0.0
	}
	return float64(freq) * s.IDF(term)
}

// Norm returns the precomputed Euclidean length of the document's full
// TF-IDF vector over the whole vocabulary.
func (s *Stats) Norm(doc index.DocID) float64 {
	return s.norms[doc]
}

// computeNorms accumulates squared weights per document by walking postings
// term by term. Terms absent from a document contribute zero to its vector,
// so this matches the full vocabulary×documents sweep exactly.
func (s *Stats) computeNorms() map[index.DocID]float64 {
	sums := make(map[index.DocID]float64, s.docCount)
	for _, docID := range s.store.DocumentIDs() {
		sums[docID] = 0.0
	}
	for _, termID := range s.store.TermIDs() {
		idf := s.IDF(termID)
		if idf == 0 {
			continue
		}
		for docID, freq := range s.store.Postings(termID) {
			w := float64(freq) * idf
			sums[docID] += w * w
		}
	}
	norms := make(map[index.DocID]float64, len(sums))
	for docID, sum := range sums {
		norms[docID] = math.Sqrt(sum)
	}
	return norms
}
