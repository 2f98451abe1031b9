// Package index holds the in-memory inverted index consumed by the ranking
// engine: term and document ID mappings plus per-term posting maps. The index
// is loaded once from precomputed files and is read-only afterwards, so it can
// be shared across concurrent queries without locking.
package index

// TermID is the opaque integer identifier of a vocabulary term.
type TermID int

// DocID is the opaque integer identifier of a corpus document.
type DocID int

// Store owns the loaded index structures. All maps are populated at load time
// and never mutated again for the life of the process.
type Store struct {
	terms    map[string]TermID
	docs     map[string]DocID
	docNames map[DocID]string
	postings map[TermID]map[DocID]int
}

// NewStore assembles a Store from already-loaded mappings and postings.
func NewStore(terms map[string]TermID, docs map[string]DocID, postings map[TermID]map[DocID]int) *Store {
	docNames := make(map[DocID]string, len(docs))
	for name, id := range docs {
		docNames[id] = name
	}
	return &Store{
		terms:    terms,
		docs:     docs,
		docNames: docNames,
		postings: postings,
	}
}

// LookupTerm resolves a normalized term to its TermID by direct key lookup.
func (s *Store) LookupTerm(term string) (TermID, bool) {
	id, ok := s.terms[term]
	return id, ok
}

// LookupDocument resolves a document name to its DocID.
func (s *Store) LookupDocument(name string) (DocID, bool) {
	id, ok := s.docs[name]
	return id, ok
}

// DocumentName maps a DocID back to its external name.
func (s *Store) DocumentName(id DocID) (string, bool) {
	name, ok := s.docNames[id]
	return name, ok
}

// Postings returns the DocID→frequency map for a term, or nil when the term
// has no postings. Callers must not mutate the returned map.
func (s *Store) Postings(id TermID) map[DocID]int {
	return s.postings[id]
}

// Frequency returns the raw occurrence count of a term in a document, or 0
// when no such posting exists.
func (s *Store) Frequency(term TermID, doc DocID) int {
	return s.postings[term][doc]
}

// DocumentCount returns the corpus size N.
func (s *Store) DocumentCount() int {
	return len(s.docs)
}

// TermCount returns the vocabulary size.
func (s *Store) TermCount() int {
	return len(s.terms)
}

// TermIDs returns every TermID in the vocabulary, including terms that have
// no postings.
func (s *Store) TermIDs() []TermID {
	ids := make([]TermID, 0, len(s.terms))
	for _, id := range s.terms {
		ids = append(ids, id)
	}
	return ids
}

// DocumentIDs returns every DocID in the corpus.
func (s *Store) DocumentIDs() []DocID {
	ids := make([]DocID, 0, len(s.docs))
	for _, id := range s.docs {
		ids = append(ids, id)
	}
	return ids
}
