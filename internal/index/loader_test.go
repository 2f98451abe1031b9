package index

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/rsrini-dev/vectorrank/pkg/errors"
)

func TestLoadTermMapping(t *testing.T) {
	input := "cat 1\ndog 2\nfish 3\n"
	terms, err := LoadTermMapping(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadTermMapping: %v", err)
	}
	want := map[string]TermID{"cat": 1, "dog": 2, "fish": 3}
	if len(terms) != len(want) {
		t.Fatalf("got %d terms, want %d", len(terms), len(want))
	}
	for term, id := range want {
		if terms[term] != id {
			t.Errorf("terms[%q] = %d, want %d", term, terms[term], id)
		}
	}
}

func TestLoadTermMappingMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing id", "cat\n"},
		{"extra token", "cat 1 extra\n"},
		{"non-integer id", "cat one\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTermMapping(strings.NewReader(tt.input))
			if !errors.Is(err, apperrors.ErrMalformedMapping) {
				t.Errorf("got %v, want ErrMalformedMapping", err)
			}
		})
	}
}

func TestLoadDocumentMapping(t *testing.T) {
	input := "docs/a.txt 1\ndocs/b.txt 2\n"
	docs, err := LoadDocumentMapping(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadDocumentMapping: %v", err)
	}
	if docs["docs/a.txt"] != 1 || docs["docs/b.txt"] != 2 {
		t.Errorf("unexpected mapping: %v", docs)
	}
}

func TestLoadPostings(t *testing.T) {
	input := "1\n10 2\n30 1\n2\n20 1\n30 1\n"
	postings, err := LoadPostings(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadPostings: %v", err)
	}
	if got := postings[1][10]; got != 2 {
		t.Errorf("postings[1][10] = %d, want 2", got)
	}
	if got := postings[1][30]; got != 1 {
		t.Errorf("postings[1][30] = %d, want 1", got)
	}
	if got := postings[2][20]; got != 1 {
		t.Errorf("postings[2][20] = %d, want 1", got)
	}
	if len(postings[1]) != 2 || len(postings[2]) != 2 {
		t.Errorf("unexpected posting sizes: %v", postings)
	}
}

func TestLoadPostingsEmptyBlock(t *testing.T) {
	// A header with no entries is a valid degenerate term: in the
	// vocabulary, present in zero documents.
	input := "1\n2\n10 3\n"
	postings, err := LoadPostings(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadPostings: %v", err)
	}
	block, ok := postings[1]
	if !ok {
		t.Fatal("empty block for term 1 not recorded")
	}
	if len(block) != 0 {
		t.Errorf("term 1 has %d postings, want 0", len(block))
	}
	if postings[2][10] != 3 {
		t.Errorf("postings[2][10] = %d, want 3", postings[2][10])
	}
}

func TestLoadPostingsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"entry before header", "10 2\n"},
		{"three tokens", "1\n10 2 9\n"},
		{"non-integer doc id", "1\nten 2\n"},
		{"non-integer frequency", "1\n10 two\n"},
		{"negative frequency", "1\n10 -1\n"},
		{"non-integer header", "cat\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPostings(strings.NewReader(tt.input))
			if !errors.Is(err, apperrors.ErrMalformedPostings) {
				t.Errorf("got %v, want ErrMalformedPostings", err)
			}
		})
	}
}

func TestStoreAccessors(t *testing.T) {
	store := NewStore(
		map[string]TermID{"cat": 1, "dog": 2},
		map[string]DocID{"a.txt": 10, "b.txt": 20},
		map[TermID]map[DocID]int{
			1: {10: 2},
			2: {10: 1, 20: 3},
		},
	)

	if id, ok := store.LookupTerm("cat"); !ok || id != 1 {
		t.Errorf("LookupTerm(cat) = %d, %v", id, ok)
	}
	if _, ok := store.LookupTerm("bird"); ok {
		t.Error("LookupTerm(bird) should miss")
	}
	if name, ok := store.DocumentName(20); !ok || name != "b.txt" {
		t.Errorf("DocumentName(20) = %q, %v", name, ok)
	}
	if got := store.Frequency(2, 20); got != 3 {
		t.Errorf("Frequency(2, 20) = %d, want 3", got)
	}
	if got := store.Frequency(1, 20); got != 0 {
		t.Errorf("Frequency(1, 20) = %d, want 0 for absent posting", got)
	}
	if got := store.DocumentCount(); got != 2 {
		t.Errorf("DocumentCount() = %d, want 2", got)
	}
	if got := store.TermCount(); got != 2 {
		t.Errorf("TermCount() = %d, want 2", got)
	}
	if got := len(store.TermIDs()); got != 2 {
		t.Errorf("len(TermIDs()) = %d, want 2", got)
	}
}
