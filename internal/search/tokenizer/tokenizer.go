// Package tokenizer normalises raw query text for term resolution. It
// lower-cases the input, splits on whitespace, and strips a fixed punctuation
// set from both ends of each token. There is deliberately no stemming or
// stop-word removal: the index was built with the same minimal normalisation.
package tokenizer

import "strings"

// punctuation is the fixed set stripped from token boundaries.
const punctuation = " .,!#$%^&*();:\n\t\\\"?!{}[]<>"

// Tokenize splits raw text into normalised query terms. Tokens that are
// nothing but punctuation are dropped.
func Tokenize(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	terms := make([]string, 0, len(words))
	for _, word := range words {
		term := strings.Trim(word, punctuation)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}
