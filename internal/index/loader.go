package index

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/rsrini-dev/vectorrank/pkg/errors"
)

// LoadTermMapping reads a term→TermID mapping, one `<term> <id>` pair per
// line. A line that does not contain exactly a term and an integer ID fails
// the whole load.
func LoadTermMapping(r io.Reader) (map[string]TermID, error) {
	terms := make(map[string]TermID)
	err := eachLine(r, func(lineNo int, fields []string) error {
		if len(fields) != 2 {
			return fmt.Errorf("line %d: %w: want term and id, got %d tokens",
				lineNo, apperrors.ErrMalformedMapping, len(fields))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w: bad term id %q",
				lineNo, apperrors.ErrMalformedMapping, fields[1])
		}
		terms[fields[0]] = TermID(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return terms, nil
}

// LoadDocumentMapping reads a documentName→DocID mapping in the same
// line format as the term mapping. Its entry count is the corpus size N.
func LoadDocumentMapping(r io.Reader) (map[string]DocID, error) {
	docs := make(map[string]DocID)
	err := eachLine(r, func(lineNo int, fields []string) error {
		if len(fields) != 2 {
			return fmt.Errorf("line %d: %w: want document name and id, got %d tokens",
				lineNo, apperrors.ErrMalformedMapping, len(fields))
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: %w: bad document id %q",
				lineNo, apperrors.ErrMalformedMapping, fields[1])
		}
		docs[fields[0]] = DocID(id)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// LoadPostings reads the block-structured postings file. A line holding a
// single integer opens the block for that TermID; each following
// `<docID> <frequency>` line belongs to it until the next single-token line.
// A block header with no entries is valid: the term exists in the vocabulary
// but occurs in no document.
func LoadPostings(r io.Reader) (map[TermID]map[DocID]int, error) {
	postings := make(map[TermID]map[DocID]int)
	var current map[DocID]int
	inBlock := false

	err := eachLine(r, func(lineNo int, fields []string) error {
		switch len(fields) {
		case 1:
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return fmt.Errorf("line %d: %w: bad term id %q",
					lineNo, apperrors.ErrMalformedPostings, fields[0])
			}
			block, ok := postings[TermID(id)]
			if !ok {
				block = make(map[DocID]int)
				postings[TermID(id)] = block
			}
			current = block
			inBlock = true
			return nil
		case 2:
			if !inBlock {
				return fmt.Errorf("line %d: %w: posting entry before any term header",
					lineNo, apperrors.ErrMalformedPostings)
			}
			docID, err := strconv.Atoi(fields[0])
			if err != nil {
				return fmt.Errorf("line %d: %w: bad document id %q",
					lineNo, apperrors.ErrMalformedPostings, fields[0])
			}
			freq, err := strconv.Atoi(fields[1])
			if err != nil || freq < 0 {
				return fmt.Errorf("line %d: %w: bad frequency %q",
					lineNo, apperrors.ErrMalformedPostings, fields[1])
			}
			current[DocID(docID)] = freq
			return nil
		default:
			return fmt.Errorf("line %d: %w: got %d tokens",
				lineNo, apperrors.ErrMalformedPostings, len(fields))
		}
	})
	if err != nil {
		return nil, err
	}
	return postings, nil
}

// Load reads all three index files and assembles the Store. Any failure is
// fatal to the caller: no partial index is ever returned.
func Load(documentsPath, termsPath, postingsPath string) (*Store, error) {
	docs, err := loadFile(documentsPath, LoadDocumentMapping)
	if err != nil {
		return nil, fmt.Errorf("loading document mapping: %w", err)
	}
	terms, err := loadFile(termsPath, LoadTermMapping)
	if err != nil {
		return nil, fmt.Errorf("loading term mapping: %w", err)
	}
	postings, err := loadFile(postingsPath, LoadPostings)
	if err != nil {
		return nil, fmt.Errorf("loading postings: %w", err)
	}
	return NewStore(terms, docs, postings), nil
}

func loadFile[T any](path string, load func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	result, err := load(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return result, nil
}

// eachLine scans r line by line, splitting on whitespace, and passes the
// fields of each non-empty line to fn.
func eachLine(r io.Reader, fn func(lineNo int, fields []string) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(lineNo, strings.Fields(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
