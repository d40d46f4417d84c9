// Package vocab loads the vocabulary corpus and derives the per-level word
// windows: the contiguous target slice, the fixed anchor pool, and the
// randomized legacy reinforcement sample.
package vocab

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Corpus is the ordered sequence of distinct target-language words.
// Order is the source-file order and is stable across runs; level windowing
// depends on that stability.
type Corpus []string

// LoadCorpus reads a pipe-delimited vocabulary file. The first row is a
// header; words come from the "german" column, or the first column when no
// header matches. Duplicates are dropped, first occurrence wins.
func LoadCorpus(path string) (Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocab file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '|'
	r.FieldsPerRecord = -1 // source rows vary in trailing columns

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse vocab file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("vocab file %s is empty", path)
	}

	col := 0
	for i, name := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(name), "german") {
			col = i
			break
		}
	}

	seen := make(map[string]bool)
	var corpus Corpus
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		word := strings.TrimSpace(row[col])
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		corpus = append(corpus, word)
	}

	if len(corpus) == 0 {
		return nil, fmt.Errorf("vocab file %s contains no words", path)
	}
	return corpus, nil
}

// Target returns the contiguous corpus slice introduced at the given level:
// corpus[(level-1)*batchSize : level*batchSize], clamped at the corpus end.
// A level past the end of the corpus yields an empty slice.
func (c Corpus) Target(level, batchSize int) []string {
	start := (level - 1) * batchSize
	if start < 0 || start >= len(c) {
		return nil
	}
	end := start + batchSize
	if end > len(c) {
		end = len(c)
	}
	return c[start:end]
}
