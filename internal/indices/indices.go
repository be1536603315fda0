// Package indices holds read-only word lists loaded from the resource bundle:
// function words, prepositions, irregular verbs and word frequencies.
package indices

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/hack-pad/hackpadfs"
)

// normalize lowercases and collapses whitespace.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// readLines calls fn for every non-blank line of name that is not a comment.
// fn receives the 1-based line number.
func readLines(fsys hackpadfs.FS, name string, fn func(lineNo int, line string) error) error {
	data, err := hackpadfs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read index %s: %w", name, err)
	}

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
	}
	return sc.Err()
}

// =============================================================================
// Word sets
// =============================================================================

// WordSet is a case-insensitive set of words or multi-word phrases.
type WordSet struct {
	words map[string]struct{}
}

func loadWordSet(fsys hackpadfs.FS, name string) (*WordSet, error) {
	s := &WordSet{words: make(map[string]struct{})}
	err := readLines(fsys, name, func(_ int, line string) error {
		s.words[normalize(line)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewWordSet builds a set from words.
func NewWordSet(words ...string) *WordSet {
	s := &WordSet{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		if k := normalize(w); k != "" {
			s.words[k] = struct{}{}
		}
	}
	return s
}

// Contains reports whether word is in the set, ignoring case.
func (s *WordSet) Contains(word string) bool {
	if s == nil {
		return false
	}
	_, ok := s.words[normalize(word)]
	return ok
}

// Len returns the number of entries.
func (s *WordSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.words)
}

// FunctionWords are closed-class words (determiners, pronouns, auxiliaries...).
// The bundled list excludes numbers.
type FunctionWords struct{ *WordSet }

// LoadFunctionWords reads one word per line.
func LoadFunctionWords(fsys hackpadfs.FS, name string) (*FunctionWords, error) {
	s, err := loadWordSet(fsys, name)
	if err != nil {
		return nil, err
	}
	return &FunctionWords{s}, nil
}

// Prepositions holds single and multi-word prepositions ("in front of").
type Prepositions struct{ *WordSet }

// LoadPrepositions reads one preposition per line.
func LoadPrepositions(fsys hackpadfs.FS, name string) (*Prepositions, error) {
	s, err := loadWordSet(fsys, name)
	if err != nil {
		return nil, err
	}
	return &Prepositions{s}, nil
}
