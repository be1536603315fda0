// Package netagger finds named entities with gazetteer lists, regular
// expression patterns and the statistical chunker from prose.
package netagger

import (
	"bufio"
	"bytes"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hack-pad/hackpadfs"
	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// ============================================================================
// Entity
// ============================================================================

// Source names the tagger that produced an entity
type Source string

const (
	SourceList  Source = "list"
	SourceRegex Source = "regex"
	SourceModel Source = "model"
)

// Entity is a typed span of text
type Entity struct {
	Type   string            `json:"type"`
	Text   string            `json:"text"`
	Range  chunker.TextRange `json:"range"`
	Source Source            `json:"source"`
}

// EntityTagger finds entities in text. Ranges are byte offsets into text.
type EntityTagger interface {
	Tag(text string) []Entity
	Types() []string
}

// ============================================================================
// ListTagger - gazetteer lists over a single Aho-Corasick automaton
// ============================================================================

// ListTagger matches names from per-type lists. One automaton covers every
// list; a name listed under several types yields one entity per type.
type ListTagger struct {
	ac ahocorasick.AhoCorasick

	// Pattern index -> NE types
	patternToTypes [][]string

	// Normalized pattern -> pattern index
	patternIndex map[string]int

	patterns []string
	types    []string
}

// NewListTagger compiles lists keyed by NE type.
func NewListTagger(lists map[string][]string) *ListTagger {
	t := &ListTagger{patternIndex: make(map[string]int)}

	types := make([]string, 0, len(lists))
	for typ := range lists {
		types = append(types, typ)
	}
	sort.Strings(types)
	t.types = types

	for _, typ := range types {
		for _, name := range lists[typ] {
			key := normalizeName(name)
			if key == "" {
				continue
			}
			if idx, ok := t.patternIndex[key]; ok {
				t.patternToTypes[idx] = appendUnique(t.patternToTypes[idx], typ)
				continue
			}
			t.patternIndex[key] = len(t.patterns)
			t.patterns = append(t.patterns, key)
			t.patternToTypes = append(t.patternToTypes, []string{typ})
		}
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  false,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	t.ac = builder.Build(t.patterns)
	return t
}

// LoadListTagger reads every list file in dir. The file name without its
// extension is the NE type (NEcity.lst -> NEcity); one name per line, lines
// starting with # are comments.
func LoadListTagger(fsys hackpadfs.FS, dir string) (*ListTagger, error) {
	entries, err := hackpadfs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read list dir %s: %w", dir, err)
	}

	lists := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		name := path.Join(dir, e.Name())
		data, err := hackpadfs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read list %s: %w", name, err)
		}
		typ := strings.TrimSuffix(e.Name(), path.Ext(e.Name()))
		lists[typ] = append(lists[typ], readLines(data)...)
	}
	return NewListTagger(lists), nil
}

// Types returns the NE types, sorted
func (t *ListTagger) Types() []string {
	return append([]string(nil), t.types...)
}

// Len returns the number of distinct names
func (t *ListTagger) Len() int {
	return len(t.patterns)
}

// Lookup returns the types a name is listed under
func (t *ListTagger) Lookup(name string) []string {
	idx, ok := t.patternIndex[normalizeName(name)]
	if !ok {
		return nil
	}
	return append([]string(nil), t.patternToTypes[idx]...)
}

// Tag finds listed names in text. Matches must start and end on word
// boundaries so "Paris" does not fire inside "Parisian", and they never
// overlap: the leftmost, then longest, name wins. A nested name is reported
// only when the longer one fails the boundary check.
func (t *ListTagger) Tag(text string) []Entity {
	if len(t.patterns) == 0 {
		return nil
	}

	matches := t.ac.FindAll(text)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Start() != matches[j].Start() {
			return matches[i].Start() < matches[j].Start()
		}
		return matches[i].End() > matches[j].End()
	})

	var out []Entity
	lastEnd := 0
	for _, m := range matches {
		start, end := m.Start(), m.End()
		if !wordBoundary(text, start, end) || start < lastEnd {
			continue
		}
		lastEnd = end
		for _, typ := range t.patternToTypes[m.Pattern()] {
			out = append(out, Entity{
				Type:   typ,
				Text:   text[start:end],
				Range:  chunker.NewRange(start, end),
				Source: SourceList,
			})
		}
	}
	return out
}

// ============================================================================
// Helpers
// ============================================================================

// normalizeName lowercases and collapses inner whitespace. Only ASCII is case
// folded so byte lengths match the automaton's case-insensitive matching.
func normalizeName(s string) string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = asciiLower(f)
	}
	return strings.Join(fields, " ")
}

func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func readLines(data []byte) []string {
	var out []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func appendUnique(slice []string, item string) []string {
	for _, s := range slice {
		if s == item {
			return slice
		}
	}
	return append(slice, item)
}
