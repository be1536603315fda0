package netagger

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/hack-pad/hackpadfs"

	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// Pattern is one compiled NE pattern
type Pattern struct {
	Type string
	Expr string
	re   *regexp2.Regexp
}

// RegexTagger matches NE patterns written in Java/.NET regex syntax.
type RegexTagger struct {
	patterns []Pattern
}

// NewRegexTagger compiles patterns keyed by NE type.
func NewRegexTagger(patterns map[string][]string) (*RegexTagger, error) {
	types := make([]string, 0, len(patterns))
	for typ := range patterns {
		types = append(types, typ)
	}
	sort.Strings(types)

	t := &RegexTagger{}
	for _, typ := range types {
		for _, expr := range patterns[typ] {
			if err := t.add(typ, expr); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (t *RegexTagger) add(typ, expr string) error {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return fmt.Errorf("compile pattern for %s: %w", typ, err)
	}
	t.patterns = append(t.patterns, Pattern{Type: typ, Expr: expr, re: re})
	return nil
}

// LoadRegexTagger reads a pattern file: one "NEtype<TAB>regex" per line,
// # comments and blank lines ignored.
func LoadRegexTagger(fsys hackpadfs.FS, name string) (*RegexTagger, error) {
	data, err := hackpadfs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read patterns %s: %w", name, err)
	}

	t := &RegexTagger{}
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		typ, expr, ok := strings.Cut(line, "\t")
		if !ok || strings.TrimSpace(typ) == "" || expr == "" {
			return nil, fmt.Errorf("%s:%d: expected NEtype<TAB>regex", name, i+1)
		}
		if err := t.add(strings.TrimSpace(typ), expr); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, i+1, err)
		}
	}
	return t, nil
}

// Types returns the NE types, sorted and unique
func (t *RegexTagger) Types() []string {
	var out []string
	for _, p := range t.patterns {
		out = appendUnique(out, p.Type)
	}
	sort.Strings(out)
	return out
}

// Patterns returns the loaded patterns
func (t *RegexTagger) Patterns() []Pattern {
	return append([]Pattern(nil), t.patterns...)
}

// Tag runs every pattern over text. A pattern that hits regexp2's match
// timeout contributes what it found so far.
func (t *RegexTagger) Tag(text string) []Entity {
	if len(t.patterns) == 0 || text == "" {
		return nil
	}

	offsets := runeOffsets(text)
	var out []Entity
	for _, p := range t.patterns {
		m, err := p.re.FindStringMatch(text)
		for err == nil && m != nil {
			if m.Length > 0 {
				start, end := offsets[m.Index], offsets[m.Index+m.Length]
				out = append(out, Entity{
					Type:   p.Type,
					Text:   text[start:end],
					Range:  chunker.NewRange(start, end),
					Source: SourceRegex,
				})
			}
			m, err = p.re.FindNextMatch(m)
		}
	}
	return out
}

// runeOffsets maps rune index -> byte offset; regexp2 reports rune indices.
func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
