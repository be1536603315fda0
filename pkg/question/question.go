// Package question interprets natural-language questions with hand-written
// patterns. Each pattern file names an answer property (DATEOFBIRTH,
// CAPITAL...); a pattern marks the question's target object with <TO>.
package question

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/hack-pad/hackpadfs"

	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

// targetTag marks the target object inside a pattern.
const targetTag = "<TO>"

const targetGroup = "to"

// ErrNoTarget is returned for a pattern without exactly one <TO>.
var ErrNoTarget = errors.New("question: pattern must contain <TO> exactly once")

// Pattern is one compiled question pattern.
type Pattern struct {
	Property string
	Source   string
	re       *regexp2.Regexp
}

// Interpretation is a question matched against a pattern.
type Interpretation struct {
	Property string            `json:"property"`
	Target   string            `json:"target"`
	Range    chunker.TextRange `json:"range"`
	Pattern  string            `json:"pattern"`
}

// Interpreter matches questions against patterns grouped by property.
type Interpreter struct {
	patterns []Pattern
}

// NewInterpreter compiles patterns keyed by property.
func NewInterpreter(patterns map[string][]string) (*Interpreter, error) {
	props := make([]string, 0, len(patterns))
	for p := range patterns {
		props = append(props, p)
	}
	sort.Strings(props)

	in := &Interpreter{}
	for _, prop := range props {
		for _, src := range patterns[prop] {
			if err := in.add(prop, src); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}

// LoadPatterns reads every file in dir. The file name is the property; each
// non-blank line not starting with # is a pattern.
func LoadPatterns(fsys hackpadfs.FS, dir string) (*Interpreter, error) {
	entries, err := hackpadfs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read pattern dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	in := &Interpreter{}
	for _, n := range names {
		name := path.Join(dir, n)
		data, err := hackpadfs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read patterns %s: %w", name, err)
		}
		prop := strings.ToUpper(strings.TrimSuffix(n, path.Ext(n)))
		for i, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			if err := in.add(prop, line); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, i+1, err)
			}
		}
	}
	return in, nil
}

func (in *Interpreter) add(prop, src string) error {
	if strings.Count(src, targetTag) != 1 {
		return fmt.Errorf("%q: %w", src, ErrNoTarget)
	}
	expr := "^(?:" + strings.Replace(src, targetTag, "(?<"+targetGroup+">.+?)", 1) + ")$"
	re, err := regexp2.Compile(expr, regexp2.IgnoreCase)
	if err != nil {
		return fmt.Errorf("compile %q: %w", src, err)
	}
	in.patterns = append(in.patterns, Pattern{Property: prop, Source: src, re: re})
	return nil
}

// Len returns the number of patterns.
func (in *Interpreter) Len() int {
	return len(in.patterns)
}

// Properties returns the distinct properties, sorted.
func (in *Interpreter) Properties() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range in.patterns {
		if !seen[p.Property] {
			seen[p.Property] = true
			out = append(out, p.Property)
		}
	}
	sort.Strings(out)
	return out
}

// Interpret matches question against every pattern. Whitespace is collapsed
// and trailing sentence punctuation dropped before matching; Range points
// into question as given. Results are ordered by property, then pattern.
func (in *Interpreter) Interpret(question string) ([]Interpretation, error) {
	derived, mapping := offsetmap.CollapseString(question)
	derived = strings.TrimRight(derived, "?.! ")
	if derived == "" {
		return nil, nil
	}
	offsets := runeOffsets(derived)

	var out []Interpretation
	for _, p := range in.patterns {
		m, err := p.re.FindStringMatch(derived)
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", p.Source, err)
		}
		if m == nil {
			continue
		}
		g := m.GroupByName(targetGroup)
		if g == nil || g.Length == 0 {
			continue
		}

		start, end := offsets[g.Index], offsets[g.Index+g.Length]
		from, to, err := mapping.TranslateRange(start, end)
		if err != nil {
			return nil, fmt.Errorf("map target of %q: %w", p.Source, err)
		}
		out = append(out, Interpretation{
			Property: p.Property,
			Target:   derived[start:end],
			Range:    chunker.NewRange(from, to),
			Pattern:  p.Source,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Property < out[j].Property })
	return out, nil
}

func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}
