// Package offsetmap normalizes whitespace in a string and keeps a mapping from
// offsets in the normalized (derived) string back to the original string.
//
// Taggers, chunkers and the parser all work on the derived text; anything that
// has to point back into the source text (highlighting, answer extraction)
// translates its spans through a Mapping.
package offsetmap

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================================
// Policy
// ============================================================================

// Policy selects how whitespace runs are treated when deriving a string.
type Policy int

const (
	// Collapse replaces every internal whitespace run with a single ASCII
	// space and drops leading and trailing runs.
	Collapse Policy = iota
	// Remove deletes every whitespace run.
	Remove
)

// String returns a readable name
func (p Policy) String() string {
	switch p {
	case Collapse:
		return "collapse"
	case Remove:
		return "remove"
	default:
		return "unknown"
	}
}

// ParsePolicy parses a policy name. The empty string is Collapse.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "collapse":
		return Collapse, nil
	case "remove":
		return Remove, nil
	}
	return Collapse, fmt.Errorf("offsetmap: unknown policy %q", s)
}

// ============================================================================
// Interval / Mapping
// ============================================================================

// Interval is a half-open span [DerivedStart, DerivedEnd) of the derived
// string. Any offset d inside it maps to d + Delta in the original.
type Interval struct {
	DerivedStart int `json:"derivedStart"`
	DerivedEnd   int `json:"derivedEnd"`
	Delta        int `json:"delta"`
}

// Len returns the number of derived bytes covered
func (iv Interval) Len() int {
	return iv.DerivedEnd - iv.DerivedStart
}

// Contains reports whether derived offset d falls inside the interval
func (iv Interval) Contains(d int) bool {
	return iv.DerivedStart <= d && d < iv.DerivedEnd
}

// Mapping translates derived offsets to original offsets.
// It is immutable once built and safe for concurrent use.
type Mapping struct {
	intervals   []Interval
	derivedLen  int
	originalLen int
}

// Intervals returns a copy of the interval sequence.
func (m *Mapping) Intervals() []Interval {
	out := make([]Interval, len(m.intervals))
	copy(out, m.intervals)
	return out
}

// Len returns the number of intervals.
func (m *Mapping) Len() int { return len(m.intervals) }

// DerivedLen returns the byte length of the derived string.
func (m *Mapping) DerivedLen() int { return m.derivedLen }

// OriginalLen returns the byte length of the original string.
func (m *Mapping) OriginalLen() int { return m.originalLen }

// IsIdentity reports whether every derived offset maps to itself.
func (m *Mapping) IsIdentity() bool {
	for _, iv := range m.intervals {
		if iv.Delta != 0 {
			return false
		}
	}
	return true
}

// ============================================================================
// Build
// ============================================================================

// run is one maximal whitespace run [start, end) in the original.
type run struct {
	start int
	end   int
}

// CollapseString is shorthand for Build(original, Collapse).
func CollapseString(original string) (string, *Mapping) {
	return Build(original, Collapse)
}

// RemoveString is shorthand for Build(original, Remove).
func RemoveString(original string) (string, *Mapping) {
	return Build(original, Remove)
}

// Build derives a whitespace-normalized string from original and returns it
// together with the mapping back to original offsets. It never fails.
func Build(original string, policy Policy) (string, *Mapping) {
	runs := whitespaceRuns(original)

	var derived strings.Builder
	derived.Grow(len(original))

	prev := 0
	for _, r := range runs {
		derived.WriteString(original[prev:r.start])
		if policy == Collapse && r.start > 0 && r.end < len(original) {
			derived.WriteByte(' ')
		}
		prev = r.end
	}
	derived.WriteString(original[prev:])

	out := derived.String()
	return out, &Mapping{
		intervals:   fold(runs, len(original), len(out), policy),
		derivedLen:  len(out),
		originalLen: len(original),
	}
}

// fold turns the whitespace runs into closed intervals. Each run yields the
// derived boundary where the new delta starts to apply.
func fold(runs []run, originalLen, derivedLen int, policy Policy) []Interval {
	if derivedLen == 0 {
		return nil
	}

	intervals := make([]Interval, 0, len(runs)+1)
	start, delta := 0, 0

	for _, r := range runs {
		length := r.end - r.start
		boundary := r.start - delta
		next := delta + length

		if policy == Collapse && r.start > 0 && r.end < originalLen {
			// the placeholder keeps the old delta and points at the run start
			boundary++
			next--
		}

		if next == delta {
			continue
		}
		if boundary > start {
			intervals = append(intervals, Interval{DerivedStart: start, DerivedEnd: boundary, Delta: delta})
			start = boundary
		}
		delta = next
	}

	if derivedLen > start {
		intervals = append(intervals, Interval{DerivedStart: start, DerivedEnd: derivedLen, Delta: delta})
	}
	return intervals
}

// whitespaceRuns finds every maximal run of unicode.IsSpace runes.
func whitespaceRuns(s string) []run {
	var runs []run
	start := -1

	for i, ch := range s {
		if unicode.IsSpace(ch) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			runs = append(runs, run{start: start, end: i})
			start = -1
		}
	}
	if start != -1 {
		runs = append(runs, run{start: start, end: len(s)})
	}
	return runs
}

// ============================================================================
// Translate
// ============================================================================

// Translate maps a derived offset to the corresponding original offset.
// Offsets outside [0, DerivedLen) yield an *OutOfRangeError.
func (m *Mapping) Translate(d int) (int, error) {
	if d < 0 || d >= m.derivedLen {
		return 0, &OutOfRangeError{Offset: d, Limit: m.derivedLen}
	}
	if len(m.intervals) == 0 {
		return d, nil
	}

	i := sort.Search(len(m.intervals), func(i int) bool {
		return m.intervals[i].DerivedEnd > d
	})
	if i == len(m.intervals) || !m.intervals[i].Contains(d) {
		return 0, &MalformedMappingError{Index: i, Reason: "offset not covered by any interval"}
	}
	return d + m.intervals[i].Delta, nil
}

// TranslateRange maps the derived half-open range [start, end) to the
// original. Each endpoint is resolved against its own interval; the exclusive
// end is resolved through the last byte it covers.
func (m *Mapping) TranslateRange(start, end int) (int, int, error) {
	if start < 0 || start > m.derivedLen {
		return 0, 0, &OutOfRangeError{Offset: start, Limit: m.derivedLen}
	}
	if end < start || end > m.derivedLen {
		return 0, 0, &OutOfRangeError{Offset: end, Limit: m.derivedLen}
	}

	if start == end {
		if start == m.derivedLen {
			return m.originalEnd(), m.originalEnd(), nil
		}
		o, err := m.Translate(start)
		return o, o, err
	}

	first, err := m.Translate(start)
	if err != nil {
		return 0, 0, err
	}
	last, err := m.Translate(end - 1)
	if err != nil {
		return 0, 0, err
	}
	return first, last + 1, nil
}

// originalEnd is the original offset just past the last mapped byte.
func (m *Mapping) originalEnd() int {
	if len(m.intervals) == 0 {
		return m.derivedLen
	}
	last := m.intervals[len(m.intervals)-1]
	return last.DerivedEnd + last.Delta
}

// Slice returns the original text covered by the derived range [start, end).
// A range that splits a multi-byte rune yields a *MidRuneError. A range
// ending on a collapse placeholder takes the whole first whitespace rune.
func (m *Mapping) Slice(original string, start, end int) (string, error) {
	from, to, err := m.TranslateRange(start, end)
	if err != nil {
		return "", err
	}
	if to > len(original) {
		return "", &OutOfRangeError{Offset: to, Limit: len(original)}
	}
	if !RuneBoundary(original, from) {
		return "", &MidRuneError{Offset: from}
	}
	if end > start && end < m.derivedLen {
		next, err := m.Translate(end)
		if err != nil {
			return "", err
		}
		if !RuneBoundary(original, next) {
			return "", &MidRuneError{Offset: next}
		}
	}
	for to < len(original) && !utf8.RuneStart(original[to]) {
		to++
	}
	return original[from:to], nil
}

// RuneBoundary reports whether offset d starts a rune in s or is len(s).
// Mid-rune derived offsets translate to mid-rune offsets in the original.
func RuneBoundary(s string, d int) bool {
	return d == len(s) || (d >= 0 && d < len(s) && utf8.RuneStart(s[d]))
}
