package offsetmap

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Scenarios
// =============================================================================

func TestCollapseDoubleAndTripleSpaces(t *testing.T) {
	derived, m := CollapseString("The  quick   fox")
	require.Equal(t, "The quick fox", derived)

	o, err := m.Translate(4)
	require.NoError(t, err)
	assert.Equal(t, 5, o, "'q' sits after two spaces")

	o, err = m.Translate(10)
	require.NoError(t, err)
	assert.Equal(t, 13, o, "'f' sits after three more spaces")
}

func TestNoWhitespaceIsIdentity(t *testing.T) {
	derived, m := CollapseString("NoSpacesHere")
	require.Equal(t, "NoSpacesHere", derived)
	require.Equal(t, 1, m.Len())
	assert.True(t, m.IsIdentity())
	assert.Equal(t, Interval{DerivedStart: 0, DerivedEnd: 12, Delta: 0}, m.Intervals()[0])

	o, err := m.Translate(3)
	require.NoError(t, err)
	assert.Equal(t, 3, o)
}

func TestLeadingWhitespace(t *testing.T) {
	derived, m := CollapseString("  leading")
	require.Equal(t, "leading", derived)

	o, err := m.Translate(0)
	require.NoError(t, err)
	assert.Equal(t, 2, o)
}

func TestTranslateAtDerivedLengthFails(t *testing.T) {
	derived, m := CollapseString("The  quick   fox")

	_, err := m.Translate(len(derived))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	var oor *OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, len(derived), oor.Offset)
	assert.Equal(t, len(derived), oor.Limit)

	_, err = m.Translate(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestEmptyAndAllWhitespace(t *testing.T) {
	for _, input := range []string{"", " ", " \t\n ", " 　"} {
		for _, p := range []Policy{Collapse, Remove} {
			derived, m := Build(input, p)
			assert.Empty(t, derived, "input %q policy %s", input, p)
			assert.Equal(t, 0, m.Len())
			assert.Equal(t, len(input), m.OriginalLen())

			_, err := m.Translate(0)
			assert.ErrorIs(t, err, ErrOutOfRange)

			from, to, err := m.TranslateRange(0, 0)
			require.NoError(t, err)
			assert.Equal(t, 0, from)
			assert.Equal(t, 0, to)
		}
	}
}

func TestTrailingWhitespaceIsDropped(t *testing.T) {
	derived, m := CollapseString("ab \t")
	require.Equal(t, "ab", derived)
	assert.Equal(t, []Interval{{DerivedStart: 0, DerivedEnd: 2, Delta: 0}}, m.Intervals())
}

func TestSingleSpacesKeepOneInterval(t *testing.T) {
	derived, m := CollapseString("a b c")
	require.Equal(t, "a b c", derived)
	assert.Equal(t, 1, m.Len())
}

func TestPlaceholderPointsAtRunStart(t *testing.T) {
	original := "one\t\t two"
	derived, m := CollapseString(original)
	require.Equal(t, "one two", derived)

	o, err := m.Translate(3)
	require.NoError(t, err)
	assert.Equal(t, 3, o)
	assert.Equal(t, byte('\t'), original[o])
}

func TestRemovePolicy(t *testing.T) {
	original := "a  b c"
	derived, m := RemoveString(original)
	require.Equal(t, "abc", derived)
	assert.Equal(t, []Interval{
		{DerivedStart: 0, DerivedEnd: 1, Delta: 0},
		{DerivedStart: 1, DerivedEnd: 2, Delta: 2},
		{DerivedStart: 2, DerivedEnd: 3, Delta: 3},
	}, m.Intervals())

	for d := range derived {
		o, err := m.Translate(d)
		require.NoError(t, err)
		assert.Equal(t, derived[d], original[o])
	}
}

func TestUnicodeWhitespace(t *testing.T) {
	original := "naïve  café"
	derived, m := CollapseString(original)
	require.Equal(t, "naïve café", derived)

	idx := strings.Index(derived, "café")
	o, err := m.Translate(idx)
	require.NoError(t, err)
	assert.Equal(t, strings.Index(original, "café"), o)
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{" REMOVE ": Remove, "collapse": Collapse, "": Collapse} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParsePolicy("squash")
	assert.Error(t, err)
	assert.Equal(t, "remove", Remove.String())
}

// =============================================================================
// Ranges
// =============================================================================

func TestTranslateRangeAcrossIntervals(t *testing.T) {
	original := "The  quick   fox"
	derived, m := CollapseString(original)

	start := strings.Index(derived, "quick")
	end := len(derived)

	from, to, err := m.TranslateRange(start, end)
	require.NoError(t, err)
	assert.Equal(t, "quick   fox", original[from:to])

	s, err := m.Slice(original, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, "The", s)
}

func TestTranslateRangeEndBeforeRun(t *testing.T) {
	original := "The  quick   fox"
	derived, m := CollapseString(original)

	start := strings.Index(derived, "quick")
	from, to, err := m.TranslateRange(start, start+len("quick"))
	require.NoError(t, err)
	assert.Equal(t, "quick", original[from:to])
}

func TestTranslateRangeEmpty(t *testing.T) {
	derived, m := CollapseString("  a  b  ")
	require.Equal(t, "a b", derived)

	from, to, err := m.TranslateRange(2, 2)
	require.NoError(t, err)
	assert.Equal(t, from, to)
	assert.Equal(t, 5, from)

	from, to, err = m.TranslateRange(3, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, from)
	assert.Equal(t, 6, to)
}

func TestTranslateRangeRejectsBadRanges(t *testing.T) {
	_, m := CollapseString("a b")

	_, _, err := m.TranslateRange(2, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, _, err = m.TranslateRange(0, 4)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, _, err = m.TranslateRange(-1, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

// =============================================================================
// External mappings
// =============================================================================

func TestFromIntervalsValidates(t *testing.T) {
	tests := []struct {
		name      string
		intervals []Interval
		derived   int
		original  int
	}{
		{"gap", []Interval{{0, 2, 0}, {3, 4, 1}}, 4, 6},
		{"overlap", []Interval{{0, 2, 0}, {1, 4, 1}}, 4, 6},
		{"decreasing delta", []Interval{{0, 2, 2}, {2, 4, 1}}, 4, 6},
		{"short coverage", []Interval{{0, 2, 0}}, 4, 6},
		{"not from zero", []Interval{{1, 4, 0}}, 4, 6},
		{"empty interval", []Interval{{0, 0, 0}, {0, 4, 0}}, 4, 6},
		{"past original", []Interval{{0, 4, 3}}, 4, 6},
		{"negative length", nil, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromIntervals(tt.intervals, tt.derived, tt.original)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedMapping)
		})
	}
}

func TestFromIntervalsWithoutIntervalsIsIdentity(t *testing.T) {
	m, err := FromIntervals(nil, 5, 5)
	require.NoError(t, err)

	o, err := m.Translate(4)
	require.NoError(t, err)
	assert.Equal(t, 4, o)

	_, err = m.Translate(5)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestMappingJSON(t *testing.T) {
	_, m := CollapseString("The  quick   fox")

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Mapping
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, m.Intervals(), decoded.Intervals())
	assert.Equal(t, m.DerivedLen(), decoded.DerivedLen())

	bad := `{"intervals":[{"derivedStart":0,"derivedEnd":2,"delta":1},{"derivedStart":2,"derivedEnd":3,"delta":0}],"derivedLen":3,"originalLen":5}`
	err = json.Unmarshal([]byte(bad), &decoded)
	assert.ErrorIs(t, err, ErrMalformedMapping)
}

// =============================================================================
// Properties over generated strings
// =============================================================================

var alphabet = []rune{'a', 'b', 'Z', '9', '.', 'é', '世', ' ', ' ', '\t', '\n', '\r', ' ', ' '}

func randomStrings(n int) []string {
	rng := rand.New(rand.NewSource(42))
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var b strings.Builder
		size := rng.Intn(40)
		for j := 0; j < size; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		out = append(out, b.String())
	}
	return out
}

func countWhitespace(s string) (bytes, runs, internal int) {
	inRun := false
	for i, ch := range s {
		if unicode.IsSpace(ch) {
			bytes += len(string(ch))
			if !inRun {
				runs++
				inRun = true
				if i > 0 && strings.TrimRightFunc(s[i:], unicode.IsSpace) != "" {
					internal++
				}
			}
			continue
		}
		inRun = false
	}
	return bytes, runs, internal
}

func TestPropertiesOverGeneratedStrings(t *testing.T) {
	for _, original := range randomStrings(500) {
		for _, policy := range []Policy{Collapse, Remove} {
			derived, m := Build(original, policy)

			// length conservation
			wsBytes, _, internal := countWhitespace(original)
			if policy == Remove {
				require.Equal(t, len(original), len(derived)+wsBytes, "%q", original)
			} else {
				require.Equal(t, len(original), len(derived)+wsBytes-internal, "%q", original)
				require.Equal(t, strings.Join(strings.Fields(original), " "), derived)
			}

			// coverage: contiguous from 0 to len(derived)
			next := 0
			prevDelta := 0
			for _, iv := range m.Intervals() {
				require.Equal(t, next, iv.DerivedStart, "%q", original)
				require.Greater(t, iv.DerivedEnd, iv.DerivedStart)
				require.GreaterOrEqual(t, iv.Delta, prevDelta)
				next = iv.DerivedEnd
				prevDelta = iv.Delta
			}
			require.Equal(t, len(derived), next, "%q", original)

			// round trip and monotonicity
			prev := -1
			for d := 0; d < len(derived); d++ {
				o, err := m.Translate(d)
				require.NoError(t, err)
				require.Greater(t, o, prev, "%q at %d", original, d)
				prev = o

				if derived[d] == ' ' && policy == Collapse {
					r := []rune(original[o:])[0]
					require.True(t, unicode.IsSpace(r), "placeholder maps to whitespace in %q", original)
					continue
				}
				require.Equal(t, derived[d], original[o], "%q at %d", original, d)
			}

			_, err := m.Translate(len(derived))
			require.ErrorIs(t, err, ErrOutOfRange)

			checkRanges(t, original, derived, m, policy)
		}
	}
}

// checkRanges slices every rune-aligned derived range, including ranges that
// cross intervals and the empty range at the end, and renormalizes the result.
func checkRanges(t *testing.T, original, derived string, m *Mapping, policy Policy) {
	t.Helper()

	var bounds []int
	for i := range derived {
		bounds = append(bounds, i)
	}
	bounds = append(bounds, len(derived))

	for i, start := range bounds {
		for _, end := range bounds[i:] {
			got, err := m.Slice(original, start, end)
			require.NoError(t, err, "%q [%d,%d)", original, start, end)
			require.True(t, utf8.ValidString(got), "%q [%d,%d) = %q", original, start, end, got)
			require.Equal(t, derived[start:end], renormalize(got, policy), "%q [%d,%d)", original, start, end)
		}
	}

	from, to, err := m.TranslateRange(len(derived), len(derived))
	require.NoError(t, err)
	require.Equal(t, from, to)
	require.Equal(t, len(strings.TrimRightFunc(original, unicode.IsSpace)), from, "%q", original)
}

// renormalize applies policy to a slice without trimming its ends.
func renormalize(s string, policy Policy) string {
	var b strings.Builder
	inRun := false
	for _, ch := range s {
		if unicode.IsSpace(ch) {
			if policy == Collapse && !inRun {
				b.WriteByte(' ')
			}
			inRun = true
			continue
		}
		inRun = false
		b.WriteRune(ch)
	}
	return b.String()
}

func TestNoWhitespacePropertyIsIdentity(t *testing.T) {
	for _, original := range randomStrings(200) {
		clean := strings.Join(strings.Fields(original), "")
		derived, m := CollapseString(clean)
		require.Equal(t, clean, derived)
		for d := 0; d < len(derived); d++ {
			o, err := m.Translate(d)
			require.NoError(t, err)
			require.Equal(t, d, o)
		}
	}
}

func TestSliceRejectsSplitRunes(t *testing.T) {
	original := "é  x"
	_, m := CollapseString(original)

	_, err := m.Slice(original, 0, 1)
	var mid *MidRuneError
	require.ErrorAs(t, err, &mid)
	assert.Equal(t, 1, mid.Offset)

	_, err = m.Slice(original, 1, 3)
	assert.ErrorIs(t, err, ErrMidRune)

	s, err := m.Slice(original, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, "é", s)
}

func TestSliceEndingOnWidePlaceholder(t *testing.T) {
	original := "a\u3000\u3000b"
	derived, m := CollapseString(original)
	require.Equal(t, "a b", derived)

	s, err := m.Slice(original, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, "a\u3000", s)

	s, err = m.Slice(original, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "\u3000\u3000b", s)
}

func TestRuneBoundary(t *testing.T) {
	s := "é"
	assert.True(t, RuneBoundary(s, 0))
	assert.False(t, RuneBoundary(s, 1))
	assert.True(t, RuneBoundary(s, 2))
	assert.False(t, RuneBoundary(s, 3))
}
