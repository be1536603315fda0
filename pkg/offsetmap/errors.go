package offsetmap

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks.
var (
	ErrOutOfRange       = errors.New("offset out of range")
	ErrMalformedMapping = errors.New("malformed offset mapping")
	ErrMidRune          = errors.New("offset splits a rune")
)

// OutOfRangeError reports a derived offset outside the derived string.
// It means the offset was computed against the wrong string.
type OutOfRangeError struct {
	Offset int
	Limit  int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("offsetmap: offset %d out of range [0, %d)", e.Offset, e.Limit)
}

// Is matches ErrOutOfRange
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// MidRuneError reports an original offset that falls inside a multi-byte rune.
type MidRuneError struct {
	Offset int
}

func (e *MidRuneError) Error() string {
	return fmt.Sprintf("offsetmap: offset %d splits a rune", e.Offset)
}

// Is matches ErrMidRune
func (e *MidRuneError) Is(target error) bool {
	return target == ErrMidRune
}

// MalformedMappingError reports an interval sequence that breaks ordering,
// contiguity or delta monotonicity.
type MalformedMappingError struct {
	Index  int
	Reason string
}

func (e *MalformedMappingError) Error() string {
	return fmt.Sprintf("offsetmap: malformed mapping at interval %d: %s", e.Index, e.Reason)
}

// Is matches ErrMalformedMapping
func (e *MalformedMappingError) Is(target error) bool {
	return target == ErrMalformedMapping
}

// ============================================================================
// External mappings
// ============================================================================

// FromIntervals builds a Mapping from intervals produced elsewhere (a cache,
// another process). The sequence must start at 0, be contiguous, end at
// derivedLen and never decrease its delta.
func FromIntervals(intervals []Interval, derivedLen, originalLen int) (*Mapping, error) {
	if err := validate(intervals, derivedLen, originalLen); err != nil {
		return nil, err
	}
	ivs := make([]Interval, len(intervals))
	copy(ivs, intervals)
	return &Mapping{intervals: ivs, derivedLen: derivedLen, originalLen: originalLen}, nil
}

func validate(intervals []Interval, derivedLen, originalLen int) error {
	if derivedLen < 0 || originalLen < derivedLen {
		return &MalformedMappingError{Index: -1, Reason: fmt.Sprintf("lengths derived=%d original=%d", derivedLen, originalLen)}
	}
	if len(intervals) == 0 {
		return nil
	}

	next := 0
	prevDelta := 0
	for i, iv := range intervals {
		switch {
		case iv.DerivedStart != next:
			return &MalformedMappingError{Index: i, Reason: fmt.Sprintf("starts at %d, expected %d", iv.DerivedStart, next)}
		case iv.DerivedEnd <= iv.DerivedStart:
			return &MalformedMappingError{Index: i, Reason: "empty or inverted interval"}
		case iv.Delta < prevDelta:
			return &MalformedMappingError{Index: i, Reason: fmt.Sprintf("delta %d decreases from %d", iv.Delta, prevDelta)}
		case iv.DerivedEnd+iv.Delta > originalLen:
			return &MalformedMappingError{Index: i, Reason: "maps past the end of the original"}
		}
		next = iv.DerivedEnd
		prevDelta = iv.Delta
	}

	if next != derivedLen {
		return &MalformedMappingError{Index: len(intervals) - 1, Reason: fmt.Sprintf("ends at %d, derived length is %d", next, derivedLen)}
	}
	return nil
}

type mappingJSON struct {
	Intervals   []Interval `json:"intervals"`
	DerivedLen  int        `json:"derivedLen"`
	OriginalLen int        `json:"originalLen"`
}

// MarshalJSON encodes the mapping with its lengths.
func (m *Mapping) MarshalJSON() ([]byte, error) {
	return json.Marshal(mappingJSON{
		Intervals:   m.intervals,
		DerivedLen:  m.derivedLen,
		OriginalLen: m.originalLen,
	})
}

// UnmarshalJSON decodes and validates a mapping.
func (m *Mapping) UnmarshalJSON(data []byte) error {
	var raw mappingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("offsetmap: decode mapping: %w", err)
	}
	if err := validate(raw.Intervals, raw.DerivedLen, raw.OriginalLen); err != nil {
		return err
	}
	m.intervals = raw.Intervals
	m.derivedLen = raw.DerivedLen
	m.originalLen = raw.OriginalLen
	return nil
}
