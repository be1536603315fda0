package sab

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kittclouds/ephyrapart/pkg/netagger"
	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
	"github.com/kittclouds/ephyrapart/pkg/scanner/chunker"
)

func TestSpansRoundTrip(t *testing.T) {
	entities := []netagger.Entity{
		{Type: "NEcity", Range: chunker.NewRange(6, 14), Source: netagger.SourceList},
		{Type: "NEyear", Range: chunker.NewRange(18, 22), Source: netagger.SourceRegex},
		{Type: "NEcity", Range: chunker.NewRange(30, 35), Source: netagger.SourceModel},
	}

	spans, types := SpansFromEntities(entities)
	assert.Equal(t, []string{"NEcity", "NEyear"}, types)
	assert.Equal(t, []EntitySpan{
		{Start: 6, End: 14, Source: 0, TypeID: 0},
		{Start: 18, End: 22, Source: 1, TypeID: 1},
		{Start: 30, End: 35, Source: 2, TypeID: 0},
	}, spans)

	data := EncodeSpans(spans)
	assert.Len(t, data, 4+3*spanSize)
	assert.Equal(t, spans, DecodeSpans(data))
}

func TestDecodeSpansTruncated(t *testing.T) {
	data := EncodeSpans([]EntitySpan{{Start: 1, End: 2}, {Start: 3, End: 4}})
	assert.Equal(t, []EntitySpan{{Start: 1, End: 2}}, DecodeSpans(data[:len(data)-1]))
	assert.Nil(t, DecodeSpans(nil))
}

func TestEncodeMapping(t *testing.T) {
	_, m := offsetmap.RemoveString("a  b c")
	data := EncodeMapping(m)
	require.Len(t, data, 12+3*intervalSize)

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off : off+4]) }
	assert.Equal(t, uint32(3), u32(0))
	assert.Equal(t, uint32(3), u32(4))
	assert.Equal(t, uint32(6), u32(8))

	// second interval [1,2) +2
	assert.Equal(t, uint32(1), u32(12+intervalSize))
	assert.Equal(t, uint32(2), u32(16+intervalSize))
	assert.Equal(t, int32(2), int32(u32(20+intervalSize)))
}
