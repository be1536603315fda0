// Package sab moves entity spans and offset mappings to JavaScript through a
// SharedArrayBuffer. The encoders here are plain Go; the buffer itself is
// only built for js/wasm.
package sab

import (
	"encoding/binary"

	"github.com/kittclouds/ephyrapart/pkg/netagger"
	"github.com/kittclouds/ephyrapart/pkg/offsetmap"
)

// Message types for the binary protocol
const (
	MsgTypeNone        uint32 = 0
	MsgTypeEntitySpans uint32 = 1
	MsgTypeMapping     uint32 = 2
	MsgTypeAck         uint32 = 0xFF
)

// Header offsets (first 16 bytes are header)
const (
	OffsetReady     = 0  // int32: 0 = idle, 1 = data ready
	OffsetLength    = 4  // uint32: payload length
	OffsetMsgType   = 8  // uint32: message type
	OffsetReserved  = 12 // uint32: reserved
	OffsetPayload   = 16 // payload starts here
	DefaultBufferSz = 65536
)

// spanSize is the encoded size of one EntitySpan
const spanSize = 12

// intervalSize is the encoded size of one mapping interval
const intervalSize = 12

// EntitySpan is the fixed-width form of a netagger.Entity.
type EntitySpan struct {
	Start  uint32
	End    uint32
	Source uint16 // index into Sources
	TypeID uint16 // index into the type table sent alongside
}

// Sources orders the entity sources for EntitySpan.Source
var Sources = []netagger.Source{netagger.SourceList, netagger.SourceRegex, netagger.SourceModel}

// SpansFromEntities converts entities, assigning type ids in first-seen
// order. It returns the spans and the type table.
func SpansFromEntities(entities []netagger.Entity) ([]EntitySpan, []string) {
	typeIDs := make(map[string]uint16)
	var types []string

	spans := make([]EntitySpan, len(entities))
	for i, e := range entities {
		id, ok := typeIDs[e.Type]
		if !ok {
			id = uint16(len(types))
			typeIDs[e.Type] = id
			types = append(types, e.Type)
		}
		spans[i] = EntitySpan{
			Start:  uint32(e.Range.Start),
			End:    uint32(e.Range.End),
			Source: sourceIndex(e.Source),
			TypeID: id,
		}
	}
	return spans, types
}

func sourceIndex(s netagger.Source) uint16 {
	for i, src := range Sources {
		if src == s {
			return uint16(i)
		}
	}
	return uint16(len(Sources))
}

// EncodeSpans encodes entity spans into binary format
// Format per span: [start:4][end:4][source:2][typeID:2] = 12 bytes
func EncodeSpans(spans []EntitySpan) []byte {
	data := make([]byte, 4+len(spans)*spanSize) // 4 byte count + spans

	binary.LittleEndian.PutUint32(data[0:4], uint32(len(spans)))

	offset := 4
	for _, sp := range spans {
		binary.LittleEndian.PutUint32(data[offset:offset+4], sp.Start)
		binary.LittleEndian.PutUint32(data[offset+4:offset+8], sp.End)
		binary.LittleEndian.PutUint16(data[offset+8:offset+10], sp.Source)
		binary.LittleEndian.PutUint16(data[offset+10:offset+12], sp.TypeID)
		offset += spanSize
	}

	return data
}

// DecodeSpans reverses EncodeSpans. Truncated input yields the complete
// spans it holds.
func DecodeSpans(data []byte) []EntitySpan {
	if len(data) < 4 {
		return nil
	}
	n := int(binary.LittleEndian.Uint32(data[0:4]))
	if avail := (len(data) - 4) / spanSize; n > avail {
		n = avail
	}

	spans := make([]EntitySpan, n)
	offset := 4
	for i := range spans {
		spans[i] = EntitySpan{
			Start:  binary.LittleEndian.Uint32(data[offset : offset+4]),
			End:    binary.LittleEndian.Uint32(data[offset+4 : offset+8]),
			Source: binary.LittleEndian.Uint16(data[offset+8 : offset+10]),
			TypeID: binary.LittleEndian.Uint16(data[offset+10 : offset+12]),
		}
		offset += spanSize
	}
	return spans
}

// EncodeMapping encodes a mapping
// Format: [count:4][derivedLen:4][originalLen:4] then per interval
// [derivedStart:4][derivedEnd:4][delta:4], delta as int32
func EncodeMapping(m *offsetmap.Mapping) []byte {
	intervals := m.Intervals()
	data := make([]byte, 12+len(intervals)*intervalSize)

	binary.LittleEndian.PutUint32(data[0:4], uint32(len(intervals)))
	binary.LittleEndian.PutUint32(data[4:8], uint32(m.DerivedLen()))
	binary.LittleEndian.PutUint32(data[8:12], uint32(m.OriginalLen()))

	offset := 12
	for _, iv := range intervals {
		binary.LittleEndian.PutUint32(data[offset:offset+4], uint32(iv.DerivedStart))
		binary.LittleEndian.PutUint32(data[offset+4:offset+8], uint32(iv.DerivedEnd))
		binary.LittleEndian.PutUint32(data[offset+8:offset+12], uint32(int32(iv.Delta)))
		offset += intervalSize
	}

	return data
}
