package heap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64p(v uint64) *uint64 { return &v }

func TestEncodeOopMapBlocksMergesContiguousSlots(t *testing.T) {
	o := &Object{
		Start: 0x1000,
		Edges: []Edge{
			{Slot: 0x1010, ObjRef: 1}, // offset 16, word 2
			{Slot: 0x1018, ObjRef: 2}, // offset 24, word 3: contiguous
			{Slot: 0x1030, ObjRef: 3}, // offset 48, word 6: new block
		},
	}
	blocks := encodeOopMapBlocks(o)
	require.Len(t, blocks, 2)
	assert.Equal(t, OopMapBlock{Offset: 16, Count: 2}, blocks[0])
	assert.Equal(t, OopMapBlock{Offset: 48, Count: 1}, blocks[1])
}

func TestEncodeOopMapBlocksSkipsMirrorSlots(t *testing.T) {
	mirrorStart := Addr(0x9000)
	o := &Object{
		Start:               0x1000,
		InstanceMirrorStart: &mirrorStart,
		InstanceMirrorCount: u64p(2),
		Edges: []Edge{
			{Slot: 0x1010, ObjRef: 1},
			{Slot: 0x9000, ObjRef: 2},
			{Slot: 0x9008, ObjRef: 3},
		},
	}
	blocks := encodeOopMapBlocks(o)
	require.Len(t, blocks, 1)
	assert.Equal(t, OopMapBlock{Offset: 16, Count: 1}, blocks[0])
}

func TestAlignmentEncodeBlocksKnownPatterns(t *testing.T) {
	cases := []struct {
		name    string
		blocks  []OopMapBlock
		pattern AlignmentEncodingPattern
	}{
		{"no refs", nil, PatternNoRef},
		{"ref0", []OopMapBlock{{Offset: 16, Count: 1}}, PatternRef0},
		{"ref0_1", []OopMapBlock{{Offset: 16, Count: 2}}, PatternRef0_1},
		{"ref2", []OopMapBlock{{Offset: 32, Count: 1}}, PatternRef2},
		{"ref1_2_3", []OopMapBlock{{Offset: 24, Count: 3}}, PatternRef1_2_3},
		{"ref4_5_6", []OopMapBlock{{Offset: 48, Count: 3}}, PatternRef4_5_6},
		{"out of range falls back", []OopMapBlock{{Offset: 200, Count: 1}}, PatternFallback},
		{"gap falls back", []OopMapBlock{{Offset: 16, Count: 1}, {Offset: 48, Count: 1}}, PatternFallback},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.pattern, alignmentEncodeBlocks(c.blocks))
		})
	}
}

func TestTibCacheKeyIsDeterministic(t *testing.T) {
	a := tibCacheKey(42)
	b := tibCacheKey(42)
	c := tibCacheKey(43)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
