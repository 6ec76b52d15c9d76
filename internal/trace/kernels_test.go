package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const markSense = 1

func TestEdgeSlotLineList(t *testing.T) {
	m, _ := lineList()
	stats := EdgeSlot(m, markSense)
	assert.EqualValues(t, 3, stats.MarkedObjects)
	assert.EqualValues(t, 3, stats.NonEmptySlots)
}

func TestEdgeSlotDiamondMarksSharedChildOnce(t *testing.T) {
	m, _ := diamond()
	stats := EdgeSlot(m, markSense)
	assert.EqualValues(t, 4, stats.MarkedObjects)
}

func TestEdgeSlotCycleTerminates(t *testing.T) {
	m, _ := cycle()
	stats := EdgeSlot(m, markSense)
	assert.EqualValues(t, 2, stats.MarkedObjects)
}

func TestNodeObjrefDiamond(t *testing.T) {
	m, _ := diamond()
	stats := NodeObjref(m, markSense)
	assert.EqualValues(t, 4, stats.MarkedObjects)
}

func TestEdgeObjrefDiamond(t *testing.T) {
	m, _ := diamond()
	stats := EdgeObjref(m, markSense)
	assert.EqualValues(t, 4, stats.MarkedObjects)
}

func TestShapeCacheDiamondAccountsHitsAndMisses(t *testing.T) {
	m, _ := diamond()
	stats := ShapeCache(m, markSense, 4)
	assert.EqualValues(t, 4, stats.MarkedObjects)
	assert.EqualValues(t, stats.MarkedObjects, stats.ShapeCacheStats.Hits+stats.ShapeCacheStats.Misses)
}

func TestDistributedNodeObjrefDiamond(t *testing.T) {
	m, _ := diamond()
	stats := DistributedNodeObjref(m, markSense, 2, 3)
	assert.EqualValues(t, 4, stats.MarkedObjects)
}

func TestVerifyMarkReportsUnmarked(t *testing.T) {
	m, nodes := lineList()
	EdgeSlot(m, markSense)
	unmarked := VerifyMark(m.Objects(), markSense)
	assert.Empty(t, unmarked)

	// A node the kernel never reaches should show up as unmarked.
	stray := newFakeNode(0)
	m.add(stray)
	unmarked = VerifyMark(m.Objects(), markSense)
	assert.Equal(t, []Addr{stray.addr()}, unmarked)
	_ = nodes
}
