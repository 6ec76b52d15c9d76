package nmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddressMappingDecodesOwnerBankRow(t *testing.T) {
	addr := uint64(0)
	addr |= 3 << logLineBytes                    // owner bits
	addr |= 5 << (logLineBytes + 2)              // bank bits (2 owner bits for 4 procs)
	addr |= 7 << (logLineBytes + 2 + numBanksLog2) // row bits

	m := NewAddressMapping(addr, 4)
	assert.Equal(t, 3, m.Owner())
	assert.EqualValues(t, 5, m.Bank())
	assert.EqualValues(t, 7, m.Row())
}

func TestAddressMappingSingleProcessorHasNoOwnerBits(t *testing.T) {
	m := NewAddressMapping(0xABCD, 1)
	assert.Equal(t, 0, m.Owner())
}

func TestBankStateRowHitVsMiss(t *testing.T) {
	var b bankState
	assert.Equal(t, rowMissCycles, b.latency(10))
	b.open(10)
	assert.Equal(t, rowHitCycles, b.latency(10))
	assert.Equal(t, rowMissCycles, b.latency(11))
}

func TestSetAssociativeCacheTracksHitsAndMisses(t *testing.T) {
	c := NewSetAssociativeCache(1, 2, 1)
	addrA, addrB := uint64(0), uint64(lineBytes)

	c.Read(addrA)
	assert.EqualValues(t, 1, c.Stats.ReadMisses)

	c.Read(addrA)
	assert.EqualValues(t, 1, c.Stats.ReadHits)

	c.Read(addrB)
	assert.EqualValues(t, 2, c.Stats.ReadMisses)
}

func TestSetAssociativeCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewSetAssociativeCache(1, 1, 1)
	a, b := uint64(0), uint64(lineBytes)

	c.Read(a)
	c.Read(b) // evicts a, only 1 way in this set
	c.Read(a)
	assert.EqualValues(t, 3, c.Stats.ReadMisses)
}
