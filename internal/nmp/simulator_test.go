package nmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markSense = 1

func TestSimulatorMarksLineListFullyConnected(t *testing.T) {
	model := lineListModel()
	sim, err := NewSimulator(model, markSense, 4, TopologyFullyConnected)
	require.NoError(t, err)

	stats := sim.Run()
	assert.EqualValues(t, 3, stats.MarkedObjects)
	assert.Greater(t, stats.Ticks, 0)
}

func TestSimulatorMarksDiamondOnce(t *testing.T) {
	model := diamondModel()
	sim, err := NewSimulator(model, markSense, 4, TopologyRing)
	require.NoError(t, err)

	stats := sim.Run()
	assert.EqualValues(t, 4, stats.MarkedObjects, "the shared node must be marked exactly once despite two incoming edges")
}

func TestSimulatorSingleProcessorLine(t *testing.T) {
	model := lineListModel()
	sim, err := NewSimulator(model, markSense, 1, TopologyLine)
	require.NoError(t, err)

	stats := sim.Run()
	assert.EqualValues(t, 3, stats.MarkedObjects)
	assert.Empty(t, stats.Bandwidth, "a single DIMM has no inter-processor links")
}

func TestSimulatorUnknownTopologyErrors(t *testing.T) {
	_, err := NewSimulator(lineListModel(), markSense, 2, TopologyKind("bogus"))
	assert.Error(t, err)
}

func TestSimulatorEventsCoverEveryTick(t *testing.T) {
	model := lineListModel()
	sim, err := NewSimulator(model, markSense, 2, TopologyFullyConnected)
	require.NoError(t, err)
	sim.Run()

	events := sim.Events()
	assert.NotEmpty(t, events)
	for _, e := range events {
		assert.LessOrEqual(t, e.Start, e.End)
	}
}
