package nmp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNetworkSingleHopDelivery(t *testing.T) {
	topo := NewFullyConnectedTopology(2)
	net := NewNetwork(topo)
	msg := Message{Recipient: 1, Kind: MessageMark, Obj: 42}
	net.Inject(msg, topo.Route(0, 1))

	var delivered []Message
	for i := 0; i < topo.PerHopLatency()+2 && len(delivered) == 0; i++ {
		delivered = net.Tick()
	}
	assert.Equal(t, []Message{msg}, delivered)
	assert.True(t, net.IsEmpty())
}

func TestNetworkMultiHopDelivery(t *testing.T) {
	topo := NewLineTopology(3)
	net := NewNetwork(topo)
	msg := Message{Recipient: 2, Kind: MessageLoad, Slot: 7}
	route := topo.Route(0, 2)
	net.Inject(msg, route)

	var delivered []Message
	for i := 0; i < len(route)*topo.PerHopLatency()+2 && len(delivered) == 0; i++ {
		delivered = net.Tick()
	}
	assert.Equal(t, []Message{msg}, delivered)
}

func TestNetworkLinkStatsCountTraversals(t *testing.T) {
	topo := NewLineTopology(3)
	net := NewNetwork(topo)
	route := topo.Route(0, 2)
	net.Inject(Message{Recipient: 2}, route)
	for i := 0; i < len(route)*topo.PerHopLatency()+2; i++ {
		net.Tick()
	}

	var forwarded int
	for _, s := range net.BandwidthStats() {
		forwarded += s.MessagesForwarded
	}
	assert.Equal(t, len(route), forwarded)
}

func TestNetworkPeakBandwidthTracksConcurrentTraffic(t *testing.T) {
	topo := NewFullyConnectedTopology(2)
	net := NewNetwork(topo)
	net.Inject(Message{Recipient: 1}, topo.Route(0, 1))
	net.Inject(Message{Recipient: 1}, topo.Route(0, 1))
	net.Tick()

	var peak int
	for _, s := range net.BandwidthStats() {
		if s.From == 0 && s.To == 1 {
			peak = s.PeakMessagesPerTick
		}
	}
	assert.Equal(t, 2, peak)
}

func TestNetworkEmptyTickReturnsNothing(t *testing.T) {
	net := NewNetwork(NewFullyConnectedTopology(2))
	assert.Empty(t, net.Tick())
	assert.True(t, net.IsEmpty())
}
