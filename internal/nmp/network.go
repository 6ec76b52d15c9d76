package nmp

import "sort"

type linkKey struct {
	from, to DimmId
}

type inFlightMessage struct {
	msg                 Message
	route               []Hop
	currentHop          int
	remainingHopLatency int
}

type directedLinkStats struct {
	messagesForwarded int
}

// LinkBandwidthStats summarizes traffic on one directed link.
type LinkBandwidthStats struct {
	From, To            DimmId
	MessagesForwarded   int
	PeakMessagesPerTick int
}

// Network models hop-by-hop message forwarding over a Topology, with
// per-directed-link bandwidth tracking, grounded directly on
// original_source's nmpgc/network.rs.
type Network struct {
	inFlight        []inFlightMessage
	linkStats       map[linkKey]*directedLinkStats
	perHopLatency   int
	currentTick     map[linkKey]int
	peakTick        map[linkKey]int
}

func NewNetwork(topo Topology) *Network {
	n := &Network{
		linkStats:     make(map[linkKey]*directedLinkStats),
		currentTick:   make(map[linkKey]int),
		peakTick:      make(map[linkKey]int),
		perHopLatency: topo.PerHopLatency(),
	}
	for _, l := range topo.Links() {
		for _, k := range []linkKey{{l.A, l.B}, {l.B, l.A}} {
			n.linkStats[k] = &directedLinkStats{}
			n.currentTick[k] = 0
			n.peakTick[k] = 0
		}
	}
	return n
}

// Inject starts msg traveling along route, which must be non-empty.
func (n *Network) Inject(msg Message, route []Hop) {
	n.recordTraversal(linkKey{route[0].From, route[0].To})
	n.inFlight = append(n.inFlight, inFlightMessage{
		msg:                 msg,
		route:               route,
		currentHop:          0,
		remainingHopLatency: n.perHopLatency,
	})
}

func (n *Network) recordTraversal(k linkKey) {
	stats, ok := n.linkStats[k]
	if !ok {
		panic("nmp: link not registered in topology")
	}
	stats.messagesForwarded++
	n.currentTick[k]++
}

// Tick advances every in-flight message by one cycle and returns the
// messages that arrived at their destination this tick.
func (n *Network) Tick() []Message {
	for k, count := range n.currentTick {
		if count > n.peakTick[k] {
			n.peakTick[k] = count
		}
		n.currentTick[k] = 0
	}

	var delivered []Message
	kept := n.inFlight[:0]
	for i := range n.inFlight {
		m := &n.inFlight[i]
		m.remainingHopLatency--
		if m.remainingHopLatency > 0 {
			kept = append(kept, *m)
			continue
		}
		m.currentHop++
		if m.currentHop >= len(m.route) {
			delivered = append(delivered, m.msg)
			continue
		}
		next := m.route[m.currentHop]
		n.recordTraversal(linkKey{next.From, next.To})
		m.remainingHopLatency = n.perHopLatency
		kept = append(kept, *m)
	}
	n.inFlight = kept
	return delivered
}

func (n *Network) IsEmpty() bool { return len(n.inFlight) == 0 }

// BandwidthStats returns per-directed-link traffic, sorted by (from, to).
func (n *Network) BandwidthStats() []LinkBandwidthStats {
	out := make([]LinkBandwidthStats, 0, len(n.linkStats))
	for k, s := range n.linkStats {
		out = append(out, LinkBandwidthStats{
			From:                k.from,
			To:                  k.to,
			MessagesForwarded:   s.messagesForwarded,
			PeakMessagesPerTick: n.peakTick[k],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}
