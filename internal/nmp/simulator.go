package nmp

import (
	"fmt"

	"github.com/gc-research/tracebench/internal/heap"
)

// TopologyKind selects which Topology a Simulator is built with.
type TopologyKind string

const (
	TopologyLine           TopologyKind = "line"
	TopologyRing           TopologyKind = "ring"
	TopologyFullyConnected TopologyKind = "fully-connected"
)

func newTopology(kind TopologyKind, numDimms int) (Topology, error) {
	switch kind {
	case TopologyLine:
		return NewLineTopology(numDimms), nil
	case TopologyRing:
		return NewRingTopology(numDimms), nil
	case TopologyFullyConnected, "":
		return NewFullyConnectedTopology(numDimms), nil
	default:
		return nil, fmt.Errorf("nmp: unknown topology %q", kind)
	}
}

// Stats is the aggregate result of one Simulator run, matching the field
// set original_source's nmpgc/mod.rs reports.
type Stats struct {
	Ticks          int
	MarkedObjects  uint64
	BusyTicks      int
	Utilization    float64
	ReadHits       uint64
	ReadMisses     uint64
	WriteHits      uint64
	WriteMisses    uint64
	ReadHitRate    float64
	WriteHitRate   float64
	Bandwidth      []LinkBandwidthStats
}

// ThreadEvent is one busy or idle interval on a processor, destined for
// chrome-trace export.
type ThreadEvent struct {
	Dimm  DimmId
	Name  string
	Start int
	End   int
}

// Simulator is the tick-driven orchestrator, equivalent to
// original_source's nmpgc/mod.rs NMPGC: it wires a Topology, a Network, and
// one Processor per DIMM together and drives them until every processor is
// locally done and the network has nothing left in flight.
type Simulator struct {
	topo       Topology
	net        *Network
	processors []*Processor
	model      heap.ObjectModel
	markSense  uint8
}

// NewSimulator builds a Simulator with numDimms processors arranged per
// topologyKind, ready to trace model.
func NewSimulator(model heap.ObjectModel, markSense uint8, numDimms int, topologyKind TopologyKind) (*Simulator, error) {
	topo, err := newTopology(topologyKind, numDimms)
	if err != nil {
		return nil, err
	}
	procs := make([]*Processor, numDimms)
	for i := range procs {
		procs[i] = newProcessor(DimmId(i), numDimms, markSense)
	}
	return &Simulator{
		topo:       topo,
		net:        NewNetwork(topo),
		processors: procs,
		model:      model,
		markSense:  markSense,
	}, nil
}

// seedRoots distributes the model's roots to the processors that own them.
func (s *Simulator) seedRoots() {
	for _, r := range s.model.Roots() {
		owner := NewAddressMapping(uint64(r), len(s.processors)).Owner()
		s.processors[owner].pushBack(markWork(r))
	}
}

func (s *Simulator) locallyDone() bool {
	for _, p := range s.processors {
		if !p.locallyDone() {
			return false
		}
	}
	return true
}

// Run drives the simulation to completion and returns aggregate stats.
func (s *Simulator) Run() Stats {
	s.seedRoots()

	for !s.locallyDone() || !s.net.IsEmpty() {
		for _, p := range s.processors {
			if m := p.tick(s.model, s.topo); m != nil {
				route := s.topo.Route(p.id, DimmId(m.Recipient))
				s.net.Inject(*m, route)
			}
		}
		for _, m := range s.net.Tick() {
			s.processors[m.Recipient].inbox = append(s.processors[m.Recipient].inbox, m)
		}
	}

	return s.stats()
}

func (s *Simulator) stats() Stats {
	var st Stats
	maxTicks := 0
	var busySum int
	var marked uint64
	var cs CacheStats
	for _, p := range s.processors {
		if p.ticks > maxTicks {
			maxTicks = p.ticks
		}
		busySum += p.busyTicks
		marked += p.markedObjects
		cs.ReadHits += p.cache.Stats.ReadHits
		cs.ReadMisses += p.cache.Stats.ReadMisses
		cs.WriteHits += p.cache.Stats.WriteHits
		cs.WriteMisses += p.cache.Stats.WriteMisses
	}
	st.Ticks = maxTicks
	st.MarkedObjects = marked
	st.BusyTicks = busySum
	if total := maxTicks * len(s.processors); total > 0 {
		st.Utilization = float64(busySum) / float64(total)
	}
	st.ReadHits, st.ReadMisses = cs.ReadHits, cs.ReadMisses
	st.WriteHits, st.WriteMisses = cs.WriteHits, cs.WriteMisses
	if reads := cs.ReadHits + cs.ReadMisses; reads > 0 {
		st.ReadHitRate = float64(cs.ReadHits) / float64(reads)
	}
	if writes := cs.WriteHits + cs.WriteMisses; writes > 0 {
		st.WriteHitRate = float64(cs.WriteHits) / float64(writes)
	}
	st.Bandwidth = s.net.BandwidthStats()
	return st
}

// Events returns every processor's busy/idle interval timeline, suitable
// for a chrome-trace thread-per-DIMM rendering.
func (s *Simulator) Events() []ThreadEvent {
	var events []ThreadEvent
	for _, p := range s.processors {
		ranges := p.idleRanges
		if p.idleStart != nil {
			ranges = append(ranges, idleRange{*p.idleStart, p.ticks})
		}
		cursor := 0
		for _, r := range ranges {
			if r.start > cursor {
				events = append(events, ThreadEvent{Dimm: p.id, Name: "busy", Start: cursor, End: r.start})
			}
			events = append(events, ThreadEvent{Dimm: p.id, Name: "idle", Start: r.start, End: r.end})
			cursor = r.end
		}
		if cursor < p.ticks {
			events = append(events, ThreadEvent{Dimm: p.id, Name: "busy", Start: cursor, End: p.ticks})
		}
	}
	return events
}
