// Package nmp implements a cycle-approximate simulator for a near-memory
// processing GC: N per-DIMM processors mark objects directly against a
// DDR4 timing model, exchanging ownership messages over a small
// interconnect topology instead of sharing a coherent cache.
package nmp

import "fmt"

// DimmId identifies one of the simulation's per-DIMM processors.
type DimmId int

// Topology describes how messages travel between DIMMs: the route a
// message between two DIMMs must take, and the set of physical links that
// route can be decomposed into.
type Topology interface {
	fmt.Stringer

	// Route returns the ordered sequence of directed hops a message from
	// sends to recipient must traverse.
	Route(from, to DimmId) []Hop

	// Links returns every unique undirected physical link, each as (a, b)
	// with a < b.
	Links() []Link

	NumDimms() int

	// PerHopLatency is the cycle cost of traversing one directed link.
	PerHopLatency() int
}

// perHopLatencyCycles is the cycle cost of one directed-link traversal,
// uniform across topologies.
const perHopLatencyCycles = 10

// Hop is one directed link traversal within a route.
type Hop struct {
	From, To DimmId
}

// Link is an undirected physical connection between two DIMMs.
type Link struct {
	A, B DimmId
}

// LineTopology arranges DIMMs along a line: position i is only adjacent to
// positions i-1 and i+1.
type LineTopology struct {
	dimmAt     []DimmId
	positionOf []int
}

// NewLineTopology builds a line over n DIMMs in natural order 0..n-1.
func NewLineTopology(n int) *LineTopology {
	return &LineTopology{dimmAt: sequentialOrder(n), positionOf: invert(sequentialOrder(n))}
}

func sequentialOrder(n int) []DimmId {
	order := make([]DimmId, n)
	for i := range order {
		order[i] = DimmId(i)
	}
	return order
}

func invert(order []DimmId) []int {
	pos := make([]int, len(order))
	for i, d := range order {
		pos[d] = i
	}
	return pos
}

func (t *LineTopology) String() string { return "LineTopology" }

func (t *LineTopology) NumDimms() int { return len(t.dimmAt) }

func (t *LineTopology) PerHopLatency() int { return perHopLatencyCycles }

func (t *LineTopology) Route(from, to DimmId) []Hop {
	fromPos, toPos := t.positionOf[from], t.positionOf[to]
	var route []Hop
	if fromPos < toPos {
		for i := fromPos; i < toPos; i++ {
			route = append(route, Hop{t.dimmAt[i], t.dimmAt[i+1]})
		}
	} else {
		for i := fromPos; i > toPos; i-- {
			route = append(route, Hop{t.dimmAt[i], t.dimmAt[i-1]})
		}
	}
	return route
}

func (t *LineTopology) Links() []Link {
	var links []Link
	for i := 0; i < len(t.dimmAt)-1; i++ {
		links = append(links, normalizeLink(t.dimmAt[i], t.dimmAt[i+1]))
	}
	return links
}

func normalizeLink(a, b DimmId) Link {
	if a > b {
		a, b = b, a
	}
	return Link{a, b}
}

// RingTopology is a LineTopology with an added wrap-around link between the
// first and last positions, so every DIMM has exactly two neighbors.
type RingTopology struct {
	dimmAt     []DimmId
	positionOf []int
}

func NewRingTopology(n int) *RingTopology {
	return &RingTopology{dimmAt: sequentialOrder(n), positionOf: invert(sequentialOrder(n))}
}

func (t *RingTopology) String() string { return "RingTopology" }

func (t *RingTopology) NumDimms() int { return len(t.dimmAt) }

func (t *RingTopology) PerHopLatency() int { return perHopLatencyCycles }

func (t *RingTopology) Route(from, to DimmId) []Hop {
	n := len(t.dimmAt)
	fromPos, toPos := t.positionOf[from], t.positionOf[to]
	cw := (toPos + n - fromPos) % n
	ccw := (fromPos + n - toPos) % n

	var route []Hop
	if cw <= ccw {
		for step := 0; step < cw; step++ {
			cur, next := (fromPos+step)%n, (fromPos+step+1)%n
			route = append(route, Hop{t.dimmAt[cur], t.dimmAt[next]})
		}
	} else {
		for step := 0; step < ccw; step++ {
			cur, next := (fromPos+n-step)%n, (fromPos+n-step-1)%n
			route = append(route, Hop{t.dimmAt[cur], t.dimmAt[next]})
		}
	}
	return route
}

func (t *RingTopology) Links() []Link {
	n := len(t.dimmAt)
	var links []Link
	for i := 0; i < n; i++ {
		links = append(links, normalizeLink(t.dimmAt[i], t.dimmAt[(i+1)%n]))
	}
	return links
}

// FullyConnectedTopology gives every pair of DIMMs a direct single-hop
// link.
type FullyConnectedTopology struct {
	numDimms int
}

func NewFullyConnectedTopology(n int) *FullyConnectedTopology {
	return &FullyConnectedTopology{numDimms: n}
}

func (t *FullyConnectedTopology) String() string { return "FullyConnectedTopology" }

func (t *FullyConnectedTopology) NumDimms() int { return t.numDimms }

func (t *FullyConnectedTopology) PerHopLatency() int { return perHopLatencyCycles }

func (t *FullyConnectedTopology) Route(from, to DimmId) []Hop {
	return []Hop{{from, to}}
}

func (t *FullyConnectedTopology) Links() []Link {
	var links []Link
	for i := 0; i < t.numDimms; i++ {
		for j := i + 1; j < t.numDimms; j++ {
			links = append(links, Link{DimmId(i), DimmId(j)})
		}
	}
	return links
}
