// Package trace implements the tracing kernels that compute a transitive
// closure over a restored heap graph: single-threaded edge and node
// enqueuing loops, a distributed node-objref loop, and a shape-cache
// variant. The work-packet kernels live in internal/wp.
package trace

import "github.com/gc-research/tracebench/internal/memsys"

// Addr aliases memsys.Addr for the same reason internal/heap does.
type Addr = memsys.Addr

// ShapeCacheStats tracks hit/miss accounting for the shape-cache kernel.
type ShapeCacheStats struct {
	Hits   uint64
	Misses uint64
}

func (s *ShapeCacheStats) add(o ShapeCacheStats) {
	s.Hits += o.Hits
	s.Misses += o.Misses
}

// Stats is what every kernel returns after one epoch.
type Stats struct {
	MarkedObjects   uint64
	Slots           uint64
	NonEmptySlots   uint64
	Sends           uint64
	ShapeCacheStats ShapeCacheStats
}

func (s *Stats) add(o Stats) {
	s.MarkedObjects += o.MarkedObjects
	s.Slots += o.Slots
	s.NonEmptySlots += o.NonEmptySlots
	s.Sends += o.Sends
	s.ShapeCacheStats.add(o.ShapeCacheStats)
}
