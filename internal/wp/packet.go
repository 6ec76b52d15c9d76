// Package wp implements the work-packet tracing kernel: bounded batches of
// tracing work flowing through named buckets, executed by a fixed pool of
// long-lived workers coordinated through a monitor and work-stealing
// deques.
package wp

import "github.com/gc-research/tracebench/internal/memsys"

// Addr aliases memsys.Addr for the same reason internal/heap does.
type Addr = memsys.Addr

// DefaultCapacity is the default bound on slots/objects per packet.
const DefaultCapacity = 1024

// Packet is a unit of tracing work: executing it may enqueue further
// packets into this or another bucket via the Scheduler passed to Run.
type Packet interface {
	// Run executes the packet against sched, returning stats it
	// contributed (marked objects, slots visited, etc).
	Run(sched *Scheduler) Stats
}

// Stats accumulates the counters every packet kind can contribute.
type Stats struct {
	MarkedObjects uint64
	Slots         uint64
	NonEmptySlots uint64
}

func (s *Stats) add(o Stats) {
	s.MarkedObjects += o.MarkedObjects
	s.Slots += o.Slots
	s.NonEmptySlots += o.NonEmptySlots
}

// ScanRoots slices the root array: [Start, End) into the model's Roots().
type ScanRoots struct {
	Start, End int
}

func (p ScanRoots) Run(s *Scheduler) Stats {
	var stats Stats
	roots := s.model.Roots()
	var slots []Addr
	for _, o := range roots[p.Start:p.End] {
		stats.Slots++
		if o == 0 {
			continue
		}
		stats.NonEmptySlots++
		if s.trace(o) {
			stats.MarkedObjects++
			s.model.Scan(o, func(base Addr, count uint64) {
				for i := uint64(0); i < count; i++ {
					slots = append(slots, base+Addr(i*8))
				}
			})
		}
	}
	s.emitTracePackets(slots)
	return stats
}

// TracePacket processes a bounded batch of slots: dereference, mark,
// enumerate children, re-emit as further TracePackets.
type TracePacket struct {
	Slots []Addr
}

func (p TracePacket) Run(s *Scheduler) Stats {
	var stats Stats
	var next []Addr
	for _, slot := range p.Slots {
		o := Addr(memsys.ReadWord(slot))
		stats.Slots++
		if o == 0 {
			continue
		}
		stats.NonEmptySlots++
		if s.trace(o) {
			stats.MarkedObjects++
			s.model.Scan(o, func(base Addr, count uint64) {
				for i := uint64(0); i < count; i++ {
					next = append(next, base+Addr(i*8))
				}
			})
		}
	}
	s.emitTracePackets(next)
	return stats
}

// ScanPacket processes a bounded batch of already-marked objects: it
// enumerates their slots, marks each non-null referent, and re-emits the
// newly marked objects as further ScanPackets through the scan bucket.
// Neither ScanRoots nor TracePacket emits one, so no kernel in this
// package creates a ScanPacket.
type ScanPacket struct {
	Objects []Addr
}

func (p ScanPacket) Run(s *Scheduler) Stats {
	if s.scanSem != nil {
		defer s.scanSem.Release(1)
	}
	var stats Stats
	var slots []Addr
	for _, o := range p.Objects {
		s.model.Scan(o, func(base Addr, count uint64) {
			for i := uint64(0); i < count; i++ {
				slots = append(slots, base+Addr(i*8))
			}
		})
	}
	stats.Slots += uint64(len(slots))
	var objs []Addr
	for _, slot := range slots {
		o := Addr(memsys.ReadWord(slot))
		if o == 0 {
			continue
		}
		stats.NonEmptySlots++
		if s.trace(o) {
			stats.MarkedObjects++
			objs = append(objs, o)
		}
	}
	s.emitScanPackets(objs)
	return stats
}

// MarkTableZeroing prepares a side mark table range for the next epoch.
type MarkTableZeroing struct {
	Table      *memsys.SideMarkTable
	Start, End int
}

func (p MarkTableZeroing) Run(*Scheduler) Stats {
	p.Table.BulkZero(p.Start, p.End)
	return Stats{}
}
