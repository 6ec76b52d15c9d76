package wp

import (
	"unsafe"

	"github.com/gc-research/tracebench/internal/memsys"
)

// forwardedSentinel is the terminal forwarding-byte value the forwarding
// variant publishes once an object's payload has been copied into to-space.
const forwardedSentinel uint8 = 1

func bytesAt(o Addr, size uint64) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(o))), int(size))
}

// ForwardingPacket is the copying variant of TracePacket: the first worker
// to visit an object CASes its forwarding byte and charges a copy into
// to-space before scanning; later visitors spin until the copy publishes,
// then proceed without copying again. The object's own address never
// changes (see memsys.SpinAndGetForwardedObject) — only its payload bytes
// are charged as moved, modeling copying-collector cost without pointer
// rewriting.
type ForwardingPacket struct {
	Slots []Addr
}

func (s *Scheduler) emitForwardingPackets(slots []Addr) {
	for _, c := range s.chunk(slots) {
		s.enqueue(ForwardingPacket{Slots: c}, s.traceBucket)
	}
}

// ForwardingScanRoots is the forwarding variant's counterpart to ScanRoots:
// roots are forwarded (copied) directly rather than merely mark-traced,
// before their children are enqueued as ForwardingPacket batches.
type ForwardingScanRoots struct {
	Start, End int
}

func (p ForwardingScanRoots) Run(s *Scheduler) Stats {
	var stats Stats
	var slots []Addr
	for _, o := range s.model.Roots()[p.Start:p.End] {
		stats.Slots++
		if o == 0 {
			continue
		}
		stats.NonEmptySlots++
		switch memsys.AttemptToForward(o, forwardedSentinel) {
		case memsys.NotForwarded:
			if sz, ok := s.sizes[o]; ok && sz > 0 {
				s.allocator().CopyObject(bytesAt(o, sz))
			}
			memsys.SetAsForwarded(o, forwardedSentinel)
			stats.MarkedObjects++
			s.model.Scan(o, func(base Addr, count uint64) {
				for i := uint64(0); i < count; i++ {
					slots = append(slots, base+Addr(i*8))
				}
			})
		case memsys.Forwarding:
			memsys.SpinAndGetForwardedObject(o, forwardedSentinel)
		case memsys.Forwarded:
		}
	}
	s.emitForwardingPackets(slots)
	return stats
}

func (p ForwardingPacket) Run(s *Scheduler) Stats {
	var stats Stats
	var next []Addr
	for _, slot := range p.Slots {
		o := Addr(memsys.ReadWord(slot))
		stats.Slots++
		if o == 0 {
			continue
		}
		stats.NonEmptySlots++
		switch memsys.AttemptToForward(o, forwardedSentinel) {
		case memsys.NotForwarded:
			if sz, ok := s.sizes[o]; ok && sz > 0 {
				s.allocator().CopyObject(bytesAt(o, sz))
			}
			memsys.SetAsForwarded(o, forwardedSentinel)
			stats.MarkedObjects++
			s.model.Scan(o, func(base Addr, count uint64) {
				for i := uint64(0); i < count; i++ {
					next = append(next, base+Addr(i*8))
				}
			})
		case memsys.Forwarding:
			memsys.SpinAndGetForwardedObject(o, forwardedSentinel)
		case memsys.Forwarded:
			// Already copied and scanned by the worker that won the race.
		}
	}
	s.emitForwardingPackets(next)
	return stats
}
