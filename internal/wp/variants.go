package wp

import "github.com/gc-research/tracebench/internal/heap"

// rootPackets slices model's root array into capacity-sized ScanRoots
// packets, one per chunk, so root scanning itself is parallelized across
// the pool instead of run by a single worker up front.
func rootPackets(model heap.ObjectModel, capacity int) []Packet {
	n := len(model.Roots())
	var out []Packet
	for start := 0; start < n; start += capacity {
		end := start + capacity
		if end > n {
			end = n
		}
		out = append(out, ScanRoots{Start: start, End: end})
	}
	return out
}

// WP is the baseline work-packet kernel: root scanning and edge tracing
// both flow through plain worker deques with no bucket DAG, LIFO order.
func WP(model heap.ObjectModel, markSense uint8, numWorkers, capacity int) Stats {
	pool := NewPool(model, markSense, numWorkers, capacity, LIFO, nil, nil, false)
	pool.Seed(rootPackets(model, capacity))
	return pool.Run()
}

// WP2 wires root scanning and edge tracing into a two-stage bucket DAG:
// the entry bucket is opened unconditionally, cascading its successor open
// immediately in a single-pass trace, but giving a multi-epoch driver a
// place to hold tracing back until root scanning for that epoch is wired
// up (e.g. behind a MarkTableZeroing stage).
func WP2(model heap.ObjectModel, markSense uint8, numWorkers, capacity int) Stats {
	roots := NewBucket("scan-roots")
	trace := NewBucket("trace")
	AddEdge(roots, trace)

	pool := NewPool(model, markSense, numWorkers, capacity, LIFO, trace, nil, false)
	roots.Open()
	pool.Seed(rootPackets(model, capacity))
	return pool.Run()
}

// WPEdgeSlot is the FIFO-ordered, single-queue edge-slot variant: all work
// is TracePacket batches of reference slots, matching the kernel internal
// /trace.EdgeSlot's traversal order but parallelized over a worker pool.
func WPEdgeSlot(model heap.ObjectModel, markSense uint8, numWorkers, capacity int) Stats {
	pool := NewPool(model, markSense, numWorkers, capacity, FIFO, nil, nil, false)
	pool.Seed(rootPackets(model, capacity))
	return pool.Run()
}

// WPEdgeSlotDual runs the FIFO pool with an open trace bucket and an open
// scan bucket. Emitted TracePackets are routed through the trace bucket,
// but TracePacket marks objects and scans their slots inline and never
// emits a ScanPacket, so no ScanPacket is created and tracing proceeds as
// in WPEdgeSlot.
func WPEdgeSlotDual(model heap.ObjectModel, markSense uint8, numWorkers, capacity int) Stats {
	traceBucket := NewBucket("trace")
	scanBucket := NewBucket("scan")
	traceBucket.Open()
	scanBucket.Open()

	pool := NewPool(model, markSense, numWorkers, capacity, FIFO, traceBucket, scanBucket, false)
	pool.Seed(rootPackets(model, capacity))
	return pool.Run()
}

// Forwarding runs the copying variant: each object is copied into to-space
// exactly once (via the forwarding header byte) before its children are
// traced, charging copy cost without relocating pointers.
func Forwarding(model heap.ObjectModel, markSense uint8, numWorkers, capacity int) Stats {
	n := len(model.Roots())
	var seed []Packet
	for start := 0; start < n; start += capacity {
		end := start + capacity
		if end > n {
			end = n
		}
		seed = append(seed, ForwardingScanRoots{Start: start, End: end})
	}
	pool := NewPool(model, markSense, numWorkers, capacity, LIFO, nil, nil, true)
	pool.Seed(seed)
	return pool.Run()
}
