package trace

import "github.com/gc-research/tracebench/internal/heap"

// NodeObjref enqueues marked objects rather than slots: a smaller queue,
// at the cost of a mark CAS per edge instead of per newly discovered
// object.
func NodeObjref(model heap.ObjectModel, markSense uint8) Stats {
	var stats Stats
	var queue []Addr

	for _, o := range model.Roots() {
		stats.Slots++
		if o != 0 {
			stats.NonEmptySlots++
		}
		if o != 0 && traceObject(o, markSense) {
			stats.MarkedObjects++
			queue = append(queue, o)
		}
	}
	for len(queue) > 0 {
		o := queue[0]
		queue = queue[1:]
		model.Scan(o, func(base Addr, count uint64) {
			for i := uint64(0); i < count; i++ {
				stats.Slots++
				child := Addr(readWord(base + Addr(i*8)))
				if child == 0 {
					continue
				}
				stats.NonEmptySlots++
				if traceObject(child, markSense) {
					stats.MarkedObjects++
					queue = append(queue, child)
				}
			}
		})
	}
	return stats
}

// EdgeObjref enqueues referents directly (as opposed to slots): the
// mark-and-scan decision happens on dequeue, unlike NodeObjref, which
// marks before enqueueing, so the queue holds every observed non-null
// referent rather than only newly marked ones.
func EdgeObjref(model heap.ObjectModel, markSense uint8) Stats {
	var stats Stats
	var queue []Addr

	for _, o := range model.Roots() {
		stats.Slots++
		if o != 0 {
			stats.NonEmptySlots++
		}
		queue = append(queue, o)
	}
	for len(queue) > 0 {
		o := queue[0]
		queue = queue[1:]
		if o == 0 || !traceObject(o, markSense) {
			continue
		}
		stats.MarkedObjects++
		model.Scan(o, func(base Addr, count uint64) {
			for i := uint64(0); i < count; i++ {
				child := Addr(readWord(base + Addr(i*8)))
				stats.Slots++
				if child != 0 {
					stats.NonEmptySlots++
					queue = append(queue, child)
				}
			}
		})
	}
	return stats
}
