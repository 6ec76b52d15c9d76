package trace

import "github.com/gc-research/tracebench/internal/heap"

// EdgeSlot is the minimum-work-per-object kernel: the queue holds slot
// addresses, not objects, so marking an object costs one CAS but its
// parent edge is never revisited.
func EdgeSlot(model heap.ObjectModel, markSense uint8) Stats {
	var stats Stats
	var queue []Addr

	markAndScan := func(o Addr) {
		stats.MarkedObjects++
		model.Scan(o, func(base Addr, count uint64) {
			for i := uint64(0); i < count; i++ {
				queue = append(queue, base+Addr(i*8))
			}
		})
	}

	for _, o := range model.Roots() {
		stats.Slots++
		if o == 0 {
			continue
		}
		stats.NonEmptySlots++
		if traceObject(o, markSense) {
			markAndScan(o)
		}
	}
	for len(queue) > 0 {
		slot := queue[0]
		queue = queue[1:]
		o := Addr(readWord(slot))
		stats.Slots++
		if o == 0 {
			continue
		}
		stats.NonEmptySlots++
		if traceObject(o, markSense) {
			markAndScan(o)
		}
	}
	return stats
}
