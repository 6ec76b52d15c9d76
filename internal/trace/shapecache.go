package trace

import (
	"container/list"

	"github.com/gc-research/tracebench/internal/heap"
)

// shapeLRU is a fixed-capacity LRU cache keyed by TIB address, modeling
// an on-chip cache of recently seen object shapes. No pack dependency
// offers an LRU equivalent to the reference implementation's `lru` crate,
// so this is hand-rolled over container/list, the same way the teacher
// reaches for container/heap when no third-party priority queue fits.
type shapeLRU struct {
	capacity int
	ll       *list.List
	index    map[uintptr]*list.Element
}

func newShapeLRU(capacity int) *shapeLRU {
	return &shapeLRU{
		capacity: capacity,
		ll:       list.New(),
		index:    make(map[uintptr]*list.Element),
	}
}

// touch reports whether key was already present, then marks it
// most-recently-used (inserting it if absent, evicting the LRU entry if
// the cache is full).
func (c *shapeLRU) touch(key uintptr) (hit bool) {
	if e, ok := c.index[key]; ok {
		c.ll.MoveToFront(e)
		return true
	}
	if c.ll.Len() >= c.capacity {
		back := c.ll.Back()
		if back != nil {
			c.ll.Remove(back)
			delete(c.index, back.Value.(uintptr))
		}
	}
	c.index[key] = c.ll.PushFront(key)
	return false
}

// ShapeCache wraps the edge-slot loop with a per-thread LRU keyed by TIB
// pointer, modeling an on-chip shape cache. model must implement
// heap.TIBProvider to supply cache keys.
func ShapeCache(model heap.ObjectModel, markSense uint8, cacheSize int) Stats {
	provider, ok := model.(heap.TIBProvider)
	if !ok {
		panic("ShapeCache kernel requires an object model implementing heap.TIBProvider")
	}
	cache := newShapeLRU(cacheSize)

	var stats Stats
	var queue []Addr

	markAndScan := func(o Addr) {
		stats.MarkedObjects++
		if cache.touch(provider.TIBAddr(o)) {
			stats.ShapeCacheStats.Hits++
		} else {
			stats.ShapeCacheStats.Misses++
		}
		model.Scan(o, func(base Addr, count uint64) {
			for i := uint64(0); i < count; i++ {
				queue = append(queue, base+Addr(i*8))
			}
		})
	}

	for _, o := range model.Roots() {
		if o != 0 && traceObject(o, markSense) {
			markAndScan(o)
		}
	}
	for len(queue) > 0 {
		slot := queue[0]
		queue = queue[1:]
		o := Addr(readWord(slot))
		if o != 0 && traceObject(o, markSense) {
			markAndScan(o)
		}
	}
	return stats
}
