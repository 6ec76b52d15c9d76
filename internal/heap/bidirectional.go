package heap

import (
	"sync"
	"unsafe"

	"github.com/gc-research/tracebench/internal/cmn/debug"
)

// bidirectionalTIB is deliberately smaller than the OpenJDK TIB: collated
// layout only needs a reference count, never oop-map blocks, since scanning
// reads a single contiguous tail span.
type bidirectionalTIB struct {
	Kind    TIBKind
	NumRefs uint64
}

type bidirectionalRegistry struct {
	mu      sync.Mutex
	byKlass map[uint64]*bidirectionalTIB
}

func newBidirectionalRegistry() *bidirectionalRegistry {
	return &bidirectionalRegistry{byKlass: make(map[uint64]*bidirectionalTIB)}
}

func (r *bidirectionalRegistry) getOrInsert(klass uint64, build func() bidirectionalTIB) *bidirectionalTIB {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byKlass[klass]; ok {
		return t
	}
	t := build()
	r.byKlass[klass] = &t
	return &t
}

func (r *bidirectionalRegistry) reset() {
	r.mu.Lock()
	r.byKlass = make(map[uint64]*bidirectionalTIB)
	r.mu.Unlock()
}

// BidirectionalModel writes every object's references as one contiguous
// span, regardless of class, so scanning reads a single span instead of
// consulting oop-map blocks. When Collated is set, each non-array object is
// moved so that its header, TIB word and references end exactly at the
// object's recorded end; the forwarding table maps recorded starts to new
// starts and is applied to roots and slots. With Collated false (the
// BidirectionalFallback CLI variant) objects keep their recorded addresses
// (the forwarding table is the identity) and their references are written
// contiguously from offset 16, not at their recorded slot addresses.
type BidirectionalModel struct {
	Collated bool

	tibs       *bidirectionalRegistry
	forwarding map[Addr]Addr
	objects    []Addr
	roots      []Addr
	sizes      map[Addr]uint64
}

func NewBidirectionalModel(collated bool) *BidirectionalModel {
	return &BidirectionalModel{
		Collated:   collated,
		tibs:       newBidirectionalRegistry(),
		forwarding: make(map[Addr]Addr),
		sizes:      make(map[Addr]uint64),
	}
}

func (m *BidirectionalModel) Reset() {
	m.tibs.reset()
	m.forwarding = make(map[Addr]Addr)
	m.objects = nil
	m.roots = nil
	m.sizes = make(map[Addr]uint64)
}

func (m *BidirectionalModel) newStartFor(o *Object) Addr {
	if !m.Collated || o.IsObjArray() {
		return o.Start
	}
	end := o.Start + Addr(o.Size)
	return end - Addr(len(o.Edges)*8+16)
}

func (m *BidirectionalModel) Restore(snap *Snapshot) {
	// First pass: compute the forwarding table (identity when not collated).
	for i := range snap.Objects {
		o := &snap.Objects[i]
		newStart := m.newStartFor(o)
		debug.Assert(newStart >= o.Start, "bidirectional layout rewrite moved an object backward")
		m.forwarding[o.Start] = newStart
		m.objects = append(m.objects, newStart)
		m.sizes[newStart] = o.Size
	}
	for _, r := range snap.Roots {
		m.roots = append(m.roots, m.forwarding[r.ObjRef])
	}

	// Second pass: install TIBs and rewritten edges.
	for i := range snap.Objects {
		o := &snap.Objects[i]
		newStart := m.forwarding[o.Start]

		tib := m.tibFor(o)
		if !o.IsObjArray() {
			debug.Assert(tib.NumRefs == uint64(len(o.Edges)), "bidirectional TIB ref count mismatch")
		}
		tibPtrWord(newStart).store(uintptr(unsafe.Pointer(tib)))
		if o.ObjArrayLength != nil {
			lengthWord(newStart).store(*o.ObjArrayLength)
		}

		cursor := newStart + 16
		if o.IsObjArray() {
			cursor = newStart + 24
		}
		for _, e := range o.Edges {
			referent := Addr(0)
			if e.ObjRef != 0 {
				referent = m.forwarding[e.ObjRef]
			}
			*(*uint64)(unsafe.Pointer(uintptr(cursor))) = uint64(referent)
			cursor += 8
		}
		debug.Assert(cursor == o.Start+Addr(o.Size) || m.Collated, "edge cursor did not land on object end")
	}
}

func (m *BidirectionalModel) tibFor(o *Object) *bidirectionalTIB {
	if o.IsObjArray() {
		return m.tibs.getOrInsert(o.Klass, func() bidirectionalTIB {
			return bidirectionalTIB{Kind: ObjArrayKind}
		})
	}
	if o.InstanceMirrorStart != nil {
		// InstanceMirror TIBs are unique per object: never cached by klass.
		return &bidirectionalTIB{Kind: InstanceMirrorKind, NumRefs: uint64(len(o.Edges))}
	}
	return m.tibs.getOrInsert(o.Klass, func() bidirectionalTIB {
		return bidirectionalTIB{Kind: Ordinary, NumRefs: uint64(len(o.Edges))}
	})
}

func (m *BidirectionalModel) Roots() []Addr   { return m.roots }
func (m *BidirectionalModel) Objects() []Addr { return m.objects }

func (m *BidirectionalModel) getTIB(o Addr) *bidirectionalTIB {
	ptr := tibPtrWord(o).load()
	debug.Assert(ptr != 0, "object has a null tib pointer")
	return (*bidirectionalTIB)(unsafe.Pointer(ptr))
}

func (m *BidirectionalModel) IsArray(o Addr) bool { return m.getTIB(o).Kind == ObjArrayKind }

// TIBAddr returns the raw TIB pointer value, used as a shape-cache key.
func (m *BidirectionalModel) TIBAddr(o Addr) uintptr { return tibPtrWord(o).load() }

func (m *BidirectionalModel) TIBLookupRequired(Addr) bool { return true }

func (m *BidirectionalModel) Scan(o Addr, visit func(base Addr, count uint64)) {
	tib := m.getTIB(o)
	if tib.Kind == ObjArrayKind {
		length := lengthWord(o).load()
		visit(o+24, uint64(length))
		return
	}
	visit(o+16, tib.NumRefs)
}

func (m *BidirectionalModel) ObjectSizes() map[Addr]uint64 { return m.sizes }
