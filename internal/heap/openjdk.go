package heap

import (
	"sync"
	"unsafe"

	"github.com/OneOfOne/xxhash"

	"github.com/gc-research/tracebench/internal/cmn/debug"
)

// AlignmentEncodingPattern is the 3-bit discriminant stored in a TIB
// pointer's low bits, covering the common non-array reference shapes plus
// a fallback sentinel for anything else.
type AlignmentEncodingPattern uint8

const (
	PatternNoRef AlignmentEncodingPattern = iota
	PatternRef0
	PatternRef1_2_3
	PatternRef4_5_6
	PatternRef2
	PatternRef0_1
	PatternRefArray
	PatternFallback
)

const (
	alignFieldWidth = 3
	alignMaxWords   = 1 << alignFieldWidth
	alignFieldShift = 3 // log2(bytes per word)
	alignIncrement  = uintptr(1) << alignFieldShift
	alignKlassMask  = uintptr(alignMaxWords-1) << alignFieldShift
)

func patternFromTIBAddr(tibAddr uintptr) AlignmentEncodingPattern {
	code := (tibAddr & alignKlassMask) >> alignFieldShift
	debug.Assert(code < alignMaxWords, "invalid alignment-encoding code")
	return AlignmentEncodingPattern(code)
}

// TIB is the OpenJDK-shaped type-information block: per-class reference
// layout plus, for InstanceMirror objects, the external static-field block.
type TIB struct {
	Kind                TIBKind
	OopMapBlocks        []OopMapBlock
	hasMirror           bool
	InstanceMirrorStart Addr
	InstanceMirrorCount uint64
}

func (t *TIB) NumEdges() uint64 {
	var sum uint64
	for _, b := range t.OopMapBlocks {
		sum += b.Count
	}
	if t.hasMirror {
		sum += t.InstanceMirrorCount
	}
	return sum
}

// tibArena backs alignment-encoded TIB allocations: storage is appended
// here purely to keep the GC from reclaiming it, mirroring the leak the
// original harness performs via Arc::into_raw — TIBs live for the whole
// measurement.
var tibArena struct {
	mu   sync.Mutex
	keep [][]byte
}

// allocTIB places a TIB value at an address whose low alignFieldWidth bits
// (above the word-size shift) equal align, when align is non-nil. The AE=false
// path just heap-allocates normally.
func allocTIB(v TIB, align *AlignmentEncodingPattern) *TIB {
	if align == nil {
		t := v
		return &t
	}
	const wordBytes = 8
	size := unsafe.Sizeof(TIB{})
	padded := size + alignMaxWords*wordBytes
	storage := make([]byte, padded)
	base := uintptr(unsafe.Pointer(&storage[0]))
	region := base
	limit := base + uintptr(len(storage))
	for patternFromTIBAddr(region) != *align {
		region += alignIncrement
		debug.Assert(region <= limit, "alignment-encoded TIB region overran its arena")
	}
	tib := (*TIB)(unsafe.Pointer(region))
	*tib = v
	tibArena.mu.Lock()
	tibArena.keep = append(tibArena.keep, storage)
	tibArena.mu.Unlock()
	return tib
}

type tibRegistry struct {
	mu      sync.Mutex
	byKlass map[uint64]*TIB
}

func newTIBRegistry() *tibRegistry {
	return &tibRegistry{byKlass: make(map[uint64]*TIB)}
}

func tibCacheKey(klass uint64) uint64 {
	var buf [8]byte
	for i := range buf {
		buf[i] = byte(klass >> (8 * i))
	}
	return xxhash.Checksum64(buf[:])
}

func (r *tibRegistry) getOrInsert(klass uint64, build func() TIB, align *AlignmentEncodingPattern) *TIB {
	key := tibCacheKey(klass)
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.byKlass[key]; ok {
		return t
	}
	t := allocTIB(build(), align)
	r.byKlass[key] = t
	return t
}

func (r *tibRegistry) reset() {
	r.mu.Lock()
	r.byKlass = make(map[uint64]*TIB)
	r.mu.Unlock()
}

// OpenJDKModel is the `[header | tib-ptr | (length?) | payload]` object
// layout. AE enables alignment encoding: scanning common reference shapes
// reads the TIB pointer's tag bits and skips the TIB dereference entirely.
type OpenJDKModel struct {
	AE bool

	tibs    *tibRegistry
	objects []Addr
	roots   []Addr
	sizes   map[Addr]uint64
}

func NewOpenJDKModel(ae bool) *OpenJDKModel {
	return &OpenJDKModel{
		AE:    ae,
		tibs:  newTIBRegistry(),
		sizes: make(map[Addr]uint64),
	}
}

func (m *OpenJDKModel) Reset() {
	m.tibs.reset()
	m.objects = nil
	m.roots = nil
	m.sizes = make(map[Addr]uint64)
}

func encodeOopMapBlocks(o *Object) []OopMapBlock {
	var blocks []OopMapBlock
	for _, e := range o.Edges {
		if o.InstanceMirrorStart != nil {
			start := *o.InstanceMirrorStart
			count := *o.InstanceMirrorCount
			if e.Slot >= start && e.Slot < start+Addr(count*8) {
				continue
			}
		}
		if n := len(blocks); n > 0 {
			last := &blocks[n-1]
			if uint64(e.Slot-o.Start) == last.Offset+last.Count*8 {
				last.Count++
				continue
			}
		}
		blocks = append(blocks, OopMapBlock{Offset: uint64(e.Slot - o.Start), Count: 1})
	}
	return blocks
}

func alignmentEncodeBlocks(blocks []OopMapBlock) AlignmentEncodingPattern {
	var bits uint8
	for _, b := range blocks {
		first := int64(b.Offset>>alignFieldShift) - 2
		last := first + int64(b.Count) - 1
		if first > 6 || last > 6 || first < 0 {
			return PatternFallback
		}
		for i := first; i <= last; i++ {
			bits |= 1 << uint(i)
		}
	}
	switch bits {
	case 0b0000000:
		return PatternNoRef
	case 0b0000001:
		return PatternRef0
	case 0b0000011:
		return PatternRef0_1
	case 0b0000100:
		return PatternRef2
	case 0b0001110:
		return PatternRef1_2_3
	case 0b1110000:
		return PatternRef4_5_6
	default:
		return PatternFallback
	}
}

func (m *OpenJDKModel) tibFor(o *Object) *TIB {
	if o.IsObjArray() {
		var align *AlignmentEncodingPattern
		if m.AE {
			p := PatternRefArray
			align = &p
		}
		return m.tibs.getOrInsert(o.Klass, func() TIB {
			return TIB{Kind: ObjArrayKind}
		}, align)
	}
	blocks := encodeOopMapBlocks(o)
	if o.InstanceMirrorStart != nil {
		start, count := *o.InstanceMirrorStart, *o.InstanceMirrorCount
		var align *AlignmentEncodingPattern
		if m.AE {
			p := alignmentEncodeBlocks(blocks)
			align = &p
		}
		// InstanceMirror TIBs are unique per object: never cached by klass.
		return allocTIB(TIB{
			Kind:                InstanceMirrorKind,
			OopMapBlocks:        blocks,
			hasMirror:           true,
			InstanceMirrorStart: start,
			InstanceMirrorCount: count,
		}, align)
	}
	var align *AlignmentEncodingPattern
	if m.AE {
		p := alignmentEncodeBlocks(blocks)
		align = &p
	}
	return m.tibs.getOrInsert(o.Klass, func() TIB {
		return TIB{Kind: Ordinary, OopMapBlocks: blocks}
	}, align)
}

func (m *OpenJDKModel) Restore(snap *Snapshot) {
	m.objects = make([]Addr, 0, len(snap.Objects))
	for i := range snap.Objects {
		o := &snap.Objects[i]
		m.objects = append(m.objects, o.Start)
		m.sizes[o.Start] = o.Size
	}
	m.roots = make([]Addr, 0, len(snap.Roots))
	for _, r := range snap.Roots {
		m.roots = append(m.roots, r.ObjRef)
	}

	for i := range snap.Objects {
		o := &snap.Objects[i]
		tib := m.tibFor(o)
		if !o.IsObjArray() {
			debug.Assert(tib.NumEdges() == uint64(len(o.Edges)), "TIB edge count mismatch")
		}
		tibPtrWord(o.Start).store(uintptr(unsafe.Pointer(tib)))
		if o.ObjArrayLength != nil {
			lengthWord(o.Start).store(*o.ObjArrayLength)
		}
		for _, e := range o.Edges {
			*(*uint64)(unsafe.Pointer(uintptr(e.Slot))) = uint64(e.ObjRef)
		}
	}
}

func tibPtrWord(o Addr) uintptrWord    { return uintptrWord(o + 8) }
func lengthWord(o Addr) uintptrWord    { return uintptrWord(o + 16) }

type uintptrWord uintptr

func (w uintptrWord) store(v uintptr) { *(*uintptr)(unsafe.Pointer(uintptr(w))) = v }
func (w uintptrWord) load() uintptr   { return *(*uintptr)(unsafe.Pointer(uintptr(w))) }

func (m *OpenJDKModel) Roots() []Addr   { return m.roots }
func (m *OpenJDKModel) Objects() []Addr { return m.objects }

func (m *OpenJDKModel) GetTIB(o Addr) *TIB {
	ptr := tibPtrWord(o).load()
	debug.Assert(ptr != 0, "object has a null tib pointer")
	return (*TIB)(unsafe.Pointer(ptr))
}

// TIBAddr returns the raw TIB pointer value, used as a shape-cache key so
// the cache never has to dereference the TIB on a hit.
func (m *OpenJDKModel) TIBAddr(o Addr) uintptr { return tibPtrWord(o).load() }

func (m *OpenJDKModel) TIBLookupRequired(o Addr) bool {
	if !m.AE {
		return true
	}
	ptr := tibPtrWord(o).load()
	debug.Assert(ptr != 0, "object has a null tib pointer")
	return patternFromTIBAddr(ptr) == PatternFallback
}

func (m *OpenJDKModel) IsArray(o Addr) bool {
	return m.GetTIB(o).Kind == ObjArrayKind
}

func scanFallback(tib *TIB, o Addr, visit func(base Addr, count uint64)) {
	switch tib.Kind {
	case ObjArrayKind:
		length := lengthWord(o).load()
		visit(o+24, uint64(length))
	case InstanceMirrorKind:
		for _, b := range tib.OopMapBlocks {
			visit(o+Addr(b.Offset), b.Count)
		}
		visit(tib.InstanceMirrorStart, tib.InstanceMirrorCount)
	case Ordinary:
		for _, b := range tib.OopMapBlocks {
			visit(o+Addr(b.Offset), b.Count)
		}
	}
}

func (m *OpenJDKModel) Scan(o Addr, visit func(base Addr, count uint64)) {
	ptr := tibPtrWord(o).load()
	debug.Assert(ptr != 0, "object has a null tib pointer")
	if !m.AE {
		scanFallback((*TIB)(unsafe.Pointer(ptr)), o, visit)
		return
	}
	switch patternFromTIBAddr(ptr) {
	case PatternFallback:
		scanFallback((*TIB)(unsafe.Pointer(ptr)), o, visit)
	case PatternRefArray:
		length := lengthWord(o).load()
		visit(o+24, uint64(length))
	case PatternNoRef:
	case PatternRef0:
		visit(o+16, 1)
	case PatternRef1_2_3:
		visit(o+24, 3)
	case PatternRef4_5_6:
		visit(o+48, 3)
	case PatternRef2:
		visit(o+32, 1)
	case PatternRef0_1:
		visit(o+16, 2)
	}
}

func (m *OpenJDKModel) ObjectSizes() map[Addr]uint64 { return m.sizes }
