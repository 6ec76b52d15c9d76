package heap

// ObjectModel restores a snapshot into a mapped address space and exposes
// uniform iteration over each object's outgoing reference slots. Both
// variants (OpenJDK-shaped and Bidirectional) implement this.
type ObjectModel interface {
	// Reset clears per-snapshot state; called before restoring a new
	// snapshot or re-running an epoch from scratch.
	Reset()

	// Restore populates the mapped heap: installs TIBs, writes array
	// length words, and writes reference words into slots.
	Restore(snap *Snapshot)

	// Roots returns the absolute addresses held by the root set, in
	// restored (post-layout) form.
	Roots() []Addr

	// Objects returns the absolute start address of every restored
	// object, in restored form.
	Objects() []Addr

	// Scan enumerates o's contiguous reference spans, calling visit with
	// each span's base slot address and slot count.
	Scan(o Addr, visit func(base Addr, count uint64))

	// IsArray reports whether o is an object-array.
	IsArray(o Addr) bool

	// TIBLookupRequired reports whether scanning o requires dereferencing
	// its TIB, as opposed to being resolved purely from the TIB pointer's
	// encoded bits.
	TIBLookupRequired(o Addr) bool

	// ObjectSizes returns the byte size of every restored object, keyed
	// by its restored start address.
	ObjectSizes() map[Addr]uint64
}

// TIBProvider is implemented by object models whose TIB pointer can serve
// as a shape-cache key, without the cache needing to know the model's
// concrete TIB type.
type TIBProvider interface {
	TIBAddr(o Addr) uintptr
}

// TIBKind discriminates the three reference-layout shapes a TIB describes.
type TIBKind uint8

const (
	Ordinary TIBKind = iota
	ObjArrayKind
	InstanceMirrorKind
)

// OopMapBlock is a contiguous reference span within a non-array object:
// byte offset from the object's start, and the number of reference words
// starting there.
type OopMapBlock struct {
	Offset uint64
	Count  uint64
}
