package memsys

import "unsafe"

// ReadWord reads the 64-bit word at addr non-atomically. Used by tracing
// kernels to dereference a slot (an address recorded as holding a
// reference) without needing their own unsafe-pointer boilerplate.
func ReadWord(addr Addr) uint64 {
	return *(*uint64)(unsafe.Pointer(uintptr(addr)))
}

// WriteWord writes v to the 64-bit word at addr non-atomically.
func WriteWord(addr Addr, v uint64) {
	*(*uint64)(unsafe.Pointer(uintptr(addr))) = v
}

// WriteWordVolatile performs the volatile store the forwarding protocol
// requires after rewriting a slot to a forwarded address: a racing reader
// must see either the old or new address, never a torn word.
func WriteWordVolatile(addr Addr, v uint64) {
	headerWordAtomic(addr).Store(v)
}
