package memsys

import "unsafe"

// unsafeSlice views the memory at addr as a []byte of the given length,
// without copying — used only to hand mapped regions to unix.Munmap.
func unsafeSlice(addr Addr, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), size)
}
