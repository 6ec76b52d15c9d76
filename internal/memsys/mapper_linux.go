//go:build linux

package memsys

import (
	"golang.org/x/sys/unix"

	"github.com/gc-research/tracebench/internal/cmn"
)

// mmapFixed reserves [addr, addr+size) at its exact virtual address:
// read/write/execute, non-replacing (MAP_FIXED_NOREPLACE), lazily populated
// (no MAP_POPULATE), without swap reservation (MAP_NORESERVE).
//
// Execute permission is requested (not strictly needed by a tracing
// workload) because the original snapshot format doesn't distinguish code
// from data spaces and some TIB-adjacent regions in the OpenJDK object model
// are conventionally mapped RWX by the JVM this harness replays.
func mmapFixed(addr Addr, size uint64) error {
	prot := unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC
	flags := unix.MAP_PRIVATE | unix.MAP_ANON | unix.MAP_FIXED_NOREPLACE | unix.MAP_NORESERVE
	_, _, errno := unix.Syscall6(unix.SYS_MMAP, uintptr(addr), uintptr(size), uintptr(prot), uintptr(flags), ^uintptr(0), 0)
	if errno != 0 {
		if errno == unix.EEXIST || errno == unix.EINVAL {
			return cmn.NewError(cmn.AddressUnavailable, "mmap(0x%x, %d) failed: %v", addr, size, errno)
		}
		return cmn.NewError(cmn.OutOfMemory, "mmap(0x%x, %d) failed: %v", addr, size, errno)
	}
	return nil
}

func munmapFixed(addr Addr, size uint64) error {
	return unix.Munmap(unsafeSlice(addr, size))
}
