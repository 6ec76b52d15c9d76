//go:build !linux

package memsys

import "github.com/gc-research/tracebench/internal/cmn"

// Fixed-address reservation relies on MAP_FIXED_NOREPLACE, which this
// harness only implements for Linux — the platform the recorded snapshots
// and the NMP simulator's DDR4 timing model both target.
func mmapFixed(addr Addr, size uint64) error {
	return cmn.NewError(cmn.OutOfMemory, "fixed-address mapping is only implemented on linux")
}

func munmapFixed(addr Addr, size uint64) error {
	return nil
}
