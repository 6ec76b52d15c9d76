package trace

import "github.com/gc-research/tracebench/internal/memsys"

func readWord(addr Addr) uint64 { return memsys.ReadWord(addr) }
