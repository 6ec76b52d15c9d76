// Package memsys restores a decoded heap snapshot into this process's
// address space at the snapshot's original addresses, and provides the
// mark/forward header protocol and bump-allocating forwarding arena that
// the tracing kernels build on.
/*
 * Copyright (c) 2024, tracebench authors.
 */
package memsys

import (
	"fmt"

	"github.com/gc-research/tracebench/internal/cmn"
	"github.com/gc-research/tracebench/internal/cmn/nlog"
)

// Addr is an absolute address inside the restored heap. Objects are
// identified by their absolute start address, per the data model: preserving
// original addresses lets pointer bits (owner partition, space tag) be
// recovered with simple bit arithmetic.
type Addr = uint64

// Space is a named, word-aligned, disjoint virtual range reserved at
// restoration and released on teardown.
type Space struct {
	Name  string
	Start Addr
	End   Addr
}

func (s Space) Size() uint64 { return s.End - s.Start }

func (s Space) Contains(a Addr) bool { return a >= s.Start && a < s.End }

// Mapper reserves the exact virtual ranges recorded in a snapshot so that
// original object addresses remain valid identifiers for the lifetime of a
// measurement. See mapper_linux.go for the platform mmap implementation.
type Mapper struct {
	spaces  []Space
	mapped  []mapping
}

type mapping struct {
	addr Addr
	size uint64
}

// NewMapper creates an empty mapper; call Reserve to install spaces.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Reserve maps each space at its exact virtual address, non-replacing and
// lazily populated. It fails fast on the first space that cannot be
// reserved, after rolling back everything reserved so far.
func (m *Mapper) Reserve(spaces []Space) error {
	for _, s := range spaces {
		if s.Start%8 != 0 || s.End%8 != 0 {
			return cmn.NewError(cmn.AddressUnavailable, "space %q not word-aligned: [0x%x,0x%x)", s.Name, s.Start, s.End)
		}
	}
	if err := checkDisjoint(spaces); err != nil {
		return err
	}
	for i, s := range spaces {
		if err := m.reserveOne(s); err != nil {
			m.Release()
			return fmt.Errorf("reserving space %d/%d (%s): %w", i+1, len(spaces), s.Name, err)
		}
	}
	m.spaces = spaces
	nlog.Infof("memsys: reserved %d spaces", len(spaces))
	return nil
}

func (m *Mapper) reserveOne(s Space) error {
	size := s.Size()
	if size == 0 {
		return nil
	}
	if err := mmapFixed(s.Start, size); err != nil {
		return err
	}
	m.mapped = append(m.mapped, mapping{addr: s.Start, size: size})
	return nil
}

// Release unmaps every space reserved by this mapper, in reverse order.
func (m *Mapper) Release() {
	for i := len(m.mapped) - 1; i >= 0; i-- {
		mp := m.mapped[i]
		if err := munmapFixed(mp.addr, mp.size); err != nil {
			nlog.Warningf("memsys: unmap 0x%x (%d bytes) failed: %v", mp.addr, mp.size, err)
		}
	}
	m.mapped = nil
	m.spaces = nil
}

// Spaces returns the currently reserved spaces.
func (m *Mapper) Spaces() []Space { return m.spaces }

// checkDisjoint validates pairwise disjointness without reordering spaces
// (restoration order must match the snapshot).
func checkDisjoint(spaces []Space) error {
	for i := range spaces {
		for j := i + 1; j < len(spaces); j++ {
			a, b := spaces[i], spaces[j]
			if a.Start < b.End && b.Start < a.End {
				return cmn.NewError(cmn.AddressUnavailable,
					"overlapping spaces %q [0x%x,0x%x) and %q [0x%x,0x%x)",
					a.Name, a.Start, a.End, b.Name, b.Start, b.End)
			}
		}
	}
	return nil
}
