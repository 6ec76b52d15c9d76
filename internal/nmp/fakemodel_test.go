package nmp

import (
	"unsafe"

	"github.com/gc-research/tracebench/internal/heap"
)

// fakeNode mirrors internal/wp's test fixture: word 0 is the mark/forward
// header, words 1.. are reference slots.
type fakeNode struct {
	words []uint64
}

func newFakeNode(numRefs int) *fakeNode {
	return &fakeNode{words: make([]uint64, 1+numRefs)}
}

func (n *fakeNode) addr() Addr { return Addr(uintptr(unsafe.Pointer(&n.words[0]))) }

func (n *fakeNode) slotAddr(i int) Addr {
	return Addr(uintptr(unsafe.Pointer(&n.words[1+i])))
}

func (n *fakeNode) setRef(i int, target Addr) { n.words[1+i] = uint64(target) }

type fakeModel struct {
	nodes map[Addr]*fakeNode
	roots []Addr
	objs  []Addr
}

var _ heap.ObjectModel = (*fakeModel)(nil)

func (m *fakeModel) Reset()                      {}
func (m *fakeModel) Restore(*heap.Snapshot)       {}
func (m *fakeModel) Roots() []Addr                { return m.roots }
func (m *fakeModel) Objects() []Addr              { return m.objs }
func (m *fakeModel) IsArray(Addr) bool            { return false }
func (m *fakeModel) TIBLookupRequired(Addr) bool  { return false }
func (m *fakeModel) ObjectSizes() map[Addr]uint64 { return nil }

func (m *fakeModel) Scan(o Addr, visit func(base Addr, count uint64)) {
	n, ok := m.nodes[o]
	if !ok || len(n.words) <= 1 {
		return
	}
	visit(n.slotAddr(0), uint64(len(n.words)-1))
}

func lineListModel() *fakeModel {
	a, b, c := newFakeNode(1), newFakeNode(1), newFakeNode(0)
	b.setRef(0, c.addr())
	a.setRef(0, b.addr())
	m := &fakeModel{nodes: map[Addr]*fakeNode{}}
	for _, n := range []*fakeNode{a, b, c} {
		m.nodes[n.addr()] = n
		m.objs = append(m.objs, n.addr())
	}
	m.roots = []Addr{a.addr()}
	return m
}

func diamondModel() *fakeModel {
	root, left, right, shared := newFakeNode(2), newFakeNode(1), newFakeNode(1), newFakeNode(0)
	root.setRef(0, left.addr())
	root.setRef(1, right.addr())
	left.setRef(0, shared.addr())
	right.setRef(0, shared.addr())
	m := &fakeModel{nodes: map[Addr]*fakeNode{}}
	for _, n := range []*fakeNode{root, left, right, shared} {
		m.nodes[n.addr()] = n
		m.objs = append(m.objs, n.addr())
	}
	m.roots = []Addr{root.addr()}
	return m
}
