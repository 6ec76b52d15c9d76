package wp

import (
	"unsafe"

	"github.com/gc-research/tracebench/internal/heap"
)

// fakeNode is a minimal graph node: word 0 holds the mark/forward header,
// words 1.. hold reference slots, mirroring internal/trace's own test
// fixture but kept local so internal/wp doesn't need to depend on
// internal/trace's test-only types.
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
	sizes map[Addr]uint64
}

var _ heap.ObjectModel = (*fakeModel)(nil)

func (m *fakeModel) Reset()                {}
func (m *fakeModel) Restore(*heap.Snapshot) {}
func (m *fakeModel) Roots() []Addr          { return m.roots }
func (m *fakeModel) Objects() []Addr        { return m.objs }
func (m *fakeModel) IsArray(Addr) bool      { return false }
func (m *fakeModel) TIBLookupRequired(Addr) bool { return false }
func (m *fakeModel) ObjectSizes() map[Addr]uint64 { return m.sizes }

func (m *fakeModel) Scan(o Addr, visit func(base Addr, count uint64)) {
	n, ok := m.nodes[o]
	if !ok || len(n.words) <= 1 {
		return
	}
	visit(n.slotAddr(0), uint64(len(n.words)-1))
}

// lineListModel builds a -> b -> c -> nil, matching the simplest end-to-end
// scenario.
func lineListModel() *fakeModel {
	a, b, c := newFakeNode(1), newFakeNode(1), newFakeNode(0)
	b.setRef(0, c.addr())
	a.setRef(0, b.addr())
	m := &fakeModel{nodes: map[Addr]*fakeNode{}, sizes: map[Addr]uint64{}}
	for _, n := range []*fakeNode{a, b, c} {
		m.nodes[n.addr()] = n
		m.objs = append(m.objs, n.addr())
		m.sizes[n.addr()] = uint64(len(n.words) * 8)
	}
	m.roots = []Addr{a.addr()}
	return m
}

// diamondModel builds root -> {left, right} -> shared, exercising a node
// reachable by two independent paths.
func diamondModel() *fakeModel {
	root, left, right, shared := newFakeNode(2), newFakeNode(1), newFakeNode(1), newFakeNode(0)
	root.setRef(0, left.addr())
	root.setRef(1, right.addr())
	left.setRef(0, shared.addr())
	right.setRef(0, shared.addr())
	m := &fakeModel{nodes: map[Addr]*fakeNode{}, sizes: map[Addr]uint64{}}
	for _, n := range []*fakeNode{root, left, right, shared} {
		m.nodes[n.addr()] = n
		m.objs = append(m.objs, n.addr())
		m.sizes[n.addr()] = uint64(len(n.words) * 8)
	}
	m.roots = []Addr{root.addr()}
	return m
}
