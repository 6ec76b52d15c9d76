package trace

import (
	"unsafe"

	"github.com/gc-research/tracebench/internal/heap"
)

// fakeNode backs one graph node with real, addressable memory: word 0 is
// the node's header (mark byte lives here), the remaining words are its
// reference slots.
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

// fakeModel is a minimal heap.ObjectModel over a fixed set of fakeNodes,
// used to exercise the tracing kernels without a real mmap'd snapshot.
type fakeModel struct {
	nodes      map[Addr]*fakeNode
	rootAddrs  []Addr
	objectAddr []Addr
}

func newFakeModel() *fakeModel {
	return &fakeModel{nodes: make(map[Addr]*fakeNode)}
}

func (m *fakeModel) add(n *fakeNode) {
	m.nodes[n.addr()] = n
	m.objectAddr = append(m.objectAddr, n.addr())
}

func (m *fakeModel) addRoot(a Addr) { m.rootAddrs = append(m.rootAddrs, a) }

func (m *fakeModel) Reset()                  {}
func (m *fakeModel) Restore(*heap.Snapshot)  {}
func (m *fakeModel) Roots() []Addr           { return m.rootAddrs }
func (m *fakeModel) Objects() []Addr         { return m.objectAddr }
func (m *fakeModel) IsArray(Addr) bool       { return false }
func (m *fakeModel) TIBLookupRequired(Addr) bool { return false }
func (m *fakeModel) ObjectSizes() map[Addr]uint64 { return nil }

func (m *fakeModel) TIBAddr(o Addr) uintptr {
	// Two "shapes": nodes with refs and leaves without, so the shape
	// cache sees more than one key across a graph.
	if len(m.nodes[o].words) > 1 {
		return 1
	}
	return 2
}

func (m *fakeModel) Scan(o Addr, visit func(base Addr, count uint64)) {
	n, ok := m.nodes[o]
	if !ok || len(n.words) <= 1 {
		return
	}
	visit(n.slotAddr(0), uint64(len(n.words)-1))
}

var _ heap.ObjectModel = (*fakeModel)(nil)
var _ heap.TIBProvider = (*fakeModel)(nil)

// lineList builds roots=[A], A->B, B->C.
func lineList() (*fakeModel, map[string]*fakeNode) {
	m := newFakeModel()
	a, b, c := newFakeNode(1), newFakeNode(1), newFakeNode(0)
	m.add(a)
	m.add(b)
	m.add(c)
	a.setRef(0, b.addr())
	b.setRef(0, c.addr())
	m.addRoot(a.addr())
	return m, map[string]*fakeNode{"A": a, "B": b, "C": c}
}

// diamond builds A->B, A->C, B->D, C->D.
func diamond() (*fakeModel, map[string]*fakeNode) {
	m := newFakeModel()
	a, b, c, d := newFakeNode(2), newFakeNode(1), newFakeNode(1), newFakeNode(0)
	m.add(a)
	m.add(b)
	m.add(c)
	m.add(d)
	a.setRef(0, b.addr())
	a.setRef(1, c.addr())
	b.setRef(0, d.addr())
	c.setRef(0, d.addr())
	m.addRoot(a.addr())
	return m, map[string]*fakeNode{"A": a, "B": b, "C": c, "D": d}
}

// cycle builds A->B, B->A.
func cycle() (*fakeModel, map[string]*fakeNode) {
	m := newFakeModel()
	a, b := newFakeNode(1), newFakeNode(1)
	m.add(a)
	m.add(b)
	a.setRef(0, b.addr())
	b.setRef(0, a.addr())
	m.addRoot(a.addr())
	return m, map[string]*fakeNode{"A": a, "B": b}
}
