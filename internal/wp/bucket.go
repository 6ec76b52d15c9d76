package wp

import "sync"

// Bucket is a named stage in the scheduling DAG: it opens only once every
// predecessor is open, and packets may only execute while their bucket is
// open. Its outstanding count tracks packets pushed into it minus those
// reported through Complete. Opening a bucket offers its successors the
// chance to open straight away, so a successor does not wait for its
// predecessors to drain; nothing in this package calls Complete.
type Bucket struct {
	Name string

	mu           sync.Mutex
	open         bool
	outstanding  int
	pending      []Packet
	predecessors []*Bucket
	successors   []*Bucket

	// onRelease receives the packets buffered while the bucket was closed,
	// when it transitions to open.
	onRelease func([]Packet)
}

// NewBucket creates a closed bucket. AddEdge wires it into the DAG before
// the first epoch begins.
func NewBucket(name string) *Bucket {
	return &Bucket{Name: name}
}

// AddEdge records that b must open before succ can open.
func AddEdge(b, succ *Bucket) {
	b.successors = append(b.successors, succ)
	succ.predecessors = append(succ.predecessors, b)
}

// Reset closes the bucket and clears its counter and buffered packets.
func (b *Bucket) Reset() {
	b.mu.Lock()
	b.open = false
	b.outstanding = 0
	b.pending = nil
	b.mu.Unlock()
}

// Open unconditionally opens the bucket, releasing any buffered packets
// and offering its successors. Used by the driver on the entry bucket,
// which has no predecessors to wait on.
func (b *Bucket) Open() { b.activate() }

func (b *Bucket) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *Bucket) allPredecessorsOpen() bool {
	for _, p := range b.predecessors {
		if !p.IsOpen() {
			return false
		}
	}
	return true
}

// activate transitions the bucket to open, releasing any packets buffered
// while it was closed, then recursively tries to open successors whose
// predecessors are now all open.
func (b *Bucket) activate() {
	b.mu.Lock()
	if b.open {
		b.mu.Unlock()
		return
	}
	b.open = true
	released := b.pending
	b.pending = nil
	b.mu.Unlock()
	if b.onRelease != nil && len(released) > 0 {
		b.onRelease(released)
	}
	b.tryOpenSuccessors()
}

func (b *Bucket) tryOpenSuccessors() {
	for _, succ := range b.successors {
		if !succ.IsOpen() && succ.allPredecessorsOpen() {
			succ.activate()
		}
	}
}

// Push adds n packets as outstanding in this bucket. If the bucket is
// open, packets run immediately (the caller is responsible for actually
// scheduling them); otherwise they are buffered until the bucket opens.
func (b *Bucket) Push(packets []Packet) (toRun []Packet) {
	if len(packets) == 0 {
		return nil
	}
	b.mu.Lock()
	b.outstanding += len(packets)
	open := b.open
	if !open {
		b.pending = append(b.pending, packets...)
	}
	b.mu.Unlock()
	if open {
		return packets
	}
	return nil
}

// Complete marks n packets as finished. If the count reaches zero and the
// bucket is (still) open, its successors are offered the chance to open.
func (b *Bucket) Complete(n int) {
	b.mu.Lock()
	b.outstanding -= n
	outstanding := b.outstanding
	open := b.open
	b.mu.Unlock()
	if outstanding == 0 && open {
		b.tryOpenSuccessors()
	}
}

// Empty reports whether the bucket has no outstanding packets.
func (b *Bucket) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding == 0
}
