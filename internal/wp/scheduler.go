package wp

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gc-research/tracebench/internal/heap"
	"github.com/gc-research/tracebench/internal/memsys"
)

// maxInFlightScanPackets bounds how many ScanPackets the dual-queue variant
// may have outstanding at once, so a burst of newly-marked objects can't
// blow up memory with pending slot batches before TracePacket consumers
// catch up.
const maxInFlightScanPackets = 64

// Scheduler is the per-worker execution context a Packet.Run receives: the
// object model and mark sense it traces against, the worker's own deque,
// the shared injector, and (for the bucket-based WP2 variant) the buckets
// newly emitted packets feed into instead of the deque directly.
type Scheduler struct {
	model     heap.ObjectModel
	markSense uint8
	capacity  int

	own   *deque
	peers []*deque
	inj   *injector

	traceBucket *Bucket
	scanBucket  *Bucket

	sizes map[Addr]uint64
	alloc *memsys.LocalAllocator

	scanSem *semaphore.Weighted

	mu    sync.Mutex
	stats Stats
}

// allocator lazily creates this worker's bump allocator into to-space, used
// only by the forwarding packet variant.
func (s *Scheduler) allocator() *memsys.LocalAllocator {
	if s.alloc == nil {
		s.alloc = memsys.NewLocalAllocator()
	}
	return s.alloc
}

func (s *Scheduler) trace(o Addr) bool {
	return memsys.AttemptMarkByte(o, s.markSense)
}

func (s *Scheduler) addStats(o Stats) {
	s.mu.Lock()
	s.stats.add(o)
	s.mu.Unlock()
}

func (s *Scheduler) chunk(addrs []Addr) [][]Addr {
	if len(addrs) == 0 {
		return nil
	}
	var out [][]Addr
	for len(addrs) > 0 {
		n := s.capacity
		if n > len(addrs) {
			n = len(addrs)
		}
		out = append(out, addrs[:n])
		addrs = addrs[n:]
	}
	return out
}

func (s *Scheduler) emitTracePackets(slots []Addr) {
	for _, c := range s.chunk(slots) {
		s.enqueue(TracePacket{Slots: c}, s.traceBucket)
	}
}

func (s *Scheduler) emitScanPackets(objs []Addr) {
	for _, c := range s.chunk(objs) {
		if s.scanSem != nil {
			s.scanSem.Acquire(context.Background(), 1)
		}
		s.enqueue(ScanPacket{Objects: c}, s.scanBucket)
	}
}

// enqueue pushes p into the owning worker's own deque, unless bucket is
// non-nil, in which case the packet is handed to the bucket: buckets still
// not open buffer the packet internally, and release it to the shared
// injector once they open.
func (s *Scheduler) enqueue(p Packet, bucket *Bucket) {
	if bucket == nil {
		s.own.PushOwn(p)
		return
	}
	for _, ready := range bucket.Push([]Packet{p}) {
		s.own.PushOwn(ready)
	}
}

// Pool is a fixed-size group of workers draining a shared pool of deques
// plus a global injector, coordinated by a two-phase parked-counter
// termination check (the same shape internal/trace's distributed kernel
// uses to detect quiescence across independently-progressing workers).
type Pool struct {
	model     heap.ObjectModel
	markSense uint8
	capacity  int

	schedulers []*Scheduler
	deques     []*deque
	inj        *injector

	parked  atomic.Int64
	barrier *barrierSync
}

// NewPool builds a pool of numWorkers schedulers sharing model and
// markSense. traceBucket/scanBucket may be nil for the plain (non-DAG)
// variants; when non-nil, emitted packets are routed through the bucket
// before reaching a worker's deque. withSizes requests that each scheduler
// carry the model's precomputed object-size table, needed only by the
// forwarding packet variant.
func NewPool(model heap.ObjectModel, markSense uint8, numWorkers, capacity int, order Order, traceBucket, scanBucket *Bucket, withSizes bool) *Pool {
	p := &Pool{
		model:     model,
		markSense: markSense,
		capacity:  capacity,
		inj:       &injector{},
		barrier:   newBarrierSync(numWorkers),
	}
	var sizes map[Addr]uint64
	if withSizes {
		sizes = model.ObjectSizes()
	}
	for _, b := range []*Bucket{traceBucket, scanBucket} {
		if b != nil {
			b.onRelease = func(released []Packet) { p.inj.Push(released...) }
		}
	}
	var scanSem *semaphore.Weighted
	if scanBucket != nil {
		scanSem = semaphore.NewWeighted(maxInFlightScanPackets)
	}
	p.deques = make([]*deque, numWorkers)
	for i := range p.deques {
		p.deques[i] = newDeque(order)
	}
	p.schedulers = make([]*Scheduler, numWorkers)
	for i := range p.schedulers {
		peers := make([]*deque, 0, numWorkers-1)
		for j, d := range p.deques {
			if j != i {
				peers = append(peers, d)
			}
		}
		p.schedulers[i] = &Scheduler{
			model:       model,
			markSense:   markSense,
			capacity:    capacity,
			own:         p.deques[i],
			peers:       peers,
			inj:         p.inj,
			traceBucket: traceBucket,
			scanBucket:  scanBucket,
			sizes:       sizes,
			scanSem:     scanSem,
		}
	}
	return p
}

// Seed pushes initial packets onto worker i's own deque, round-robin, so
// the driver can distribute e.g. ScanRoots slices before Run starts.
func (p *Pool) Seed(packets []Packet) {
	for i, pkt := range packets {
		p.deques[i%len(p.deques)].PushOwn(pkt)
	}
}

// Run drains the pool until every worker simultaneously finds its own
// deque, every peer's deque, and the injector empty across two consecutive
// barrier rounds, then returns the aggregated stats.
func (p *Pool) Run() Stats {
	var wg sync.WaitGroup
	wg.Add(len(p.schedulers))
	for i := range p.schedulers {
		go func(id int) {
			defer wg.Done()
			p.workerLoop(id)
		}(i)
	}
	wg.Wait()

	var total Stats
	for _, s := range p.schedulers {
		total.add(s.stats)
	}
	return total
}

func (p *Pool) workerLoop(id int) {
	s := p.schedulers[id]
	idle := false
	backoff := time.Microsecond
	for {
		pkt, ok := s.own.PopOwn()
		if !ok {
			pkt, ok = p.inj.Pop()
		}
		if !ok {
			ok = p.trySteal(id, &pkt)
		}
		if ok {
			if idle {
				p.parked.Add(-1)
				idle = false
				backoff = time.Microsecond
			}
			stats := pkt.Run(s)
			s.addStats(stats)
			continue
		}

		if !idle {
			p.parked.Add(1)
			idle = true
		}
		if p.parked.Load() == int64(len(p.schedulers)) {
			p.barrier.Wait()
			stillDone := p.allEmpty()
			p.barrier.Wait()
			if stillDone && p.parked.Load() == int64(len(p.schedulers)) {
				return
			}
			continue
		}
		time.Sleep(backoff)
		if backoff < time.Millisecond {
			backoff *= 2
		}
	}
}

func (p *Pool) trySteal(id int, out *Packet) bool {
	n := len(p.deques)
	for i := 1; i < n; i++ {
		victim := (id + i) % n
		if pkt, ok := p.deques[victim].Steal(); ok {
			*out = pkt
			return true
		}
	}
	return false
}

func (p *Pool) allEmpty() bool {
	if p.inj.Len() != 0 {
		return false
	}
	for _, d := range p.deques {
		if d.Len() != 0 {
			return false
		}
	}
	return true
}
