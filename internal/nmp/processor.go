package nmp

import (
	"github.com/gc-research/tracebench/internal/heap"
	"github.com/gc-research/tracebench/internal/memsys"
)

// idleRange is a closed tick interval during which a processor had no
// productive work.
type idleRange struct {
	start, end int
}

// Processor is one per-DIMM NMP core: it drains a local work queue,
// stalling for as many ticks as the work's latency dictates, and
// exchanges ownership messages with peers through the shared Network.
type Processor struct {
	id         DimmId
	mapping    int // numProcessors, needed to decode addresses
	markSense  uint8
	ticks      int
	busyTicks  int
	idleReadInboxTicks int
	markedObjects uint64

	inbox []Message
	works []Work

	stalledWork *Work
	stallTicks  int

	cache *SetAssociativeCache

	workCount map[WorkKind]int

	idleRanges []idleRange
	idleStart  *int

	edgeChunks      []edgeChunk
	edgeChunkCursor struct {
		chunkIdx int
		edgeIdx  uint64
	}
}

func newProcessor(id DimmId, numProcessors int, markSense uint8) *Processor {
	return &Processor{
		id:        id,
		mapping:   numProcessors,
		markSense: markSense,
		cache:     NewSetAssociativeCache(64, 8, numProcessors),
		workCount: make(map[WorkKind]int),
	}
}

func (p *Processor) owner(addr uint64) int {
	return NewAddressMapping(addr, p.mapping).Owner()
}

func (p *Processor) pushBack(w Work)  { p.works = append(p.works, w) }
func (p *Processor) pushFront(w Work) { p.works = append([]Work{w}, p.works...) }

func (p *Processor) popFront() (Work, bool) {
	if len(p.works) == 0 {
		return Work{}, false
	}
	w := p.works[0]
	p.works = p.works[1:]
	return w, true
}

// inboxPop mirrors Vec::pop's LIFO order (last pushed, first read).
func (p *Processor) inboxPop() (Message, bool) {
	if len(p.inbox) == 0 {
		return Message{}, false
	}
	last := len(p.inbox) - 1
	m := p.inbox[last]
	p.inbox = p.inbox[:last]
	return m, true
}

func (p *Processor) locallyDone() bool {
	return len(p.works) == 0 && p.stalledWork == nil && len(p.inbox) == 0
}

func (p *Processor) getLatency(w Work, topo Topology) int {
	switch w.Kind {
	case WorkMark:
		return p.cache.WriteLatency(uint64(w.Obj))
	case WorkIdle:
		return 1
	case WorkLoad:
		return p.cache.ReadLatency(uint64(w.Slot))
	case WorkReadInbox:
		return 2
	case WorkSendMessage:
		return len(topo.Route(p.id, DimmId(w.Msg.Recipient))) * topo.PerHopLatency()
	case WorkContinueScan:
		return 1
	default:
		return 1
	}
}

// tick runs one cycle of this processor's schedule, returning a message to
// send this tick (if any), grounded on original_source's
// nmpgc/work.rs NMPProcessor::tick.
func (p *Processor) tick(model heap.ObjectModel, topo Topology) *Message {
	p.ticks++

	if p.stallTicks > 0 {
		p.stallTicks--
		p.busyTicks++
		return nil
	}

	var work Work
	if p.stalledWork != nil {
		work = *p.stalledWork
		p.stalledWork = nil
	} else if w, ok := p.popFront(); ok {
		if lat := p.getLatency(w, topo); lat > 1 {
			p.stallTicks = lat - 1
			p.stalledWork = &w
			return nil
		}
		work = w
	} else {
		work = idleWork()
	}

	if work.Kind != WorkIdle {
		p.busyTicks++
	}
	if work.Kind != WorkIdle && work.Kind != WorkReadInbox {
		if p.idleStart != nil {
			p.idleRanges = append(p.idleRanges, idleRange{*p.idleStart, p.ticks - 1})
			p.idleStart = nil
		}
	}

	p.workCount[work.Kind]++

	var out *Message
	switch work.Kind {
	case WorkMark:
		if memsys.AttemptMarkByte(work.Obj, p.markSense) {
			p.cache.Write(uint64(work.Obj))
			p.markedObjects++
			var chunks []edgeChunk
			model.Scan(work.Obj, func(base Addr, count uint64) {
				if count > 0 {
					chunks = append(chunks, edgeChunk{Base: base, Count: count})
				}
			})
			p.edgeChunks = chunks
			p.edgeChunkCursor.chunkIdx, p.edgeChunkCursor.edgeIdx = 0, 0
			if len(p.edgeChunks) > 0 {
				p.pushFront(continueScanWork())
			}
		}
	case WorkLoad:
		child := Addr(memsys.ReadWord(work.Slot))
		p.cache.Read(uint64(work.Slot))
		if child != 0 {
			owner := p.owner(uint64(child))
			if owner == int(p.id) {
				p.pushBack(markWork(child))
			} else {
				p.pushBack(sendWork(Message{Recipient: owner, Kind: MessageMark, Obj: child}))
			}
		}
	case WorkIdle:
		if len(p.inbox) > 0 {
			p.idleReadInboxTicks++
			p.pushBack(readInboxWork())
		} else if p.idleStart == nil {
			start := p.ticks
			p.idleStart = &start
		}
	case WorkSendMessage:
		m := work.Msg
		out = &m
	case WorkReadInbox:
		if m, ok := p.inboxPop(); ok {
			switch m.Kind {
			case MessageLoad:
				p.pushBack(loadWork(m.Slot))
			case MessageMark:
				p.pushBack(markWork(m.Obj))
			}
		}
	case WorkContinueScan:
		chunkIdx, edgeIdx := p.edgeChunkCursor.chunkIdx, p.edgeChunkCursor.edgeIdx
		chunk := p.edgeChunks[chunkIdx]
		slot := chunk.Base + Addr(edgeIdx*8)
		owner := p.owner(uint64(slot))
		if owner == int(p.id) {
			p.pushBack(loadWork(slot))
		} else {
			p.pushFront(sendWork(Message{Recipient: owner, Kind: MessageLoad, Slot: slot}))
		}
		if edgeIdx+1 < chunk.Count {
			p.edgeChunkCursor.edgeIdx = edgeIdx + 1
			p.pushFront(continueScanWork())
		} else if chunkIdx+1 < len(p.edgeChunks) {
			p.edgeChunkCursor.chunkIdx, p.edgeChunkCursor.edgeIdx = chunkIdx+1, 0
			p.pushFront(continueScanWork())
		} else {
			p.edgeChunks = nil
			p.edgeChunkCursor.chunkIdx, p.edgeChunkCursor.edgeIdx = 0, 0
		}
	}
	return out
}
