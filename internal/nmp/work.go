package nmp

import "github.com/gc-research/tracebench/internal/memsys"

// Addr aliases memsys.Addr for the same reason internal/heap and
// internal/wp do.
type Addr = memsys.Addr

// WorkKind discriminates the six things a processor spends a tick on.
type WorkKind uint8

const (
	WorkMark WorkKind = iota
	WorkLoad
	WorkIdle
	WorkReadInbox
	WorkSendMessage
	WorkContinueScan
)

func (k WorkKind) String() string {
	switch k {
	case WorkMark:
		return "Mark"
	case WorkLoad:
		return "Load"
	case WorkIdle:
		return "Idle"
	case WorkReadInbox:
		return "ReadInbox"
	case WorkSendMessage:
		return "SendMessage"
	case WorkContinueScan:
		return "ContinueScan"
	default:
		return "Unknown"
	}
}

// MessageKind discriminates the payload of a cross-processor message.
type MessageKind uint8

const (
	MessageMark MessageKind = iota
	MessageLoad
)

// Message is what one processor's SendMessage work hands off to another.
type Message struct {
	Recipient int
	Kind      MessageKind
	Obj       Addr // valid when Kind == MessageMark
	Slot      Addr // valid when Kind == MessageLoad
}

// Work is a unit of a processor's per-tick schedule.
type Work struct {
	Kind WorkKind
	Obj  Addr    // Mark
	Slot Addr    // Load
	Msg  Message // SendMessage
}

func markWork(o Addr) Work          { return Work{Kind: WorkMark, Obj: o} }
func loadWork(slot Addr) Work       { return Work{Kind: WorkLoad, Slot: slot} }
func sendWork(m Message) Work       { return Work{Kind: WorkSendMessage, Msg: m} }
func idleWork() Work                { return Work{Kind: WorkIdle} }
func readInboxWork() Work           { return Work{Kind: WorkReadInbox} }
func continueScanWork() Work        { return Work{Kind: WorkContinueScan} }

// edgeChunk is a contiguous span of reference slots found while scanning a
// marked object, matching heap.ObjectModel.Scan's (base, count) callback
// shape directly.
type edgeChunk struct {
	Base  Addr
	Count uint64
}
