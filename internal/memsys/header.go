package memsys

import (
	"sync/atomic"
	"unsafe"
)

// ForwardingState is the transition state of the per-object forwarding byte.
type ForwardingState int

const (
	NotForwarded ForwardingState = iota
	Forwarding
	Forwarded
)

func (s ForwardingState) IsForwardedOrForwarding() bool {
	return s == Forwarded || s == Forwarding
}

// forwardingInProgress is the transient sentinel written into the forwarding
// byte while a copy is underway.
const forwardingInProgress = 0xFF

// Header is the one 64-bit word at an object's start: byte 0 is the mark
// byte, byte 7 is the forwarding byte, the rest is reserved and never
// touched by this package.
type Header uint64

func headerWord(o Addr) *uint64 {
	return (*uint64)(unsafe.Pointer(uintptr(o)))
}

func headerWordAtomic(o Addr) *atomic.Uint64 {
	return (*atomic.Uint64)(unsafe.Pointer(uintptr(o)))
}

func markByteAtomic(o Addr) *atomic.Uint32 {
	// Views the low 32 bits (which hold byte 0) as an atomic.Uint32.
	// AttemptMarkByte does not use this view: it CASes the whole header
	// word through headerWordAtomic.
	return (*atomic.Uint32)(unsafe.Pointer(uintptr(o)))
}

func fwdByteAtomic(o Addr) *atomic.Uint64 {
	return (*atomic.Uint64)(unsafe.Pointer(uintptr(o)))
}

// Load reads the whole header word non-atomically.
func Load(o Addr) Header { return Header(*headerWord(o)) }

// Store writes the whole header word non-atomically.
func Store(o Addr, h Header) { *headerWord(o) = uint64(h) }

func (h Header) getByte(offset uint) uint8 {
	return uint8(uint64(h) >> (offset * 8))
}

func (h Header) setByte(val uint8, offset uint) Header {
	mask := uint64(0xFF) << (offset * 8)
	cleared := uint64(h) &^ mask
	return Header(cleared | uint64(val)<<(offset*8))
}

// GetMarkByte returns byte 0 of the header.
func (h Header) GetMarkByte() uint8 { return h.getByte(0) }

// SetMarkByte returns a copy of h with byte 0 replaced — a whole-word
// rewrite that preserves the other bytes.
func (h Header) SetMarkByte(v uint8) Header { return h.setByte(v, 0) }

func (h Header) getFwdByte() uint8 { return h.getByte(7) }

// GetMarkByte reads byte 0 of the header at o non-atomically.
func GetMarkByte(o Addr) uint8 { return Load(o).GetMarkByte() }

// SetMarkByte rewrites the whole header word with byte 0 replaced,
// non-atomically.
func SetMarkByte(o Addr, v uint8) {
	Store(o, Load(o).SetMarkByte(v))
}

// AttemptMarkByte atomically CASes byte 0 of the header to v. Returns true
// exactly once per epoch per object: false immediately (no CAS issued) if
// the mark byte is already v, true iff this call performed the transition.
func AttemptMarkByte(o Addr, v uint8) bool {
	for {
		old := Load(o)
		if old.GetMarkByte() == v {
			return false
		}
		newH := old.SetMarkByte(v)
		if headerWordAtomic(o).CompareAndSwap(uint64(old), uint64(newH)) {
			return true
		}
		// Lost the race to a concurrent writer of an unrelated byte; retry
		// with the freshly observed word.
	}
}

// AttemptToForward atomically transitions byte 7 from NotForwarded to
// Forwarding (encoded as the 0xFF sentinel). If the byte already equals
// forwardedState, returns Forwarded without mutation; if it is the 0xFF
// sentinel, returns Forwarding without mutation; otherwise, exactly one
// caller wins the CAS to 0xFF and receives NotForwarded.
func AttemptToForward(o Addr, forwardedState uint8) ForwardingState {
	byteAddr := fwdByteAtomic(o)
	for {
		old := byteAddr.Load()
		oldByte := uint8(old >> 56)
		if oldByte == forwardedState {
			return Forwarded
		}
		if oldByte == forwardingInProgress {
			return Forwarding
		}
		newWord := (old &^ (uint64(0xFF) << 56)) | (uint64(forwardingInProgress) << 56)
		if byteAddr.CompareAndSwap(old, newWord) {
			return NotForwarded
		}
	}
}

// SetAsForwarded publishes the terminal forwarding state for o.
func SetAsForwarded(o Addr, v uint8) {
	byteAddr := fwdByteAtomic(o)
	for {
		old := byteAddr.Load()
		newWord := (old &^ (uint64(0xFF) << 56)) | (uint64(v) << 56)
		if byteAddr.CompareAndSwap(old, newWord) {
			return
		}
	}
}

// SpinAndGetForwardedObject busy-waits on byte 7 until it equals v, then
// returns o itself as the forwarded identity. The replica lives in the
// bump-allocated to-space (see arena.go); this harness never relocates the
// header word, only the payload it decorates.
func SpinAndGetForwardedObject(o Addr, v uint8) Addr {
	for {
		state := volatileFwdByte(o)
		if state == v {
			return o
		}
		if state != forwardingInProgress {
			// Unexpected terminal state that isn't the one we're waiting
			// for: another forwarding target was published. Keep spinning;
			// callers only ever wait for the state they themselves chose.
			continue
		}
	}
}

func volatileFwdByte(o Addr) uint8 {
	return uint8(fwdByteAtomic(o).Load() >> 56)
}
