package trace

import (
	"github.com/gc-research/tracebench/internal/cmn/debug"
	"github.com/gc-research/tracebench/internal/memsys"
)

// traceObject atomically flips o's mark byte to markSense, returning true
// iff this call made the transition. Shared by every kernel: the one
// operation that must be linearizable across however many callers race on
// the same object.
func traceObject(o Addr, markSense uint8) bool {
	debug.Assert(o != 0, "trace_object called on a null address")
	return memsys.AttemptMarkByte(o, markSense)
}

// VerifyMark walks every restored object and reports those whose mark
// byte doesn't match markSense, i.e. objects a kernel failed to reach.
// Returning the list rather than logging lets callers assert on it in
// debug builds or a test without depending on log output.
func VerifyMark(objects []Addr, markSense uint8) []Addr {
	var unmarked []Addr
	for _, o := range objects {
		if memsys.GetMarkByte(o) != markSense {
			unmarked = append(unmarked, o)
		}
	}
	return unmarked
}
