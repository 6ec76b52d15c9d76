package export

import (
	"fmt"

	"github.com/gc-research/tracebench/internal/nmp"
)

// BuildNMPTrace turns a Simulator's per-processor busy/idle timeline into a
// chrome-trace document, one thread per DIMM, grounded on original_source's
// nmpgc/mod.rs::events (duration spans) and simulate/tracing.rs (thread-name
// metadata events).
func BuildNMPTrace(pid uint32, events []nmp.ThreadEvent) Trace {
	seen := make(map[uint32]bool)
	var out []Event
	for _, e := range events {
		tid := uint32(e.Dimm)
		if !seen[tid] {
			out = append(out, NewThreadNameEvent(pid, tid, fmt.Sprintf("dimm-%d", e.Dimm)))
			seen[tid] = true
		}
		dur := uint64(e.End - e.Start)
		out = append(out, NewDurationEvent(pid, tid, e.Name, uint64(e.Start), nil, true, &dur))
	}
	return Trace{TraceEvents: out}
}
