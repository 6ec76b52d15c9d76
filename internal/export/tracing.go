// Package export emits chrome://tracing-compatible JSON (gzip-compressed)
// describing a tracing or NMP simulation run, one thread per worker/DIMM.
package export

import (
	jsoniter "github.com/json-iterator/go"
)

var tracingAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// InstantEventScope controls how far an instant event ("i" phase) fans out
// in the viewer.
type InstantEventScope string

const (
	ScopeGlobal  InstantEventScope = "g"
	ScopeProcess InstantEventScope = "p"
	ScopeThread  InstantEventScope = "t"
)

// Event is one chrome-trace JSON object, covering the phases this package
// emits: "M" (metadata), "X" (complete duration), "B"/"E" (begin/end), and
// "i" (instant).
type Event struct {
	Name string                 `json:"name"`
	Ph   string                 `json:"ph"`
	TS   uint64                 `json:"ts"`
	PID  uint32                 `json:"pid"`
	TID  uint32                 `json:"tid"`
	Args map[string]interface{} `json:"args,omitempty"`
	Dur  *uint64                `json:"dur,omitempty"`
	S    *string                `json:"s,omitempty"`
}

// NewThreadNameEvent labels tid under pid with name in the viewer's thread
// list.
func NewThreadNameEvent(pid, tid uint32, name string) Event {
	return Event{
		Name: "thread_name",
		Ph:   "M",
		PID:  pid,
		TID:  tid,
		Args: map[string]interface{}{"name": name},
	}
}

// NewDurationEvent records a span. When durCycles is non-nil it emits a
// single complete ("X") event; otherwise it emits a begin ("B") or end
// ("E") event depending on begin.
func NewDurationEvent(pid, tid uint32, name string, ts uint64, args map[string]interface{}, begin bool, durCycles *uint64) Event {
	ph := "B"
	switch {
	case durCycles != nil:
		ph = "X"
	case !begin:
		ph = "E"
	}
	return Event{Name: name, Ph: ph, TS: ts, PID: pid, TID: tid, Args: args, Dur: durCycles}
}

// NewInstantEvent records a point-in-time marker.
func NewInstantEvent(pid, tid uint32, name string, ts uint64, args map[string]interface{}, scope InstantEventScope) Event {
	s := string(scope)
	return Event{Name: name, Ph: "i", TS: ts, PID: pid, TID: tid, Args: args, S: &s}
}

// Trace is a full chrome-trace document: a flat array of events plus the
// viewer's top-level metadata object.
type Trace struct {
	TraceEvents []Event                `json:"traceEvents"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}
