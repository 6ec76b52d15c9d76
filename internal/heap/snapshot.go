package heap

import (
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/gc-research/tracebench/internal/cmn"
	"github.com/gc-research/tracebench/internal/memsys"
)

// Addr aliases memsys.Addr so heap types compose with the mapper and header
// packages without a conversion at every call site.
type Addr = memsys.Addr

// Space is one named virtual range the mapper must reserve before restore.
type Space struct {
	Name  string `json:"name"`
	Start Addr   `json:"start"`
	End   Addr   `json:"end"`
}

func (s Space) Size() uint64 { return uint64(s.End - s.Start) }

// Edge is one reference-holding slot and the address it held at capture
// time.
type Edge struct {
	Slot   Addr `json:"slot"`
	ObjRef Addr `json:"objref"`
}

// Object is one heap object as recorded in the snapshot.
type Object struct {
	Start               Addr   `json:"start"`
	Size                uint64 `json:"size"`
	Klass               uint64 `json:"klass"`
	ObjArrayLength      *uint64 `json:"objarray_length,omitempty"`
	InstanceMirrorStart *Addr   `json:"instance_mirror_start,omitempty"`
	InstanceMirrorCount *uint64 `json:"instance_mirror_count,omitempty"`
	Edges               []Edge  `json:"edges"`
}

func (o *Object) IsObjArray() bool { return o.ObjArrayLength != nil }

// Root is a slot holding an initial reference into the object graph.
type Root struct {
	Slot   Addr `json:"slot"`
	ObjRef Addr `json:"objref"`
}

// Snapshot is the decoded heap graph the driver replays into the mapped
// address space. Decoding the original binary capture format is out of
// scope; this is the JSON-serialized intermediate form a decoder emits.
type Snapshot struct {
	Spaces  []Space  `json:"spaces"`
	Objects []Object `json:"objects"`
	Roots   []Root   `json:"roots"`
}

var snapshotAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadSnapshot reads and decodes a JSON-encoded snapshot from path.
func LoadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, cmn.WrapError(cmn.SnapshotDecode, err, "reading snapshot %s", path)
	}
	var snap Snapshot
	if err := snapshotAPI.Unmarshal(raw, &snap); err != nil {
		return nil, cmn.WrapError(cmn.SnapshotDecode, err, "decoding snapshot %s", path)
	}
	return &snap, nil
}

// Edges returns every non-null reference-holding slot across all objects,
// as (source object start, target object start) pairs. This is the
// in-memory equivalent of the CSV edge export: source,target per edge.
func (s *Snapshot) Edges() []Edge {
	var out []Edge
	for _, o := range s.Objects {
		for _, e := range o.Edges {
			if e.ObjRef != 0 {
				out = append(out, Edge{Slot: o.Start, ObjRef: e.ObjRef})
			}
		}
	}
	return out
}

// SanityReachable counts the objects reachable from Roots by following
// Edges, computed directly over the decoded snapshot graph rather than the
// object model restored from it. A count that differs from len(Objects)
// means the snapshot declares objects its roots do not reach, or its edges
// reach addresses it does not declare (those are counted but not followed).
func (s *Snapshot) SanityReachable() int {
	byStart := make(map[Addr]*Object, len(s.Objects))
	for i := range s.Objects {
		byStart[s.Objects[i].Start] = &s.Objects[i]
	}

	seen := make(map[Addr]bool)
	var stack []Addr
	for _, r := range s.Roots {
		if r.ObjRef != 0 {
			stack = append(stack, r.ObjRef)
		}
	}
	for len(stack) > 0 {
		o := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[o] {
			continue
		}
		seen[o] = true
		obj, ok := byStart[o]
		if !ok {
			continue
		}
		for _, e := range obj.Edges {
			if e.ObjRef != 0 && !seen[e.ObjRef] {
				stack = append(stack, e.ObjRef)
			}
		}
	}
	return len(seen)
}
