package heap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleSnapshot = `{
  "spaces": [{"name": "default", "start": 4096, "end": 1048576}],
  "objects": [
    {"start": 4096, "size": 32, "klass": 1, "edges": [{"slot": 4112, "objref": 8192}]},
    {"start": 8192, "size": 16, "klass": 2, "edges": []}
  ],
  "roots": [{"slot": 0, "objref": 4096}]
}`

func TestLoadSnapshotDecodesObjectsAndRoots(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0o644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err)
	require.Len(t, snap.Spaces, 1)
	require.Len(t, snap.Objects, 2)
	require.Len(t, snap.Roots, 1)

	require.Equal(t, Addr(4096), snap.Objects[0].Start)
	require.True(t, !snap.Objects[0].IsObjArray())
	require.Equal(t, Addr(8192), snap.Objects[0].Edges[0].ObjRef)
	require.Equal(t, Addr(4096), snap.Roots[0].ObjRef)
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestSnapshotEdgesSkipsNullRefs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0o644))
	snap, err := LoadSnapshot(path)
	require.NoError(t, err)

	edges := snap.Edges()
	require.Len(t, edges, 1)
	require.Equal(t, Addr(4096), edges[0].Slot)
	require.Equal(t, Addr(8192), edges[0].ObjRef)
}

func TestSnapshotSanityReachableCountsReachableObjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleSnapshot), 0o644))
	snap, err := LoadSnapshot(path)
	require.NoError(t, err)

	require.Equal(t, 2, snap.SanityReachable())
}

func TestSnapshotSanityReachableExcludesUnreachable(t *testing.T) {
	snap := &Snapshot{
		Objects: []Object{
			{Start: 100, Edges: nil},
			{Start: 200, Edges: nil}, // not reachable from any root
		},
		Roots: []Root{{ObjRef: 100}},
	}
	require.Equal(t, 1, snap.SanityReachable())
}
