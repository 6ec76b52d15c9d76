package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const consistentSnapshot = `{
  "spaces": [{"name": "default", "start": 4096, "end": 1048576}],
  "objects": [
    {"start": 4096, "size": 32, "klass": 1, "edges": [{"slot": 4112, "objref": 8192}]},
    {"start": 8192, "size": 16, "klass": 2, "edges": []}
  ],
  "roots": [{"slot": 0, "objref": 4096}]
}`

const inconsistentSnapshot = `{
  "spaces": [{"name": "default", "start": 4096, "end": 1048576}],
  "objects": [
    {"start": 4096, "size": 32, "klass": 1, "edges": []},
    {"start": 8192, "size": 16, "klass": 2, "edges": []}
  ],
  "roots": [{"slot": 0, "objref": 4096}]
}`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVerifySnapshotsPassesWhenReachabilityMatches(t *testing.T) {
	path := writeFixture(t, "snap.json", consistentSnapshot)
	assert.NoError(t, VerifySnapshots([]string{path}))
}

func TestVerifySnapshotsFailsOnUnreachableObject(t *testing.T) {
	path := writeFixture(t, "snap.json", inconsistentSnapshot)
	assert.Error(t, VerifySnapshots([]string{path}))
}

func TestVerifySnapshotsChecksAllPathsConcurrently(t *testing.T) {
	good := writeFixture(t, "good.json", consistentSnapshot)
	bad := writeFixture(t, "bad.json", inconsistentSnapshot)
	assert.Error(t, VerifySnapshots([]string{good, bad}))
}
