package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gc-research/tracebench/internal/nmp"
)

func TestBuildNMPTraceEmitsThreadNameOncePerDimm(t *testing.T) {
	events := []nmp.ThreadEvent{
		{Dimm: 0, Name: "busy", Start: 0, End: 5},
		{Dimm: 0, Name: "idle", Start: 5, End: 8},
		{Dimm: 1, Name: "busy", Start: 0, End: 8},
	}
	trace := BuildNMPTrace(1, events)

	var threadNames, durations int
	for _, e := range trace.TraceEvents {
		switch e.Ph {
		case "M":
			threadNames++
		case "X":
			durations++
			require.NotNil(t, e.Dur)
		}
	}
	assert.Equal(t, 2, threadNames)
	assert.Equal(t, 3, durations)
}

func TestWriteGzipJSONRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json.gz")
	trace := Trace{TraceEvents: []Event{NewThreadNameEvent(1, 0, "dimm-0")}}

	require.NoError(t, WriteGzipJSON(path, trace))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var decoded Trace
	require.NoError(t, tracingAPI.NewDecoder(gz).Decode(&decoded))
	require.Len(t, decoded.TraceEvents, 1)
	assert.Equal(t, "thread_name", decoded.TraceEvents[0].Name)
}
