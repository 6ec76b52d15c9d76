package driver

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintTabulateStatisticsFormat(t *testing.T) {
	var buf bytes.Buffer
	printTabulateStatistics(&buf, []row{
		{"pauses", 1},
		{"time", 12.5},
		{"objects", 3},
	})

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	assert.Len(t, lines, 4)
	assert.Equal(t, "============================ Tabulate Statistics ============================", string(lines[0]))
	assert.Equal(t, "pauses\ttime\tobjects", string(lines[1]))
	assert.Equal(t, "1.000\t12.500\t3.000", string(lines[2]))
	assert.Equal(t, "-------------------------- End Tabulate Statistics --------------------------", string(lines[3]))
}
