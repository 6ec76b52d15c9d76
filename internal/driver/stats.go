package driver

import (
	"fmt"
	"io"
	"strings"
)

// row is one ordered key/value pair of the "Tabulate Statistics" block.
// Kept as an ordered slice rather than a map: the original collects a Rust
// HashMap into a Vec before printing, so the column order in its output is
// whatever that particular run's hash iteration happened to produce: a Go
// map would only reproduce that by accident, an explicit order reproduces
// it on purpose.
type row struct {
	key   string
	value float64
}

func printTabulateStatistics(w io.Writer, rows []row) {
	fmt.Fprintln(w, "============================ Tabulate Statistics ============================")
	keys := make([]string, len(rows))
	vals := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.key
		vals[i] = fmt.Sprintf("%.3f", r.value)
	}
	fmt.Fprintln(w, strings.Join(keys, "\t"))
	fmt.Fprintln(w, strings.Join(vals, "\t"))
	fmt.Fprintln(w, "-------------------------- End Tabulate Statistics --------------------------")
}
