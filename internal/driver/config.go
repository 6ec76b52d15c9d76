// Package driver orchestrates a full measurement run: load a snapshot,
// reserve its address spaces, restore the object model, run the chosen
// tracing kernel or NMP simulation for some number of epochs, and print the
// "Tabulate Statistics" summary a scraping script downstream expects.
package driver

import (
	"os"
	"strconv"

	"github.com/gc-research/tracebench/internal/heap"
	"github.com/gc-research/tracebench/internal/nmp"
	"github.com/gc-research/tracebench/internal/trace"
)

// KernelChoice selects one of the tracing kernels a `trace` run exercises.
type KernelChoice string

const (
	KernelEdgeSlot              KernelChoice = "EdgeSlot"
	KernelEdgeObjref             KernelChoice = "EdgeObjref"
	KernelNodeObjref             KernelChoice = "NodeObjref"
	KernelDistributedNodeObjref KernelChoice = "DistributedNodeObjref"
	KernelShapeCache             KernelChoice = "ShapeCache"
	KernelWP                     KernelChoice = "WP"
	KernelWP2                    KernelChoice = "WP2"
	KernelWPEdgeSlot             KernelChoice = "WPEdgeSlot"
	KernelWPEdgeSlotDual         KernelChoice = "WPEdgeSlotDual"
	KernelForwarding             KernelChoice = "Forwarding"
)

// Config gathers every knob a trace or simulate run needs, mirroring
// original_source's TraceArgs/SimulationArgs but flattened into one struct
// since the CLI dispatches to one or the other, never both.
type Config struct {
	Paths       []string
	ObjectModel heap.Kind

	// trace-only
	TracingLoop    KernelChoice
	Iterations     int
	NumWorkers     int
	PacketCapacity int
	ShapeCacheSize int
	DistributedOwnerShift uint

	// simulate-only
	NumProcessors int
	Topology      nmp.TopologyKind

	// ambient
	MetricsAddr string // empty disables the debug metrics server
}

// Default returns a Config seeded with the harness's baseline settings,
// then applies the THREADS / TRACING_LOOP environment overrides the driver
// reads at startup.
func Default() Config {
	cfg := Config{
		ObjectModel:    heap.OpenJDK,
		TracingLoop:    KernelWP,
		Iterations:     1,
		NumWorkers:     4,
		PacketCapacity: 1024,
		ShapeCacheSize: 4096,
		DistributedOwnerShift: trace.DefaultOwnerShift,
		NumProcessors:  4,
		Topology:       nmp.TopologyFullyConnected,
	}
	cfg.applyEnv()
	return cfg
}

// applyEnv reads THREADS and TRACING_LOOP overrides, the two environment
// knobs the harness scripts use to sweep a run without editing flags.
func (c *Config) applyEnv() {
	if v := os.Getenv("THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.NumWorkers = n
			c.NumProcessors = n
		}
	}
	if v := os.Getenv("TRACING_LOOP"); v != "" {
		c.TracingLoop = KernelChoice(v)
	}
}
