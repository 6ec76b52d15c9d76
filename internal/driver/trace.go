package driver

import (
	"fmt"
	"os"
	"time"

	"github.com/gc-research/tracebench/internal/cmn"
	"github.com/gc-research/tracebench/internal/cmn/nlog"
	"github.com/gc-research/tracebench/internal/heap"
	"github.com/gc-research/tracebench/internal/memsys"
	"github.com/gc-research/tracebench/internal/trace"
	"github.com/gc-research/tracebench/internal/wp"
)

func toMemsysSpaces(spaces []heap.Space) []memsys.Space {
	out := make([]memsys.Space, len(spaces))
	for i, s := range spaces {
		out[i] = memsys.Space{Name: s.Name, Start: memsys.Addr(s.Start), End: memsys.Addr(s.End)}
	}
	return out
}

func runKernel(choice KernelChoice, model heap.ObjectModel, markSense uint8, cfg Config) trace.Stats {
	switch choice {
	case KernelEdgeSlot:
		return trace.EdgeSlot(model, markSense)
	case KernelEdgeObjref:
		return trace.EdgeObjref(model, markSense)
	case KernelNodeObjref:
		return trace.NodeObjref(model, markSense)
	case KernelDistributedNodeObjref:
		return trace.DistributedNodeObjref(model, markSense, cfg.NumWorkers, cfg.DistributedOwnerShift)
	case KernelShapeCache:
		return trace.ShapeCache(model, markSense, cfg.ShapeCacheSize)
	case KernelWP:
		return fromWPStats(wp.WP(model, markSense, cfg.NumWorkers, cfg.PacketCapacity))
	case KernelWP2:
		return fromWPStats(wp.WP2(model, markSense, cfg.NumWorkers, cfg.PacketCapacity))
	case KernelWPEdgeSlot:
		return fromWPStats(wp.WPEdgeSlot(model, markSense, cfg.NumWorkers, cfg.PacketCapacity))
	case KernelWPEdgeSlotDual:
		return fromWPStats(wp.WPEdgeSlotDual(model, markSense, cfg.NumWorkers, cfg.PacketCapacity))
	case KernelForwarding:
		return fromWPStats(wp.Forwarding(model, markSense, cfg.NumWorkers, cfg.PacketCapacity))
	default:
		panic(fmt.Sprintf("driver: unknown tracing loop %q", choice))
	}
}

func fromWPStats(s wp.Stats) trace.Stats {
	return trace.Stats{MarkedObjects: s.MarkedObjects, Slots: s.Slots, NonEmptySlots: s.NonEmptySlots}
}

// RunTrace restores each snapshot path and runs cfg.Iterations epochs of
// cfg.TracingLoop against it, printing the same "Tabulate Statistics"
// footer original_source's reified_trace prints: pauses, cumulative time,
// and the last iteration's stats, summed across every path.
func RunTrace(cfg Config) error {
	if cfg.TracingLoop == KernelShapeCache && cfg.Iterations != 1 {
		return cmn.NewError(cmn.InvalidArgs, "ShapeCache supports only one iteration per heapdump")
	}

	model, err := heap.New(cfg.ObjectModel)
	if err != nil {
		return err
	}

	var pauses int
	var totalMicros int64
	var total trace.Stats

	for _, path := range cfg.Paths {
		model.Reset()
		snap, err := heap.LoadSnapshot(path)
		if err != nil {
			return err
		}

		mapper := memsys.NewMapper()
		if err := mapper.Reserve(toMemsysSpaces(snap.Spaces)); err != nil {
			return err
		}

		restoreStart := time.Now()
		model.Restore(snap)
		nlog.Infof("driver: deserialized heapdump %s, %d objects in %.3f ms",
			path, len(snap.Objects), float64(time.Since(restoreStart).Microseconds())/1000)

		var markSense uint8
		for i := 0; i < cfg.Iterations; i++ {
			if i%2 == 0 {
				markSense = 1
			} else {
				markSense = 0
			}
			start := time.Now()
			stats := runKernel(cfg.TracingLoop, model, markSense, cfg)
			elapsed := time.Since(start)
			millis := float64(elapsed.Microseconds()) / 1000

			nlog.Infof("driver: marked %d objects, processed %d slots (%d non-empty) in %.3f ms",
				stats.MarkedObjects, stats.Slots, stats.NonEmptySlots, millis)
			if stats.NonEmptySlots != 0 {
				nlog.Infof("driver: total communication: %d, %.1f%% of non-empty slots",
					stats.Sends, float64(stats.Sends)/float64(stats.NonEmptySlots)*100)
			}

			if i == cfg.Iterations-1 {
				pauses++
				totalMicros += elapsed.Microseconds()
				total.add(stats)
			}
		}

		unmarked := trace.VerifyMark(model.Objects(), markSense)
		if len(unmarked) != 0 {
			nlog.Warningf("driver: %d objects not marked by transitive closure", len(unmarked))
		}
		mapper.Release()
	}

	printTabulateStatistics(os.Stdout, []row{
		{"pauses", float64(pauses)},
		{"time", float64(totalMicros)},
		{"objects", float64(total.MarkedObjects)},
		{"slots", float64(total.Slots)},
		{"non_empty_slots", float64(total.NonEmptySlots)},
		{"sends", float64(total.Sends)},
		{"shape_cache_hits", float64(total.ShapeCacheStats.Hits)},
		{"shape_cache_misses", float64(total.ShapeCacheStats.Misses)},
	})
	return nil
}
