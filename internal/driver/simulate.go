package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gc-research/tracebench/internal/heap"
	"github.com/gc-research/tracebench/internal/memsys"
	"github.com/gc-research/tracebench/internal/nmp"
)

// RunSimulate restores each snapshot path and runs the NMP simulator over
// it, printing the fake DaCapo-iteration markers and "Tabulate Statistics"
// footer original_source's reified_simulation prints, one block per path.
func RunSimulate(cfg Config) error {
	model, err := heap.New(cfg.ObjectModel)
	if err != nil {
		return err
	}

	for _, path := range cfg.Paths {
		name := filepath.Base(path)
		fmt.Printf("===== DaCapo hwgc-soft %q starting =====\n", name)
		start := time.Now()

		model.Reset()
		snap, err := heap.LoadSnapshot(path)
		if err != nil {
			return err
		}
		mapper := memsys.NewMapper()
		if err := mapper.Reserve(toMemsysSpaces(snap.Spaces)); err != nil {
			return err
		}
		model.Restore(snap)

		sim, err := nmp.NewSimulator(model, 1, cfg.NumProcessors, cfg.Topology)
		if err != nil {
			mapper.Release()
			return err
		}
		stats := sim.Run()

		elapsed := time.Since(start)
		fmt.Printf("===== DaCapo hwgc-soft %q PASSED in %d msec =====\n", name, elapsed.Milliseconds())

		printTabulateStatistics(os.Stdout, nmpStatsRows(stats, elapsed))
		mapper.Release()
	}
	return nil
}

func nmpStatsRows(s nmp.Stats, elapsed time.Duration) []row {
	return []row{
		{"time", float64(elapsed.Microseconds()) / 1000},
		{"ticks", float64(s.Ticks)},
		{"marked_objects", float64(s.MarkedObjects)},
		{"busy_ticks", float64(s.BusyTicks)},
		{"utilization", s.Utilization},
		{"read_hits", float64(s.ReadHits)},
		{"read_misses", float64(s.ReadMisses)},
		{"write_hits", float64(s.WriteHits)},
		{"write_misses", float64(s.WriteMisses)},
		{"read_hit_rate", s.ReadHitRate},
		{"write_hit_rate", s.WriteHitRate},
	}
}
