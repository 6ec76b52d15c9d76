package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gc-research/tracebench/internal/cmn"
	"github.com/gc-research/tracebench/internal/heap"
)

// VerifySnapshots loads every path and checks, independently and
// concurrently, that the number of objects the snapshot decodes matches
// the number reachable from its roots (original_source's sanity_trace
// check, run once per heapdump before a trace begins). Each path's load
// and check runs as its own errgroup task; every task runs to completion
// (none watches for cancellation) and the first failure is returned.
func VerifySnapshots(paths []string) error {
	g, _ := errgroup.WithContext(context.Background())
	for _, path := range paths {
		path := path
		g.Go(func() error {
			snap, err := heap.LoadSnapshot(path)
			if err != nil {
				return err
			}
			reachable := snap.SanityReachable()
			if reachable != len(snap.Objects) {
				return cmn.NewError(cmn.InconsistentHeap,
					"%s: sanity trace reports %d reachable objects, snapshot declares %d",
					path, reachable, len(snap.Objects))
			}
			return nil
		})
	}
	return g.Wait()
}
