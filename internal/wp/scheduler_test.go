package wp

import (
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

const markSense = 1

var _ = Describe("work-packet scheduler variants", func() {
	It("marks every reachable node exactly once via WP", func() {
		m := diamondModel()
		stats := WP(m, markSense, 2, DefaultCapacity)
		Expect(stats.MarkedObjects).To(Equal(uint64(4)))
	})

	It("marks every reachable node exactly once via WP2's bucket DAG", func() {
		m := diamondModel()
		stats := WP2(m, markSense, 2, DefaultCapacity)
		Expect(stats.MarkedObjects).To(Equal(uint64(4)))
	})

	It("traces a line list to completion via WPEdgeSlot", func() {
		m := lineListModel()
		stats := WPEdgeSlot(m, markSense, 3, DefaultCapacity)
		Expect(stats.MarkedObjects).To(Equal(uint64(3)))
	})

	It("traces via the dual-queue WPEdgeSlotDual variant", func() {
		m := diamondModel()
		stats := WPEdgeSlotDual(m, markSense, 2, DefaultCapacity)
		Expect(stats.MarkedObjects).To(Equal(uint64(4)))
	})

	It("charges exactly one forward-copy per object in the Forwarding variant", func() {
		m := diamondModel()
		stats := Forwarding(m, markSense, 2, DefaultCapacity)
		Expect(stats.MarkedObjects).To(Equal(uint64(4)))
	})
})

var _ = Describe("monitor epoch synchronization", func() {
	It("runs every worker through the same sequence of epochs in lockstep", func() {
		const numWorkers = 4
		const numEpochs = 3
		mon := newMonitor(numWorkers)
		seen := make([][]int, numWorkers)
		var wg sync.WaitGroup
		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func(id int) {
				defer wg.Done()
				observed := 0
				for observed < numEpochs {
					epoch, ok := mon.waitForEpoch(observed)
					if !ok {
						return
					}
					seen[id] = append(seen[id], epoch)
					observed = epoch
					mon.syncAtBarrier(epoch)
				}
			}(w)
		}
		for e := 1; e <= numEpochs; e++ {
			mon.runEpoch()
		}
		wg.Wait()
		for _, s := range seen {
			Expect(s).To(Equal([]int{1, 2, 3}))
		}
	})
})
