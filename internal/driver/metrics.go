package driver

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the run's Prometheus collectors: gauges that reflect the
// most recent epoch's counters, for a long simulate/trace run to expose
// through the optional debug endpoint rather than only printing at exit.
type Metrics struct {
	Registry *prometheus.Registry

	MarkedObjects prometheus.Gauge
	Slots         prometheus.Gauge
	NonEmptySlots prometheus.Gauge
	PacketsEmitted prometheus.Counter
	CacheHitRate  prometheus.Gauge
	EpochDuration prometheus.Histogram
}

// NewMetrics builds a fresh registry and collector set, labeled with runID
// so metrics from concurrent runs on the same host don't collide.
func NewMetrics(runID string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"run_id": runID}

	m := &Metrics{
		Registry: reg,
		MarkedObjects: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tracebench", Name: "marked_objects", Help: "objects marked in the most recent epoch.", ConstLabels: constLabels,
		}),
		Slots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tracebench", Name: "slots_scanned", Help: "reference slots scanned in the most recent epoch.", ConstLabels: constLabels,
		}),
		NonEmptySlots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tracebench", Name: "non_empty_slots", Help: "non-null reference slots scanned in the most recent epoch.", ConstLabels: constLabels,
		}),
		PacketsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tracebench", Name: "packets_emitted_total", Help: "work packets emitted across the run.", ConstLabels: constLabels,
		}),
		CacheHitRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "tracebench", Name: "cache_hit_rate", Help: "NMP processor cache hit rate for the most recent epoch.", ConstLabels: constLabels,
		}),
		EpochDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tracebench", Name: "epoch_duration_seconds", Help: "wall-clock duration of one epoch.", ConstLabels: constLabels,
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.MarkedObjects, m.Slots, m.NonEmptySlots, m.PacketsEmitted, m.CacheHitRate, m.EpochDuration)
	return m
}

// ObserveTrace updates the gauges from one tracing epoch's stats.
func (m *Metrics) ObserveTrace(markedObjects, slots, nonEmptySlots, sends uint64, elapsedSeconds float64) {
	m.MarkedObjects.Set(float64(markedObjects))
	m.Slots.Set(float64(slots))
	m.NonEmptySlots.Set(float64(nonEmptySlots))
	m.PacketsEmitted.Add(float64(sends))
	m.EpochDuration.Observe(elapsedSeconds)
}

// ObserveNMP updates the gauges from one simulate run's stats.
func (m *Metrics) ObserveNMP(markedObjects uint64, readHitRate float64, elapsedSeconds float64) {
	m.MarkedObjects.Set(float64(markedObjects))
	m.CacheHitRate.Set(readHitRate)
	m.EpochDuration.Observe(elapsedSeconds)
}
