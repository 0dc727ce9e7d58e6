package stats

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "multibit"

// Metrics is the prometheus instrumentation of a lookup session. It owns a
// private registry so several sessions never collide.
type Metrics struct {
	registry *prometheus.Registry

	Lookups        prometheus.Counter
	Misses         prometheus.Counter
	LookupDuration prometheus.Histogram
	Nodes          prometheus.Gauge
	MemoryBytes    prometheus.Gauge
	Prefixes       prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Lookups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Number of longest prefix match lookups.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_misses_total",
			Help:      "Number of lookups no prefix matched.",
		}),
		LookupDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Duration of a single lookup.",
			Buckets:   prometheus.ExponentialBuckets(10e-9, 2, 16),
		}),
		Nodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trie_nodes",
			Help:      "Number of nodes of the current trie.",
		}),
		MemoryBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trie_memory_bytes",
			Help:      "Estimated memory footprint of the current trie.",
		}),
		Prefixes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "trie_prefixes",
			Help:      "Number of prefixes inserted into the current trie.",
		}),
	}

	m.registry.MustRegister(m.Lookups, m.Misses, m.LookupDuration, m.Nodes, m.MemoryBytes, m.Prefixes)

	return m
}

// ObserveLookup records one lookup outcome.
func (m *Metrics) ObserveLookup(d time.Duration, nextHop int) {
	m.Lookups.Inc()
	if nextHop < 0 {
		m.Misses.Inc()
	}
	m.LookupDuration.Observe(d.Seconds())
}

// SetTrie publishes the size of the current trie.
func (m *Metrics) SetTrie(nodes int, memory uint64, prefixes int) {
	m.Nodes.Set(float64(nodes))
	m.MemoryBytes.Set(float64(memory))
	m.Prefixes.Set(float64(prefixes))
}

// WriteText dumps all metrics in the prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}

	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return errors.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}
