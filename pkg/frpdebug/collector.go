// Package frpdebug exposes a running dataflow graph for inspection:
// Prometheus metrics, Graphviz DOT export, a JSON snapshot endpoint, and a
// live websocket stream of graph mutations.
//
// Nothing in this package is required to run a graph. It attaches to the
// injectable Graph tracker and the scheduler's flush observer, both of
// which are no-ops when unused.
package frpdebug

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ebb-frp/ebb/pkg/frp"
)

// MetricsConfig configures the Prometheus surface.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "ebb").
	Namespace string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for flush duration, in seconds.
	// Default: prometheus.DefBuckets.
	Buckets []float64
}

// MetricsOption configures the Prometheus surface.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the flush duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "ebb",
		Buckets:   prometheus.DefBuckets,
	}
}

// Collector is a pull-style prometheus.Collector over a Graph. Every scrape
// reads the graph's current state; nothing is pushed.
//
// Metrics exposed:
//   - ebb_live_nodes{kind}: live node count per node kind
//   - ebb_disposed_nodes: nodes constructed and since cleaned up
//   - ebb_edges: recorded dependency edges
//   - ebb_derivations: fused derived nodes in the derivation arena
//   - ebb_emissions_total: event emissions recorded
type Collector struct {
	graph *frp.Graph

	liveNodes     *prometheus.Desc
	disposedNodes *prometheus.Desc
	edges         *prometheus.Desc
	derivations   *prometheus.Desc
	emissions     *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector reading from g.
func NewCollector(g *frp.Graph, opts ...MetricsOption) *Collector {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	name := func(n string) string {
		return prometheus.BuildFQName(config.Namespace, "", n)
	}

	return &Collector{
		graph: g,
		liveNodes: prometheus.NewDesc(name("live_nodes"),
			"Live dataflow nodes by kind.",
			[]string{"kind"}, config.ConstLabels),
		disposedNodes: prometheus.NewDesc(name("disposed_nodes"),
			"Dataflow nodes constructed and since cleaned up.",
			nil, config.ConstLabels),
		edges: prometheus.NewDesc(name("edges"),
			"Recorded dependency edges.",
			nil, config.ConstLabels),
		derivations: prometheus.NewDesc(name("derivations"),
			"Fused derived nodes in the derivation arena.",
			nil, config.ConstLabels),
		emissions: prometheus.NewDesc(name("emissions_total"),
			"Total event emissions recorded.",
			nil, config.ConstLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.liveNodes
	ch <- c.disposedNodes
	ch <- c.edges
	ch <- c.derivations
	ch <- c.emissions
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.graph.Snapshot()

	perKind := make(map[string]int)
	disposed := 0
	for _, n := range snap.Nodes {
		if n.Live {
			perKind[n.Kind]++
		} else {
			disposed++
		}
	}
	for kind, n := range perKind {
		ch <- prometheus.MustNewConstMetric(c.liveNodes, prometheus.GaugeValue, float64(n), kind)
	}
	ch <- prometheus.MustNewConstMetric(c.disposedNodes, prometheus.GaugeValue, float64(disposed))
	ch <- prometheus.MustNewConstMetric(c.edges, prometheus.GaugeValue, float64(len(snap.Edges)))
	ch <- prometheus.MustNewConstMetric(c.derivations, prometheus.GaugeValue, float64(len(snap.Derivations)))
	ch <- prometheus.MustNewConstMetric(c.emissions, prometheus.CounterValue, float64(snap.Emissions))
}

// FlushMetrics is the push-style counterpart to Collector: it observes
// scheduler flushes through a FlushObserver.
type FlushMetrics struct {
	flushesTotal   prometheus.Counter
	callbacksTotal prometheus.Counter
	flushDuration  prometheus.Histogram
}

// NewFlushMetrics registers flush metrics with reg.
func NewFlushMetrics(reg prometheus.Registerer, opts ...MetricsOption) *FlushMetrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(reg)
	return &FlushMetrics{
		flushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "flushes_total",
			Help:        "Total scheduler flushes completed.",
			ConstLabels: config.ConstLabels,
		}),
		callbacksTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Name:        "flush_callbacks_total",
			Help:        "Total deferred callbacks run across all flushes.",
			ConstLabels: config.ConstLabels,
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Name:        "flush_duration_seconds",
			Help:        "Wall time per scheduler flush in seconds.",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

// Attach installs the flush observer on s, chaining any observer already
// present. The returned function restores the previous observer.
func (m *FlushMetrics) Attach(s *frp.Scheduler) func() {
	var prev frp.FlushObserver
	prev = s.SetFlushObserver(func(callbacks int, elapsed time.Duration) {
		m.flushesTotal.Inc()
		m.callbacksTotal.Add(float64(callbacks))
		m.flushDuration.Observe(elapsed.Seconds())
		if prev != nil {
			prev(callbacks, elapsed)
		}
	})
	return func() { s.SetFlushObserver(prev) }
}
