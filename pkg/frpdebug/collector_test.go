package frpdebug

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ebb-frp/ebb/pkg/frp"
)

func TestCollectorReflectsGraphState(t *testing.T) {
	g := frp.NewGraph()

	var emit func(int)
	frp.WithGraph(g, func() {
		var e *frp.Event[int]
		e, emit = frp.NewEvent[int]()
		frp.Stepper(e, 0)
	})
	emit(1)
	emit(2)

	c := NewCollector(g)

	expected := `
# HELP ebb_live_nodes Live dataflow nodes by kind.
# TYPE ebb_live_nodes gauge
ebb_live_nodes{kind="Event"} 1
ebb_live_nodes{kind="Reactive"} 1
# HELP ebb_edges Recorded dependency edges.
# TYPE ebb_edges gauge
ebb_edges 1
# HELP ebb_emissions_total Total event emissions recorded.
# TYPE ebb_emissions_total counter
ebb_emissions_total 2
# HELP ebb_disposed_nodes Dataflow nodes constructed and since cleaned up.
# TYPE ebb_disposed_nodes gauge
ebb_disposed_nodes 0
# HELP ebb_derivations Fused derived nodes in the derivation arena.
# TYPE ebb_derivations gauge
ebb_derivations 0
`
	err := testutil.CollectAndCompare(c, strings.NewReader(expected),
		"ebb_live_nodes", "ebb_edges", "ebb_emissions_total",
		"ebb_disposed_nodes", "ebb_derivations")
	if err != nil {
		t.Error(err)
	}
}

func TestCollectorCustomNamespace(t *testing.T) {
	g := frp.NewGraph()
	frp.WithGraph(g, func() {
		frp.NewEvent[int]()
	})

	c := NewCollector(g, WithNamespace("myapp"))

	expected := `
# HELP myapp_live_nodes Live dataflow nodes by kind.
# TYPE myapp_live_nodes gauge
myapp_live_nodes{kind="Event"} 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "myapp_live_nodes"); err != nil {
		t.Error(err)
	}
}

func TestCollectorCountsDisposedNodes(t *testing.T) {
	g := frp.NewGraph()

	var e *frp.Event[int]
	frp.WithGraph(g, func() {
		e, _ = frp.NewEvent[int]()
	})
	frp.Cleanup(e)

	expected := `
# HELP ebb_disposed_nodes Dataflow nodes constructed and since cleaned up.
# TYPE ebb_disposed_nodes gauge
ebb_disposed_nodes 1
`
	c := NewCollector(g)
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "ebb_disposed_nodes"); err != nil {
		t.Error(err)
	}
}

func TestFlushMetricsObserveScheduler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFlushMetrics(reg)

	s := frp.NewScheduler()
	detach := m.Attach(s)
	defer detach()

	s.Schedule(func() {})
	s.Schedule(func() {})
	s.Wait()

	if got := testutil.ToFloat64(m.callbacksTotal); got != 2 {
		t.Errorf("callbacks total: %v", got)
	}
	if got := testutil.ToFloat64(m.flushesTotal); got < 1 {
		t.Errorf("flushes total: %v", got)
	}
}
