package frpdebug

import (
	"strings"
	"testing"

	"github.com/ebb-frp/ebb/pkg/frp"
)

func TestDOTRendersNodesEdgesAndDerivations(t *testing.T) {
	snap := frp.GraphSnapshot{
		Nodes: []frp.GraphNode{
			{ID: 2, Kind: "Reactive", Label: "stepper", Live: true},
			{ID: 1, Kind: "Event", Label: "event", Live: true},
			{ID: 3, Kind: "Reactive", Label: "map", Live: false},
		},
		Edges:       []frp.GraphEdge{{From: 1, To: 2}},
		Derivations: []frp.DerivationRecord{{NodeID: 3, SourceID: 2}},
	}

	out := DOT(snap)

	for _, want := range []string{
		"digraph ebb {",
		`n1 [label="event #1", shape=box];`,
		`n2 [label="stepper #2", shape=ellipse];`,
		`n3 [label="map #3", shape=ellipse, style=filled, fillcolor=gray85, fontcolor=gray40];`,
		"n1 -> n2;",
		`n2 -> n3 [style=dashed, label="derives"];`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	// Nodes are emitted in ID order regardless of snapshot order.
	if strings.Index(out, "n1 [") > strings.Index(out, "n2 [") {
		t.Error("nodes not sorted by id")
	}
}

func TestDOTEmptySnapshot(t *testing.T) {
	out := DOT(frp.GraphSnapshot{})
	if !strings.HasPrefix(out, "digraph ebb {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("malformed empty graph:\n%s", out)
	}
}
