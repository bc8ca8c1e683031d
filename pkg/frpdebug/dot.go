package frpdebug

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ebb-frp/ebb/pkg/frp"
)

// DOT renders a graph snapshot as Graphviz DOT. Events are boxes, reactives
// are ellipses, futures are diamonds; cleaned-up nodes are grayed out.
// Fusion records from the derivation arena appear as dashed edges labeled
// "derives", alongside the plain dependency edges.
func DOT(snap frp.GraphSnapshot) string {
	nodes := append([]frp.GraphNode(nil), snap.Nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	var b strings.Builder
	b.WriteString("digraph ebb {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\"];\n")

	for _, n := range nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n)),
			"shape=" + shapeFor(n.Kind),
		}
		if !n.Live {
			attrs = append(attrs, "style=filled", "fillcolor=gray85", "fontcolor=gray40")
		}
		fmt.Fprintf(&b, "  n%d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	for _, e := range snap.Edges {
		fmt.Fprintf(&b, "  n%d -> n%d;\n", e.From, e.To)
	}

	derivations := append([]frp.DerivationRecord(nil), snap.Derivations...)
	sort.Slice(derivations, func(i, j int) bool { return derivations[i].NodeID < derivations[j].NodeID })
	for _, d := range derivations {
		fmt.Fprintf(&b, "  n%d -> n%d [style=dashed, label=\"derives\"];\n", d.SourceID, d.NodeID)
	}

	b.WriteString("}\n")
	return b.String()
}

func nodeLabel(n frp.GraphNode) string {
	if n.Label == "" {
		return fmt.Sprintf("%s #%d", n.Kind, n.ID)
	}
	return fmt.Sprintf("%s #%d", n.Label, n.ID)
}

func shapeFor(kind string) string {
	switch kind {
	case "Event":
		return "box"
	case "Reactive":
		return "ellipse"
	case "Future":
		return "diamond"
	default:
		return "plaintext"
	}
}
