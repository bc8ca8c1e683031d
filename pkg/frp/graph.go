package frp

import "sync"

// Graph is an injectable dependency-graph tracker. It is never a package
// singleton: install one with WithGraph and every node, edge, derivation
// record, and emission constructed inside is recorded into it. Multiple
// graphs can exist side by side, which keeps tests isolated and lets an
// application inspect one subsystem without seeing another's nodes.
//
// The graph also serves as the derivation arena: each fused map node has a
// record here naming its root source, making the one-hop fusion invariant
// directly inspectable.
type Graph struct {
	mu          sync.Mutex
	nodes       map[uint64]*GraphNode
	edges       []GraphEdge
	edgeSeen    map[GraphEdge]bool
	derivations map[uint64]DerivationRecord
	emissions   uint64
	watcherSeq  uint64
	watchers    map[uint64]func(GraphEvent)
}

// GraphNode describes one recorded node.
type GraphNode struct {
	ID    uint64 `json:"id"`
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Live  bool   `json:"live"`
}

// GraphEdge is a directed dependency edge from a source node to the node
// built on top of it.
type GraphEdge struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

// DerivationRecord names the root source a fused derived node hangs off.
type DerivationRecord struct {
	NodeID   uint64 `json:"node_id"`
	SourceID uint64 `json:"source_id"`
}

// GraphEvent is a single graph mutation, delivered to Watch observers.
type GraphEvent struct {
	Type   string `json:"type"` // node_added, node_removed, edge_added, emission
	NodeID uint64 `json:"node_id,omitempty"`
	Kind   string `json:"kind,omitempty"`
	Label  string `json:"label,omitempty"`
	From   uint64 `json:"from,omitempty"`
	To     uint64 `json:"to,omitempty"`
}

// GraphSnapshot is a point-in-time copy of the graph, safe to serialize.
type GraphSnapshot struct {
	Nodes       []GraphNode        `json:"nodes"`
	Edges       []GraphEdge        `json:"edges"`
	Derivations []DerivationRecord `json:"derivations"`
	Emissions   uint64             `json:"emissions"`
}

// NewGraph creates an empty tracker.
func NewGraph() *Graph {
	return &Graph{
		nodes:       make(map[uint64]*GraphNode),
		edgeSeen:    make(map[GraphEdge]bool),
		derivations: make(map[uint64]DerivationRecord),
		watchers:    make(map[uint64]func(GraphEvent)),
	}
}

func (g *Graph) addNode(n Node, label string) {
	gn := &GraphNode{ID: n.NodeID(), Kind: n.Kind().String(), Label: label, Live: true}

	g.mu.Lock()
	g.nodes[gn.ID] = gn
	g.mu.Unlock()

	g.publish(GraphEvent{Type: "node_added", NodeID: gn.ID, Kind: gn.Kind, Label: label})
}

func (g *Graph) removeNode(id uint64) {
	g.mu.Lock()
	if n, ok := g.nodes[id]; ok {
		n.Live = false
	}
	g.mu.Unlock()

	g.publish(GraphEvent{Type: "node_removed", NodeID: id})
}

func (g *Graph) addEdge(from, to uint64) {
	e := GraphEdge{From: from, To: to}

	g.mu.Lock()
	if g.edgeSeen[e] {
		g.mu.Unlock()
		return
	}
	g.edgeSeen[e] = true
	g.edges = append(g.edges, e)
	g.mu.Unlock()

	g.publish(GraphEvent{Type: "edge_added", From: from, To: to})
}

func (g *Graph) setDerivation(nodeID, sourceID uint64) {
	g.mu.Lock()
	g.derivations[nodeID] = DerivationRecord{NodeID: nodeID, SourceID: sourceID}
	g.mu.Unlock()
}

func (g *Graph) recordEmission(id uint64) {
	g.mu.Lock()
	g.emissions++
	g.mu.Unlock()

	g.publish(GraphEvent{Type: "emission", NodeID: id})
}

// publish delivers ev to every watcher, isolating panics.
func (g *Graph) publish(ev GraphEvent) {
	g.mu.Lock()
	if len(g.watchers) == 0 {
		g.mu.Unlock()
		return
	}
	fns := make([]func(GraphEvent), 0, len(g.watchers))
	for _, fn := range g.watchers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()

	for _, fn := range fns {
		f := fn
		safeCall("graph watcher", func() { f(ev) })
	}
}

// Watch registers an observer for graph mutations and returns its removal
// function.
func (g *Graph) Watch(fn func(GraphEvent)) func() {
	g.mu.Lock()
	g.watcherSeq++
	id := g.watcherSeq
	g.watchers[id] = fn
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		delete(g.watchers, id)
		g.mu.Unlock()
	}
}

// Snapshot returns a copy of the current graph state.
func (g *Graph) Snapshot() GraphSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := GraphSnapshot{
		Nodes:       make([]GraphNode, 0, len(g.nodes)),
		Edges:       append([]GraphEdge(nil), g.edges...),
		Derivations: make([]DerivationRecord, 0, len(g.derivations)),
		Emissions:   g.emissions,
	}
	for _, n := range g.nodes {
		snap.Nodes = append(snap.Nodes, *n)
	}
	for _, d := range g.derivations {
		snap.Derivations = append(snap.Derivations, d)
	}
	return snap
}

// Derivation reports the recorded root source for a derived node id.
func (g *Graph) Derivation(nodeID uint64) (uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	d, ok := g.derivations[nodeID]
	return d.SourceID, ok
}

// LiveNodes counts nodes that have been constructed but not cleaned up.
func (g *Graph) LiveNodes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, node := range g.nodes {
		if node.Live {
			n++
		}
	}
	return n
}

// NodeCounts returns the number of live nodes per kind.
func (g *Graph) NodeCounts() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	counts := make(map[string]int)
	for _, node := range g.nodes {
		if node.Live {
			counts[node.Kind]++
		}
	}
	return counts
}

// EdgeCount returns the number of recorded edges.
func (g *Graph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}

// Emissions returns the total number of event emissions recorded.
func (g *Graph) Emissions() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.emissions
}

// edge records a dependency edge into g when tracking is active.
func edge(g *Graph, from, to Node) {
	if g != nil {
		g.addEdge(from.NodeID(), to.NodeID())
	}
}
