// This file declares the immutable Graph container and its adjacency
// queries. Graphs are assembled by the builder package and frozen by
// NewGraph; after that every accessor is read-only and safe to share.
package core

// Graph is the immutable collection of nodes, keys, and edges with a
// distinguished start node.
//
// Adjacency indices are precomputed at construction: out[n] lists every
// edge for which n is a valid traversal origin (two-way edges index both
// endpoints), in[n] lists every edge that can lead into n.
type Graph struct {
	start *Node
	nodes []*Node
	keys  []*Key
	edges []*Edge

	out map[int][]*Edge // node ID → edges traversable out of the node
	in  map[int][]*Edge // node ID → edges traversable into the node
}

// NewGraph freezes the given entities into an immutable Graph.
// Nodes, keys, and edges must already carry dense ordinal IDs in slice
// order; the builder guarantees this.
//
// Errors: ErrNoStart for a nil start, ErrEdgeEndpoints for an edge missing
// an endpoint, ErrUnknownNode for an edge referencing a foreign node.
//
// Complexity: O(V + E) time and space.
func NewGraph(start *Node, nodes []*Node, keys []*Key, edges []*Edge) (*Graph, error) {
	if start == nil {
		return nil, ErrNoStart
	}

	known := make(map[int]*Node, len(nodes))
	for _, n := range nodes {
		known[n.ID] = n
	}

	g := &Graph{
		start: start,
		nodes: append([]*Node(nil), nodes...),
		keys:  append([]*Key(nil), keys...),
		edges: append([]*Edge(nil), edges...),
		out:   make(map[int][]*Edge, len(nodes)),
		in:    make(map[int][]*Edge, len(nodes)),
	}

	for _, e := range g.edges {
		if e.Source == nil || e.Destination == nil {
			return nil, ErrEdgeEndpoints
		}
		if known[e.Source.ID] != e.Source || known[e.Destination.ID] != e.Destination {
			return nil, ErrUnknownNode
		}

		g.out[e.Source.ID] = append(g.out[e.Source.ID], e)
		g.in[e.Destination.ID] = append(g.in[e.Destination.ID], e)
		if e.Kind == EdgeTwoWay {
			// Both endpoints are valid origins of an opened two-way edge.
			g.out[e.Destination.ID] = append(g.out[e.Destination.ID], e)
			g.in[e.Source.ID] = append(g.in[e.Source.ID], e)
		}
	}

	return g, nil
}

// Start returns the distinguished start node.
func (g *Graph) Start() *Node { return g.start }

// Nodes returns the graph's nodes in insertion (ID) order.
// The returned slice is a copy; mutating it does not affect the graph.
// Complexity: O(V).
func (g *Graph) Nodes() []*Node { return append([]*Node(nil), g.nodes...) }

// Keys returns the graph's keys in insertion (ID) order.
// The returned slice is a copy; mutating it does not affect the graph.
// Complexity: O(K).
func (g *Graph) Keys() []*Key { return append([]*Key(nil), g.keys...) }

// Edges returns the graph's edges in insertion (ID) order.
// The returned slice is a copy; mutating it does not affect the graph.
// Complexity: O(E).
func (g *Graph) Edges() []*Edge { return append([]*Edge(nil), g.edges...) }

// NodeCount returns the number of nodes. Complexity: O(1).
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgesFrom returns the edges traversable out of n, in edge-ID order.
// For two-way edges both endpoints count as origins.
// The returned slice is shared; callers must not mutate it.
// Complexity: O(1).
func (g *Graph) EdgesFrom(n *Node) []*Edge {
	if n == nil {
		return nil
	}
	return g.out[n.ID]
}

// EdgesTo returns the edges that can lead into n, in edge-ID order.
// For two-way edges both endpoints count as destinations.
// The returned slice is shared; callers must not mutate it.
// Complexity: O(1).
func (g *Graph) EdgesTo(n *Node) []*Edge {
	if n == nil {
		return nil
	}
	return g.in[n.ID]
}

// IncomingGates returns the edges whose declared destination is n. This is
// the conjunctive-gate view: an AndGate node opens only when every edge in
// this list is satisfied, regardless of which direction first reaches it.
// Complexity: O(deg(n)).
func (g *Graph) IncomingGates(n *Node) []*Edge {
	if n == nil {
		return nil
	}
	var gates []*Edge
	for _, e := range g.in[n.ID] {
		if e.Destination == n {
			gates = append(gates, e)
		}
	}
	return gates
}
