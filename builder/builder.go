package builder

import (
	"fmt"

	"github.com/katalvlaran/routefind/core"
)

// Builder accumulates graph entities and freezes them with Build.
// The zero value is not usable; construct with New.
type Builder struct {
	nodes []*core.Node
	keys  []*core.Key
	edges []*core.Edge

	owned map[core.Ref]struct{}

	// first recorded violation, surfaced by Build
	err error
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{owned: make(map[core.Ref]struct{})}
}

// AddNode appends a node of the given kind and returns it.
// IDs are dense ordinals in insertion order.
func (b *Builder) AddNode(kind core.NodeKind, group core.Group, label string) *core.Node {
	n := &core.Node{ID: len(b.nodes), Kind: kind, Group: group, Label: label}
	b.nodes = append(b.nodes, n)
	b.owned[n] = struct{}{}
	return n
}

// AddKey appends a key of the given kind and returns it. Quantity is how
// many tokens one edge-requirement reference of the key represents;
// quantity < 1 records ErrBadQuantity.
func (b *Builder) AddKey(kind core.KeyKind, group core.Group, label string, quantity int) *core.Key {
	if quantity < 1 {
		b.record(fmt.Errorf("AddKey(%q): %w", label, ErrBadQuantity))
		quantity = 1
	}
	k := &core.Key{ID: len(b.keys), Kind: kind, Group: group, Quantity: quantity, Label: label}
	b.keys = append(b.keys, k)
	b.owned[k] = struct{}{}
	return k
}

// AddEdge appends an edge of the given kind between src and dst, locked
// behind the given key tokens (repeats allowed; a multiset) and requiring
// the given nodes to be visited first. This is the primitive every helper
// reduces to.
func (b *Builder) AddEdge(kind core.EdgeKind, src, dst *core.Node, keys []*core.Key, nodes []*core.Node) *core.Edge {
	if src == nil || dst == nil {
		b.record(fmt.Errorf("AddEdge: %w", ErrNilRef))
		return nil
	}
	if !b.owns(src) || !b.owns(dst) {
		b.record(fmt.Errorf("AddEdge(%s→%s): %w", src, dst, ErrForeignRef))
		return nil
	}
	e := &core.Edge{
		ID:            len(b.edges),
		Kind:          kind,
		Source:        src,
		Destination:   dst,
		RequiredKeys:  append([]*core.Key(nil), keys...),
		RequiredNodes: append([]*core.Node(nil), nodes...),
	}
	b.edges = append(b.edges, e)
	return e
}

// AndGate adds a node reachable only when every incoming edge is
// satisfied. Each node reference in reqs becomes one incoming two-way
// edge; key references attach to every edge generated by this call.
func (b *Builder) AndGate(label string, reqs ...core.Ref) *core.Node {
	return b.gate(core.NodeAnd, label, reqs)
}

// OrGate adds a node reachable through any single satisfied incoming edge.
// Requirement handling matches AndGate.
func (b *Builder) OrGate(label string, reqs ...core.Ref) *core.Node {
	return b.gate(core.NodeOr, label, reqs)
}

// Item adds an item slot inside room `in`, connected by a two-way edge
// locked behind any key references in reqs; node references become
// visit-prerequisites of that edge.
func (b *Builder) Item(label string, group core.Group, in *core.Node, reqs ...core.Ref) *core.Node {
	n := b.AddNode(core.NodeItem, group, label)
	keys, nodes := b.split(label, reqs)
	b.AddEdge(core.EdgeTwoWay, in, n, keys, nodes)
	return n
}

// OneWay adds a node entered through a one-way transition from `from`.
// The traversal forks into a nested segment that may rejoin its parent.
func (b *Builder) OneWay(label string, from *core.Node, reqs ...core.Ref) *core.Node {
	n := b.AddNode(core.NodeOneWay, 0, label)
	keys, nodes := b.split(label, reqs)
	b.AddEdge(core.EdgeOneWay, from, n, keys, nodes)
	return n
}

// NoReturn adds a node entered through a no-return transition from `from`.
// The source side is permanently lost once the transition is taken.
func (b *Builder) NoReturn(label string, from *core.Node, reqs ...core.Ref) *core.Node {
	n := b.AddNode(core.NodeNoReturn, 0, label)
	keys, nodes := b.split(label, reqs)
	b.AddEdge(core.EdgeNoReturn, from, n, keys, nodes)
	return n
}

// Door adds an unlocked two-way edge between two existing nodes.
func (b *Builder) Door(a, z *core.Node) *core.Edge {
	return b.AddEdge(core.EdgeTwoWay, a, z, nil, nil)
}

// BlockedDoor adds a two-way edge between two existing nodes, locked
// behind the key references in reqs; node references become
// visit-prerequisites.
func (b *Builder) BlockedDoor(a, z *core.Node, reqs ...core.Ref) *core.Edge {
	keys, nodes := b.split("BlockedDoor", reqs)
	return b.AddEdge(core.EdgeTwoWay, a, z, keys, nodes)
}

// ReusableKey adds a key that persists through the segment once obtained.
func (b *Builder) ReusableKey(label string, group core.Group) *core.Key {
	return b.AddKey(core.KeyReusable, group, label, 1)
}

// ConsumableKey adds a key spent when its unlocking edge is taken.
func (b *Builder) ConsumableKey(label string, group core.Group) *core.Key {
	return b.AddKey(core.KeyConsumable, group, label, 1)
}

// RemovableKey adds a key required in count equal to the minimum
// multiplicity on any path from start to the gated node.
func (b *Builder) RemovableKey(label string, group core.Group) *core.Key {
	return b.AddKey(core.KeyRemovable, group, label, 1)
}

// Build freezes the accumulated entities into an immutable core.Graph.
// The start node is the first AndGate with no incoming edges.
//
// Errors: the first recorded helper violation, ErrEmptyGraph,
// ErrNoStartGate, or a core construction error, wrapped with context.
func (b *Builder) Build() (*core.Graph, error) {
	if b.err != nil {
		return nil, fmt.Errorf("Build: %w", b.err)
	}
	if len(b.nodes) == 0 {
		return nil, fmt.Errorf("Build: %w", ErrEmptyGraph)
	}

	incoming := make(map[int]bool, len(b.nodes))
	for _, e := range b.edges {
		incoming[e.Destination.ID] = true
	}
	var start *core.Node
	for _, n := range b.nodes {
		if n.Kind == core.NodeAnd && !incoming[n.ID] {
			start = n
			break
		}
	}
	if start == nil {
		return nil, fmt.Errorf("Build: %w", ErrNoStartGate)
	}

	g, err := core.NewGraph(start, b.nodes, b.keys, b.edges)
	if err != nil {
		return nil, fmt.Errorf("Build: %w", err)
	}
	return g, nil
}

// gate implements AndGate/OrGate: one incoming edge per node reference,
// keys shared across every generated edge.
func (b *Builder) gate(kind core.NodeKind, label string, reqs []core.Ref) *core.Node {
	n := b.AddNode(kind, 0, label)
	keys, sources := b.split(label, reqs)
	for _, src := range sources {
		b.AddEdge(core.EdgeTwoWay, src, n, keys, nil)
	}
	return n
}

// split partitions a requirement list into keys and nodes, recording nil
// or foreign references.
func (b *Builder) split(ctx string, reqs []core.Ref) ([]*core.Key, []*core.Node) {
	var (
		keys  []*core.Key
		nodes []*core.Node
	)
	for _, r := range reqs {
		switch v := r.(type) {
		case *core.Key:
			if v == nil {
				b.record(fmt.Errorf("%s: %w", ctx, ErrNilRef))
				continue
			}
			if !b.owns(v) {
				b.record(fmt.Errorf("%s: key %s: %w", ctx, v, ErrForeignRef))
				continue
			}
			keys = append(keys, v)
		case *core.Node:
			if v == nil {
				b.record(fmt.Errorf("%s: %w", ctx, ErrNilRef))
				continue
			}
			if !b.owns(v) {
				b.record(fmt.Errorf("%s: node %s: %w", ctx, v, ErrForeignRef))
				continue
			}
			nodes = append(nodes, v)
		default:
			b.record(fmt.Errorf("%s: %T: %w", ctx, r, ErrNilRef))
		}
	}
	return keys, nodes
}

func (b *Builder) owns(r core.Ref) bool {
	_, ok := b.owned[r]
	return ok
}

// record keeps the first violation; later ones are dropped.
func (b *Builder) record(err error) {
	if b.err == nil {
		b.err = err
	}
}
