// Package core_test contains unit tests for the graph model: entity
// helpers, zone coverage, construction errors, and adjacency indexing.
package core_test

import (
	"errors"
	"testing"

	"github.com/katalvlaran/routefind/core"
)

// twoRooms builds A --TwoWay-- B plus a OneWay A→C by hand, bypassing the
// builder so construction errors can be exercised directly.
func twoRooms(t *testing.T) (*core.Graph, *core.Node, *core.Node, *core.Node) {
	t.Helper()
	a := &core.Node{ID: 0, Kind: core.NodeAnd, Label: "A"}
	b := &core.Node{ID: 1, Kind: core.NodeOr, Label: "B"}
	c := &core.Node{ID: 2, Kind: core.NodeOneWay, Label: "C"}
	edges := []*core.Edge{
		{ID: 0, Kind: core.EdgeTwoWay, Source: a, Destination: b},
		{ID: 1, Kind: core.EdgeOneWay, Source: a, Destination: c},
	}
	g, err := core.NewGraph(a, []*core.Node{a, b, c}, nil, edges)
	if err != nil {
		t.Fatalf("NewGraph: %v", err)
	}
	return g, a, b, c
}

// ------------------------------------------------------------------------
// 1. Construction errors
// ------------------------------------------------------------------------

func TestNewGraph_NilStart(t *testing.T) {
	_, err := core.NewGraph(nil, nil, nil, nil)
	if !errors.Is(err, core.ErrNoStart) {
		t.Fatalf("expected ErrNoStart, got %v", err)
	}
}

func TestNewGraph_MissingEndpoint(t *testing.T) {
	a := &core.Node{ID: 0, Kind: core.NodeAnd, Label: "A"}
	e := &core.Edge{ID: 0, Kind: core.EdgeTwoWay, Source: a, Destination: nil}
	_, err := core.NewGraph(a, []*core.Node{a}, nil, []*core.Edge{e})
	if !errors.Is(err, core.ErrEdgeEndpoints) {
		t.Fatalf("expected ErrEdgeEndpoints, got %v", err)
	}
}

func TestNewGraph_ForeignNode(t *testing.T) {
	a := &core.Node{ID: 0, Kind: core.NodeAnd, Label: "A"}
	ghost := &core.Node{ID: 1, Kind: core.NodeOr, Label: "ghost"}
	e := &core.Edge{ID: 0, Kind: core.EdgeTwoWay, Source: a, Destination: ghost}
	_, err := core.NewGraph(a, []*core.Node{a}, nil, []*core.Edge{e})
	if !errors.Is(err, core.ErrUnknownNode) {
		t.Fatalf("expected ErrUnknownNode, got %v", err)
	}
}

// ------------------------------------------------------------------------
// 2. Adjacency indexing
// ------------------------------------------------------------------------

func TestGraph_TwoWayIndexedBothDirections(t *testing.T) {
	g, a, b, c := twoRooms(t)

	if n := len(g.EdgesFrom(b)); n != 1 {
		t.Fatalf("EdgesFrom(B) = %d edges, want 1 (two-way reverse)", n)
	}
	if n := len(g.EdgesTo(a)); n != 1 {
		t.Fatalf("EdgesTo(A) = %d edges, want 1 (two-way reverse)", n)
	}
	// The one-way edge must not be traversable backwards.
	for _, e := range g.EdgesFrom(c) {
		if e.Kind == core.EdgeOneWay {
			t.Fatalf("one-way edge indexed as outgoing from its destination")
		}
	}
}

func TestGraph_IncomingGatesDeclaredOnly(t *testing.T) {
	g, a, b, _ := twoRooms(t)

	// A is the two-way edge's source: EdgesTo(A) sees the reverse
	// direction, IncomingGates(A) must not.
	if n := len(g.IncomingGates(a)); n != 0 {
		t.Fatalf("IncomingGates(A) = %d, want 0", n)
	}
	if n := len(g.IncomingGates(b)); n != 1 {
		t.Fatalf("IncomingGates(B) = %d, want 1", n)
	}
}

func TestGraph_AccessorsCopy(t *testing.T) {
	g, _, _, _ := twoRooms(t)
	nodes := g.Nodes()
	nodes[0] = nil
	if g.Nodes()[0] == nil {
		t.Fatal("Nodes() returned a shared slice")
	}
	if g.NodeCount() != 3 {
		t.Fatalf("NodeCount = %d, want 3", g.NodeCount())
	}
}

// ------------------------------------------------------------------------
// 3. Entity helpers
// ------------------------------------------------------------------------

func TestGroup_Covers(t *testing.T) {
	cases := []struct {
		item, key core.Group
		want      bool
	}{
		{0, 0, true},
		{1, 1, true},
		{2, 1, false},
		{3, 1, true},
		{3, 2, true},
		{7, 3, true},
		{1, 3, false},
		{5, 0, true},
	}
	for _, c := range cases {
		if got := c.item.Covers(c.key); got != c.want {
			t.Errorf("Group(%d).Covers(%d) = %t, want %t", c.item, c.key, got, c.want)
		}
	}
}

func TestEdge_InverseAndSourceSide(t *testing.T) {
	_, a, b, c := twoRooms(t)
	tw := &core.Edge{Kind: core.EdgeTwoWay, Source: a, Destination: b}
	ow := &core.Edge{Kind: core.EdgeOneWay, Source: a, Destination: c}

	if tw.Inverse(a) != b || tw.Inverse(b) != a {
		t.Fatal("Inverse must return the opposite endpoint")
	}
	if tw.Inverse(c) != nil {
		t.Fatal("Inverse of a non-endpoint must be nil")
	}
	if !tw.SourceSide(a) || !tw.SourceSide(b) {
		t.Fatal("both endpoints of a two-way edge are valid origins")
	}
	if !ow.SourceSide(a) || ow.SourceSide(c) {
		t.Fatal("a one-way edge is only traversable from its source")
	}
}

func TestEdge_KeyMultiplicityAndRequires(t *testing.T) {
	k := &core.Key{ID: 0, Kind: core.KeyConsumable, Quantity: 1, Label: "K"}
	other := &core.Key{ID: 1, Kind: core.KeyReusable, Quantity: 1, Label: "O"}
	n := &core.Node{ID: 0, Kind: core.NodeAnd, Label: "N"}
	e := &core.Edge{RequiredKeys: []*core.Key{k, k, other}, RequiredNodes: []*core.Node{n}}

	if got := e.KeyMultiplicity(k); got != 2 {
		t.Fatalf("KeyMultiplicity = %d, want 2", got)
	}
	if got := len(e.Requires()); got != 4 {
		t.Fatalf("Requires len = %d, want 4", got)
	}
}

func TestNode_IsItem(t *testing.T) {
	item := &core.Node{Kind: core.NodeItem}
	gate := &core.Node{Kind: core.NodeAnd}
	if !item.IsItem() || gate.IsItem() {
		t.Fatal("IsItem must hold exactly for Item nodes")
	}
}

func TestKindStrings(t *testing.T) {
	if core.NodeAnd.String() != "AndGate" || core.KeyRemovable.String() != "Removable" ||
		core.EdgeNoReturn.String() != "NoReturn" {
		t.Fatal("kind String() values drifted")
	}
}
