// Package state_test exercises snapshot transitions: copy-on-write
// isolation, item pickup, placements, segment fork/join accounting, and
// tracing.
package state_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/routefind/builder"
	"github.com/katalvlaran/routefind/core"
	"github.com/katalvlaran/routefind/state"
)

// world is the small fixture graph every test walks:
//
//	start ── I0 (empty slot, zone 0)
//	start ── R1 ── I1 (zone 1)
type world struct {
	g      *core.Graph
	start  *core.Node
	i0, i1 *core.Node
	r1     *core.Node
	k0, k1 *core.Key
}

func newWorld(t *testing.T) *world {
	t.Helper()
	b := builder.New()
	w := &world{}
	w.start = b.AndGate("start")
	w.k0 = b.ReusableKey("K0", 0)
	w.k1 = b.ConsumableKey("K1", 0)
	w.i0 = b.Item("I0", 0, w.start)
	w.r1 = b.OrGate("R1", w.start)
	w.i1 = b.Item("I1", 1, w.r1)

	g, err := b.Build()
	require.NoError(t, err)
	w.g = g
	return w
}

func (w *world) edgeTo(t *testing.T, n *core.Node) *core.Edge {
	t.Helper()
	for _, e := range w.g.Edges() {
		if e.Destination == n {
			return e
		}
	}
	t.Fatalf("no declared edge into %s", n)
	return nil
}

// ------------------------------------------------------------------------
// 1. Visiting and copy-on-write
// ------------------------------------------------------------------------

func TestVisitNode_CopyOnWrite(t *testing.T) {
	w := newWorld(t)
	root := state.New(w.g)

	s1, err := root.VisitNode(w.start)
	require.NoError(t, err)

	require.False(t, root.Visited(w.start), "receiver snapshot mutated")
	require.True(t, s1.Visited(w.start))
	require.True(t, s1.EverVisited(w.start))
	require.Len(t, s1.NextEdges(), 2, "both edges out of start must become pending")
}

func TestVisitNode_AlreadyVisitedIsIdentity(t *testing.T) {
	w := newWorld(t)
	s1, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)

	s2, err := s1.VisitNode(w.start)
	require.NoError(t, err)
	require.Same(t, s1, s2)
}

func TestVisitNode_Nil(t *testing.T) {
	w := newWorld(t)
	_, err := state.New(w.g).VisitNode(nil)
	require.ErrorIs(t, err, core.ErrNilNode)
}

func TestVisitNode_EmptyItemBecomesSpare(t *testing.T) {
	w := newWorld(t)
	s1, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)
	s2, err := s1.VisitNode(w.i0)
	require.NoError(t, err)

	require.Equal(t, []*core.Node{w.i0}, s2.SpareItems())
	require.Empty(t, s2.HeldKeys())
	// The item edge is now fully visited and must leave the pending set.
	require.Len(t, s2.NextEdges(), 1)
}

// ------------------------------------------------------------------------
// 2. Placements and key spending
// ------------------------------------------------------------------------

func TestPlaceKey_AddsTokenAndFillsSlot(t *testing.T) {
	w := newWorld(t)
	s, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)
	s, err = s.VisitNode(w.i0)
	require.NoError(t, err)

	placed, err := s.PlaceKey(w.i0, w.k0)
	require.NoError(t, err)

	require.Equal(t, 1, placed.KeyCount(w.k0))
	require.Empty(t, placed.SpareItems())
	require.Equal(t, []*core.Key{w.k0}, placed.PlacedKeys(w.i0))
	require.Equal(t, 1, placed.PlacementCount())

	// Receiver untouched.
	require.Zero(t, s.KeyCount(w.k0))
	require.Equal(t, []*core.Node{w.i0}, s.SpareItems())
}

func TestPlaceKey_GroupMismatch(t *testing.T) {
	b := builder.New()
	start := b.AndGate("start")
	narrow := b.Item("narrow", 1, start)
	wide := b.ReusableKey("wide", 2) // zone 2 not covered by zone 1
	g, err := b.Build()
	require.NoError(t, err)

	s, err := state.New(g).VisitNode(start)
	require.NoError(t, err)
	s, err = s.VisitNode(narrow)
	require.NoError(t, err)

	_, err = s.PlaceKey(narrow, wide)
	require.ErrorIs(t, err, state.ErrGroupMismatch)
}

func TestPlaceKey_NonSpareSlot(t *testing.T) {
	w := newWorld(t)
	s, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)

	_, err = s.PlaceKey(w.i0, w.k0) // i0 not visited yet
	require.ErrorIs(t, err, state.ErrInvariantViolation)
}

func TestUseKey_RemovesPendingAndDebits(t *testing.T) {
	w := newWorld(t)
	s, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)
	s, err = s.VisitNode(w.i0)
	require.NoError(t, err)
	s, err = s.PlaceKey(w.i0, w.k0)
	require.NoError(t, err)

	e := w.edgeTo(t, w.r1)
	opened, err := s.UseKey(e, []*core.Key{w.k0})
	require.NoError(t, err)
	require.Empty(t, opened.NextEdges())
	require.Zero(t, opened.KeyCount(w.k0))
	require.Equal(t, 1, s.KeyCount(w.k0), "receiver inventory mutated")
}

func TestUseKey_Errors(t *testing.T) {
	w := newWorld(t)
	s, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)

	_, err = s.UseKey(w.edgeTo(t, w.i1), nil) // never discovered
	require.ErrorIs(t, err, state.ErrInvariantViolation)

	_, err = s.UseKey(w.edgeTo(t, w.r1), []*core.Key{w.k0}) // token not held
	require.ErrorIs(t, err, state.ErrInvariantViolation)
}

// ------------------------------------------------------------------------
// 3. Deferred transitions
// ------------------------------------------------------------------------

func TestAddRemoveOneWay(t *testing.T) {
	w := newWorld(t)
	s := state.New(w.g)
	e := w.edgeTo(t, w.r1)

	s2 := s.AddOneWay(e)
	require.Empty(t, s.OneWayEdges())
	require.Equal(t, []*core.Edge{e}, s2.OneWayEdges())
	require.Same(t, s2, s2.AddOneWay(e), "re-adding must be identity")

	s3 := s2.RemoveOneWay(e)
	require.Empty(t, s3.OneWayEdges())
	require.Same(t, s3, s3.RemoveOneWay(e))
}

// ------------------------------------------------------------------------
// 4. Segments: clear, fork, join
// ------------------------------------------------------------------------

func TestClear_CarriesLedgerAndPlacements(t *testing.T) {
	w := newWorld(t)
	s, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)
	s, err = s.VisitNode(w.i0)
	require.NoError(t, err)
	s, err = s.PlaceKey(w.i0, w.k0)
	require.NoError(t, err)

	fresh := s.Clear(nil, []*core.Key{w.k1}, nil)
	require.Nil(t, fresh.Parent())
	require.False(t, fresh.Visited(w.start), "segment visited set must reset")
	require.True(t, fresh.EverVisited(w.start), "ever ledger must persist")
	require.Empty(t, fresh.SpareItems())
	require.Equal(t, []*core.Key{w.k0}, fresh.PlacedKeys(w.i0))
	require.Equal(t, 1, fresh.KeyCount(w.k1))
	require.Zero(t, fresh.KeyCount(w.k0))
}

func TestClear_RevisitedItemYieldsPlacedKey(t *testing.T) {
	w := newWorld(t)
	s, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)
	s, err = s.VisitNode(w.i0)
	require.NoError(t, err)
	s, err = s.PlaceKey(w.i0, w.k0)
	require.NoError(t, err)

	fresh := s.Clear(nil, nil, nil)
	fresh, err = fresh.VisitNode(w.start)
	require.NoError(t, err)
	fresh, err = fresh.VisitNode(w.i0)
	require.NoError(t, err)

	require.Equal(t, 1, fresh.KeyCount(w.k0), "filled slot must yield its key on revisit")
	require.Empty(t, fresh.SpareItems())
}

func TestForkJoin_SeedTokensNotDoubleCounted(t *testing.T) {
	w := newWorld(t)
	s, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)
	s, err = s.VisitNode(w.i0)
	require.NoError(t, err)
	s, err = s.PlaceKey(w.i0, w.k0)
	require.NoError(t, err)

	fork := s.Fork(nil, []*core.Key{w.k0}, nil)
	require.Same(t, s, fork.Parent())
	require.Equal(t, 1, fork.KeyCount(w.k0))

	fork, err = fork.VisitNode(w.r1)
	require.NoError(t, err)
	fork, err = fork.VisitNode(w.i1)
	require.NoError(t, err)
	fork, err = fork.PlaceKey(w.i1, w.k1)
	require.NoError(t, err)

	// Reaching a node the parent already visited merges the segments.
	merged, err := fork.VisitNode(w.start)
	require.NoError(t, err)
	require.Nil(t, merged.Parent(), "merged snapshot adopts the ancestor's parent")

	require.Equal(t, 1, merged.KeyCount(w.k0), "seeded token must not be re-counted")
	require.Equal(t, 1, merged.KeyCount(w.k1), "acquired token must survive the join")
	for _, n := range []*core.Node{w.start, w.i0, w.r1, w.i1} {
		require.True(t, merged.Visited(n), "%s lost in join", n)
	}
	require.Empty(t, merged.SpareItems())
	require.True(t, merged.AllNodesVisited())
}

func TestJoin_TargetOffChain(t *testing.T) {
	w := newWorld(t)
	a := state.New(w.g)
	b := state.New(w.g)
	_, err := a.Join(b)
	require.ErrorIs(t, err, state.ErrInvariantViolation)
}

// ------------------------------------------------------------------------
// 5. Tracing
// ------------------------------------------------------------------------

func TestTrace(t *testing.T) {
	w := newWorld(t)

	quiet, err := state.New(w.g).VisitNode(w.start)
	require.NoError(t, err)
	require.Empty(t, quiet.Trace())

	loud, err := state.New(w.g, state.WithTrace()).VisitNode(w.start)
	require.NoError(t, err)
	require.NotEmpty(t, loud.Trace())

	// Sibling snapshots must not share trace backing arrays.
	s1, err := loud.VisitNode(w.i0)
	require.NoError(t, err)
	s2, err := loud.VisitNode(w.r1)
	require.NoError(t, err)
	require.NotEqual(t, s1.Trace()[len(s1.Trace())-1], s2.Trace()[len(s2.Trace())-1])
}
