package finder

import (
	"math"
	"math/rand"
	"sort"

	"github.com/katalvlaran/routefind/core"
	"github.com/katalvlaran/routefind/prereq"
	"github.com/katalvlaran/routefind/state"
)

// placementAttempts bounds how many slot shuffles are tried per candidate
// edge before moving on. Greedy zone assignment is order-sensitive, so an
// attempt that fails on one shuffle may succeed on another.
const placementAttempts = 10

// fulfill is the search driver: expand to fixed point, open deferred
// one-way segments first, then speculatively place the keys missing on a
// pending edge and recurse. When the pending set empties, deferred
// no-return transitions are taken sequentially, threading state through.
//
// Placements that complete the run are validated by the route solver; a
// flagged softlock rejects the attempt. On a dead end the best partial
// snapshot (by placement count) is returned.
func (f *Finder) fulfill(s *state.State, depth int) (*state.State, error) {
	if err := f.opts.ctx.Err(); err != nil {
		return nil, err
	}
	if depth > f.opts.depthLimit {
		f.logf("depth limit %d reached", f.opts.depthLimit)
		return nil, &DepthLimitError{Limit: f.opts.depthLimit, Best: s}
	}

	s, err := f.expand(s)
	if err != nil {
		return nil, err
	}

	// One-way transitions fork before any speculative placement here:
	// the nested segment may rejoin and change what this one still needs.
	if e := pickByKind(f.rng, s.OneWayEdges(), core.EdgeOneWay); e != nil {
		ns, err := f.segment(s.RemoveOneWay(e), e.Destination, true, depth)
		if err != nil {
			return nil, err
		}
		return f.fulfill(ns, depth+1)
	}

	if len(s.NextEdges()) > 0 {
		return f.place(s, depth)
	}

	for {
		e := pickByKind(f.rng, s.OneWayEdges(), core.EdgeNoReturn)
		if e == nil {
			return s, nil
		}
		s, err = f.segment(s.RemoveOneWay(e), e.Destination, false, depth)
		if err != nil {
			return nil, err
		}
	}
}

// place tries the pending edges in rank order, speculatively assigning the
// keys each one is missing to spare item slots and recursing.
func (f *Finder) place(s *state.State, depth int) (*state.State, error) {
	best := s
	for _, e := range f.rankEdges(s) {
		required := f.missingKeys(s, e)
		if len(required) == 0 {
			continue
		}
		for attempt := 0; attempt < placementAttempts; attempt++ {
			child, ok, err := f.placeAndRecurse(s, required, depth)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
			if child.AllNodesVisited() {
				if res := f.solve(child); res&SolvePotentialSoftlock != 0 {
					f.logf("solver rejected placement for %s→%s (attempt %d)",
						e.Source, e.Destination, attempt)
					continue
				}
				return child, nil
			}
			if child.PlacementCount() > best.PlacementCount() {
				best = child
			}
		}
	}

	f.logf("dead end at depth %d: %d edges pending", depth, len(s.NextEdges()))
	if f.opts.deadEnd != nil {
		f.opts.deadEnd(best)
	}
	return best, nil
}

// placeAndRecurse assigns each required token to the first zone-compatible
// slot of a shuffled spare list, then recurses. ok=false means the shuffle
// ran out of compatible slots.
func (f *Finder) placeAndRecurse(s *state.State, required []*core.Key, depth int) (*state.State, bool, error) {
	slots := shuffledNodes(f.rng, s.SpareItems())
	used := make(map[int]bool, len(required))
	placed := s
	for _, k := range required {
		ok := false
		for _, slot := range slots {
			if used[slot.ID] || !slot.Group.Covers(k.Group) {
				continue
			}
			ns, err := placed.PlaceKey(slot, k)
			if err != nil {
				return nil, false, err
			}
			placed, ok = ns, true
			used[slot.ID] = true
			break
		}
		if !ok {
			return nil, false, nil
		}
	}

	child, err := f.fulfill(placed, depth+1)
	if err != nil {
		return nil, false, err
	}
	return child, true, nil
}

// segment opens a nested traversal at entry: guaranteed requirements seed
// the fresh snapshot, fork keeps a parent link for rejoin, clear severs it.
func (f *Finder) segment(s *state.State, entry *core.Node, fork bool, depth int) (*state.State, error) {
	seedNodes, seedKeys := prereq.SplitSeeds(prereq.Guaranteed(f.g, s, entry))

	// Seeding the entry itself would suppress its own edge discovery.
	nodes := seedNodes[:0:0]
	for _, n := range seedNodes {
		if n != entry {
			nodes = append(nodes, n)
		}
	}

	var ns *state.State
	if fork {
		ns = s.Fork(nodes, seedKeys, nil)
	} else {
		ns = s.Clear(nodes, seedKeys, nil)
	}
	f.logf("segment at %s (fork=%t, %d seed nodes, %d seed keys)",
		entry, fork, len(nodes), len(seedKeys))

	ns, err := ns.VisitNode(entry)
	if err != nil {
		return nil, err
	}
	return f.fulfill(ns, depth+1)
}

// rankEdges orders the pending edges for speculation: fewest already-placed
// reusable keys among their requirements first, ties shuffled. Edges whose
// reusable keys are still unplaced are the cheapest to unlock, since a
// fresh placement serves them outright.
func (f *Finder) rankEdges(s *state.State) []*core.Edge {
	edges := shuffledEdges(f.rng, s.NextEdges())
	score := func(e *core.Edge) int {
		n := 0
		for _, k := range distinctKeys(e) {
			if k.Kind == core.KeyReusable && placedAnywhere(s, k) {
				n++
			}
		}
		return n
	}
	sort.SliceStable(edges, func(i, j int) bool { return score(edges[i]) < score(edges[j]) })
	return edges
}

// missingKeys returns the tokens that must be placed before e can be
// satisfied, one slice entry per token. Consumable needs are augmented
// with the imminent needs of co-pending edges, so a pessimistic player
// spending tokens elsewhere first still has enough for e. An edge blocked
// on anything other than placeable keys yields nil.
func (f *Finder) missingKeys(s *state.State, e *core.Edge) []*core.Key {
	var out []*core.Key
	for _, k := range distinctKeys(e) {
		need := f.need(k, e)
		if need >= math.MaxInt32 {
			return nil
		}
		if k.Kind == core.KeyConsumable {
			need += f.imminentNeed(s, e, k)
		}
		for d := need - s.KeyCount(k); d > 0; d-- {
			out = append(out, k)
		}
	}
	return out
}

// imminentNeed sums the consumable need of k across the other pending
// edges whose node prerequisites are met: once k's tokens are in
// circulation a player may spend them on any of those edges first.
func (f *Finder) imminentNeed(s *state.State, except *core.Edge, k *core.Key) int {
	total := 0
	for _, e := range s.NextEdges() {
		if e == except || e.KeyMultiplicity(k) == 0 {
			continue
		}
		applicable := true
		for _, n := range e.RequiredNodes {
			if !s.Visited(n) {
				applicable = false
				break
			}
		}
		if applicable {
			total += f.need(k, e)
		}
	}
	return total
}

// placedAnywhere reports whether k has been placed at any item so far.
func placedAnywhere(s *state.State, k *core.Key) bool {
	for _, item := range s.ItemsWithKeys() {
		for _, pk := range s.PlacedKeys(item) {
			if pk == k {
				return true
			}
		}
	}
	return false
}

// pickByKind shuffles the deferred edges of one kind and returns the
// first, or nil when none are deferred.
func pickByKind(rng *rand.Rand, edges []*core.Edge, kind core.EdgeKind) *core.Edge {
	var subset []*core.Edge
	for _, e := range edges {
		if e.Kind == kind {
			subset = append(subset, e)
		}
	}
	if len(subset) == 0 {
		return nil
	}
	return shuffledEdges(rng, subset)[0]
}
