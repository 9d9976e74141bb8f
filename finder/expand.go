package finder

import (
	"math"

	"github.com/katalvlaran/routefind/core"
	"github.com/katalvlaran/routefind/state"
)

// expand promotes pending edges until a full pass adds nothing: every edge
// whose requirements are met is taken, newly reached nodes enqueue their
// outgoing edges, and one-way/no-return transitions are deferred into the
// one-way set with their consumable cost debited up front.
//
// Requirements are re-checked against the current snapshot before every
// take, so two edges competing for the same consumable tokens can never
// overdraft the held set.
func (f *Finder) expand(s *state.State) (*state.State, error) {
	for {
		taken := false
		for _, e := range s.NextEdges() {
			if !f.satisfied(s, e) {
				continue
			}
			ns, err := f.takeEdge(s, e)
			if err != nil {
				return nil, err
			}
			s = ns
			taken = true
			break
		}
		if !taken {
			return s, nil
		}
	}
}

// satisfied reports whether a pending edge can be taken right now: exactly
// one endpoint visited in the current segment, direction traversable,
// required nodes visited, key tokens covering the edge's need, and — when
// the far endpoint is an AndGate — the whole gate openable at once.
func (f *Finder) satisfied(s *state.State, e *core.Edge) bool {
	entering := enteringNode(s, e)
	if entering == nil {
		return false
	}
	if entering == e.Source && e.Kind != core.EdgeTwoWay {
		return false
	}
	for _, n := range e.RequiredNodes {
		if !s.Visited(n) {
			return false
		}
	}
	for _, k := range distinctKeys(e) {
		if s.KeyCount(k) < f.need(k, e) {
			return false
		}
	}
	if entering.Kind == core.NodeAnd && !f.gateOpen(s, entering) {
		return false
	}
	return true
}

// takeEdge advances the snapshot across a satisfied edge.
//
// Forward one-way and no-return edges are not entered immediately: their
// consumable cost is debited and the edge is deferred for the driver,
// which decides when to open the nested segment. AndGate entries settle
// every pending incoming gate edge in one step, so each gate's consumables
// are debited exactly once.
func (f *Finder) takeEdge(s *state.State, e *core.Edge) (*state.State, error) {
	entering := enteringNode(s, e)

	if entering == e.Destination && e.Kind != core.EdgeTwoWay {
		ns, err := s.UseKey(e, consumedTokens(e))
		if err != nil {
			return nil, err
		}
		return ns.AddOneWay(e), nil
	}

	if entering.Kind == core.NodeAnd {
		ns := s
		var err error
		if e.Destination != entering {
			// reached from the far side of an edge leaving the gate
			if ns, err = ns.UseKey(e, consumedTokens(e)); err != nil {
				return nil, err
			}
		}
		for _, ge := range f.g.IncomingGates(entering) {
			if !edgePending(ns, ge) {
				continue
			}
			if ns, err = ns.UseKey(ge, consumedTokens(ge)); err != nil {
				return nil, err
			}
		}
		return ns.VisitNode(entering)
	}

	ns, err := s.UseKey(e, consumedTokens(e))
	if err != nil {
		return nil, err
	}
	return ns.VisitNode(entering)
}

// gateOpen reports whether every incoming gate edge of the AndGate n is
// satisfiable at once: all sources and required nodes visited, consumable
// needs summed across gates, other key needs taken at their maximum.
func (f *Finder) gateOpen(s *state.State, n *core.Node) bool {
	total := map[*core.Key]int{}
	for _, e := range f.g.IncomingGates(n) {
		if !s.Visited(e.Source) {
			return false
		}
		for _, rn := range e.RequiredNodes {
			if !s.Visited(rn) {
				return false
			}
		}
		for _, k := range distinctKeys(e) {
			need := f.need(k, e)
			if k.Kind == core.KeyConsumable {
				total[k] += need
			} else if need > total[k] {
				total[k] = need
			}
		}
	}
	for k, need := range total {
		if s.KeyCount(k) < need {
			return false
		}
	}
	return true
}

// need returns how many tokens of k must be held to satisfy e: one for
// reusable keys, the reference count scaled by quantity for consumables,
// and the minimum path multiplicity for removable keys.
func (f *Finder) need(k *core.Key, e *core.Edge) int {
	switch k.Kind {
	case core.KeyReusable:
		return 1
	case core.KeyConsumable:
		return e.KeyMultiplicity(k) * k.Quantity
	default:
		return f.minOccurrences(k, e.Destination)
	}
}

// minOccurrences computes the minimum total count of k across the edges of
// any path from start to target, scaled by the key's quantity. A target
// with no acyclic path from start yields math.MaxInt32, making the edge
// unsatisfiable.
//
// Results are memoized per Finder; they depend only on the graph.
func (f *Finder) minOccurrences(k *core.Key, target *core.Node) int {
	mk := minOccKey{key: k.ID, node: target.ID}
	if v, ok := f.minOcc[mk]; ok {
		return v
	}

	onPath := make(map[int]bool)
	var walk func(n *core.Node) (int, bool)
	walk = func(n *core.Node) (int, bool) {
		if n == f.g.Start() {
			return 0, true
		}
		if onPath[n.ID] {
			return 0, false
		}
		onPath[n.ID] = true
		defer delete(onPath, n.ID)

		best, found := 0, false
		for _, e := range f.g.EdgesTo(n) {
			c, ok := walk(e.Inverse(n))
			if !ok {
				continue
			}
			c += e.KeyMultiplicity(k) * k.Quantity
			if !found || c < best {
				best, found = c, true
			}
		}
		return best, found
	}

	v, ok := walk(target)
	if !ok {
		v = math.MaxInt32
	}
	f.minOcc[mk] = v
	return v
}

// enteringNode returns the endpoint of e the traversal would enter, or nil
// when both or neither endpoint is visited in the current segment.
func enteringNode(s *state.State, e *core.Edge) *core.Node {
	src, dst := s.Visited(e.Source), s.Visited(e.Destination)
	switch {
	case src && !dst:
		return e.Destination
	case dst && !src:
		return e.Source
	default:
		return nil
	}
}

// edgePending reports whether e is in the snapshot's pending set.
func edgePending(s *state.State, e *core.Edge) bool {
	for _, p := range s.NextEdges() {
		if p == e {
			return true
		}
	}
	return false
}

// consumedTokens returns the consumable tokens debited by taking e: each
// consumable reference spends its key's quantity.
func consumedTokens(e *core.Edge) []*core.Key {
	var out []*core.Key
	for _, k := range e.RequiredKeys {
		if k.Kind != core.KeyConsumable {
			continue
		}
		for i := 0; i < k.Quantity; i++ {
			out = append(out, k)
		}
	}
	return out
}

// distinctKeys returns the distinct required keys of e in first-reference
// order.
func distinctKeys(e *core.Edge) []*core.Key {
	var out []*core.Key
	seen := make(map[int]bool, len(e.RequiredKeys))
	for _, k := range e.RequiredKeys {
		if !seen[k.ID] {
			seen[k.ID] = true
			out = append(out, k)
		}
	}
	return out
}
