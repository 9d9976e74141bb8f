package state

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/routefind/core"
	"github.com/katalvlaran/routefind/multiset"
)

// State is one immutable snapshot of search progress. All transition
// methods return a new snapshot; the receiver is never modified.
type State struct {
	g *core.Graph

	visited map[int]*core.Node // nodes reachable in the current segment
	ever    map[int]struct{}   // nodes visited in any segment of the run
	keys    *multiset.Multiset[*core.Key]
	seeded  *multiset.Multiset[*core.Key] // tokens granted at Clear/Fork, not acquired
	next    map[int]*core.Edge            // known but unsatisfied edges
	oneWay  map[int]*core.Edge            // deferred one-way / no-return edges
	spare   map[int]*core.Node            // visited items without placements
	placed  map[int][]*core.Key           // item node ID → keys, placement order

	parent *State

	tracing bool
	trace   []string
}

// New returns an empty root snapshot over g.
func New(g *core.Graph, opts ...Option) *State {
	s := &State{
		g:       g,
		visited: map[int]*core.Node{},
		ever:    map[int]struct{}{},
		keys:    multiset.New[*core.Key](),
		seeded:  multiset.New[*core.Key](),
		next:    map[int]*core.Edge{},
		oneWay:  map[int]*core.Edge{},
		spare:   map[int]*core.Node{},
		placed:  map[int][]*core.Key{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clear resets to a fresh segment with no parent, seeded with the given
// guaranteed nodes and key tokens. Placements, deferred one-way edges, and
// the ever-visited ledger are carried over from the receiver; spare items
// are not.
func (s *State) Clear(visited []*core.Node, keys []*core.Key, next []*core.Edge) *State {
	ns := s.reseed(visited, keys, next)
	ns.parent = nil
	ns.logf("segment: clear (%d seed nodes, %d seed keys)", len(visited), len(keys))
	return ns
}

// Fork is Clear with the receiver recorded as parent, so the nested
// segment may rejoin it through VisitNode.
func (s *State) Fork(visited []*core.Node, keys []*core.Key, next []*core.Edge) *State {
	ns := s.reseed(visited, keys, next)
	ns.parent = s
	ns.logf("segment: fork (%d seed nodes, %d seed keys)", len(visited), len(keys))
	return ns
}

// VisitNode marks n reachable in the current segment.
//
// If n was already visited by an ancestor segment, the snapshot chain is
// merged back into that ancestor (Join) instead. Otherwise n joins the
// visited set; item nodes either pick up their placed keys or become spare
// slots; and every traversable edge out of n that is not already fully
// visited joins the pending set.
func (s *State) VisitNode(n *core.Node) (*State, error) {
	if n == nil {
		return nil, core.ErrNilNode
	}
	if _, ok := s.visited[n.ID]; ok {
		return s, nil
	}
	for p := s.parent; p != nil; p = p.parent {
		if _, ok := p.visited[n.ID]; ok {
			return s.Join(p)
		}
	}

	ns := s.shallow()
	ns.visited = cloneNodes(s.visited)
	ns.visited[n.ID] = n
	ns.ever = cloneSet(s.ever)
	ns.ever[n.ID] = struct{}{}

	if n.IsItem() {
		if ks := s.placed[n.ID]; len(ks) > 0 {
			ns.keys = s.keys.Clone()
			ns.keys.AddRange(ks)
		} else {
			ns.spare = cloneNodes(s.spare)
			ns.spare[n.ID] = n
		}
	}

	ns.next = cloneEdges(s.next)
	for _, e := range s.g.EdgesFrom(n) {
		if !ns.fullyVisited(e) {
			ns.next[e.ID] = e
		}
	}
	for id, e := range ns.next {
		if ns.fullyVisited(e) {
			delete(ns.next, id)
		}
	}

	ns.logf("visit %s", n)
	return ns, nil
}

// PlaceKey assigns key to the spare item slot, adds the token to the held
// set, and removes the slot from the spare set.
//
// Errors: ErrGroupMismatch for zone-incompatible placements,
// ErrInvariantViolation when item is not a spare slot.
func (s *State) PlaceKey(item *core.Node, key *core.Key) (*State, error) {
	if item == nil || key == nil {
		return nil, core.ErrNilNode
	}
	if !item.Group.Covers(key.Group) {
		return nil, fmt.Errorf("place %s at %s: %w", key, item, ErrGroupMismatch)
	}
	if _, ok := s.spare[item.ID]; !ok {
		return nil, fmt.Errorf("place %s at non-spare %s: %w", key, item, ErrInvariantViolation)
	}

	ns := s.shallow()
	ns.spare = cloneNodes(s.spare)
	delete(ns.spare, item.ID)
	ns.placed = clonePlaced(s.placed)
	ns.placed[item.ID] = append(append([]*core.Key(nil), s.placed[item.ID]...), key)
	ns.keys = s.keys.Clone()
	ns.keys.Add(key)

	ns.logf("place %s at %s", key, item)
	return ns, nil
}

// UseKey removes edge from the pending set and debits each consumed token
// from the held set.
//
// Errors: ErrInvariantViolation when edge is not pending or a consumed
// token is not held.
func (s *State) UseKey(edge *core.Edge, consumed []*core.Key) (*State, error) {
	if _, ok := s.next[edge.ID]; !ok {
		return nil, fmt.Errorf("use edge e%d not pending: %w", edge.ID, ErrInvariantViolation)
	}

	ns := s.shallow()
	ns.next = cloneEdges(s.next)
	delete(ns.next, edge.ID)
	if len(consumed) > 0 {
		ns.keys = s.keys.Clone()
		for _, k := range consumed {
			if !ns.keys.Remove(k) {
				return nil, fmt.Errorf("consume %s not held: %w", k, ErrInvariantViolation)
			}
		}
	}

	ns.logf("open %s→%s", edge.Source, edge.Destination)
	return ns, nil
}

// AddOneWay defers a one-way or no-return edge for the driver to take
// later.
func (s *State) AddOneWay(e *core.Edge) *State {
	if _, ok := s.oneWay[e.ID]; ok {
		return s
	}
	ns := s.shallow()
	ns.oneWay = cloneEdges(s.oneWay)
	ns.oneWay[e.ID] = e
	ns.logf("defer %s %s→%s", e.Kind, e.Source, e.Destination)
	return ns
}

// RemoveOneWay removes a deferred edge.
func (s *State) RemoveOneWay(e *core.Edge) *State {
	if _, ok := s.oneWay[e.ID]; !ok {
		return s
	}
	ns := s.shallow()
	ns.oneWay = cloneEdges(s.oneWay)
	delete(ns.oneWay, e.ID)
	return ns
}

// Join merges the snapshot chain from the receiver up into ancestor:
// visited sets union, acquired key tokens (net of segment seeds) are added
// to the ancestor's inventory, spare slots union, pending edges union with
// fully-visited pruning, and the merged snapshot adopts the ancestor's
// parent. Placements, deferred edges, and the ever-visited ledger come
// from the receiver, which carries the latest copies.
//
// Errors: ErrInvariantViolation when ancestor is not on the parent chain.
func (s *State) Join(ancestor *State) (*State, error) {
	var chain []*State
	found := false
	for p := s; p != nil; p = p.parent {
		if p == ancestor {
			found = true
			break
		}
		chain = append(chain, p)
	}
	if !found {
		return nil, fmt.Errorf("join target not on parent chain: %w", ErrInvariantViolation)
	}

	merged := ancestor.shallow()
	merged.parent = ancestor.parent
	merged.ever = s.ever
	merged.placed = s.placed
	merged.oneWay = s.oneWay

	merged.visited = cloneNodes(ancestor.visited)
	merged.spare = cloneNodes(ancestor.spare)
	merged.keys = ancestor.keys.Clone()
	merged.next = cloneEdges(ancestor.next)
	for _, link := range chain {
		for id, n := range link.visited {
			merged.visited[id] = n
		}
		for id, n := range link.spare {
			merged.spare[id] = n
		}
		for _, k := range link.keys.Distinct() {
			if delta := link.keys.Count(k) - link.seeded.Count(k); delta > 0 {
				merged.keys.AddN(k, delta)
			}
		}
		for id, e := range link.next {
			merged.next[id] = e
		}
	}
	for id := range merged.spare {
		if len(merged.placed[id]) > 0 {
			delete(merged.spare, id)
		}
	}
	for id, e := range merged.next {
		if merged.fullyVisited(e) {
			delete(merged.next, id)
		}
	}

	merged.tracing = s.tracing
	merged.trace = s.trace
	merged.logf("join (%d segments merged)", len(chain))
	return merged, nil
}

// ----------------------------------------------------------------------------
// Accessors
// ----------------------------------------------------------------------------

// Graph returns the graph this snapshot searches over.
func (s *State) Graph() *core.Graph { return s.g }

// Parent returns the enclosing segment snapshot, or nil.
func (s *State) Parent() *State { return s.parent }

// Visited reports whether n is reachable in the current segment.
func (s *State) Visited(n *core.Node) bool {
	_, ok := s.visited[n.ID]
	return ok
}

// VisitedNodes returns the current segment's visited nodes in ID order.
func (s *State) VisitedNodes() []*core.Node { return sortedNodes(s.visited) }

// EverVisited reports whether n was visited in any segment of the run.
func (s *State) EverVisited(n *core.Node) bool {
	_, ok := s.ever[n.ID]
	return ok
}

// AllNodesVisited reports whether every node of the graph was visited in
// some segment of the run.
func (s *State) AllNodesVisited() bool { return len(s.ever) == s.g.NodeCount() }

// KeyCount returns the number of held tokens of k.
func (s *State) KeyCount(k *core.Key) int { return s.keys.Count(k) }

// HeldKeys returns the distinct held keys in ID order.
func (s *State) HeldKeys() []*core.Key {
	out := s.keys.Distinct()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NextEdges returns the pending edges in ID order.
func (s *State) NextEdges() []*core.Edge { return sortedEdges(s.next) }

// OneWayEdges returns the deferred one-way and no-return edges in ID order.
func (s *State) OneWayEdges() []*core.Edge { return sortedEdges(s.oneWay) }

// SpareItems returns the visited, still-empty item slots in ID order.
func (s *State) SpareItems() []*core.Node { return sortedNodes(s.spare) }

// PlacedKeys returns the keys placed at item, in placement order.
func (s *State) PlacedKeys(item *core.Node) []*core.Key {
	if item == nil {
		return nil
	}
	return append([]*core.Key(nil), s.placed[item.ID]...)
}

// ItemsWithKeys returns the item nodes that host at least one placement,
// in ID order.
func (s *State) ItemsWithKeys() []*core.Node {
	var ids []int
	for id, ks := range s.placed {
		if len(ks) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	out := make([]*core.Node, 0, len(ids))
	for _, id := range ids {
		for _, n := range s.g.Nodes() {
			if n.ID == id {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// PlacementCount returns the total number of (item, key) placements.
func (s *State) PlacementCount() int {
	total := 0
	for _, ks := range s.placed {
		total += len(ks)
	}
	return total
}

// Trace returns a copy of the debug trace; empty unless WithTrace was set.
func (s *State) Trace() []string { return append([]string(nil), s.trace...) }

// ----------------------------------------------------------------------------
// Internals
// ----------------------------------------------------------------------------

// reseed builds a fresh-segment snapshot: new visited/keys/next from the
// seeds, empty spares, shared placements / deferred edges / ever ledger.
func (s *State) reseed(visited []*core.Node, keys []*core.Key, next []*core.Edge) *State {
	ns := s.shallow()
	ns.visited = make(map[int]*core.Node, len(visited))
	for _, n := range visited {
		ns.visited[n.ID] = n
	}
	ns.keys = multiset.FromSlice(keys)
	ns.seeded = ns.keys.Clone()
	ns.next = make(map[int]*core.Edge, len(next))
	for _, e := range next {
		ns.next[e.ID] = e
	}
	ns.spare = map[int]*core.Node{}
	return ns
}

// shallow copies the snapshot struct; the containers stay shared until a
// mutator clones them.
func (s *State) shallow() *State {
	ns := *s
	return &ns
}

func (s *State) fullyVisited(e *core.Edge) bool {
	_, src := s.visited[e.Source.ID]
	_, dst := s.visited[e.Destination.ID]
	return src && dst
}

// logf appends to the trace by copy, so sibling snapshots never share
// trace backing arrays. No-op unless tracing is on.
func (s *State) logf(format string, args ...interface{}) {
	if !s.tracing {
		return
	}
	s.trace = append(append([]string(nil), s.trace...), fmt.Sprintf(format, args...))
}

func cloneNodes(m map[int]*core.Node) map[int]*core.Node {
	c := make(map[int]*core.Node, len(m))
	for id, n := range m {
		c[id] = n
	}
	return c
}

func cloneEdges(m map[int]*core.Edge) map[int]*core.Edge {
	c := make(map[int]*core.Edge, len(m))
	for id, e := range m {
		c[id] = e
	}
	return c
}

func cloneSet(m map[int]struct{}) map[int]struct{} {
	c := make(map[int]struct{}, len(m))
	for id := range m {
		c[id] = struct{}{}
	}
	return c
}

func clonePlaced(m map[int][]*core.Key) map[int][]*core.Key {
	c := make(map[int][]*core.Key, len(m))
	for id, ks := range m {
		c[id] = ks
	}
	return c
}

func sortedNodes(m map[int]*core.Node) []*core.Node {
	out := make([]*core.Node, 0, len(m))
	for _, n := range m {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func sortedEdges(m map[int]*core.Edge) []*core.Edge {
	out := make([]*core.Edge, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
