package finder

import (
	"github.com/katalvlaran/routefind/core"
	"github.com/katalvlaran/routefind/state"
)

// Route is the read-only outcome of one search: the key placements plus
// the final traversal snapshot they were derived from.
type Route struct {
	finder *Finder
	final  *state.State
}

// AllNodesVisited reports whether the search reached every node of the
// graph across all segments. False means the route is partial; callers
// decide severity.
func (r *Route) AllNodesVisited() bool { return r.final.AllNodesVisited() }

// Graph returns the graph the route was found on.
func (r *Route) Graph() *core.Graph { return r.finder.g }

// ItemContents returns the key placed at item, or nil for an empty slot.
// When a slot hosts several keys across segments, the principal (first)
// placement is returned; ItemsContainingKey sees them all.
func (r *Route) ItemContents(item *core.Node) *core.Key {
	ks := r.final.PlacedKeys(item)
	if len(ks) == 0 {
		return nil
	}
	return ks[0]
}

// ItemsContainingKey returns every item node holding k, in ID order. A
// key re-placed across no-return segments appears at each of its hosts.
func (r *Route) ItemsContainingKey(k *core.Key) []*core.Node {
	var out []*core.Node
	for _, item := range r.final.ItemsWithKeys() {
		for _, pk := range r.final.PlacedKeys(item) {
			if pk == k {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

// PlacementCount returns the total number of key placements.
func (r *Route) PlacementCount() int { return r.final.PlacementCount() }

// Solve re-validates the route's placements against a pessimistic player
// and returns the result bitmask.
func (r *Route) Solve() SolveResult { return r.finder.solve(r.final) }

// State exposes the final search snapshot for inspection and debugging.
func (r *Route) State() *state.State { return r.final }

// Trace returns the search trace, or nil unless the finder was built
// WithTrace.
func (r *Route) Trace() []string { return r.final.Trace() }
