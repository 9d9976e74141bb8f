package finder

import (
	"sort"
	"strings"

	"github.com/mitchellh/hashstructure"

	"github.com/katalvlaran/routefind/core"
	"github.com/katalvlaran/routefind/state"
)

// SolveResult is the bitmask returned by route validation.
type SolveResult uint32

// SolveOk means no pessimistic choice sequence softlocks the route.
const SolveOk SolveResult = 0

const (
	// SolvePotentialSoftlock means some order of key spending or
	// irreversible transitions strands the player with nodes unvisited.
	SolvePotentialSoftlock SolveResult = 1 << iota

	// SolveBudgetExhausted means the simulation hit its state budget
	// before exploring every choice sequence; absence of the softlock bit
	// is then not a proof.
	SolveBudgetExhausted
)

// String renders the bitmask for diagnostics, e.g. "PotentialSoftlock".
func (r SolveResult) String() string {
	if r == SolveOk {
		return "Ok"
	}
	var parts []string
	if r&SolvePotentialSoftlock != 0 {
		parts = append(parts, "PotentialSoftlock")
	}
	if r&SolveBudgetExhausted != 0 {
		parts = append(parts, "BudgetExhausted")
	}
	return strings.Join(parts, "|")
}

// solve validates the placements of a snapshot by simulating a pessimistic
// player from the start node: the player freely collects everything
// reachable without cost, but may spend consumable tokens and take
// irreversible transitions in any order. The route softlocks if any such
// order reaches a state with no moves left and nodes unvisited.
func (f *Finder) solve(s *state.State) SolveResult {
	sv := &solver{
		f:      f,
		g:      f.g,
		placed: make(map[int][]*core.Key),
		budget: f.opts.solverBudget,
		memo:   make(map[uint64]bool),
	}
	for _, item := range s.ItemsWithKeys() {
		sv.placed[item.ID] = s.PlacedKeys(item)
	}

	start := &simState{
		pos:    f.g.Start(),
		tokens: map[int]int{},
		opened: map[int]bool{},
		taken:  map[int]bool{},
		ever:   map[int]bool{},
	}
	if sv.explore(start) {
		sv.result |= SolvePotentialSoftlock
	}
	return sv.result
}

// solver is the scratch space of one validation run.
type solver struct {
	f      *Finder
	g      *core.Graph
	placed map[int][]*core.Key // item node ID → keys, from the snapshot
	budget int
	memo   map[uint64]bool // state hash → softlock reachable
	result SolveResult
}

// simState is one simulated player configuration. The reachable closure is
// derived from pos on demand; tokens, opened edges, collected items, and
// the ever-visited ledger persist across moves.
type simState struct {
	pos    *core.Node
	tokens map[int]int  // key ID → held count
	opened map[int]bool // edge ID → consumable cost paid, permanently open
	taken  map[int]bool // item node ID → contents collected
	ever   map[int]bool // node ID → visited at some point
}

func (st *simState) clone() *simState {
	ns := &simState{
		pos:    st.pos,
		tokens: make(map[int]int, len(st.tokens)),
		opened: make(map[int]bool, len(st.opened)),
		taken:  make(map[int]bool, len(st.taken)),
		ever:   make(map[int]bool, len(st.ever)),
	}
	for k, v := range st.tokens {
		ns.tokens[k] = v
	}
	for k := range st.opened {
		ns.opened[k] = true
	}
	for k := range st.taken {
		ns.taken[k] = true
	}
	for k := range st.ever {
		ns.ever[k] = true
	}
	return ns
}

// explore reports whether a softlock is reachable from st. Equivalent
// configurations are deduplicated through a structural hash; re-entering a
// configuration currently on the recursion stack contributes nothing.
func (sv *solver) explore(st *simState) bool {
	reach := sv.closure(st)

	key, hashed := sv.hashState(st, reach)
	if hashed {
		if v, seen := sv.memo[key]; seen {
			return v
		}
		sv.memo[key] = false
	}

	sv.budget--
	if sv.budget < 0 {
		sv.result |= SolveBudgetExhausted
		return false
	}

	moves := sv.choices(st, reach)
	if len(moves) == 0 {
		stuck := len(st.ever) < sv.g.NodeCount()
		if hashed {
			sv.memo[key] = stuck
		}
		return stuck
	}

	found := false
	for _, c := range moves {
		if sv.explore(sv.apply(st, c)) {
			found = true
			break
		}
	}
	if hashed {
		sv.memo[key] = found
	}
	return found
}

// closure grows the set of nodes freely reachable from st.pos over opened
// and cost-free two-way edges, collecting the contents of every item it
// reaches. Collected keys can unlock further free edges, so the walk
// repeats until stable. st's tokens, taken set, and ever ledger are
// updated in place.
func (sv *solver) closure(st *simState) map[int]bool {
	reach := map[int]bool{st.pos.ID: true}
	st.ever[st.pos.ID] = true

	for {
		for grown := true; grown; {
			grown = false
			for _, e := range sv.g.Edges() {
				if e.Kind != core.EdgeTwoWay || !sv.openOrFree(st, reach, e) {
					continue
				}
				if reach[e.Source.ID] && !reach[e.Destination.ID] && sv.enterable(st, reach, e.Destination) {
					reach[e.Destination.ID] = true
					st.ever[e.Destination.ID] = true
					grown = true
				}
				if reach[e.Destination.ID] && !reach[e.Source.ID] && sv.enterable(st, reach, e.Source) {
					reach[e.Source.ID] = true
					st.ever[e.Source.ID] = true
					grown = true
				}
			}
		}

		collected := false
		for _, n := range sv.g.Nodes() {
			if !reach[n.ID] || !n.IsItem() || st.taken[n.ID] {
				continue
			}
			st.taken[n.ID] = true
			for _, k := range sv.placed[n.ID] {
				st.tokens[k.ID]++
				collected = true
			}
		}
		if !collected {
			return reach
		}
	}
}

// openOrFree reports whether e is traversable without a deliberate spend:
// already opened, or costing no consumables with its node and key
// requirements met.
func (sv *solver) openOrFree(st *simState, reach map[int]bool, e *core.Edge) bool {
	if st.opened[e.ID] {
		return true
	}
	if len(consumableCost(e)) > 0 {
		return false
	}
	return sv.requirementsMet(st, reach, e)
}

// requirementsMet checks e's required nodes against the ever-visited
// ledger and its non-consumable key needs against held tokens.
func (sv *solver) requirementsMet(st *simState, reach map[int]bool, e *core.Edge) bool {
	for _, n := range e.RequiredNodes {
		if !st.ever[n.ID] && !reach[n.ID] {
			return false
		}
	}
	for _, k := range distinctKeys(e) {
		if k.Kind == core.KeyConsumable {
			continue
		}
		if st.tokens[k.ID] < sv.f.need(k, e) {
			return false
		}
	}
	return true
}

// enterable applies the node-entry rule: AndGate nodes open only when
// every declared incoming edge is opened or free and its source side has
// been reached; every other kind enters through any single edge.
func (sv *solver) enterable(st *simState, reach map[int]bool, n *core.Node) bool {
	if n.Kind != core.NodeAnd {
		return true
	}
	return sv.gatesReady(st, reach, n, nil)
}

// gatesReady checks every incoming gate of n, treating assume (if non-nil)
// as already opened.
func (sv *solver) gatesReady(st *simState, reach map[int]bool, n *core.Node, assume *core.Edge) bool {
	for _, ge := range sv.g.IncomingGates(n) {
		if !st.ever[ge.Source.ID] && !reach[ge.Source.ID] {
			return false
		}
		if ge == assume || sv.openOrFree(st, reach, ge) {
			continue
		}
		return false
	}
	return true
}

// choice is one deliberate player move: opening a locked edge, and for
// one-way and no-return edges also committing the player to its far side.
type choice struct {
	edge *core.Edge
	move bool
}

// choices enumerates the moves available from the current closure: paying
// consumables to open a two-way edge, and traversing any one-way or
// no-return edge out of the closure.
func (sv *solver) choices(st *simState, reach map[int]bool) []choice {
	var out []choice
	for _, e := range sv.g.Edges() {
		cost := consumableCost(e)

		if e.Kind == core.EdgeTwoWay {
			if st.opened[e.ID] || len(cost) == 0 {
				continue // closure already walks free edges
			}
			spanning := (reach[e.Source.ID] && !reach[e.Destination.ID]) ||
				(reach[e.Destination.ID] && !reach[e.Source.ID])
			if !spanning {
				continue
			}
			if !sv.requirementsMet(st, reach, e) || !sv.affordable(st, cost) {
				continue
			}
			out = append(out, choice{edge: e})
			continue
		}

		if !reach[e.Source.ID] || reach[e.Destination.ID] {
			continue
		}
		if !st.opened[e.ID] {
			if !sv.requirementsMet(st, reach, e) || !sv.affordable(st, cost) {
				continue
			}
		}
		if e.Destination.Kind == core.NodeAnd && !sv.gatesReady(st, reach, e.Destination, e) {
			continue
		}
		out = append(out, choice{edge: e, move: true})
	}
	return out
}

func (sv *solver) affordable(st *simState, cost map[*core.Key]int) bool {
	for k, c := range cost {
		if st.tokens[k.ID] < c {
			return false
		}
	}
	return true
}

// apply executes a choice on a copy of st.
func (sv *solver) apply(st *simState, c choice) *simState {
	ns := st.clone()
	if !ns.opened[c.edge.ID] {
		for k, cost := range consumableCost(c.edge) {
			ns.tokens[k.ID] -= cost
		}
		ns.opened[c.edge.ID] = true
	}
	if c.move {
		ns.pos = c.edge.Destination
	}
	return ns
}

// hashState produces a structural hash of the player configuration.
// hashed=false disables memoization for this state; exploration still
// terminates through the budget.
func (sv *solver) hashState(st *simState, reach map[int]bool) (uint64, bool) {
	type snapshot struct {
		Reach  []int
		Tokens [][2]int
		Opened []int
		Ever   []int
	}
	snap := snapshot{
		Reach:  sortedIDs(reach),
		Opened: sortedIDs(st.opened),
		Ever:   sortedIDs(st.ever),
	}
	for id, c := range st.tokens {
		if c > 0 {
			snap.Tokens = append(snap.Tokens, [2]int{id, c})
		}
	}
	sort.Slice(snap.Tokens, func(i, j int) bool { return snap.Tokens[i][0] < snap.Tokens[j][0] })

	h, err := hashstructure.Hash(snap, nil)
	if err != nil {
		return 0, false
	}
	return h, true
}

// consumableCost returns the tokens spent by opening e, per consumable
// key: each reference costs the key's quantity.
func consumableCost(e *core.Edge) map[*core.Key]int {
	var cost map[*core.Key]int
	for _, k := range e.RequiredKeys {
		if k.Kind != core.KeyConsumable {
			continue
		}
		if cost == nil {
			cost = make(map[*core.Key]int)
		}
		cost[k] += k.Quantity
	}
	return cost
}

func sortedIDs(m map[int]bool) []int {
	out := make([]int, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
