package prereq

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/routefind/core"
)

// Placements exposes the key placements accumulated by a search run.
// The search state satisfies it.
type Placements interface {
	// PlacedKeys returns the keys placed at an item node, or nil.
	PlacedKeys(item *core.Node) []*core.Key
}

// Requirement is one guaranteed fact about every route into a target:
// either a node that must already be visited or a reusable key that must
// already be held. Exactly one of Node and Key is non-nil.
type Requirement struct {
	Node *core.Node
	Key  *core.Key
}

// String returns "visit <label>" or "hold <label>" for traces and dumps.
func (r Requirement) String() string {
	if r.Node != nil {
		return fmt.Sprintf("visit %s", r.Node)
	}
	return fmt.Sprintf("hold %s", r.Key)
}

// Guaranteed computes the requirements every path from the graph's start to
// root must satisfy, given the current key placements: hard prerequisite
// nodes and reusable keys, ordered nodes-then-keys by ID. A nil placements
// treats every item as empty.
//
// Complexity: O(V·(V+E)) worst case; memoization makes typical graphs near
// linear.
func Guaranteed(g *core.Graph, placements Placements, root *core.Node) []Requirement {
	if g == nil || root == nil {
		return nil
	}
	a := &analyzer{
		g:        g,
		placed:   placements,
		nodeMemo: make(map[int]reqSet),
		nodeBusy: make(map[int]bool),
		keyMemo:  make(map[int]reqSet),
		keyBusy:  make(map[int]bool),
		hosts:    make(map[int][]*core.Node),
	}
	a.indexHosts()

	base, ok := a.nodeReq(root)
	if !ok {
		return nil
	}
	return a.fold(a.subst(base))
}

// SplitSeeds partitions requirements into the visited-node and held-key
// seeds a fresh search segment starts from.
func SplitSeeds(reqs []Requirement) ([]*core.Node, []*core.Key) {
	var (
		nodes []*core.Node
		keys  []*core.Key
	)
	for _, r := range reqs {
		if r.Node != nil {
			nodes = append(nodes, r.Node)
		} else {
			keys = append(keys, r.Key)
		}
	}
	return nodes, keys
}

// analyzer memoizes the per-node and per-key requirement sets of one
// Guaranteed call. Busy markers detect cycles during recursion.
type analyzer struct {
	g      *core.Graph
	placed Placements

	nodeMemo map[int]reqSet
	nodeBusy map[int]bool
	keyMemo  map[int]reqSet
	keyBusy  map[int]bool

	hosts map[int][]*core.Node // key ID → items currently hosting it
}

func (a *analyzer) indexHosts() {
	if a.placed == nil {
		return
	}
	for _, n := range a.g.Nodes() {
		if !n.IsItem() {
			continue
		}
		for _, k := range a.placed.PlacedKeys(n) {
			a.hosts[k.ID] = append(a.hosts[k.ID], n)
		}
	}
}

// nodeReq returns the requirement set of n, or ok=false when n is already
// being computed further up the recursion (a cyclic entry, which the caller
// skips).
//
// Ordinary nodes intersect over every edge that can enter them: any single
// entry suffices, so only requirements common to all entries are
// guaranteed. AndGate nodes instead union over their declared incoming
// edges, since opening one demands all of them at once. The start node
// requires nothing beyond itself.
func (a *analyzer) nodeReq(n *core.Node) (reqSet, bool) {
	if s, ok := a.nodeMemo[n.ID]; ok {
		return s, true
	}
	if a.nodeBusy[n.ID] {
		return nil, false
	}
	a.nodeBusy[n.ID] = true
	defer delete(a.nodeBusy, n.ID)

	var result reqSet
	switch {
	case n == a.g.Start():
		result = make(reqSet)

	case n.Kind == core.NodeAnd:
		result = make(reqSet)
		for _, e := range a.g.IncomingGates(n) {
			sub, ok := a.nodeReq(e.Source)
			if !ok {
				continue
			}
			result.union(sub)
			result.addEdge(e)
		}

	default:
		var branches []reqSet
		for _, e := range a.g.EdgesTo(n) {
			other := e.Inverse(n)
			sub, ok := a.nodeReq(other)
			if !ok {
				continue
			}
			branch := sub.clone()
			branch.addEdge(e)
			branches = append(branches, branch)
		}
		result = intersect(branches)
	}

	result.addNode(n, true)
	a.nodeMemo[n.ID] = result
	return result, true
}

// keyReq returns the requirements common to every item hosting k, with key
// requirements recursively substituted. A key hosted nowhere, or reached
// through its own recursion, yields the empty set.
func (a *analyzer) keyReq(k *core.Key) reqSet {
	if s, ok := a.keyMemo[k.ID]; ok {
		return s
	}
	if a.keyBusy[k.ID] {
		return make(reqSet)
	}
	a.keyBusy[k.ID] = true
	defer delete(a.keyBusy, k.ID)

	var branches []reqSet
	for _, item := range a.hosts[k.ID] {
		nr, ok := a.nodeReq(item)
		if !ok {
			continue
		}
		branches = append(branches, a.subst(nr))
	}

	result := make(reqSet)
	if len(branches) > 0 {
		result = intersect(branches)
	}
	a.keyMemo[k.ID] = result
	return result
}

// subst expands every key requirement in s through its keyReq, keeping the
// key itself: holding it proves its own requirements were once met.
func (a *analyzer) subst(s reqSet) reqSet {
	out := s.clone()
	for _, en := range s {
		if en.key != nil {
			out.union(a.keyReq(en.key))
		}
	}
	return out
}

// fold reduces a substituted requirement set to its guaranteed core: hard
// node requirements, reusable keys, and reusable keys placed at items the
// set proves every route crosses. Soft path markers and non-reusable keys
// drop out — consumable and removable tokens may have been spent.
func (a *analyzer) fold(s reqSet) []Requirement {
	out := make(reqSet)
	for _, en := range s {
		switch {
		case en.node != nil:
			if !en.soft {
				out.addNode(en.node, false)
			}
			if en.node.IsItem() && a.placed != nil {
				for _, pk := range a.placed.PlacedKeys(en.node) {
					if pk.Kind == core.KeyReusable {
						out.addKey(pk)
					}
				}
			}
		case en.key.Kind == core.KeyReusable:
			out.addKey(en.key)
		}
	}
	return out.sorted()
}

// entry is one requirement inside a reqSet. soft marks a node that lies on
// every path without being demanded by any edge; hard (edge-demanded)
// status wins when both are observed.
type entry struct {
	node *core.Node
	key  *core.Key
	soft bool
}

type setKey struct {
	key bool
	id  int
}

type reqSet map[setKey]entry

func (s reqSet) addNode(n *core.Node, soft bool) {
	k := setKey{id: n.ID}
	if prev, ok := s[k]; ok {
		soft = soft && prev.soft
	}
	s[k] = entry{node: n, soft: soft}
}

func (s reqSet) addKey(k *core.Key) {
	s[setKey{key: true, id: k.ID}] = entry{key: k}
}

func (s reqSet) addEdge(e *core.Edge) {
	for _, k := range e.RequiredKeys {
		s.addKey(k)
	}
	for _, n := range e.RequiredNodes {
		s.addNode(n, false)
	}
}

func (s reqSet) union(other reqSet) {
	for _, en := range other {
		if en.node != nil {
			s.addNode(en.node, en.soft)
		} else {
			s.addKey(en.key)
		}
	}
}

func (s reqSet) clone() reqSet {
	out := make(reqSet, len(s))
	for k, en := range s {
		out[k] = en
	}
	return out
}

// sorted returns the set as Requirements, nodes first then keys, each by
// ascending ID.
func (s reqSet) sorted() []Requirement {
	var (
		nodes []*core.Node
		keys  []*core.Key
	)
	for _, en := range s {
		if en.node != nil {
			nodes = append(nodes, en.node)
		} else {
			keys = append(keys, en.key)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
	sort.Slice(keys, func(i, j int) bool { return keys[i].ID < keys[j].ID })

	out := make([]Requirement, 0, len(nodes)+len(keys))
	for _, n := range nodes {
		out = append(out, Requirement{Node: n})
	}
	for _, k := range keys {
		out = append(out, Requirement{Key: k})
	}
	return out
}

// intersect keeps only requirements present in every branch. A node stays
// hard only when hard in all branches. Zero branches intersect to the
// empty set.
func intersect(branches []reqSet) reqSet {
	if len(branches) == 0 {
		return make(reqSet)
	}
	out := branches[0].clone()
	for _, b := range branches[1:] {
		for k, en := range out {
			other, ok := b[k]
			if !ok {
				delete(out, k)
				continue
			}
			if en.node != nil && other.soft && !en.soft {
				en.soft = true
				out[k] = en
			}
		}
	}
	return out
}
