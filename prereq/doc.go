// Package prereq computes guaranteed requirements: the nodes that every
// path from the start to a target must visit and the reusable keys every
// such path must collect along the way.
//
// The result seeds new search segments. When a one-way or no-return
// transition opens a segment at some node, the engine marks the guaranteed
// requirements of that node as already satisfied — visited nodes and held
// keys — before expansion begins, so the search never re-places a key that
// any route into the segment is known to carry.
//
// The analysis runs in three passes over the graph and the current key
// placements:
//
//   - nodeReq(n): the intersection, over every edge that can enter n, of
//     the entering side's requirements plus the edge's own. Cyclic entries
//     contribute nothing. AndGate nodes take the union over their declared
//     incoming edges instead, mirroring their conjunctive opening rule.
//   - keyReq(k): the intersection over every item currently hosting k of
//     that item's requirements, with key requirements recursively expanded
//     through their own keyReq. Cycles yield the empty set.
//   - fold: node requirements of the target expanded through keyReq,
//     reduced to hard node requirements, reusable keys, and reusable keys
//     placed at items the target's paths must cross.
//
// The folded set under-approximates: a requirement it reports is satisfied
// on every route, but routes may satisfy more.
package prereq
