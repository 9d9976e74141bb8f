// Package finder implements the randomization engine: given an immutable
// core.Graph, it places every key into item slots so that a player starting
// at the graph's start node can visit all nodes without softlocking, and
// returns the resulting Route.
//
// The search is a backtracking recursion over persistent state snapshots:
//
//   - expansion promotes every pending edge whose requirements are met,
//     discovering newly reachable nodes and deferring one-way and no-return
//     transitions;
//   - at each fixed point the driver picks a locked edge, places the keys
//     it is missing into spare item slots, and recurses;
//   - one-way transitions fork nested segments that may rejoin their
//     parent; no-return transitions start fresh segments seeded with the
//     guaranteed requirements of their entry node;
//   - complete placements are validated by a route solver that simulates a
//     pessimistic player and rejects assignments with a reachable
//     softlock.
//
// All randomness flows from the single seed passed to New; equal seeds on
// equal graphs produce identical routes. A Finder is not safe for
// concurrent use, but distinct Finders may share one graph.
package finder
