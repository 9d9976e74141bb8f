// Package core defines the central Graph, Node, Key, and Edge types for the
// route finder, and provides immutable adjacency queries over them.
//
// A core.Graph is a directed graph of rooms (nodes) connected by doors
// (edges). Doors may be locked behind keys, and item nodes are the slots the
// randomizer places keys into. Unlike a general-purpose graph, every entity
// carries randomizer semantics:
//
//   - Node kinds: AndGate (all incoming edges must be satisfied), OrGate
//     (any single incoming edge suffices), Item (may host key placements),
//     OneWay and NoReturn (entry points of irreversible transitions).
//   - Key kinds: Reusable (owning one token covers every requirement),
//     Consumable (a token is spent per unlocking), Removable (required in
//     count equal to the minimum multiplicity on any path to the gate).
//   - Edge kinds: TwoWay (traversable in either direction once opened),
//     OneWay (destination becomes reachable through a forked segment),
//     NoReturn (destination starts a fresh segment; the source side is
//     permanently lost).
//
// Zones: nodes and keys carry a Group bitmask. A key may only be placed at
// an item whose group bits cover the key's bits (Group.Covers).
//
// Graphs are constructed once — normally through the builder package — and
// never mutated afterwards. This makes a Graph safe to share between
// concurrent searches run by distinct finder instances.
//
// Errors:
//
//	ErrNilNode        - nil node handed to a constructor or query.
//	ErrNoStart        - graph has no start node.
//	ErrUnknownNode    - an edge references a node the graph does not own.
//	ErrEdgeEndpoints  - edge with a missing source or destination.
package core
