// Package builder provides fluent construction of route-finder graphs.
//
// A Builder accumulates nodes, keys, and edges and freezes them into an
// immutable core.Graph. The convenience surface mirrors how level layouts
// are described in practice:
//
//	b := builder.New()
//	k0 := b.ReusableKey("K0", 0)
//	r0 := b.AndGate("R0")                 // start: first AndGate with no incoming edges
//	b.Item("I0a", 0, r0)                  // item slot inside R0
//	r1 := b.AndGate("R1", r0, k0)         // door R0↔R1 locked behind K0
//	g, err := b.Build()
//
// Gate helpers accept mixed core.Ref requirement lists: every node
// reference becomes one incoming edge, every key reference attaches to each
// edge generated by that call. Explicit required-node gating and directed
// edge kinds go through the AddEdge primitive.
//
// Determinism: IDs are dense ordinals in insertion order, and the engine
// uses them as tiebreakers, so two builders issuing the same calls in the
// same order produce graphs the finder treats identically.
//
// Error policy: helper methods never fail mid-construction; the first
// invalid call is recorded and surfaced by Build as a sentinel error.
package builder
