// Package routefind is a randomization engine for lock-and-key graphs:
// given a directed graph of rooms, locked doors, and item slots, it places
// keys into slots so that every reachable node can be visited without a
// softlock, and returns the concrete, provably solvable route.
//
// 🚀 What is routefind?
//
//	A deterministic, seed-driven library that brings together:
//		• Core primitives: nodes, keys, and locked edges with zone bitmasks
//		• Builder: fluent construction of room graphs for tests and tools
//		• Persistent state: copy-on-write search snapshots with fork/join
//		• Requirement analysis: guaranteed prerequisites from graph topology
//		• Search driver: backtracking key placement with soft-lock validation
//		• Route solver: pessimistic-player simulation of the final layout
//
// ✨ Why choose routefind?
//
//   - Deterministic – every run is a pure function of the graph and the seed
//   - Rock-solid guarantees – sentinel errors, no panics, in-code docs
//   - Extensible – dead-end hooks and structured logging for diagnostics
//
// Under the hood, everything is organized under six subpackages:
//
//	core/     — Node, Key, Edge, Graph types and adjacency queries
//	builder/  — fluent graph construction (gates, items, doors, keys)
//	multiset/ — counted sets with structural equality
//	state/    — persistent search snapshots (fork, join, placement)
//	prereq/   — guaranteed-requirement analyzer
//	finder/   — expansion engine, search driver, route solver, Route
//
// Quick ASCII example:
//
//	    R0 ──K0──▶ R1 ──K1──▶ R2
//	    │
//	    └─▶ I0a, I0b  (item slots)
//
//	the finder decides which slot receives K0 and which receives K1 so the
//	player can always finish, whichever order the doors are opened in.
//
// Dive into DESIGN.md for the component walkthrough and grounding notes.
//
//	go get github.com/katalvlaran/routefind
package routefind
