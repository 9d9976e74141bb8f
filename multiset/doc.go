// Package multiset provides a small generic counted set used by the search
// state to track held key tokens.
//
// A Multiset[T] maps comparable elements to non-negative counts. Equality
// is structural (same elements, same counts), which is what lets the engine
// compare and memoize key inventories across search snapshots.
//
// Iteration order over Distinct() is unspecified; deterministic callers
// must sort the result themselves (the engine sorts by entity ID before
// shuffling with its seeded RNG).
package multiset
