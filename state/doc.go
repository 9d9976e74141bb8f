// Package state provides the persistent search snapshot the route finder
// backtracks over: the visited set, held key tokens, pending and deferred
// edges, spare item slots, key placements, and the parent link that powers
// fork/join across one-way transitions.
//
// Persistence model: a State is never mutated. Every operation returns a
// new snapshot that shares the containers it did not touch and copies the
// ones it did (copy-on-write). Discarding a snapshot on backtrack is
// therefore free, and keeping many live snapshots costs only the deltas.
//
// Fork/Join: a one-way transition forks a nested segment whose parent link
// points at the enclosing snapshot. When the nested traversal reaches a
// node some ancestor already visited, VisitNode merges the chain back into
// that ancestor (Join) instead of re-visiting. No-return transitions use
// Clear instead: the new segment has no parent and never rejoins.
//
// Segment-crossing data: key placements, the deferred one-way set, and the
// global ever-visited ledger outlive segment boundaries and are carried
// through Clear and Fork. Spare items are not — an item slot left empty on
// the far side of a no-return can never receive a key again.
//
// Invariants enforced here (violations surface as ErrInvariantViolation):
// spare items are visited item nodes without placements, UseKey only
// removes edges present in the pending set, Join only targets ancestors on
// the parent chain, and every placement respects zone compatibility.
package state
