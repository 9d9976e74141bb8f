package state

import "errors"

// Sentinel errors for state transitions.
var (
	// ErrInvariantViolation indicates an internal inconsistency: placing
	// into a non-spare item, debiting tokens that are not held, removing
	// an edge that is not pending, or joining to a snapshot outside the
	// parent chain. It always indicates a bug in the caller.
	ErrInvariantViolation = errors.New("state: invariant violation")

	// ErrGroupMismatch indicates a placement whose item group does not
	// cover the key group.
	ErrGroupMismatch = errors.New("state: key group not covered by item group")
)

// Option configures a root State created by New.
type Option func(*State)

// WithTrace enables the append-only debug trace. Tracing copies the trace
// slice on every transition, so leave it off outside debugging.
func WithTrace() Option {
	return func(s *State) { s.tracing = true }
}
