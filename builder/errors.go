package builder

import "errors"

// Sentinel errors for graph construction.
// Callers branch with errors.Is; Build wraps them with call context.
var (
	// ErrEmptyGraph indicates Build was called with no nodes.
	ErrEmptyGraph = errors.New("builder: graph has no nodes")

	// ErrNoStartGate indicates no AndGate without incoming edges exists to
	// serve as the start node.
	ErrNoStartGate = errors.New("builder: no start gate")

	// ErrNilRef indicates a nil node or key was passed to a helper.
	ErrNilRef = errors.New("builder: nil reference")

	// ErrForeignRef indicates a node or key from another builder was
	// passed to a helper.
	ErrForeignRef = errors.New("builder: reference from another builder")

	// ErrBadQuantity indicates a key quantity below one.
	ErrBadQuantity = errors.New("builder: key quantity must be positive")
)
