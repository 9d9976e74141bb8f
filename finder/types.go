package finder

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/katalvlaran/routefind/state"
)

// Sentinel errors for the search engine.
// Callers branch with errors.Is; richer context rides on wrapper types.
var (
	// ErrNilGraph indicates New was called without a graph.
	ErrNilGraph = errors.New("finder: graph is nil")

	// ErrDepthLimitReached indicates the speculative recursion exceeded
	// the configured bound. The wrapping DepthLimitError carries the best
	// partial state reached.
	ErrDepthLimitReached = errors.New("finder: depth limit reached")
)

// DepthLimitError reports that the search recursion hit its depth bound.
// Best holds the deepest snapshot reached, so callers can inspect how far
// the partial route got. Matches ErrDepthLimitReached via errors.Is.
type DepthLimitError struct {
	Limit int
	Best  *state.State
}

// Error implements the error interface.
func (e *DepthLimitError) Error() string {
	return fmt.Sprintf("finder: depth limit %d reached", e.Limit)
}

// Unwrap links the wrapper to ErrDepthLimitReached for errors.Is.
func (e *DepthLimitError) Unwrap() error { return ErrDepthLimitReached }

// defaultDepthLimit keeps the recursion effectively unbounded while still
// terminating on pathological segment cycles.
const defaultDepthLimit = 1 << 20

// defaultSolverBudget bounds the number of player states the route solver
// explores per validation.
const defaultSolverBudget = 1 << 14

// options collects the tunables of one Finder, set via Option values.
type options struct {
	ctx          context.Context
	depthLimit   int
	deadEnd      func(*state.State)
	logger       logrus.FieldLogger
	trace        bool
	solverBudget int
}

func defaultOptions() options {
	return options{
		ctx:          context.Background(),
		depthLimit:   defaultDepthLimit,
		solverBudget: defaultSolverBudget,
	}
}

// Option configures a Finder created by New.
type Option func(*options)

// WithContext installs a cancellation context. It is checked at the top of
// every driver call; a tripped context aborts the search with the context's
// error.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.ctx = ctx
		}
	}
}

// WithDepthLimit bounds the speculative recursion depth. Values below one
// are ignored. Exceeding the bound aborts with a DepthLimitError.
func WithDepthLimit(limit int) Option {
	return func(o *options) {
		if limit >= 1 {
			o.depthLimit = limit
		}
	}
}

// WithDeadEndCallback installs an observer invoked once per terminal
// unsolvable subproblem, with the best partial state. Advisory only; the
// search continues regardless.
func WithDeadEndCallback(fn func(*state.State)) Option {
	return func(o *options) { o.deadEnd = fn }
}

// WithLogger installs a structured logger for search diagnostics. Events
// are emitted at debug level; nil disables logging entirely.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.logger = l }
}

// WithTrace enables the append-only state trace, surfaced via Route.Trace.
// Tracing copies the trace on every transition; leave it off outside
// debugging.
func WithTrace() Option {
	return func(o *options) { o.trace = true }
}

// WithSolverBudget bounds the number of simulated player states the route
// solver explores per validation. Values below one are ignored.
func WithSolverBudget(budget int) Option {
	return func(o *options) {
		if budget >= 1 {
			o.solverBudget = budget
		}
	}
}
