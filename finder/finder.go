package finder

import (
	"math/rand"

	"github.com/katalvlaran/routefind/core"
	"github.com/katalvlaran/routefind/state"
)

// Finder runs one randomized search over a graph. It owns its RNG and
// memo tables and must not be shared across goroutines; distinct Finders
// may share one graph.
type Finder struct {
	g    *core.Graph
	rng  *rand.Rand
	opts options

	minOcc map[minOccKey]int // removable-key path minima, graph-static
}

type minOccKey struct {
	key  int
	node int
}

// New returns a Finder over g seeded with seed (seed==0 selects a fixed
// default, keeping the zero value reproducible).
//
// Errors: ErrNilGraph.
func New(g *core.Graph, seed int64, opts ...Option) (*Finder, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Finder{
		g:      g,
		rng:    newRNG(seed),
		opts:   o,
		minOcc: make(map[minOccKey]int),
	}, nil
}

// Find runs the search and returns the resulting route.
//
// An unsolvable input is not an error: the route comes back with
// AllNodesVisited()==false and the best placements found. Errors are
// reserved for aborted runs — the context's error on cancellation, a
// DepthLimitError past the recursion bound, or a state invariant
// violation, which indicates a bug.
func (f *Finder) Find() (*Route, error) {
	var stOpts []state.Option
	if f.opts.trace {
		stOpts = append(stOpts, state.WithTrace())
	}

	st, err := state.New(f.g, stOpts...).VisitNode(f.g.Start())
	if err != nil {
		return nil, err
	}

	f.logf("search start at %s (%d nodes, %d keys)",
		f.g.Start(), f.g.NodeCount(), len(f.g.Keys()))

	final, err := f.fulfill(st, 0)
	if err != nil {
		return nil, err
	}

	f.logf("search done: visited=%t placements=%d",
		final.AllNodesVisited(), final.PlacementCount())
	return &Route{finder: f, final: final}, nil
}

// logf emits a debug event when a logger is configured.
func (f *Finder) logf(format string, args ...interface{}) {
	if f.opts.logger != nil {
		f.opts.logger.Debugf(format, args...)
	}
}
