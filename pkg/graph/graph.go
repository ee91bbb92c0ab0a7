// Package graph implements a small stateful workflow engine: a directed
// graph of typed nodes with conditional routing, bounded cycles, and an
// ordered event stream of node completions.
//
// A node receives the current state, returns the transformed state plus a
// control Signal (continue, suspend, or terminal). Conditional edges select
// the next node with a pure routing function over the state, so a run over
// identical state and graph always takes the identical path.
package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// End is the pseudo-node name an edge may target to leave the graph.
const End = "__end__"

// NodeFunc transforms state and reports a control-flow verdict. Returning a
// non-nil error halts the run as failed; wrap the error in a Failure to
// classify it.
type NodeFunc[S any] func(ctx context.Context, s S) (S, Signal, error)

// RouteFunc selects an edge label from the current state. It must be a pure
// function of the state.
type RouteFunc[S any] func(s S) string

type edge[S any] struct {
	to       string
	route    RouteFunc[S]
	targets  map[string]string
	fallback string
}

// Graph is a fixed set of named nodes and edges with a designated start
// node. Build it once, then execute it any number of times; Run does not
// mutate the graph, so a single Graph is safe for concurrent runs over
// disjoint states.
type Graph[S any] struct {
	start string
	nodes map[string]NodeFunc[S]
	edges map[string]edge[S]
}

// New creates an empty graph that starts execution at the named node.
func New[S any](start string) *Graph[S] {
	return &Graph[S]{
		start: start,
		nodes: make(map[string]NodeFunc[S]),
		edges: make(map[string]edge[S]),
	}
}

// AddNode registers a named node transform.
func (g *Graph[S]) AddNode(name string, fn NodeFunc[S]) {
	g.nodes[name] = fn
}

// AddEdge registers an unconditional edge from one node to another.
func (g *Graph[S]) AddEdge(from, to string) {
	g.edges[from] = edge[S]{to: to}
}

// AddConditionalEdge registers a routed edge. The route function picks a
// label; targets maps labels to node names. The fallback target is taken
// when the routed target has exhausted its visit budget, which is how a
// bounded cycle degrades forward instead of looping.
func (g *Graph[S]) AddConditionalEdge(from string, route RouteFunc[S], targets map[string]string, fallback string) {
	g.edges[from] = edge[S]{route: route, targets: targets, fallback: fallback}
}

// Event reports one completed node in execution order.
type Event struct {
	// Seq is the zero-based position of this event in the run.
	Seq int

	// Node is the completed node's name.
	Node string

	// Visit counts how many times this node has now run, starting at 1.
	Visit int
}

// EventSink receives node-completion events. Events arrive strictly in
// node-completion order, on the goroutine driving the run.
type EventSink func(Event)

// ResultKind classifies how a run ended.
type ResultKind int

const (
	// Completed means a node returned Terminal or an edge reached End.
	Completed ResultKind = iota

	// Suspended means the run is waiting for further caller input.
	Suspended

	// Failed means a node transform returned an error.
	Failed

	// Abandoned means the context was cancelled between node boundaries.
	Abandoned
)

// Result describes the end of a run.
type Result struct {
	Kind ResultKind

	// Outcome is the Terminal outcome or Suspend reason, when applicable.
	Outcome string

	// FailKind and Detail are set when Kind is Failed.
	FailKind string
	Detail   string
}

// Executor drives a graph to completion, suspension, failure, or
// abandonment. Stateless across runs; safe for concurrent use with
// disjoint states.
type Executor[S any] struct {
	graph     *Graph[S]
	maxVisits int
	logger    *zap.Logger
}

// DefaultMaxVisits bounds how many times any single node may run per
// execution before conditional routing is forced onto its fallback edge.
const DefaultMaxVisits = 3

// ExecutorConfig holds construction options for an Executor.
type ExecutorConfig struct {
	// MaxVisits is the per-node visit cap. Defaults to DefaultMaxVisits.
	MaxVisits int

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// NewExecutor creates an executor for the given graph.
func NewExecutor[S any](g *Graph[S], c ExecutorConfig) *Executor[S] {
	maxVisits := c.MaxVisits
	if maxVisits <= 0 {
		maxVisits = DefaultMaxVisits
	}

	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Executor[S]{
		graph:     g,
		maxVisits: maxVisits,
		logger:    log,
	}
}

// Run executes the graph from its start node over the given state. It
// returns the final state and a Result describing the ending. The error is
// non-nil only for graph wiring bugs or context cancellation; node
// failures are reported through the Result so callers can distinguish
// domain failures from structural ones.
func (e *Executor[S]) Run(ctx context.Context, s S, sink EventSink) (S, Result, error) {
	visits := make(map[string]int, len(e.graph.nodes))
	stepLimit := (len(e.graph.nodes) + 1) * e.maxVisits

	current := e.graph.start
	for step := 0; ; step++ {
		if err := ctx.Err(); err != nil {
			e.logger.Debug("run abandoned", zap.String("node", current), zap.Error(err))
			return s, Result{Kind: Abandoned}, err
		}

		if step >= stepLimit {
			return s, Result{}, fmt.Errorf("%w: %d steps at node %q", ErrStepLimit, step, current)
		}

		fn, ok := e.graph.nodes[current]
		if !ok {
			return s, Result{}, fmt.Errorf("%w: %q", ErrUnknownNode, current)
		}

		next, signal, err := fn(ctx, s)
		if err != nil {
			e.logger.Warn("node failed",
				zap.String("node", current),
				zap.String("kind", FailKind(err)),
				zap.Error(err),
			)
			return s, Result{Kind: Failed, FailKind: FailKind(err), Detail: err.Error()}, nil
		}
		s = next

		visits[current]++
		if sink != nil {
			sink(Event{Seq: step, Node: current, Visit: visits[current]})
		}

		switch signal.kind {
		case signalSuspend:
			e.logger.Debug("run suspended",
				zap.String("node", current),
				zap.String("reason", signal.reason),
			)
			return s, Result{Kind: Suspended, Outcome: signal.reason}, nil
		case signalTerminal:
			return s, Result{Kind: Completed, Outcome: signal.reason}, nil
		}

		target, err := e.resolveEdge(current, s, visits)
		if err != nil {
			return s, Result{}, err
		}
		if target == End {
			return s, Result{Kind: Completed}, nil
		}
		current = target
	}
}

// resolveEdge evaluates the outgoing edge of a node, enforcing the visit
// cap on conditional targets.
func (e *Executor[S]) resolveEdge(from string, s S, visits map[string]int) (string, error) {
	ed, ok := e.graph.edges[from]
	if !ok {
		return "", fmt.Errorf("%w: from %q", ErrNoEdge, from)
	}

	if ed.route == nil {
		return ed.to, nil
	}

	label := ed.route(s)
	target, ok := ed.targets[label]
	if !ok {
		return "", fmt.Errorf("%w: label %q from %q", ErrNoRoute, label, from)
	}

	// A routed target at its visit budget gets forced onto the fallback
	// edge so a cycle degrades forward instead of spinning.
	if visits[target] >= e.maxVisits && ed.fallback != "" && target != ed.fallback {
		e.logger.Warn("visit cap reached, taking fallback edge",
			zap.String("from", from),
			zap.String("capped", target),
			zap.String("fallback", ed.fallback),
			zap.Int("max_visits", e.maxVisits),
		)
		return ed.fallback, nil
	}

	return target, nil
}
