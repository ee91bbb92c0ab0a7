package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when an edge references a node that was
	// never registered.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNoEdge is returned when a node continues but has no outgoing edge.
	ErrNoEdge = errors.New("no outgoing edge")

	// ErrNoRoute is returned when a routing function selects a label with
	// no registered target.
	ErrNoRoute = errors.New("no target for route label")

	// ErrStepLimit is returned when a run exceeds the global step budget.
	// With the per-node visit cap in place this indicates a wiring bug,
	// not a quality loop.
	ErrStepLimit = errors.New("step limit exceeded")
)

// Failure is the error type nodes return to attach a machine-readable kind
// to an external-service failure. The executor surfaces the kind in the run
// result; the wrapped error keeps the full cause chain.
type Failure struct {
	Kind string
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return f.Kind
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Failf builds a Failure with a formatted cause.
func Failf(kind string, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// FailKind extracts the failure kind from an error chain, or returns the
// generic "node_error" when the node failed without classifying itself.
func FailKind(err error) string {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return "node_error"
}
