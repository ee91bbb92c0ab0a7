package graph

// signalKind discriminates the control-flow variants a node can return.
type signalKind int

const (
	signalNext signalKind = iota
	signalSuspend
	signalTerminal
)

// Signal is the tagged control-flow verdict returned by a node alongside its
// state transform. Routing never inspects ad hoc state keys; it consumes
// exactly one of these variants.
type Signal struct {
	kind   signalKind
	reason string
}

// Next continues execution along the node's outgoing edge.
func Next() Signal {
	return Signal{kind: signalNext}
}

// Suspend ends the run in a non-terminal state awaiting further caller
// input. The reason describes what the run is waiting for.
func Suspend(reason string) Signal {
	return Signal{kind: signalSuspend, reason: reason}
}

// Terminal ends the run successfully with the given outcome.
func Terminal(outcome string) Signal {
	return Signal{kind: signalTerminal, reason: outcome}
}
