package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped) by mutation and compilation. Callers
// should use errors.Is against these rather than comparing typed values
// directly, since errors are always wrapped with positional context.
var (
	// ErrNodeNotFound is returned when a mutation references a vacant or
	// out-of-range node slot.
	ErrNodeNotFound = errors.New("graph: node not found")

	// ErrEdgeNotFound is returned by Disconnect for a vacant or
	// out-of-range edge slot.
	ErrEdgeNotFound = errors.New("graph: edge not found")

	// ErrCycleDetected is returned by Connect (primary DFS reachability
	// guard) and defensively by Compile (Kahn's algorithm completion
	// check).
	ErrCycleDetected = errors.New("graph: connect would create a cycle")

	// ErrDuplicateEdge is returned by Connect when an edge between the
	// same ordered pair already exists.
	ErrDuplicateEdge = errors.New("graph: duplicate edge")

	// ErrInvalidConnection is returned by Connect when a structural rule
	// is violated (edge into Input, edge out of Output, an Effect/Split
	// node already has an incoming edge, an Effect/Merge node already has
	// an outgoing edge, or Split fan-out would exceed MaxSplitTargets).
	ErrInvalidConnection = errors.New("graph: invalid connection")

	// ErrInvalidInputCount is returned by Compile when the graph does not
	// have exactly one Input node.
	ErrInvalidInputCount = errors.New("graph: expected exactly one input node")

	// ErrInvalidOutputCount is returned by Compile when the graph does not
	// have exactly one Output node.
	ErrInvalidOutputCount = errors.New("graph: expected exactly one output node")

	// ErrEmptyGraph is returned by Compile when the graph has no active
	// nodes at all.
	ErrEmptyGraph = errors.New("graph: empty graph")

	// ErrNotCompiled is returned by ProcessBlock when called before any
	// successful Compile. The precondition violation is surfaced rather
	// than treated as undefined behaviour: the executor writes silence.
	ErrNotCompiled = errors.New("graph: process_block called before compile")

	// ErrUnknownEffect names an unknown effect type. Nothing in this
	// package returns it; dsp/effectchain's registry reports unknown names
	// with its own effectchain.ErrUnknownEffect.
	ErrUnknownEffect = errors.New("graph: unknown effect type")

	// ErrDanglingNode is returned by Compile when an Effect, Split, or
	// Merge node is missing an incoming or outgoing edge its kind
	// requires (e.g. an Effect node with no incoming connection).
	ErrDanglingNode = errors.New("graph: node missing required connection")

	// ErrInvalidSampleRate is returned by SetSampleRate for a non-positive
	// rate.
	ErrInvalidSampleRate = errors.New("graph: sample rate must be positive")
)

// ConnectError reports why a Connect call failed, with the offending node
// IDs attached for caller diagnostics (e.g. a GUI highlighting the rejected
// edge).
type ConnectError struct {
	From, To NodeID
	Reason   error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("graph: connect %d -> %d: %v", e.From, e.To, e.Reason)
}

func (e *ConnectError) Unwrap() error { return e.Reason }

func newConnectError(from, to NodeID, reason error) *ConnectError {
	return &ConnectError{From: from, To: to, Reason: reason}
}

// CompileError reports why Compile failed to produce a Schedule. The
// previous schedule, if any, remains installed and the graph remains
// mutable; the caller may fix the error and compile again.
type CompileError struct {
	Reason error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("graph: compile: %v", e.Reason)
}

func (e *CompileError) Unwrap() error { return e.Reason }

func newCompileError(reason error) *CompileError {
	return &CompileError{Reason: reason}
}
