package graph

import "errors"

// Sentinel errors for graph construction and lookup.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrDuplicateNode indicates two nodes in one response share an id.
	// Identity cannot be repaired locally, so the whole snapshot is rejected.
	ErrDuplicateNode = errors.New("duplicate node id")

	// ErrDanglingEdge indicates an edge references an id missing from the
	// node set. Such edges are discarded during Build.
	ErrDanglingEdge = errors.New("edge references unknown node")

	// ErrSelfLoop indicates an edge whose endpoints are the same node.
	// Such edges are discarded during Build.
	ErrSelfLoop = errors.New("edge is a self-loop")

	// ErrUnknownNode indicates a lookup for an id that is not in the graph.
	ErrUnknownNode = errors.New("unknown node")
)
