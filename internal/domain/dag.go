package domain

// ErrorDAGNode is one sub-problem in a decomposition graph.
type ErrorDAGNode struct {
	// ID uniquely identifies the node within its graph.
	ID string `json:"id"`

	// Description is the collaborator's summary of the sub-problem.
	Description string `json:"description"`

	// Complexity is the collaborator's 1-10 difficulty estimate for the
	// sub-problem alone.
	Complexity int `json:"complexity"`

	// AffectedFiles are the repository paths this sub-problem touches.
	AffectedFiles []string `json:"affected_files,omitempty"`
}

// ErrorDAGEdge is a dependency between two sub-problems: From must be
// resolved before To.
type ErrorDAGEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ErrorDAG is a candidate problem decomposition returned by the generative
// collaborator. It is built once per decomposition request and must pass
// structural validation (non-empty, unique ids, no dangling edges, acyclic)
// before anything schedules it.
type ErrorDAG struct {
	Nodes []ErrorDAGNode `json:"nodes"`
	Edges []ErrorDAGEdge `json:"edges,omitempty"`
}
