// Package decompose turns high-complexity failures into validated
// sub-problem DAGs, delegating graph construction to a generative
// collaborator and failing open to flat planning whenever that goes wrong.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: other internal packages
package decompose

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/remedyhq/remedy/internal/constants"
	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
)

// Request is what the generative collaborator receives.
type Request struct {
	// Diagnosis is the failure diagnosis text.
	Diagnosis string `json:"diagnosis"`

	// Category is the diagnosed failure category.
	Category domain.Category `json:"category"`

	// Complexity is the 1-10 difficulty estimate.
	Complexity int `json:"complexity"`

	// AffectedFiles are the paths implicated by the diagnosis.
	AffectedFiles []string `json:"affected_files,omitempty"`

	// FeedbackHistory carries summaries of earlier failed attempts.
	FeedbackHistory []string `json:"feedback_history,omitempty"`
}

// Proposal is the collaborator's answer: either a candidate DAG or a
// structured decline.
type Proposal struct {
	// ShouldDecompose is false when the collaborator judges the failure
	// better handled flat.
	ShouldDecompose bool `json:"should_decompose"`

	// Reasoning is the collaborator's explanation.
	Reasoning string `json:"reasoning"`

	// DAG is the candidate decomposition. Only meaningful when
	// ShouldDecompose is true, and only after validation passes.
	DAG domain.ErrorDAG `json:"dag"`
}

// Generator is the generative collaborator boundary. Implementations wrap
// an LLM call; failures and timeouts surface as errors and are mapped to
// fail-open fallback by the Decomposer.
type Generator interface {
	ProposeDecomposition(ctx context.Context, req Request) (Proposal, error)
}

// Mode says whether planning proceeds on a sub-problem DAG or flat.
type Mode string

// The two planning modes.
const (
	ModeDecomposed Mode = "decomposed"
	ModeFlat       Mode = "flat"
)

// Outcome is the explicit result of a decomposition request. Every failure
// path lands on ModeFlat with Err carrying the cause; callers branch on
// Mode and never need to guess whether an error was swallowed.
type Outcome struct {
	// Mode is decomposed or flat.
	Mode Mode

	// Reasoning explains the outcome: the collaborator's own reasoning on
	// success, or why planning fell back to flat.
	Reasoning string

	// DAG is the validated decomposition. Only populated when Mode is
	// ModeDecomposed.
	DAG domain.ErrorDAG

	// Err is the cause of a fallback, nil for clean outcomes (including
	// an ordinary below-threshold skip or a collaborator decline).
	Err error
}

// Flat reports whether planning should proceed without decomposition.
func (o Outcome) Flat() bool {
	return o.Mode == ModeFlat
}

// Decomposer requests and validates problem decompositions.
type Decomposer struct {
	generator Generator
	threshold int
	logger    zerolog.Logger
}

// New returns a Decomposer using the standard complexity threshold.
// A nil generator is allowed and makes every outcome flat.
func New(generator Generator, logger zerolog.Logger) *Decomposer {
	return &Decomposer{
		generator: generator,
		threshold: constants.DecompositionThreshold,
		logger:    logger,
	}
}

// Decompose asks the collaborator for a sub-problem DAG when the failure
// is complex enough, and validates the answer before anyone may schedule
// it. Decomposition is only attempted above the complexity threshold;
// below it control passes straight to flat planning.
//
// Fail open: a collaborator error, a structured decline, or a DAG that
// fails validation all return a flat outcome rather than aborting the
// repair attempt.
func (d *Decomposer) Decompose(ctx context.Context, req Request) Outcome {
	if req.Complexity <= d.threshold {
		return Outcome{
			Mode:      ModeFlat,
			Reasoning: "complexity below decomposition threshold",
		}
	}

	if d.generator == nil {
		return Outcome{
			Mode:      ModeFlat,
			Reasoning: "no collaborator configured, planning flat",
		}
	}

	proposal, err := d.generator.ProposeDecomposition(ctx, req)
	if err != nil {
		d.logger.Warn().Err(err).Msg("decomposition collaborator failed, planning flat")
		return Outcome{
			Mode:      ModeFlat,
			Reasoning: "collaborator failed, planning flat",
			Err:       err,
		}
	}

	if !proposal.ShouldDecompose {
		d.logger.Debug().Str("reasoning", proposal.Reasoning).Msg("collaborator declined decomposition")
		return Outcome{
			Mode:      ModeFlat,
			Reasoning: proposal.Reasoning,
		}
	}

	if err := Validate(proposal.DAG); err != nil {
		d.logger.Warn().Err(err).Msg("decomposition dag rejected, planning flat")
		return Outcome{
			Mode:      ModeFlat,
			Reasoning: "candidate dag failed validation, planning flat",
			Err:       err,
		}
	}

	d.logger.Info().
		Int("nodes", len(proposal.DAG.Nodes)).
		Int("edges", len(proposal.DAG.Edges)).
		Msg("decomposition accepted")

	return Outcome{
		Mode:      ModeDecomposed,
		Reasoning: proposal.Reasoning,
		DAG:       proposal.DAG,
	}
}

// Validate checks the structural integrity of a candidate DAG: it must be
// non-empty, node ids must be unique, every edge must reference existing
// nodes, and the graph must be acyclic. Errors carry the offending id or
// edge. A DAG that fails validation must never be stored or scheduled.
func Validate(dag domain.ErrorDAG) error {
	if len(dag.Nodes) == 0 {
		return errors.ErrEmptyDAG
	}

	index := make(map[string]int, len(dag.Nodes))
	for i, node := range dag.Nodes {
		if node.ID == "" {
			return errors.Wrapf(errors.ErrEmptyValue, "node %d has empty id", i)
		}
		if _, exists := index[node.ID]; exists {
			return errors.Wrapf(errors.ErrDuplicateNodeID, "node %q", node.ID)
		}
		index[node.ID] = i
	}

	adjacency := make([][]int, len(dag.Nodes))
	for _, edge := range dag.Edges {
		from, ok := index[edge.From]
		if !ok {
			return errors.Wrapf(errors.ErrDanglingEdge, "edge %s -> %s: unknown node %q", edge.From, edge.To, edge.From)
		}
		to, ok := index[edge.To]
		if !ok {
			return errors.Wrapf(errors.ErrDanglingEdge, "edge %s -> %s: unknown node %q", edge.From, edge.To, edge.To)
		}
		adjacency[from] = append(adjacency[from], to)
	}

	if cycleAt := findCycle(adjacency); cycleAt >= 0 {
		return errors.Wrapf(errors.ErrCyclicDAG, "cycle through node %q", dag.Nodes[cycleAt].ID)
	}
	return nil
}

// visit states for the iterative DFS.
const (
	unvisited = iota
	onStack
	done
)

// frame is one explicit DFS stack entry: a node and the next adjacency
// index to explore.
type frame struct {
	node int
	next int
}

// findCycle runs an iterative depth-first search over the index-based
// adjacency list, using an explicit stack instead of recursion so large
// graphs cannot blow the call stack. A neighbor already on the current
// stack is a cycle; its index is returned, or -1 for acyclic graphs.
func findCycle(adjacency [][]int) int {
	state := make([]int, len(adjacency))
	stack := make([]frame, 0, len(adjacency))

	for start := range adjacency {
		if state[start] != unvisited {
			continue
		}
		state[start] = onStack
		stack = append(stack, frame{node: start})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(adjacency[top.node]) {
				neighbor := adjacency[top.node][top.next]
				top.next++
				switch state[neighbor] {
				case onStack:
					return neighbor
				case unvisited:
					state[neighbor] = onStack
					stack = append(stack, frame{node: neighbor})
				}
				continue
			}
			state[top.node] = done
			stack = stack[:len(stack)-1]
		}
	}
	return -1
}
