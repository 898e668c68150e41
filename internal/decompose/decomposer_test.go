package decompose_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remedyhq/remedy/internal/decompose"
	"github.com/remedyhq/remedy/internal/domain"
	"github.com/remedyhq/remedy/internal/errors"
	"github.com/remedyhq/remedy/internal/testutil"
)

// stubGenerator returns a canned proposal or error.
type stubGenerator struct {
	proposal decompose.Proposal
	err      error
	calls    int
}

func (s *stubGenerator) ProposeDecomposition(_ context.Context, _ decompose.Request) (decompose.Proposal, error) {
	s.calls++
	return s.proposal, s.err
}

func validDAG() domain.ErrorDAG {
	return domain.ErrorDAG{
		Nodes: []domain.ErrorDAGNode{
			{ID: "parse", Description: "fix parser", Complexity: 4},
			{ID: "types", Description: "fix type errors", Complexity: 5},
			{ID: "tests", Description: "fix tests", Complexity: 3},
		},
		Edges: []domain.ErrorDAGEdge{
			{From: "parse", To: "types"},
			{From: "types", To: "tests"},
		},
	}
}

func TestDecomposeBelowThresholdSkipsCollaborator(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{}
	d := decompose.New(gen, zerolog.Nop())

	outcome := d.Decompose(context.Background(), decompose.Request{Complexity: 8})

	assert.True(t, outcome.Flat())
	assert.NoError(t, outcome.Err)
	assert.Zero(t, gen.calls, "collaborator must not be invoked below the threshold")
}

func TestDecomposeWithoutCollaboratorPlansFlat(t *testing.T) {
	t.Parallel()

	outcome := decompose.New(nil, zerolog.Nop()).
		Decompose(context.Background(), decompose.Request{Complexity: 10})

	assert.True(t, outcome.Flat())
	assert.NoError(t, outcome.Err)
}

func TestDecomposeAcceptsValidDAG(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{
		proposal: decompose.Proposal{
			ShouldDecompose: true,
			Reasoning:       "three separable sub-problems",
			DAG:             validDAG(),
		},
	}
	d := decompose.New(gen, zerolog.Nop())

	outcome := d.Decompose(context.Background(), decompose.Request{Complexity: 9})

	require.Equal(t, decompose.ModeDecomposed, outcome.Mode)
	assert.NoError(t, outcome.Err)
	assert.Len(t, outcome.DAG.Nodes, 3)
	assert.Equal(t, "three separable sub-problems", outcome.Reasoning)
}

func TestDecomposeFailsOpen(t *testing.T) {
	t.Parallel()

	t.Run("collaborator error falls back flat", func(t *testing.T) {
		t.Parallel()
		gen := &stubGenerator{err: testutil.ErrMockGenerator}
		outcome := decompose.New(gen, zerolog.Nop()).
			Decompose(context.Background(), decompose.Request{Complexity: 9})

		assert.True(t, outcome.Flat())
		require.Error(t, outcome.Err)
		assert.ErrorIs(t, outcome.Err, testutil.ErrMockGenerator)
	})

	t.Run("structured decline falls back flat without error", func(t *testing.T) {
		t.Parallel()
		gen := &stubGenerator{
			proposal: decompose.Proposal{ShouldDecompose: false, Reasoning: "failure is atomic"},
		}
		outcome := decompose.New(gen, zerolog.Nop()).
			Decompose(context.Background(), decompose.Request{Complexity: 9})

		assert.True(t, outcome.Flat())
		assert.NoError(t, outcome.Err)
		assert.Equal(t, "failure is atomic", outcome.Reasoning)
	})

	t.Run("invalid dag falls back flat with validation error", func(t *testing.T) {
		t.Parallel()
		cyclic := validDAG()
		cyclic.Edges = append(cyclic.Edges, domain.ErrorDAGEdge{From: "tests", To: "parse"})
		gen := &stubGenerator{
			proposal: decompose.Proposal{ShouldDecompose: true, DAG: cyclic},
		}
		outcome := decompose.New(gen, zerolog.Nop()).
			Decompose(context.Background(), decompose.Request{Complexity: 10})

		assert.True(t, outcome.Flat())
		assert.ErrorIs(t, outcome.Err, errors.ErrCyclicDAG)
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		dag      domain.ErrorDAG
		expected error
	}{
		{
			name:     "empty dag rejected",
			dag:      domain.ErrorDAG{},
			expected: errors.ErrEmptyDAG,
		},
		{
			name: "duplicate node ids rejected",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}, {ID: "a"}},
			},
			expected: errors.ErrDuplicateNodeID,
		},
		{
			name: "edge referencing missing source rejected",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}},
				Edges: []domain.ErrorDAGEdge{{From: "ghost", To: "a"}},
			},
			expected: errors.ErrDanglingEdge,
		},
		{
			name: "edge referencing missing target rejected",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}},
				Edges: []domain.ErrorDAGEdge{{From: "a", To: "ghost"}},
			},
			expected: errors.ErrDanglingEdge,
		},
		{
			name: "two node cycle rejected",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}, {ID: "b"}},
				Edges: []domain.ErrorDAGEdge{{From: "a", To: "b"}, {From: "b", To: "a"}},
			},
			expected: errors.ErrCyclicDAG,
		},
		{
			name: "self loop rejected",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}},
				Edges: []domain.ErrorDAGEdge{{From: "a", To: "a"}},
			},
			expected: errors.ErrCyclicDAG,
		},
		{
			name: "deep cycle rejected",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
				Edges: []domain.ErrorDAGEdge{
					{From: "a", To: "b"},
					{From: "b", To: "c"},
					{From: "c", To: "d"},
					{From: "d", To: "b"},
				},
			},
			expected: errors.ErrCyclicDAG,
		},
		{
			name: "valid linear chain accepted",
			dag:  validDAG(),
		},
		{
			name: "valid diamond accepted",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
				Edges: []domain.ErrorDAGEdge{
					{From: "a", To: "b"},
					{From: "a", To: "c"},
					{From: "b", To: "d"},
					{From: "c", To: "d"},
				},
			},
		},
		{
			name: "disconnected nodes accepted",
			dag: domain.ErrorDAG{
				Nodes: []domain.ErrorDAGNode{{ID: "a"}, {ID: "b"}},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := decompose.Validate(tc.dag)
			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expected)
			}
		})
	}
}

func TestValidateErrorNamesOffender(t *testing.T) {
	t.Parallel()

	err := decompose.Validate(domain.ErrorDAG{
		Nodes: []domain.ErrorDAGNode{{ID: "real"}},
		Edges: []domain.ErrorDAGEdge{{From: "real", To: "phantom"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "phantom", "rejection must carry the offending id")
}

func TestValidateLargeGraphNoStackOverflow(t *testing.T) {
	t.Parallel()

	// A 50k-node chain would overflow a recursive DFS; the iterative
	// traversal must handle it.
	const n = 50000
	dag := domain.ErrorDAG{
		Nodes: make([]domain.ErrorDAGNode, n),
		Edges: make([]domain.ErrorDAGEdge, 0, n-1),
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = "n" + strconv.Itoa(i)
		dag.Nodes[i] = domain.ErrorDAGNode{ID: ids[i]}
	}
	for i := 0; i < n-1; i++ {
		dag.Edges = append(dag.Edges, domain.ErrorDAGEdge{From: ids[i], To: ids[i+1]})
	}

	assert.NoError(t, decompose.Validate(dag))

	dag.Edges = append(dag.Edges, domain.ErrorDAGEdge{From: ids[n-1], To: ids[0]})
	assert.ErrorIs(t, decompose.Validate(dag), errors.ErrCyclicDAG)
}
