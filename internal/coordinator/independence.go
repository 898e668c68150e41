package coordinator

import "github.com/remedyhq/remedy/internal/domain"

// DetectIndependentErrors partitions errors into groups that may be
// repaired concurrently. Two errors land in the same group iff they share
// at least one affected file, transitively: if A overlaps B and B overlaps
// C, all three are one group even when A and C touch disjoint files.
//
// Implemented as union-find over the file-overlap relation. Groups and
// their members preserve input order, so the result is deterministic.
func DetectIndependentErrors(errs []domain.RepairError) [][]domain.RepairError {
	if len(errs) == 0 {
		return nil
	}

	uf := newUnionFind(len(errs))
	owner := make(map[string]int) // file path -> first error index touching it
	for i, e := range errs {
		for _, file := range e.AffectedFiles {
			if first, seen := owner[file]; seen {
				uf.union(first, i)
			} else {
				owner[file] = i
			}
		}
	}

	groupIndex := make(map[int]int)
	var groups [][]domain.RepairError
	for i, e := range errs {
		root := uf.find(i)
		gi, ok := groupIndex[root]
		if !ok {
			gi = len(groups)
			groupIndex[root] = gi
			groups = append(groups, nil)
		}
		groups[gi] = append(groups[gi], e)
	}
	return groups
}

// unionFind is a disjoint-set forest with path halving and union by size.
type unionFind struct {
	parent []int
	size   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.size[ra] < uf.size[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	uf.size[ra] += uf.size[rb]
}
