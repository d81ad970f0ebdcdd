package topology

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/katalvlaran/nettopo/matrix"
)

// validateIncidence rejects inputs that cannot hold an n-branch tree by
// construction. Every failure wraps ErrMalformedInput.
func validateIncidence(a *matrix.Dense, o Options) (n, m int, err error) {
	if a == nil {
		return 0, 0, fmt.Errorf("%w: %w", ErrMalformedInput, matrix.ErrNilMatrix)
	}
	n, m = a.Shape()
	if n == 0 || m == 0 {
		return 0, 0, fmt.Errorf("%w: empty %dx%d matrix: %w", ErrMalformedInput, n, m, matrix.ErrInvalidDimensions)
	}
	if m < n {
		return 0, 0, fmt.Errorf("%w: %d branches cannot span %d nodes (need m >= n)", ErrMalformedInput, m, n)
	}
	if o.MaxBranches > 0 && m > o.MaxBranches {
		return 0, 0, fmt.Errorf("%w: %d branches exceeds the limit of %d", ErrMalformedInput, m, o.MaxBranches)
	}

	return n, m, nil
}

// SelectTree returns the lexicographically first spanning tree of A.
//
// Implementation:
//   - Stage 1: validate A (ErrMalformedInput) before any search.
//   - Stage 2: walk size-n combinations of [0,m) in ascending lexicographic
//     order via a lazy generator.
//   - Stage 3: for each, select those columns (in combination order) and take
//     the determinant; accept the first with |det| > Tolerance.
//   - Stage 4: links are the ascending complement of the tree.
//
// Behavior highlights:
//   - Early exit on the first accepted combination; later candidates are never
//     evaluated, so the result is deterministic for a given A.
//   - Tolerance is absolute. Badly scaled or ill-conditioned inputs may be
//     accepted or rejected differently than a scale-aware test would.
//
// Errors:
//   - ErrMalformedInput, ErrInvalidTopology.
//
// Complexity:
//   - Time O(C(m,n)·n³) worst case, Space O(n² + m).
func SelectTree(a *matrix.Dense, opts ...Option) (Partition, error) {
	o := gatherOptions(opts...)
	n, m, err := validateIncidence(a, o)
	if err != nil {
		return Partition{}, err
	}

	gen := combin.NewCombinationGenerator(m, n)
	comb := make([]int, n)
	var (
		sub *matrix.Dense
		det float64
	)
	for gen.Next() {
		gen.Combination(comb)
		if sub, err = a.SelectColumns(comb); err != nil {
			return Partition{}, fmt.Errorf("%w: %w", ErrInternalInvariant, err)
		}
		if det, err = matrix.Det(sub); err != nil {
			return Partition{}, fmt.Errorf("%w: %w", ErrInternalInvariant, err)
		}
		if math.Abs(det) > o.Tolerance {
			return newPartition(comb, m), nil
		}
	}

	return Partition{}, ErrInvalidTopology
}

// newPartition copies tree and derives the ascending complement in [0,m).
// tree must be ascending, as produced by the combination generator.
func newPartition(tree []int, m int) Partition {
	p := Partition{
		Tree:  append([]int(nil), tree...),
		Links: make([]int, 0, m-len(tree)),
	}
	next := 0
	for idx := 0; idx < m; idx++ {
		if next < len(tree) && tree[next] == idx {
			next++
			continue
		}
		p.Links = append(p.Links, idx)
	}

	return p
}
