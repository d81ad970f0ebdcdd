package topology

import (
	"fmt"
	"strconv"

	"github.com/katalvlaran/nettopo/matrix"
)

// branchLabelPrefix prefixes the 1-based branch number in column labels.
const branchLabelPrefix = "b"

// BranchLabel returns the human-facing label of 0-based branch idx ("b1" for 0).
func BranchLabel(idx int) string {
	return branchLabelPrefix + strconv.Itoa(idx+1)
}

// Reorder projects A onto tree-then-link column order.
//
// Implementation:
//   - Stage 1: validate the partition against A's shape.
//   - Stage 2: perm = p.Tree ∥ p.Links; select A's columns in that order.
//   - Stage 3: label i = "b" + (perm[i]+1).
//
// The column order agrees exactly with LoopMatrix and CutsetMatrix.
//
// Errors:
//   - ErrInternalInvariant for a nil A or an invalid partition.
//
// Complexity: O(nm).
func Reorder(a *matrix.Dense, p Partition) (*matrix.Dense, []string, error) {
	if a == nil {
		return nil, nil, fmt.Errorf("Reorder: %w: %w", ErrInternalInvariant, matrix.ErrNilMatrix)
	}
	n, m := a.Shape()
	if err := p.validate(n, m); err != nil {
		return nil, nil, fmt.Errorf("Reorder: %w", err)
	}

	perm := p.Permutation()
	reordered, err := a.SelectColumns(perm)
	if err != nil {
		return nil, nil, fmt.Errorf("Reorder: %w: %w", ErrInternalInvariant, err)
	}

	labels := make([]string, len(perm))
	for i, idx := range perm {
		labels[i] = BranchLabel(idx)
	}

	return reordered, labels, nil
}
