package topology

import (
	"fmt"

	"github.com/katalvlaran/nettopo/matrix"
)

// Compute runs the full pipeline on A: SelectTree, then LoopMatrix,
// CutsetMatrix and Reorder on the same partition.
//
// The computation is atomic: on any error no partial Result is returned.
// A is only read.
//
// Errors:
//   - ErrMalformedInput, ErrInvalidTopology, ErrNumericRange, ErrInternalInvariant.
func Compute(a *matrix.Dense, opts ...Option) (*Result, error) {
	p, err := SelectTree(a, opts...)
	if err != nil {
		return nil, err
	}

	reordered, labels, err := Reorder(a, p)
	if err != nil {
		return nil, err
	}
	b, err := LoopMatrix(a, p)
	if err != nil {
		return nil, err
	}
	c, err := CutsetMatrix(a, p)
	if err != nil {
		return nil, err
	}

	return &Result{
		ColumnOrder: labels,
		TreeIndices: oneBased(p.Tree),
		LinkIndices: oneBased(p.Links),
		AReordered:  reordered,
		B:           b,
		C:           c,
		Partition:   p,
	}, nil
}

// ComputeRows is Compute over a row-slice matrix, as decoded from a wire
// payload. Non-rectangular, empty or non-finite rows are ErrMalformedInput.
func ComputeRows(rows [][]float64, opts ...Option) (*Result, *matrix.Dense, error) {
	a, err := matrix.FromRows(rows)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	r, err := Compute(a, opts...)
	if err != nil {
		return nil, nil, err
	}

	return r, a, nil
}
