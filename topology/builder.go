package topology

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/nettopo/matrix"
)

// Operation tags for error wrapping.
const (
	opLoop   = "LoopMatrix"
	opCutset = "CutsetMatrix"
)

// reducedLinks computes F = A_T⁻¹·A_L from the original, unpermuted A.
//
// Implementation:
//   - Stage 1: validate A and the partition (sizes, range, uniqueness).
//   - Stage 2: A_T = columns p.Tree, A_L = columns p.Links, in partition order.
//   - Stage 3: invert A_T (pivoted LU) and multiply; a product that
//     overflows is ErrNumericRange.
//
// A singular A_T means the partition did not come from SelectTree, so it is
// reported as ErrInternalInvariant rather than ErrInvalidTopology.
//
// Complexity: O(n³ + n²(m−n)).
func reducedLinks(a *matrix.Dense, p Partition) (*matrix.Dense, error) {
	if a == nil {
		return nil, fmt.Errorf("%w: %w", ErrInternalInvariant, matrix.ErrNilMatrix)
	}
	n, m := a.Shape()
	if err := p.validate(n, m); err != nil {
		return nil, err
	}

	aT, err := a.SelectColumns(p.Tree)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternalInvariant, err)
	}
	aL, err := a.SelectColumns(p.Links)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternalInvariant, err)
	}

	inv, err := matrix.Inverse(aT)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) {
			return nil, fmt.Errorf("%w: tree branches %v do not form a nonsingular submatrix: %w", ErrInternalInvariant, oneBased(p.Tree), err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInternalInvariant, err)
	}

	f, err := matrix.Mul(inv, aL)
	if err != nil {
		if errors.Is(err, matrix.ErrNaNInf) {
			return nil, fmt.Errorf("%w: tree branches %v: %w", ErrNumericRange, oneBased(p.Tree), err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInternalInvariant, err)
	}

	return f, nil
}

// LoopMatrix builds the fundamental loop matrix B = [ −Fᵗ | I_{m−n} ].
//
// Each row is one fundamental loop, anchored at one link branch (in p.Links
// order). Columns are in tree-then-link order, matching Reorder.
// With no links the result is a legal 0×m matrix.
//
// Errors:
//   - ErrInternalInvariant for an invalid partition or singular tree block.
//   - ErrNumericRange when F overflows.
//
// Complexity: O(n³ + n²(m−n) + m(m−n)).
func LoopMatrix(a *matrix.Dense, p Partition) (*matrix.Dense, error) {
	f, err := reducedLinks(a, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opLoop, err)
	}

	ft, err := matrix.Transpose(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opLoop, err)
	}
	treeBlock, err := matrix.Scale(ft, -1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opLoop, err)
	}
	linkBlock, err := matrix.NewIdentity(len(p.Links))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opLoop, err)
	}

	b, err := matrix.HStack(treeBlock, linkBlock)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opLoop, err)
	}

	return b, nil
}

// CutsetMatrix builds the fundamental cutset matrix C = [ I_n | F ].
//
// Each row is one fundamental cutset, anchored at one tree branch (in p.Tree
// order). Columns are in tree-then-link order, matching Reorder.
//
// Errors:
//   - ErrInternalInvariant for an invalid partition or singular tree block.
//   - ErrNumericRange when F overflows.
//
// Complexity: O(n³ + n²(m−n) + nm).
func CutsetMatrix(a *matrix.Dense, p Partition) (*matrix.Dense, error) {
	f, err := reducedLinks(a, p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCutset, err)
	}

	treeBlock, err := matrix.NewIdentity(len(p.Tree))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCutset, err)
	}

	c, err := matrix.HStack(treeBlock, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opCutset, err)
	}

	return c, nil
}
