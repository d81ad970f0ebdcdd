// SPDX-License-Identifier: MIT
// Package matrix provides the linear-algebra kernels used by topology
// computations: products, transposes, block assembly, identity, tolerance
// comparison, determinant and inverse.
//
// Purpose:
//   - Keep every kernel allocation-fresh: operands are never mutated.
//   - Delegate factorizations (Det, Inverse) to gonum's LU with partial
//     pivoting; the remaining kernels are plain loops over the flat buffer.
//
// Notes:
//   - All kernels use the central validators and wrap failures via matrixErrorf.
//   - Zero-area operands are legal everywhere except Det/Inverse.

package matrix

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ZeroSum is the initial value for dot-product accumulation.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping.
const (
	opMul       = "Mul"
	opTranspose = "Transpose"
	opScale     = "Scale"
	opHStack    = "HStack"
	opIdentity  = "NewIdentity"
	opAllClose  = "AllClose"
	opDet       = "Det"
	opInverse   = "Inverse"
)

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// NewIdentity returns I_n (n×n identity; ones on the diagonal, zeros elsewhere).
// n == 0 yields a legal empty 0×0 matrix, which keeps block assembly uniform
// for networks whose link set is empty.
//
// Errors:
//   - ErrInvalidDimensions for n < 0.
//
// Complexity: O(n^2) zeroing + O(n) diagonal writes.
func NewIdentity(n int) (*Dense, error) {
	I, err := newDenseZeroOK(n, n)
	if err != nil {
		return nil, matrixErrorf(opIdentity, err)
	}
	for i := 0; i < n; i++ {
		I.data[i*n+i] = 1.0
	}

	return I, nil
}

// Mul performs standard matrix multiplication C = A × B.
//
// Implementation:
//   - Stage 1: validate non-nil and a.Cols == b.Rows.
//   - Stage 2: allocate a.Rows×b.Cols result.
//   - Stage 3: i→k→j loop with row-major offsets (cache-friendly on b).
//   - Stage 4: reject results that left the float64 range.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch.
//   - ErrNaNInf when finite operands overflow (e.g. 1e308 × 1e5).
//
// Complexity:
//   - Time O(r*n*c), Space O(r*c).
func Mul(a, b *Dense) (*Dense, error) {
	if err := ValidateNotNil(a); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}
	if err := ValidateMulCompatible(a, b); err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	r, n, c := a.r, a.c, b.c
	res, err := newDenseZeroOK(r, c)
	if err != nil {
		return nil, matrixErrorf(opMul, err)
	}

	var i, k, j int
	var aik float64
	for i = 0; i < r; i++ {
		for k = 0; k < n; k++ {
			aik = a.data[i*n+k]
			if aik == ZeroSum {
				continue
			}
			for j = 0; j < c; j++ {
				res.data[i*c+j] += aik * b.data[k*c+j]
			}
		}
	}
	for i = range res.data {
		if math.IsNaN(res.data[i]) || math.IsInf(res.data[i], 0) {
			return nil, matrixErrorf(opMul, fmt.Errorf("entry (%d,%d): %w", i/c, i%c, ErrNaNInf))
		}
	}

	return res, nil
}

// Transpose returns a new matrix with rows and columns swapped (mᵀ).
// Complexity: O(r*c).
func Transpose(m *Dense) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	res, err := newDenseZeroOK(m.c, m.r)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}

	var i, j int
	for i = 0; i < m.r; i++ {
		for j = 0; j < m.c; j++ {
			res.data[j*m.r+i] = m.data[i*m.c+j]
		}
	}

	return res, nil
}

// Scale returns a new matrix whose elements are alpha * m[i,j].
//
// Errors:
//   - ErrNilMatrix; ErrNaNInf when alpha is not finite.
//
// Complexity: O(r*c).
func Scale(m *Dense, alpha float64) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opScale, err)
	}
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, matrixErrorf(opScale, ErrNaNInf)
	}

	res := m.Clone()
	for idx := range res.data {
		res.data[idx] *= alpha
	}

	return res, nil
}

// HStack concatenates blocks left to right: [b0 | b1 | ...].
//
// Implementation:
//   - Stage 1: every block must be non-nil with the row count of the first.
//   - Stage 2: allocate rows×Σcols and copy each block row slice in order.
//
// Behavior highlights:
//   - Zero-column blocks are skipped naturally; zero-row stacks are legal.
//
// Errors:
//   - ErrInvalidDimensions for no blocks; ErrNilMatrix; ErrDimensionMismatch.
//
// Complexity: O(r*Σc).
func HStack(blocks ...*Dense) (*Dense, error) {
	if len(blocks) == 0 {
		return nil, matrixErrorf(opHStack, ErrInvalidDimensions)
	}
	var cols int
	for idx, b := range blocks {
		if err := ValidateNotNil(b); err != nil {
			return nil, matrixErrorf(opHStack, fmt.Errorf("block %d: %w", idx, err))
		}
		if b.r != blocks[0].r {
			return nil, matrixErrorf(opHStack, fmt.Errorf("block %d has %d rows, want %d: %w", idx, b.r, blocks[0].r, ErrDimensionMismatch))
		}
		cols += b.c
	}

	rows := blocks[0].r
	res, err := newDenseZeroOK(rows, cols)
	if err != nil {
		return nil, matrixErrorf(opHStack, err)
	}

	var i, off int
	for i = 0; i < rows; i++ {
		off = i * cols
		for _, b := range blocks {
			copy(res.data[off:off+b.c], b.data[i*b.c:(i+1)*b.c])
			off += b.c
		}
	}

	return res, nil
}

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
// Negative tolerances are normalized to their absolute value.
//
// Errors:
//   - ErrNaNInf for non-finite tolerances; ErrNilMatrix; ErrDimensionMismatch.
//
// Complexity: O(r*c), early exit on first violation.
func AllClose(a, b *Dense, rtol, atol float64) (bool, error) {
	if math.IsNaN(rtol) || math.IsNaN(atol) || math.IsInf(rtol, 0) || math.IsInf(atol, 0) {
		return false, matrixErrorf(opAllClose, ErrNaNInf)
	}
	rtol, atol = math.Abs(rtol), math.Abs(atol)
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	for idx := range a.data {
		if math.Abs(a.data[idx]-b.data[idx]) > atol+rtol*math.Abs(b.data[idx]) {
			return false, nil
		}
	}

	return true, nil
}

// toGonum copies a square, non-empty Dense into a gonum *mat.Dense.
// gonum retains the slice it is given, so the buffer is always copied.
func toGonum(m *Dense) *mat.Dense {
	buf := make([]float64, len(m.data))
	copy(buf, m.data)

	return mat.NewDense(m.r, m.c, buf)
}

// Det returns the determinant of a square matrix.
//
// Implementation:
//   - Stage 1: validate non-nil, square, non-empty.
//   - Stage 2: LU factorization with partial pivoting (gonum mat.Det).
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrInvalidDimensions.
//
// Complexity: O(n^3).
func Det(m *Dense) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opDet, err)
	}
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opDet, err)
	}

	return mat.Det(toGonum(m)), nil
}

// Inverse returns A⁻¹ computed from a pivoted LU factorization.
//
// Implementation:
//   - Stage 1: validate non-nil, square, non-empty.
//   - Stage 2: gonum (*mat.Dense).Inverse.
//   - Stage 3: classify the gonum result. An exactly singular input is
//     reported by gonum as Condition(+Inf) and mapped to ErrSingular. A finite
//     Condition only flags poor conditioning; the computed inverse is kept.
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrInvalidDimensions, ErrSingular.
//
// Complexity: O(n^3).
func Inverse(m *Dense) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	var inv mat.Dense
	if err := inv.Inverse(toGonum(m)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, matrixErrorf(opInverse, ErrSingular)
		}
	}

	n := m.r
	res := &Dense{r: n, c: n, data: make([]float64, n*n)}
	var i, j int
	var v float64
	for i = 0; i < n; i++ {
		for j = 0; j < n; j++ {
			v = inv.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, matrixErrorf(opInverse, ErrSingular)
			}
			res.data[i*n+j] = v
		}
	}

	return res, nil
}
