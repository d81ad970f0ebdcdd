package topology

import (
	"fmt"
	"math"

	"github.com/katalvlaran/nettopo/matrix"
)

// Verify re-checks the structural identities of r against the original A.
// Entry comparisons use tol as an absolute bound. The two product checks
// scale it per entry by the magnitude of the summed terms,
// |Σₖ xᵢₖ·yⱼₖ| ≤ tol·max(1, Σₖ |xᵢₖ·yⱼₖ|). The identities:
//
//   - AReordered equals A's columns in r.Partition order;
//   - B's link block is I_{m−n} and C's tree block is I_n;
//   - C's link block equals −(B's tree block)ᵗ (the shared F);
//   - AReordered·Bᵗ = 0 (KCL: incidence annihilates every fundamental loop);
//   - B·Cᵗ = 0 (loop and cutset spaces are orthogonal).
//
// A failed identity is reported as ErrInternalInvariant naming the identity.
//
// Complexity: O(m²·n + m³) for the products.
func Verify(a *matrix.Dense, r *Result, tol float64) error {
	if a == nil || r == nil || r.AReordered == nil || r.B == nil || r.C == nil {
		return fmt.Errorf("Verify: %w: incomplete input", ErrInternalInvariant)
	}
	n, m := a.Shape()
	p := r.Partition
	if err := p.validate(n, m); err != nil {
		return fmt.Errorf("Verify: %w", err)
	}
	l := m - n

	checks := []struct {
		name string
		fn   func() (bool, error)
	}{
		{"A_reordered matches partition", func() (bool, error) {
			want, err := a.SelectColumns(p.Permutation())
			if err != nil {
				return false, err
			}
			return matrix.AllClose(r.AReordered, want, 0, tol)
		}},
		{"B link block is identity", func() (bool, error) {
			return blockIsIdentity(r.B, n, l, tol)
		}},
		{"C tree block is identity", func() (bool, error) {
			return blockIsIdentity(r.C, 0, n, tol)
		}},
		{"C link block equals -(B tree block)^T", func() (bool, error) {
			bTree, err := r.B.SelectColumns(columnRange(0, n))
			if err != nil {
				return false, err
			}
			bTreeT, err := matrix.Transpose(bTree)
			if err != nil {
				return false, err
			}
			f, err := matrix.Scale(bTreeT, -1)
			if err != nil {
				return false, err
			}
			cLink, err := r.C.SelectColumns(columnRange(n, m))
			if err != nil {
				return false, err
			}
			return matrix.AllClose(cLink, f, 0, tol)
		}},
		{"A_reordered * B^T is zero", func() (bool, error) {
			return productIsZero(r.AReordered, r.B, tol)
		}},
		{"B * C^T is zero", func() (bool, error) {
			return productIsZero(r.B, r.C, tol)
		}},
	}

	for _, c := range checks {
		ok, err := c.fn()
		if err != nil {
			return fmt.Errorf("Verify: %s: %w: %w", c.name, ErrInternalInvariant, err)
		}
		if !ok {
			return fmt.Errorf("Verify: %w: %s", ErrInternalInvariant, c.name)
		}
	}

	return nil
}

// columnRange returns [from, to) as an index slice.
func columnRange(from, to int) []int {
	out := make([]int, 0, to-from)
	for j := from; j < to; j++ {
		out = append(out, j)
	}

	return out
}

// blockIsIdentity reports whether the size×size block of m starting at
// column col0 is the identity.
func blockIsIdentity(m *matrix.Dense, col0, size int, tol float64) (bool, error) {
	if m.Rows() != size {
		return false, nil
	}
	block, err := m.SelectColumns(columnRange(col0, col0+size))
	if err != nil {
		return false, err
	}
	I, err := matrix.NewIdentity(size)
	if err != nil {
		return false, err
	}

	return matrix.AllClose(block, I, 0, tol)
}

// productIsZero reports whether x·yᵗ is zero, each entry within tol relative
// to the magnitude of the products summed into it.
func productIsZero(x, y *matrix.Dense, tol float64) (bool, error) {
	yt, err := matrix.Transpose(y)
	if err != nil {
		return false, err
	}
	prod, err := matrix.Mul(x, yt)
	if err != nil {
		return false, err
	}

	xr, yr := x.ToRows(), y.ToRows()
	for i, row := range prod.ToRows() {
		for j, v := range row {
			var mag float64
			for k := range xr[i] {
				mag += math.Abs(xr[i][k] * yr[j][k])
			}
			if math.Abs(v) > tol*math.Max(1, mag) {
				return false, nil
			}
		}
	}

	return true, nil
}
