package topology

import (
	"fmt"

	"github.com/katalvlaran/nettopo/matrix"
)

// Partition splits the branch indices [0,m) of A into tree and link sets.
//
//	Tree:  n distinct 0-based column indices forming a nonsingular A_T, ascending.
//	Links: the remaining m−n indices, ascending.
//
// A Partition is produced once per computation by SelectTree and read by the
// builders; it is never cached across inputs.
type Partition struct {
	Tree  []int
	Links []int
}

// Permutation returns Tree ∥ Links, the tree-then-link column order.
func (p Partition) Permutation() []int {
	perm := make([]int, 0, len(p.Tree)+len(p.Links))
	perm = append(perm, p.Tree...)

	return append(perm, p.Links...)
}

// validate checks that p splits [0,m) exactly once with |Tree| == n.
// Any violation is an ErrInternalInvariant: the selector never produces one.
func (p Partition) validate(n, m int) error {
	if len(p.Tree) != n || len(p.Tree)+len(p.Links) != m {
		return fmt.Errorf("%w: partition sizes tree=%d links=%d, want tree=%d links=%d",
			ErrInternalInvariant, len(p.Tree), len(p.Links), n, m-n)
	}
	seen := make([]bool, m)
	for _, idx := range p.Permutation() {
		if idx < 0 || idx >= m {
			return fmt.Errorf("%w: branch index %d outside [0,%d)", ErrInternalInvariant, idx, m)
		}
		if seen[idx] {
			return fmt.Errorf("%w: branch index %d appears twice", ErrInternalInvariant, idx)
		}
		seen[idx] = true
	}

	return nil
}

// Result is the outcome of Compute. All matrices are in tree-then-link column
// order and are fresh values owned by the caller.
type Result struct {
	// ColumnOrder holds "b<k>" labels, k = 1-based original branch number.
	ColumnOrder []string `json:"column_order" yaml:"column_order"`

	// TreeIndices holds the 1-based original branch numbers of the tree.
	TreeIndices []int `json:"tree_indices_original" yaml:"tree_indices_original"`

	// LinkIndices holds the 1-based original branch numbers of the links.
	LinkIndices []int `json:"link_indices_original" yaml:"link_indices_original"`

	// AReordered is A with columns permuted to tree-then-link order (n×m).
	AReordered *matrix.Dense `json:"A_reordered" yaml:"A_reordered"`

	// B is the fundamental loop matrix ((m−n)×m).
	B *matrix.Dense `json:"B_matrix" yaml:"B_matrix"`

	// C is the fundamental cutset matrix (n×m).
	C *matrix.Dense `json:"C_matrix" yaml:"C_matrix"`

	// Partition is the 0-based split the matrices were built from.
	Partition Partition `json:"-" yaml:"-"`
}

// oneBased converts 0-based branch indices into 1-based branch numbers.
func oneBased(idx []int) []int {
	out := make([]int, len(idx))
	for i, v := range idx {
		out[i] = v + 1
	}

	return out
}
