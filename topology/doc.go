// Package topology derives the fundamental topological matrices of an
// electrical network from its reduced incidence matrix.
//
// What & Why
//
//   - Input: the reduced incidence matrix A (n×m) of a connected network:
//     n independent nodes (one reference node omitted), m branches, m ≥ n.
//
//   - A spanning tree is any n branches whose columns of A are linearly
//     independent, i.e. the n×n submatrix A_T is nonsingular. The remaining
//     m−n branches are links; each link closes exactly one fundamental loop.
//
//   - With F = A_T⁻¹·A_L the package assembles, in tree-then-link column order:
//
//     B = [ −Fᵗ | I_{m−n} ]   fundamental loop (tie-set) matrix, one row per link
//     C = [ I_n  | F       ]   fundamental cutset matrix, one row per tree branch
//
// Operations
//
//   - SelectTree(A, opts...) (Partition, error)
//     Enumerates size-n branch combinations in lexicographic order and returns
//     the FIRST one whose |det(A_T)| exceeds the tolerance (1e-9 by default).
//     The tolerance is an absolute threshold, not relative to the scale of A.
//
//   - LoopMatrix(A, p) / CutsetMatrix(A, p)
//     Build B and C from the original, unpermuted A and a partition.
//
//   - Reorder(A, p)
//     Permute A's columns to tree-then-link order and label them "b<k>" with
//     1-based original branch numbers.
//
//   - Compute(A, opts...) / ComputeRows(rows, opts...)
//     The one-shot pipeline: SelectTree → {LoopMatrix, CutsetMatrix, Reorder}.
//
//   - Verify(A, r, tol)
//     Re-checks the structural identities of a Result (identity blocks,
//     A_reordered·Bᵗ = 0, B·Cᵗ = 0).
//
// Determinism
//
//   - "First match wins" is a contract, not an implementation detail: for an A
//     with several valid trees, the lexicographically smallest qualifying index
//     combination is returned on every call. Any change to the enumeration
//     (pruning, parallel search) must preserve that tie-break.
//
// Error Conditions
//
//   - ErrMalformedInput: nil or empty A, non-rectangular or non-finite rows,
//     m < n, or m above the configured branch limit. Raised before any search.
//   - ErrInvalidTopology: no nonsingular n×n column submatrix exists.
//   - ErrNumericRange: a tree exists but F = A_T⁻¹·A_L overflows float64.
//   - ErrInternalInvariant: a builder received a partition that is not a
//     valid split of [0,m) or whose tree submatrix is singular.
//
// Complexity
//
//   - SelectTree: worst case C(m,n) determinants, O(n³) each. Intended for
//     physical circuit sizes only.
//   - LoopMatrix/CutsetMatrix: O(n³ + n²(m−n)).
//
// Concurrency
//
//   - No package state. Every call allocates its own working set, so calls may
//     run concurrently on shared, read-only inputs.
package topology
