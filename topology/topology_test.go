package topology_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/nettopo/matrix"
	"github.com/katalvlaran/nettopo/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-12

// mustDense builds a *matrix.Dense from literal rows or fails the test.
func mustDense(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err)

	return m
}

// assertRows compares m with want row by row within tol.
func assertRows(t *testing.T, want [][]float64, m *matrix.Dense) {
	t.Helper()
	require.Equal(t, len(want), m.Rows(), "rows")
	got := m.ToRows()
	for i := range want {
		require.Len(t, got[i], len(want[i]), "row %d", i)
		assert.InDeltaSlice(t, want[i], got[i], tol, "row %d", i)
	}
}

// frontendSample is the 3-node, 6-branch network shipped as the UI default.
var frontendSample = [][]float64{
	{-1, 1, 1, 0, 0, 0},
	{0, -1, 0, 1, 1, 0},
	{0, 0, -1, 0, -1, 1},
}

func TestCompute_TwoNodeScenario(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 0, 1},
		{0, 1, -1},
	})

	r, err := topology.Compute(a)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, r.TreeIndices)
	assert.Equal(t, []int{3}, r.LinkIndices)
	assert.Equal(t, []string{"b1", "b2", "b3"}, r.ColumnOrder)
	assertRows(t, [][]float64{{1, 0, 1}, {0, 1, -1}}, r.AReordered)
	assertRows(t, [][]float64{{-1, 1, 1}}, r.B)
	assertRows(t, [][]float64{{1, 0, 1}, {0, 1, -1}}, r.C)
	require.NoError(t, topology.Verify(a, r, 1e-9))
}

func TestCompute_FrontendSample(t *testing.T) {
	a := mustDense(t, frontendSample)

	r, err := topology.Compute(a)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, r.TreeIndices)
	assert.Equal(t, []int{4, 5, 6}, r.LinkIndices)
	assert.Equal(t, []string{"b1", "b2", "b3", "b4", "b5", "b6"}, r.ColumnOrder)
	assertRows(t, [][]float64{
		{1, 1, 0, 1, 0, 0},
		{0, 1, -1, 0, 1, 0},
		{1, 0, 1, 0, 0, 1},
	}, r.B)
	assertRows(t, [][]float64{
		{1, 0, 0, -1, 0, -1},
		{0, 1, 0, -1, -1, 0},
		{0, 0, 1, 0, 1, -1},
	}, r.C)
	require.NoError(t, topology.Verify(a, r, 1e-9))
}

func TestCompute_SkipsSingularLeadingCombination(t *testing.T) {
	// Columns {0,1} are parallel; {0,2} and {1,2} are both valid trees.
	a := mustDense(t, [][]float64{
		{1, 1, 0},
		{1, 1, 1},
	})

	r, err := topology.Compute(a)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, r.TreeIndices, "lexicographically first valid tree")
	assert.Equal(t, []int{2}, r.LinkIndices)
	assert.Equal(t, []string{"b1", "b3", "b2"}, r.ColumnOrder)
	assertRows(t, [][]float64{{1, 0, 1}, {1, 1, 1}}, r.AReordered)
	assertRows(t, [][]float64{{-1, 0, 1}}, r.B)
	assertRows(t, [][]float64{{1, 0, 1}, {0, 1, 0}}, r.C)
	require.NoError(t, topology.Verify(a, r, 1e-9))
}

func TestCompute_NoLinks(t *testing.T) {
	a := mustDense(t, [][]float64{
		{0, 1},
		{1, 0},
	})

	r, err := topology.Compute(a)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, r.TreeIndices)
	assert.Empty(t, r.LinkIndices)
	assert.Equal(t, 0, r.B.Rows())
	assert.Equal(t, 2, r.B.Cols())
	assertRows(t, [][]float64{{1, 0}, {0, 1}}, r.C)
	require.NoError(t, topology.Verify(a, r, 1e-9))
}

func TestCompute_InvalidTopology(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 1},
		{1, 1},
	})

	r, err := topology.Compute(a)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, topology.ErrInvalidTopology)
	assert.NotErrorIs(t, err, topology.ErrInternalInvariant)
}

func TestCompute_OverflowingReducedLinks(t *testing.T) {
	// Branch 1 is a valid tree (|det| = 1e-5), but F = 1e308 / 1e-5 overflows.
	a := mustDense(t, [][]float64{{1e-5, 1e308}})

	r, err := topology.Compute(a)
	assert.Nil(t, r)
	assert.ErrorIs(t, err, topology.ErrNumericRange)
	assert.ErrorIs(t, err, matrix.ErrNaNInf)
	assert.NotErrorIs(t, err, topology.ErrInternalInvariant)

	_, _, err = topology.ComputeRows([][]float64{{1e-5, 1e308}})
	assert.ErrorIs(t, err, topology.ErrNumericRange)
}

func TestCompute_MalformedInput(t *testing.T) {
	t.Run("fewer branches than nodes", func(t *testing.T) {
		_, err := topology.Compute(mustDense(t, [][]float64{{1}, {-1}}))
		assert.ErrorIs(t, err, topology.ErrMalformedInput)
	})
	t.Run("nil", func(t *testing.T) {
		_, err := topology.Compute(nil)
		assert.ErrorIs(t, err, topology.ErrMalformedInput)
		assert.ErrorIs(t, err, matrix.ErrNilMatrix)
	})
	t.Run("branch limit", func(t *testing.T) {
		_, err := topology.Compute(mustDense(t, frontendSample), topology.WithMaxBranches(5))
		assert.ErrorIs(t, err, topology.ErrMalformedInput)
	})
}

func TestComputeRows_MalformedInput(t *testing.T) {
	cases := map[string][][]float64{
		"empty":  {},
		"ragged": {{1, 0, 1}, {0, 1}},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := topology.ComputeRows(rows)
			assert.ErrorIs(t, err, topology.ErrMalformedInput)
		})
	}

	r, a, err := topology.ComputeRows([][]float64{{1, 0, 1}, {0, 1, -1}})
	require.NoError(t, err)
	assert.Equal(t, 3, a.Cols())
	assert.Equal(t, []int{3}, r.LinkIndices)
}

func TestSelectTree_AbsoluteTolerance(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1e-5, 0},
		{0, 1e-5},
	})

	// |det| = 1e-10 is below the default absolute threshold, regardless of scale.
	_, err := topology.SelectTree(a)
	assert.ErrorIs(t, err, topology.ErrInvalidTopology)

	p, err := topology.SelectTree(a, topology.WithTolerance(1e-12))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, p.Tree)
}

func TestSelectTree_Deterministic(t *testing.T) {
	a := mustDense(t, frontendSample)
	first, err := topology.SelectTree(a)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		p, err := topology.SelectTree(a)
		require.NoError(t, err)
		assert.Equal(t, first, p)
	}
}

// randomIncidence returns the reduced incidence matrix of a random connected
// multigraph on nodes+1 vertices (vertex 0 is the reference) with m branches.
func randomIncidence(r *rand.Rand, nodes, m int) [][]float64 {
	rows := make([][]float64, nodes)
	for i := range rows {
		rows[i] = make([]float64, m)
	}
	mark := func(v, branch int, sign float64) {
		if v > 0 {
			rows[v-1][branch] = sign
		}
	}
	for b := 0; b < m; b++ {
		var from, to int
		if b < nodes {
			// chain first so the graph is connected
			from, to = b, b+1
		} else {
			from = r.Intn(nodes + 1)
			to = (from + 1 + r.Intn(nodes)) % (nodes + 1)
		}
		if r.Intn(2) == 0 {
			from, to = to, from
		}
		mark(from, b, 1)
		mark(to, b, -1)
	}

	return rows
}

// firstTreeReference enumerates 3-subsets with plain nested loops.
func firstTreeReference(t *testing.T, a *matrix.Dense) []int {
	t.Helper()
	m := a.Cols()
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			for k := j + 1; k < m; k++ {
				sub, err := a.SelectColumns([]int{i, j, k})
				require.NoError(t, err)
				d, err := matrix.Det(sub)
				require.NoError(t, err)
				if d > topology.DefaultTolerance || d < -topology.DefaultTolerance {
					return []int{i, j, k}
				}
			}
		}
	}

	return nil
}

func TestSelectTree_MatchesReferenceEnumeration(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for trial := 0; trial < 50; trial++ {
		m := 3 + r.Intn(5)
		a := mustDense(t, randomIncidence(r, 3, m))

		p, err := topology.SelectTree(a)
		require.NoError(t, err, "trial %d", trial)
		assert.Equal(t, firstTreeReference(t, a), p.Tree, "trial %d", trial)

		// Partition completeness: every branch exactly once.
		seen := make(map[int]int)
		for _, idx := range p.Permutation() {
			seen[idx]++
		}
		require.Len(t, seen, m)
		for idx := 0; idx < m; idx++ {
			assert.Equal(t, 1, seen[idx], "branch %d", idx)
		}
		assert.IsIncreasing(t, p.Links)

		res, err := topology.Compute(a)
		require.NoError(t, err)
		require.NoError(t, topology.Verify(a, res, 1e-9), "trial %d", trial)
	}
}

func TestBuilders_InvalidPartition(t *testing.T) {
	a := mustDense(t, [][]float64{
		{1, 1, 0},
		{1, 1, 1},
	})
	cases := []struct {
		name string
		p    topology.Partition
	}{
		{"singular tree", topology.Partition{Tree: []int{0, 1}, Links: []int{2}}},
		{"duplicate", topology.Partition{Tree: []int{0, 0}, Links: []int{2}}},
		{"out of range", topology.Partition{Tree: []int{0, 3}, Links: []int{1}}},
		{"wrong size", topology.Partition{Tree: []int{0}, Links: []int{1, 2}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := topology.LoopMatrix(a, tc.p)
			assert.ErrorIs(t, err, topology.ErrInternalInvariant)
			assert.NotErrorIs(t, err, topology.ErrInvalidTopology)

			_, err = topology.CutsetMatrix(a, tc.p)
			assert.ErrorIs(t, err, topology.ErrInternalInvariant)

			_, _, err = topology.Reorder(a, tc.p)
			if tc.name != "singular tree" {
				assert.ErrorIs(t, err, topology.ErrInternalInvariant)
			}
		})
	}
}

func TestBuilders_UseOriginalColumnOrder(t *testing.T) {
	a := mustDense(t, frontendSample)
	p := topology.Partition{Tree: []int{1, 3, 5}, Links: []int{0, 2, 4}}

	b, err := topology.LoopMatrix(a, p)
	require.NoError(t, err)
	c, err := topology.CutsetMatrix(a, p)
	require.NoError(t, err)
	reordered, labels, err := topology.Reorder(a, p)
	require.NoError(t, err)

	assert.Equal(t, []string{"b2", "b4", "b6", "b1", "b3", "b5"}, labels)
	assertRows(t, [][]float64{
		{1, 0, 0, -1, 1, 0},
		{-1, 1, 0, 0, 0, 1},
		{0, 0, 1, 0, -1, -1},
	}, reordered)

	// F is shared: C's link block equals -(B's tree block)^T.
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cv, err := c.At(i, 3+j)
			require.NoError(t, err)
			bv, err := b.At(j, i)
			require.NoError(t, err)
			assert.InDelta(t, cv, -bv, tol)
		}
	}

	res := &topology.Result{AReordered: reordered, B: b, C: c, Partition: p}
	require.NoError(t, topology.Verify(a, res, 1e-9))
}

func TestVerify_DetectsCorruption(t *testing.T) {
	a := mustDense(t, frontendSample)
	r, err := topology.Compute(a)
	require.NoError(t, err)

	require.NoError(t, r.B.Set(0, 0, 42))
	err = topology.Verify(a, r, 1e-9)
	assert.ErrorIs(t, err, topology.ErrInternalInvariant)

	assert.ErrorIs(t, topology.Verify(a, nil, 1e-9), topology.ErrInternalInvariant)
}

func TestVerify_LargeEntries(t *testing.T) {
	// A·Bᵗ = 1e9 − 7·fl(1e9/7) leaves a rounding residue near 1e-7, far above
	// 1e-9 in absolute terms but tiny next to the 2e9 magnitude of its terms.
	a := mustDense(t, [][]float64{{7, 1e9}})
	r, err := topology.Compute(a)
	require.NoError(t, err)
	require.NoError(t, topology.Verify(a, r, 1e-9))

	require.NoError(t, r.B.Set(0, 1, 1.5))
	assert.ErrorIs(t, topology.Verify(a, r, 1e-9), topology.ErrInternalInvariant)
}

func TestBranchLabel(t *testing.T) {
	assert.Equal(t, "b1", topology.BranchLabel(0))
	assert.Equal(t, "b12", topology.BranchLabel(11))
}

func TestOptions_PanicOnNonsense(t *testing.T) {
	assert.Panics(t, func() { topology.WithTolerance(0) })
	assert.Panics(t, func() { topology.WithTolerance(-1) })
	assert.Panics(t, func() { topology.WithMaxBranches(-1) })
	assert.Equal(t, topology.Options{Tolerance: 1e-9, MaxBranches: 0}, topology.DefaultOptions())
}
