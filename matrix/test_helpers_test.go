// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic fixtures and utilities for kernels.
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"testing"

	"github.com/katalvlaran/nettopo/matrix"
	"github.com/stretchr/testify/require"
)

// defaultTol is the absolute tolerance used by CompareClose.
const defaultTol = 1e-12

// MustFromRows builds a *Dense from literal rows or fails the test.
func MustFromRows(t *testing.T, rows [][]float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.FromRows(rows)
	require.NoError(t, err, "matrix.FromRows")

	return m
}

// MustAt reads (i,j) or fails the test.
func MustAt(t *testing.T, m *matrix.Dense, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	require.NoError(t, err, "At(%d,%d)", i, j)

	return v
}

// CompareClose asserts that m has the shape of want and matches it within defaultTol.
func CompareClose(t *testing.T, want [][]float64, m *matrix.Dense) {
	t.Helper()
	require.Equal(t, len(want), m.Rows(), "rows")
	got := m.ToRows()
	for i := range want {
		require.Len(t, got[i], len(want[i]), "row %d width", i)
		require.InDeltaSlice(t, want[i], got[i], defaultTol, "row %d", i)
	}
}
