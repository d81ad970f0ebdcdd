// SPDX-License-Identifier: MIT

// Package matrix - Dense storage (row-major) & safe accessors.
//
// Purpose:
//   - Provide a cache-friendly row-major buffer with the explicit index formula i*cols + j.
//   - Guarantee safety at the public surface: At/Set return errors instead of panicking.
//   - Enforce the finite-only numeric policy from a single place (Set, FromRows).
//   - Bridge to [][]float64 for wire formats (JSON/YAML) without exposing the buffer.
//
// Complexity quicksheet:
//   - NewDense: O(r*c) zero-init; At/Set: O(1); Clone: O(r*c); FromRows/ToRows: O(r*c).

package matrix

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// ---------- error context tags ----------

const (
	ctxAt       = "At"       // method tag used in error wrappers
	ctxSet      = "Set"      // method tag used in error wrappers
	ctxFromRows = "FromRows" // ctor tag for FromRows
	ctxSelect   = "SelectColumns"
)

// ---------- Formatting literals ----------
const (
	_fmtRowOpen  = "["
	_fmtRowClose = "]\n"
	_fmtSep      = ", "
)

// denseErrorf wraps an error with a uniform Dense context and callsite indices.
// Keeps the "Dense.<method>(row,col): <sentinel>" shape for every accessor.
func denseErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, err)
}

// Dense is a concrete row-major matrix.
//   - r,c hold dimensions (rows, cols).
//   - data is a flat buffer of length r*c in row-major order (offset = i*c + j).
type Dense struct {
	r, c int       // row and column counts (zero allowed only for kernel results)
	data []float64 // contiguous row-major storage (len == r*c)
}

// Compile-time assertions for encoder & fmt.Stringer conformance.
var (
	_ fmt.Stringer     = (*Dense)(nil)
	_ json.Marshaler   = (*Dense)(nil)
	_ json.Unmarshaler = (*Dense)(nil)
)

// NewDense creates an r×c zero matrix using row-major storage.
//
// Implementation:
//   - Stage 1: validate rows>0 && cols>0; else ErrInvalidDimensions.
//   - Stage 2: allocate zero-filled buffer.
//
// Errors:
//   - ErrInvalidDimensions (shape contract violation).
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// newDenseZeroOK is the internal constructor that allows rows==0 or cols==0.
// Kernels use it for legal zero-area results (n×0 selections, 0×m blocks).
func newDenseZeroOK(rows, cols int) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, ErrInvalidDimensions
	}

	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// FromRows builds a Dense from a row-slice representation.
//
// Implementation:
//   - Stage 1: reject an empty outer slice or an empty first row (ErrInvalidDimensions).
//   - Stage 2: every row must have the length of row 0 (ErrRagged).
//   - Stage 3: every value must be finite (ErrNaNInf).
//   - Stage 4: copy into a fresh flat buffer; the input is never retained.
//
// Errors carry the offending coordinates, e.g. "FromRows: row 2: matrix: rows have different lengths".
//
// Complexity:
//   - Time O(r*c), Space O(r*c).
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: %w", ctxFromRows, ErrInvalidDimensions)
	}
	r, c := len(rows), len(rows[0])

	m := &Dense{r: r, c: c, data: make([]float64, r*c)}
	var i, j int
	var v float64
	for i = 0; i < r; i++ {
		if len(rows[i]) != c {
			return nil, fmt.Errorf("%s: row %d has %d values, want %d: %w", ctxFromRows, i, len(rows[i]), c, ErrRagged)
		}
		for j = 0; j < c; j++ {
			v = rows[i][j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, denseErrorf(ctxFromRows, i, j, ErrNaNInf)
			}
			m.data[i*c+j] = v
		}
	}

	return m, nil
}

// Rows returns the row count. No side effects.
// Complexity: O(1).
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count. No side effects.
// Complexity: O(1).
func (m *Dense) Cols() int { return m.c }

// Shape packs Rows() and Cols() into a single call for convenience.
// Complexity: O(1).
func (m *Dense) Shape() (rows, cols int) { return m.r, m.c }

// indexOf computes the row-major offset or returns ErrOutOfRange.
// Public methods (At/Set) wrap the sentinel with coordinates and method name.
func (m *Dense) indexOf(row, col int) (int, error) {
	if row < 0 || row >= m.r {
		return 0, ErrOutOfRange
	}
	if col < 0 || col >= m.c {
		return 0, ErrOutOfRange
	}

	// Row-major offset: i*c + j.
	return row*m.c + col, nil
}

// At returns the value at (row, col) or ErrOutOfRange.
// Never panics on out-of-range.
// Complexity: O(1).
func (m *Dense) At(row, col int) (float64, error) {
	off, err := m.indexOf(row, col)
	if err != nil {
		return 0, denseErrorf(ctxAt, row, col, err)
	}

	return m.data[off], nil
}

// Set stores v at (row, col).
//
// Errors:
//   - ErrOutOfRange for bounds; ErrNaNInf for non-finite values.
//
// Complexity: O(1).
func (m *Dense) Set(row, col int, v float64) error {
	off, err := m.indexOf(row, col)
	if err != nil {
		return denseErrorf(ctxSet, row, col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return denseErrorf(ctxSet, row, col, ErrNaNInf)
	}
	m.data[off] = v

	return nil
}

// Clone returns a deep copy (new buffer, same shape).
// Complexity: O(r*c).
func (m *Dense) Clone() *Dense {
	cp := make([]float64, len(m.data))
	copy(cp, m.data)

	return &Dense{r: m.r, c: m.c, data: cp}
}

// ToRows returns an independent [][]float64 copy of the matrix.
// A zero-row matrix yields an empty, non-nil slice so that encoders emit [] rather than null.
// Complexity: O(r*c).
func (m *Dense) ToRows() [][]float64 {
	out := make([][]float64, m.r)
	for i := 0; i < m.r; i++ {
		row := make([]float64, m.c)
		copy(row, m.data[i*m.c:(i+1)*m.c])
		out[i] = row
	}

	return out
}

// Row returns a copy of row i.
//
// Errors:
//   - ErrOutOfRange when i is outside [0, Rows()).
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, denseErrorf(ctxAt, i, 0, ErrOutOfRange)
	}
	row := make([]float64, m.c)
	copy(row, m.data[i*m.c:(i+1)*m.c])

	return row, nil
}

// MarshalJSON encodes the matrix as an array of rows.
func (m *Dense) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToRows())
}

// UnmarshalJSON decodes an array of rows with the same validation as FromRows.
func (m *Dense) UnmarshalJSON(b []byte) error {
	var rows [][]float64
	if err := json.Unmarshal(b, &rows); err != nil {
		return err
	}
	d, err := FromRows(rows)
	if err != nil {
		return err
	}
	*m = *d

	return nil
}

// MarshalYAML encodes the matrix as a sequence of rows (gopkg.in/yaml.v3 Marshaler).
func (m *Dense) MarshalYAML() (interface{}, error) {
	return m.ToRows(), nil
}

// String provides a readable row-wise dump for diagnostics.
// Not for hot paths; intended for logs and debugging.
func (m *Dense) String() string {
	var b strings.Builder
	var i, j, base int
	for i = 0; i < m.r; i++ {
		b.WriteString(_fmtRowOpen)
		base = i * m.c
		for j = 0; j < m.c; j++ {
			b.WriteString(fmt.Sprintf("%g", m.data[base+j]))
			if j+1 < m.c {
				b.WriteString(_fmtSep)
			}
		}
		b.WriteString(_fmtRowClose)
	}

	return b.String()
}

// SelectColumns materializes a copy of the columns at colsIdx, in that order.
//
// Implementation:
//   - Stage 1: validate every index against [0, Cols()).
//   - Stage 2: allocate Rows()×len(colsIdx) (zero columns is legal).
//   - Stage 3: copy with direct offset math, i→j.
//
// Behavior highlights:
//   - Duplicates are allowed (repeated columns in the result).
//   - The receiver is never mutated.
//
// Errors:
//   - ErrOutOfRange (index outside bounds).
//
// Complexity:
//   - Time O(r*k), Space O(r*k) for k = len(colsIdx).
func (m *Dense) SelectColumns(colsIdx []int) (*Dense, error) {
	k := len(colsIdx)
	var j int
	for j = 0; j < k; j++ {
		if colsIdx[j] < 0 || colsIdx[j] >= m.c {
			return nil, fmt.Errorf("Dense.%s: col index %d: %w", ctxSelect, colsIdx[j], ErrOutOfRange)
		}
	}

	res, err := newDenseZeroOK(m.r, k)
	if err != nil {
		return nil, err
	}
	var i, base int
	for i = 0; i < m.r; i++ {
		base = i * m.c
		for j = 0; j < k; j++ {
			res.data[i*k+j] = m.data[base+colsIdx[j]]
		}
	}

	return res, nil
}
