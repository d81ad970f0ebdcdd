package topology

import "errors"

// ErrMalformedInput indicates that A cannot describe a network by construction:
// nil or empty, ragged or non-finite rows, fewer branches than nodes, or more
// branches than the configured limit. Detected before the tree search starts.
var ErrMalformedInput = errors.New("topology: malformed input")

// ErrInvalidTopology indicates that no n-branch subset of A forms a
// nonsingular submatrix, i.e. A does not encode a connected network with a
// spanning tree of the required size. It is a property of the input; retrying
// with the same A cannot succeed.
var ErrInvalidTopology = errors.New("topology: invalid graph topology: could not find a valid tree")

// ErrInternalInvariant indicates that a builder received a partition violating
// the selector's guarantees (not a split of [0,m), or a singular tree block).
// It signals a broken internal contract rather than bad input.
var ErrInternalInvariant = errors.New("topology: internal invariant violation")

// ErrNumericRange indicates that A selects a valid tree but F = A_T⁻¹·A_L
// leaves the float64 range (entries of wildly different magnitude, such as
// 1e-5 beside 1e308). Like ErrInvalidTopology it is a property of the input.
var ErrNumericRange = errors.New("topology: result not representable: entries overflow float64")
