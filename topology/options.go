package topology

import (
	"fmt"
	"math"
)

// DefaultTolerance is the absolute |det| threshold above which a tree
// candidate is accepted as nonsingular.
const DefaultTolerance = 1e-9

// DefaultMaxBranches disables the branch-count limit.
const DefaultMaxBranches = 0

// Options configures SelectTree and Compute.
// Use DefaultOptions() for the zero-configuration behavior.
//
// Fields:
//
//	Tolerance   float64  absolute |det| threshold for accepting a tree.
//	MaxBranches int      reject inputs with more columns than this; 0 = unlimited.
type Options struct {
	Tolerance   float64
	MaxBranches int
}

// Option configures Options. All Option functions modify the pointed Options.
type Option func(*Options)

// DefaultOptions returns Options with DefaultTolerance and no branch limit.
func DefaultOptions() Options {
	return Options{
		Tolerance:   DefaultTolerance,
		MaxBranches: DefaultMaxBranches,
	}
}

// WithTolerance sets the absolute determinant threshold.
// Panics if tol is not a positive finite number (programmer error).
func WithTolerance(tol float64) Option {
	if !(tol > 0) || math.IsInf(tol, 0) {
		panic(fmt.Sprintf("topology: WithTolerance(%v): tolerance must be positive and finite", tol))
	}
	return func(o *Options) {
		o.Tolerance = tol
	}
}

// WithMaxBranches bounds the number of columns SelectTree accepts.
// The exhaustive search is exponential in m; servers exposed to untrusted
// input should set a limit. Panics if k < 0.
func WithMaxBranches(k int) Option {
	if k < 0 {
		panic(fmt.Sprintf("topology: WithMaxBranches(%d): limit must be >= 0", k))
	}
	return func(o *Options) {
		o.MaxBranches = k
	}
}

// gatherOptions applies opts over DefaultOptions.
func gatherOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}

	return o
}
