// Package matrix provides the dense numeric container and the small set of
// linear-algebra kernels used by network topology computations.
//
// What & Why:
//
//	Topology routines work on reduced incidence matrices: n rows (independent
//	nodes) by m columns (branches). They need column selection, block
//	assembly, products, transposes, determinants and inverses, and nothing
//	else. This package keeps exactly that surface:
//
//	  - Dense: row-major float64 storage with bounds-checked At/Set.
//	  - FromRows / ToRows: conversion from and to [][]float64 with strict
//	    rectangular and finite-value validation.
//	  - SelectColumns, HStack, Transpose, Mul, Scale, NewIdentity, AllClose.
//	  - Det and Inverse, delegated to gonum's LU factorization with partial
//	    pivoting (gonum.org/v1/gonum/mat).
//
// Determinism:
//
//	Every kernel uses fixed i→j→k loop orders and allocates a fresh result;
//	operands are never mutated. Values returned by this package are safe to
//	hand to another goroutine once construction finishes.
//
// Shapes:
//
//	Public constructors (NewDense, FromRows) reject empty shapes. Kernels may
//	legitimately produce zero-area results (an n×0 column selection, a 0×m
//	loop matrix for a network without links); such matrices are valid values
//	with an empty backing buffer.
//
// Errors:
//
//	All failures are reported through the sentinels in errors.go and can be
//	matched with errors.Is. No function panics on user input.
package matrix
