// Package testutil provides testing utilities for lshdb.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UnitVectors(100, 64)
//	near := rng.Perturb(vecs[0], 0.01)
//
// # Ground Truth
//
//	exact := testutil.ExactTopK(query, vecs, 10)
//	recall := testutil.ComputeRecall(exact, approx)
package testutil
