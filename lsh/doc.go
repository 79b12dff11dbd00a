// Package lsh implements the random-hyperplane locality-sensitive hash that
// partitions embeddings into buckets.
//
// A Params value holds nhash projection vectors drawn from a standard normal
// distribution and nhash offsets drawn uniformly from [0, nhash). Both are
// generated once from an explicit seed and are read-only afterwards, so a
// Params may be shared by concurrent readers.
//
// For every bit i the hash computes
//
//	dot_i  = Σ_j embedding[j] * projection[i][j]
//	cell_i = floor(|dot_i + offset[i]| / nhash)
//	bit_i  = cell_i is odd
//
// and returns the bits as a Signature. Signature.Key renders the bits as a
// string of '0' and '1' characters, usable as a map key.
package lsh
