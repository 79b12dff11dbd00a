// Package distance provides the similarity functions used to rank bucket
// candidates.
//
// # Supported Metrics
//
//   - MetricCosine: cosine similarity, dot(a,b) / (||a|| * ||b||) (default)
//   - MetricDot: raw inner product
//
// All functions assume equal-length inputs. Use CosineSimilarity when the
// lengths come from untrusted input and must be checked first.
//
// # Usage
//
//	sim := distance.Cosine(a, b)
//	sim, err := distance.CosineSimilarity(a, b)
package distance
