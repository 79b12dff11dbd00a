package testutil

import (
	"cmp"
	"math"
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/lshdb/distance"
)

// SearchResult is a position with its similarity to a query.
type SearchResult struct {
	Position int
	Score    float32
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// FillGaussian fills dst with standard normal values.
func (r *RNG) FillGaussian(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = float32(r.rand.NormFloat64())
	}
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
// Uses a single backing array.
func (r *RNG) GaussianVectors(num, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
func (r *RNG) UnitVectors(num, dimensions int) [][]float32 {
	vectors := r.GaussianVectors(num, dimensions)
	for _, vec := range vectors {
		normalize(vec)
	}
	return vectors
}

// UnitVector generates a single L2-normalized random vector.
func (r *RNG) UnitVector(dimensions int) []float32 {
	vec := make([]float32, dimensions)
	r.FillGaussian(vec)
	normalize(vec)
	return vec
}

// Perturb returns a copy of v with Gaussian noise of the given scale added
// to every component.
func (r *RNG) Perturb(v []float32, scale float32) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x + float32(r.rand.NormFloat64())*scale
	}
	return out
}

func normalize(v []float32) {
	n := distance.Norm(v)
	if n == 0 {
		return
	}
	inv := 1 / n
	for i := range v {
		v[i] *= inv
	}
}

// ExactTopK scores every vector against query by cosine similarity and
// returns the k best, highest first.
func ExactTopK(query []float32, vectors [][]float32, k int) []SearchResult {
	results := make([]SearchResult, 0, len(vectors))
	for i, v := range vectors {
		results = append(results, SearchResult{Position: i, Score: distance.Cosine(query, v)})
	}
	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	if k < len(results) {
		results = results[:k]
	}
	return results
}

// ComputeRecall computes recall@k by comparing approximate results against ground truth.
func ComputeRecall(groundTruth, approximate []SearchResult) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[int]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i].Position] = struct{}{}
	}

	hits := 0
	for _, r := range approximate {
		if _, ok := truthSet[r.Position]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}

// ApproxEqual reports whether a and b differ by at most eps, treating two
// NaNs as equal.
func ApproxEqual(a, b, eps float32) bool {
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return math.IsNaN(float64(a)) && math.IsNaN(float64(b))
	}
	return float32(math.Abs(float64(a-b))) <= eps
}
