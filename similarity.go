package lshdb

import "github.com/hupe1980/lshdb/distance"

// CosineSimilarity returns dot(a,b) / (|a| * |b|). It is NaN when either
// vector has zero norm.
func CosineSimilarity(a, b []float32) (float32, error) {
	sim, err := distance.CosineSimilarity(a, b)
	if err != nil {
		return 0, &ErrDimensionMismatch{Expected: len(a), Actual: len(b), cause: err}
	}
	return sim, nil
}
