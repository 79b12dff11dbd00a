package lsh

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"slices"
)

// ErrInvalidParams is returned by NewParams for non-positive sizes.
var ErrInvalidParams = errors.New("lsh: invalid parameters")

// Params holds the random projections and offsets of one index.
type Params struct {
	bits        int
	dim         int
	width       float64
	projections [][]float32
	offsets     []float32
}

// NewParams draws bits projection vectors of length dim and bits offsets
// from a generator seeded with seed. The same seed always yields the same
// parameters. width is the configured bucket width; it is carried for
// inspection and does not change the hash.
func NewParams(bits, dim int, width float64, seed uint64) (*Params, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("%w: hash bits must be positive, got %d", ErrInvalidParams, bits)
	}
	if dim <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidParams, dim)
	}

	rng := rand.New(rand.NewSource(int64(seed))) //nolint:gosec

	// One backing array keeps the projections contiguous.
	data := make([]float32, bits*dim)
	projections := make([][]float32, bits)
	offsets := make([]float32, bits)
	for i := range bits {
		row := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range row {
			row[j] = float32(rng.NormFloat64())
		}
		projections[i] = row
		offsets[i] = float32(rng.Float64() * float64(bits))
	}

	return &Params{
		bits:        bits,
		dim:         dim,
		width:       width,
		projections: projections,
		offsets:     offsets,
	}, nil
}

// Bits returns the signature length.
func (p *Params) Bits() int { return p.bits }

// Dimension returns the embedding length the projections expect.
func (p *Params) Dimension() int { return p.dim }

// Width returns the configured bucket width.
func (p *Params) Width() float64 { return p.width }

// Projection returns a copy of the i-th projection vector.
func (p *Params) Projection(i int) []float32 { return slices.Clone(p.projections[i]) }

// Offset returns the i-th offset.
func (p *Params) Offset(i int) float32 { return p.offsets[i] }

// cell returns floor(|dot + offset[i]| / bits) for bit i.
func (p *Params) cell(i int, embedding []float32) int64 {
	var dot float32
	for j, v := range p.projections[i] {
		dot += embedding[j] * v
	}
	return int64(math.Floor(math.Abs(float64(dot+p.offsets[i])) / float64(p.bits)))
}
