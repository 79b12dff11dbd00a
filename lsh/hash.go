package lsh

// Func computes the signature of embedding under p. The embedding length
// has already been checked against p.Dimension() by the caller.
type Func func(p *Params, embedding []float32) *Signature

// Hash is the default Func: one bit per projection, set when the quantized
// projection cell is odd.
func Hash(p *Params, embedding []float32) *Signature {
	sig := newSignature(p.bits)
	for i := range p.bits {
		if p.cell(i, embedding)%2 == 1 {
			sig.bits.Set(uint(i))
		}
	}
	return sig
}
