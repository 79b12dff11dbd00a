package lsh

import (
	"sync"

	"github.com/bits-and-blooms/bitset"
)

var bitsPool sync.Pool

// Signature is a fixed-length bit string produced by a Func.
//
// The bit storage is pooled. The receiver of a Signature owns it and must
// call Release once it is no longer needed; the Signature must not be read
// after that. Each handle releases its storage at most once, so repeated
// calls to Release are no-ops.
type Signature struct {
	bits *bitset.BitSet
	n    int
}

func newSignature(n int) *Signature {
	bits, _ := bitsPool.Get().(*bitset.BitSet)
	if bits == nil || bits.Len() != uint(n) {
		bits = bitset.New(uint(n))
	} else {
		bits.ClearAll()
	}
	return &Signature{bits: bits, n: n}
}

// NewSignature returns a zeroed signature of n bits, for custom Func
// implementations.
func NewSignature(n int) *Signature {
	return newSignature(n)
}

// Len returns the number of bits.
func (s *Signature) Len() int { return s.n }

// Set sets bit i.
func (s *Signature) Set(i int) { s.bits.Set(uint(i)) }

// Test reports whether bit i is set.
func (s *Signature) Test(i int) bool { return s.bits.Test(uint(i)) }

// Count returns the number of set bits.
func (s *Signature) Count() int { return int(s.bits.Count()) }

// Equal reports whether both signatures have the same length and bits.
func (s *Signature) Equal(o *Signature) bool {
	return s.n == o.n && s.bits.Equal(o.bits)
}

// Key renders the signature as exactly Len() characters, '1' for set bits
// and '0' otherwise.
func (s *Signature) Key() string {
	key := make([]byte, s.n)
	for i := range key {
		if s.bits.Test(uint(i)) {
			key[i] = '1'
		} else {
			key[i] = '0'
		}
	}
	return string(key)
}

// Release returns the bit storage to the pool.
func (s *Signature) Release() {
	if s == nil || s.bits == nil {
		return
	}
	bitsPool.Put(s.bits)
	s.bits = nil
	s.n = 0
}
