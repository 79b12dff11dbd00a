// Package bucket maps signature keys to the store positions hashed to them.
package bucket

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Index is the bucket index. Each key owns a roaring bitmap of positions.
//
// Positions are handed out in increasing order, so the ascending iteration
// order of a bitmap is also insertion order. Index is not safe for
// concurrent use.
type Index struct {
	buckets map[string]*roaring.Bitmap
	size    uint64
}

// New creates an empty bucket index.
func New() *Index {
	return &Index{buckets: make(map[string]*roaring.Bitmap)}
}

// Add records pos under key, creating the bucket if absent.
func (x *Index) Add(key string, pos uint32) {
	bm, ok := x.buckets[key]
	if !ok {
		bm = roaring.New()
		x.buckets[key] = bm
	}
	if bm.CheckedAdd(pos) {
		x.size++
	}
}

// Lookup returns the positions stored under key in insertion order.
// ok is false when no insertion ever used key.
func (x *Index) Lookup(key string) (positions []uint32, ok bool) {
	bm, ok := x.buckets[key]
	if !ok {
		return nil, false
	}
	return bm.ToArray(), true
}

// BucketSize returns the number of positions under key.
func (x *Index) BucketSize(key string) int {
	bm, ok := x.buckets[key]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// Contains reports whether pos is stored under key.
func (x *Index) Contains(key string, pos uint32) bool {
	bm, ok := x.buckets[key]
	return ok && bm.Contains(pos)
}

// Len returns the number of populated buckets.
func (x *Index) Len() int { return len(x.buckets) }

// Size returns the number of positions across all buckets.
func (x *Index) Size() int { return int(x.size) }

// Keys returns every populated key in unspecified order.
func (x *Index) Keys() []string {
	keys := make([]string, 0, len(x.buckets))
	for k := range x.buckets {
		keys = append(keys, k)
	}
	return keys
}

// Reset drops every bucket.
func (x *Index) Reset() {
	clear(x.buckets)
	x.size = 0
}
