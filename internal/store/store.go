// Package store implements the growable, append-only entry store.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/lshdb/model"
)

// ErrGrowthDenied is returned when the store is full and growth failed.
var ErrGrowthDenied = errors.New("store: growth denied")

// Grower replaces the built-in growth step. It receives the valid entries,
// the current capacity and the capacity the grow ratio asks for, and returns
// the capacity it granted.
type Grower func(ctx context.Context, entries []model.Entry, capacity, requested int) (int, error)

// Options configures a Store.
type Options struct {
	// InitialCapacity is the number of slots allocated up front. Must be > 0.
	InitialCapacity int

	// GrowRatio multiplies the capacity on growth. Must be > 1.
	GrowRatio float64

	// Grower, when set, must approve every growth. A nil Grower grows in
	// memory unconditionally.
	Grower Grower
}

// Store is a contiguous sequence of entries with size <= capacity.
//
// Slots below Size are valid; slots in [Size, Capacity) are undefined.
// Positions handed out by Append stay valid across growth.
type Store struct {
	entries   []model.Entry
	size      int
	growRatio float64
	grower    Grower
}

// New allocates a store with the given options.
func New(opts Options) (*Store, error) {
	if opts.InitialCapacity <= 0 {
		return nil, fmt.Errorf("store: initial capacity must be positive, got %d", opts.InitialCapacity)
	}
	if opts.GrowRatio <= 1 {
		return nil, fmt.Errorf("store: grow ratio must be > 1, got %g", opts.GrowRatio)
	}
	return &Store{
		entries:   make([]model.Entry, opts.InitialCapacity),
		growRatio: opts.GrowRatio,
		grower:    opts.Grower,
	}, nil
}

// Size returns the number of valid entries.
func (s *Store) Size() int { return s.size }

// Capacity returns the number of allocated slots.
func (s *Store) Capacity() int { return len(s.entries) }

// Append stores e at position Size, growing first if the store is full.
// On growth failure nothing is recorded.
func (s *Store) Append(ctx context.Context, e model.Entry) (int, error) {
	if s.size == len(s.entries) {
		if err := s.grow(ctx); err != nil {
			return -1, err
		}
	}
	pos := s.size
	s.entries[pos] = e
	s.size++
	return pos, nil
}

// At returns the entry at pos. pos must be below Size.
func (s *Store) At(pos int) model.Entry {
	return s.entries[pos]
}

// Get returns the entry at pos and whether pos is valid.
func (s *Store) Get(pos int) (model.Entry, bool) {
	if pos < 0 || pos >= s.size {
		return model.Entry{}, false
	}
	return s.entries[pos], true
}

// Entries returns the valid prefix. The slice aliases the store and is only
// valid until the next Append.
func (s *Store) Entries() []model.Entry {
	return s.entries[:s.size:s.size]
}

// Reset releases the backing storage.
func (s *Store) Reset() {
	s.entries = nil
	s.size = 0
}

// nextCapacity applies the grow ratio, always adding at least one slot.
func (s *Store) nextCapacity() int {
	capacity := len(s.entries)
	next := int(float64(capacity) * s.growRatio)
	if next <= capacity {
		next = capacity + 1
	}
	return next
}

func (s *Store) grow(ctx context.Context) error {
	capacity := len(s.entries)
	next := s.nextCapacity()

	if s.grower != nil {
		granted, err := s.grower(ctx, s.Entries(), capacity, next)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrGrowthDenied, err)
		}
		if granted <= capacity {
			return fmt.Errorf("%w: granted capacity %d does not exceed %d", ErrGrowthDenied, granted, capacity)
		}
		next = granted
	}

	entries := make([]model.Entry, next)
	copy(entries, s.entries[:s.size])
	s.entries = entries
	return nil
}
