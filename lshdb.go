package lshdb

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/hupe1980/lshdb/internal/bucket"
	"github.com/hupe1980/lshdb/internal/store"
	"github.com/hupe1980/lshdb/lsh"
	"github.com/hupe1980/lshdb/model"
	"github.com/hupe1980/lshdb/storage"
)

// DB is an LSH vector index. It owns the hash parameters, the bucket index
// and the entry store; Stop releases all three.
type DB struct {
	opts    options
	logger  *Logger
	hash    *lsh.Params
	buckets *bucket.Index
	entries *store.Store
	started bool
	claimed bool
	closed  bool
}

// New builds an index from the default parameters and the given options.
func New(optFns ...Option) (*DB, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	o.params.derive()
	if err := o.params.validate(); err != nil {
		return nil, err
	}

	hash, err := lsh.NewParams(o.params.HashBits, o.params.Dimension, o.params.BucketWidth, o.params.Seed)
	if err != nil {
		return nil, translateError(err)
	}

	db := &DB{
		opts:    o,
		logger:  o.logger.WithDimension(o.params.Dimension).WithHashBits(o.params.HashBits),
		hash:    hash,
		buckets: bucket.New(),
	}
	if o.params.Persistent {
		db.logger = db.logger.WithFolder(o.params.Folder)
	}

	storeOpts := store.Options{
		InitialCapacity: o.params.InitialCapacity,
		GrowRatio:       o.params.GrowRatio,
	}
	if o.params.Persistent {
		storeOpts.Grower = db.growPersistent
	}
	db.entries, err = store.New(storeOpts)
	if err != nil {
		return nil, &ErrInvalidParams{Field: "store", Reason: err.Error(), cause: err}
	}

	db.logger.LogLifecycle(context.Background(), "index initialized", nil)
	return db, nil
}

// growPersistent delegates growth to the storage collaborator, claiming
// the folder first if Start was skipped.
func (db *DB) growPersistent(ctx context.Context, entries []model.Entry, capacity, requested int) (int, error) {
	if db.opts.storage == nil {
		return 0, ErrNoStorage
	}
	if err := db.claim(ctx); err != nil {
		return 0, err
	}
	return db.opts.storage.Grow(ctx, storage.GrowRequest{
		Folder:    db.opts.params.Folder,
		Entries:   entries,
		Capacity:  capacity,
		Requested: requested,
	})
}

// claim opens the folder on the collaborator once per DB.
func (db *DB) claim(ctx context.Context) error {
	if db.claimed {
		return nil
	}
	if o, ok := db.opts.storage.(storage.Opener); ok {
		if err := o.Open(ctx, db.opts.params.Folder); err != nil {
			return err
		}
	}
	db.claimed = true
	return nil
}

// Start prepares the storage collaborator in persistent mode. Calling it is
// optional for in-memory indexes and a no-op once started.
func (db *DB) Start(ctx context.Context) error {
	if db.closed {
		return ErrClosed
	}
	if db.started {
		return nil
	}
	if db.opts.params.Persistent && db.opts.storage != nil {
		if err := db.claim(ctx); err != nil {
			db.logger.LogLifecycle(ctx, "start", err)
			return err
		}
	}
	db.started = true
	db.logger.LogLifecycle(ctx, "started", nil)
	return nil
}

// Stop releases the entry store, the hash parameters and the bucket index,
// and hands the folder back to the collaborator. Persisted segments stay
// with the collaborator. Stop is idempotent.
func (db *DB) Stop(ctx context.Context) error {
	if db.closed {
		return nil
	}
	var err error
	if db.claimed {
		if r, ok := db.opts.storage.(storage.Releaser); ok {
			err = r.Release(ctx, db.opts.params.Folder)
		}
		db.claimed = false
	}
	db.entries.Reset()
	db.buckets.Reset()
	db.hash = nil
	db.closed = true
	db.started = false
	db.logger.LogLifecycle(ctx, "stopped", err)
	return err
}

func (db *DB) checkEmbedding(embedding []float32) error {
	if db.closed {
		return ErrClosed
	}
	if len(embedding) != db.opts.params.Dimension {
		return &ErrDimensionMismatch{Expected: db.opts.params.Dimension, Actual: len(embedding)}
	}
	return nil
}

// signature hashes embedding and checks what the hash function returned.
func (db *DB) signature(embedding []float32) (*lsh.Signature, error) {
	sig := db.opts.hash(db.hash, embedding)
	if sig == nil {
		return nil, fmt.Errorf("hash function returned no signature")
	}
	if sig.Len() != db.hash.Bits() {
		n := sig.Len()
		sig.Release()
		return nil, fmt.Errorf("hash function returned %d bits, want %d", n, db.hash.Bits())
	}
	return sig, nil
}

func (db *DB) key(embedding []float32) (string, error) {
	sig, err := db.signature(embedding)
	if err != nil {
		return "", err
	}
	defer sig.Release()
	return sig.Key(), nil
}

// slot converts a position to the uint32 the bucket bitmaps hold.
func slot(pos int) (uint32, error) {
	if pos < 0 || uint64(pos) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: position %d exceeds the bucket range", ErrCapacity, pos)
	}
	return uint32(pos), nil
}

// Insert appends an entry and returns its position. Positions are dense and
// strictly increasing. On error the position is -1 and nothing is recorded.
func (db *DB) Insert(ctx context.Context, text string, embedding []float32) (pos int, err error) {
	start := time.Now()
	key := ""
	defer func() {
		db.opts.metricsCollector.RecordInsert(time.Since(start), err)
		db.logger.LogInsert(ctx, pos, key, err)
	}()

	if err := db.checkEmbedding(embedding); err != nil {
		return -1, err
	}
	if key, err = db.key(embedding); err != nil {
		return -1, err
	}

	next, err := slot(db.entries.Size())
	if err != nil {
		return -1, err
	}

	before := db.entries.Capacity()
	pos, err = db.entries.Append(ctx, model.Entry{
		Text:      text,
		Embedding: slices.Clone(embedding),
	})
	if err != nil {
		return -1, translateError(err)
	}
	if after := db.entries.Capacity(); after != before {
		db.opts.metricsCollector.RecordGrow(before, after)
		db.logger.LogGrow(ctx, before, after)
	}

	db.buckets.Add(key, next)
	return pos, nil
}

// Query scores every entry in the bucket of embedding, keeps the topN best
// and drops those scoring below threshold. The result is sorted by
// descending score and must be released by the caller.
//
// A signature without a bucket yields an empty result, or ErrLookupMiss
// with WithStrictLookup.
func (db *DB) Query(ctx context.Context, embedding []float32, topN int, threshold float32) (res *QueryResult, err error) {
	start := time.Now()
	defer func() {
		total, kept := 0, 0
		if res != nil {
			total, kept = res.Total, res.Len()
		}
		db.opts.metricsCollector.RecordQuery(total, kept, time.Since(start), err)
		db.logger.LogQuery(ctx, topN, total, kept, err)
	}()

	if err := db.checkEmbedding(embedding); err != nil {
		return nil, err
	}
	if topN <= 0 {
		return nil, ErrInvalidK
	}

	key, err := db.key(embedding)
	if err != nil {
		return nil, err
	}

	positions, ok := db.buckets.Lookup(key)
	if !ok {
		db.opts.metricsCollector.RecordLookupMiss()
		if db.opts.strictLookup {
			return nil, ErrLookupMiss
		}
		return newQueryResult(), nil
	}

	res = newQueryResult()
	res.Total = len(positions)

	for _, p := range positions {
		e := db.entries.At(int(p))
		res.Results = append(res.Results, ResultEntry{
			Position: int(p),
			Score:    db.opts.similarity(embedding, e.Embedding),
		})
	}

	// Stable, so equal scores keep insertion order. NaN sorts last.
	slices.SortStableFunc(res.Results, func(a, b ResultEntry) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(res.Results) > topN {
		clear(res.Results[topN:])
		res.Results = res.Results[:topN]
	}

	kept := res.Results[:0]
	for _, r := range res.Results {
		if r.Score >= threshold {
			r.Entry = db.entries.At(r.Position).Clone()
			kept = append(kept, r)
		}
	}
	clear(res.Results[len(kept):])
	res.Results = kept

	return res, nil
}

// Signature returns the LSH signature of embedding. The caller owns the
// signature and must release it.
func (db *DB) Signature(embedding []float32) (*lsh.Signature, error) {
	if err := db.checkEmbedding(embedding); err != nil {
		return nil, err
	}
	return db.signature(embedding)
}

// Size returns the number of entries.
func (db *DB) Size() int { return db.entries.Size() }

// Capacity returns the number of allocated entry slots.
func (db *DB) Capacity() int { return db.entries.Capacity() }

// Buckets returns the number of populated buckets.
func (db *DB) Buckets() int { return db.buckets.Len() }

// Entry returns a copy of the entry at pos.
func (db *DB) Entry(pos int) (model.Entry, bool) {
	e, ok := db.entries.Get(pos)
	if !ok {
		return model.Entry{}, false
	}
	return e.Clone(), true
}

// Params returns the resolved construction parameters.
func (db *DB) Params() Params { return db.opts.params }

// HashParams returns the random projections and offsets. It is nil after Stop.
func (db *DB) HashParams() *lsh.Params { return db.hash }
