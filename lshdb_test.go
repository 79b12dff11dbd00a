package lshdb

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"testing"

	"github.com/hupe1980/lshdb/blobstore"
	"github.com/hupe1980/lshdb/lsh"
	"github.com/hupe1980/lshdb/storage"
	"github.com/hupe1980/lshdb/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// singleBucket hashes every embedding to the all-zero signature.
func singleBucket(p *lsh.Params, _ []float32) *lsh.Signature {
	return lsh.NewSignature(p.Bits())
}

func newTestDB(t *testing.T, optFns ...Option) *DB {
	t.Helper()
	db, err := New(optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Stop(context.Background()) })
	return db
}

func TestNew_Defaults(t *testing.T) {
	db := newTestDB(t)

	p := db.Params()
	assert.Equal(t, 1024, p.Dimension)
	assert.Equal(t, 1_000_000, p.MaxSize)
	assert.Equal(t, 13, p.HashBits)
	assert.InDelta(t, 2*math.Acos(0.8), p.BucketWidth, 1e-12)
	assert.Equal(t, DefaultSeed, p.Seed)
	assert.False(t, p.Persistent)

	assert.Equal(t, 1000, db.Capacity())
	assert.Equal(t, 0, db.Size())
	assert.Equal(t, 0, db.Buckets())
	assert.Equal(t, 13, db.HashParams().Bits())
	assert.Equal(t, 1024, db.HashParams().Dimension())
}

func TestNew_ExplicitHashParams(t *testing.T) {
	db := newTestDB(t, WithDimension(8), WithHashBits(5), WithBucketWidth(0.5))

	assert.Equal(t, 5, db.Params().HashBits)
	assert.InDelta(t, 0.5, db.HashParams().Width(), 1e-12)
}

func TestNew_DerivedHashBitsForTinyMaxSize(t *testing.T) {
	db := newTestDB(t, WithDimension(4), WithMaxSize(1))
	assert.Equal(t, 1, db.Params().HashBits)
}

func TestNew_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		field string
	}{
		{"dimension", []Option{WithDimension(0)}, "Dimension"},
		{"max size", []Option{WithMaxSize(-1)}, "MaxSize"},
		{"similarity target", []Option{WithSimilarityTarget(1.5)}, "SimilarityTarget"},
		{"hash bits", []Option{WithHashBits(-3)}, "HashBits"},
		{"bucket width", []Option{WithBucketWidth(-1)}, "BucketWidth"},
		{"initial capacity", []Option{WithInitialCapacity(0)}, "InitialCapacity"},
		{"grow ratio", []Option{WithGrowRatio(1)}, "GrowRatio"},
		{"folder", []Option{WithPersistentStorage("", nil)}, "Folder"},
		{"metric", []Option{WithMetric(99)}, "Metric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			var ip *ErrInvalidParams
			require.ErrorAs(t, err, &ip)
			assert.Equal(t, tt.field, ip.Field)
		})
	}
}

func TestInsert_PositionsAreDense(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(4711)
	db := newTestDB(t, WithDimension(16), WithHashBits(6), WithInitialCapacity(4))

	vecs := rng.GaussianVectors(50, 16)
	for i, v := range vecs {
		pos, err := db.Insert(ctx, fmt.Sprintf("doc-%d", i), v)
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}

	assert.Equal(t, 50, db.Size())
	assert.Equal(t, 50, db.buckets.Size())
	assert.LessOrEqual(t, db.Buckets(), 1<<6)
}

func TestInsert_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(4))

	pos, err := db.Insert(ctx, "short", []float32{1, 2, 3})
	assert.Equal(t, -1, pos)

	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 4, dm.Expected)
	assert.Equal(t, 3, dm.Actual)
	assert.Equal(t, 0, db.Size())

	_, err = db.Query(ctx, []float32{1}, 1, 0)
	assert.ErrorAs(t, err, &dm)

	_, err = db.Signature(nil)
	assert.ErrorAs(t, err, &dm)
}

func TestInsert_CopiesEmbedding(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2))

	v := []float32{1, 2}
	pos, err := db.Insert(ctx, "a", v)
	require.NoError(t, err)
	v[0] = 99

	e, ok := db.Entry(pos)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, e.Embedding)
	assert.Equal(t, 1, e.Len())

	e.Embedding[1] = -1
	again, _ := db.Entry(pos)
	assert.Equal(t, []float32{1, 2}, again.Embedding)

	_, ok = db.Entry(1)
	assert.False(t, ok)
	_, ok = db.Entry(-1)
	assert.False(t, ok)
}

func TestInsert_GrowthKeepsPositionsAndBuckets(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(7)
	mc := &BasicMetricsCollector{}
	db := newTestDB(t,
		WithDimension(8),
		WithHashBits(4),
		WithInitialCapacity(2),
		WithGrowRatio(1.5),
		WithMetricsCollector(mc),
	)

	vecs := rng.GaussianVectors(10, 8)
	keys := make([]string, len(vecs))
	for i, v := range vecs {
		sig, err := db.Signature(v)
		require.NoError(t, err)
		keys[i] = sig.Key()
		sig.Release()

		_, err = db.Insert(ctx, fmt.Sprintf("v%d", i), v)
		require.NoError(t, err)
	}

	// 2 -> 3 -> 4 -> 6 -> 9 -> 13
	assert.Equal(t, 13, db.Capacity())
	assert.Equal(t, int64(5), mc.GetStats().GrowCount)
	assert.Equal(t, int64(13), mc.GetStats().Capacity)

	for i, v := range vecs {
		e, ok := db.Entry(i)
		require.True(t, ok)
		assert.Equal(t, v, e.Embedding)
		assert.Equal(t, fmt.Sprintf("v%d", i), e.Text)
		assert.True(t, db.buckets.Contains(keys[i], uint32(i)))
	}
}

func TestQuery_SelfQueryFindsOwnBucket(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(42)
	db := newTestDB(t, WithDimension(32), WithHashBits(5))

	vecs := rng.UnitVectors(100, 32)
	for i, v := range vecs {
		_, err := db.Insert(ctx, fmt.Sprintf("doc-%d", i), v)
		require.NoError(t, err)
	}

	for i, v := range vecs {
		res, err := db.Query(ctx, v, len(vecs), -1)
		require.NoError(t, err)
		require.Positive(t, res.Total)

		found := false
		for _, r := range res.Results {
			if r.Position == i {
				found = true
				assert.InDelta(t, 1.0, float64(r.Score), 1e-5)
			}
		}
		assert.True(t, found, "entry %d not returned by its own query", i)
		res.Release()
	}
}

func TestQuery_RankingAndFiltering(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2), WithHashFunc(singleBucket))

	for _, v := range [][]float32{{1, 0}, {0, 1}, {1, 1}} {
		_, err := db.Insert(ctx, "", v)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		topN      int
		threshold float32
		want      []int
	}{
		{"all", 3, -1, []int{0, 2, 1}},
		{"top one", 1, -1, []int{0}},
		{"threshold", 3, 0.5, []int{0, 2}},
		{"threshold after truncation", 2, 0.9, []int{0}},
		{"nothing passes", 3, 1.5, []int{}},
		{"top n above bucket size", 50, -1, []int{0, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := db.Query(ctx, []float32{1, 0}, tt.topN, tt.threshold)
			require.NoError(t, err)
			defer res.Release()

			assert.Equal(t, 3, res.Total)
			assert.Equal(t, len(tt.want), res.Len())
			got := make([]int, 0, res.Len())
			for i, r := range res.Results {
				got = append(got, r.Position)
				assert.GreaterOrEqual(t, r.Score, tt.threshold)
				if i > 0 {
					assert.GreaterOrEqual(t, res.Results[i-1].Score, r.Score)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQuery_ScoresEachCandidateAgainstItsOwnEmbedding(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2), WithHashFunc(singleBucket))

	_, err := db.Insert(ctx, "x", []float32{1, 0})
	require.NoError(t, err)
	_, err = db.Insert(ctx, "y", []float32{0, 1})
	require.NoError(t, err)

	res, err := db.Query(ctx, []float32{0, 1}, 2, -1)
	require.NoError(t, err)
	defer res.Release()

	require.Equal(t, 2, res.Len())
	assert.Equal(t, "y", res.Results[0].Entry.Text)
	assert.InDelta(t, 1.0, float64(res.Results[0].Score), 1e-6)
	assert.Equal(t, "x", res.Results[1].Entry.Text)
	assert.InDelta(t, 0.0, float64(res.Results[1].Score), 1e-6)
}

func TestQuery_NaNScoresAreDropped(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2), WithHashFunc(singleBucket))

	_, err := db.Insert(ctx, "zero", []float32{0, 0})
	require.NoError(t, err)
	_, err = db.Insert(ctx, "one", []float32{1, 0})
	require.NoError(t, err)

	res, err := db.Query(ctx, []float32{1, 0}, 10, float32(math.Inf(-1)))
	require.NoError(t, err)
	defer res.Release()

	assert.Equal(t, 2, res.Total)
	require.Equal(t, 1, res.Len())
	assert.Equal(t, 1, res.Results[0].Position)
}

func TestQuery_EqualScoresKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2), WithHashFunc(singleBucket))

	for range 5 {
		_, err := db.Insert(ctx, "", []float32{1, 1})
		require.NoError(t, err)
	}

	res, err := db.Query(ctx, []float32{1, 1}, 3, 0)
	require.NoError(t, err)
	defer res.Release()

	require.Equal(t, 3, res.Len())
	for i, r := range res.Results {
		assert.Equal(t, i, r.Position)
	}
}

func TestQuery_EmptyIndex(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}
	db := newTestDB(t, WithDimension(4), WithMetricsCollector(mc))

	res, err := db.Query(ctx, []float32{1, 2, 3, 4}, DefaultTopN, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.Equal(t, 0, res.Len())
	res.Release()

	assert.Equal(t, int64(1), mc.GetStats().LookupMisses)
}

func TestQuery_StrictLookup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(4), WithStrictLookup())

	res, err := db.Query(ctx, []float32{1, 2, 3, 4}, 1, 0)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrLookupMiss)
}

func TestQuery_InvalidK(t *testing.T) {
	db := newTestDB(t, WithDimension(2))

	for _, k := range []int{0, -1} {
		_, err := db.Query(context.Background(), []float32{1, 0}, k, 0)
		assert.ErrorIs(t, err, ErrInvalidK)
	}
}

func TestQuery_ResultEntriesAreCopies(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2), WithHashFunc(singleBucket))

	_, err := db.Insert(ctx, "a", []float32{1, 0})
	require.NoError(t, err)

	res, err := db.Query(ctx, []float32{1, 0}, 1, 0)
	require.NoError(t, err)
	res.Results[0].Entry.Embedding[0] = 42
	res.Release()

	e, _ := db.Entry(0)
	assert.Equal(t, float32(1), e.Embedding[0])
}

func TestQueryResult_Release(t *testing.T) {
	res := newQueryResult()
	res.Results = append(res.Results, ResultEntry{Position: 1})
	res.Total = 1

	res.Release()
	assert.Nil(t, res.Results)
	assert.Equal(t, 0, res.Len())
	assert.NotPanics(t, res.Release)

	var nilRes *QueryResult
	assert.NotPanics(t, nilRes.Release)
	assert.Equal(t, 0, nilRes.Len())
}

func TestHashFunc_InvalidSignature(t *testing.T) {
	tests := []struct {
		name string
		fn   lsh.Func
	}{
		{"WrongLength", func(*lsh.Params, []float32) *lsh.Signature { return lsh.NewSignature(3) }},
		{"Nil", func(*lsh.Params, []float32) *lsh.Signature { return nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			db := newTestDB(t, WithDimension(2), WithHashBits(4), WithHashFunc(tt.fn))

			pos, err := db.Insert(ctx, "", []float32{1, 0})
			assert.Equal(t, -1, pos)
			assert.Error(t, err)
			assert.Equal(t, 0, db.Size())

			sig, err := db.Signature([]float32{1, 0})
			assert.Error(t, err)
			assert.Nil(t, sig)

			res, err := db.Query(ctx, []float32{1, 0}, 1, 0)
			assert.Error(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestSignature_Deterministic(t *testing.T) {
	rng := testutil.NewRNG(1)
	v := rng.UnitVector(16)

	a := newTestDB(t, WithDimension(16), WithSeed(99))
	b := newTestDB(t, WithDimension(16), WithSeed(99))
	c := newTestDB(t, WithDimension(16), WithSeed(100))

	sa, err := a.Signature(v)
	require.NoError(t, err)
	defer sa.Release()
	sb, err := b.Signature(v)
	require.NoError(t, err)
	defer sb.Release()

	assert.True(t, sa.Equal(sb))
	assert.Len(t, sa.Key(), a.Params().HashBits)
	assert.Equal(t, a.HashParams().Projection(0), b.HashParams().Projection(0))
	assert.NotEqual(t, a.HashParams().Projection(0), c.HashParams().Projection(0))
}

func TestPersistent_WithoutStorage(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2), WithInitialCapacity(2), WithPersistentStorage("idx", nil))
	require.NoError(t, db.Start(ctx))

	for i := range 2 {
		_, err := db.Insert(ctx, "", []float32{1, float32(i)})
		require.NoError(t, err)
	}

	pos, err := db.Insert(ctx, "", []float32{1, 2})
	assert.Equal(t, -1, pos)
	assert.ErrorIs(t, err, ErrCapacity)
	assert.ErrorIs(t, err, ErrNoStorage)
	assert.Equal(t, 2, db.Size())
	assert.Equal(t, 2, db.Capacity())
	assert.Equal(t, 2, db.buckets.Size())
}

func TestPersistent_BlobStorage(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(3)
	bs := storage.NewBlobStorage(blobstore.NewMemoryStore(), storage.WithCompression(storage.CompressionLZ4))
	db := newTestDB(t, WithDimension(4), WithInitialCapacity(2), WithPersistentStorage("idx", bs))
	require.NoError(t, db.Start(ctx))
	require.NoError(t, db.Start(ctx))

	vecs := rng.GaussianVectors(5, 4)
	for i, v := range vecs {
		pos, err := db.Insert(ctx, fmt.Sprintf("t%d", i), v)
		require.NoError(t, err)
		assert.Equal(t, i, pos)
	}
	assert.Equal(t, 8, db.Capacity())

	segments, err := bs.Segments(ctx, "idx")
	require.NoError(t, err)
	assert.Len(t, segments, 2)

	loaded, err := bs.Load(ctx, "idx")
	require.NoError(t, err)
	require.Len(t, loaded, 4)
	for i, e := range loaded {
		assert.Equal(t, vecs[i], e.Embedding)
		assert.Equal(t, fmt.Sprintf("t%d", i), e.Text)
	}
}

func TestPersistent_GrowthDenied(t *testing.T) {
	ctx := context.Background()
	bs := storage.NewBlobStorage(blobstore.NewMemoryStore(), storage.WithMaxCapacity(4))
	db := newTestDB(t, WithDimension(2), WithInitialCapacity(2), WithPersistentStorage("idx", bs))

	for i := range 4 {
		_, err := db.Insert(ctx, "", []float32{float32(i), 1})
		require.NoError(t, err)
	}

	_, err := db.Insert(ctx, "", []float32{9, 1})
	assert.ErrorIs(t, err, ErrCapacity)
	assert.ErrorIs(t, err, storage.ErrDenied)
	assert.Equal(t, 4, db.Size())
}

func TestStart_FolderInUse(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "idx/segment-000001.seg", []byte("x")))

	db := newTestDB(t, WithDimension(2), WithPersistentStorage("idx", storage.NewBlobStorage(mem)))
	assert.ErrorIs(t, db.Start(ctx), storage.ErrFolderInUse)
}

func TestPersistent_SharedFolder(t *testing.T) {
	ctx := context.Background()
	rng := testutil.NewRNG(11)
	bs := storage.NewBlobStorage(blobstore.NewMemoryStore())
	vecs := rng.GaussianVectors(3, 2)

	a, err := New(WithDimension(2), WithInitialCapacity(2), WithPersistentStorage("idx", bs))
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))

	// A second index cannot claim the folder while the first holds it.
	busy := newTestDB(t, WithDimension(2), WithPersistentStorage("idx", bs))
	assert.ErrorIs(t, busy.Start(ctx), storage.ErrFolderInUse)

	for i, v := range vecs {
		_, err := a.Insert(ctx, fmt.Sprintf("a%d", i), v)
		require.NoError(t, err)
	}
	require.NoError(t, a.Stop(ctx))

	t.Run("StartAfterStop", func(t *testing.T) {
		b := newTestDB(t, WithDimension(2), WithInitialCapacity(2), WithPersistentStorage("idx", bs))
		assert.ErrorIs(t, b.Start(ctx), storage.ErrFolderInUse)
	})

	t.Run("InsertWithoutStart", func(t *testing.T) {
		b := newTestDB(t, WithDimension(2), WithInitialCapacity(2), WithPersistentStorage("idx", bs))
		for i, v := range vecs[:2] {
			_, err := b.Insert(ctx, fmt.Sprintf("b%d", i), v)
			require.NoError(t, err)
		}
		pos, err := b.Insert(ctx, "b2", vecs[2])
		assert.Equal(t, -1, pos)
		assert.ErrorIs(t, err, ErrCapacity)
		assert.ErrorIs(t, err, storage.ErrFolderInUse)
		assert.Equal(t, 2, b.Size())
	})

	loaded, err := bs.Load(ctx, "idx")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	for i, e := range loaded {
		assert.Equal(t, fmt.Sprintf("a%d", i), e.Text)
		assert.Equal(t, vecs[i], e.Embedding)
	}
}

func TestPersistent_RestartOnEmptyFolder(t *testing.T) {
	ctx := context.Background()
	bs := storage.NewBlobStorage(blobstore.NewMemoryStore())

	a, err := New(WithDimension(2), WithPersistentStorage("idx", bs))
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	require.NoError(t, a.Stop(ctx))

	b := newTestDB(t, WithDimension(2), WithPersistentStorage("idx", bs))
	require.NoError(t, b.Start(ctx))
}

func TestSlot(t *testing.T) {
	n, err := slot(5)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), n)

	_, err = slot(-1)
	assert.ErrorIs(t, err, ErrCapacity)

	if strconv.IntSize < 64 {
		t.Skip("int cannot exceed the uint32 range")
	}
	_, err = slot(math.MaxInt)
	assert.ErrorIs(t, err, ErrCapacity)
}

func TestStop(t *testing.T) {
	ctx := context.Background()
	db, err := New(WithDimension(2))
	require.NoError(t, err)

	_, err = db.Insert(ctx, "a", []float32{1, 0})
	require.NoError(t, err)

	require.NoError(t, db.Stop(ctx))
	require.NoError(t, db.Stop(ctx))

	assert.Nil(t, db.HashParams())
	assert.Equal(t, 0, db.Size())
	assert.Equal(t, 0, db.Buckets())

	_, err = db.Insert(ctx, "b", []float32{1, 0})
	assert.ErrorIs(t, err, ErrClosed)
	_, err = db.Query(ctx, []float32{1, 0}, 1, 0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = db.Signature([]float32{1, 0})
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, db.Start(ctx), ErrClosed)
}

func TestMetricsCollector(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}
	db := newTestDB(t, WithDimension(2), WithHashFunc(singleBucket), WithMetricsCollector(mc))

	_, err := db.Insert(ctx, "", []float32{1, 0})
	require.NoError(t, err)
	_, err = db.Insert(ctx, "", []float32{1})
	require.Error(t, err)

	res, err := db.Query(ctx, []float32{1, 0}, 5, 0)
	require.NoError(t, err)
	res.Release()
	_, err = db.Query(ctx, []float32{1, 0}, 0, 0)
	require.Error(t, err)

	stats := mc.GetStats()
	assert.Equal(t, int64(2), stats.InsertCount)
	assert.Equal(t, int64(1), stats.InsertErrors)
	assert.Equal(t, int64(2), stats.QueryCount)
	assert.Equal(t, int64(1), stats.QueryErrors)
	assert.Equal(t, int64(1), stats.QueryCandidates)
	assert.Equal(t, int64(1), stats.QueryResults)
	assert.Equal(t, int64(0), stats.LookupMisses)
}

func TestLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	db := newTestDB(t, WithDimension(2), WithInitialCapacity(1), WithLogger(logger))

	_, err := db.Insert(ctx, "", []float32{1, 0})
	require.NoError(t, err)
	_, err = db.Insert(ctx, "", []float32{0, 1})
	require.NoError(t, err)
	_, err = db.Query(ctx, []float32{1, 0}, 0, 0)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"index initialized"`)
	assert.Contains(t, out, `"msg":"insert completed"`)
	assert.Contains(t, out, `"msg":"entry store grown"`)
	assert.Contains(t, out, `"msg":"query failed"`)
	assert.Contains(t, out, `"dimension":2`)
}

func TestWithMetricDot(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, WithDimension(2), WithHashFunc(singleBucket), WithMetric(0), WithMetric(1))

	_, err := db.Insert(ctx, "", []float32{2, 0})
	require.NoError(t, err)

	res, err := db.Query(ctx, []float32{3, 0}, 1, 0)
	require.NoError(t, err)
	defer res.Release()
	assert.InDelta(t, 6.0, float64(res.Results[0].Score), 1e-6)
}

func TestCosineSimilarity(t *testing.T) {
	sim, err := CosineSimilarity([]float32{0, 1, 2, 3}, []float32{0, 1, 2, 3})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, float64(sim), 1e-6)

	sim, err = CosineSimilarity([]float32{0, 1, 2, 3}, []float32{0, 0, 1, 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.956183, float64(sim), 1e-3)

	_, err = CosineSimilarity([]float32{1, 2}, []float32{1})
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 2, dm.Expected)
	assert.Equal(t, 1, dm.Actual)
}
