package lshdb

import (
	"log/slog"
	"math"

	"github.com/hupe1980/lshdb/distance"
	"github.com/hupe1980/lshdb/lsh"
	"github.com/hupe1980/lshdb/storage"
)

const (
	// DefaultDimension is the default embedding length.
	DefaultDimension = 1024

	// DefaultMaxSize is the default expected number of entries.
	DefaultMaxSize = 1_000_000

	// DefaultSimilarityTarget is the default similarity the bucket width is derived from.
	DefaultSimilarityTarget = 0.8

	// DefaultInitialCapacity is the default number of preallocated entry slots.
	DefaultInitialCapacity = 1000

	// DefaultGrowRatio is the default capacity multiplier on growth.
	DefaultGrowRatio = 2.0

	// DefaultSeed seeds the hash parameters unless WithSeed is given.
	DefaultSeed uint64 = 0xFFFFFFFF

	// DefaultTopN is the conventional number of results per query.
	DefaultTopN = 10
)

// Params are the construction parameters of an index. They are immutable
// once New returns; DB.Params reports the resolved values.
type Params struct {
	// Dimension is the length of every embedding.
	Dimension int

	// MaxSize is the expected number of entries. It sizes the hash and does
	// not bound insertions.
	MaxSize int

	// SimilarityTarget is the similarity BucketWidth is derived from.
	SimilarityTarget float64

	// HashBits is the signature length. 0 derives floor(ln(MaxSize)).
	HashBits int

	// BucketWidth is the projection bucket width. 0 derives
	// 2*acos(SimilarityTarget).
	BucketWidth float64

	// InitialCapacity is the number of entry slots allocated up front.
	InitialCapacity int

	// GrowRatio multiplies the capacity on in-memory growth. Must be > 1.
	GrowRatio float64

	// Persistent delegates growth to the storage collaborator.
	Persistent bool

	// Folder is the storage folder passed to the collaborator.
	Folder string

	// Seed seeds the random projections and offsets.
	Seed uint64
}

// DefaultParams returns the default parameters.
func DefaultParams() Params {
	return Params{
		Dimension:        DefaultDimension,
		MaxSize:          DefaultMaxSize,
		SimilarityTarget: DefaultSimilarityTarget,
		InitialCapacity:  DefaultInitialCapacity,
		GrowRatio:        DefaultGrowRatio,
		Seed:             DefaultSeed,
	}
}

// derive fills HashBits and BucketWidth when they are unset.
func (p *Params) derive() {
	if p.HashBits == 0 && p.MaxSize > 0 {
		p.HashBits = max(1, int(math.Floor(math.Log(float64(p.MaxSize)))))
	}
	if p.BucketWidth == 0 && p.SimilarityTarget >= -1 && p.SimilarityTarget <= 1 {
		p.BucketWidth = 2 * math.Acos(p.SimilarityTarget)
	}
}

func (p Params) validate() error {
	switch {
	case p.Dimension <= 0:
		return &ErrInvalidParams{Field: "Dimension", Reason: "must be positive"}
	case p.MaxSize <= 0:
		return &ErrInvalidParams{Field: "MaxSize", Reason: "must be positive"}
	case math.IsNaN(p.SimilarityTarget) || p.SimilarityTarget < -1 || p.SimilarityTarget > 1:
		return &ErrInvalidParams{Field: "SimilarityTarget", Reason: "must be within [-1, 1]"}
	case p.HashBits <= 0:
		return &ErrInvalidParams{Field: "HashBits", Reason: "must be positive"}
	case math.IsNaN(p.BucketWidth) || p.BucketWidth < 0:
		return &ErrInvalidParams{Field: "BucketWidth", Reason: "must not be negative"}
	case p.InitialCapacity <= 0:
		return &ErrInvalidParams{Field: "InitialCapacity", Reason: "must be positive"}
	case math.IsNaN(p.GrowRatio) || p.GrowRatio <= 1:
		return &ErrInvalidParams{Field: "GrowRatio", Reason: "must be greater than 1"}
	case p.Persistent && p.Folder == "":
		return &ErrInvalidParams{Field: "Folder", Reason: "required in persistent mode"}
	}
	return nil
}

type options struct {
	params           Params
	similarity       distance.Func
	hash             lsh.Func
	storage          storage.Storage
	strictLookup     bool
	logger           *Logger
	metricsCollector MetricsCollector
	err              error
}

func defaultOptions() options {
	return options{
		params:           DefaultParams(),
		similarity:       distance.Cosine,
		hash:             lsh.Hash,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
}

// Option configures New.
type Option func(*options)

// WithParams replaces all parameters at once. Options applied later still
// override single fields.
func WithParams(p Params) Option {
	return func(o *options) {
		o.params = p
	}
}

// WithDimension sets the embedding length.
func WithDimension(dim int) Option {
	return func(o *options) {
		o.params.Dimension = dim
	}
}

// WithMaxSize sets the expected number of entries the hash is sized for.
func WithMaxSize(n int) Option {
	return func(o *options) {
		o.params.MaxSize = n
	}
}

// WithSimilarityTarget sets the similarity the bucket width is derived from.
func WithSimilarityTarget(target float64) Option {
	return func(o *options) {
		o.params.SimilarityTarget = target
	}
}

// WithSimilarity replaces the scoring function. Higher scores rank first.
//
// If nil is passed, cosine similarity is used.
func WithSimilarity(fn distance.Func) Option {
	return func(o *options) {
		if fn == nil {
			fn = distance.Cosine
		}
		o.similarity = fn
	}
}

// WithMetric selects a built-in scoring function.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		fn, err := distance.Provider(m)
		if err != nil {
			o.err = &ErrInvalidParams{Field: "Metric", Reason: err.Error(), cause: err}
			return
		}
		o.similarity = fn
	}
}

// WithHashBits sets the signature length explicitly.
func WithHashBits(bits int) Option {
	return func(o *options) {
		o.params.HashBits = bits
	}
}

// WithBucketWidth sets the bucket width explicitly.
func WithBucketWidth(width float64) Option {
	return func(o *options) {
		o.params.BucketWidth = width
	}
}

// WithHashFunc replaces the signature function.
//
// If nil is passed, lsh.Hash is used.
func WithHashFunc(fn lsh.Func) Option {
	return func(o *options) {
		if fn == nil {
			fn = lsh.Hash
		}
		o.hash = fn
	}
}

// WithInitialCapacity sets the number of preallocated entry slots.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.params.InitialCapacity = n
	}
}

// WithGrowRatio sets the capacity multiplier for in-memory growth.
func WithGrowRatio(ratio float64) Option {
	return func(o *options) {
		o.params.GrowRatio = ratio
	}
}

// WithPersistentStorage enables persistent mode. Every growth of the entry
// store is delegated to s with folder. A nil s makes growth fail.
//
// Example:
//
//	lshdb.New(
//	    lshdb.WithPersistentStorage("index-a", storage.NewBlobStorage(
//	        blobstore.NewLocalStore("./data"),
//	        storage.WithCompression(storage.CompressionLZ4),
//	    )),
//	)
func WithPersistentStorage(folder string, s storage.Storage) Option {
	return func(o *options) {
		o.params.Persistent = true
		o.params.Folder = folder
		o.storage = s
	}
}

// WithSeed seeds the hash parameters.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.params.Seed = seed
	}
}

// WithStrictLookup makes Query return ErrLookupMiss for a signature with no
// bucket instead of an empty result.
func WithStrictLookup() Option {
	return func(o *options) {
		o.strictLookup = true
	}
}

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs to stderr as text at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics collector. If nil is passed,
// metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}
