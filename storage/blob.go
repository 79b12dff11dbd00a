package storage

import (
	"bytes"
	"cmp"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/lshdb/blobstore"
	"github.com/hupe1980/lshdb/codec"
	"github.com/hupe1980/lshdb/internal/compress"
	"github.com/hupe1980/lshdb/internal/hash"
	"github.com/hupe1980/lshdb/model"
)

// Compression selects the block compression of segments.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

const (
	segmentPrefix  = "segment-"
	segmentSuffix  = ".seg"
	segmentVersion = 1
)

var segmentMagic = [4]byte{'L', 'S', 'H', 'S'}

// Options configures a BlobStorage.
type Options struct {
	// Codec encodes segment records. Default: codec.Default.
	Codec codec.Codec

	// Compression of the segment block. Default: CompressionZSTD.
	Compression Compression

	// RateLimit caps segment writes in bytes per second. 0 means unlimited.
	RateLimit int

	// MaxCapacity caps the capacity BlobStorage grants. 0 means unlimited.
	MaxCapacity int

	// ChunkSize is the size of a single write to the blob. Default: 1MB.
	ChunkSize int

	// LoadConcurrency bounds parallel segment reads in Load. Default: 8.
	LoadConcurrency int

	// Logger receives segment events. Default: discard.
	Logger *slog.Logger
}

// Option configures a BlobStorage.
type Option func(o *Options)

// WithCodec sets the segment codec.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) { o.Codec = c }
}

// WithCompression sets the segment compression.
func WithCompression(c Compression) Option {
	return func(o *Options) { o.Compression = c }
}

// WithRateLimit throttles segment writes to bytesPerSec.
func WithRateLimit(bytesPerSec int) Option {
	return func(o *Options) { o.RateLimit = bytesPerSec }
}

// WithMaxCapacity denies growth beyond n entries.
func WithMaxCapacity(n int) Option {
	return func(o *Options) { o.MaxCapacity = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

func defaultOptions() Options {
	return Options{
		Codec:           codec.Default,
		Compression:     CompressionZSTD,
		ChunkSize:       1 << 20,
		LoadConcurrency: 8,
		Logger:          slog.New(slog.DiscardHandler),
	}
}

type folderState struct {
	seq       int
	persisted int
	claimed   bool
}

// BlobStorage persists entries as segment blobs on a blobstore.BlobStore.
// It is safe for concurrent use and may serve several folders.
type BlobStorage struct {
	store    blobstore.BlobStore
	opts     Options
	throttle *throttle

	mu      sync.Mutex
	folders map[string]*folderState
}

var (
	_ Storage  = (*BlobStorage)(nil)
	_ Opener   = (*BlobStorage)(nil)
	_ Releaser = (*BlobStorage)(nil)
)

// NewBlobStorage returns a BlobStorage writing to store.
func NewBlobStorage(store blobstore.BlobStore, optFns ...Option) *BlobStorage {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Codec == nil {
		opts.Codec = codec.Default
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1 << 20
	}
	if opts.LoadConcurrency <= 0 {
		opts.LoadConcurrency = 8
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &BlobStorage{
		store:    store,
		opts:     opts,
		throttle: newThrottle(opts.RateLimit),
		folders:  make(map[string]*folderState),
	}
}

// Open claims folder for one index. It fails with ErrFolderInUse while
// another index holds the claim, or once the folder holds segments, since
// their positions would collide with a fresh index.
func (s *BlobStorage) Open(ctx context.Context, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.claimLocked(ctx, folder)
	return err
}

// Release drops the claim on folder. Segments written under it stay, so
// the folder cannot be claimed again unless nothing was persisted.
func (s *BlobStorage) Release(_ context.Context, folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.folders[folder]; ok {
		st.claimed = false
	}
	return nil
}

func (s *BlobStorage) claimLocked(ctx context.Context, folder string) (*folderState, error) {
	st, ok := s.folders[folder]
	if ok && (st.claimed || st.persisted > 0) {
		return nil, fmt.Errorf("%w: %q is claimed or holds %d entries", ErrFolderInUse, folder, st.persisted)
	}
	names, err := s.segments(ctx, folder)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return nil, fmt.Errorf("%w: %q has %d segments", ErrFolderInUse, folder, len(names))
	}
	if !ok {
		st = &folderState{}
		s.folders[folder] = st
	}
	st.claimed = true
	return st, nil
}

// stateLocked returns the claimed state of folder, claiming an unknown
// folder on first use.
func (s *BlobStorage) stateLocked(ctx context.Context, folder string) (*folderState, error) {
	if st, ok := s.folders[folder]; ok {
		if !st.claimed {
			return nil, fmt.Errorf("%w: %q was released", ErrFolderInUse, folder)
		}
		return st, nil
	}
	return s.claimLocked(ctx, folder)
}

// Grow spills the entries not yet persisted as a new segment and grants the
// requested capacity, capped by MaxCapacity.
func (s *BlobStorage) Grow(ctx context.Context, req GrowRequest) (int, error) {
	granted := req.Requested
	if s.opts.MaxCapacity > 0 && granted > s.opts.MaxCapacity {
		granted = s.opts.MaxCapacity
	}
	if granted <= req.Capacity {
		return 0, fmt.Errorf("%w: capacity limit %d reached", ErrDenied, s.opts.MaxCapacity)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.stateLocked(ctx, req.Folder)
	if err != nil {
		return 0, err
	}
	if len(req.Entries) < st.persisted {
		return 0, fmt.Errorf("%w: %d entries offered, %d already persisted", ErrDenied, len(req.Entries), st.persisted)
	}

	pending := req.Entries[st.persisted:]
	if len(pending) > 0 {
		name := segmentName(req.Folder, st.seq+1)
		n, err := s.writeSegment(ctx, name, segmentRecord{Start: st.persisted, Entries: pending})
		if err != nil {
			return 0, err
		}
		st.seq++
		st.persisted += len(pending)

		s.opts.Logger.InfoContext(ctx, "segment written",
			slog.String("name", name),
			slog.Int("entries", len(pending)),
			slog.Int("bytes", n),
			slog.String("compression", s.opts.Compression.String()),
		)
	}

	return granted, nil
}

// Persisted returns the number of entries spilled for folder.
func (s *BlobStorage) Persisted(folder string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.folders[folder]; ok {
		return st.persisted
	}
	return 0
}

// Segments returns the segment names of folder in write order.
func (s *BlobStorage) Segments(ctx context.Context, folder string) ([]string, error) {
	return s.segments(ctx, folder)
}

func (s *BlobStorage) segments(ctx context.Context, folder string) ([]string, error) {
	names, err := s.store.List(ctx, path.Join(folder, segmentPrefix))
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, name := range names {
		if strings.HasSuffix(name, segmentSuffix) {
			out = append(out, name)
		}
	}
	return out, nil
}

// Load reads every segment of folder in parallel and returns the entries in
// position order.
func (s *BlobStorage) Load(ctx context.Context, folder string) ([]model.Entry, error) {
	names, err := s.segments(ctx, folder)
	if err != nil {
		return nil, err
	}

	records := make([]segmentRecord, len(names))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.LoadConcurrency)

	for i, name := range names {
		g.Go(func() error {
			rec, err := s.readSegment(gctx, name)
			if err != nil {
				return fmt.Errorf("storage: read %s: %w", name, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(records, func(a, b segmentRecord) int { return cmp.Compare(a.Start, b.Start) })

	var entries []model.Entry
	for _, rec := range records {
		if rec.Start != len(entries) {
			return nil, fmt.Errorf("%w: segment starts at %d, expected %d", ErrCorruptSegment, rec.Start, len(entries))
		}
		entries = append(entries, rec.Entries...)
	}
	return entries, nil
}

type segmentRecord struct {
	Start   int           `json:"start"`
	Entries []model.Entry `json:"entries"`
}

func segmentName(folder string, seq int) string {
	return path.Join(folder, fmt.Sprintf("%s%06d%s", segmentPrefix, seq, segmentSuffix))
}

// encodeSegment lays out magic, version, codec name, the CRC32C of the
// block and the compressed record block.
func (s *BlobStorage) encodeSegment(rec segmentRecord) ([]byte, error) {
	payload, err := s.opts.Codec.Marshal(rec)
	if err != nil {
		return nil, err
	}
	block, err := compress.Encode(payload, s.opts.Compression)
	if err != nil {
		return nil, err
	}

	name := s.opts.Codec.Name()
	if len(name) > 255 {
		return nil, fmt.Errorf("storage: codec name %q too long", name)
	}

	var buf bytes.Buffer
	buf.Grow(len(segmentMagic) + 2 + len(name) + 4 + len(block))
	buf.Write(segmentMagic[:])
	buf.WriteByte(segmentVersion)
	buf.WriteByte(byte(len(name)))
	buf.WriteString(name)
	buf.Write(binary.LittleEndian.AppendUint32(nil, hash.CRC32C(block)))
	buf.Write(block)
	return buf.Bytes(), nil
}

func decodeSegment(data []byte) (segmentRecord, error) {
	var rec segmentRecord

	if len(data) < len(segmentMagic)+2 || !bytes.Equal(data[:4], segmentMagic[:]) {
		return rec, fmt.Errorf("%w: bad magic", ErrCorruptSegment)
	}
	if data[4] != segmentVersion {
		return rec, fmt.Errorf("%w: unsupported version %d", ErrCorruptSegment, data[4])
	}
	nameLen := int(data[5])
	if len(data) < 6+nameLen+4 {
		return rec, fmt.Errorf("%w: truncated header", ErrCorruptSegment)
	}
	name := string(data[6 : 6+nameLen])
	c, ok := codec.ByName(name)
	if !ok {
		return rec, fmt.Errorf("%w: unknown codec %q", ErrCorruptSegment, name)
	}

	sum := binary.LittleEndian.Uint32(data[6+nameLen:])
	block := data[6+nameLen+4:]
	if hash.CRC32C(block) != sum {
		return rec, fmt.Errorf("%w: checksum mismatch", ErrCorruptSegment)
	}

	payload, err := compress.Decode(block)
	if err != nil {
		return rec, fmt.Errorf("%w: %w", ErrCorruptSegment, err)
	}
	if err := c.Unmarshal(payload, &rec); err != nil {
		return rec, fmt.Errorf("%w: %w", ErrCorruptSegment, err)
	}
	return rec, nil
}

func (s *BlobStorage) writeSegment(ctx context.Context, name string, rec segmentRecord) (int, error) {
	data, err := s.encodeSegment(rec)
	if err != nil {
		return 0, err
	}

	w, err := s.store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	abort := func(cause error) (int, error) {
		_ = w.Close()
		if err := s.store.Delete(context.WithoutCancel(ctx), name); err != nil {
			cause = errors.Join(cause, err)
		}
		return 0, cause
	}

	for off := 0; off < len(data); {
		n := s.throttle.chunk(min(len(data)-off, s.opts.ChunkSize))
		if err := s.throttle.acquire(ctx, n); err != nil {
			return abort(err)
		}
		if _, err := w.Write(data[off : off+n]); err != nil {
			return abort(err)
		}
		off += n
	}

	if err := w.Sync(); err != nil {
		return abort(err)
	}
	if err := w.Close(); err != nil {
		_ = s.store.Delete(context.WithoutCancel(ctx), name)
		return 0, err
	}
	return len(data), nil
}

func (s *BlobStorage) readSegment(ctx context.Context, name string) (segmentRecord, error) {
	blob, err := s.store.Open(ctx, name)
	if err != nil {
		return segmentRecord{}, err
	}
	defer func() { _ = blob.Close() }()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return segmentRecord{}, err
	}
	return decodeSegment(data)
}
