package storage

import (
	"context"
	"errors"

	"github.com/hupe1980/lshdb/model"
)

var (
	// ErrDenied is returned when the collaborator refuses to grow.
	ErrDenied = errors.New("storage: growth denied")

	// ErrFolderInUse is returned when a folder is claimed by another index
	// or already holds segments.
	ErrFolderInUse = errors.New("storage: folder in use")

	// ErrCorruptSegment is returned when a segment cannot be decoded.
	ErrCorruptSegment = errors.New("storage: corrupt segment")
)

// GrowRequest describes one growth step of a persistent entry store.
type GrowRequest struct {
	// Folder is the storage folder configured on the index.
	Folder string

	// Entries is the valid prefix of the store; Entries[i] sits at position i.
	// The slice is only valid for the duration of the call.
	Entries []model.Entry

	// Capacity is the current capacity.
	Capacity int

	// Requested is the capacity the grow ratio asks for.
	Requested int
}

// Storage is the persistence collaborator.
type Storage interface {
	// Grow persists what it needs from req and returns the granted capacity.
	// A granted capacity not above req.Capacity denies the growth.
	Grow(ctx context.Context, req GrowRequest) (int, error)
}

// Opener is implemented by collaborators that prepare a folder when the
// index starts. Open claims the folder for a single index.
type Opener interface {
	Open(ctx context.Context, folder string) error
}

// Releaser is implemented by collaborators that track folder claims. The
// index calls Release when it stops.
type Releaser interface {
	Release(ctx context.Context, folder string) error
}
