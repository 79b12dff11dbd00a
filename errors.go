package lshdb

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lshdb/internal/store"
	"github.com/hupe1980/lshdb/lsh"
)

var (
	// ErrCapacity is returned when the entry store is full and growth was
	// denied. The insertion is aborted with no state change.
	ErrCapacity = errors.New("capacity exhausted")

	// ErrLookupMiss is returned by Query for a signature with no bucket,
	// when WithStrictLookup is set.
	ErrLookupMiss = errors.New("no bucket for signature")

	// ErrClosed is returned by operations on a stopped DB.
	ErrClosed = errors.New("db is closed")

	// ErrInvalidK is returned when top n is not positive.
	ErrInvalidK = errors.New("top n must be positive")

	// ErrNoStorage is returned when a persistent index has to grow and no
	// storage collaborator is configured.
	ErrNoStorage = errors.New("persistent growth requires a storage collaborator")
)

// ErrDimensionMismatch indicates a vector/query dimensionality mismatch.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ErrInvalidParams indicates a construction parameter out of range.
type ErrInvalidParams struct {
	Field  string
	Reason string
	cause  error
}

func (e *ErrInvalidParams) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ErrInvalidParams) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrGrowthDenied) {
		return fmt.Errorf("%w: %w", ErrCapacity, err)
	}
	if errors.Is(err, lsh.ErrInvalidParams) {
		return &ErrInvalidParams{Field: "hash parameters", Reason: err.Error(), cause: err}
	}

	return err
}
