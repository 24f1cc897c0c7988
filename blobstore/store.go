package blobstore

import (
	"context"
	"errors"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for named, immutable-per-write byte blobs.
//
// Records, edge chunks and dictionary snapshots are small, so the interface
// moves whole blobs. Implementations must be safe for concurrent use.
type BlobStore interface {
	// Get returns the full contents of a blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// Put writes a blob atomically, replacing any previous contents.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the names of all blobs with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ErrConflict is returned by PutIfAbsent when the blob already exists.
var ErrConflict = errors.New("blobstore: blob already exists")

// ConditionalStore is implemented by stores that can create a blob only if
// it does not exist yet. Record stores use it so that two writers handed the
// same position never overwrite each other.
type ConditionalStore interface {
	BlobStore
	// PutIfAbsent writes a blob, or returns ErrConflict if it already exists.
	PutIfAbsent(ctx context.Context, name string, data []byte) error
}
