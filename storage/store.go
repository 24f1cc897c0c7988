package storage

import (
	"context"
	"errors"

	"github.com/hupe1980/recgo/model"
)

var (
	// ErrNotFound is returned for a RID that was never created or was deleted.
	ErrNotFound = errors.New("record not found")
	// ErrChecksum is returned when a stored record fails its checksum.
	ErrChecksum = errors.New("record checksum mismatch")
	// ErrInvalidBucket is returned for negative bucket ids.
	ErrInvalidBucket = errors.New("invalid bucket")
)

// RecordStore hands out RIDs and holds encoded records. Implementations copy
// data on the way in and out, so callers may reuse their buffers.
type RecordStore interface {
	// Create stores data in bucket and returns its new RID.
	Create(ctx context.Context, bucket int32, data []byte) (model.RID, error)
	// Read returns the bytes stored at rid.
	Read(ctx context.Context, rid model.RID) ([]byte, error)
	// Update replaces the bytes stored at rid.
	Update(ctx context.Context, rid model.RID, data []byte) error
	// Delete removes rid. Its position is never reused.
	Delete(ctx context.Context, rid model.RID) error
}

func checkRID(rid model.RID) error {
	if rid.IsNull() || rid.Position < 0 {
		return ErrNotFound
	}
	return nil
}
