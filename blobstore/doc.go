// Package blobstore provides the storage abstraction under recgo's record store
// and dictionary snapshots.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and ephemeral databases
//   - LocalStore: local filesystem with atomic temp-file + rename writes
//   - minio.Store: MinIO and S3-compatible object storage
//   - s3.Store: Amazon S3 with CRC32C-checked puts and multipart uploads
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Get(ctx, name) ([]byte, error)
//	    Put(ctx, name, data) error         // Atomic write
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
