// Package storage holds encoded records addressed by RID.
//
// RecordStore is the boundary between the record codec and whatever keeps
// the bytes. Two implementations are provided:
//
//   - MemoryStore keeps records in process memory.
//   - BlobRecordStore keeps each record in its own blob in a
//     blobstore.BlobStore (local disk, MinIO or S3), framed with a
//     compression byte and a CRC32C checksum, optionally behind an LRU cache.
//
// Positions are allocated per bucket by a PositionAllocator. LocalAllocator
// recovers its counters by listing the store; s3.DDBAllocator keeps them in
// DynamoDB for several writers.
package storage
