// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "graphs/social/",
//	    s3.WithRegion("us-east-1"),
//	)
//
//	db, err := recgo.Open(ctx, recgo.WithBlobStore(store))
//
// Multiple processes sharing one prefix should also share a position
// allocator so that record positions stay unique:
//
//	alloc := s3.NewDDBAllocator(dynamodb.NewFromConfig(cfg), "recgo-positions", "graphs/social")
//	db, err := recgo.Open(ctx, recgo.WithBlobStore(store), recgo.WithPositionAllocator(alloc))
//
// # Features
//
//   - CRC32C checksums validated by S3 on every write
//   - Multipart uploads above a configurable threshold
//   - Conditional create (If-None-Match) for new records
//   - Automatic pagination for listing
package s3
