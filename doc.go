// Package recgo is an embedded document and graph record store.
//
// Records are documents, vertices or edges. Each one is encoded into a
// compact binary form where property names are replaced by dictionary ids,
// so renaming a property rewrites no record. Vertices keep their incident
// edges in linked lists of fixed-capacity edge chunks.
//
// # Quick Start
//
// In memory:
//
//	ctx := context.Background()
//	db, _ := recgo.Open(ctx)
//	defer db.Close(ctx)
//
//	alice, _ := db.CreateVertex(ctx, 1, value.Properties{{Name: "name", Value: value.String("alice")}})
//	bob, _ := db.CreateVertex(ctx, 1, value.Properties{{Name: "name", Value: value.String("bob")}})
//	knows, _ := db.CreateEdge(ctx, 2, alice, bob, nil)
//
// Over a blob store (local directory, S3 or MinIO):
//
//	db, _ := recgo.Open(ctx,
//		recgo.WithBlobStore(blobstore.NewLocalStore("./data")),
//		recgo.WithCompression(storage.CompressionZSTD),
//		recgo.WithCacheSize(64<<20),
//	)
//
// Close writes the dictionary snapshot back to the blob store.
//
// # Reading
//
// Get decodes a whole record. Properties decodes only the requested names
// and stops scanning the header once all are found:
//
//	props, _ := db.Properties(ctx, alice, "name")
//
// Edges walks the adjacency of a vertex, newest chunk first:
//
//	for p, err := range db.Edges(ctx, alice, model.Out) {
//		...
//	}
//
// # Errors
//
// Errors are unified into ErrNotFound, ErrCorrupted, ErrNameConflict,
// ErrClosed and *ErrRecordTypeMismatch. Use errors.Is and errors.As.
//
// # Observability
//
// WithLogger accepts a *Logger built on log/slog. WithMetricsCollector
// accepts any MetricsCollector; BasicMetricsCollector keeps atomic counters.
package recgo
