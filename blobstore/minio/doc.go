// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. This package uses the
// official MinIO Go client and therefore also works with Ceph, SeaweedFS and
// Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "my-bucket", "graphs/social/")
//	db, err := recgo.Open(ctx, recgo.WithBlobStore(store))
//
// Each record becomes one object named "<prefix>/b<bucket>/<position>".
// The dictionary snapshot is stored as "<prefix>/dictionary".
package minio
