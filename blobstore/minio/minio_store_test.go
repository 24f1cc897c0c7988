package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/blobstore"
)

func TestKeyMapping(t *testing.T) {
	s := NewStore(nil, "bucket", "graphs/social/")

	assert.Equal(t, "graphs/social/b1/42", s.key("b1/42"))
	assert.Equal(t, "b1/42", s.name("graphs/social/b1/42"))

	bare := NewStore(nil, "bucket", "")
	assert.Equal(t, "dictionary", bare.key("dictionary"))
	assert.Equal(t, "dictionary", bare.name("dictionary"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NotFound"}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied"}))
	assert.False(t, isNotFound(errors.New("boom")))
}

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-recgo"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "b1/0", data))

	got, err := store.Get(ctx, "b1/0")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "b1/")
	require.NoError(t, err)
	assert.Contains(t, names, "b1/0")

	require.NoError(t, store.Delete(ctx, "b1/0"))
	_, err = store.Get(ctx, "b1/0")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
