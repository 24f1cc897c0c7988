package s3

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/frand"

	"github.com/hupe1980/recgo/blobstore"
)

func TestIntegration_S3Store(t *testing.T) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		t.Skip("Skipping S3 integration test: S3_BUCKET not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test-recgo-%d/", time.Now().UnixNano())
	store, err := New(ctx, bucket, prefix, WithRegion(os.Getenv("AWS_REGION")))
	require.NoError(t, err)

	data := frand.Bytes(4096)
	require.NoError(t, store.Put(ctx, "b1/0", data))

	got, err := store.Get(ctx, "b1/0")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "b1/")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1/0"}, names)

	require.NoError(t, store.Delete(ctx, "b1/0"))
	_, err = store.Get(ctx, "b1/0")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
