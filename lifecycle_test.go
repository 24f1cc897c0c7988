package recgo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo"
	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/model"
	"github.com/hupe1980/recgo/storage"
	"github.com/hupe1980/recgo/value"
)

// TestReopenKeepsRecordsAndDictionary closes a blob-backed DB and opens the
// same directory again.
func TestReopenKeepsRecordsAndDictionary(t *testing.T) {
	for _, c := range []storage.Compression{storage.CompressionNone, storage.CompressionLZ4, storage.CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			ctx := context.Background()
			dir := t.TempDir()
			opts := []recgo.Option{
				recgo.WithBlobStore(blobstore.NewLocalStore(dir)),
				recgo.WithCompression(c),
				recgo.WithCacheSize(1 << 20),
				recgo.WithChunkCapacity(2),
			}

			db, err := recgo.Open(ctx, opts...)
			require.NoError(t, err)
			a, err := db.CreateVertex(ctx, 1, props("name", value.String("a")))
			require.NoError(t, err)
			var edges []model.RID
			for i := range 3 {
				v, err := db.CreateVertex(ctx, 1, props("i", value.Int(int32(i))))
				require.NoError(t, err)
				e, err := db.CreateEdge(ctx, 2, a, v, nil)
				require.NoError(t, err)
				edges = append(edges, e)
			}
			require.NoError(t, db.RenameProperty(ctx, "name", "label"))
			require.NoError(t, db.Close(ctx))

			db, err = recgo.Open(ctx, opts...)
			require.NoError(t, err)
			defer db.Close(ctx)

			got, err := db.Properties(ctx, a, "label")
			require.NoError(t, err)
			assert.True(t, value.String("a").Equal(got["label"]))

			var seen []model.RID
			for p, err := range db.Edges(ctx, a, model.Out) {
				require.NoError(t, err)
				seen = append(seen, p.Edge)
			}
			assert.ElementsMatch(t, edges, seen)

			// New positions continue after the recovered ones.
			b, err := db.CreateVertex(ctx, 1, nil)
			require.NoError(t, err)
			assert.Greater(t, b.Position, a.Position+3)
			rec, err := db.Get(ctx, b, "")
			require.NoError(t, err)
			assert.Empty(t, rec.Properties)
		})
	}
}

func TestOpenWithCorruptDictionary(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()
	require.NoError(t, blobs.Put(ctx, recgo.DefaultDictionaryName, []byte{0xde, 0xad}))

	_, err := recgo.Open(ctx, recgo.WithBlobStore(blobs))
	assert.Error(t, err)
}

func TestCustomDictionaryName(t *testing.T) {
	ctx := context.Background()
	blobs := blobstore.NewMemoryStore()

	db, err := recgo.Open(ctx, recgo.WithBlobStore(blobs), recgo.WithDictionaryName("meta/dict"))
	require.NoError(t, err)
	_, err = db.CreateDocument(ctx, 1, props("x", value.Int(1)))
	require.NoError(t, err)
	require.NoError(t, db.Close(ctx))

	_, err = blobs.Get(ctx, "meta/dict")
	require.NoError(t, err)
	_, err = blobs.Get(ctx, recgo.DefaultDictionaryName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
