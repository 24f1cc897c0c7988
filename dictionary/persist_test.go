package dictionary

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/blobstore"
)

func TestMarshalRoundTrip(t *testing.T) {
	d := New()
	for _, n := range []string{"name", "age", "città", ""} {
		d.ID(n, true)
	}
	require.NoError(t, d.UpdateName("age", "years"))

	data, err := d.MarshalBinary()
	require.NoError(t, err)

	restored := New()
	require.NoError(t, restored.UnmarshalBinary(data))
	assert.Equal(t, d.Entries(), restored.Entries())

	// The counter resumes after the highest id.
	id, _ := restored.ID("new", true)
	assert.Equal(t, int32(4), id)
}

func TestUnmarshalCorruption(t *testing.T) {
	d := New()
	d.ID("name", true)
	data, err := d.MarshalBinary()
	require.NoError(t, err)

	flipped := append([]byte(nil), data...)
	flipped[6] ^= 0xff
	assert.ErrorIs(t, New().UnmarshalBinary(flipped), ErrCorrupted)

	assert.ErrorIs(t, New().UnmarshalBinary(data[:5]), ErrCorrupted)
	assert.ErrorIs(t, New().UnmarshalBinary(nil), ErrCorrupted)
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	_, err := Load(ctx, store, "dictionary")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	d := New()
	for i := range 500 {
		d.ID("property_with_a_long_name_"+string(rune('a'+i%26))+string(rune('A'+i/26)), true)
	}
	require.NoError(t, d.Save(ctx, store, "dictionary"))

	loaded, err := Load(ctx, store, "dictionary")
	require.NoError(t, err)
	assert.Equal(t, d.Entries(), loaded.Entries())

	require.NoError(t, store.Put(ctx, "broken", []byte{2, 10, 1, 2, 3}))
	_, err = Load(ctx, store, "broken")
	assert.ErrorIs(t, err, ErrCorrupted)
}
