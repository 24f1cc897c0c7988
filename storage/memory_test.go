package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/model"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	data := []byte("record")
	rid, err := s.Create(ctx, 3, data)
	require.NoError(t, err)
	assert.Equal(t, model.NewRID(3, 0), rid)

	data[0] = 'X'
	got, err := s.Read(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, []byte("record"), got, "create must copy")

	got[0] = 'Y'
	again, _ := s.Read(ctx, rid)
	assert.Equal(t, []byte("record"), again, "read must copy")

	require.NoError(t, s.Update(ctx, rid, []byte("v2")))
	got, err = s.Read(ctx, rid)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	second, err := s.Create(ctx, 3, []byte("other"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.Position)

	require.NoError(t, s.Delete(ctx, rid))
	_, err = s.Read(ctx, rid)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, rid, nil), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, rid), ErrNotFound)

	third, err := s.Create(ctx, 3, []byte("third"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), third.Position, "positions are not reused")

	assert.Equal(t, []int64{1, 2}, s.Positions(3))
	assert.Equal(t, 2, s.Count(3))
	assert.Equal(t, []int32{3}, s.Buckets())
}

func TestMemoryStoreInvalid(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, -1, nil)
	assert.ErrorIs(t, err, ErrInvalidBucket)

	_, err = s.Read(ctx, model.Null)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Read(ctx, model.NewRID(9, 0))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Read(ctx, model.NewRID(9, -4))
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Create(cancelled, 1, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
