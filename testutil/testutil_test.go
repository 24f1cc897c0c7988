package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/recgo/value"
)

func TestSeedIsReproducible(t *testing.T) {
	a := NewRNG(4711)
	b := NewRNG(4711)

	for range 50 {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}

	a.Reset()
	first := a.Properties(10)
	a.Reset()
	assert.True(t, first.Equal(a.Properties(10)))
	assert.Equal(t, int64(4711), a.Seed())
}

func TestValueKinds(t *testing.T) {
	rng := NewRNG(1)

	for _, k := range append(ScalarKinds, value.KindList) {
		for range 20 {
			v := rng.Value(k)
			require.Equal(t, k, v.Kind)
		}
	}
}

func TestListItemsAreScalar(t *testing.T) {
	rng := NewRNG(2)

	for range 50 {
		items, ok := rng.Value(value.KindList).AsList()
		require.True(t, ok)
		assert.LessOrEqual(t, len(items), 8)
		for _, item := range items {
			assert.NotEqual(t, value.KindList, item.Kind)
		}
	}
}

func TestRIDNeverNull(t *testing.T) {
	rng := NewRNG(3)

	for range 100 {
		assert.False(t, rng.RID().IsNull())
	}
}
