package value

import (
	"math/big"
	"testing"
	"time"

	"github.com/hupe1980/recgo/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperties_SetGetDelete(t *testing.T) {
	var p Properties
	p.Set("a", Int(1))
	p.Set("b", String("x"))
	p.Set("a", Int(2))

	assert.Equal(t, []string{"a", "b"}, p.Names())
	v, ok := p.Get("a")
	require.True(t, ok)
	assert.True(t, v.Equal(Int(2)))

	assert.True(t, p.Delete("a"))
	assert.False(t, p.Delete("a"))
	assert.Equal(t, []string{"b"}, p.Names())
}

func TestProperties_FilterAndEqual(t *testing.T) {
	p := Properties{
		{Name: "x", Value: Int(1)},
		{Name: "y", Value: Bool(true)},
		{Name: "z", Value: Null()},
	}
	f := p.Filter("x", "z", "missing")
	assert.Len(t, f, 2)
	assert.True(t, EqualMaps(f, map[string]Value{"x": Int(1), "z": Null()}))

	q := p.Clone()
	assert.True(t, p.Equal(q))
	q.Set("x", Int(2))
	assert.False(t, p.Equal(q))
}

func TestFromAny(t *testing.T) {
	ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		input any
		want  Value
	}{
		{"nil", nil, Null()},
		{"bool", true, Bool(true)},
		{"string", "s", String("s")},
		{"int8", int8(-1), Byte(-1)},
		{"int16", int16(2), Short(2)},
		{"int32", int32(3), Int(3)},
		{"int", 4, Long(4)},
		{"uint8", uint8(255), Short(255)},
		{"float32", float32(1.5), Float(1.5)},
		{"float64", 2.5, Double(2.5)},
		{"time", ts, DateTime(ts)},
		{"bigint", big.NewInt(7), Decimal(big.NewInt(7), 0)},
		{"rid", model.NewRID(1, 1), Ref(model.NewRID(1, 1))},
		{"bytes", []byte{1}, Binary([]byte{1})},
		{"any slice", []any{1, "a"}, List(Long(1), String("a"))},
		{"string slice", []string{"a"}, List(String("a"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := FromAny(struct{}{})
	assert.ErrorIs(t, err, ErrUnsupportedType)
	_, err = FromAny(uint64(1 << 63))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestToAny(t *testing.T) {
	assert.Equal(t, int32(5), Int(5).ToAny())
	assert.Equal(t, "x", String("x").ToAny())
	r := mustDecimal(t, "1.25").ToAny().(*big.Rat)
	assert.Equal(t, "5/4", r.String())
	assert.Nil(t, Null().ToAny())
}

func TestPropertiesFromMap(t *testing.T) {
	p, err := PropertiesFromMap(map[string]any{"n": 1})
	require.NoError(t, err)
	v, ok := p.Get("n")
	require.True(t, ok)
	assert.True(t, v.Equal(Long(1)))

	_, err = PropertiesFromMap(map[string]any{"bad": make(chan int)})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
